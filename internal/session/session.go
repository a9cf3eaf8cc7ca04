// Package session keeps server-side login sessions. A signed token only
// authenticates while its session record exists, so deleting the record
// revokes the token.
package session

import (
	"context"
	"time"

	"github.com/greengrocer/grocery-api/internal/model"
)

type Session struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"userId"`
	Role      model.Role `json:"role"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store returns (nil, nil) from Get for unknown or expired sessions.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
