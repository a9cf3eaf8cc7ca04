package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/model"
	"github.com/greengrocer/grocery-api/internal/repository"
	"github.com/greengrocer/grocery-api/internal/session"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
)

type sessionClaims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo  repository.UserRepository
	sessions  session.Store
	jwtSecret []byte
	ttl       time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sessions session.Store, jwtSecret string, ttl time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions, jwtSecret: []byte(jwtSecret), ttl: ttl}
}

func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}
	if err := s.checkEmail(ctx, req.Email, 0); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Username, req.Password, req.FullName, req.Email, model.RoleCustomer)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// checkEmail fails with ErrEmailInUse when another user than owner holds email.
func (s *AuthService) checkEmail(ctx context.Context, email string, owner int64) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != owner {
		return ErrEmailInUse
	}
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, password, fullName, email string, role model.Role) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username: username, Password: string(hashed),
		FullName: fullName, Email: email, Role: role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks the credentials, opens a session and returns a token bound to it.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := session.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, ExpiresAt: sess.ExpiresAt, User: toUserResponse(user)}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) generateToken(sess session.Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: sess.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   strconv.FormatInt(sess.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Authenticate resolves a token to the identity of its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess == nil || strconv.FormatInt(sess.UserID, 10) != claims.Subject {
		return nil, ErrInvalidToken
	}
	return &model.Identity{SessionID: sess.ID, UserID: sess.UserID, Role: sess.Role}, nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if req.Email != nil {
		if err := s.checkEmail(ctx, *req.Email, userID); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.Update(ctx, userID, model.UserPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// EnsureAdmin creates the admin account if no user holds the username yet.
// It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) (bool, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := s.createUser(ctx, username, password, "Administrator", email, model.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID: user.ID, Username: user.Username, FullName: user.FullName,
		Email: user.Email, Role: user.Role, Avatar: user.Avatar, CreatedAt: user.CreatedAt,
	}
}
