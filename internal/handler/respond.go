package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/greengrocer/grocery-api/internal/dto"
	"github.com/greengrocer/grocery-api/internal/repository"
	"github.com/greengrocer/grocery-api/internal/service"
)

var errorResponses = []struct {
	err    error
	status int
	msg    string
}{
	{service.ErrUserAlreadyExists, http.StatusBadRequest, "Username already exists"},
	{service.ErrEmailInUse, http.StatusBadRequest, "Email already in use"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid username or password"},
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, "Category not found"},
	{service.ErrProductNotFound, http.StatusNotFound, "Product not found"},
	{service.ErrCartItemNotFound, http.StatusNotFound, "Cart item not found"},
	{service.ErrFavoriteNotFound, http.StatusNotFound, "Favorite not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
	{service.ErrOrderAccessDenied, http.StatusForbidden, "Not authorized to view this order"},
	{service.ErrEmptyCart, http.StatusBadRequest, "Cart is empty"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "Invalid order status"},
	{service.ErrInvalidTransition, http.StatusConflict, "Invalid status transition"},
	{repository.ErrDuplicate, http.StatusConflict, "Resource already exists"},
}

// respondError maps service errors to their HTTP form. Anything unrecognised
// is attached to the context for the request logger and reported as a 500.
func respondError(c *gin.Context, err error) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			c.JSON(r.status, dto.ErrorResponse{Error: r.msg})
			return
		}
	}

	var missing *service.MissingProductError
	var stock *service.InsufficientStockError
	if errors.As(err, &missing) || errors.As(err, &stock) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
}

// bindJSON decodes the body into req and writes a 400 when it is malformed
// or fails validation. Validation details are keyed by JSON field name.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
		return false
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
	return false
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid id"})
		return 0, false
	}
	return id, true
}

var registerValidation sync.Once

// RegisterValidation teaches gin's validator to report JSON field names and
// to compare decimals numerically.
func RegisterValidation() {
	registerValidation.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
}
