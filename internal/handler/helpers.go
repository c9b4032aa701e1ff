package handler

import (
	"errors"
	"net/http"
	"reflect"

	"tillengine/internal/apierror"
	"tillengine/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusFor maps service sentinel errors to HTTP statuses so handlers
// stay uniform.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTillAlreadyOpen),
		errors.Is(err, service.ErrAlreadyAnnulled):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrTenderMismatch),
		errors.Is(err, service.ErrDuplicateTenderAccount),
		errors.Is(err, service.ErrCreditLimitExceeded),
		errors.Is(err, service.ErrInvalidClientForCredit):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// fail writes the mapped error response.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), apierror.New(err.Error()))
}
