package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yeremiapane/restaurant-ordering/models"
)

var registerOnce sync.Once

// RegisterValidators installs the enum validators used in request binding
// tags and makes JSON decoding reject unknown fields.
func RegisterValidators() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			ErrorLogger.Fatal("gin validator engine is not go-playground/validator")
		}

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		mustRegister(v, "order_status", func(fl validator.FieldLevel) bool {
			return models.OrderStatus(fl.Field().String()).Valid()
		})
		mustRegister(v, "payment_method", func(fl validator.FieldLevel) bool {
			return models.PaymentMethod(fl.Field().String()).Valid()
		})
		mustRegister(v, "station", func(fl validator.FieldLevel) bool {
			return models.Station(fl.Field().String()).Valid()
		})
		mustRegister(v, "user_role", func(fl validator.FieldLevel) bool {
			return models.Role(fl.Field().String()).Valid()
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		ErrorLogger.Fatalf("register validator %s: %v", tag, err)
	}
}

// BindJSON binds the request body into obj and returns a ValidationError
// describing the first problem found.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return BindingError(err)
	}
	return nil
}

// BindingError converts binding and validation failures to a presentable
// ValidationError.
func BindingError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return WrapError(KindValidation, describeFieldError(verrs[0]), err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return WrapError(KindValidation, "Request body is required", err)
	case errors.As(err, &syntaxErr):
		return WrapError(KindValidation, "Malformed JSON payload", err)
	case errors.As(err, &typeErr):
		return WrapError(KindValidation, fmt.Sprintf("%s has an invalid type", typeErr.Field), err)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return WrapError(KindValidation, "Unknown field "+strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	}
	return WrapError(KindValidation, "Invalid request payload", err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "order_status":
		return fmt.Sprintf("%s must be one of %v", field, models.OrderStatuses)
	case "payment_method":
		return fmt.Sprintf("%s must be one of %v", field, models.PaymentMethods)
	case "station":
		return fmt.Sprintf("%s must be one of %v", field, models.Stations)
	case "user_role":
		return fmt.Sprintf("%s must be one of %v", field, models.Roles)
	case "email":
		return field + " must be a valid email address"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}
