package apiutil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/codr1/Courtside/internal/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return models.IsHexColor(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct checks the validate tags on payload and reports the first
// failing field as a FieldError named after its json tag.
func ValidateStruct(ctx context.Context, payload any) error {
	err := validatorInstance().StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fieldErr := validationErrors[0]
		return FieldError{Field: fieldErr.Field(), Reason: describeValidation(fieldErr)}
	}
	return fmt.Errorf("validation error: %w", err)
}

func describeValidation(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		if fieldErr.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
		}
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fieldErr.Param())
	case "gtfield":
		return fmt.Sprintf("must be greater than %s", fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fieldErr.Param(), " ", ", "))
	case "slug":
		return "must contain only lowercase letters, digits and single hyphens"
	case "timezone":
		return "must be a valid IANA timezone"
	case "hexcolor6":
		return "must be a hex color like #1a2b3c"
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}
