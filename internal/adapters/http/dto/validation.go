package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

var (
	// ErrValidation wraps request content that failed its validate tags.
	ErrValidation = errors.New("validation failed")

	// ErrBinding wraps a body or query string that could not be decoded.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field errors are reported under
// the json or form name of the field, and these catalog tags are available:
//
//	notblank  string with something besides whitespace
//	imageurl  absolute http(s) URL, as accepted for quote and author images
//
// AuthorRequest additionally checks that deathDate is not before birthDate.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(wireName)

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("imageurl", func(fl validator.FieldLevel) bool {
			return domain.ValidateImageURL(fl.FieldName(), fl.Field().String()) == nil
		})

		v.RegisterStructValidation(authorLifespan, AuthorRequest{})

		validate = v
	})

	return validate
}

// wireName names a field as clients see it: json tag, then form tag.
func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return fld.Name
}

// authorLifespan rejects a death date before the birth date. Malformed
// dates are left to their datetime tags.
func authorLifespan(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(AuthorRequest)
	if !ok || r.BirthDate == "" || r.DeathDate == "" {
		return
	}

	birth, errBirth := domain.ParseDate(r.BirthDate)
	death, errDeath := domain.ParseDate(r.DeathDate)

	if errBirth == nil && errDeath == nil && death.Before(birth) {
		sl.ReportError(r.DeathDate, "deathDate", "DeathDate", "afterbirth", "")
	}
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate decodes the query string into v and validates it.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// ValidationErrors maps each failing field to a readable message. It is
// empty when err holds no validator errors.
func ValidationErrors(err error) map[string]string {
	details := make(map[string]string)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return details
	}

	for _, fe := range fieldErrs {
		details[fe.Field()] = fieldMessage(fe)
	}

	return details
}

// IsValidationError reports whether err holds validator errors.
func IsValidationError(err error) bool {
	var fieldErrs validator.ValidationErrors
	return errors.As(err, &fieldErrs)
}

func fieldMessage(fe validator.FieldError) string {
	param := fe.Param()

	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice:
		unit = " items"
	}

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "notblank":
		return "must not be blank"
	case "imageurl":
		return "must be an absolute http(s) URL"
	case "afterbirth":
		return "must not be before birthDate"
	case "min":
		return "must be at least " + param + unit
	case "max":
		return "must be at most " + param + unit
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of: " + param
	case "datetime":
		return "must be a date formatted as " + param
	default:
		return "failed validation: " + fe.Tag()
	}
}
