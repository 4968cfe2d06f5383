package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their koanf key so a message names the
// same path an operator sets in YAML or through APP_ variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return snakeCase(f.Name)
		}

		return name
	})

	v.RegisterStructValidation(retryWindow, RetryConfig{})

	return v
}

// retryWindow rejects a backoff ceiling below its starting interval.
func retryWindow(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(RetryConfig)
	if !ok || r.InitialInterval == 0 || r.MaxInterval == 0 {
		return
	}

	if r.MaxInterval < r.InitialInterval {
		sl.ReportError(r.MaxInterval, "max_interval", "MaxInterval", "gtefield", "initial_interval")
	}
}

// Validate checks every field and reports all failures at once. The service
// refuses to start on any of them.
func (c *Config) Validate() error {
	err := validate.Struct(c)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		lines[i] = describe(fe)
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	path := keyPath(fe.Namespace())

	var rule string

	switch fe.Tag() {
	case "required":
		rule = "is required"
	case "required_if":
		rule = "is required when " + condition(path, fe.Param())
	case "min":
		rule = "must be at least " + fe.Param()
	case "max":
		rule = "must be at most " + fe.Param()
	case "oneof":
		rule = "must be one of: " + fe.Param()
	case "url":
		rule = "must be a valid URL"
	case "gtefield":
		rule = "must not be below " + fe.Param()
	default:
		rule = "fails " + fe.Tag()
	}

	return path + " " + rule
}

// condition renders a required_if parameter such as "Driver sqlite" as
// "storage.driver is sqlite", using the sibling's key under the same parent.
func condition(path, param string) string {
	field, value, ok := strings.Cut(param, " ")
	if !ok {
		return param
	}

	sibling := snakeCase(field)
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		sibling = path[:i+1] + sibling
	}

	return sibling + " is " + value
}

// keyPath drops the root type name: "Config.daily_quote.history_days"
// becomes "daily_quote.history_days".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}

	return namespace
}

// snakeCase maps a Go field name onto its koanf spelling, WebhookURL to
// webhook_url.
func snakeCase(name string) string {
	var b strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if prevLower || (nextLower && unicode.IsUpper(runes[i-1])) {
				b.WriteByte('_')
			}
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
