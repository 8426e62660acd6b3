// Package validation provides request validation on top of go-playground/validator
// plus the username, slug and year rules shared by every endpoint that accepts them.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the catalog tags registered:
// username, slug and notfuture.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// The username tag carries the length limit too, so one failing
	// check cannot hide the others.
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		_, err := Username(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidSlug(fl.Field().String())
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return YearProblem(int(fl.Field().Int())) == ""
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a validation error keyed by JSON field name.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fields := domainerrors.FieldErrors{}
	for _, e := range validationErrs {
		for _, msg := range v.messages(e) {
			fields.Add(e.Field(), msg)
		}
	}
	return fields.Err()
}

//nolint:gocyclo // one case per supported tag
func (v *Validator) messages(e validator.FieldError) []string {
	switch e.Tag() {
	case "required":
		return []string{"This field is required."}
	case "email":
		return []string{"Enter a valid email address."}
	case "username":
		return UsernameProblems(NormalizeUsername(fmt.Sprint(e.Value())))
	case "slug":
		return []string{slugMessage}
	case "notfuture":
		return []string{YearProblem(toInt(e.Value()))}
	case "min", "gte":
		if e.Kind() == reflect.String {
			return []string{fmt.Sprintf("Ensure this field has at least %s characters.", e.Param())}
		}
		return []string{"Ensure this value is greater than or equal to " + e.Param() + "."}
	case "max", "lte":
		if e.Kind() == reflect.String {
			return []string{fmt.Sprintf("Ensure this field has no more than %s characters.", e.Param())}
		}
		return []string{"Ensure this value is less than or equal to " + e.Param() + "."}
	case "oneof":
		return []string{fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(e.Value()))}
	default:
		return []string{"Invalid value."}
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case *int:
		if n != nil {
			return *n
		}
	}
	return 0
}
