// Package validation wraps go-playground/validator with English messages so
// config and input errors read as sentences instead of tag names.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError is one failed constraint
type FieldError struct {
	Field   string // namespaced, e.g. catalog.templates[0].code
	Value   string
	Message string
}

// Errors is every failed constraint of one Struct call
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, fe := range e {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validator validates structs and translates failures to English
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator. Field names come from yaml tags when present.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}

	return &Validator{validate: validate, translator: trans}, nil
}

// Must is New that panics, for package-level validators
func Must() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Struct validates s. Constraint failures are returned as Errors.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := make(Errors, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, FieldError{
			Field:   trimRoot(fe.Namespace()),
			Value:   fmt.Sprint(fe.Value()),
			Message: fe.Translate(v.translator),
		})
	}
	return out
}

// trimRoot drops the struct type name from a namespace like Config.catalog.open
func trimRoot(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
