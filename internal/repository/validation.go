package repository

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrValidation is the sentinel wrapped by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldError names one offending field using its JSON path (e.g. "images[0].url").
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s (%s=%s)", f.Field, f.Rule, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Rule))
		}
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type enumValue interface {
	IsValid() bool
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// closed enumerations: only declared values pass
	_ = v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enumValue)
		return ok && e.IsValid()
	})
	// at most two decimal places, as stored by decimal(p,2) columns
	_ = v.RegisterValidation("scale2", func(fl validator.FieldLevel) bool {
		cents := fl.Field().Float() * 100
		return math.Abs(cents-math.Round(cents)) < 1e-6
	})
	return v
}

// toValidationError converts validator output; other errors pass through.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
