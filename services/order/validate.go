package order

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"traceaq/models"

	"github.com/go-playground/validator/v10"
)

// check runs the struct tags of in and converts failures to a models.ValidationError
// keyed by the JSON field name.
func (s *DefaultOrderService) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	t := reflect.TypeOf(in)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[jsonName(t, fe.StructField())] = message(fe)
	}
	return &models.ValidationError{Fields: fields}
}

func jsonName(t reflect.Type, field string) string {
	if sf, ok := t.FieldByName(field); ok {
		if name, _, _ := strings.Cut(sf.Tag.Get("json"), ","); name != "" {
			return name
		}
	}
	return field
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "eq":
		return "must be accepted"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "startswith":
		return "must start with " + fe.Param()
	case "numeric":
		return "must be numeric"
	case "min", "gte", "gt":
		return "is too small"
	case "max", "lte":
		return "is too large"
	}
	return "is invalid"
}
