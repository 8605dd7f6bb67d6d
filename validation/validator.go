// Package validation wraps go-playground/validator with a shared instance
// whose failures come back as field-level apperror validation errors.
//
//	type cameraRequest struct {
//	    IP string `json:"IP" validate:"required,ip"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    return err // *apperror.Error, Kind Validation
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/krishkalaria12/linegrade/apperror"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator. Field names in errors follow the
// json tag of the field so that details line up with request bodies.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})

	return validate
}

// ValidateStruct returns nil or an *apperror.Error of kind Validation whose
// Details map dotted field paths (e.g. "item.index") to messages.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Wrap(apperror.Validation, "invalid request", err)
	}

	details := make(map[string]any, len(fieldErrs))
	var messages []string
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		msg := translate(fe)
		if prev, ok := details[field].([]string); ok {
			details[field] = append(prev, msg)
		} else {
			details[field] = []string{msg}
		}
		messages = append(messages, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(messages)

	return &apperror.Error{
		Kind:    apperror.Validation,
		Message: strings.Join(messages, "; "),
		Details: details,
		Err:     err,
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func translate(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "this field is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "ip":
		return "enter a valid IPv4 or IPv6 address"
	case "email":
		return "enter a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
