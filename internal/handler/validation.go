package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules and makes validation
// errors report JSON field names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

// validationDetails turns a binding error into the per-field list returned
// with 422 responses.
func validationDetails(err error) []map[string]string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]map[string]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, map[string]string{fe.Field(): fieldMessage(fe)})
		}
		return out
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		return []map[string]string{{typeErr.Field: "invalid type"}}
	case errors.As(err, &syntaxErr):
		return []map[string]string{{"body": "malformed JSON"}}
	default:
		return []map[string]string{{"body": "invalid request body"}}
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Field required"
	case "notblank":
		return fmt.Sprintf("%s cannot be empty.", capitalize(fe.Field()))
	case "email":
		return "value is not a valid email address"
	case "max":
		return fmt.Sprintf("ensure this value has at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
