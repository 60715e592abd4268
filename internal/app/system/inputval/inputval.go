// Package inputval validates tagged structs with waffle/pantry/validate
// and turns failures into readable messages. Startup uses it to check
// configuration before any connection is attempted.
//
// Example:
//
//	type backendSettings struct {
//	    URL      string `validate:"required,httpurl" label:"backend_url"`
//	    TokenURL string `validate:"httpurl" label:"backend_token_url"`
//	}
//
//	if res := inputval.Validate(settings); res.HasErrors() {
//	    return errors.New(res.All())
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratastock/internal/app/system/keys"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation results with user-friendly messages.
type Result struct {
	Errors []FieldError
}

// FieldError represents a validation error for a single field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first error message, or empty string if no errors.
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

// All returns all error messages joined with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	customValidator *validate.Validator
	validatorOnce   sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		customValidator = validate.New()

		// httpurl: empty or an absolute http(s) URL. Pair with required
		// when the value must be present.
		customValidator.RegisterRuleFunc("httpurl", func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			return strings.TrimSpace(s) == "" || IsValidHTTPURL(s)
		}, "httpurl")

		// secret: long enough and not a placeholder.
		customValidator.RegisterRuleFunc("secret", func(value any) bool {
			s, ok := value.(string)
			if !ok {
				return false
			}
			return !keys.IsWeak(s) && !keys.IsDefault(s)
		}, "secret")
	})
	return customValidator
}

// Validate validates a struct and returns a Result with one message per
// failing field. Labels come from `label` tags, falling back to the
// field name.
//
// Rules registered here, in addition to pantry/validate's built-ins:
//   - httpurl: empty, or a URL with an http/https scheme and a host
//   - secret: at least keys.MinSecretLen bytes and not a placeholder value
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	labels := fieldLabels(s)

	if errs, ok := err.(validate.Errors); ok {
		for _, e := range errs {
			label := labels[e.Field]
			if label == "" {
				label = e.Field
			}
			result.Errors = append(result.Errors, FieldError{
				Field:   e.Field,
				Label:   label,
				Message: formatMessage(label, e.Rule, e.Param),
			})
		}
		return result
	}

	result.Errors = append(result.Errors, FieldError{Message: err.Error()})
	return result
}

func fieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		label := field.Tag.Get("label")
		if label == "" {
			continue
		}
		// pantry/validate reports either the Go name or the json name.
		labels[field.Name] = label
		if jsonTag := field.Tag.Get("json"); jsonTag != "" {
			if n, _, _ := strings.Cut(jsonTag, ","); n != "" && n != "-" {
				labels[n] = label
			}
		}
	}

	return labels
}

func formatMessage(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required"
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		return label + " must be at least " + param
	case "max":
		return label + " must be at most " + param
	case "httpurl":
		return label + " must be an absolute URL starting with http:// or https://"
	case "secret":
		return label + " must be a random value of at least 32 characters"
	default:
		return label + " is invalid"
	}
}

// IsValidHTTPURL checks if s is an absolute http:// or https:// URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
