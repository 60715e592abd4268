// internal/app/system/formval/errors.go
package formval

import "strings"

// FieldError is a problem with one field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// ValidationError reports every missing or malformed field of a form.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) add(f Field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: f.Name, Label: f.label(), Message: msg})
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields(), ", ")
}

// Fields returns the names of the offending fields in schema order.
func (e *ValidationError) Fields() []string {
	names := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		names[i] = fe.Field
	}
	return names
}

// First returns the first error message, or empty string if no errors.
func (e *ValidationError) First() string {
	if len(e.Errors) > 0 {
		return e.Errors[0].Message
	}
	return ""
}

// All returns all error messages joined with a space.
func (e *ValidationError) All() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, " ")
}

// For returns the message for one field, or "".
func (e *ValidationError) For(field string) string {
	if e == nil {
		return ""
	}
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}
