// Package formval coerces submitted form values into a typed request
// payload.
//
// A Schema lists the fields a form submits. Validate checks every field,
// collects every problem, and either returns the full payload or a
// *ValidationError naming all offending fields. Nothing is partially
// accepted.
//
// Example:
//
//	schema := formval.Schema{
//	    formval.Text("name", "Name").Required(),
//	    formval.Integer("quantity", "Quantity").Required().Min(0),
//	    formval.Decimal("price", "Price").Required().Above(0),
//	    formval.Choice("store", "Store", models.AllStores()...).Required(),
//	    formval.Day("date", "Date").Required(),
//	}
//
//	payload, err := schema.Validate(r.PostForm)
package formval

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only accepted date format.
const DateLayout = "2006-01-02"

// Kind is the target type of a field.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindDate
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "integer"
	case KindFloat:
		return "number"
	case KindDate:
		return "date"
	case KindEnum:
		return "choice"
	default:
		return "text"
	}
}

// Values is the read side of url.Values.
type Values interface {
	Get(key string) string
}

// Payload is a validated request body keyed by field name.
type Payload map[string]any

// Field describes one form field. Build fields with Text, Integer,
// Decimal, Day, or Choice and chain the modifiers.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Options  []string
	required bool
	def      string
	min      *decimal.Decimal
	above    *decimal.Decimal
	max      *decimal.Decimal
	maxLen   int
}

// Text is a free text field.
func Text(name, label string) Field { return Field{Name: name, Label: label, Kind: KindText} }

// Integer is a whole number field.
func Integer(name, label string) Field { return Field{Name: name, Label: label, Kind: KindInt} }

// Decimal is a finite decimal number field, sent as a float.
func Decimal(name, label string) Field { return Field{Name: name, Label: label, Kind: KindFloat} }

// Day is a YYYY-MM-DD date field, sent as a string.
func Day(name, label string) Field { return Field{Name: name, Label: label, Kind: KindDate} }

// Choice is a field restricted to options. Matching ignores case and the
// canonical option is sent.
func Choice(name, label string, options ...string) Field {
	return Field{Name: name, Label: label, Kind: KindEnum, Options: options}
}

// Required rejects an empty value.
func (f Field) Required() Field {
	f.required = true
	return f
}

// Default is used when the submitted value is empty.
func (f Field) Default(v string) Field {
	f.def = v
	return f
}

// Min sets an inclusive lower bound for numeric fields.
func (f Field) Min(v float64) Field {
	d := decimal.NewFromFloat(v)
	f.min = &d
	return f
}

// Above sets an exclusive lower bound for numeric fields.
func (f Field) Above(v float64) Field {
	d := decimal.NewFromFloat(v)
	f.above = &d
	return f
}

// Max sets an inclusive upper bound for numeric fields.
func (f Field) Max(v float64) Field {
	d := decimal.NewFromFloat(v)
	f.max = &d
	return f
}

// MaxLen limits text length in characters.
func (f Field) MaxLen(n int) Field {
	f.maxLen = n
	return f
}

// IsRequired reports whether the field must be filled.
func (f Field) IsRequired() bool { return f.required }

// Schema is the ordered list of fields a form submits.
type Schema []Field

// Validate coerces values against the schema. On any failure it returns
// a *ValidationError listing every bad field in schema order.
func (s Schema) Validate(values Values) (Payload, error) {
	payload := make(Payload, len(s))
	verr := &ValidationError{}

	for _, f := range s {
		raw := strings.TrimSpace(values.Get(f.Name))
		if raw == "" {
			raw = f.def
		}
		if raw == "" {
			if f.required {
				verr.add(f, f.label()+" is required.")
			} else if f.Kind == KindText {
				payload[f.Name] = ""
			}
			continue
		}

		v, msg := f.coerce(raw)
		if msg != "" {
			verr.add(f, msg)
			continue
		}
		payload[f.Name] = v
	}

	if len(verr.Errors) > 0 {
		return nil, verr
	}
	return payload, nil
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

func (f Field) coerce(raw string) (any, string) {
	switch f.Kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, f.label() + " must be a whole number."
		}
		if msg := f.checkBounds(decimal.NewFromInt(n)); msg != "" {
			return nil, msg
		}
		return int(n), ""

	case KindFloat:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, f.label() + " must be a number."
		}
		v := d.InexactFloat64()
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, f.label() + " must be a number."
		}
		if msg := f.checkBounds(d); msg != "" {
			return nil, msg
		}
		return v, ""

	case KindDate:
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, f.label() + " must be a date (YYYY-MM-DD)."
		}
		return t.Format(DateLayout), ""

	case KindEnum:
		for _, opt := range f.Options {
			if strings.EqualFold(opt, raw) {
				return opt, ""
			}
		}
		return nil, f.label() + " must be one of: " + strings.Join(f.Options, ", ") + "."

	default:
		if f.maxLen > 0 && len([]rune(raw)) > f.maxLen {
			return nil, f.label() + " must be at most " + strconv.Itoa(f.maxLen) + " characters."
		}
		return raw, ""
	}
}

func (f Field) checkBounds(d decimal.Decimal) string {
	switch {
	case f.min != nil && d.LessThan(*f.min):
		return f.label() + " must be at least " + f.min.String() + "."
	case f.above != nil && d.LessThanOrEqual(*f.above):
		return f.label() + " must be greater than " + f.above.String() + "."
	case f.max != nil && d.GreaterThan(*f.max):
		return f.label() + " must be at most " + f.max.String() + "."
	}
	return ""
}

// Int returns an integer payload value, or 0.
func (p Payload) Int(name string) int {
	n, _ := p[name].(int)
	return n
}

// Text returns a string payload value, or "".
func (p Payload) Text(name string) string {
	s, _ := p[name].(string)
	return s
}

// Float returns a float payload value, or 0.
func (p Payload) Float(name string) float64 {
	f, _ := p[name].(float64)
	return f
}
