package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// Violation describes a single failed field constraint.
type Violation struct {
	// Field is the document path of the offending field, e.g. "items[0].quantity".
	Field string
	// Constraint is the failed rule ("gte", "http_url", "oneof", ...).
	Constraint string
	// Param is the rule parameter, if any ("0" for gte=0).
	Param string
	// Kind is the Go kind of the offending value.
	Kind string
}

func (v Violation) String() string {
	rule := v.Constraint
	if v.Param != "" {
		rule += "=" + v.Param
	}
	return fmt.Sprintf("field %q violates %q (%s)", v.Field, rule, v.Kind)
}

// ValidationError is returned when an entity breaks one or more constraints.
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.Entity + ": invalid"
	}
	msg := e.Entity + ": " + e.Violations[0].String()
	if n := len(e.Violations) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report document field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("bson"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsInf(f, 0) && !math.IsNaN(f)
		default:
			return true
		}
	})
	return v
}

// Validate checks an entity against its constraints.
func Validate(e Entity) error {
	return ValidateStruct(e)
}

// ValidateStruct checks any tagged struct (views included) and converts
// validator failures into a *ValidationError.
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate")
	}

	out := &ValidationError{Entity: entityName(v)}
	for _, fe := range fieldErrs {
		out.Violations = append(out.Violations, Violation{
			Field:      fieldPath(fe.Namespace()),
			Constraint: fe.Tag(),
			Param:      fe.Param(),
			Kind:       fe.Kind().String(),
		})
	}
	return out
}

// fieldPath strips the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func entityName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.ToLower(t.Name())
}
