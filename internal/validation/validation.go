// Package validation runs declarative field rules over request structs and
// reports every failing field as a human-readable message.
//
// Rules are go-playground/validator tags. Fields are evaluated in declaration
// order; the first failing tag on a field ends that field's chain, later fields
// are still evaluated.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Placeholder is the default value API explorers send for string fields.
const Placeholder = "string"

// FieldError is a single rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned when a request violates one or more rules.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the violation messages in field order.
func (e *Errors) Messages() []string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return msgs
}

// Messages maps "Field.tag" to the message reported when that tag fails on that field.
type Messages map[string]string

// Validator validates request structs against their tags.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New builds a Validator. now supplies the current date for the notpast rule.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}
	// registration only fails on duplicate tag names, which are constants here
	_ = v.validate.RegisterValidation("notblank", notBlank)
	_ = v.validate.RegisterValidation("notplaceholder", notPlaceholder)
	_ = v.validate.RegisterValidation("notpast", v.notPast)
	return v
}

// Struct validates req and returns *Errors listing every failing field, or nil.
// Tags without an entry in messages fall back to a generic message.
func (v *Validator) Struct(req any, messages Messages) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", req, err)
	}

	out := &Errors{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s failed the '%s' rule.", fe.StructField(), fe.Tag())
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.StructField(), Message: msg})
	}
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func notPlaceholder(fl validator.FieldLevel) bool {
	return fl.Field().String() != Placeholder
}

func (v *Validator) notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return NotBeforeToday(t, v.now())
}

// NotBeforeToday reports whether t falls on or after the calendar date of now,
// ignoring the time of day. t is compared in now's location.
func NotBeforeToday(t, now time.Time) bool {
	return !truncateDay(t.In(now.Location())).Before(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
