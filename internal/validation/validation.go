// Package validation runs declarative struct-tag rules on request bodies and
// turns failures into field-level errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"devhub/internal/models"

	"github.com/go-playground/validator/v10"
)

// Date layouts accepted by the isodate rule.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// Validator wraps a configured validator instance. Field names are taken from
// json tags and custom messages from the msg tag.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the notblank and isodate rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("isodate", isoDate)
	return &Validator{v: v}
}

// Struct validates s and returns a VALIDATION_ERROR AppError listing every
// failed field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]models.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: message(t, fe),
		})
	}
	return models.NewFieldValidationError(fields)
}

// ParseDate parses a value accepted by the isodate rule.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func message(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("msg"); msg != "" && isPresenceTag(fe.Tag()) {
				return msg
			}
		}
	}

	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "email":
		return "Please include a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", label, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must have at most %s entries", label, fe.Param())
	case "isodate":
		return label + " must be a date (YYYY-MM-DD)"
	}
	return label + " is invalid"
}

func isPresenceTag(tag string) bool {
	return tag == "required" || tag == "notblank" || tag == "min"
}

func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	for f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return false
		}
		f = f.Elem()
	}
	switch f.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return f.Len() > 0
	}
	return !f.IsZero()
}

func isoDate(fl validator.FieldLevel) bool {
	f := fl.Field()
	for f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return true
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return false
	}
	if f.String() == "" {
		return true
	}
	_, err := ParseDate(f.String())
	return err == nil
}
