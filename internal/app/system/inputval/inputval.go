// Package inputval validates form and request input against struct tags.
//
// Rules come from `validate` tags (github.com/go-playground/validator/v10).
// A `label` tag names the field in messages; without one the json name is
// used. Messages are full sentences ready to show on a form:
//
//	type newSessionInput struct {
//		Date string `validate:"required,datetime=2006-01-02" label:"Date"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//		data.SetError(res.First())
//	}
package inputval

import (
	"fmt"
	"net/mail"
	"reflect"
	"strings"

	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if l := fld.Tag.Get("label"); l != "" {
			return l
		}
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(fl.Field().String())
	})
	_ = validate.RegisterValidation("groupmode", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseGroupMode(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("attendance", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Result holds every failed rule, in struct field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Messages maps each field to its first message.
func (r *Result) Messages() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validate checks s (a struct or pointer to struct) against its tags.
func Validate(s any) *Result {
	return collect(validate.Struct(s))
}

// Var checks a single value against tag, naming it label in messages.
func Var(value any, tag, label string) *Result {
	res := collect(validate.Var(value, tag))
	for i := range res.Errors {
		res.Errors[i].Field = label
		res.Errors[i].Message = strings.Replace(res.Errors[i].Message, fieldPlaceholder, label, 1)
	}
	return res
}

// validate.Var reports an empty field name; messages carry this marker
// until Var substitutes the label.
const fieldPlaceholder = "\x00field"

func collect(err error) *Result {
	res := &Result{}
	if err == nil {
		return res
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	if label == "" {
		label = fieldPlaceholder
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "datetime":
		return label + " must be a date in YYYY-MM-DD form."
	case "role":
		return label + " must be admin or student."
	case "groupmode":
		return label + " is not a known grouping mode."
	case "attendance":
		return label + " must be present or absent."
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "eqfield":
		return label + " does not match."
	}
	return fe.Translate(translator)
}

// IsValidEmail reports whether s is a bare RFC 5322 address
// ("name@host", no display name or surrounding space).
func IsValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
