// Package validate wraps go-playground/validator with the catalog's field rules
// and turns failures into field-keyed errs.ValidationError values.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/and161185/perpus/internal/errs"
)

// Custom validation tags
const (
	TagNotBlank   = "notblank"   // not empty after trimming spaces
	TagAuthorName = "authorname" // letters, spaces and . , ' -
	TagISBN7      = "isbn7"      // exactly 7 digits
	TagPubYear    = "pubyear"    // 1800 .. current year
	TagLooseEmail = "looseemail" // something@something.something
)

// MinPublicationYear is the oldest accepted publication year.
const MinPublicationYear = 1800

var (
	authorRegex = regexp.MustCompile(`^[a-zA-Z\s.,'-]+$`)
	isbn7Regex  = regexp.MustCompile(`^\d{7}$`)
	emailRegex  = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// Validator validates input structs.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used for year bounds.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New creates a Validator with English messages and the custom rules.
func New(opts ...Option) *Validator {
	v := &Validator{validate: validator.New(), now: time.Now}
	for _, o := range opts {
		o(v)
	}

	// error keys come from the `form` tag, then `json`, then the Go name
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.trans)

	v.registerCustomRules()
	v.registerCustomTranslations()
	return v
}

func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagNotBlank, validators.NotBlank)
	_ = v.validate.RegisterValidation(TagAuthorName, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || authorRegex.MatchString(s)
	})
	_ = v.validate.RegisterValidation(TagISBN7, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || isbn7Regex.MatchString(s)
	})
	_ = v.validate.RegisterValidation(TagPubYear, func(fl validator.FieldLevel) bool {
		y := fl.Field().Int()
		return y >= MinPublicationYear && y <= int64(v.now().Year())
	})
	_ = v.validate.RegisterValidation(TagLooseEmail, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || emailRegex.MatchString(s)
	})
}

func (v *Validator) registerCustomTranslations() {
	translations := map[string]string{
		TagNotBlank:   "{0} is required",
		TagAuthorName: "{0} may only contain letters, spaces and basic punctuation",
		TagISBN7:      "{0} must be exactly 7 digits",
		TagLooseEmail: "{0} must be a valid email address",
	}
	for tag, message := range translations {
		registerTranslation(v.validate, v.trans, tag, message)
	}

	_ = v.validate.RegisterTranslation(TagPubYear, v.trans,
		func(t ut.Translator) error {
			return t.Add(TagPubYear, "{0} must be between {1} and {2}", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(TagPubYear, fe.Field(),
				strconv.Itoa(MinPublicationYear), strconv.Itoa(v.now().Year()))
			return msg
		},
	)
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// Struct validates s. It returns nil, or a *errs.ValidationError keyed by
// field name with one translated message per failing field.
func (v *Validator) Struct(s any) error {
	return v.Collect(s).OrNil()
}

// Collect validates s and returns the (possibly empty) field errors, so
// callers can merge their own checks before deciding.
func (v *Validator) Collect(s any) *errs.ValidationError {
	out := &errs.ValidationError{Fields: map[string]string{}}
	err := v.validate.Struct(s)
	if err == nil {
		return out
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		out.Add("input", err.Error())
		return out
	}
	for _, fe := range ves {
		out.Add(fe.Field(), fe.Translate(v.trans))
	}
	return out
}
