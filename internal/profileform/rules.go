package profileform

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"mobile-forms/internal/common/validation"

	"github.com/asaskevich/govalidator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

var (
	fullNameRegex     = regexp.MustCompile(`^[A-Za-zА-Яа-яЁё\s-]+$`)
	phoneRegex        = regexp.MustCompile(`^\+?7\d{10}$`)
	passportRegex     = regexp.MustCompile(`^[0-9]{4}[0-9]{6}$`)
	passwordAlphabet  = regexp.MustCompile(`^[A-Za-z\d!@#$%^&*()_+]{8,}$`)
	passwordHasLetter = regexp.MustCompile(`[A-Za-z]`)
	passwordHasDigit  = regexp.MustCompile(`\d`)
)

// Validator evaluates the profile rule set. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	catalog  *Catalog
}

func NewValidator(catalog *Catalog) *Validator {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Validator{validate: newEngine(), catalog: catalog}
}

// WithCatalog returns a Validator sharing the same rule engine but answering in another locale.
func (v *Validator) WithCatalog(catalog *Catalog) *Validator {
	return &Validator{validate: v.validate, catalog: catalog}
}

func (v *Validator) Catalog() *Catalog {
	return v.catalog
}

var defaultValidator = NewValidator(DefaultCatalog())

// Validate runs every rule over the snapshot with Russian messages.
func Validate(values FormValues) *validation.ValidationResult {
	return defaultValidator.Validate(values)
}

// Validate evaluates all fields against the canonical form of values and
// reports at most one message per field, in FieldOrder.
func (v *Validator) Validate(values FormValues) *validation.ValidationResult {
	canonical := values.Canonical()
	res := validation.NewResult()

	err := v.validate.Struct(canonical)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only InvalidValidationError is left, which cannot happen for a struct value.
		return res
	}

	failed := make(map[Field]string, len(verrs))
	for _, fe := range verrs {
		field := Field(fe.Field())
		if _, seen := failed[field]; !seen {
			failed[field] = codeForTag(fe.Tag())
		}
	}
	for _, field := range FieldOrder {
		if code, ok := failed[field]; ok {
			res.Add(string(field), code, v.catalog.FieldMessage(field, code))
		}
	}
	return res
}

func codeForTag(tag string) string {
	switch tag {
	case "filled":
		return CodeRequired
	case "min":
		return CodeMinLength
	case "eqfield":
		return CodeMismatch
	case "eq":
		return CodeNotAccepted
	default:
		return CodeInvalidFormat
	}
}

func newEngine() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "filled", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "fullname", func(fl validator.FieldLevel) bool {
		return IsFullName(fl.Field().String())
	})
	mustRegister(v, "emailaddr", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	mustRegister(v, "ruphone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "passport", func(fl validator.FieldLevel) bool {
		return IsPassport(fl.Field().String())
	})
	mustRegister(v, "password", func(fl validator.FieldLevel) bool {
		return IsPassword(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func IsFullName(s string) bool {
	return fullNameRegex.MatchString(s)
}

// IsEmail accepts local@domain where the domain carries at least one dot.
func IsEmail(s string) bool {
	if !govalidator.IsEmail(s) {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

// IsPhone checks a canonical phone (digits and '+').
func IsPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// IsPassport checks a digits-only passport number.
func IsPassport(s string) bool {
	return passportRegex.MatchString(s)
}

func IsPassword(s string) bool {
	return passwordAlphabet.MatchString(s) &&
		passwordHasLetter.MatchString(s) &&
		passwordHasDigit.MatchString(s)
}

// normalizeName composes combining marks (a decomposed Й or Ё) so the
// character-class rule sees single letters. Surrounding whitespace is kept.
func normalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
