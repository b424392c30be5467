// Package profileform normalizes, validates and submits the profile form:
// per-keystroke phone and passport masks, the rule set over the whole value
// snapshot, and a single-shot submission session.
package profileform

import (
	"errors"
	"strings"
)

type Field string

const (
	FieldFullName        Field = "fullName"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldPassportNumber  Field = "passportNumber"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldAvatarURI       Field = "avatarUri"
	FieldAcceptTerms     Field = "acceptTerms"
)

// FieldOrder is the order fields appear on the form and in validation results.
var FieldOrder = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldPassportNumber,
	FieldPassword,
	FieldConfirmPassword,
	FieldAvatarURI,
	FieldAcceptTerms,
}

var ErrUnknownField = errors.New("UNKNOWN_FIELD")

func ParseField(name string) (Field, error) {
	for _, f := range FieldOrder {
		if string(f) == name {
			return f, nil
		}
	}
	return "", ErrUnknownField
}

// FormValues is one snapshot of the form. Phone and AvatarURI are nil when absent.
type FormValues struct {
	FullName        string  `json:"fullName" validate:"filled,fullname,min=3"`
	Email           string  `json:"email" validate:"filled,emailaddr"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,ruphone"`
	PassportNumber  string  `json:"passportNumber" validate:"filled,passport"`
	Password        string  `json:"password" validate:"filled,password"`
	ConfirmPassword string  `json:"confirmPassword" validate:"filled,eqfield=Password"`
	AvatarURI       *string `json:"avatarUri,omitempty"`
	AcceptTerms     bool    `json:"acceptTerms" validate:"eq=true"`
}

// Canonical returns a copy with the phone and passport reduced to their
// canonical forms. An empty phone becomes absent.
func (v FormValues) Canonical() FormValues {
	out := v
	out.FullName = normalizeName(v.FullName)
	out.PassportNumber = digitsOnly(v.PassportNumber)
	out.Phone = nil
	if v.Phone != nil {
		if p := CanonicalPhone(*v.Phone); p != "" {
			out.Phone = &p
		}
	}
	if v.AvatarURI != nil {
		uri := *v.AvatarURI
		out.AvatarURI = &uri
	}
	return out
}

// PhoneValue returns the phone or "" when absent.
func (v FormValues) PhoneValue() string {
	if v.Phone == nil {
		return ""
	}
	return *v.Phone
}

func (v FormValues) AvatarValue() string {
	if v.AvatarURI == nil {
		return ""
	}
	return *v.AvatarURI
}

// WithoutSecrets drops both password fields.
func (v FormValues) WithoutSecrets() FormValues {
	out := v
	out.Password = ""
	out.ConfirmPassword = ""
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func digitsAndPlus(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if (s[i] >= '0' && s[i] <= '9') || s[i] == '+' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
