package validateprofile

import (
	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/profileform"
)

type Input struct {
	Profile profileform.FormValues `json:"profile"`
	// Locale overrides the worker's message locale for this job.
	Locale string `json:"locale,omitempty"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
	CanonicalProfile CanonicalProfile             `json:"canonicalProfile"`
}

// CanonicalProfile is the normalized profile without either password field.
type CanonicalProfile struct {
	FullName       string  `json:"fullName"`
	Email          string  `json:"email"`
	Phone          *string `json:"phone,omitempty"`
	PassportNumber string  `json:"passportNumber"`
	AvatarURI      *string `json:"avatarUri,omitempty"`
	AcceptTerms    bool    `json:"acceptTerms"`
}

func newCanonicalProfile(values profileform.FormValues) CanonicalProfile {
	c := values.Canonical()
	return CanonicalProfile{
		FullName:       c.FullName,
		Email:          c.Email,
		Phone:          c.Phone,
		PassportNumber: c.PassportNumber,
		AvatarURI:      c.AvatarURI,
		AcceptTerms:    c.AcceptTerms,
	}
}

var variablesSchema = validation.MustSchema(`{
	"type": "object",
	"required": ["profile"],
	"properties": {
		"locale": {"type": "string"},
		"profile": {
			"type": "object",
			"properties": {
				"fullName":        {"type": "string"},
				"email":           {"type": "string"},
				"phone":           {"type": ["string", "null"]},
				"passportNumber":  {"type": "string"},
				"password":        {"type": "string"},
				"confirmPassword": {"type": "string"},
				"avatarUri":       {"type": ["string", "null"]},
				"acceptTerms":     {"type": "boolean"}
			}
		}
	}
}`)
