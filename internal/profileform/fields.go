package profileform

import "fmt"

// OnChange maps one raw input of a text field to its display and canonical value.
// Only the phone and passport fields are masked; other fields pass through.
func OnChange(field Field, raw string) (display, canonical string, err error) {
	switch field {
	case FieldPhone:
		display, canonical = PhoneOnChange(raw)
		return display, canonical, nil
	case FieldPassportNumber:
		display, canonical = PassportOnChange(raw)
		return display, canonical, nil
	case FieldFullName, FieldEmail, FieldPassword, FieldConfirmPassword, FieldAvatarURI:
		return raw, raw, nil
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnknownField, field)
}
