package profileform

import "strings"

const phoneNationalDigits = 10

// FormatPhone renders raw keystroke input as a +7 (DDD) DDD-DD-DD mask.
// Input without a leading '+' only gets the +7 prefix; the mask is built once
// the text starts with "+7". Anything else is returned with only digits and '+' kept.
func FormatPhone(raw string) string {
	cleaned := digitsAndPlus(raw)

	if !strings.HasPrefix(cleaned, "+") {
		digits := digitsOnly(cleaned)
		if digits == "" {
			return ""
		}
		if strings.HasPrefix(digits, "7") {
			return "+" + digits
		}
		return "+7" + digits
	}

	if !strings.HasPrefix(cleaned, "+7") {
		return cleaned
	}

	d := digitsOnly(cleaned[2:])
	switch {
	case len(d) == 0:
		return "+7"
	case len(d) <= 3:
		return "+7 (" + d
	case len(d) <= 6:
		return "+7 (" + d[:3] + ") " + d[3:]
	case len(d) <= 8:
		return "+7 (" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
	if len(d) > phoneNationalDigits {
		d = d[:phoneNationalDigits]
	}
	return "+7 (" + d[:3] + ") " + d[3:6] + "-" + d[6:8] + "-" + d[8:]
}

// CanonicalPhone keeps only digits and '+'.
func CanonicalPhone(s string) string {
	return digitsAndPlus(s)
}

// PhoneOnChange handles one edit of the phone input. The canonical value is
// derived from the formatted input, and the display is the mask of the canonical value.
// An 11-digit national number (e.g. a leading 8) is kept as typed and fails validation.
func PhoneOnChange(raw string) (display, canonical string) {
	canonical = CanonicalPhone(FormatPhone(raw))
	if canonical == "" {
		return "", ""
	}
	return FormatPhone(canonical), canonical
}
