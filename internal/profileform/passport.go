package profileform

const (
	passportSeriesDigits = 4
	passportDigits       = 10
)

// FormatPassport renders input as "DDDD DDDDDD", dropping digits past the tenth.
func FormatPassport(raw string) string {
	d := digitsOnly(raw)
	if len(d) <= passportSeriesDigits {
		return d
	}
	if len(d) > passportDigits {
		d = d[:passportDigits]
	}
	return d[:passportSeriesDigits] + " " + d[passportSeriesDigits:]
}

func PassportOnChange(raw string) (display, canonical string) {
	display = FormatPassport(raw)
	return display, digitsOnly(display)
}
