package profileform

import (
	"golang.org/x/text/language"
)

// Rule failure codes carried in validation.ValidationError.Code.
const (
	CodeRequired      = "REQUIRED"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeMinLength     = "MIN_LENGTH"
	CodeMismatch      = "MISMATCH"
	CodeNotAccepted   = "NOT_ACCEPTED"
)

type NoticeKind string

const (
	NoticeSubmitted        NoticeKind = "submitted"
	NoticeSubmitFailed     NoticeKind = "submit_failed"
	NoticePermissionDenied NoticeKind = "permission_denied"
)

// Notice is a one-shot user-facing message (an alert on the device).
type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Title string     `json:"title"`
	Body  string     `json:"body"`
}

type messageKey struct {
	field Field
	code  string
}

type catalogData struct {
	fields  map[messageKey]string
	notices map[NoticeKind]Notice
}

var supportedLocales = []language.Tag{language.Russian, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

var catalogs = map[language.Tag]catalogData{
	language.Russian: {
		fields: map[messageKey]string{
			{FieldFullName, CodeRequired}:            "ФИО обязательно",
			{FieldFullName, CodeInvalidFormat}:       "Только буквы, пробелы и дефис",
			{FieldFullName, CodeMinLength}:           "Минимум 3 символа",
			{FieldEmail, CodeRequired}:               "Email обязателен",
			{FieldEmail, CodeInvalidFormat}:          "Неверный email",
			{FieldPhone, CodeInvalidFormat}:          "Телефон в формате +71234567890",
			{FieldPassportNumber, CodeRequired}:      "Номер паспорта обязателен",
			{FieldPassportNumber, CodeInvalidFormat}: "Формат: 1234 567890 (10 цифр)",
			{FieldPassword, CodeRequired}:            "Пароль обязателен",
			{FieldPassword, CodeInvalidFormat}:       "Минимум 8 символов, хотя бы одна буква и одна цифра",
			{FieldConfirmPassword, CodeRequired}:     "Подтвердите пароль",
			{FieldConfirmPassword, CodeMismatch}:     "Пароли не совпадают",
			{FieldAcceptTerms, CodeNotAccepted}:      "Нужно принять условия",
		},
		notices: map[NoticeKind]Notice{
			NoticeSubmitted:        {Kind: NoticeSubmitted, Title: "Готово", Body: "Форма валидна, данные сохранены"},
			NoticeSubmitFailed:     {Kind: NoticeSubmitFailed, Title: "Ошибка", Body: "Не удалось сохранить данные. Попробуйте позже."},
			NoticePermissionDenied: {Kind: NoticePermissionDenied, Title: "Нет доступа", Body: "Разрешите доступ к фото, чтобы выбрать изображение"},
		},
	},
	language.English: {
		fields: map[messageKey]string{
			{FieldFullName, CodeRequired}:            "Full name is required",
			{FieldFullName, CodeInvalidFormat}:       "Letters, spaces and hyphens only",
			{FieldFullName, CodeMinLength}:           "At least 3 characters",
			{FieldEmail, CodeRequired}:               "Email is required",
			{FieldEmail, CodeInvalidFormat}:          "Invalid email",
			{FieldPhone, CodeInvalidFormat}:          "Phone must look like +71234567890",
			{FieldPassportNumber, CodeRequired}:      "Passport number is required",
			{FieldPassportNumber, CodeInvalidFormat}: "Format: 1234 567890 (10 digits)",
			{FieldPassword, CodeRequired}:            "Password is required",
			{FieldPassword, CodeInvalidFormat}:       "At least 8 characters with a letter and a digit",
			{FieldConfirmPassword, CodeRequired}:     "Confirm the password",
			{FieldConfirmPassword, CodeMismatch}:     "Passwords do not match",
			{FieldAcceptTerms, CodeNotAccepted}:      "You must accept the terms",
		},
		notices: map[NoticeKind]Notice{
			NoticeSubmitted:        {Kind: NoticeSubmitted, Title: "Done", Body: "The form is valid and has been saved"},
			NoticeSubmitFailed:     {Kind: NoticeSubmitFailed, Title: "Error", Body: "Could not save the form. Please try again later."},
			NoticePermissionDenied: {Kind: NoticePermissionDenied, Title: "No access", Body: "Allow photo access to choose an image"},
		},
	},
}

// Catalog resolves rule failures and notices to localized text.
type Catalog struct {
	tag  language.Tag
	data catalogData
}

// NewCatalog picks the closest supported locale; unknown locales fall back to Russian.
func NewCatalog(locale string) *Catalog {
	tag, err := language.Parse(locale)
	if err != nil {
		return DefaultCatalog()
	}
	return match(tag)
}

// CatalogForAcceptLanguage picks a catalog from an HTTP Accept-Language header.
func CatalogForAcceptLanguage(header string, fallback *Catalog) *Catalog {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	return match(tags...)
}

func DefaultCatalog() *Catalog {
	return &Catalog{tag: language.Russian, data: catalogs[language.Russian]}
}

func match(tags ...language.Tag) *Catalog {
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return DefaultCatalog()
	}
	tag := supportedLocales[idx]
	return &Catalog{tag: tag, data: catalogs[tag]}
}

func (c *Catalog) Locale() string {
	return c.tag.String()
}

func (c *Catalog) FieldMessage(field Field, code string) string {
	if msg, ok := c.data.fields[messageKey{field, code}]; ok {
		return msg
	}
	return code
}

func (c *Catalog) Notice(kind NoticeKind) Notice {
	return c.data.notices[kind]
}
