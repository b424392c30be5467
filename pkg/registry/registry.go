// Package registry describes how forms are rendered: field order, labels,
// keyboards and input limits. Clients read it from GET /v1/forms/{id}.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrFormNotFound = errors.New("FORM_NOT_FOUND")

func LoadRegistry(path string) (*FormRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FormRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrDefault reads path and falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*FormRegistry, error) {
	if path == "" {
		return Default(), nil
	}
	reg, err := LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func SaveRegistry(reg *FormRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func (r *FormRegistry) Find(id string) (*Form, error) {
	for i := range r.Forms {
		if r.Forms[i].ID == id {
			return &r.Forms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFormNotFound, id)
}

// Validate checks ids are unique and every field is renderable.
func (r *FormRegistry) Validate() error {
	if len(r.Forms) == 0 {
		return errors.New("registry contains no forms")
	}

	forms := make(map[string]bool)
	for _, form := range r.Forms {
		if form.ID == "" {
			return errors.New("form missing required field: id")
		}
		if forms[form.ID] {
			return fmt.Errorf("duplicate form id: %s", form.ID)
		}
		forms[form.ID] = true

		fields := make(map[string]bool)
		for _, f := range form.Fields {
			if f.Name == "" {
				return fmt.Errorf("form %s: field missing required field: name", form.ID)
			}
			if fields[f.Name] {
				return fmt.Errorf("form %s: duplicate field %s", form.ID, f.Name)
			}
			fields[f.Name] = true

			if f.Label == "" {
				return fmt.Errorf("form %s: field %s missing label", form.ID, f.Name)
			}
			switch f.Kind {
			case KindText, KindCheckbox, KindImage:
			default:
				return fmt.Errorf("form %s: field %s has unknown kind %q", form.ID, f.Name, f.Kind)
			}
			switch f.Keyboard {
			case "", KeyboardDefault, KeyboardEmail, KeyboardPhone, KeyboardNumber:
			default:
				return fmt.Errorf("form %s: field %s has unknown keyboard %q", form.ID, f.Name, f.Keyboard)
			}
			if f.MaxLength < 0 {
				return fmt.Errorf("form %s: field %s has negative maxLength", form.ID, f.Name)
			}
		}
	}
	return nil
}

// Default is the built-in registry holding the profile form.
func Default() *FormRegistry {
	return &FormRegistry{
		Version:     "1.0.0",
		LastUpdated: "2024-01-01T00:00:00Z",
		Forms: []Form{{
			ID:          "profile",
			Title:       "Профиль",
			SubmitLabel: "Сохранить",
			BusyLabel:   "Сохраняем...",
			Fields: []FieldDescriptor{
				{Name: "avatarUri", Kind: KindImage, Label: "Фото документа / аватар", Placeholder: "Нажми, чтобы выбрать фото"},
				{Name: "fullName", Kind: KindText, Label: "ФИО *", Placeholder: "Иванов Иван Иванович", Required: true},
				{Name: "email", Kind: KindText, Label: "Email *", Placeholder: "you@example.com", Required: true, Keyboard: KeyboardEmail},
				{Name: "phone", Kind: KindText, Label: "Телефон (опционально)", Placeholder: "+7 (XXX) XXX-XX-XX", MaxLength: 18, Keyboard: KeyboardPhone, Mask: "+7 (999) 999-99-99"},
				{Name: "passportNumber", Kind: KindText, Label: "Номер паспорта *", Placeholder: "1234 567890", Required: true, MaxLength: 11, Keyboard: KeyboardNumber, Mask: "9999 999999"},
				{Name: "password", Kind: KindText, Label: "Пароль *", Placeholder: "Минимум 8 символов, буквы и цифры", Required: true, Secure: true},
				{Name: "confirmPassword", Kind: KindText, Label: "Подтверждение пароля *", Placeholder: "Повторите пароль", Required: true, Secure: true},
				{Name: "acceptTerms", Kind: KindCheckbox, Label: "Я принимаю условия соглашения *", Required: true},
			},
		}},
	}
}
