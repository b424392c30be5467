package main

import (
	"path/filepath"
	"testing"

	"mobile-forms/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddField(t *testing.T) {
	reg := registry.Default()

	err := addField(reg, "profile", registry.FieldDescriptor{Name: "middleName", Kind: registry.KindText, Label: "Отчество"})
	require.NoError(t, err)
	form, _ := reg.Find("profile")
	assert.Equal(t, "middleName", form.Fields[len(form.Fields)-1].Name)

	err = addField(reg, "profile", registry.FieldDescriptor{Name: "email", Kind: registry.KindText, Label: "x"})
	assert.ErrorContains(t, err, "already exists")

	err = addField(reg, "missing", registry.FieldDescriptor{Name: "x"})
	assert.ErrorIs(t, err, registry.ErrFormNotFound)
}

func TestUpdateField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		attr    string
		value   string
		wantErr string
		check   func(t *testing.T, f registry.FieldDescriptor)
	}{
		{"label", "email", "label", "Почта", "", func(t *testing.T, f registry.FieldDescriptor) {
			assert.Equal(t, "Почта", f.Label)
		}},
		{"maxLength", "phone", "maxLength", "20", "", func(t *testing.T, f registry.FieldDescriptor) {
			assert.Equal(t, 20, f.MaxLength)
		}},
		{"required", "phone", "required", "true", "", func(t *testing.T, f registry.FieldDescriptor) {
			assert.True(t, f.Required)
		}},
		{"bad number", "phone", "maxLength", "many", "invalid maxLength", nil},
		{"bad bool", "phone", "secure", "maybe", "invalid secure", nil},
		{"unknown attr", "phone", "color", "red", "unknown attribute", nil},
		{"unknown field", "nickname", "label", "x", "not found", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.Default()
			err := updateField(reg, "profile", tt.field, tt.attr, tt.value)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			form, _ := reg.Find("profile")
			for _, f := range form.Fields {
				if f.Name == tt.field {
					tt.check(t, f)
				}
			}
		})
	}
}

func TestSaveRejectsInvalidRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	reg := registry.Default()
	require.NoError(t, updateField(reg, "profile", "email", "keyboard", "emoji"))

	assert.Error(t, save(reg, path))
	assert.NoFileExists(t, path)

	require.NoError(t, save(registry.Default(), path))
	loaded, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, loaded.Forms, 1)
}
