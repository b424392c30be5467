package registry

import (
	"os"
	"path/filepath"
	"testing"

	"mobile-forms/internal/profileform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValidAndCoversProfileFields(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())

	form, err := reg.Find("profile")
	require.NoError(t, err)

	names := map[string]FieldDescriptor{}
	for _, f := range form.Fields {
		names[f.Name] = f
	}
	for _, field := range profileform.FieldOrder {
		assert.Contains(t, names, string(field))
	}

	assert.Equal(t, 18, names["phone"].MaxLength)
	assert.Equal(t, 11, names["passportNumber"].MaxLength)
	assert.Equal(t, len(profileform.FormatPhone("+79991234567")), len([]rune(names["phone"].Mask)))
	assert.True(t, names["password"].Secure)
	assert.False(t, names["phone"].Required)
}

func TestFind_Unknown(t *testing.T) {
	_, err := Default().Find("signup")
	assert.ErrorIs(t, err, ErrFormNotFound)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	reg, err := LoadOrDefault(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), reg)

	path := filepath.Join(dir, "nested", "forms.json")
	custom := Default()
	custom.Forms[0].Title = "Анкета"
	require.NoError(t, SaveRegistry(custom, path))

	loaded, err := LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, "Анкета", loaded.Forms[0].Title)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *FormRegistry)
		wantErr string
	}{
		{"no forms", func(r *FormRegistry) { r.Forms = nil }, "no forms"},
		{"duplicate form", func(r *FormRegistry) { r.Forms = append(r.Forms, r.Forms[0]) }, "duplicate form id"},
		{"duplicate field", func(r *FormRegistry) {
			r.Forms[0].Fields = append(r.Forms[0].Fields, r.Forms[0].Fields[1])
		}, "duplicate field"},
		{"missing label", func(r *FormRegistry) { r.Forms[0].Fields[1].Label = "" }, "missing label"},
		{"unknown kind", func(r *FormRegistry) { r.Forms[0].Fields[1].Kind = "slider" }, "unknown kind"},
		{"unknown keyboard", func(r *FormRegistry) { r.Forms[0].Fields[2].Keyboard = "emoji" }, "unknown keyboard"},
		{"negative max length", func(r *FormRegistry) { r.Forms[0].Fields[3].MaxLength = -1 }, "negative maxLength"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Default()
			tt.mutate(reg)
			assert.ErrorContains(t, reg.Validate(), tt.wantErr)
		})
	}
}
