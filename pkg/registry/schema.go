package registry

type FormRegistry struct {
	Version     string `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	Forms       []Form `json:"forms"`
}

type Form struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	SubmitLabel string            `json:"submitLabel"`
	BusyLabel   string            `json:"busyLabel"`
	Fields      []FieldDescriptor `json:"fields"`
}

// Field kinds.
const (
	KindText     = "text"
	KindCheckbox = "checkbox"
	KindImage    = "image"
)

// Keyboards a text field may request.
const (
	KeyboardDefault = "default"
	KeyboardEmail   = "email-address"
	KeyboardPhone   = "phone-pad"
	KeyboardNumber  = "number-pad"
)

// FieldDescriptor tells a client how to render one input.
type FieldDescriptor struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
	MaxLength   int    `json:"maxLength,omitempty"`
	Keyboard    string `json:"keyboard,omitempty"`
	Secure      bool   `json:"secure,omitempty"`
	Mask        string `json:"mask,omitempty"`
}
