package model

// FieldType enumerates the input kinds the section grammar can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCombobox FieldType = "combobox"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
)

// IsTextInput reports whether the type renders as a single line input.
func (t FieldType) IsTextInput() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypeTel, FieldTypeDate:
		return true
	default:
		return false
	}
}

// HasOptions reports whether the type renders a choice list.
func (t FieldType) HasOptions() bool {
	return t == FieldTypeRadio || t == FieldTypeCombobox
}

// Option is a label/value pair. Value holds either a string or a bool; the
// parser coerces "true"/"false" so boolean radios bind real booleans.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// Field models a single input declared by the section grammar. Fields are
// built once per parse and treated as immutable afterwards.
type Field struct {
	ID            string    `json:"id" yaml:"id"`
	Type          FieldType `json:"type" yaml:"type"`
	Label         string    `json:"label" yaml:"label"`
	Name          string    `json:"fieldName" yaml:"fieldName"`
	Required      bool      `json:"required" yaml:"required"`
	Width         string    `json:"width,omitempty" yaml:"width,omitempty"`
	Order         int       `json:"order" yaml:"order"`
	Options       []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	OptionsSource string    `json:"optionsSource,omitempty" yaml:"optionsSource,omitempty"`
	Rows          int       `json:"rows,omitempty" yaml:"rows,omitempty"`
	Default       any       `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// Section groups fields under a titled card.
type Section struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Icon      string  `json:"icon" yaml:"icon"`
	Visible   bool    `json:"visible" yaml:"visible"`
	Order     int     `json:"order" yaml:"order"`
	Fields    []Field `json:"fields" yaml:"fields"`
	IsNotices bool    `json:"isNoticesSection" yaml:"isNoticesSection"`
}

// Notice is a static informational card.
type Notice struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// FormModel is the parser output consumed by controllers and renderers.
type FormModel struct {
	Sections []Section `json:"sections" yaml:"sections"`
	Notices  []Notice  `json:"notices" yaml:"notices"`
}

// Fields returns every field across sections in declaration order.
func (m FormModel) Fields() []Field {
	var out []Field
	for _, section := range m.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// SubmissionResult is returned by the remote submit call.
type SubmissionResult struct {
	Success      bool   `json:"success"`
	AnonymousID  string `json:"anonymousId,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Submission is an opaque record returned by the lookup calls.
type Submission map[string]any

// LookupResult is returned by both submission lookup calls.
type LookupResult struct {
	Success      bool         `json:"success"`
	Submissions  []Submission `json:"submissions"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}
