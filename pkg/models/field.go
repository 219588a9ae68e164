package models

// FieldKind is the closed set of form field types an activity may declare.
// Consumers must handle every kind explicitly so adding a new one is a
// compile-time-visible change.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindNumber   FieldKind = "number"
	FieldKindCurrency FieldKind = "currency"
	FieldKindDate     FieldKind = "date"
	FieldKindBoolean  FieldKind = "boolean"
	FieldKindEmail    FieldKind = "email"
	FieldKindPhone    FieldKind = "phone"
	FieldKindProvider FieldKind = "provider"
	FieldKindLookup   FieldKind = "lookup"
)

// IsNumeric reports whether values of this kind are validated as numbers.
func (k FieldKind) IsNumeric() bool {
	return k == FieldKindNumber || k == FieldKindCurrency
}

// FieldDefinition describes one form field captured at an activity. Values are
// always persisted as strings; the kind drives validation and rendering, not
// storage.
type FieldDefinition struct {
	Name     string    `json:"name"  validate:"required"`
	Label    string    `json:"label" validate:"required"`
	Kind     FieldKind `json:"kind"  validate:"required"`
	Required bool      `json:"required,omitempty"`

	// DefaultValue and SourceField drive auto-population: SourceField copies a
	// previously captured field's value, DefaultValue applies otherwise.
	DefaultValue string `json:"default_value,omitempty"`
	SourceField  string `json:"source_field,omitempty"`

	// Validation rules. Pattern is a regular expression; an invalid pattern is
	// logged and skipped rather than failing the form.
	Pattern string   `json:"pattern,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`

	// Options lists the choices for select-kind fields.
	Options []string `json:"options,omitempty"`

	// VisibilityCondition is a single-clause "field OP literal" expression
	// evaluated against the in-progress form to show or hide the field.
	VisibilityCondition string `json:"visibility_condition,omitempty"`
}
