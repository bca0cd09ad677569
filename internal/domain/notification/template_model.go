package notification

import "time"

// TemplateVariable declares one substitutable placeholder in a template.
type TemplateVariable struct {
	Name         string `json:"name"`
	Required     bool   `json:"required"`
	MaxLength    int    `json:"max_length,omitempty"`
	ExampleValue string `json:"example_value,omitempty"`
}

// Template is one versioned notification template row. Email templates
// populate SubjectTemplate plus HTMLTemplate/TextTemplate; SMS templates
// populate SMSTemplate. Saves are audit-trailed with a change reason and
// old versions are deactivated, never deleted.
type Template struct {
	ID              string             `json:"id,omitempty"`
	Type            NotificationType   `json:"type"`
	Channel         Channel            `json:"channel"`
	SubjectTemplate string             `json:"subject_template,omitempty"`
	HTMLTemplate    string             `json:"html_template,omitempty"`
	TextTemplate    string             `json:"text_template,omitempty"`
	SMSTemplate     string             `json:"sms_template,omitempty"`
	Variables       []TemplateVariable `json:"variables"`
	IsActive        bool               `json:"is_active"`
	Version         int                `json:"version"`
	ChangeReason    string             `json:"change_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at,omitempty"`
}

// ValidationResult reports the outcome of edit-time template validation.
// Errors block the save; warnings are informational.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
