package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"groomly/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
)

const templatesTable = "notification_templates"

var _ notification.TemplateStore = (*TemplateStore)(nil)

// TemplateStore persists versioned notification templates in Supabase.
// Saves deactivate the previous version and insert a new row; nothing is
// ever deleted, preserving the audit trail.
type TemplateStore struct {
	client *Client
}

// NewTemplateStore creates a Supabase-backed template store.
func NewTemplateStore(client *Client) *TemplateStore {
	return &TemplateStore{client: client}
}

// templateRow is the internal representation for PostgREST.
type templateRow struct {
	ID              string          `json:"id,omitempty"`
	TriggerEvent    string          `json:"trigger_event"`
	Channel         string          `json:"channel"`
	SubjectTemplate *string         `json:"subject_template,omitempty"`
	HTMLTemplate    *string         `json:"html_template,omitempty"`
	TextTemplate    *string         `json:"text_template,omitempty"`
	SMSTemplate     *string         `json:"sms_template,omitempty"`
	Variables       json.RawMessage `json:"variables,omitempty"`
	IsActive        bool            `json:"is_active"`
	Version         int             `json:"version"`
	ChangeReason    *string         `json:"change_reason,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
	UpdatedAt       string          `json:"updated_at,omitempty"`
}

// GetActive retrieves the active template for a (type, channel) pair.
// Returns nil, nil when no active template exists.
func (s *TemplateStore) GetActive(ctx context.Context, t notification.NotificationType, ch notification.Channel) (*notification.Template, error) {
	data, _, err := s.client.supa.From(templatesTable).
		Select("*", "exact", false).
		Eq("trigger_event", string(t)).
		Eq("channel", string(ch)).
		Eq("is_active", "true").
		Order("version", &postgrest.OrderOpts{Ascending: false}).
		Range(0, 0, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}

	var rows []templateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToTemplate(&rows[0])
}

// Save deactivates the current active version and inserts the template
// as a new active version with the change reason recorded.
func (s *TemplateStore) Save(ctx context.Context, tmpl *notification.Template, changeReason string) error {
	current, err := s.GetActive(ctx, tmpl.Type, tmpl.Channel)
	if err != nil {
		return err
	}

	version := 1
	if current != nil {
		version = current.Version + 1

		deactivate := map[string]any{
			"is_active":  false,
			"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
		}
		_, _, err := s.client.supa.From(templatesTable).
			Update(deactivate, "", "").
			Eq("trigger_event", string(tmpl.Type)).
			Eq("channel", string(tmpl.Channel)).
			Eq("is_active", "true").
			Execute()
		if err != nil {
			return fmt.Errorf("deactivating previous version: %w", err)
		}
	}

	variables, err := json.Marshal(tmpl.Variables)
	if err != nil {
		return fmt.Errorf("marshaling template variables: %w", err)
	}

	row := templateRow{
		TriggerEvent: string(tmpl.Type),
		Channel:      string(tmpl.Channel),
		Variables:    variables,
		IsActive:     true,
		Version:      version,
		ChangeReason: &changeReason,
	}

	if tmpl.SubjectTemplate != "" {
		row.SubjectTemplate = &tmpl.SubjectTemplate
	}
	if tmpl.HTMLTemplate != "" {
		row.HTMLTemplate = &tmpl.HTMLTemplate
	}
	if tmpl.TextTemplate != "" {
		row.TextTemplate = &tmpl.TextTemplate
	}
	if tmpl.SMSTemplate != "" {
		row.SMSTemplate = &tmpl.SMSTemplate
	}

	data, _, err := s.client.supa.From(templatesTable).
		Insert(row, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("inserting template version: %w", err)
	}

	var results []templateRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		tmpl.ID = results[0].ID
		tmpl.Version = results[0].Version
		tmpl.IsActive = true
	}

	return nil
}

// List retrieves all template versions for a (type, channel) pair,
// newest first.
func (s *TemplateStore) List(ctx context.Context, t notification.NotificationType, ch notification.Channel) ([]*notification.Template, error) {
	data, _, err := s.client.supa.From(templatesTable).
		Select("*", "exact", false).
		Eq("trigger_event", string(t)).
		Eq("channel", string(ch)).
		Order("version", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("listing template versions: %w", err)
	}

	var rows []templateRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing template versions: %w", err)
	}

	templates := make([]*notification.Template, 0, len(rows))
	for i := range rows {
		tmpl, err := rowToTemplate(&rows[i])
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}

	return templates, nil
}

// rowToTemplate converts a templateRow to a Template.
func rowToTemplate(row *templateRow) (*notification.Template, error) {
	tmpl := &notification.Template{
		ID:       row.ID,
		Type:     notification.NotificationType(row.TriggerEvent),
		Channel:  notification.Channel(row.Channel),
		IsActive: row.IsActive,
		Version:  row.Version,
	}

	if row.SubjectTemplate != nil {
		tmpl.SubjectTemplate = *row.SubjectTemplate
	}
	if row.HTMLTemplate != nil {
		tmpl.HTMLTemplate = *row.HTMLTemplate
	}
	if row.TextTemplate != nil {
		tmpl.TextTemplate = *row.TextTemplate
	}
	if row.SMSTemplate != nil {
		tmpl.SMSTemplate = *row.SMSTemplate
	}
	if row.ChangeReason != nil {
		tmpl.ChangeReason = *row.ChangeReason
	}

	if len(row.Variables) > 0 {
		if err := json.Unmarshal(row.Variables, &tmpl.Variables); err != nil {
			return nil, fmt.Errorf("parsing template variables: %w", err)
		}
	}

	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			tmpl.CreatedAt = t
		}
	}
	if row.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.UpdatedAt); err == nil {
			tmpl.UpdatedAt = t
		}
	}

	return tmpl, nil
}
