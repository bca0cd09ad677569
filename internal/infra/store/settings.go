package store

import (
	"context"
	"encoding/json"
	"fmt"

	"groomly/internal/domain/notification"
)

const settingsTable = "notification_settings"

var _ notification.SettingsStore = (*SettingsStore)(nil)

// SettingsStore reads system-level channel-enable switches from Supabase.
type SettingsStore struct {
	client *Client
}

// NewSettingsStore creates a Supabase-backed settings store.
func NewSettingsStore(client *Client) *SettingsStore {
	return &SettingsStore{client: client}
}

// settingsRow is the internal representation for PostgREST.
type settingsRow struct {
	Type         string `json:"notification_type"`
	EmailEnabled bool   `json:"email_enabled"`
	SMSEnabled   bool   `json:"sms_enabled"`
}

// Fetch retrieves the settings row for a notification type.
// Returns nil, nil when no row exists; callers treat that as enabled.
func (s *SettingsStore) Fetch(ctx context.Context, t notification.NotificationType) (*notification.ChannelSettings, error) {
	data, _, err := s.client.supa.From(settingsTable).
		Select("*", "exact", false).
		Eq("notification_type", string(t)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching channel settings: %w", err)
	}

	var rows []settingsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing channel settings: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return &notification.ChannelSettings{
		Type:         notification.NotificationType(rows[0].Type),
		EmailEnabled: rows[0].EmailEnabled,
		SMSEnabled:   rows[0].SMSEnabled,
	}, nil
}
