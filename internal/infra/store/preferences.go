package store

import (
	"context"
	"encoding/json"
	"fmt"

	"groomly/internal/domain/notification"
)

const preferencesTable = "customer_notification_preferences"

var _ notification.PreferenceStore = (*PreferenceStore)(nil)

// PreferenceStore persists customer preference records in Supabase.
// The preferences column is a JSON blob; type coercion against the
// defaults happens in the domain, not here.
type PreferenceStore struct {
	client *Client
}

// NewPreferenceStore creates a Supabase-backed preference store.
func NewPreferenceStore(client *Client) *PreferenceStore {
	return &PreferenceStore{client: client}
}

// preferenceRow is the internal representation for PostgREST.
type preferenceRow struct {
	CustomerID  string          `json:"customer_id"`
	Preferences json.RawMessage `json:"preferences"`
}

// Fetch retrieves the raw stored preference record for a customer.
// Returns nil, nil when no record exists.
func (s *PreferenceStore) Fetch(ctx context.Context, customerID string) (map[string]any, error) {
	data, _, err := s.client.supa.From(preferencesTable).
		Select("*", "exact", false).
		Eq("customer_id", customerID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching preferences: %w", err)
	}

	var rows []preferenceRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing preferences: %w", err)
	}

	if len(rows) == 0 || len(rows[0].Preferences) == 0 {
		return nil, nil
	}

	var record map[string]any
	if err := json.Unmarshal(rows[0].Preferences, &record); err != nil {
		return nil, fmt.Errorf("parsing preference blob: %w", err)
	}

	return record, nil
}

// Save upserts the full merged preference set for a customer.
func (s *PreferenceStore) Save(ctx context.Context, customerID string, prefs notification.Preferences) error {
	blob, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	row := preferenceRow{
		CustomerID:  customerID,
		Preferences: blob,
	}

	_, _, err = s.client.supa.From(preferencesTable).
		Upsert(row, "customer_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}

	return nil
}
