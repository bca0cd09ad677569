package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"groomly/internal/domain/notification"

	"github.com/supabase-community/postgrest-go"
)

const logsTable = "notification_logs"

var _ notification.LogStore = (*LogStore)(nil)

// LogStore persists notification log entries in Supabase.
type LogStore struct {
	client *Client
}

// NewLogStore creates a Supabase-backed log store.
func NewLogStore(client *Client) *LogStore {
	return &LogStore{client: client}
}

// logRow is the internal representation for PostgREST insert/update.
type logRow struct {
	ID           string         `json:"id,omitempty"`
	CustomerID   *string        `json:"customer_id,omitempty"`
	Type         string         `json:"type"`
	Channel      string         `json:"channel"`
	Recipient    string         `json:"recipient"`
	Subject      *string        `json:"subject,omitempty"`
	TemplateData map[string]any `json:"template_data,omitempty"`
	Status       string         `json:"status"`
	ErrorMessage *string        `json:"error_message,omitempty"`
	IsTest       bool           `json:"is_test"`
	SentAt       *string        `json:"sent_at,omitempty"`
	CreatedAt    string         `json:"created_at,omitempty"`
	UpdatedAt    string         `json:"updated_at,omitempty"`
}

// Create inserts a new log entry and fills in its generated ID and timestamps.
func (s *LogStore) Create(ctx context.Context, entry *notification.LogEntry) error {
	row := logRow{
		Type:      entry.Type,
		Channel:   entry.Channel,
		Recipient: entry.Recipient,
		Status:    string(entry.Status),
		IsTest:    entry.IsTest,
	}

	if entry.CustomerID != "" {
		row.CustomerID = &entry.CustomerID
	}
	if entry.Subject != "" {
		row.Subject = &entry.Subject
	}
	if entry.TemplateData != nil {
		row.TemplateData = entry.TemplateData
	}
	if entry.ErrorMessage != "" {
		row.ErrorMessage = &entry.ErrorMessage
	}

	data, _, err := s.client.supa.From(logsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting log entry: %w", err)
	}

	var results []logRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}

	if len(results) > 0 {
		entry.ID = results[0].ID
		if t, err := time.Parse(time.RFC3339Nano, results[0].CreatedAt); err == nil {
			entry.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339Nano, results[0].UpdatedAt); err == nil {
			entry.UpdatedAt = t
		}
	}

	return nil
}

// GetByID retrieves a log entry by its ID. Returns nil, nil when absent.
func (s *LogStore) GetByID(ctx context.Context, id string) (*notification.LogEntry, error) {
	data, _, err := s.client.supa.From(logsTable).Select("*", "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching log entry: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing log entry: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	return rowToEntry(&rows[0]), nil
}

// UpdateStatus transitions an entry to a terminal status.
func (s *LogStore) UpdateStatus(ctx context.Context, id string, status notification.LogStatus, errMsg string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	update := map[string]any{
		"status":     string(status),
		"updated_at": now,
	}

	if errMsg != "" {
		update["error_message"] = errMsg
	}

	if status == notification.StatusSent {
		update["sent_at"] = now
	}

	_, _, err := s.client.supa.From(logsTable).Update(update, "", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("updating log status: %w", err)
	}

	return nil
}

// List retrieves log entries with pagination and filtering.
func (s *LogStore) List(ctx context.Context, filter notification.ListFilter) ([]*notification.LogEntry, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize

	query := s.client.supa.From(logsTable).Select("*", "exact", false)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Channel != "" {
		query = query.Eq("channel", filter.Channel)
	}
	if filter.Type != "" {
		query = query.Eq("type", filter.Type)
	}
	if filter.Search != "" {
		query = query.Ilike("recipient", "%"+filter.Search+"%")
	}
	if filter.From != "" {
		query = query.Gte("created_at", filter.From)
	}
	if filter.To != "" {
		query = query.Lte("created_at", filter.To)
	}

	query = query.Order("created_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("listing log entries: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing log list: %w", err)
	}

	entries := make([]*notification.LogEntry, len(rows))
	for i, row := range rows {
		entries[i] = rowToEntry(&row)
	}

	return entries, int(count), nil
}

// ListStalePending retrieves entries stuck in pending since before olderThan.
func (s *LogStore) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*notification.LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	threshold := olderThan.UTC().Format(time.RFC3339Nano)

	query := s.client.supa.From(logsTable).
		Select("*", "exact", false).
		Eq("status", string(notification.StatusPending)).
		Lt("updated_at", threshold).
		Order("updated_at", &postgrest.OrderOpts{Ascending: true}).
		Range(0, limit-1, "")

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("listing stale entries: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing stale entries: %w", err)
	}

	entries := make([]*notification.LogEntry, len(rows))
	for i, row := range rows {
		entries[i] = rowToEntry(&row)
	}

	return entries, nil
}

// rowToEntry converts a logRow to a LogEntry.
func rowToEntry(row *logRow) *notification.LogEntry {
	entry := &notification.LogEntry{
		ID:        row.ID,
		Type:      row.Type,
		Channel:   row.Channel,
		Recipient: row.Recipient,
		Status:    notification.LogStatus(row.Status),
		IsTest:    row.IsTest,
	}

	if row.CustomerID != nil {
		entry.CustomerID = *row.CustomerID
	}
	if row.Subject != nil {
		entry.Subject = *row.Subject
	}
	if row.TemplateData != nil {
		entry.TemplateData = row.TemplateData
	}
	if row.ErrorMessage != nil {
		entry.ErrorMessage = *row.ErrorMessage
	}

	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			entry.CreatedAt = t
		}
	}
	if row.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.UpdatedAt); err == nil {
			entry.UpdatedAt = t
		}
	}
	if row.SentAt != nil {
		if t, err := time.Parse(time.RFC3339Nano, *row.SentAt); err == nil {
			entry.SentAt = &t
		}
	}

	return entry
}
