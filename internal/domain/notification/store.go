package notification

import (
	"context"
	"time"
)

// PreferenceStore defines the contract for persisting customer
// notification preferences. Implementations live in infra/store/.
type PreferenceStore interface {
	// Fetch retrieves the raw stored preference record for a customer.
	// Returns nil, nil when no record exists.
	Fetch(ctx context.Context, customerID string) (map[string]any, error)

	// Save persists the full merged preference set for a customer,
	// creating the record if it does not exist.
	Save(ctx context.Context, customerID string, prefs Preferences) error
}

// TemplateStore defines the contract for persisting notification
// templates. Templates are versioned and deactivated, never deleted.
type TemplateStore interface {
	// GetActive retrieves the active template for a (type, channel) pair.
	// Returns nil, nil when no active template exists.
	GetActive(ctx context.Context, t NotificationType, ch Channel) (*Template, error)

	// Save deactivates the current active version (if any) and inserts
	// the template as a new active version with the given change reason.
	Save(ctx context.Context, tmpl *Template, changeReason string) error

	// List retrieves all template versions for a (type, channel) pair,
	// newest first.
	List(ctx context.Context, t NotificationType, ch Channel) ([]*Template, error)
}

// ChannelSettings holds the system-level enable switches for one
// notification type. These are admin configuration, distinct from
// per-customer preferences.
type ChannelSettings struct {
	Type         NotificationType `json:"type"`
	EmailEnabled bool             `json:"email_enabled"`
	SMSEnabled   bool             `json:"sms_enabled"`
}

// EnabledFor reports whether the given channel is switched on.
func (s *ChannelSettings) EnabledFor(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return s.EmailEnabled
	case ChannelSMS:
		return s.SMSEnabled
	}
	return false
}

// SettingsStore defines the contract for reading channel-enable settings.
type SettingsStore interface {
	// Fetch retrieves the settings row for a notification type.
	// Returns nil, nil when no row exists; callers treat that as enabled.
	Fetch(ctx context.Context, t NotificationType) (*ChannelSettings, error)
}

// LogStore defines the contract for persisting notification log entries.
type LogStore interface {
	// Create inserts a new log entry and fills in its generated ID and
	// timestamps.
	Create(ctx context.Context, entry *LogEntry) error

	// GetByID retrieves a log entry by its ID.
	GetByID(ctx context.Context, id string) (*LogEntry, error)

	// UpdateStatus transitions an entry to a terminal status. SentAt is
	// stamped for sent, ErrorMessage recorded for failed.
	UpdateStatus(ctx context.Context, id string, status LogStatus, errMsg string) error

	// List retrieves log entries with pagination and filtering.
	List(ctx context.Context, filter ListFilter) ([]*LogEntry, int, error)

	// ListStalePending retrieves entries stuck in pending since before
	// olderThan. Used by the sweeper to fail interrupted sends.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*LogEntry, error)
}
