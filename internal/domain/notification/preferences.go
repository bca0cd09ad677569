package notification

import (
	"context"
	"fmt"
	"log/slog"

	"groomly/internal/common"
)

// PreferenceService answers allow/deny decisions for customer
// notifications and manages the stored preference flags.
type PreferenceService struct {
	store PreferenceStore
}

var _ PreferenceChecker = (*PreferenceService)(nil)

// NewPreferenceService creates a new preference service.
func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// Get returns a customer's preferences merged over the defaults.
// Reads fail open: a fetch error or missing record yields the full
// default set rather than blocking the caller.
func (s *PreferenceService) Get(ctx context.Context, customerID string) Preferences {
	record, err := s.store.Fetch(ctx, customerID)
	if err != nil {
		slog.Error("preference fetch failed, using defaults",
			"customer_id", customerID,
			"error", err,
		)
		return DefaultPreferences()
	}
	return PreferencesFromRecord(record)
}

// Update merges the patch over the customer's current (defaulted)
// preferences and persists the result. Writes fail closed: the storage
// error is returned explicitly.
func (s *PreferenceService) Update(ctx context.Context, customerID string, patch PreferencesPatch) error {
	current := s.Get(ctx, customerID)
	merged := patch.Apply(current)

	if err := s.store.Save(ctx, customerID, merged); err != nil {
		return fmt.Errorf("saving preferences for %s: %w", customerID, err)
	}
	return nil
}

// CheckAllowed decides whether a (type, channel) message may be sent to
// the customer. Transactional types bypass preferences entirely. For
// marketing types the marketing gate is evaluated before any
// channel-specific gate; the first failing gate determines the reason.
func (s *PreferenceService) CheckAllowed(ctx context.Context, customerID string, t NotificationType, ch Channel) Decision {
	if IsTransactional(t) {
		return Decision{Allowed: true}
	}

	prefs := s.Get(ctx, customerID)

	if IsMarketing(t) && !prefs.MarketingEnabled {
		return Decision{Allowed: false, Reason: ReasonMarketingDisabled}
	}

	switch t {
	case TypeAppointmentReminder:
		if ch == ChannelEmail && !prefs.EmailAppointmentReminders {
			return Decision{Allowed: false, Reason: ReasonEmailRemindersDisabled}
		}
		if ch == ChannelSMS && !prefs.SMSAppointmentReminders {
			return Decision{Allowed: false, Reason: ReasonSMSRemindersDisabled}
		}
	case TypeRetentionReminder:
		if ch == ChannelEmail && !prefs.EmailRetentionReminders {
			return Decision{Allowed: false, Reason: ReasonEmailRetentionDisabled}
		}
		if ch == ChannelSMS && !prefs.SMSRetentionReminders {
			return Decision{Allowed: false, Reason: ReasonSMSRetentionDisabled}
		}
	}

	return Decision{Allowed: true}
}

// DisableMarketing flips the customer's marketing opt-in off.
func (s *PreferenceService) DisableMarketing(ctx context.Context, customerID string) error {
	off := false
	return s.Update(ctx, customerID, PreferencesPatch{MarketingEnabled: &off})
}

// disableableFlags maps the (type, channel) pairs a customer may switch
// off individually to the patch that flips exactly that flag.
var disableableFlags = map[NotificationType]map[Channel]func(*PreferencesPatch, *bool){
	TypeAppointmentReminder: {
		ChannelEmail: func(p *PreferencesPatch, v *bool) { p.EmailAppointmentReminders = v },
		ChannelSMS:   func(p *PreferencesPatch, v *bool) { p.SMSAppointmentReminders = v },
	},
	TypeRetentionReminder: {
		ChannelEmail: func(p *PreferencesPatch, v *bool) { p.EmailRetentionReminders = v },
		ChannelSMS:   func(p *PreferencesPatch, v *bool) { p.SMSRetentionReminders = v },
	},
	TypeMarketing: {
		ChannelEmail: func(p *PreferencesPatch, v *bool) { p.MarketingEnabled = v },
	},
}

// DisableChannel flips off the single flag for a (type, channel) pair.
// The pair is validated against the allow-list before any storage access.
func (s *PreferenceService) DisableChannel(ctx context.Context, customerID string, t NotificationType, ch Channel) error {
	channels, ok := disableableFlags[t]
	if !ok {
		return common.NewValidationError("Invalid notification type or channel")
	}
	set, ok := channels[ch]
	if !ok {
		return common.NewValidationError("Invalid notification type or channel")
	}

	off := false
	var patch PreferencesPatch
	set(&patch, &off)
	return s.Update(ctx, customerID, patch)
}
