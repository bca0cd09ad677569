package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomly/internal/common"
)

func TestPreferencesFromRecord(t *testing.T) {
	t.Run("nil record yields defaults", func(t *testing.T) {
		p := PreferencesFromRecord(nil)
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("partial record merges over defaults", func(t *testing.T) {
		p := PreferencesFromRecord(map[string]any{
			"marketing_enabled": false,
		})
		assert.False(t, p.MarketingEnabled)
		assert.True(t, p.EmailAppointmentReminders)
		assert.True(t, p.SMSRetentionReminders)
	})

	t.Run("non-boolean fields fall back individually", func(t *testing.T) {
		p := PreferencesFromRecord(map[string]any{
			"marketing_enabled":           "yes",
			"sms_retention_reminders":     1,
			"email_appointment_reminders": false,
		})
		assert.True(t, p.MarketingEnabled, "string value keeps the default")
		assert.True(t, p.SMSRetentionReminders, "numeric value keeps the default")
		assert.False(t, p.EmailAppointmentReminders, "valid boolean still applies")
	})
}

func TestPreferenceServiceGet(t *testing.T) {
	t.Run("missing record yields defaults", func(t *testing.T) {
		store := newFakePreferenceStore()
		svc := NewPreferenceService(store)

		p := svc.Get(context.Background(), "cust-1")
		assert.Equal(t, DefaultPreferences(), p)
	})

	t.Run("fetch error fails open to defaults", func(t *testing.T) {
		store := newFakePreferenceStore()
		store.fetchErr = errors.New("supabase unreachable")
		svc := NewPreferenceService(store)

		p := svc.Get(context.Background(), "cust-1")
		assert.Equal(t, DefaultPreferences(), p)
	})
}

func TestPreferenceServiceUpdate(t *testing.T) {
	store := newFakePreferenceStore()
	store.records["cust-1"] = map[string]any{"marketing_enabled": false}
	svc := NewPreferenceService(store)

	on := true
	off := false
	err := svc.Update(context.Background(), "cust-1", PreferencesPatch{
		SMSAppointmentReminders: &off,
		MarketingEnabled:        &on,
	})
	require.NoError(t, err)

	saved := store.saved["cust-1"]
	assert.True(t, saved.MarketingEnabled)
	assert.False(t, saved.SMSAppointmentReminders)
	assert.True(t, saved.EmailAppointmentReminders, "untouched fields keep their value")
}

func TestPreferenceServiceUpdateSaveError(t *testing.T) {
	store := newFakePreferenceStore()
	store.saveErr = errors.New("write failed")
	svc := NewPreferenceService(store)

	off := false
	err := svc.Update(context.Background(), "cust-1", PreferencesPatch{MarketingEnabled: &off})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write failed")
}

func TestCheckAllowed(t *testing.T) {
	allOff := map[string]any{
		"marketing_enabled":           false,
		"email_appointment_reminders": false,
		"sms_appointment_reminders":   false,
		"email_retention_reminders":   false,
		"sms_retention_reminders":     false,
	}

	tests := []struct {
		name       string
		record     map[string]any
		notifType  NotificationType
		channel    Channel
		allowed    bool
		wantReason BlockReason
	}{
		{
			name:      "booking confirmation ignores all opt-outs",
			record:    allOff,
			notifType: TypeBookingConfirmation,
			channel:   ChannelEmail,
			allowed:   true,
		},
		{
			name:      "status update ignores all opt-outs",
			record:    allOff,
			notifType: TypeAppointmentStatusUpdate,
			channel:   ChannelSMS,
			allowed:   true,
		},
		{
			name:      "reminder allowed by default",
			record:    nil,
			notifType: TypeAppointmentReminder,
			channel:   ChannelEmail,
			allowed:   true,
		},
		{
			name:       "email reminder disabled",
			record:     map[string]any{"email_appointment_reminders": false},
			notifType:  TypeAppointmentReminder,
			channel:    ChannelEmail,
			allowed:    false,
			wantReason: "customer_preference_email_reminders_disabled",
		},
		{
			name:       "sms reminder disabled",
			record:     map[string]any{"sms_appointment_reminders": false},
			notifType:  TypeAppointmentReminder,
			channel:    ChannelSMS,
			allowed:    false,
			wantReason: "customer_preference_sms_reminders_disabled",
		},
		{
			name:      "reminder unaffected by marketing opt-out",
			record:    map[string]any{"marketing_enabled": false},
			notifType: TypeAppointmentReminder,
			channel:   ChannelEmail,
			allowed:   true,
		},
		{
			name:       "marketing gate wins over retention flag",
			record:     map[string]any{"marketing_enabled": false, "email_retention_reminders": false},
			notifType:  TypeRetentionReminder,
			channel:    ChannelEmail,
			allowed:    false,
			wantReason: "customer_preference_marketing_disabled",
		},
		{
			name:       "retention sms gate with marketing still on",
			record:     map[string]any{"sms_retention_reminders": false},
			notifType:  TypeRetentionReminder,
			channel:    ChannelSMS,
			allowed:    false,
			wantReason: "customer_preference_sms_retention_disabled",
		},
		{
			name:       "retention email gate with marketing still on",
			record:     map[string]any{"email_retention_reminders": false},
			notifType:  TypeRetentionReminder,
			channel:    ChannelEmail,
			allowed:    false,
			wantReason: "customer_preference_email_retention_disabled",
		},
		{
			name:       "marketing blast blocked by opt-out",
			record:     map[string]any{"marketing_enabled": false},
			notifType:  TypeMarketing,
			channel:    ChannelEmail,
			allowed:    false,
			wantReason: "customer_preference_marketing_disabled",
		},
		{
			name:      "marketing blast allowed by default",
			record:    nil,
			notifType: TypeMarketing,
			channel:   ChannelEmail,
			allowed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakePreferenceStore()
			if tt.record != nil {
				store.records["cust-1"] = tt.record
			}
			svc := NewPreferenceService(store)

			decision := svc.CheckAllowed(context.Background(), "cust-1", tt.notifType, tt.channel)
			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestCheckAllowedTransactionalSkipsFetch(t *testing.T) {
	store := newFakePreferenceStore()
	svc := NewPreferenceService(store)

	decision := svc.CheckAllowed(context.Background(), "cust-1", TypeBookingConfirmation, ChannelEmail)
	require.True(t, decision.Allowed)
	assert.Equal(t, 0, store.fetchCalls, "transactional types never consult storage")
}

func TestDisableChannel(t *testing.T) {
	t.Run("flips exactly one flag", func(t *testing.T) {
		store := newFakePreferenceStore()
		svc := NewPreferenceService(store)

		err := svc.DisableChannel(context.Background(), "cust-1", TypeAppointmentReminder, ChannelSMS)
		require.NoError(t, err)

		saved := store.saved["cust-1"]
		assert.False(t, saved.SMSAppointmentReminders)
		assert.True(t, saved.EmailAppointmentReminders)
		assert.True(t, saved.MarketingEnabled)
	})

	t.Run("rejects non-disableable pair before storage", func(t *testing.T) {
		store := newFakePreferenceStore()
		svc := NewPreferenceService(store)

		err := svc.DisableChannel(context.Background(), "cust-1", TypeBookingConfirmation, ChannelEmail)
		require.Error(t, err)

		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Invalid notification type or channel", verr.Message)
		assert.Equal(t, 0, store.fetchCalls)
		assert.Equal(t, 0, store.saveCalls)
	})

	t.Run("rejects marketing over sms", func(t *testing.T) {
		store := newFakePreferenceStore()
		svc := NewPreferenceService(store)

		err := svc.DisableChannel(context.Background(), "cust-1", TypeMarketing, ChannelSMS)
		require.Error(t, err)
		assert.Equal(t, 0, store.saveCalls)
	})
}

func TestDisableMarketing(t *testing.T) {
	store := newFakePreferenceStore()
	svc := NewPreferenceService(store)

	err := svc.DisableMarketing(context.Background(), "cust-1")
	require.NoError(t, err)

	saved := store.saved["cust-1"]
	assert.False(t, saved.MarketingEnabled)
	assert.True(t, saved.EmailRetentionReminders, "only the marketing flag flips")
}
