package notification

// Preferences holds a customer's notification opt-in flags.
// A customer with no stored record gets the full default set; individual
// fields that fail to type-check as booleans fall back to their default
// without rejecting the rest of the record.
type Preferences struct {
	MarketingEnabled          bool `json:"marketing_enabled"`
	EmailAppointmentReminders bool `json:"email_appointment_reminders"`
	SMSAppointmentReminders   bool `json:"sms_appointment_reminders"`
	EmailRetentionReminders   bool `json:"email_retention_reminders"`
	SMSRetentionReminders     bool `json:"sms_retention_reminders"`
}

// DefaultPreferences returns the opt-out-model default set: everything
// enabled until the customer says otherwise.
func DefaultPreferences() Preferences {
	return Preferences{
		MarketingEnabled:          true,
		EmailAppointmentReminders: true,
		SMSAppointmentReminders:   true,
		EmailRetentionReminders:   true,
		SMSRetentionReminders:     true,
	}
}

// PreferencesFromRecord merges a raw stored record over the defaults.
// Each field is taken from the record only if it is present and a real
// boolean; anything else keeps that field's default.
func PreferencesFromRecord(record map[string]any) Preferences {
	p := DefaultPreferences()
	if record == nil {
		return p
	}
	if v, ok := record["marketing_enabled"].(bool); ok {
		p.MarketingEnabled = v
	}
	if v, ok := record["email_appointment_reminders"].(bool); ok {
		p.EmailAppointmentReminders = v
	}
	if v, ok := record["sms_appointment_reminders"].(bool); ok {
		p.SMSAppointmentReminders = v
	}
	if v, ok := record["email_retention_reminders"].(bool); ok {
		p.EmailRetentionReminders = v
	}
	if v, ok := record["sms_retention_reminders"].(bool); ok {
		p.SMSRetentionReminders = v
	}
	return p
}

// PreferencesPatch is a partial preference update. Nil fields are left
// untouched by Apply.
type PreferencesPatch struct {
	MarketingEnabled          *bool `json:"marketing_enabled,omitempty"`
	EmailAppointmentReminders *bool `json:"email_appointment_reminders,omitempty"`
	SMSAppointmentReminders   *bool `json:"sms_appointment_reminders,omitempty"`
	EmailRetentionReminders   *bool `json:"email_retention_reminders,omitempty"`
	SMSRetentionReminders     *bool `json:"sms_retention_reminders,omitempty"`
}

// Apply shallow-merges the patch over p and returns the result.
func (patch PreferencesPatch) Apply(p Preferences) Preferences {
	if patch.MarketingEnabled != nil {
		p.MarketingEnabled = *patch.MarketingEnabled
	}
	if patch.EmailAppointmentReminders != nil {
		p.EmailAppointmentReminders = *patch.EmailAppointmentReminders
	}
	if patch.SMSAppointmentReminders != nil {
		p.SMSAppointmentReminders = *patch.SMSAppointmentReminders
	}
	if patch.EmailRetentionReminders != nil {
		p.EmailRetentionReminders = *patch.EmailRetentionReminders
	}
	if patch.SMSRetentionReminders != nil {
		p.SMSRetentionReminders = *patch.SMSRetentionReminders
	}
	return p
}

// BlockReason is the closed set of preference-block outcomes. The string
// values are a stable contract: callers and the admin UI match on them.
type BlockReason string

const (
	ReasonMarketingDisabled      BlockReason = "customer_preference_marketing_disabled"
	ReasonEmailRemindersDisabled BlockReason = "customer_preference_email_reminders_disabled"
	ReasonSMSRemindersDisabled   BlockReason = "customer_preference_sms_reminders_disabled"
	ReasonEmailRetentionDisabled BlockReason = "customer_preference_email_retention_disabled"
	ReasonSMSRetentionDisabled   BlockReason = "customer_preference_sms_retention_disabled"
)

// Decision is the outcome of a preference check. Reason is empty when
// Allowed is true.
type Decision struct {
	Allowed bool        `json:"allowed"`
	Reason  BlockReason `json:"reason,omitempty"`
}
