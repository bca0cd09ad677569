package notification

// Channel represents a notification delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// IsValidChannel checks whether a delivery channel is recognized.
func IsValidChannel(c Channel) bool {
	return c == ChannelEmail || c == ChannelSMS
}

// NotificationType enumerates all supported notification types.
type NotificationType string

const (
	TypeBookingConfirmation     NotificationType = "booking_confirmation"
	TypeAppointmentStatusUpdate NotificationType = "appointment_status_update"
	TypeAppointmentReminder     NotificationType = "appointment_reminder"
	TypeRetentionReminder       NotificationType = "retention_reminder"
	TypeMarketing               NotificationType = "marketing"
)

// validTypes is the set of all recognized notification types.
var validTypes = map[NotificationType]bool{
	TypeBookingConfirmation:     true,
	TypeAppointmentStatusUpdate: true,
	TypeAppointmentReminder:     true,
	TypeRetentionReminder:       true,
	TypeMarketing:               true,
}

// IsValidType checks whether a notification type is recognized.
func IsValidType(t NotificationType) bool {
	return validTypes[t]
}

// transactionalTypes are operationally required messages that bypass
// customer preference checks entirely.
var transactionalTypes = map[NotificationType]bool{
	TypeBookingConfirmation:     true,
	TypeAppointmentStatusUpdate: true,
}

// IsTransactional reports whether a notification type is operationally
// required (booking confirmations, status updates) rather than marketing
// or engagement.
func IsTransactional(t NotificationType) bool {
	return transactionalTypes[t]
}

// marketingTypes are promotional/engagement messages gated by the
// customer's marketing_enabled flag.
var marketingTypes = map[NotificationType]bool{
	TypeRetentionReminder: true,
	TypeMarketing:         true,
}

// IsMarketing reports whether a notification type is gated by the
// marketing opt-in.
func IsMarketing(t NotificationType) bool {
	return marketingTypes[t]
}

// SendRequest is the request payload for sending a notification.
// CustomerID is optional: anonymous sends skip the preference check.
type SendRequest struct {
	Type         NotificationType `json:"type" binding:"required"`
	Channel      Channel          `json:"channel" binding:"required,oneof=email sms"`
	Recipient    string           `json:"recipient" binding:"required"`
	TemplateData map[string]any   `json:"template_data"`
	CustomerID   string           `json:"customer_id"`
	IsTest       bool             `json:"is_test"`
}

// SendOutcome is the result of one pass through the send pipeline.
// The service never returns a Go error for business failures; a blocked
// or failed send resolves to Success=false with the reason in Error.
type SendOutcome struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	LogID   string `json:"log_id,omitempty"`
}

// Message is the rendered message handed to a channel provider.
// Email providers use Subject/HTML/Text; SMS providers use Body.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
	Body    string
}
