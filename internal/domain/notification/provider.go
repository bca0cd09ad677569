package notification

import "context"

// ProviderResult is what a channel provider reports after a successful
// delivery handoff.
type ProviderResult struct {
	// MessageID is the provider's unique identifier for the accepted message.
	MessageID string

	// SegmentCount is the number of 160-character SMS segments the message
	// was split into. Zero for email.
	SegmentCount int
}

// Provider defines the contract for a notification delivery channel.
// Implementations live in infra/ (Resend or SMTP for email, Twilio or
// SNS for SMS). Providers do not retry; retries are a caller concern.
type Provider interface {
	// Send delivers a rendered message.
	Send(ctx context.Context, msg *Message) (*ProviderResult, error)

	// Channel returns which delivery channel this provider handles.
	Channel() Channel
}

// TemplateEngine defines the contract for rendering stored templates and
// validating them at edit time. Implementations live in infra/template/.
type TemplateEngine interface {
	// RenderMessage renders the channel-appropriate fields of tmpl with
	// data. Unresolved placeholders are left verbatim rather than failing
	// the send.
	RenderMessage(tmpl *Template, ch Channel, data map[string]any) *Message

	// Validate checks a template before it is saved. Errors block the
	// save; warnings are informational.
	Validate(tmpl *Template) ValidationResult
}

// PreferenceChecker is the service-side seam for the allow/deny decision.
// PreferenceService is the production implementation.
type PreferenceChecker interface {
	CheckAllowed(ctx context.Context, customerID string, t NotificationType, ch Channel) Decision
}

// RecipientRateLimiter defines the contract for per-recipient send
// limiting. Implementations live in infra/ratelimit/.
type RecipientRateLimiter interface {
	// Allow checks whether a notification can be sent to the recipient.
	Allow(ctx context.Context, recipient string) (bool, error)
}
