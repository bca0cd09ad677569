package common

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError indicates invalid input data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UnauthorizedError indicates missing or invalid authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// ProviderError indicates an external delivery provider failure.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error: %s", e.Provider, e.Message)
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, message string) *ProviderError {
	return &ProviderError{Provider: provider, Message: message}
}

// PreferenceBlockedError indicates the customer opted out of this
// message. Reason is one of the fixed customer_preference_* codes.
type PreferenceBlockedError struct {
	Reason string
}

func (e *PreferenceBlockedError) Error() string {
	return e.Reason
}

// NewPreferenceBlockedError creates a new PreferenceBlockedError.
func NewPreferenceBlockedError(reason string) *PreferenceBlockedError {
	return &PreferenceBlockedError{Reason: reason}
}

// ChannelDisabledError indicates the channel is switched off at the
// system level for this notification type. Admin-recoverable only.
type ChannelDisabledError struct {
	Channel string
	Type    string
}

func (e *ChannelDisabledError) Error() string {
	return fmt.Sprintf("%s channel disabled for %s", e.Channel, e.Type)
}

// NewChannelDisabledError creates a new ChannelDisabledError.
func NewChannelDisabledError(channel, notifType string) *ChannelDisabledError {
	return &ChannelDisabledError{Channel: channel, Type: notifType}
}

// TemplateNotFoundError indicates no active template exists for a
// (type, channel) pair.
type TemplateNotFoundError struct {
	Type    string
	Channel string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no active template for %s/%s", e.Type, e.Channel)
}

// NewTemplateNotFoundError creates a new TemplateNotFoundError.
func NewTemplateNotFoundError(notifType, channel string) *TemplateNotFoundError {
	return &TemplateNotFoundError{Type: notifType, Channel: channel}
}

// TokenError indicates a malformed, tampered, or expired unsubscribe
// token. The message is deliberately generic: callers must not reveal
// which check failed.
type TokenError struct{}

func (e *TokenError) Error() string {
	return "invalid or expired token"
}

// NewTokenError creates a new TokenError.
func NewTokenError() *TokenError {
	return &TokenError{}
}
