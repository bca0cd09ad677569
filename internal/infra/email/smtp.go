package email

import (
	"context"
	"fmt"

	"groomly/internal/domain/notification"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

var _ notification.Provider = (*SMTPProvider)(nil)

// SMTPProvider sends emails over plain SMTP. Used by self-hosted
// deployments that do not want an email API vendor.
type SMTPProvider struct {
	dialer      *gomail.Dialer
	fromAddress string
	fromName    string
}

// NewSMTPProvider creates a new SMTP email provider.
func NewSMTPProvider(host string, port int, username, password, fromAddress, fromName string) *SMTPProvider {
	return &SMTPProvider{
		dialer:      gomail.NewDialer(host, port, username, password),
		fromAddress: fromAddress,
		fromName:    fromName,
	}
}

// Channel returns the email channel identifier.
func (p *SMTPProvider) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send delivers an email via SMTP. SMTP has no provider-assigned message
// ID, so one is generated locally for the delivery log.
func (p *SMTPProvider) Send(ctx context.Context, msg *notification.Message) (*notification.ProviderResult, error) {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromAddress, p.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	if msg.Text != "" {
		m.AddAlternative("text/plain", msg.Text)
	}

	// gomail does not take a context; honor cancellation around the
	// blocking dial-and-send.
	done := make(chan error, 1)
	go func() {
		done <- p.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("smtp send cancelled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("smtp: %w", err)
		}
	}

	return &notification.ProviderResult{MessageID: "smtp-" + uuid.New().String()}, nil
}
