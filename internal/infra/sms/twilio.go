package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"groomly/internal/domain/notification"
)

var _ notification.Provider = (*TwilioProvider)(nil)

// smsSegmentSize is the carrier limit for a single-segment SMS; longer
// bodies split into 153-character parts.
const (
	smsSegmentSize       = 160
	multipartSegmentSize = 153
)

// TwilioProvider sends SMS messages using the Twilio Messages API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

// NewTwilioProvider creates a new Twilio SMS provider.
func NewTwilioProvider(accountSID, authToken, fromNumber string) *TwilioProvider {
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Channel returns the SMS channel identifier.
func (p *TwilioProvider) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send delivers an SMS via the Twilio API and returns the message SID
// plus the segment count of the delivered body.
func (p *TwilioProvider) Send(ctx context.Context, msg *notification.Message) (*notification.ProviderResult, error) {
	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", p.accountSID)

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", p.fromNumber)
	form.Set("Body", msg.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(p.accountSID, p.authToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		_ = json.Unmarshal(respBody, &errResp)

		errMsg := errResp.Message
		if errMsg == "" {
			errMsg = fmt.Sprintf("twilio API error: status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("twilio: %s", errMsg)
	}

	var successResp struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &successResp); err != nil {
		return nil, fmt.Errorf("parsing twilio response: %w", err)
	}

	return &notification.ProviderResult{
		MessageID:    successResp.SID,
		SegmentCount: segmentCount(msg.Body),
	}, nil
}

// segmentCount reports how many SMS segments the body spans.
func segmentCount(body string) int {
	switch {
	case len(body) == 0:
		return 0
	case len(body) <= smsSegmentSize:
		return 1
	default:
		return (len(body) + multipartSegmentSize - 1) / multipartSegmentSize
	}
}
