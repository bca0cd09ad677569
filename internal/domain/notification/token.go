package notification

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// tokenLifetime is how long an unsubscribe link stays valid.
const tokenLifetime = 30 * 24 * time.Hour

// UnsubscribePayload is the identity triple embedded in an unsubscribe
// token. ExpiresAt is Unix milliseconds.
type UnsubscribePayload struct {
	CustomerID string           `json:"userId"`
	Type       NotificationType `json:"notificationType"`
	Channel    Channel          `json:"channel"`
	ExpiresAt  int64            `json:"expiresAt"`
}

// UnsubscribeCodec signs and verifies compact, expiring unsubscribe
// tokens of the form base64url(payload) + "." + base64url(signature).
// The token is the credential: a valid signature lets an unauthenticated
// link holder revoke exactly one preference.
type UnsubscribeCodec struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewUnsubscribeCodec creates a codec with the server-held signing secret
// and the public base URL used for generated links.
func NewUnsubscribeCodec(secret, baseURL string) *UnsubscribeCodec {
	return &UnsubscribeCodec{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Generate builds a signed token for the given identity triple, valid
// for 30 days.
func (c *UnsubscribeCodec) Generate(customerID string, t NotificationType, ch Channel) (string, error) {
	payload := UnsubscribePayload{
		CustomerID: customerID,
		Type:       t,
		Channel:    ch,
		ExpiresAt:  c.now().Add(tokenLifetime).UnixMilli(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling unsubscribe payload: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + c.sign(encoded), nil
}

// Validate verifies a token and returns its payload, or nil for any
// malformed, tampered, or expired token. The signature is checked in
// constant time before the payload JSON is trusted.
func (c *UnsubscribeCodec) Validate(token string) *UnsubscribePayload {
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}

	expected := c.sign(parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil
	}

	var payload UnsubscribePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	if payload.CustomerID == "" {
		return nil
	}

	if payload.ExpiresAt <= c.now().UnixMilli() {
		return nil
	}

	return &payload
}

// GenerateURL builds a full unsubscribe link for a (type, channel) pair.
func (c *UnsubscribeCodec) GenerateURL(customerID string, t NotificationType, ch Channel) (string, error) {
	token, err := c.Generate(customerID, t, ch)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/unsubscribe?token=%s", c.baseURL, url.QueryEscape(token)), nil
}

// GenerateMarketingURL builds a marketing unsubscribe link, defaulting
// to the email channel.
func (c *UnsubscribeCodec) GenerateMarketingURL(customerID string) (string, error) {
	return c.GenerateURL(customerID, TypeMarketing, ChannelEmail)
}

// sign computes the base64url HMAC-SHA256 signature over the encoded payload.
func (c *UnsubscribeCodec) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
