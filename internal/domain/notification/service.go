package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"groomly/internal/common"
)

// defaultSendTimeout bounds one provider call. The underlying HTTP
// clients carry their own timeouts; this is the pipeline's upper bound,
// and its expiry is recorded in the log entry's error message.
const defaultSendTimeout = 15 * time.Second

// ServiceOptions holds the optional knobs of the notification service.
type ServiceOptions struct {
	// SendTimeout bounds one provider send call. Zero means the default.
	SendTimeout time.Duration

	// RateLimiter, when set, caps marketing-class sends per recipient.
	// Checked fail-open: a limiter backend error never blocks a send.
	RateLimiter RecipientRateLimiter
}

// Service orchestrates the send pipeline: preference check, channel
// settings, template resolution, rendering, provider dispatch, and the
// delivery log. Every failure resolves to a SendOutcome plus a logged
// entry; the service never panics across its boundary and business
// failures are not Go errors.
type Service struct {
	prefs       PreferenceChecker
	settings    SettingsStore
	templates   TemplateStore
	logs        LogStore
	engine      TemplateEngine
	providers   map[Channel]Provider
	rateLimiter RecipientRateLimiter
	sendTimeout time.Duration
}

// NewService creates a new notification service.
func NewService(
	prefs PreferenceChecker,
	settings SettingsStore,
	templates TemplateStore,
	logs LogStore,
	engine TemplateEngine,
	opts ServiceOptions,
	providers ...Provider,
) *Service {
	pm := make(map[Channel]Provider, len(providers))
	for _, p := range providers {
		pm[p.Channel()] = p
	}

	timeout := opts.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	return &Service{
		prefs:       prefs,
		settings:    settings,
		templates:   templates,
		logs:        logs,
		engine:      engine,
		providers:   pm,
		rateLimiter: opts.RateLimiter,
		sendTimeout: timeout,
	}
}

// Send runs one message through the pipeline. Preference blocks, disabled
// channels, missing templates, and provider failures are all terminal for
// this call; the admin resend action is the only retry path.
func (s *Service) Send(ctx context.Context, req *SendRequest) *SendOutcome {
	start := time.Now()

	if !IsValidType(req.Type) {
		return s.fail(ctx, req, "", fmt.Sprintf("unsupported notification type: %s", req.Type))
	}
	if !IsValidChannel(req.Channel) {
		return s.fail(ctx, req, "", fmt.Sprintf("unsupported channel: %s", req.Channel))
	}

	// Marketing-class sends are capped per recipient. Fail open: a
	// limiter backend outage must not block outgoing mail.
	if s.rateLimiter != nil && IsMarketing(req.Type) && !req.IsTest {
		allowed, err := s.rateLimiter.Allow(ctx, req.Recipient)
		if err != nil {
			slog.Error("rate limit check failed, proceeding without limit",
				"recipient", req.Recipient,
				"error", err,
			)
		} else if !allowed {
			return s.fail(ctx, req, "", fmt.Sprintf("rate limit exceeded for recipient: %s", req.Recipient))
		}
	}

	// Preference check. Anonymous sends (no customer id) skip it: no
	// implicit allow/deny decision is made on their behalf.
	if req.CustomerID != "" {
		decision := s.prefs.CheckAllowed(ctx, req.CustomerID, req.Type, req.Channel)
		if !decision.Allowed {
			return s.fail(ctx, req, "", string(decision.Reason))
		}
	}

	// System-level channel switch. A missing settings row means enabled;
	// only an explicit off blocks, and it reads as a configuration error
	// rather than a customer choice.
	settings, err := s.settings.Fetch(ctx, req.Type)
	if err != nil {
		slog.Error("settings fetch failed, assuming enabled",
			"type", req.Type,
			"error", err,
		)
	} else if settings != nil && !settings.EnabledFor(req.Channel) {
		return s.fail(ctx, req, "", common.NewChannelDisabledError(string(req.Channel), string(req.Type)).Error())
	}

	tmpl, err := s.templates.GetActive(ctx, req.Type, req.Channel)
	if err != nil {
		return s.fail(ctx, req, "", fmt.Sprintf("fetching template: %s", err.Error()))
	}
	if tmpl == nil {
		return s.fail(ctx, req, "", common.NewTemplateNotFoundError(string(req.Type), string(req.Channel)).Error())
	}

	msg := s.engine.RenderMessage(tmpl, req.Channel, req.TemplateData)
	msg.To = req.Recipient

	provider, ok := s.providers[req.Channel]
	if !ok {
		return s.fail(ctx, req, msg.Subject, fmt.Sprintf("no provider configured for channel: %s", req.Channel))
	}

	// The entry goes in as pending before the provider call so a crash
	// mid-send leaves a trace the sweeper can fail later.
	entry := s.newEntry(req, msg.Subject)
	entry.Status = StatusPending
	if err := s.logs.Create(ctx, entry); err != nil {
		return &SendOutcome{Success: false, Error: fmt.Sprintf("creating log entry: %s", err.Error())}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	result, err := provider.Send(sendCtx, msg)
	if err != nil {
		errMsg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			errMsg = fmt.Sprintf("provider send timed out after %s: %s", s.sendTimeout, err.Error())
		}
		if uerr := s.logs.UpdateStatus(ctx, entry.ID, StatusFailed, errMsg); uerr != nil {
			slog.Error("failed to update log status to failed", "log_id", entry.ID, "error", uerr)
		}

		slog.Error("notification delivery failed",
			"log_id", entry.ID,
			"channel", req.Channel,
			"type", req.Type,
			"to", req.Recipient,
			"error", err,
			"duration", time.Since(start),
		)
		return &SendOutcome{Success: false, Error: errMsg, LogID: entry.ID}
	}

	if err := s.logs.UpdateStatus(ctx, entry.ID, StatusSent, ""); err != nil {
		slog.Error("failed to update log status to sent", "log_id", entry.ID, "error", err)
	}

	slog.Info("notification sent",
		"log_id", entry.ID,
		"channel", req.Channel,
		"type", req.Type,
		"to", req.Recipient,
		"provider_id", result.MessageID,
		"segments", result.SegmentCount,
		"duration", time.Since(start),
	)

	return &SendOutcome{Success: true, LogID: entry.ID}
}

// Resend re-enters the pipeline with the parameters reconstructed from an
// existing log entry. A new entry records the new attempt; the original
// is never mutated.
func (s *Service) Resend(ctx context.Context, logID string) (*SendOutcome, error) {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("fetching log entry: %w", err)
	}
	if entry == nil {
		return nil, common.NewNotFoundError("notification log", logID)
	}

	req := &SendRequest{
		Type:         NotificationType(entry.Type),
		Channel:      Channel(entry.Channel),
		Recipient:    entry.Recipient,
		TemplateData: entry.TemplateData,
		CustomerID:   entry.CustomerID,
		IsTest:       entry.IsTest,
	}

	return s.Send(ctx, req), nil
}

// GetLog retrieves a log entry by ID.
func (s *Service) GetLog(ctx context.Context, id string) (*LogEntry, error) {
	entry, err := s.logs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching log entry: %w", err)
	}
	if entry == nil {
		return nil, common.NewNotFoundError("notification log", id)
	}
	return entry, nil
}

// ListLogs retrieves log entries with pagination and filtering.
func (s *Service) ListLogs(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	entries, total, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing log entries: %w", err)
	}

	totalPages := (total + filter.PageSize - 1) / filter.PageSize

	return &ListResponse{
		Logs:       entries,
		Total:      total,
		TotalPages: totalPages,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// SaveTemplate validates a template and persists it as a new active
// version. A human-readable change reason is mandatory; saves with
// missing required-variable placeholders are rejected.
func (s *Service) SaveTemplate(ctx context.Context, tmpl *Template, changeReason string) (*ValidationResult, error) {
	if changeReason == "" {
		return nil, common.NewValidationError("change reason is required")
	}
	if !IsValidType(tmpl.Type) {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported notification type: %s", tmpl.Type))
	}
	if !IsValidChannel(tmpl.Channel) {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported channel: %s", tmpl.Channel))
	}

	result := s.engine.Validate(tmpl)
	if !result.Valid {
		return &result, nil
	}

	if err := s.templates.Save(ctx, tmpl, changeReason); err != nil {
		return nil, fmt.Errorf("saving template: %w", err)
	}

	slog.Info("template saved",
		"type", tmpl.Type,
		"channel", tmpl.Channel,
		"reason", changeReason,
	)

	return &result, nil
}

// GetTemplate retrieves the active template for a (type, channel) pair.
func (s *Service) GetTemplate(ctx context.Context, t NotificationType, ch Channel) (*Template, error) {
	tmpl, err := s.templates.GetActive(ctx, t, ch)
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}
	if tmpl == nil {
		return nil, common.NewTemplateNotFoundError(string(t), string(ch))
	}
	return tmpl, nil
}

// fail records a terminal failed log entry and returns the outcome.
// Used for every pre-dispatch failure: the provider is never touched.
func (s *Service) fail(ctx context.Context, req *SendRequest, subject, errMsg string) *SendOutcome {
	entry := s.newEntry(req, subject)
	entry.Status = StatusFailed
	entry.ErrorMessage = errMsg

	if err := s.logs.Create(ctx, entry); err != nil {
		slog.Error("failed to record blocked notification",
			"type", req.Type,
			"channel", req.Channel,
			"error", err,
		)
	}

	slog.Info("notification blocked",
		"log_id", entry.ID,
		"channel", req.Channel,
		"type", req.Type,
		"to", req.Recipient,
		"reason", errMsg,
	)

	return &SendOutcome{Success: false, Error: errMsg, LogID: entry.ID}
}

// newEntry builds a log entry from the request. Subject is recorded for
// email only.
func (s *Service) newEntry(req *SendRequest, subject string) *LogEntry {
	entry := &LogEntry{
		CustomerID:   req.CustomerID,
		Type:         string(req.Type),
		Channel:      string(req.Channel),
		Recipient:    req.Recipient,
		TemplateData: req.TemplateData,
		IsTest:       req.IsTest,
	}
	if req.Channel == ChannelEmail {
		entry.Subject = subject
	}
	return entry
}
