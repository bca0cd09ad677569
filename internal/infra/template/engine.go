package template

import (
	"fmt"
	"regexp"
	"strings"

	"groomly/internal/domain/notification"
)

var _ notification.TemplateEngine = (*Engine)(nil)

// placeholderRe matches {{name}} placeholders in template bodies.
var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// smsSegmentSize is the carrier limit for a single-segment SMS.
// Multipart messages lose 7 characters per segment to the concatenation
// header, leaving multipartSegmentSize usable characters each.
const (
	smsSegmentSize       = 160
	multipartSegmentSize = 153
)

// fallbackVariableLength is the filler length assumed for a variable
// with neither a max length nor an example value. Deliberately
// conservative: the editor-time estimate should overshoot real cost.
const fallbackVariableLength = 50

// warnSegmentCount is the estimated segment count above which the editor
// gets a cost warning.
const warnSegmentCount = 3

// Engine renders admin-edited notification templates by substituting
// {{name}} placeholders, and validates templates before they are saved.
type Engine struct{}

// NewEngine creates a new template engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Render substitutes every {{name}} placeholder with the stringified
// value from data. Unresolved placeholders are left verbatim: partial
// data must not hard-fail a send.
func (e *Engine) Render(tmpl string, data map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := data[name]
		if !ok {
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}

// RenderMessage renders the channel-appropriate fields of a template.
func (e *Engine) RenderMessage(tmpl *notification.Template, ch notification.Channel, data map[string]any) *notification.Message {
	msg := &notification.Message{}
	switch ch {
	case notification.ChannelSMS:
		msg.Body = e.Render(tmpl.SMSTemplate, data)
	default:
		msg.Subject = e.Render(tmpl.SubjectTemplate, data)
		msg.HTML = e.Render(tmpl.HTMLTemplate, data)
		msg.Text = e.Render(tmpl.TextTemplate, data)
	}
	return msg
}

// Validate checks a template before a save is accepted. A missing
// subject on email, a missing SMS body, or an absent required-variable
// placeholder is an error and blocks the save; everything else is a
// warning.
func (e *Engine) Validate(tmpl *notification.Template) notification.ValidationResult {
	result := notification.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	switch tmpl.Channel {
	case notification.ChannelEmail:
		if strings.TrimSpace(tmpl.SubjectTemplate) == "" {
			result.Errors = append(result.Errors, "email templates require a subject")
		}
		combined := tmpl.SubjectTemplate + tmpl.HTMLTemplate + tmpl.TextTemplate
		for _, v := range tmpl.Variables {
			if !v.Required {
				if !containsPlaceholder(combined, v.Name) {
					result.Warnings = append(result.Warnings, fmt.Sprintf("declared variable '%s' is not used", v.Name))
				}
				continue
			}
			if !containsPlaceholder(combined, v.Name) {
				result.Errors = append(result.Errors, fmt.Sprintf("required variable '%s' is missing from the template", v.Name))
			}
		}
	case notification.ChannelSMS:
		if strings.TrimSpace(tmpl.SMSTemplate) == "" {
			result.Errors = append(result.Errors, "sms templates require a body")
		}
		for _, v := range tmpl.Variables {
			if !containsPlaceholder(tmpl.SMSTemplate, v.Name) {
				if v.Required {
					result.Errors = append(result.Errors, fmt.Sprintf("required variable '%s' is missing from the sms body", v.Name))
				} else {
					result.Warnings = append(result.Warnings, fmt.Sprintf("declared variable '%s' is not used", v.Name))
				}
			}
		}
		if segments := e.CalculateSegmentCount(tmpl.SMSTemplate, tmpl.Variables); segments > warnSegmentCount {
			result.Warnings = append(result.Warnings, fmt.Sprintf("estimated length is %d segments", segments))
		}
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported channel: %s", tmpl.Channel))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// CalculateCharacterCount estimates the rendered length of an SMS body
// by substituting each declared variable with worst-case filler: its max
// length, else its example value's length, else a fixed fallback. Used
// for editor-time cost guidance, never at send time.
func (e *Engine) CalculateCharacterCount(content string, variables []notification.TemplateVariable) int {
	fillers := make(map[string]string, len(variables))
	for _, v := range variables {
		length := v.MaxLength
		if length <= 0 {
			length = len(v.ExampleValue)
		}
		if length <= 0 {
			length = fallbackVariableLength
		}
		fillers[v.Name] = strings.Repeat("x", length)
	}

	rendered := placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if filler, ok := fillers[name]; ok {
			return filler
		}
		return match
	})

	return len(rendered)
}

// CalculateSegmentCount converts the estimated character count into SMS
// segments: up to 160 characters fits one segment, beyond that the
// carrier splits at 153 characters per part. An empty body is zero
// segments.
func (e *Engine) CalculateSegmentCount(content string, variables []notification.TemplateVariable) int {
	length := e.CalculateCharacterCount(content, variables)
	switch {
	case length == 0:
		return 0
	case length <= smsSegmentSize:
		return 1
	default:
		return (length + multipartSegmentSize - 1) / multipartSegmentSize
	}
}

// containsPlaceholder reports whether body contains the {{name}}
// placeholder for the given variable.
func containsPlaceholder(body, name string) bool {
	return strings.Contains(body, "{{"+name+"}}")
}
