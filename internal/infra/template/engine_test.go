package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomly/internal/domain/notification"
)

func TestRender(t *testing.T) {
	e := NewEngine()

	t.Run("substitutes placeholders", func(t *testing.T) {
		out := e.Render("Hi {{ownerName}}, {{petName}} is booked!", map[string]any{
			"ownerName": "Dana",
			"petName":   "Biscuit",
		})
		assert.Equal(t, "Hi Dana, Biscuit is booked!", out)
	})

	t.Run("unresolved placeholders stay verbatim", func(t *testing.T) {
		out := e.Render("Hi {{ownerName}}, see you at {{time}}", map[string]any{
			"ownerName": "Dana",
		})
		assert.Equal(t, "Hi Dana, see you at {{time}}", out)
	})

	t.Run("non-string values are stringified", func(t *testing.T) {
		out := e.Render("Total: ${{amount}} for {{count}} dogs", map[string]any{
			"amount": 42.5,
			"count":  2,
		})
		assert.Equal(t, "Total: $42.5 for 2 dogs", out)
	})

	t.Run("repeated placeholder substitutes every occurrence", func(t *testing.T) {
		out := e.Render("{{petName}} and {{petName}}", map[string]any{"petName": "Rex"})
		assert.Equal(t, "Rex and Rex", out)
	})

	t.Run("empty template", func(t *testing.T) {
		assert.Equal(t, "", e.Render("", map[string]any{"x": "y"}))
	})
}

func TestRenderMessage(t *testing.T) {
	e := NewEngine()
	tmpl := &notification.Template{
		SubjectTemplate: "{{petName}} is confirmed",
		HTMLTemplate:    "<p>See you, {{ownerName}}</p>",
		TextTemplate:    "See you, {{ownerName}}",
		SMSTemplate:     "{{petName}} confirmed. Reply STOP to opt out.",
	}
	data := map[string]any{"petName": "Biscuit", "ownerName": "Dana"}

	t.Run("email fills subject, html, and text", func(t *testing.T) {
		msg := e.RenderMessage(tmpl, notification.ChannelEmail, data)
		assert.Equal(t, "Biscuit is confirmed", msg.Subject)
		assert.Equal(t, "<p>See you, Dana</p>", msg.HTML)
		assert.Equal(t, "See you, Dana", msg.Text)
		assert.Empty(t, msg.Body)
	})

	t.Run("sms fills body only", func(t *testing.T) {
		msg := e.RenderMessage(tmpl, notification.ChannelSMS, data)
		assert.Equal(t, "Biscuit confirmed. Reply STOP to opt out.", msg.Body)
		assert.Empty(t, msg.Subject)
	})
}

func TestValidateEmail(t *testing.T) {
	e := NewEngine()

	t.Run("valid template", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:         notification.ChannelEmail,
			SubjectTemplate: "{{petName}} is booked",
			HTMLTemplate:    "<p>Hello {{ownerName}}</p>",
			Variables: []notification.TemplateVariable{
				{Name: "petName", Required: true},
				{Name: "ownerName", Required: true},
			},
		})
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("missing subject is an error", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:      notification.ChannelEmail,
			HTMLTemplate: "<p>Hello</p>",
		})
		require.False(t, result.Valid)
		assert.Contains(t, result.Errors, "email templates require a subject")
	})

	t.Run("missing required variable is an error", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:         notification.ChannelEmail,
			SubjectTemplate: "Your appointment",
			HTMLTemplate:    "<p>Hello</p>",
			Variables: []notification.TemplateVariable{
				{Name: "petName", Required: true},
			},
		})
		require.False(t, result.Valid)
		assert.Contains(t, result.Errors, "required variable 'petName' is missing from the template")
	})

	t.Run("required variable in subject alone suffices", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:         notification.ChannelEmail,
			SubjectTemplate: "{{petName}} is booked",
			HTMLTemplate:    "<p>Hello</p>",
			Variables: []notification.TemplateVariable{
				{Name: "petName", Required: true},
			},
		})
		assert.True(t, result.Valid)
	})

	t.Run("unused optional variable is a warning", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:         notification.ChannelEmail,
			SubjectTemplate: "Your appointment",
			Variables: []notification.TemplateVariable{
				{Name: "discount", Required: false},
			},
		})
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings, "declared variable 'discount' is not used")
	})
}

func TestValidateSMS(t *testing.T) {
	e := NewEngine()

	t.Run("missing body is an error", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:     notification.ChannelSMS,
			SMSTemplate: "   ",
		})
		require.False(t, result.Valid)
		assert.Contains(t, result.Errors, "sms templates require a body")
	})

	t.Run("missing required variable is an error", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:     notification.ChannelSMS,
			SMSTemplate: "Your groom is tomorrow.",
			Variables: []notification.TemplateVariable{
				{Name: "petName", Required: true},
			},
		})
		require.False(t, result.Valid)
		assert.Contains(t, result.Errors, "required variable 'petName' is missing from the sms body")
	})

	t.Run("long body gets a segment warning", func(t *testing.T) {
		result := e.Validate(&notification.Template{
			Channel:     notification.ChannelSMS,
			SMSTemplate: strings.Repeat("a", 481),
		})
		assert.True(t, result.Valid)
		assert.Contains(t, result.Warnings, "estimated length is 4 segments")
	})

	t.Run("unsupported channel is an error", func(t *testing.T) {
		result := e.Validate(&notification.Template{Channel: "fax"})
		assert.False(t, result.Valid)
	})
}

func TestCalculateCharacterCount(t *testing.T) {
	e := NewEngine()

	t.Run("uses max length filler", func(t *testing.T) {
		count := e.CalculateCharacterCount("Hi {{petName}}!", []notification.TemplateVariable{
			{Name: "petName", MaxLength: 20},
		})
		assert.Equal(t, 24, count)
	})

	t.Run("falls back to example value length", func(t *testing.T) {
		count := e.CalculateCharacterCount("Hi {{petName}}!", []notification.TemplateVariable{
			{Name: "petName", ExampleValue: "Biscuit"},
		})
		assert.Equal(t, 11, count)
	})

	t.Run("falls back to the fixed filler length", func(t *testing.T) {
		count := e.CalculateCharacterCount("Hi {{petName}}!", []notification.TemplateVariable{
			{Name: "petName"},
		})
		assert.Equal(t, 54, count)
	})

	t.Run("undeclared placeholder counts verbatim", func(t *testing.T) {
		count := e.CalculateCharacterCount("Hi {{petName}}!", nil)
		assert.Equal(t, len("Hi {{petName}}!"), count)
	})
}

func TestCalculateSegmentCount(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		length int
		want   int
	}{
		{0, 0},
		{1, 1},
		{160, 1},
		{161, 2},
		{306, 2},
		{307, 3},
		{459, 3},
		{460, 4},
	}
	for _, tt := range tests {
		got := e.CalculateSegmentCount(strings.Repeat("a", tt.length), nil)
		assert.Equal(t, tt.want, got, "length %d", tt.length)
	}
}
