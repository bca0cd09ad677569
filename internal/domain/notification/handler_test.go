package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groomly/internal/common"
)

type handlerFixture struct {
	*serviceFixture
	prefStore *fakePreferenceStore
	codec     *UnsubscribeCodec
	router    *gin.Engine
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prefStore := newFakePreferenceStore()
	prefs := NewPreferenceService(prefStore)

	sf := &serviceFixture{
		settings:  &fakeSettingsStore{settings: make(map[NotificationType]*ChannelSettings)},
		templates: newFakeTemplateStore(),
		logs:      newFakeLogStore(),
		email:     &fakeProvider{channel: ChannelEmail},
		sms:       &fakeProvider{channel: ChannelSMS},
	}
	sf.templates.put(&Template{
		Type:            TypeBookingConfirmation,
		Channel:         ChannelEmail,
		SubjectTemplate: "Your booking is confirmed",
		HTMLTemplate:    "<p>See you soon!</p>",
		IsActive:        true,
		Version:         1,
	})
	sf.service = NewService(prefs, sf.settings, sf.templates, sf.logs, fakeEngine{}, ServiceOptions{}, sf.email, sf.sms)

	codec := NewUnsubscribeCodec("handler-test-secret", "https://groomly.example.com")
	h := NewHandler(sf.service, prefs, codec)

	r := gin.New()
	h.RegisterPublicRoutes(r)
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)

	return &handlerFixture{
		serviceFixture: sf,
		prefStore:      prefStore,
		codec:          codec,
		router:         r,
	}
}

func (f *handlerFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, common.APIResponse) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var resp common.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHandlerSend(t *testing.T) {
	f := newHandlerFixture(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/send", `{
		"type": "booking_confirmation",
		"channel": "email",
		"recipient": "owner@example.com",
		"customer_id": "cust-1"
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["success"])
	assert.NotEmpty(t, data["log_id"])
	assert.Equal(t, 1, f.email.calls)
}

func TestHandlerSendBusinessFailureStaysInEnvelope(t *testing.T) {
	f := newHandlerFixture(t)
	f.prefStore.records["cust-1"] = map[string]any{"marketing_enabled": false}
	f.templates.put(&Template{
		Type:            TypeMarketing,
		Channel:         ChannelEmail,
		SubjectTemplate: "Spring special",
		HTMLTemplate:    "<p>20% off</p>",
		IsActive:        true,
	})

	w, resp := f.do(t, http.MethodPost, "/api/v1/send", `{
		"type": "marketing",
		"channel": "email",
		"recipient": "owner@example.com",
		"customer_id": "cust-1"
	}`)

	// Blocked is a reportable outcome, not a transport error.
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["success"])
	assert.Equal(t, "customer_preference_marketing_disabled", data["error"])
	assert.Equal(t, 0, f.email.calls)
}

func TestHandlerSendInvalidBody(t *testing.T) {
	f := newHandlerFixture(t)

	w, resp := f.do(t, http.MethodPost, "/api/v1/send", `{"channel": "email"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestHandlerGetNotificationNotFound(t *testing.T) {
	f := newHandlerFixture(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/notifications/missing-id", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestHandlerUpdatePreferences(t *testing.T) {
	f := newHandlerFixture(t)

	w, resp := f.do(t, http.MethodPatch, "/api/v1/customers/cust-1/preferences", `{
		"marketing_enabled": false
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
	assert.False(t, f.prefStore.saved["cust-1"].MarketingEnabled)
	assert.True(t, f.prefStore.saved["cust-1"].EmailAppointmentReminders, "omitted fields stay untouched")
}

func TestHandlerSaveTemplateRequiresChangeReason(t *testing.T) {
	f := newHandlerFixture(t)

	w, _ := f.do(t, http.MethodPut, "/api/v1/templates", `{
		"template": {
			"type": "booking_confirmation",
			"channel": "email",
			"subject_template": "Updated"
		}
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerUnsubscribeMarketing(t *testing.T) {
	f := newHandlerFixture(t)

	token, err := f.codec.Generate("cust-1", TypeMarketing, ChannelEmail)
	require.NoError(t, err)

	w, resp := f.do(t, http.MethodGet, "/api/unsubscribe?token="+url.QueryEscape(token), "")

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	saved := f.prefStore.saved["cust-1"]
	assert.False(t, saved.MarketingEnabled)
	assert.True(t, saved.SMSRetentionReminders, "only the marketing flag flips")
}

func TestHandlerUnsubscribeChannelFlag(t *testing.T) {
	f := newHandlerFixture(t)

	token, err := f.codec.Generate("cust-1", TypeAppointmentReminder, ChannelSMS)
	require.NoError(t, err)

	w, resp := f.do(t, http.MethodGet, "/api/unsubscribe?token="+url.QueryEscape(token), "")

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	saved := f.prefStore.saved["cust-1"]
	assert.False(t, saved.SMSAppointmentReminders)
	assert.True(t, saved.EmailAppointmentReminders)
	assert.True(t, saved.MarketingEnabled)
}

func TestHandlerUnsubscribeInvalidToken(t *testing.T) {
	f := newHandlerFixture(t)

	for _, path := range []string{
		"/api/unsubscribe",
		"/api/unsubscribe?token=",
		"/api/unsubscribe?token=garbage.token",
	} {
		w, resp := f.do(t, http.MethodGet, path, "")

		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		require.NotNil(t, resp.Error, path)
		// One message for every failure mode.
		assert.Equal(t, "invalid or expired token", resp.Error.Message, path)
		assert.Equal(t, 0, f.prefStore.saveCalls)
	}
}
