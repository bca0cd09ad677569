package notification

import (
	"log/slog"
	"net/http"

	"groomly/internal/common"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for the notification domain.
type Handler struct {
	service *Service
	prefs   *PreferenceService
	codec   *UnsubscribeCodec
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service, prefs *PreferenceService, codec *UnsubscribeCodec) *Handler {
	return &Handler{service: service, prefs: prefs, codec: codec}
}

// Send handles POST /api/v1/send
// Runs the full pipeline synchronously and reports the outcome.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Business failures are part of the contract, not transport errors:
	// the envelope carries the outcome either way.
	outcome := h.service.Send(c.Request.Context(), &req)
	common.Success(c, http.StatusOK, outcome)
}

// Resend handles POST /api/v1/notifications/:id/resend
// Re-enters the pipeline with parameters reconstructed from the log entry.
func (h *Handler) Resend(c *gin.Context) {
	id := c.Param("id")

	outcome, err := h.service.Resend(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, outcome)
}

// GetNotification handles GET /api/v1/notifications/:id
func (h *Handler) GetNotification(c *gin.Context) {
	entry, err := h.service.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, entry)
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.ListLogs(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// GetPreferences handles GET /api/v1/customers/:id/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	prefs := h.prefs.Get(c.Request.Context(), c.Param("id"))
	common.Success(c, http.StatusOK, prefs)
}

// UpdatePreferences handles PATCH /api/v1/customers/:id/preferences
// Accepts a partial update; omitted fields are left untouched.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var patch PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	customerID := c.Param("id")
	if err := h.prefs.Update(c.Request.Context(), customerID, patch); err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, h.prefs.Get(c.Request.Context(), customerID))
}

// GetTemplate handles GET /api/v1/templates
func (h *Handler) GetTemplate(c *gin.Context) {
	notifType := NotificationType(c.Query("type"))
	channel := Channel(c.Query("channel"))

	tmpl, err := h.service.GetTemplate(c.Request.Context(), notifType, channel)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, tmpl)
}

// saveTemplateRequest is the PUT /api/v1/templates payload.
type saveTemplateRequest struct {
	Template     Template `json:"template" binding:"required"`
	ChangeReason string   `json:"change_reason" binding:"required"`
}

// SaveTemplate handles PUT /api/v1/templates
// Validation errors block the save and are returned to the editor.
func (h *Handler) SaveTemplate(c *gin.Context) {
	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.SaveTemplate(c.Request.Context(), &req.Template, req.ChangeReason)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	if !result.Valid {
		common.Success(c, http.StatusUnprocessableEntity, result)
		return
	}

	common.Success(c, http.StatusOK, result)
}

// Unsubscribe handles GET /api/unsubscribe?token=...
// The only external trigger for token redemption. The response is the
// same for every invalid token: signature, parse, and expiry failures
// are indistinguishable to the caller.
func (h *Handler) Unsubscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		common.HandleError(c, common.NewTokenError())
		return
	}

	payload := h.codec.Validate(token)
	if payload == nil {
		common.HandleError(c, common.NewTokenError())
		return
	}

	ctx := c.Request.Context()
	var err error
	if payload.Type == TypeMarketing {
		err = h.prefs.DisableMarketing(ctx, payload.CustomerID)
	} else {
		err = h.prefs.DisableChannel(ctx, payload.CustomerID, payload.Type, payload.Channel)
	}
	if err != nil {
		slog.Error("unsubscribe failed",
			"customer_id", payload.CustomerID,
			"type", payload.Type,
			"channel", payload.Channel,
			"error", err,
		)
		common.HandleError(c, err)
		return
	}

	slog.Info("unsubscribe processed",
		"customer_id", payload.CustomerID,
		"type", payload.Type,
		"channel", payload.Channel,
	)

	common.Success(c, http.StatusOK, gin.H{"status": "unsubscribed"})
}

// RegisterRoutes registers protected notification routes on the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/send", h.Send)
	rg.GET("/notifications", h.ListNotifications)
	rg.GET("/notifications/:id", h.GetNotification)
	rg.POST("/notifications/:id/resend", h.Resend)
	rg.GET("/customers/:id/preferences", h.GetPreferences)
	rg.PATCH("/customers/:id/preferences", h.UpdatePreferences)
	rg.GET("/templates", h.GetTemplate)
	rg.PUT("/templates", h.SaveTemplate)
}

// RegisterPublicRoutes registers routes that carry their own credential
// (the signed token) and therefore sit outside the API-key group.
func (h *Handler) RegisterPublicRoutes(r gin.IRouter) {
	r.GET("/api/unsubscribe", h.Unsubscribe)
}
