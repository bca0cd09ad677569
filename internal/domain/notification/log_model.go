package notification

import "time"

// LogStatus represents the delivery status of a logged send attempt.
type LogStatus string

const (
	StatusPending LogStatus = "pending"
	StatusSent    LogStatus = "sent"
	StatusFailed  LogStatus = "failed"
)

// LogEntry is the durable trace of one send attempt.
// Invariants: a failed entry carries ErrorMessage and no SentAt; a sent
// entry carries SentAt. TemplateData is retained so the admin resend
// action can reconstruct the original request.
type LogEntry struct {
	ID           string         `json:"id"`
	CustomerID   string         `json:"customer_id,omitempty"`
	Type         string         `json:"type"`
	Channel      string         `json:"channel"`
	Recipient    string         `json:"recipient"`
	Subject      string         `json:"subject,omitempty"`
	TemplateData map[string]any `json:"template_data,omitempty"`
	Status       LogStatus      `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	IsTest       bool           `json:"is_test"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ListFilter defines pagination and filtering options for listing log entries.
type ListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Channel  string `form:"channel"`
	Status   string `form:"status"`
	Type     string `form:"type"`
	Search   string `form:"search"`
	From     string `form:"from" time_format:"2006-01-02"`
	To       string `form:"to" time_format:"2006-01-02"`
}

// ListResponse wraps a paginated list of log entries.
type ListResponse struct {
	Logs       []*LogEntry `json:"logs"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
}
