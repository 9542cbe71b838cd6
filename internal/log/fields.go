package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldUserID      = "user_id"
	FieldGroupID     = "group_id"
	FieldCommand     = "command"
	FieldRecipient   = "recipient_id"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldSent        = "sent"
	FieldFailed      = "failed"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentBot       = "bot"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentScheduler = "scheduler"
	ComponentDigest    = "digest"
	ComponentNotify    = "notify"
)
