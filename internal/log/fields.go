package log

// Standard field names used across the codebase so log output stays greppable.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldClientIP  = "client_ip"
)

// Component names
const (
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentSettings = "settings"
	ComponentStorage  = "storage"
	ComponentEvents   = "events"
	ComponentWorker   = "worker"
)
