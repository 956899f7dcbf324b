package log

// Shared structured-log field names.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldClientIP  = "client_ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"

	FieldBackend       = "backend"
	FieldEntityID      = "entity_id"
	FieldGoalID        = "goal_id"
	FieldAlertID       = "alert_id"
	FieldCount         = "count"
	FieldPeriod        = "period"
	FieldSpreadsheetID = "spreadsheet_id"
)

// Component names used across the binaries.
const (
	ComponentHTTP       = "http"
	ComponentState      = "state"
	ComponentStore      = "store"
	ComponentRecurrence = "recurrence"
	ComponentSync       = "sync"
	ComponentWorker     = "worker"
	ComponentAdvice     = "advice"
	ComponentSession    = "session"
)
