package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldUnitID is the dispatched work-unit ID (UUID)
	FieldUnitID = "unit_id"

	// FieldCredentialID is the scraping credential in use
	FieldCredentialID = "credential_id"

	// FieldPostingID is the external posting identifier
	FieldPostingID = "posting_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
