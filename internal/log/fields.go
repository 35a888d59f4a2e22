package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldBatchID   = "batch_id"
	FieldSchemaID  = "schema_id"
	FieldReportID  = "report_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Validation fields
	FieldField   = "field"
	FieldChecker = "checker"
	FieldOutcome = "outcome"

	// Storage fields
	FieldStore = "store"
	FieldPath  = "path"
)
