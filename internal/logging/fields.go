package logging

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Analysis
	FieldSource   = "source"
	FieldAuthor   = "author"
	FieldRecords  = "records"
	FieldSegments = "segments"
	FieldIssues   = "parse_issues"
	FieldReportID = "report_id"
	FieldWebhook  = "webhook"
	FieldDuration = "duration"

	FieldCommand = "command"
)
