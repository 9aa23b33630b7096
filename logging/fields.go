package logging

// Structured field names shared by every package.
const (
	FieldError    = "error"
	FieldURI      = "uri"
	FieldPath     = "path"
	FieldLanguage = "language"
	FieldRevision = "revision"
	FieldRule     = "rule"
	FieldCount    = "count"
	FieldDuration = "duration"
	FieldAddr     = "addr"
	FieldMethod   = "method"
)
