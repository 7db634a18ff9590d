package logging

import "log/slog"

// Common field names for consistent logging.
const (
	FieldRequestID = "request_id"
	FieldVerb      = "verb"
	FieldResource  = "resource"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldCommand   = "command"
	FieldBaseURL   = "base_url"
)

// Verb returns a slog attribute for the data-provider verb.
func Verb(v string) slog.Attr {
	return slog.String(FieldVerb, v)
}

// Resource returns a slog attribute for the resource type.
func Resource(name string) slog.Attr {
	return slog.String(FieldResource, name)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Command returns a slog attribute for the CLI command path.
func Command(path string) slog.Attr {
	return slog.String(FieldCommand, path)
}

// BaseURL returns a slog attribute for the API root.
func BaseURL(u string) slog.Attr {
	return slog.String(FieldBaseURL, u)
}
