package logger

import (
	"encoding/json"
	"log"
	"strings"
)

type Fields map[string]any

const redacted = "******"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"authorization": {},
	"databasedsn":   {},
	"database_dsn":  {},
	"dsn":           {},
	"cookie":        {},
}

func Info(message string, fields Fields) {
	write("INFO", message, fields)
}

func Warn(message string, fields Fields) {
	write("WARN", message, fields)
}

func Error(message string, err error, fields Fields) {
	merged := make(Fields, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}

	write("ERROR", message, merged)
}

// With returns fields extended with extra; neither input is modified.
func With(fields Fields, extra Fields) Fields {
	out := make(Fields, len(fields)+len(extra))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// SanitizePayload round-trips payload through JSON and masks sensitive keys at any depth.
func SanitizePayload(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}

	return sanitizeValue(data)
}

func write(level, message string, fields Fields) {
	log.Printf("%s %s %s", level, message, fieldsJSON(fields))
}

func fieldsJSON(fields Fields) string {
	if fields == nil {
		fields = Fields{}
	}

	b, err := json.Marshal(SanitizePayload(fields))
	if err != nil {
		return `{}`
	}

	return string(b)
}

func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, inner := range typed {
			if isSensitiveKey(key) {
				out[key] = redacted
				continue
			}
			out[key] = sanitizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, sanitizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(key), "-", ""))
	_, ok := sensitiveKeys[normalized]
	return ok
}
