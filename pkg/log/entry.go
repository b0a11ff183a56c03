package log

import (
	"encoding/json"
	"strings"
	"time"
)

// redactedKeys are field names whose values never reach a transporter.
var redactedKeys = map[string]struct{}{
	"credential":    {},
	"api_key":       {},
	"jinaapikey":    {},
	"authorization": {},
	"password":      {},
}

// Entry represents a structured log entry.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Caller    string
	RequestID string
	Message   string
	Fields    map[string]any
}

// NewEntry creates a new log entry stamped with the current time.
func NewEntry(level Level, msg string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    make(map[string]any),
	}
}

// With adds alternating key/value pairs to the entry. Non-string keys and a
// trailing key without a value are ignored.
func (e *Entry) With(keysAndValues ...any) *Entry {
	mergePairs(e.Fields, keysAndValues)
	return e
}

// MarshalJSON flattens fields into the root object and masks sensitive values.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(e.Fields)+5)

	for k, v := range e.Fields {
		m[k] = redact(k, v)
	}

	m["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339)
	m["level"] = e.Level.String()
	m["msg"] = e.Message
	if e.Caller != "" {
		m["caller"] = e.Caller
	}
	if e.RequestID != "" {
		m["request_id"] = e.RequestID
	}

	return json.Marshal(m)
}

func redact(key string, value any) any {
	if _, ok := redactedKeys[strings.ToLower(key)]; !ok {
		return value
	}
	s, ok := value.(string)
	if !ok || len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func mergePairs(dst map[string]any, keysAndValues []any) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			dst[key] = keysAndValues[i+1]
		}
	}
}
