package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// SourceUnavailable is recorded when a callable registers without a source
// snippet, or when the named function cannot be found in its snapshot.
const SourceUnavailable = "source unavailable"

// Input is one named argument of an instrumented call.
type Input struct {
	Name  string
	Value any
}

// Inputs holds the arguments of an instrumented call in parameter
// declaration order. Positional arguments bind to the first declared
// parameters; named arguments win on key collision.
type Inputs []Input

// Get returns the value bound to name.
func (in Inputs) Get(name string) (any, bool) {
	for _, input := range in {
		if input.Name == name {
			return input.Value, true
		}
	}
	return nil, false
}

// String returns the value bound to name as a string, or "".
func (in Inputs) String(name string) string {
	value, ok := in.Get(name)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Int returns the value bound to name as an int. Numeric JSON values
// arrive as float64, so those are accepted too.
func (in Inputs) Int(name string) int {
	value, ok := in.Get(name)
	if !ok {
		return 0
	}
	switch typed := value.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	}
	return 0
}

// Float returns the value bound to name as a float64.
func (in Inputs) Float(name string) float64 {
	value, ok := in.Get(name)
	if !ok {
		return 0
	}
	switch typed := value.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	}
	return 0
}

// Bool returns the value bound to name as a bool.
func (in Inputs) Bool(name string) bool {
	value, ok := in.Get(name)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

// Value returns the raw value bound to name, or nil.
func (in Inputs) Value(name string) any {
	value, _ := in.Get(name)
	return value
}

// MarshalJSON renders the inputs as a JSON object preserving parameter
// declaration order, unlike a Go map.
func (in Inputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, input := range in {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(input.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal input key %q: %w", input.Name, err)
		}
		value, err := json.Marshal(input.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal input %q: %w", input.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is the immutable snapshot of one instrumented call. Explanation is
// the single mutable field; the explanation pass writes it once per drain
// cycle.
type Record struct {
	ID          string    `json:"id"`
	Function    string    `json:"function"`
	Location    string    `json:"file"`
	Inputs      Inputs    `json:"inputs"`
	Output      any       `json:"output"`
	SourceText  string    `json:"code"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMS  float64   `json:"duration_ms"`
	Explanation string    `json:"explanation,omitempty"`
}

// Explained reports whether an explanation pass has filled this record.
func (r *Record) Explained() bool {
	return r != nil && r.Explanation != ""
}
