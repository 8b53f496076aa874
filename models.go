package pylon

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// TimeFormat is the timestamp format the API expects in query strings
// and filter values.
const TimeFormat = "2006-01-02T15:04:05Z"

// ParseTime parses a timestamp from an API response. Empty strings parse
// to the zero time; the API emits them for unset time fields.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Value: s}
}

// FormatTime formats a time for query parameters, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// Timestamp wraps time.Time and tolerates the empty strings and nulls the
// API emits for unset time fields.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON decodes an API timestamp. Empty strings and nulls decode
// to the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the timestamp in RFC 3339, or null when zero.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}

// Equal reports whether two timestamps represent the same instant.
func (t Timestamp) Equal(u Timestamp) bool {
	return t.Time.Equal(u.Time)
}

// Reference points at another Pylon entity by ID.
type Reference struct {
	ID string `json:"id"`
}

// CustomFieldValue is one custom field value. API responses key these by
// slug under custom_fields; select fields carry multiple values. Scalar
// payloads (numbers, booleans) are coerced to their string form.
type CustomFieldValue struct {
	Slug   string   `json:"slug,omitempty"`
	Value  string   `json:"value"`
	Values []string `json:"values,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare scalar.
func (v *CustomFieldValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Slug   string          `json:"slug"`
			Value  json.RawMessage `json:"value"`
			Values []string        `json:"values"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		v.Slug = obj.Slug
		v.Values = obj.Values
		v.Value = scalarString(obj.Value)
		return nil
	}

	v.Value = scalarString(trimmed)
	return nil
}

// Bool interprets the value as a boolean. It recognizes true/1/yes and
// false/0/no in any case; ok reports whether the value was recognized.
func (v CustomFieldValue) Bool() (value, ok bool) {
	switch strings.ToLower(v.Value) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// scalarString renders a JSON scalar in its string form.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// CustomFields holds custom field values keyed by slug.
type CustomFields map[string]CustomFieldValue

// Get returns the value for slug and whether it is present.
func (f CustomFields) Get(slug string) (CustomFieldValue, bool) {
	v, ok := f[slug]
	return v, ok
}

// Value returns the scalar value for slug, or "" when absent.
func (f CustomFields) Value(slug string) string {
	return f[slug].Value
}
