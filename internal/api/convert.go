package api

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"
)

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// ParseTimestamp parses a backend ISO 8601 timestamp. The backend emits both
// zoned and naive forms, naive ones are taken as UTC.
// Returns the zero time for empty or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t
		}
	}
	return time.Time{}
}

// resumeExtensions are the file types the backend will process.
var resumeExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// IsResumeFile reports whether the backend accepts the file name for processing.
func IsResumeFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range resumeExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
