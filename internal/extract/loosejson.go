package extract

import (
	"encoding/json"
	"strings"
)

// ParseLoose parses s as JSON. If strict parsing fails it retries on the
// slice between the first '{' and the last '}', which salvages object
// literals wrapped in call syntax (e.g. `__d("...",{...});`). Nested braces
// inside strings can still make the slice invalid; that just yields false.
func ParseLoose(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, true
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, false
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &v); err != nil {
		return nil, false
	}
	return v, true
}
