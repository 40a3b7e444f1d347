package standard

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type envelope struct {
	Status  string
	Message string
	Data    []byte
}

type rawEnvelope struct {
	Status  json.RawMessage `json:"status"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// decodeEnvelope requires a JSON object at the top level. status and message
// are read leniently: non-string values are kept as their JSON text.
func decodeEnvelope(body []byte) (envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return envelope{}, err
	}
	return envelope{
		Status:  looseString(raw.Status),
		Message: looseString(raw.Message),
		Data:    raw.Data,
	}, nil
}

func looseString(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// truthy mirrors how the service signals success: any non-empty, non-zero,
// non-false data payload.
func truthy(raw []byte) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func isObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func objectFields(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// intField reads an integer that the service may send as a number or a
// numeric string. Missing, null and empty-string values report ok=false.
func intField(fields map[string]json.RawMessage, key string) (int64, bool, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, false, nil
	}
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, false, nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false, fmt.Errorf("%s: %w", key, err)
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return 0, false, nil
		}
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	// 2^63 itself does not fit, hence >=
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false, fmt.Errorf("%s: not a number: %s", key, text)
	}
	return int64(f), true, nil
}
