package reconcile

import (
	"bytes"
	"encoding/json"
	"strconv"

	"resume-ledger-backend/internal/domain"
)

// Move wrappers seen in historical snapshots: Option<T> shows up as
// {"fields":{"vec":...}}, vectors sometimes as {"fields":{"contents":[...]}}.
var containerKeys = []string{"fields", "vec", "contents"}

const maxUnwrapDepth = 8

// parseStrings reads a flat string sequence from any historical shape.
// Non-string items are coerced to their JSON text.
func parseStrings(raw json.RawMessage) ([]string, bool) {
	items, ok := unwrapVector(raw, 0)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, exact := asText(item)
		ok = ok && exact
		out = append(out, s)
	}
	return out, ok
}

// parseEntries reads experiences or achievements. A bare string is the
// legacy shape and is never verified. textKey is the legacy struct field
// name ("experience" or "achievement").
func parseEntries(raw json.RawMessage, textKey string) ([]domain.Entry, bool) {
	items, ok := unwrapVector(raw, 0)
	out := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		entry, exact := parseEntry(item, textKey)
		ok = ok && exact
		out = append(out, entry)
	}
	return out, ok
}

func parseEntry(raw json.RawMessage, textKey string) (domain.Entry, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.Entry{Text: s}, true
	}

	obj, ok := asObject(raw)
	if !ok {
		text, _ := asText(raw)
		return domain.Entry{Text: text}, false
	}
	if inner, ok := asObject(obj["fields"]); ok {
		obj = inner
	}

	for _, key := range []string{textKey, "text", "content", "value"} {
		v, present := obj[key]
		if !present {
			continue
		}
		text, exact := asText(v)
		verified, vok := parseVerified(obj)
		return domain.Entry{Text: text, Verified: verified}, exact && vok
	}

	text, _ := asText(raw)
	return domain.Entry{Text: text}, false
}

func parseVerified(obj map[string]json.RawMessage) (bool, bool) {
	for _, key := range []string{"verification", "verified"} {
		v, present := obj[key]
		if !present {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			return b, true
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			parsed, err := strconv.ParseBool(s)
			return parsed, err == nil
		}
		return false, false
	}
	return false, true
}

// unwrapVector peels Move containers until it finds an array. A bare scalar
// is treated as a one-item sequence; null and absent mean empty.
func unwrapVector(raw json.RawMessage, depth int) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	if depth > maxUnwrapDepth {
		return []json.RawMessage{raw}, false
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		// Option<vector<T>> encodes as a vector holding one vector.
		if len(arr) == 1 && isArray(arr[0]) {
			return unwrapVector(arr[0], depth+1)
		}
		return arr, true
	}

	if obj, ok := asObject(raw); ok {
		for _, key := range containerKeys {
			if inner, present := obj[key]; present {
				return unwrapVector(inner, depth+1)
			}
		}
		return []json.RawMessage{raw}, false
	}

	return []json.RawMessage{raw}, true
}

// scalarField reads a string field. Absent or null is "", anything that is
// not a string is kept as its JSON text.
func scalarField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present {
		return "", true
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return "", true
	}
	return asText(raw)
}

// asText returns the string value of raw, or its compact JSON text when raw
// is not a string. The bool reports whether raw was a string.
func asText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw), false
	}
	return buf.String(), false
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
