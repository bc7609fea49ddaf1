package model

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Extra holds the fields a client sent that the model does not declare.
// They are stored and returned as-is.
type Extra map[string]any

func fieldSet(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// storableKey rejects names Mongo would read as an operator or a path.
func storableKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "$") && !strings.Contains(key, ".")
}

// decodeExtra collects the top-level keys of data that are not in known.
func decodeExtra(data []byte, known map[string]struct{}) (Extra, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var extra Extra
	for key, value := range raw {
		if _, ok := known[key]; ok || !storableKey(key) {
			continue
		}
		if extra == nil {
			extra = Extra{}
		}
		extra[key] = value
	}
	return extra, nil
}

// encodeWithExtra merges extra into the JSON object base. Declared fields win.
func encodeWithExtra(base []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}

	var declared map[string]json.RawMessage
	if err := json.Unmarshal(base, &declared); err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(extra)+len(declared))
	for key, value := range extra {
		merged[key] = jsonValue(value)
	}
	for key, value := range declared {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// jsonValue turns BSON container types decoded from storage into plain
// maps and slices so they encode as JSON objects and arrays.
func jsonValue(v any) any {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = jsonValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = jsonValue(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = jsonValue(val)
		}
		return m
	case primitive.A:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = jsonValue(val)
		}
		return s
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = jsonValue(val)
		}
		return s
	default:
		return v
	}
}
