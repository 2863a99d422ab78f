package schoolapi

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var null = []byte("null")

// decodeList accepts a bare array, a wrapper holding the array under key, a single
// entity or null, and always returns a non-nil slice.
func decodeList[T any](data []byte, key string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return []T{}, nil
	}

	switch data[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, errors.Wrap(err, "decoding list")
		}
		if items == nil {
			items = []T{}
		}
		return items, nil

	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, errors.Wrap(err, "decoding list")
		}
		if raw, ok := fields[key]; ok {
			return decodeList[T](raw, key)
		}
		if !hasID(fields) {
			// a wrapper without the list, e.g. {"success": true, "message": "..."}
			return []T{}, nil
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, errors.Wrap(err, "decoding item")
		}
		return []T{item}, nil
	}
	return nil, errors.Errorf("unexpected list payload %.20q", data)
}

// decodeOne decodes an entity, unwrapping it from {"<key>": {...}} when so enveloped.
func decodeOne[T any](data []byte, keys ...string) (T, error) {
	var item T
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return item, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err == nil && !hasID(fields) {
		for _, key := range keys {
			if raw := bytes.TrimSpace(fields[key]); len(raw) > 0 && raw[0] == '{' {
				data = raw
				break
			}
		}
	}
	return item, errors.Wrap(json.Unmarshal(data, &item), "decoding item")
}

func hasID(fields map[string]json.RawMessage) bool {
	_, id := fields["id"]
	_, mongoID := fields["_id"]
	return id || mongoID
}
