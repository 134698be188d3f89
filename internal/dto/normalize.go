package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToSingle decodes a JSON value that may hold either one T or a list of T
// (legacy rows and nested relations use both shapes). An empty list or null
// yields nil.
func ToSingle[T any](raw json.RawMessage) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []T
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if len(list) == 0 {
			return nil, nil
		}
		return &list[0], nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	return &v, nil
}
