package client

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeList unmarshals a collection that the backend returns either as a bare
// array or wrapped in an object under key (or a generic "items" key).
func decodeList(body []byte, key string, out any) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("decode %s: invalid JSON body", key)
	}
	root := gjson.ParseBytes(body)

	var raw string
	switch {
	case root.IsArray():
		raw = root.Raw
	case root.Get(key).IsArray():
		raw = root.Get(key).Raw
	case root.Get("items").IsArray():
		raw = root.Get("items").Raw
	case root.Type == gjson.Null:
		raw = "[]"
	default:
		return fmt.Errorf("decode %s: unexpected response shape", key)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// decodeCreated reads the created batch id (string or number) and keeps the full object.
func decodeCreated(body []byte) (*CreatedBatch, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode created batch: invalid JSON body")
	}
	id := gjson.GetBytes(body, "id")
	if !id.Exists() || id.String() == "" {
		return nil, fmt.Errorf("decode created batch: response has no id")
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decode created batch: %w", err)
	}
	return &CreatedBatch{ID: id.String(), Fields: fields}, nil
}
