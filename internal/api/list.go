package api

import (
	"bytes"
	"encoding/json"
)

// listBody decodes collection endpoints that answer either with a bare array
// or with a paginated {"count", "results"} envelope.
type listBody[T any] struct {
	Items []T
}

func (l *listBody[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &l.Items)
	}
	var envelope struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	l.Items = envelope.Results
	return nil
}
