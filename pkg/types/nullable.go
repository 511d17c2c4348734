package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Nullable distinguishes an absent JSON field (Valid false) from an explicit
// null (Valid true, Value nil) in PATCH payloads.
type Nullable[T any] struct {
	Valid bool
	Value *T
}

// NullableUUID clears or replaces an optional foreign key.
type NullableUUID = Nullable[uuid.UUID]

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Valid = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Value = &parsed
	return nil
}

// Resolve returns the patched value: current when the field was absent,
// otherwise the supplied value (nil for an explicit null).
func (n Nullable[T]) Resolve(current *T) *T {
	if !n.Valid {
		return current
	}
	if n.Value == nil {
		return nil
	}
	v := *n.Value
	return &v
}
