package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNullableUUIDUnmarshal(t *testing.T) {
	type payload struct {
		ID NullableUUID `json:"id"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"id": "00000000-0000-0000-0000-000000000001"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.ID.Valid || got.ID.Value == nil {
		t.Fatalf("expected valid uuid, got %v", got.ID)
	}
	if got.ID.Value.String() != "00000000-0000-0000-0000-000000000001" {
		t.Fatalf("unexpected uuid %s", got.ID.Value)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"id": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.ID.Valid || got.ID.Value != nil {
		t.Fatalf("expected null to be valid but nil, got %v", got.ID)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal missing: %v", err)
	}
	if got.ID.Valid {
		t.Fatalf("expected invalid flag for missing field, got %+v", got.ID)
	}
}

func TestNullableStringUnmarshal(t *testing.T) {
	type payload struct {
		Notes NullableString `json:"notes"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if got.Notes.Valid {
		t.Fatalf("absent field must not be valid")
	}

	if err := json.Unmarshal([]byte(`{"notes": "  bring keys "}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.Notes.Valid || got.Notes.Value == nil || *got.Notes.Value != "bring keys" {
		t.Fatalf("unexpected notes %+v", got.Notes)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"notes": ""}`), &got); err != nil {
		t.Fatalf("unmarshal blank: %v", err)
	}
	if !got.Notes.Valid || got.Notes.Value != nil {
		t.Fatalf("blank should clear the field, got %+v", got.Notes)
	}
}

func TestNullableResolve(t *testing.T) {
	current := uuid.New()
	next := uuid.New()

	if got := (NullableUUID{}).Resolve(&current); got == nil || *got != current {
		t.Fatalf("absent field must keep current, got %v", got)
	}
	if got := (NullableUUID{Valid: true}).Resolve(&current); got != nil {
		t.Fatalf("explicit null must clear, got %v", got)
	}
	if got := (NullableUUID{Valid: true, Value: &next}).Resolve(&current); got == nil || *got != next {
		t.Fatalf("expected replacement, got %v", got)
	}
}
