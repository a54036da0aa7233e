package store

import (
	"context"
	"encoding/json"
	"testing"

	"warmap-server/internal/shared/errors"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); errors.GetType(err) != errors.ErrorTypeNotFound {
		t.Fatalf("expected not_found for missing key, got %v", err)
	}

	doc := json.RawMessage(`{"a":1}`)
	if err := s.Put(ctx, "k", doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("got %s", got)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); errors.GetType(err) != errors.ErrorTypeNotFound {
		t.Fatalf("expected not_found after delete, got %v", err)
	}
}

func TestMemoryStore_RejectsInvalidJSON(t *testing.T) {
	s := NewMemoryStore()

	err := s.Put(context.Background(), "k", json.RawMessage(`{"a":`))
	if errors.GetType(err) != errors.ErrorTypeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "k", json.RawMessage(`"abc"`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, _ := s.Get(ctx, "k")
	got[1] = 'x'

	again, _ := s.Get(ctx, "k")
	if string(again) != `"abc"` {
		t.Fatalf("stored document mutated through returned slice: %s", again)
	}
}
