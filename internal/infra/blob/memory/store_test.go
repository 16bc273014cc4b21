package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"biomassoutput/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	if _, err := s.Put(ctx, "", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
	if _, err := s.Put(ctx, "maps/b.asc", bytes.NewReader([]byte("b")), core.PutOptions{Metadata: map[string]string{"k": "v"}}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	if _, err := s.Put(ctx, "maps/a.asc", bytes.NewReader([]byte("a")), core.PutOptions{}); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if _, err := s.Put(ctx, "maps/a.asc", bytes.NewReader([]byte("a2")), core.PutOptions{}); err != nil {
		t.Fatalf("replace a: %v", err)
	}
	if s.Puts() != 3 {
		t.Fatalf("puts = %d", s.Puts())
	}
	list, _ := s.List(ctx, "maps/")
	if len(list) != 2 || list[0].Key != "maps/a.asc" || list[1].Key != "maps/b.asc" {
		t.Fatalf("unexpected list %+v", list)
	}
	info, rc, err := s.Get(ctx, "maps/b.asc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "b" || info.Metadata["k"] != "v" {
		t.Fatalf("unexpected get %q %+v", body, info)
	}
	if got, ok := s.Bytes("maps/a.asc"); !ok || string(got) != "a2" {
		t.Fatalf("unexpected bytes %q", got)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if ok, _ := s.Delete(ctx, "maps/a.asc"); !ok {
		t.Fatalf("expected delete true")
	}
	if ok, _ := s.Delete(ctx, "maps/a.asc"); ok {
		t.Fatalf("expected delete false")
	}
}
