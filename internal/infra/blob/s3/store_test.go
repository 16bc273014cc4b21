package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"biomassoutput/internal/blob/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}

func TestNewWithStaticCredentials(t *testing.T) {
	store, err := New(context.Background(), Config{
		Bucket:          "outputs",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
		Prefix:          "run-1/",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverS3 || store.objectKey("a.csv") != "run-1/a.csv" {
		t.Fatalf("unexpected store %+v", store)
	}
}

func TestMockStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMockForTests()
	if _, err := store.Put(ctx, "", bytes.NewReader(nil), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
	info, err := store.Put(ctx, "biomass/woody-10.asc", bytes.NewReader([]byte("ncols 1")), core.PutOptions{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "biomass/woody-10.asc" || info.Size != 7 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "biomass/woody-10.asc", bytes.NewReader([]byte("ncols 2")), core.PutOptions{ContentType: "text/plain"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_, rc, err := store.Get(ctx, "biomass/woody-10.asc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "ncols 2" {
		t.Fatalf("expected replaced body, got %q", body)
	}
	list, err := store.List(ctx, "biomass/")
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if _, _, err := store.Get(ctx, "biomass/missing.asc"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	ok, err := store.Delete(ctx, "biomass/woody-10.asc")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	ok, err = store.Delete(ctx, "biomass/woody-10.asc")
	if err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}
