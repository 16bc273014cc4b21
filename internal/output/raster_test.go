package output

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"biomassoutput/internal/blob"
	"biomassoutput/pkg/hostapi"
)

func TestASCIIGridEncoding(t *testing.T) {
	var buf bytes.Buffer
	err := ASCIIGridEncoder{}.Encode(&buf, hostapi.Dimensions{Rows: 2, Columns: 3}, []int32{1, 2, 3, 40, 0, -5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "ncols 3\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n1 2 3\n40 0 -5\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
	if err := (ASCIIGridEncoder{}).Encode(&buf, hostapi.Dimensions{Rows: 2, Columns: 2}, []int32{1}); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestPNGEncodingClamps(t *testing.T) {
	var buf bytes.Buffer
	if err := (PNGEncoder{}).Encode(&buf, hostapi.Dimensions{Rows: 1, Columns: 3}, []int32{-4, 1200, 70000}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		t.Fatalf("expected Gray16, got %T", img)
	}
	got := []uint16{gray.Gray16At(0, 0).Y, gray.Gray16At(1, 0).Y, gray.Gray16At(2, 0).Y}
	if got[0] != 0 || got[1] != 1200 || got[2] != 0xffff {
		t.Fatalf("pixels %v", got)
	}
}

func TestEncoderForExtension(t *testing.T) {
	if _, ok := EncoderFor("maps/a.PNG").(PNGEncoder); !ok {
		t.Fatalf("expected png encoder")
	}
	if _, ok := EncoderFor("maps/a.asc").(ASCIIGridEncoder); !ok {
		t.Fatalf("expected ascii encoder")
	}
	if _, ok := EncoderFor("maps/a.img").(ASCIIGridEncoder); !ok {
		t.Fatalf("unknown extensions fall back to ascii grid")
	}
}

func TestRasterLifecycle(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	dims := hostapi.Dimensions{Rows: 1, Columns: 2}
	r, err := NewRaster(store, "m.asc", dims)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := r.Set(2, 1); err == nil {
		t.Fatalf("expected out of range error")
	}
	_ = r.Set(1, 7)
	if err := r.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(ctx); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}
	if err := r.Set(0, 1); !errors.Is(err, ErrRasterClosed) {
		t.Fatalf("expected ErrRasterClosed, got %v", err)
	}
	info, _, err := store.Get(ctx, "m.asc")
	if err != nil || info.ContentType != "text/plain" {
		t.Fatalf("stored raster info %+v err %v", info, err)
	}

	discarded, _ := NewRaster(store, "d.asc", dims)
	discarded.Discard()
	if err := discarded.Close(ctx); err != nil {
		t.Fatalf("close after discard: %v", err)
	}
	if _, _, err := store.Get(ctx, "d.asc"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("discarded raster must not be stored")
	}
	if _, err := NewRaster(store, "z.asc", hostapi.Dimensions{}); err == nil {
		t.Fatalf("expected invalid dimensions error")
	}
}
