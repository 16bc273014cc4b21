package output

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"path"
	"strconv"
	"strings"

	"biomassoutput/internal/blob"
	"biomassoutput/pkg/hostapi"
)

// Encoder serializes a row-major grid of integer pixels.
type Encoder interface {
	Encode(w io.Writer, dims hostapi.Dimensions, pixels []int32) error
	ContentType() string
}

// EncoderFor picks the encoding from the map name extension: .png yields a
// 16-bit grayscale image, anything else an ESRI ASCII grid.
func EncoderFor(name string) Encoder {
	if strings.EqualFold(path.Ext(name), ".png") {
		return PNGEncoder{}
	}
	return ASCIIGridEncoder{}
}

// ASCIIGridEncoder writes ESRI ASCII grids with unit cells anchored at the origin.
type ASCIIGridEncoder struct{}

// ContentType implements Encoder.
func (ASCIIGridEncoder) ContentType() string { return "text/plain" }

// Encode implements Encoder.
func (ASCIIGridEncoder) Encode(w io.Writer, dims hostapi.Dimensions, pixels []int32) error {
	if len(pixels) != dims.Cells() {
		return fmt.Errorf("ascii grid: %d pixels for %dx%d", len(pixels), dims.Rows, dims.Columns)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n", dims.Columns, dims.Rows)
	buf := make([]byte, 0, 16)
	for r := 0; r < dims.Rows; r++ {
		for c := 0; c < dims.Columns; c++ {
			if c > 0 {
				_ = bw.WriteByte(' ')
			}
			buf = strconv.AppendInt(buf[:0], int64(pixels[r*dims.Columns+c]), 10)
			_, _ = bw.Write(buf)
		}
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// PNGEncoder writes 16-bit grayscale PNGs; values are clamped to [0, 65535].
type PNGEncoder struct{}

// ContentType implements Encoder.
func (PNGEncoder) ContentType() string { return "image/png" }

// Encode implements Encoder.
func (PNGEncoder) Encode(w io.Writer, dims hostapi.Dimensions, pixels []int32) error {
	if len(pixels) != dims.Cells() {
		return fmt.Errorf("png: %d pixels for %dx%d", len(pixels), dims.Rows, dims.Columns)
	}
	img := image.NewGray16(image.Rect(0, 0, dims.Columns, dims.Rows))
	for i, v := range pixels {
		switch {
		case v < 0:
			v = 0
		case v > 0xffff:
			v = 0xffff
		}
		img.SetGray16(i%dims.Columns, i/dims.Columns, color.Gray16{Y: uint16(v)})
	}
	return png.Encode(w, img)
}

// ErrRasterClosed is returned when writing to a raster after Close.
var ErrRasterClosed = errors.New("raster closed")

// Raster buffers one map and stores it on Close. Pixels not set stay 0.
type Raster struct {
	store  blob.Store
	key    string
	dims   hostapi.Dimensions
	enc    Encoder
	pixels []int32
	closed bool
}

// NewRaster allocates a raster for key sized to dims.
func NewRaster(store blob.Store, key string, dims hostapi.Dimensions) (*Raster, error) {
	if store == nil {
		return nil, fmt.Errorf("raster %s: no blob store", key)
	}
	if dims.Rows <= 0 || dims.Columns <= 0 {
		return nil, fmt.Errorf("raster %s: invalid dimensions %dx%d", key, dims.Rows, dims.Columns)
	}
	return &Raster{store: store, key: key, dims: dims, enc: EncoderFor(key), pixels: make([]int32, dims.Cells())}, nil
}

// Set stores the value at the row-major cell index.
func (r *Raster) Set(index int, value int32) error {
	if r.closed {
		return ErrRasterClosed
	}
	if index < 0 || index >= len(r.pixels) {
		return fmt.Errorf("raster %s: cell %d outside %dx%d", r.key, index, r.dims.Rows, r.dims.Columns)
	}
	r.pixels[index] = value
	return nil
}

// Close encodes and stores the raster, then releases the buffer. Calling
// Close again is a no-op.
func (r *Raster) Close(ctx context.Context) error {
	if r.closed {
		return nil
	}
	r.closed = true
	pixels := r.pixels
	r.pixels = nil
	var buf bytes.Buffer
	if err := r.enc.Encode(&buf, r.dims, pixels); err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if _, err := r.store.Put(ctx, r.key, &buf, blob.PutOptions{ContentType: r.enc.ContentType()}); err != nil {
		return fmt.Errorf("store %s: %w", r.key, err)
	}
	return nil
}

// Discard releases the buffer without storing anything.
func (r *Raster) Discard() {
	r.closed = true
	r.pixels = nil
}
