package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Format is an export file type.
type Format string

const (
	FormatRAW     Format = "raw"
	FormatPNG     Format = "png"
	FormatPreview Format = "preview"
)

// FileName returns the conventional file name for an export of a size×size grid.
func FileName(f Format, size int) string {
	switch f {
	case FormatRAW:
		return fmt.Sprintf("terrain_%dx%d.raw", size, size)
	case FormatPNG:
		return fmt.Sprintf("terrain_heightmap_%dx%d.png", size, size)
	default:
		return fmt.Sprintf("terrain_preview_%dx%d.png", size, size)
	}
}

// valueRange returns the min and max over the finite cells of h. It is
// computed here rather than taken from Stats so exports never depend on
// stats having been refreshed.
func valueRange(h *heightmap.Heightmap) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range h.Cells {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// normalizer maps a cell to [0, 1]. Flat grids and non-finite cells map to 0.
func normalizer(h *heightmap.Heightmap) func(float64) float64 {
	lo, hi := valueRange(h)
	span := hi - lo
	return func(v float64) float64 {
		if !(span > 0) || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return math.Max(0, math.Min(1, (v-lo)/span))
	}
}

// WriteRAW writes h as Size*Size little-endian uint16 samples in row-major
// order, normalized to the grid's own min/max.
func WriteRAW(w io.Writer, h *heightmap.Heightmap) error {
	norm := normalizer(h)
	bw := bufio.NewWriter(w)

	var buf [2]byte
	for _, v := range h.Cells {
		binary.LittleEndian.PutUint16(buf[:], uint16(math.Round(norm(v)*math.MaxUint16)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write raw sample: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush raw: %w", err)
	}
	return nil
}

// Grayscale renders h as an 8-bit image, one pixel per cell.
func Grayscale(h *heightmap.Heightmap) *image.Gray {
	norm := normalizer(h)
	img := image.NewGray(image.Rect(0, 0, h.Size, h.Size))
	for y := 0; y < h.Size; y++ {
		row := h.Row(y)
		for x, v := range row {
			img.SetGray(x, y, color.Gray{Y: uint8(math.Round(norm(v) * 255))})
		}
	}
	return img
}

// WritePNG writes h as an 8-bit grayscale PNG.
func WritePNG(w io.Writer, h *heightmap.Heightmap) error {
	if err := png.Encode(w, Grayscale(h)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Preview resamples the grayscale image of h to displaySize×displaySize.
func Preview(h *heightmap.Heightmap, displaySize int) image.Image {
	src := Grayscale(h)
	if displaySize <= 0 || displaySize == h.Size {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, displaySize, displaySize))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePreview writes Preview(h, displaySize) as a PNG.
func WritePreview(w io.Writer, h *heightmap.Heightmap, displaySize int) error {
	if err := png.Encode(w, Preview(h, displaySize)); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// Write dispatches on f.
func Write(w io.Writer, f Format, h *heightmap.Heightmap, displaySize int) error {
	switch f {
	case FormatRAW:
		return WriteRAW(w, h)
	case FormatPNG:
		return WritePNG(w, h)
	case FormatPreview:
		return WritePreview(w, h, displaySize)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}
