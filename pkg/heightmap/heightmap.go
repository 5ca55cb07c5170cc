package heightmap

import (
	"errors"
	"fmt"
)

// MinSize is the smallest grid the stencil and edge-falloff math can work with.
const MinSize = 3

// ErrSizeTooSmall is returned when a grid of size <= 2 is requested.
var ErrSizeTooSmall = errors.New("heightmap: size must be greater than 2")

// Heightmap is an N×N grid of elevations stored in row-major order.
// Index = y*Size + x.
type Heightmap struct {
	Size  int
	Cells []float64
}

// New allocates a zeroed Size×Size grid.
func New(size int) (*Heightmap, error) {
	if size < MinSize {
		return nil, fmt.Errorf("new heightmap %d: %w", size, ErrSizeTooSmall)
	}
	return &Heightmap{
		Size:  size,
		Cells: make([]float64, size*size),
	}, nil
}

// Filled allocates a grid with every cell set to v.
func Filled(size int, v float64) (*Heightmap, error) {
	h, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := range h.Cells {
		h.Cells[i] = v
	}
	return h, nil
}

// At returns the elevation at (x, y).
func (h *Heightmap) At(x, y int) float64 {
	return h.Cells[y*h.Size+x]
}

// Set stores the elevation at (x, y).
func (h *Heightmap) Set(x, y int, v float64) {
	h.Cells[y*h.Size+x] = v
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (h *Heightmap) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < h.Size && y < h.Size
}

// Row returns row y as a slice sharing the grid's backing array.
func (h *Heightmap) Row(y int) []float64 {
	return h.Cells[y*h.Size : (y+1)*h.Size]
}

// Clone returns a deep copy that does not alias h.
func (h *Heightmap) Clone() *Heightmap {
	c := &Heightmap{
		Size:  h.Size,
		Cells: make([]float64, len(h.Cells)),
	}
	copy(c.Cells, h.Cells)
	return c
}

// Equal reports whether both grids have the same size and bit-identical cells.
func (h *Heightmap) Equal(o *Heightmap) bool {
	if h == nil || o == nil {
		return h == o
	}
	if h.Size != o.Size || len(h.Cells) != len(o.Cells) {
		return false
	}
	for i, v := range h.Cells {
		if v != o.Cells[i] {
			return false
		}
	}
	return true
}
