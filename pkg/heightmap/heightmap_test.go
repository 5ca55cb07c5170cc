package heightmap

import (
	"errors"
	"testing"
)

func TestNewRejectsTinyGrids(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 2} {
		if _, err := New(size); !errors.Is(err, ErrSizeTooSmall) {
			t.Errorf("New(%d) error = %v, want ErrSizeTooSmall", size, err)
		}
	}
	h, err := New(3)
	if err != nil {
		t.Fatalf("New(3): %v", err)
	}
	if len(h.Cells) != 9 {
		t.Errorf("len(Cells) = %d, want 9", len(h.Cells))
	}
}

func TestSetAtRowMajor(t *testing.T) {
	h, _ := New(4)
	h.Set(1, 2, 7)
	if got := h.Cells[2*4+1]; got != 7 {
		t.Errorf("Cells[9] = %f, want 7", got)
	}
	if got := h.At(1, 2); got != 7 {
		t.Errorf("At(1,2) = %f, want 7", got)
	}
	if got := h.Row(2)[1]; got != 7 {
		t.Errorf("Row(2)[1] = %f, want 7", got)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	h, _ := Filled(5, 10)
	c := h.Clone()
	c.Set(2, 2, 0)

	if h.At(2, 2) != 10 {
		t.Error("mutating the clone changed the original")
	}
	if h.Equal(c) {
		t.Error("Equal should report the difference")
	}
}

func TestComputeStats(t *testing.T) {
	h, _ := New(3)
	for i := range h.Cells {
		h.Cells[i] = float64(i)
	}

	s, ok := ComputeStats(h)
	if !ok {
		t.Fatal("stats unavailable for a populated grid")
	}
	if s.Min != 0 || s.Max != 8 || s.Mean != 4 || s.Size != 3 {
		t.Errorf("stats = %+v, want min=0 max=8 mean=4 size=3", s)
	}
}

func TestComputeStatsUnavailable(t *testing.T) {
	if _, ok := ComputeStats(nil); ok {
		t.Error("nil grid should report unavailable")
	}
	if _, ok := ComputeStats(&Heightmap{}); ok {
		t.Error("empty grid should report unavailable")
	}
}
