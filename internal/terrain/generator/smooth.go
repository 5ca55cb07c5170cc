package generator

import (
	"golang.org/x/sync/errgroup"

	"github.com/EYH-Studio/EYH-Terrain-Generator/internal/terrain/config"
	"github.com/EYH-Studio/EYH-Terrain-Generator/pkg/heightmap"
)

// Smooth runs up to config.MaxSmoothing passes of a 3×3 weighted average.
// The center cell counts centerWeight times, each of the 8 neighbors once.
// Border cells are copied through unchanged. Every pass reads the previous
// pass's grid and writes a fresh one; src is never modified.
func Smooth(src *heightmap.Heightmap, iterations int, centerWeight float64, workers int) *heightmap.Heightmap {
	if iterations > config.MaxSmoothing {
		iterations = config.MaxSmoothing
	}
	if workers < 1 {
		workers = 1
	}

	cur := src.Clone()
	for range iterations {
		next := cur.Clone()

		var g errgroup.Group
		g.SetLimit(workers)
		for y := 1; y < cur.Size-1; y++ {
			g.Go(func() error {
				smoothRow(cur, next, y, centerWeight)
				return nil
			})
		}
		// Barrier: pass k+1 may only start once every row of pass k is written.
		_ = g.Wait()

		cur = next
	}
	return cur
}

func smoothRow(src, dst *heightmap.Heightmap, y int, centerWeight float64) {
	size := src.Size
	above := src.Row(y - 1)
	row := src.Row(y)
	below := src.Row(y + 1)
	out := dst.Row(y)
	norm := centerWeight + 8

	for x := 1; x < size-1; x++ {
		sum := row[x] * centerWeight
		sum += above[x-1] + above[x] + above[x+1]
		sum += row[x-1] + row[x+1]
		sum += below[x-1] + below[x] + below[x+1]
		out[x] = sum / norm
	}
}
