// Package patches implements the repeated-rectangular-region search
// spec.md §4.6 step 9 names as the "patches" overlay: detecting regions
// of the current frame that closely match a region of a previously
// saved reference frame, so the orchestrator can record them as a
// dedicated frame-body subsection instead of re-encoding that area from
// scratch.
package patches

import "math"

// Options mirrors the root package's PatchOptions.
type Options struct {
	MinPatchSize, MaxPatchSize int
	SimilarityThreshold        float64 // 0..1; higher means stricter matching
	MaxPatchesPerFrame         int
	SearchRadius               int
}

// Match is one detected patch: a MinPatchSize..MaxPatchSize square copied
// from (RefX, RefY) in the reference plane to (X, Y) in the current one.
type Match struct {
	X, Y, RefX, RefY, Size int
}

// Find scans cur for squares that closely match a nearby square in ref
// (same dimensions, row-major), returning up to opts.MaxPatchesPerFrame
// matches ordered by position. ref may be nil, in which case no patches
// are found.
func Find(cur, ref []int32, width, height int, opts Options) []Match {
	if ref == nil || opts.MaxPatchesPerFrame <= 0 {
		return nil
	}
	size := opts.MinPatchSize
	if size <= 0 {
		size = 8
	}
	if opts.MaxPatchSize > 0 && opts.MaxPatchSize < size {
		size = opts.MaxPatchSize
	}
	if size > width || size > height {
		return nil
	}
	radius := opts.SearchRadius
	if radius < 0 {
		radius = 0
	}
	maxSAD := (1 - clamp01(opts.SimilarityThreshold)) * float64(size*size) * 255

	var matches []Match
	for y := 0; y+size <= height && len(matches) < opts.MaxPatchesPerFrame; y += size {
		for x := 0; x+size <= width && len(matches) < opts.MaxPatchesPerFrame; x += size {
			bestSAD := math.MaxFloat64
			bestRX, bestRY := -1, -1
			for dy := -radius; dy <= radius; dy++ {
				ry := y + dy
				if ry < 0 || ry+size > height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					rx := x + dx
					if rx < 0 || rx+size > width {
						continue
					}
					if dx == 0 && dy == 0 {
						continue // a patch must reference a distinct location
					}
					sad := blockSAD(cur, ref, width, x, y, rx, ry, size)
					if sad < bestSAD {
						bestSAD, bestRX, bestRY = sad, rx, ry
					}
				}
			}
			if bestRX >= 0 && bestSAD <= maxSAD {
				matches = append(matches, Match{X: x, Y: y, RefX: bestRX, RefY: bestRY, Size: size})
			}
		}
	}
	return matches
}

func blockSAD(cur, ref []int32, width, x0, y0, rx0, ry0, size int) float64 {
	var sum float64
	for dy := 0; dy < size; dy++ {
		curRow := (y0 + dy) * width
		refRow := (ry0 + dy) * width
		for dx := 0; dx < size; dx++ {
			diff := float64(cur[curRow+x0+dx] - ref[refRow+rx0+dx])
			if diff < 0 {
				diff = -diff
			}
			sum += diff
		}
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
