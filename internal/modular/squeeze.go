// Package modular implements the Modular encoding pipeline (spec.md §4.5):
// the squeeze multi-resolution lifting transform, MED prediction, MA-tree
// predictor selection, and entropy emission via internal/entropy. The
// colour transform runs before this package, in internal/colortransform.
//
// The squeeze lifting step is grounded on the teacher's Forward53/
// Inverse53 5-3 reversible wavelet (deinterleave into low/high halves,
// lift in place), generalised from JPEG 2000's fixed two-tap filter to
// JPEG XL's average/residual squeeze pair applied recursively along
// either axis.
package modular

// Squeeze1D performs one forward squeeze pass along a 1D sequence of even
// length len(data), writing len/2 averages to avg and len/2 residuals to
// res (spec.md §4.5 step 3). The transform is exactly invertible: no
// information is discarded.
func Squeeze1D(data []int32, avg, res []int32) {
	n := len(data) / 2
	for i := 0; i < n; i++ {
		a := data[2*i]
		b := data[2*i+1]
		avg[i] = a + (b-a)>>1
		res[i] = b - a
	}
}

// Unsqueeze1D inverts Squeeze1D, reconstructing the original interleaved
// sequence from its average/residual halves.
func Unsqueeze1D(avg, res []int32, data []int32) {
	n := len(avg)
	for i := 0; i < n; i++ {
		r := res[i]
		a := avg[i] - r>>1
		b := a + r
		data[2*i] = a
		data[2*i+1] = b
	}
}

// SqueezeRow performs one horizontal squeeze pass over a single image row
// of the given width, handling an odd trailing sample by passing it
// through unchanged into the average half (spec.md §4.5 step 3 edge
// case).
func SqueezeRow(row []int32) (avg, res []int32) {
	n := len(row) / 2
	avg = make([]int32, n+len(row)%2)
	res = make([]int32, n)
	Squeeze1D(row[:2*n], avg[:n], res)
	if len(row)%2 == 1 {
		avg[n] = row[len(row)-1]
	}
	return avg, res
}

// UnsqueezeRow inverts SqueezeRow.
func UnsqueezeRow(avg, res []int32, width int) []int32 {
	row := make([]int32, width)
	n := len(res)
	Unsqueeze1D(avg[:n], res, row[:2*n])
	if width%2 == 1 {
		row[width-1] = avg[n]
	}
	return row
}

// Plane is a rectangular int32 sample grid in row-major order.
type Plane struct {
	Width, Height int
	Data          []int32
}

// At returns the sample at (x, y).
func (p *Plane) At(x, y int) int32 { return p.Data[y*p.Width+x] }

// Set assigns the sample at (x, y).
func (p *Plane) Set(x, y int, v int32) { p.Data[y*p.Width+x] = v }

// SqueezeHorizontal applies one horizontal squeeze pass to every row of
// the plane, halving its width and returning the residual plane
// separately so both halves can be entropy-coded as distinct channels
// (spec.md §4.5 step 3).
func SqueezeHorizontal(p *Plane) (avgPlane, resPlane *Plane) {
	avgWidth := (p.Width + 1) / 2
	resWidth := p.Width / 2
	avgPlane = &Plane{Width: avgWidth, Height: p.Height, Data: make([]int32, avgWidth*p.Height)}
	resPlane = &Plane{Width: resWidth, Height: p.Height, Data: make([]int32, resWidth*p.Height)}
	for y := 0; y < p.Height; y++ {
		row := p.Data[y*p.Width : (y+1)*p.Width]
		avg, res := SqueezeRow(row)
		copy(avgPlane.Data[y*avgWidth:(y+1)*avgWidth], avg)
		copy(resPlane.Data[y*resWidth:(y+1)*resWidth], res)
	}
	return avgPlane, resPlane
}

// UnsqueezeHorizontal inverts SqueezeHorizontal.
func UnsqueezeHorizontal(avgPlane, resPlane *Plane, width int) *Plane {
	out := &Plane{Width: width, Height: avgPlane.Height, Data: make([]int32, width*avgPlane.Height)}
	for y := 0; y < avgPlane.Height; y++ {
		avg := avgPlane.Data[y*avgPlane.Width : (y+1)*avgPlane.Width]
		res := resPlane.Data[y*resPlane.Width : (y+1)*resPlane.Width]
		row := UnsqueezeRow(avg, res, width)
		copy(out.Data[y*width:(y+1)*width], row)
	}
	return out
}

// SqueezeVertical applies one vertical squeeze pass, halving the plane's
// height.
func SqueezeVertical(p *Plane) (avgPlane, resPlane *Plane) {
	avgHeight := (p.Height + 1) / 2
	resHeight := p.Height / 2
	avgPlane = &Plane{Width: p.Width, Height: avgHeight, Data: make([]int32, p.Width*avgHeight)}
	resPlane = &Plane{Width: p.Width, Height: resHeight, Data: make([]int32, p.Width*resHeight)}
	col := make([]int32, p.Height)
	for x := 0; x < p.Width; x++ {
		for y := 0; y < p.Height; y++ {
			col[y] = p.At(x, y)
		}
		avg, res := SqueezeRow(col)
		for y := 0; y < avgHeight; y++ {
			avgPlane.Set(x, y, avg[y])
		}
		for y := 0; y < resHeight; y++ {
			resPlane.Set(x, y, res[y])
		}
	}
	return avgPlane, resPlane
}

// UnsqueezeVertical inverts SqueezeVertical.
func UnsqueezeVertical(avgPlane, resPlane *Plane, height int) *Plane {
	out := &Plane{Width: avgPlane.Width, Height: height, Data: make([]int32, avgPlane.Width*height)}
	avgCol := make([]int32, avgPlane.Height)
	resCol := make([]int32, resPlane.Height)
	for x := 0; x < avgPlane.Width; x++ {
		for y := 0; y < avgPlane.Height; y++ {
			avgCol[y] = avgPlane.At(x, y)
		}
		for y := 0; y < resPlane.Height; y++ {
			resCol[y] = resPlane.At(x, y)
		}
		col := UnsqueezeRow(avgCol, resCol, height)
		for y := 0; y < height; y++ {
			out.Set(x, y, col[y])
		}
	}
	return out
}

// Level holds the two residual planes one recursive squeeze step produces
// (horizontal-then-vertical, per spec.md §4.5 step 3); the step's average
// plane is not stored here, it is what the next step squeezes.
type Level struct {
	HorizontalResidual *Plane
	VerticalResidual   *Plane
}

// DecomposeRecursive applies squeeze recursively (horizontal pass then
// vertical pass) until both dimensions fall below minDim or maxLevels is
// reached, returning the coarsest average plane and the per-level
// residuals needed to reconstruct it (spec.md §4.5 "recursive per
// effort").
func DecomposeRecursive(p *Plane, maxLevels, minDim int) (*Plane, []Level) {
	levels := make([]Level, 0, maxLevels)
	cur := p
	for i := 0; i < maxLevels; i++ {
		if cur.Width < minDim && cur.Height < minDim {
			break
		}
		avgH, resH := SqueezeHorizontal(cur)
		avgV, resV := SqueezeVertical(avgH)
		levels = append(levels, Level{HorizontalResidual: resH, VerticalResidual: resV})
		cur = avgV
		if cur.Width <= 1 && cur.Height <= 1 {
			break
		}
	}
	return cur, levels
}

// ReconstructRecursive inverts DecomposeRecursive given the original
// plane's dimensions.
func ReconstructRecursive(coarse *Plane, levels []Level, origWidth, origHeight int) *Plane {
	cur := coarse
	widths, heights := planeSizesForLevels(origWidth, origHeight, len(levels))
	for i := len(levels) - 1; i >= 0; i-- {
		avgH := UnsqueezeVertical(cur, levels[i].VerticalResidual, heights[i].h)
		cur = UnsqueezeHorizontal(avgH, levels[i].HorizontalResidual, widths[i].w)
	}
	return cur
}

type dimPair struct{ w int }
type dimPairH struct{ h int }

func planeSizesForLevels(width, height, levels int) ([]dimPair, []dimPairH) {
	ws := make([]dimPair, levels)
	hs := make([]dimPairH, levels)
	w, h := width, height
	for i := 0; i < levels; i++ {
		ws[i] = dimPair{w}
		avgW := (w + 1) / 2
		hs[i] = dimPairH{h}
		h = (h + 1) / 2
		w = avgW
	}
	return ws, hs
}
