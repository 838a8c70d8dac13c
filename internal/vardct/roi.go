package vardct

// ROI mirrors the fields of the root package's ROIOptions needed by the
// VarDCT adaptive quantisation override (spec.md §4.6 step 5), without
// importing the root package (internal/vardct stays decoupled from jxl,
// matching the rest of this module's internal packages).
type ROI struct {
	X, Y, W, H   int
	QualityBoost int // 0..50, validated/clamped by the root package
	FeatherWidth int // pixels
}

// distanceToEdge returns 0 when the pixel-space block rectangle
// [bx0,by0)-[bx1,by1) overlaps r, otherwise the Chebyshev distance in
// pixels from the block to r's nearest edge.
func (r *ROI) distanceToEdge(bx0, by0, bx1, by1 int) int {
	dx := 0
	switch {
	case bx1 <= r.X:
		dx = r.X - bx1 + 1
	case bx0 >= r.X+r.W:
		dx = bx0 - (r.X + r.W) + 1
	}
	dy := 0
	switch {
	case by1 <= r.Y:
		dy = r.Y - by1 + 1
	case by0 >= r.Y+r.H:
		dy = by0 - (r.Y + r.H) + 1
	}
	if dx > dy {
		return dx
	}
	return dy
}

// roiAdjustedScale applies ROIOverride to a block's adaptive quantisation
// scale when roi is set and the block falls inside or near it (spec.md
// §4.6 step 5: "blocks inside ROI use distance × (1 − quality_boost/150);
// blocks in the feather zone blend via a cosine ramp").
func roiAdjustedScale(scale float64, roi *ROI, bx, by int) float64 {
	if roi == nil {
		return scale
	}
	bx0, by0 := bx*BlockSize, by*BlockSize
	bx1, by1 := bx0+BlockSize, by0+BlockSize
	dist := roi.distanceToEdge(bx0, by0, bx1, by1)
	roiFactor := 1 - float64(roi.QualityBoost)/150
	roiScale := scale * roiFactor
	return ROIOverride(scale, dist, roi.FeatherWidth, roiScale)
}
