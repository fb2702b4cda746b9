package rocketsolver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CircleArea returns the area of a circle of the given diameter.
func CircleArea(diameter float64) float64 {
	return math.Pi * 0.25 * diameter * diameter
}

// CylinderSurfaceArea returns the lateral surface area of a cylinder.
func CylinderSurfaceArea(length, diameter float64) float64 {
	return math.Pi * length * diameter
}

// CylinderVolume returns the volume of a cylinder.
func CylinderVolume(diameter, length float64) float64 {
	return math.Pi * length * diameter * diameter / 4
}

// frustumLateralArea returns the lateral (slant) surface area of a conical
// frustum with end diameters d1, d2 and height h.
func frustumLateralArea(d1, d2, h float64) float64 {
	r1, r2 := d1/2, d2/2
	slant := math.Hypot(r1-r2, h)
	return math.Pi * (r1 + r2) * slant
}

// frustumVolume returns the volume of a conical frustum.
func frustumVolume(d1, d2, h float64) float64 {
	r1, r2 := d1/2, d2/2
	return math.Pi * h / 3 * (r1*r1 + r1*r2 + r2*r2)
}

// frustumCentroid returns the axial centroid of a frustum measured from the
// end of diameter d1.
func frustumCentroid(d1, d2, h float64) float64 {
	r1, r2 := d1/2, d2/2
	den := r1*r1 + r1*r2 + r2*r2
	if den == 0 {
		return h / 2
	}
	return h * (r1*r1 + 2*r1*r2 + 3*r2*r2) / (4 * den)
}

// linspace returns n evenly spaced samples over [start, stop].
func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// savitzkyGolay smooths y with a moving-window polynomial filter. The window
// must be odd; it is shrunk to the largest odd size that fits when the input
// is short. Edges use mirror padding.
func savitzkyGolay(y []float64, window, order int) []float64 {
	n := len(y)
	if window > n {
		window = n
		if window%2 == 0 {
			window--
		}
	}
	if window < 3 {
		out := make([]float64, n)
		copy(out, y)
		return out
	}
	if order >= window {
		order = window - 1
	}
	m := window / 2

	// Least-squares design matrix over the window offsets.
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - m)
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, p)
			p *= t
		}
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var pinv mat.Dense
	if err := pinv.Solve(&ata, a.T()); err != nil {
		out := make([]float64, n)
		copy(out, y)
		return out
	}
	// The smoothed center sample is the fitted polynomial evaluated at zero
	// offset, i.e. the first row of the pseudo-inverse applied to the window.
	weights := make([]float64, window)
	for i := range weights {
		weights[i] = pinv.At(0, i)
	}

	mirror := func(i int) int {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
		return i
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for k := -m; k <= m; k++ {
			s += weights[k+m] * y[mirror(i+k)]
		}
		out[i] = s
	}
	return out
}

// contourEdgeTolerance is the distance, in cells, from the outer circle
// within which contour segments are treated as grid edge rather than burning
// surface.
const contourEdgeTolerance = 3.0

// contourLength sums the arc length, in cells, of the iso-level contours of
// grid at the given level using marching squares. Cells touching masked
// (NaN) samples are skipped, and segments within contourEdgeTolerance of the
// outer circle are discarded.
func contourLength(grid [][]float64, level float64) float64 {
	dim := len(grid)
	center := float64(dim) / 2
	maxRadius := center - contourEdgeTolerance

	valid := func(x, y float64) bool {
		return math.Hypot(x-center, y-center) < maxRadius
	}
	// Linear interpolation of the crossing point between two corner samples.
	cross := func(v0, v1 float64) float64 {
		if v1 == v0 {
			return 0.5
		}
		return (level - v0) / (v1 - v0)
	}

	var total float64
	addSegment := func(x0, y0, x1, y1 float64) {
		if valid(x0, y0) && valid(x1, y1) {
			total += math.Hypot(x1-x0, y1-y0)
		}
	}

	for i := 0; i < dim-1; i++ {
		for j := 0; j < dim-1; j++ {
			v00 := grid[i][j]   // (x=j,   y=i)
			v01 := grid[i][j+1] // (x=j+1, y=i)
			v10 := grid[i+1][j] // (x=j,   y=i+1)
			v11 := grid[i+1][j+1]
			if math.IsNaN(v00) || math.IsNaN(v01) || math.IsNaN(v10) || math.IsNaN(v11) {
				continue
			}
			idx := 0
			if v00 > level {
				idx |= 1
			}
			if v01 > level {
				idx |= 2
			}
			if v11 > level {
				idx |= 4
			}
			if v10 > level {
				idx |= 8
			}
			if idx == 0 || idx == 15 {
				continue
			}
			// Edge crossing points in (x, y) cell coordinates.
			top := [2]float64{float64(j) + cross(v00, v01), float64(i)}
			right := [2]float64{float64(j) + 1, float64(i) + cross(v01, v11)}
			bottom := [2]float64{float64(j) + cross(v10, v11), float64(i) + 1}
			left := [2]float64{float64(j), float64(i) + cross(v00, v10)}

			switch idx {
			case 1, 14:
				addSegment(top[0], top[1], left[0], left[1])
			case 2, 13:
				addSegment(top[0], top[1], right[0], right[1])
			case 3, 12:
				addSegment(left[0], left[1], right[0], right[1])
			case 4, 11:
				addSegment(right[0], right[1], bottom[0], bottom[1])
			case 6, 9:
				addSegment(top[0], top[1], bottom[0], bottom[1])
			case 7, 8:
				addSegment(left[0], left[1], bottom[0], bottom[1])
			case 5:
				addSegment(top[0], top[1], left[0], left[1])
				addSegment(right[0], right[1], bottom[0], bottom[1])
			case 10:
				addSegment(top[0], top[1], right[0], right[1])
				addSegment(left[0], left[1], bottom[0], bottom[1])
			}
		}
	}
	return total
}
