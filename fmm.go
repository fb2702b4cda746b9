package rocketsolver

import (
	"container/heap"
	"math"
	"sync"

	"gonum.org/v1/gonum/interp"
)

// DefaultMapDim is the default raster grid resolution (cells per axis).
const DefaultMapDim = 1000

// rasterShape defines the propellant-free footprint of a raster segment in
// normalized face coordinates (outer radius = 1).
type rasterShape interface {
	shapeName() string
	// inCore reports whether the point (x, y) starts out already burned.
	inCore(x, y float64) bool
}

// fmmSegment numerically regresses an arbitrary cross-section on a square
// grid. A fast-marching distance transform from the core footprint yields a
// regression map: for every solid cell, the web distance at which it becomes
// exposed. The map and the smoothed face-area lookup built from it are
// derived data, memoized on first use.
type fmmSegment struct {
	segmentGeometry
	shape  rasterShape
	mapDim int

	once       sync.Once
	regression [][]float64 // normalized to outer radius; NaN outside the outer circle
	maxDist    float64
	faceWebs   []float64
	faceLookup interp.FritschButland
}

func newFMMSegment(geom segmentGeometry, shape rasterShape, mapDim int) *fmmSegment {
	if mapDim <= 0 {
		mapDim = solverConfig().mapDim
	}
	return &fmmSegment{segmentGeometry: geom, shape: shape, mapDim: mapDim}
}

// normalize converts a physical length to regression-map units.
func (s *fmmSegment) normalize(v float64) float64 {
	return v / (s.outerDiameter / 2)
}

// mapToLength converts a length in cells to physical units.
func (s *fmmSegment) mapToLength(cells float64) float64 {
	return s.outerDiameter * cells / float64(s.mapDim)
}

// mapToArea converts a cell count to physical area.
func (s *fmmSegment) mapToArea(cells float64) float64 {
	return s.outerDiameter * s.outerDiameter * cells / float64(s.mapDim*s.mapDim)
}

// cellCenter returns the normalized coordinates of cell (i, j).
func (s *fmmSegment) cellCenter(i, j int) (x, y float64) {
	step := 2 / float64(s.mapDim-1)
	return -1 + float64(j)*step, -1 + float64(i)*step
}

func (s *fmmSegment) build() {
	s.once.Do(func() {
		s.regression = s.computeRegressionMap()
		for _, row := range s.regression {
			for _, t := range row {
				if !math.IsNaN(t) && !math.IsInf(t, 1) {
					s.maxDist = math.Max(s.maxDist, t)
				}
			}
		}
		s.buildFaceAreaLookup()
	})
}

// computeRegressionMap runs the fast march outward from the core footprint.
// Cells outside the outer circle are excluded entirely.
func (s *fmmSegment) computeRegressionMap() [][]float64 {
	dim := s.mapDim
	h := 2 / float64(dim-1) // cell size, normalized units

	t := make([][]float64, dim)
	frozen := make([][]bool, dim)
	pq := &fmmQueue{}
	heap.Init(pq)
	for i := 0; i < dim; i++ {
		t[i] = make([]float64, dim)
		frozen[i] = make([]bool, dim)
		for j := 0; j < dim; j++ {
			x, y := s.cellCenter(i, j)
			switch {
			case x*x+y*y > 1:
				t[i][j] = math.NaN()
				frozen[i][j] = true
			case s.shape.inCore(x, y):
				t[i][j] = 0
				heap.Push(pq, fmmNode{i, j, 0})
			default:
				t[i][j] = math.Inf(1)
			}
		}
	}

	at := func(i, j int) float64 {
		if i < 0 || j < 0 || i >= dim || j >= dim || math.IsNaN(t[i][j]) {
			return math.Inf(1)
		}
		return t[i][j]
	}

	for pq.Len() > 0 {
		n := heap.Pop(pq).(fmmNode)
		if frozen[n.i][n.j] {
			continue
		}
		frozen[n.i][n.j] = true
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			i, j := n.i+d[0], n.j+d[1]
			if i < 0 || j < 0 || i >= dim || j >= dim || frozen[i][j] {
				continue
			}
			// First-order upwind update of the eikonal equation.
			a := math.Min(at(i-1, j), at(i+1, j))
			b := math.Min(at(i, j-1), at(i, j+1))
			if a > b {
				a, b = b, a
			}
			var cand float64
			if math.IsInf(a, 1) {
				continue
			}
			if b-a >= h || math.IsInf(b, 1) {
				cand = a + h
			} else {
				cand = (a + b + math.Sqrt(2*h*h-(b-a)*(b-a))) / 2
			}
			if cand < t[i][j] {
				t[i][j] = cand
				heap.Push(pq, fmmNode{i, j, cand})
			}
		}
	}
	return t
}

// buildFaceAreaLookup sweeps the regression-map levels, counts the cells
// still solid at each level, smooths the raw counts (grid discretization is
// noisy) and fits a monotone interpolant for O(1) queries.
func (s *fmmSegment) buildFaceAreaLookup() {
	steps := int(s.maxDist*float64(s.mapDim)) + 2
	webs := make([]float64, steps)
	face := make([]float64, steps)
	for k := 0; k < steps; k++ {
		webs[k] = float64(k) / float64(s.mapDim)
		var count int
		for _, row := range s.regression {
			for _, t := range row {
				if !math.IsNaN(t) && t > webs[k] {
					count++
				}
			}
		}
		face[k] = s.mapToArea(float64(count))
	}
	face = savitzkyGolay(face, 31, 5)
	s.faceWebs = webs
	// Fit only fails for fewer than two samples; steps >= 2 always.
	_ = s.faceLookup.Fit(webs, face)
}

// WebThickness is limited by the deepest cell of the regression map or by
// axial exhaustion of the uninhibited ends.
func (s *fmmSegment) WebThickness() float64 {
	s.build()
	web := s.maxDist * s.outerDiameter / 2
	if b := s.burningEnds(); b > 0 {
		web = math.Min(web, s.length/float64(b))
	}
	return web
}

// currentLength is the segment length after axial regression at web x.
func (s *fmmSegment) currentLength(x float64) float64 {
	return s.length - float64(s.burningEnds())*x
}

// FaceArea returns the remaining cross-section area at web distance x.
func (s *fmmSegment) FaceArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	s.build()
	level := s.normalize(x)
	if level < s.faceWebs[0] {
		level = s.faceWebs[0]
	}
	if last := s.faceWebs[len(s.faceWebs)-1]; level > last {
		level = last
	}
	return math.Max(s.faceLookup.Predict(level), 0)
}

// PortArea is the outer circle minus the remaining face.
func (s *fmmSegment) PortArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	return CircleArea(s.outerDiameter) - s.FaceArea(x)
}

// CorePerimeter extracts the iso-level contour of the regression map at web
// distance x and returns its physical length, grid-edge artifacts excluded.
func (s *fmmSegment) CorePerimeter(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	s.build()
	return s.mapToLength(contourLength(s.regression, s.normalize(x)))
}

// BurnArea is the core surface plus the uninhibited end faces.
func (s *fmmSegment) BurnArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	return s.CorePerimeter(x)*s.currentLength(x) + float64(s.burningEnds())*s.FaceArea(x)
}

// Volume approximates the remaining propellant as the face extruded over the
// current length; end effects are not modeled.
func (s *fmmSegment) Volume(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	return s.FaceArea(x) * s.currentLength(x)
}

// CenterOfGravity is the area-weighted centroid of the cells still solid at
// web distance x, with the axial coordinate fixed at mid-length.
func (s *fmmSegment) CenterOfGravity(x float64) ([3]float64, error) {
	if x > s.WebThickness() {
		return [3]float64{}, GeometryError{s.shape.shapeName(), "web distance exceeds the segment web thickness"}
	}
	s.build()
	level := s.normalize(x)
	center := float64(s.mapDim) / 2
	var sumX, sumY float64
	var count int
	for i, row := range s.regression {
		for j, t := range row {
			if math.IsNaN(t) || t <= level {
				continue
			}
			sumX += float64(j) - center
			sumY += float64(i) - center
			count++
		}
	}
	if count == 0 {
		return [3]float64{}, GeometryError{s.shape.shapeName(), "no active material at the given web distance"}
	}
	return [3]float64{
		s.mapToLength(sumX / float64(count)),
		s.mapToLength(sumY / float64(count)),
		s.length / 2,
	}, nil
}

type fmmNode struct {
	i, j int
	t    float64
}

// fmmQueue is a lazy-deletion min-heap over tentative arrival values.
type fmmQueue []fmmNode

func (q fmmQueue) Len() int            { return len(q) }
func (q fmmQueue) Less(a, b int) bool  { return q[a].t < q[b].t }
func (q fmmQueue) Swap(a, b int)       { q[a], q[b] = q[b], q[a] }
func (q *fmmQueue) Push(v interface{}) { *q = append(*q, v.(fmmNode)) }
func (q *fmmQueue) Pop() interface{} {
	old := *q
	n := len(old)
	v := old[n-1]
	*q = old[:n-1]
	return v
}
