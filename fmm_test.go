package rocketsolver

import (
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

// testMapDim keeps the raster tests fast; production runs use the full
// resolution.
const testMapDim = 301

// Circular-segment closed forms for a chord at distance a from the center
// of a circle of radius r.
func chordSegmentArea(r, a float64) float64 {
	return r*r*math.Acos(a/r) - a*math.Sqrt(r*r-a*a)
}

func chordLength(r, a float64) float64 {
	return 2 * math.Sqrt(r*r-a*a)
}

func TestDGrainValidation(t *testing.T) {
	if _, err := NewDGrainSegment(0.1, 0.2, 0, 0, testMapDim); err == nil {
		t.Fatal("zero slot offset must be rejected")
	}
	if _, err := NewDGrainSegment(0.1, 0.2, 0.05, 0, testMapDim); err == nil {
		t.Fatal("slot offset at the outer radius must be rejected")
	}
	if _, err := NewDGrainSegment(0.1, 0.2, 0.02, 0, testMapDim); err != nil {
		t.Fatalf("valid D grain rejected: %s", err)
	}
}

func TestDGrainInitialGeometry(t *testing.T) {
	const (
		od     = 0.1
		r      = od / 2
		offset = 0.02
		length = 0.2
	)
	seg, err := NewDGrainSegment(od, length, offset, 0, testMapDim)
	if err != nil {
		t.Fatalf("D grain: %s", err)
	}
	// The initial port is the circular segment beyond the slot chord.
	expPort := chordSegmentArea(r, offset)
	if !floats.EqualWithinAbs(seg.PortArea(0), expPort, expPort*0.03) {
		t.Fatalf("initial port area: %g, expected %g", seg.PortArea(0), expPort)
	}
	expFace := CircleArea(od) - expPort
	if !floats.EqualWithinAbs(seg.FaceArea(0), expFace, expFace*0.03) {
		t.Fatalf("initial face area: %g, expected %g", seg.FaceArea(0), expFace)
	}
	// Port and face always fill the outer circle.
	for _, x := range []float64{0, 0.005, 0.01} {
		sum := seg.PortArea(x) + seg.FaceArea(x)
		if !floats.EqualWithinAbs(sum, CircleArea(od), CircleArea(od)*1e-9) {
			t.Fatalf("port + face at x=%f: %g != %g", x, sum, CircleArea(od))
		}
	}
	// The initial burning perimeter is the slot chord.
	expChord := chordLength(r, offset)
	if !floats.EqualWithinAbs(seg.CorePerimeter(0), expChord, expChord*0.05) {
		t.Fatalf("initial core perimeter: %f, expected %f", seg.CorePerimeter(0), expChord)
	}
}

// The deepest material from the slot sits at the far edge of the circle, a
// radius plus the offset away.
func TestDGrainWebThickness(t *testing.T) {
	const (
		od     = 0.1
		offset = 0.02
	)
	// A long segment so the radial web governs.
	seg, err := NewDGrainSegment(od, 1, offset, 0, testMapDim)
	if err != nil {
		t.Fatalf("D grain: %s", err)
	}
	exp := od/2 + offset
	if !floats.EqualWithinAbs(seg.WebThickness(), exp, exp*0.02) {
		t.Fatalf("web thickness: %f, expected %f", seg.WebThickness(), exp)
	}
	// A short segment is exhausted axially first.
	short, _ := NewDGrainSegment(od, 0.05, offset, 0, testMapDim)
	if !floats.EqualWithinAbs(short.WebThickness(), 0.025, geomε) {
		t.Fatalf("short web thickness: %f", short.WebThickness())
	}
}

func TestDGrainRegressionMonotonic(t *testing.T) {
	seg, err := NewDGrainSegment(0.1, 0.3, 0.02, 0, testMapDim)
	if err != nil {
		t.Fatalf("D grain: %s", err)
	}
	web := seg.WebThickness()
	var prevFace, prevVol float64
	for i, x := range linspace(0, web*0.95, 20) {
		face := seg.FaceArea(x)
		vol := seg.Volume(x)
		// Tolerate grid-count noise at the smoothing scale.
		if i > 0 {
			if face > prevFace+1e-6 {
				t.Fatalf("face area grew at x=%f: %g > %g", x, face, prevFace)
			}
			if vol > prevVol+1e-6 {
				t.Fatalf("volume grew at x=%f: %g > %g", x, vol, prevVol)
			}
		}
		prevFace, prevVol = face, vol
	}
	// Past the web everything is spent.
	if seg.BurnArea(web+1e-6) != 0 || seg.Volume(web+1e-6) != 0 {
		t.Fatal("spent raster segment must report zero")
	}
	if _, err = seg.CenterOfGravity(web + 1e-6); err == nil {
		t.Fatal("center of gravity of a spent raster segment must fail")
	}
}

// Two identical segments must produce bit-identical lookups: the march and
// the smoothing are deterministic.
func TestRasterDeterminism(t *testing.T) {
	a, _ := NewDGrainSegment(0.1, 0.2, 0.02, 0, testMapDim)
	b, _ := NewDGrainSegment(0.1, 0.2, 0.02, 0, testMapDim)
	for _, x := range linspace(0, a.WebThickness(), 10) {
		if a.BurnArea(x) != b.BurnArea(x) {
			t.Fatalf("burn area diverges at x=%f", x)
		}
		if a.FaceArea(x) != b.FaceArea(x) {
			t.Fatalf("face area diverges at x=%f", x)
		}
	}
}

func TestDGrainCenterOfGravity(t *testing.T) {
	seg, _ := NewDGrainSegment(0.1, 0.2, 0.02, 0, testMapDim)
	cog, err := seg.CenterOfGravity(0)
	if err != nil {
		t.Fatalf("center of gravity: %s", err)
	}
	// The slot removes material from the +x side: the centroid shifts to -x
	// and stays on the y axis by symmetry.
	if cog[0] >= 0 {
		t.Fatalf("centroid should sit opposite the slot: x=%g", cog[0])
	}
	if !floats.EqualWithinAbs(cog[1], 0, 1e-4) {
		t.Fatalf("centroid off the symmetry axis: y=%g", cog[1])
	}
	if !floats.EqualWithinAbs(cog[2], 0.1, geomε) {
		t.Fatalf("axial centroid: %f", cog[2])
	}
}

func TestMultiPortValidation(t *testing.T) {
	if _, err := NewMultiPortSegment(0.1, 0.2, 0.02, 0, 0, 1, testMapDim); err == nil {
		t.Fatal("zero radial count must be rejected")
	}
	if _, err := NewMultiPortSegment(0.1, 0.2, 0.02, 0, 3, 0, testMapDim); err == nil {
		t.Fatal("zero level count must be rejected")
	}
	// 3 levels put the outer ring at 3/4 of the radius; a 30 mm port
	// overflows the casing.
	if _, err := NewMultiPortSegment(0.1, 0.2, 0.03, 0, 3, 3, testMapDim); err == nil {
		t.Fatal("a port pattern escaping the outer diameter must be rejected")
	}
	if _, err := NewMultiPortSegment(0.1, 0.2, 0.02, 0, 3, 1, testMapDim); err != nil {
		t.Fatalf("valid multi-port rejected: %s", err)
	}
}

func TestMultiPortInitialGeometry(t *testing.T) {
	// Central port plus one ring of three: all ports disjoint, so the
	// initial port area is four circles.
	seg, err := NewMultiPortSegment(0.1, 0.2, 0.02, 0, 3, 1, testMapDim)
	if err != nil {
		t.Fatalf("multi-port: %s", err)
	}
	expPort := 4 * CircleArea(0.02)
	if !floats.EqualWithinAbs(seg.PortArea(0), expPort, expPort*0.05) {
		t.Fatalf("initial port area: %g, expected %g", seg.PortArea(0), expPort)
	}
	expPerim := 4 * math.Pi * 0.02
	if !floats.EqualWithinAbs(seg.CorePerimeter(0), expPerim, expPerim*0.05) {
		t.Fatalf("initial core perimeter: %f, expected %f", seg.CorePerimeter(0), expPerim)
	}
	if seg.WebThickness() <= 0 || seg.WebThickness() > 0.05 {
		t.Fatalf("web thickness out of range: %f", seg.WebThickness())
	}
}
