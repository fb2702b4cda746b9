package rocketsolver

import (
	"fmt"
	"math"
)

// BatesSegment is a tube-burning (BATES) grain segment: a hollow cylinder
// regressing radially from its core and axially from both end faces.
type BatesSegment struct {
	segmentGeometry
	coreDiameter float64
}

// NewBatesSegment validates and builds a BATES segment.
func NewBatesSegment(outerDiameter, coreDiameter, length, spacing float64) (*BatesSegment, error) {
	s := &BatesSegment{
		segmentGeometry: segmentGeometry{
			outerDiameter: outerDiameter,
			length:        length,
			spacing:       spacing,
		},
		coreDiameter: coreDiameter,
	}
	if err := s.segmentGeometry.validate("BATES"); err != nil {
		return nil, err
	}
	if coreDiameter <= 0 {
		return nil, GeometryError{"BATES", fmt.Sprintf("core diameter must be positive, got %g", coreDiameter)}
	}
	if coreDiameter >= outerDiameter {
		return nil, GeometryError{"BATES", fmt.Sprintf("core diameter %g must be smaller than outer diameter %g",
			coreDiameter, outerDiameter)}
	}
	return s, nil
}

// CoreDiameter returns the initial core diameter.
func (s *BatesSegment) CoreDiameter() float64 { return s.coreDiameter }

// WebThickness is the smaller of the radial half-gap and the half-length:
// whichever dimension is exhausted first ends the burn.
func (s *BatesSegment) WebThickness() float64 {
	return math.Min(0.5*(s.outerDiameter-s.coreDiameter), 0.5*s.length)
}

// BurnArea returns the exposed surface (core plus both end faces) at web
// distance x, zero once the segment is spent.
func (s *BatesSegment) BurnArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	d := s.coreDiameter + 2*x
	return math.Pi * (((s.outerDiameter*s.outerDiameter)-(d*d))/2 + (s.length-2*x)*d)
}

// PortArea returns the core flow area at web distance x, zero once spent.
func (s *BatesSegment) PortArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	return CircleArea(s.coreDiameter + 2*x)
}

// Volume returns the remaining propellant volume at web distance x.
func (s *BatesSegment) Volume(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	d := s.coreDiameter + 2*x
	return (math.Pi / 4) * ((s.outerDiameter*s.outerDiameter)-(d*d)) * (s.length - 2*x)
}

// OptimalLength returns the segment length giving a neutral burn-area
// profile for these diameters.
func (s *BatesSegment) OptimalLength() float64 {
	return 0.5 * (3*s.outerDiameter + s.coreDiameter)
}

// CenterOfGravity returns the center of gravity at web distance x. z is
// measured from the forward face; both faces regress equally so the axial
// position stays at mid-length.
func (s *BatesSegment) CenterOfGravity(x float64) ([3]float64, error) {
	if x > s.WebThickness() {
		return [3]float64{}, GeometryError{"BATES", "web distance exceeds the segment web thickness"}
	}
	if s.Volume(x) <= 0 {
		return [3]float64{}, GeometryError{"BATES", "no active material at the given web distance"}
	}
	return [3]float64{0, 0, s.length / 2}, nil
}
