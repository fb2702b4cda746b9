package rocketsolver

import (
	"fmt"
	"math"
)

// ConicalSegment is a grain segment whose core is a conical frustum, tapering
// from the lower (forward) to the upper (aft) core diameter. The closed forms
// treat regression like the tube-burning ones: core diameters grow by 2x,
// the length shrinks by one web distance per uninhibited end.
type ConicalSegment struct {
	segmentGeometry
	lowerCoreDiameter float64
	upperCoreDiameter float64
}

// NewConicalSegment validates and builds a conical segment.
func NewConicalSegment(outerDiameter, lowerCoreDiameter, upperCoreDiameter, length, spacing float64) (*ConicalSegment, error) {
	s := &ConicalSegment{
		segmentGeometry: segmentGeometry{
			outerDiameter: outerDiameter,
			length:        length,
			spacing:       spacing,
		},
		lowerCoreDiameter: lowerCoreDiameter,
		upperCoreDiameter: upperCoreDiameter,
	}
	if err := s.segmentGeometry.validate("conical"); err != nil {
		return nil, err
	}
	for name, d := range map[string]float64{"lower": lowerCoreDiameter, "upper": upperCoreDiameter} {
		if d <= 0 {
			return nil, GeometryError{"conical", fmt.Sprintf("%s core diameter must be positive, got %g", name, d)}
		}
		if d >= outerDiameter {
			return nil, GeometryError{"conical", fmt.Sprintf("%s core diameter %g must be smaller than outer diameter %g",
				name, d, outerDiameter)}
		}
	}
	return s, nil
}

// WebThickness is limited by the thinner radial wall or by the half-length.
func (s *ConicalSegment) WebThickness() float64 {
	wall := 0.5 * (s.outerDiameter - math.Max(s.lowerCoreDiameter, s.upperCoreDiameter))
	return math.Min(wall, 0.5*s.length)
}

// BurnArea returns the frustum core surface plus both annular end faces.
func (s *ConicalSegment) BurnArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	dl := s.lowerCoreDiameter + 2*x
	du := s.upperCoreDiameter + 2*x
	h := s.length - 2*x
	faces := (math.Pi/4)*(s.outerDiameter*s.outerDiameter-dl*dl) +
		(math.Pi/4)*(s.outerDiameter*s.outerDiameter-du*du)
	return frustumLateralArea(dl, du, h) + faces
}

// PortArea returns the flow area of the most restrictive core section.
func (s *ConicalSegment) PortArea(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	return CircleArea(math.Min(s.lowerCoreDiameter, s.upperCoreDiameter) + 2*x)
}

// Volume returns the cylinder volume minus the frustum core volume.
func (s *ConicalSegment) Volume(x float64) float64 {
	if x > s.WebThickness() {
		return 0
	}
	dl := s.lowerCoreDiameter + 2*x
	du := s.upperCoreDiameter + 2*x
	h := s.length - 2*x
	v := CylinderVolume(s.outerDiameter, h) - frustumVolume(dl, du, h)
	return math.Max(v, 0)
}

// OptimalLength mirrors the tube-burning heuristic using the mean core
// diameter.
func (s *ConicalSegment) OptimalLength() float64 {
	return 0.5 * (3*s.outerDiameter + (s.lowerCoreDiameter+s.upperCoreDiameter)/2)
}

// CenterOfGravity returns the center of gravity at web distance x, z
// measured from the original forward face. The radial offset is zero by
// symmetry; the axial position comes from subtracting the frustum core
// moment from the cylinder moment.
func (s *ConicalSegment) CenterOfGravity(x float64) ([3]float64, error) {
	if x > s.WebThickness() {
		return [3]float64{}, GeometryError{"conical", "web distance exceeds the segment web thickness"}
	}
	dl := s.lowerCoreDiameter + 2*x
	du := s.upperCoreDiameter + 2*x
	h := s.length - 2*x
	vCyl := CylinderVolume(s.outerDiameter, h)
	vCore := frustumVolume(dl, du, h)
	if vCyl-vCore <= 0 {
		return [3]float64{}, GeometryError{"conical", "no active material at the given web distance"}
	}
	zCore := frustumCentroid(dl, du, h)
	zLocal := (vCyl*h/2 - vCore*zCore) / (vCyl - vCore)
	return [3]float64{0, 0, x + zLocal}, nil
}
