package rocketsolver

import (
	"fmt"
	"math"
)

// DGrainSegment is a raster-regressed segment whose initial core is the
// circular slice beyond an offset chord (a "D" shaped port).
type DGrainSegment struct {
	*fmmSegment
	slotOffset float64
}

type dGrainShape struct {
	// offset of the slot chord from the center, normalized to outer radius
	offset float64
}

func (dGrainShape) shapeName() string { return "D grain" }

func (sh dGrainShape) inCore(x, _ float64) bool {
	return x > sh.offset
}

// NewDGrainSegment validates and builds a D-shaped segment. mapDim selects
// the raster resolution; zero means DefaultMapDim.
func NewDGrainSegment(outerDiameter, length, slotOffset, spacing float64, mapDim int) (*DGrainSegment, error) {
	geom := segmentGeometry{
		outerDiameter: outerDiameter,
		length:        length,
		spacing:       spacing,
	}
	if err := geom.validate("D grain"); err != nil {
		return nil, err
	}
	if slotOffset <= 0 {
		return nil, GeometryError{"D grain", fmt.Sprintf("slot offset must be positive, got %g", slotOffset)}
	}
	if slotOffset >= outerDiameter/2 {
		return nil, GeometryError{"D grain", fmt.Sprintf("slot offset %g must be smaller than the outer radius %g",
			slotOffset, outerDiameter/2)}
	}
	shape := dGrainShape{offset: slotOffset / (outerDiameter / 2)}
	return &DGrainSegment{fmmSegment: newFMMSegment(geom, shape, mapDim), slotOffset: slotOffset}, nil
}

// SlotOffset returns the chord offset from the center.
func (s *DGrainSegment) SlotOffset() float64 { return s.slotOffset }

// MultiPortSegment is a raster-regressed segment with a central port plus
// concentric rings ("levels") of circular ports.
type MultiPortSegment struct {
	*fmmSegment
	portDiameter    float64
	portRadialCount int
	portLevelCount  int
}

type multiPortShape struct {
	portRadius float64 // normalized to outer radius
	centers    [][2]float64
}

func (multiPortShape) shapeName() string { return "multi-port" }

func (sh multiPortShape) inCore(x, y float64) bool {
	for _, c := range sh.centers {
		if math.Hypot(x-c[0], y-c[1]) <= sh.portRadius {
			return true
		}
	}
	return false
}

// NewMultiPortSegment validates and builds a multi-port segment. Each level i
// sits at radius i/(levels+1) of the outer radius and carries radialCount
// ports, staggered by half a pitch between levels, around a central port.
func NewMultiPortSegment(outerDiameter, length, portDiameter, spacing float64, portRadialCount, portLevelCount, mapDim int) (*MultiPortSegment, error) {
	geom := segmentGeometry{
		outerDiameter: outerDiameter,
		length:        length,
		spacing:       spacing,
	}
	if err := geom.validate("multi-port"); err != nil {
		return nil, err
	}
	if portDiameter <= 0 {
		return nil, GeometryError{"multi-port", fmt.Sprintf("port diameter must be positive, got %g", portDiameter)}
	}
	if portRadialCount < 1 || portLevelCount < 1 {
		return nil, GeometryError{"multi-port", fmt.Sprintf("port counts must be at least 1, got %d radial and %d levels",
			portRadialCount, portLevelCount)}
	}
	portRadius := portDiameter / outerDiameter // port radius over outer radius
	outermost := float64(portLevelCount) / float64(portLevelCount+1)
	if outermost+portRadius >= 1 {
		return nil, GeometryError{"multi-port", fmt.Sprintf("port pattern escapes the outer diameter: outer level at %.3f of the radius with port radius %.3f",
			outermost, portRadius)}
	}

	sh := multiPortShape{portRadius: portRadius}
	sh.centers = append(sh.centers, [2]float64{0, 0})
	for level := 1; level <= portLevelCount; level++ {
		r := float64(level) / float64(portLevelCount+1)
		pitch := 2 * math.Pi / float64(portRadialCount)
		phase := 0.0
		if level%2 == 0 {
			phase = pitch / 2
		}
		for k := 0; k < portRadialCount; k++ {
			θ := phase + float64(k)*pitch
			sh.centers = append(sh.centers, [2]float64{r * math.Cos(θ), r * math.Sin(θ)})
		}
	}
	return &MultiPortSegment{
		fmmSegment:      newFMMSegment(geom, sh, mapDim),
		portDiameter:    portDiameter,
		portRadialCount: portRadialCount,
		portLevelCount:  portLevelCount,
	}, nil
}

// PortDiameter returns the diameter of each port.
func (s *MultiPortSegment) PortDiameter() float64 { return s.portDiameter }
