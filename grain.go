package rocketsolver

import (
	"fmt"
	"math"
)

// GeometryError reports a grain shape whose defining dimensions violate
// physical validity, or a derived quantity requested where no solid material
// remains.
type GeometryError struct {
	Shape  string
	Reason string
}

func (e GeometryError) Error() string {
	return fmt.Sprintf("%s geometry: %s", e.Shape, e.Reason)
}

// GrainSegment is one physical piece of propellant grain. All regression
// state is a pure function of the web distance x: implementations are
// immutable after construction (derived lookup tables are memoized, not
// mutated state). Queries past WebThickness clamp to the spent value (zero
// areas and volume); CenterOfGravity instead fails with a GeometryError.
type GrainSegment interface {
	// BurnArea returns the burning surface area at web distance x.
	BurnArea(x float64) float64
	// PortArea returns the open flow cross-section at web distance x.
	PortArea(x float64) float64
	// Volume returns the remaining propellant volume at web distance x.
	Volume(x float64) float64
	// WebThickness returns the web distance at which the segment is spent.
	WebThickness() float64
	// CenterOfGravity returns the (x, y, z) center of gravity of the
	// remaining propellant, z measured from the forward face.
	CenterOfGravity(x float64) ([3]float64, error)

	OuterDiameter() float64
	Length() float64
	Spacing() float64
	InhibitedEnds() int
}

// segmentGeometry carries the attributes shared by every grain segment.
type segmentGeometry struct {
	outerDiameter float64
	length        float64
	spacing       float64
	inhibitedEnds int
}

func (g segmentGeometry) OuterDiameter() float64 { return g.outerDiameter }
func (g segmentGeometry) Length() float64        { return g.length }
func (g segmentGeometry) Spacing() float64       { return g.spacing }

// InhibitedEnds reports how many end faces are inhibited (0, 1 or 2).
func (g segmentGeometry) InhibitedEnds() int { return g.inhibitedEnds }

// burningEnds is the number of end faces regressing axially.
func (g segmentGeometry) burningEnds() int { return 2 - g.inhibitedEnds }

func (g segmentGeometry) validate(shape string) error {
	if g.outerDiameter <= 0 {
		return GeometryError{shape, fmt.Sprintf("outer diameter must be positive, got %g", g.outerDiameter)}
	}
	if g.length <= 0 {
		return GeometryError{shape, fmt.Sprintf("length must be positive, got %g", g.length)}
	}
	if g.spacing < 0 {
		return GeometryError{shape, fmt.Sprintf("spacing must be non-negative, got %g", g.spacing)}
	}
	if g.inhibitedEnds < 0 || g.inhibitedEnds > 2 {
		return GeometryError{shape, fmt.Sprintf("inhibited ends must be 0, 1 or 2, got %d", g.inhibitedEnds)}
	}
	return nil
}

// Grain is an ordered collection of segments sharing one outer diameter;
// insertion order is axial order, fore to aft.
type Grain struct {
	segments []GrainSegment
}

// NewGrain returns an empty grain.
func NewGrain() *Grain {
	return &Grain{}
}

// AddSegment appends a segment to the aft end of the grain. All segments
// must share the same outer diameter.
func (g *Grain) AddSegment(seg GrainSegment) error {
	if len(g.segments) > 0 && seg.OuterDiameter() != g.segments[0].OuterDiameter() {
		return GeometryError{"grain", fmt.Sprintf("segment outer diameter %g does not match grain outer diameter %g",
			seg.OuterDiameter(), g.segments[0].OuterDiameter())}
	}
	g.segments = append(g.segments, seg)
	return nil
}

// Segments returns the segments in axial order.
func (g *Grain) Segments() []GrainSegment { return g.segments }

// SegmentCount returns the number of segments.
func (g *Grain) SegmentCount() int { return len(g.segments) }

// OuterDiameter returns the shared outer diameter, zero for an empty grain.
func (g *Grain) OuterDiameter() float64 {
	if len(g.segments) == 0 {
		return 0
	}
	return g.segments[0].OuterDiameter()
}

// TotalLength returns the axial extent of the grain: sum of every segment's
// length plus its spacing. The trailing spacing counts too, it stands off
// the grain from the nozzle end.
func (g *Grain) TotalLength() float64 {
	var total float64
	for _, seg := range g.segments {
		total += seg.Length() + seg.Spacing()
	}
	return total
}

// WebThickness returns the largest web thickness among the segments, i.e.
// the web distance at which the whole grain is spent.
func (g *Grain) WebThickness() float64 {
	var web float64
	for _, seg := range g.segments {
		web = math.Max(web, seg.WebThickness())
	}
	return web
}

// BurnArea returns the total burning surface area at web distance x. Spent
// segments contribute zero.
func (g *Grain) BurnArea(x float64) float64 {
	var area float64
	for _, seg := range g.segments {
		area += seg.BurnArea(x)
	}
	return area
}

// Volume returns the total remaining propellant volume at web distance x.
func (g *Grain) Volume(x float64) float64 {
	var vol float64
	for _, seg := range g.segments {
		vol += seg.Volume(x)
	}
	return vol
}

// PortArea returns the most restrictive (smallest) port area among the
// segments still holding propellant at web distance x.
func (g *Grain) PortArea(x float64) float64 {
	port := math.Inf(1)
	for _, seg := range g.segments {
		if x > seg.WebThickness() {
			continue
		}
		port = math.Min(port, seg.PortArea(x))
	}
	if math.IsInf(port, 1) {
		return 0
	}
	return port
}

// MassFlux returns the mass flux through each segment's port at web
// distance x: the mass flow generated by it and every segment upstream of
// it, divided by its port area. Spent segments report zero.
func (g *Grain) MassFlux(burnRate, density, x float64) []float64 {
	flux := make([]float64, len(g.segments))
	var upstream float64
	for j, seg := range g.segments {
		upstream += seg.BurnArea(x)
		if x > seg.WebThickness() {
			continue
		}
		if port := seg.PortArea(x); port > 0 {
			flux[j] = upstream * density * burnRate / port
		}
	}
	return flux
}

// BurnProfile classifies a burn-area history as regressive, progressive or
// neutral from the ratio of the first to the last sample.
func BurnProfile(burnArea []float64) string {
	if len(burnArea) < 2 || burnArea[len(burnArea)-1] == 0 {
		return "Undefined"
	}
	switch ratio := burnArea[0] / burnArea[len(burnArea)-1]; {
	case ratio > 1.02:
		return "Regressive"
	case ratio < 0.98:
		return "Progressive"
	default:
		return "Neutral"
	}
}
