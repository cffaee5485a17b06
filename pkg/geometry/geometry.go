package geometry

import "fmt"

// Geometry is the aggregate a parser builds during a single pass over one
// layout file. It is mutated only by its owning parser and returned
// immutably to the caller.
type Geometry struct {
	Conductors []Conductor
	Ports      []Port
	Substrate  Substrate
	Bounds     Bounds

	// Units names the canonical unit system; always "mm" after parsing.
	Units string

	// SourceFormat records which parser produced the geometry.
	SourceFormat string

	// Warnings collects the non-fatal degradations applied during the
	// parse: dropped records, defaulted dimensions, backfilled substrate.
	Warnings []string

	hasSubstrate bool
}

// New returns an empty geometry with sentinel bounds.
func New(sourceFormat string) *Geometry {
	return &Geometry{
		Bounds:       NewBounds(),
		Units:        "mm",
		SourceFormat: sourceFormat,
	}
}

// Add appends a conductor, assigns its sequential 1-based identifier and
// widens the bounds by the conductor's margin-expanded footprint.
func (g *Geometry) Add(c Conductor) {
	c.setID(len(g.Conductors) + 1)
	g.Conductors = append(g.Conductors, c)
	g.Bounds.ExpandBounds(c.Footprint())
}

// AddPort appends a port, defaulting a non-positive reference impedance
// to 50 ohms.
func (g *Geometry) AddPort(p Port) {
	if p.Impedance <= 0 {
		p.Impedance = DefaultImpedance
	}
	if p.Number == 0 {
		p.Number = len(g.Ports) + 1
	}
	g.Ports = append(g.Ports, p)
}

// SetSubstrate overwrites the running substrate record. The last
// declaration in a file wins.
func (g *Geometry) SetSubstrate(s Substrate) {
	g.Substrate = s
	g.hasSubstrate = true
}

// HasSubstrate reports whether any substrate record was parsed.
func (g *Geometry) HasSubstrate() bool { return g.hasSubstrate }

// Warnf records a non-fatal degradation.
func (g *Geometry) Warnf(format string, args ...interface{}) {
	g.Warnings = append(g.Warnings, fmt.Sprintf(format, args...))
}

// Finalize backfills missing or out-of-range fields after a full parse.
// It never fails: a missing substrate or empty bounds is repaired with
// fixed defaults and reported as a warning.
func (g *Geometry) Finalize() {
	if g.Bounds.IsEmpty() {
		g.Bounds = DefaultBounds()
		g.Warnf("no conductor yielded finite bounds, using default %gx%g mm box",
			DefaultBoundsSize, DefaultBoundsSize)
	}

	if !g.hasSubstrate {
		g.Substrate = DefaultSubstrate()
		g.Warnf("no substrate record found, using defaults (er=%g h=%g mm t=%g mm tand=%g)",
			DefaultEr, DefaultHeight, DefaultThickness, DefaultTanD)
		return
	}

	s := &g.Substrate
	if s.Er < 1 || s.Er > 100 {
		g.Warnf("substrate permittivity %g outside [1,100], using default %g", s.Er, DefaultEr)
		s.Er = DefaultEr
	}
	if s.Height <= 0 {
		g.Warnf("substrate height %g mm is not positive, using default %g mm", s.Height, DefaultHeight)
		s.Height = DefaultHeight
	}
	if s.Thickness <= 0 {
		g.Warnf("conductor thickness %g mm is not positive, using default %g mm", s.Thickness, DefaultThickness)
		s.Thickness = DefaultThickness
	}
	if s.TanD < 0 || s.TanD > 1 {
		g.Warnf("loss tangent %g outside [0,1], using default %g", s.TanD, DefaultTanD)
		s.TanD = DefaultTanD
	}
}
