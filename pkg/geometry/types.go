// Package geometry defines the canonical geometric model produced by the
// layout parsers: conductors, ports, substrate and bounds, all in
// millimeters regardless of the source file's unit system.
package geometry

import "math"

// Kind identifies the conductor variant.
type Kind string

const (
	KindTrace       Kind = "trace"
	KindVia         Kind = "via"
	KindPolygon     Kind = "polygon"
	KindCoupledLine Kind = "coupled"
)

// PortType distinguishes excitation sources from board connectors.
type PortType string

const (
	PortLumped    PortType = "lumped"
	PortConnector PortType = "connector"
)

// Position is a 2D coordinate in millimeters.
type Position struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance to another position.
func (p Position) Distance(other Position) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Conductor is a piece of metal geometry. Each variant carries its own
// payload; bounds accumulation and solver setup dispatch on the concrete
// type rather than probing optional fields.
type Conductor interface {
	// ID is the 1-based sequential identifier assigned in parse order.
	ID() int

	// Kind returns the variant tag.
	Kind() Kind

	// Footprint returns the conductor's bounding rectangle expanded by
	// half its width or diameter margin.
	Footprint() Bounds

	// Length returns the derived conductor length in mm (0 for vias).
	Length() float64

	setID(id int)
}

// Trace is a straight conductor segment between two endpoints.
type Trace struct {
	id    int
	Name  string
	Start Position
	End   Position
	Width float64 // mm
	Layer string  // source layer name, may be empty
}

func (t *Trace) ID() int { return t.id }
func (t *Trace) Kind() Kind { return KindTrace }
func (t *Trace) setID(id int) { t.id = id }
func (t *Trace) Length() float64 { return t.Start.Distance(t.End) }

func (t *Trace) Footprint() Bounds {
	b := NewBounds()
	b.ExpandMargin(t.Start, t.Width/2)
	b.ExpandMargin(t.End, t.Width/2)
	return b
}

// CoupledLine is one side of a coupled-line pair: a trace offset by half
// the coupling spacing from the pair's nominal centerline. Both siblings
// carry the shared spacing value.
type CoupledLine struct {
	id      int
	Name    string // derived name, suffixed "_1" or "_2"
	Start   Position
	End     Position
	Width   float64 // mm
	Spacing float64 // edge-to-edge coupling spacing shared by the pair, mm
}

func (c *CoupledLine) ID() int { return c.id }
func (c *CoupledLine) Kind() Kind { return KindCoupledLine }
func (c *CoupledLine) setID(id int) { c.id = id }
func (c *CoupledLine) Length() float64 { return c.Start.Distance(c.End) }

func (c *CoupledLine) Footprint() Bounds {
	b := NewBounds()
	b.ExpandMargin(c.Start, c.Width/2)
	b.ExpandMargin(c.End, c.Width/2)
	return b
}

// Via is a cylindrical conductor at a single position.
type Via struct {
	id       int
	Name     string
	Center   Position
	Diameter float64 // mm
}

func (v *Via) ID() int { return v.id }
func (v *Via) Kind() Kind { return KindVia }
func (v *Via) setID(id int) { v.id = id }
func (v *Via) Length() float64 { return 0 }

func (v *Via) Footprint() Bounds {
	b := NewBounds()
	b.ExpandMargin(v.Center, v.Diameter/2)
	return b
}

// Polygon is a planar metal region given by an ordered vertex sequence.
type Polygon struct {
	id       int
	Name     string
	Vertices []Position
}

func (p *Polygon) ID() int { return p.id }
func (p *Polygon) Kind() Kind { return KindPolygon }
func (p *Polygon) setID(id int) { p.id = id }

// Length returns the polygon's perimeter.
func (p *Polygon) Length() float64 {
	if len(p.Vertices) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(p.Vertices); i++ {
		sum += p.Vertices[i-1].Distance(p.Vertices[i])
	}
	sum += p.Vertices[len(p.Vertices)-1].Distance(p.Vertices[0])
	return sum
}

func (p *Polygon) Footprint() Bounds {
	b := NewBounds()
	for _, v := range p.Vertices {
		b.Expand(v)
	}
	return b
}

// Port is an excitation or measurement reference point.
type Port struct {
	Number    int
	Name      string
	Position  Position
	Impedance float64 // ohms, defaults to 50 when absent or unparseable
	Type      PortType
}

// Substrate describes the dielectric stack.
type Substrate struct {
	Er        float64 // relative permittivity
	Height    float64 // dielectric height, mm
	Thickness float64 // conductor thickness, mm
	TanD      float64 // loss tangent
}

// Fixed fallback values applied when a substrate record is missing or a
// field is outside its physically valid range.
const (
	DefaultEr        = 4.3
	DefaultHeight    = 1.6   // mm
	DefaultThickness = 0.035 // mm
	DefaultTanD      = 0.02

	DefaultImpedance = 50.0 // ohms
)

// DefaultSubstrate returns the fallback stack description.
func DefaultSubstrate() Substrate {
	return Substrate{
		Er:        DefaultEr,
		Height:    DefaultHeight,
		Thickness: DefaultThickness,
		TanD:      DefaultTanD,
	}
}
