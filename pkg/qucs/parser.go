// Package qucs parses Qucs-style schematic files into the canonical
// geometry model. The file is an ordered sequence of component records,
// one per line; only the microstrip constructs needed for conductor, port
// and substrate extraction are recognized, everything else is skipped.
package qucs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenEMTools/emgeo/pkg/geometry"
	"github.com/OpenEMTools/emgeo/pkg/units"
)

// Positional field layout of a component record:
// <Type Name active X Y dx dy mirror rotation "param" ...>
const (
	posType     = 0
	posName     = 1
	posX        = 3
	posY        = 4
	posRotation = 8

	minPositional = 9
)

// Parser parses schematic files.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a schematic parser. A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// ParseFile reads and parses a schematic file.
func (p *Parser) ParseFile(path string) (*geometry.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a schematic from r in one sequential pass. Malformed
// records are dropped with a warning; only read failures are fatal.
func (p *Parser) Parse(r io.Reader) (*geometry.Geometry, error) {
	g := geometry.New("qucs-schematic")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "</") {
			continue
		}
		p.parseRecord(g, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schematic: %w", err)
	}

	g.Finalize()
	return g, nil
}

// parseRecord dispatches one component record. Failures are local to the
// record: it is dropped and the parse continues.
func (p *Parser) parseRecord(g *geometry.Geometry, line string) {
	fields, err := lexRecord(line)
	if err != nil || len(fields) == 0 {
		return
	}

	positional, quoted := splitFields(fields)
	if len(positional) == 0 {
		return
	}

	switch positional[posType] {
	case "MLIN", "MSTUB":
		p.parseLine(g, positional, quoted)
	case "MCOUPLED":
		p.parseCoupled(g, positional, quoted)
	case "Pac":
		p.parsePort(g, positional, quoted)
	case "SUBST":
		p.parseSubstrate(g, positional, quoted)
	default:
		// Unrecognized component, skip.
		p.log.Debug("skipping unrecognized record", zap.String("type", positional[posType]))
	}
}

// anchor extracts the common positional fields: name, anchor position and
// rotation angle in degrees.
func (p *Parser) anchor(g *geometry.Geometry, positional []string) (name string, pos geometry.Position, theta float64, ok bool) {
	if len(positional) < minPositional {
		g.Warnf("dropped %s record with %d positional fields (need %d)",
			positional[posType], len(positional), minPositional)
		return "", geometry.Position{}, 0, false
	}

	x, errX := strconv.ParseFloat(positional[posX], 64)
	y, errY := strconv.ParseFloat(positional[posY], 64)
	if errX != nil || errY != nil {
		g.Warnf("dropped %s record with unparseable position (%q, %q)",
			positional[posType], positional[posX], positional[posY])
		return "", geometry.Position{}, 0, false
	}

	theta, err := strconv.ParseFloat(positional[posRotation], 64)
	if err != nil {
		g.Warnf("%s %s: unparseable rotation %q, assuming 0",
			positional[posType], positional[posName], positional[posRotation])
		theta = 0
	}

	return positional[posName], geometry.Position{X: x, Y: y}, theta, true
}

// lengthParam converts a quoted dimension parameter, downgrading parse
// failures to a warning and 0 per the graceful-degradation contract.
func (p *Parser) lengthParam(g *geometry.Geometry, owner, param, token string) float64 {
	v, err := units.Length(token)
	if err != nil {
		g.Warnf("%s: %s %v, defaulting to 0", owner, param, err)
		return 0
	}
	return v
}

// parseLine handles straight segments and stubs. Quoted parameters, in
// order: substrate reference, width, length.
// End position = anchor + length*(cos t, sin t).
func (p *Parser) parseLine(g *geometry.Geometry, positional, quoted []string) {
	name, start, theta, ok := p.anchor(g, positional)
	if !ok {
		return
	}
	if len(quoted) < 3 {
		g.Warnf("dropped %s %s with %d parameter fields (need 3)", positional[posType], name, len(quoted))
		return
	}

	width := p.lengthParam(g, name, "width", quoted[1])
	length := p.lengthParam(g, name, "length", quoted[2])

	rad := theta * math.Pi / 180
	g.Add(&geometry.Trace{
		Name:  name,
		Start: start,
		End: geometry.Position{
			X: start.X + length*math.Cos(rad),
			Y: start.Y + length*math.Sin(rad),
		},
		Width: width,
		Layer: quoted[0],
	})
}

// parseCoupled handles coupled-line pairs. Quoted parameters, in order:
// substrate reference, width, length, coupling spacing. The record yields
// two sibling conductors whose centerlines are offset by half the spacing
// on either side of the nominal line, so they run exactly spacing apart
// and parallel to the rotation angle.
func (p *Parser) parseCoupled(g *geometry.Geometry, positional, quoted []string) {
	name, start, theta, ok := p.anchor(g, positional)
	if !ok {
		return
	}
	if len(quoted) < 4 {
		g.Warnf("dropped MCOUPLED %s with %d parameter fields (need 4)", name, len(quoted))
		return
	}

	width := p.lengthParam(g, name, "width", quoted[1])
	length := p.lengthParam(g, name, "length", quoted[2])
	spacing := p.lengthParam(g, name, "spacing", quoted[3])

	rad := theta * math.Pi / 180
	dir := geometry.Position{X: math.Cos(rad), Y: math.Sin(rad)}
	perp := geometry.Position{X: -math.Sin(rad), Y: math.Cos(rad)}

	for i, side := range []float64{+0.5, -0.5} {
		offset := geometry.Position{X: perp.X * side * spacing, Y: perp.Y * side * spacing}
		s := geometry.Position{X: start.X + offset.X, Y: start.Y + offset.Y}
		g.Add(&geometry.CoupledLine{
			Name:    fmt.Sprintf("%s_%d", name, i+1),
			Start:   s,
			End:     geometry.Position{X: s.X + length*dir.X, Y: s.Y + length*dir.Y},
			Width:   width,
			Spacing: spacing,
		})
	}
}

// parsePort handles lumped power sources. Quoted parameters, in order:
// port number, reference impedance.
func (p *Parser) parsePort(g *geometry.Geometry, positional, quoted []string) {
	name, pos, _, ok := p.anchor(g, positional)
	if !ok {
		return
	}

	number := 0
	if len(quoted) > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(quoted[0])); err == nil {
			number = n
		}
	}

	impedance := geometry.DefaultImpedance
	if len(quoted) > 1 {
		z, err := units.Impedance(quoted[1])
		if err != nil || z <= 0 {
			g.Warnf("port %s: bad impedance %q, defaulting to %g ohm", name, quoted[1], geometry.DefaultImpedance)
		} else {
			impedance = z
		}
	}

	g.AddPort(geometry.Port{
		Number:    number,
		Name:      name,
		Position:  pos,
		Impedance: impedance,
		Type:      geometry.PortLumped,
	})
}

// parseSubstrate handles substrate declarations. Quoted parameters, in
// order: permittivity, height, conductor thickness, loss tangent. The
// last declaration in the file wins; range validation happens in
// Geometry.Finalize.
func (p *Parser) parseSubstrate(g *geometry.Geometry, positional, quoted []string) {
	if len(positional) < 2 || len(quoted) < 4 {
		g.Warnf("dropped SUBST record with %d parameter fields (need 4)", len(quoted))
		return
	}
	name := positional[posName]

	sub := geometry.Substrate{}
	var err error
	if sub.Er, err = units.Plain(quoted[0]); err != nil {
		g.Warnf("substrate %s: %v, defaulting to 0", name, err)
	}
	sub.Height = p.lengthParam(g, name, "height", quoted[1])
	sub.Thickness = p.lengthParam(g, name, "thickness", quoted[2])
	if sub.TanD, err = units.Plain(quoted[3]); err != nil {
		g.Warnf("substrate %s: %v, defaulting to 0", name, err)
	}

	g.SetSubstrate(sub)
}
