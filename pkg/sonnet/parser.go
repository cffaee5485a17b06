// Package sonnet parses method-of-moments solver project files. The file
// has implicit sections: a geometry block delimited by GEO/END GEO, metal
// sub-blocks opened by TMET and closed by BMET or the block end, and
// dielectric/port declarations that may appear outside the geometry block.
package sonnet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenEMTools/emgeo/pkg/geometry"
	"github.com/OpenEMTools/emgeo/pkg/units"
)

// Simulation boxes in legacy projects are specified in mils. The box
// record carries no unit tag, so a magnitude heuristic decides: any span
// above this many raw units is treated as mil-like and converted. Changing
// the threshold changes the file contract.
const milSpanThreshold = 1000.0

// Parser parses solver project files.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a project parser. A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// ParseFile reads and parses a project file.
func (p *Parser) ParseFile(path string) (*geometry.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a project from r in one sequential pass, tracking two
// pieces of nesting state: inside the geometry section and inside a metal
// block. Bad records are dropped, never fatal.
func (p *Parser) Parse(r io.Reader) (*geometry.Geometry, error) {
	g := geometry.New("sonnet-project")

	inGeo := false
	inMetal := false
	polyCount := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "GEO":
			inGeo = true

		case "END":
			if len(fields) > 1 && fields[1] == "GEO" {
				inGeo = false
				inMetal = false
			}

		case "TMET":
			if inGeo {
				inMetal = true
			}

		case "BMET":
			inMetal = false

		case "POLY":
			if !inMetal {
				continue
			}
			polyCount++
			p.parsePolygon(g, fields, polyCount)

		case "BOX":
			p.parseBox(g, fields)

		case "DIEL":
			p.parseDielectric(g, fields)

		case "POR":
			// Ports may be declared outside the geometry block.
			p.parsePort(g, fields)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	g.Finalize()
	return g, nil
}

// parsePolygon handles POLY n x1 y1 ... xn yn: a vertex-count field
// followed by that many coordinate pairs on the same line. Records with
// fewer tokens than the declared count implies are dropped.
func (p *Parser) parsePolygon(g *geometry.Geometry, fields []string, index int) {
	if len(fields) < 2 {
		g.Warnf("dropped POLY record without vertex count")
		return
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 3 {
		g.Warnf("dropped POLY record with bad vertex count %q", fields[1])
		return
	}
	if len(fields) < 2+2*n {
		g.Warnf("dropped POLY record declaring %d vertices but carrying %d coordinates",
			n, len(fields)-2)
		return
	}

	vertices := make([]geometry.Position, 0, n)
	for i := 0; i < n; i++ {
		x, errX := strconv.ParseFloat(fields[2+2*i], 64)
		y, errY := strconv.ParseFloat(fields[3+2*i], 64)
		if errX != nil || errY != nil {
			g.Warnf("dropped POLY record with unparseable vertex %d", i+1)
			return
		}
		vertices = append(vertices, geometry.Position{X: x, Y: y})
	}

	g.Add(&geometry.Polygon{
		Name:     fmt.Sprintf("poly%d", index),
		Vertices: vertices,
	})
}

// parseBox handles BOX xmin ymin xmax ymax: the simulation box, given
// directly as a bounding rectangle. When the box span exceeds the mil
// threshold the coordinates are treated as mils and converted.
func (p *Parser) parseBox(g *geometry.Geometry, fields []string) {
	if len(fields) < 5 {
		g.Warnf("dropped BOX record with %d fields (need 5)", len(fields))
		return
	}

	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(fields[1+i], 64)
		if err != nil {
			g.Warnf("dropped BOX record with unparseable coordinate %q", fields[1+i])
			return
		}
		vals[i] = v
	}

	xmin, ymin, xmax, ymax := vals[0], vals[1], vals[2], vals[3]
	if xmax-xmin > milSpanThreshold || ymax-ymin > milSpanThreshold {
		p.log.Debug("box span exceeds threshold, converting from mils",
			zap.Float64("xspan", xmax-xmin), zap.Float64("yspan", ymax-ymin))
		xmin *= units.MilToMM
		ymin *= units.MilToMM
		xmax *= units.MilToMM
		ymax *= units.MilToMM
	}

	g.Bounds.Expand(geometry.Position{X: xmin, Y: ymin})
	g.Bounds.Expand(geometry.Position{X: xmax, Y: ymax})
}

// parseDielectric handles DIEL er tand. The record does not expose height
// or conductor thickness, so those stay at the fixed defaults.
func (p *Parser) parseDielectric(g *geometry.Geometry, fields []string) {
	if len(fields) < 3 {
		g.Warnf("dropped DIEL record with %d fields (need 3)", len(fields))
		return
	}

	er, errEr := strconv.ParseFloat(fields[1], 64)
	tand, errTd := strconv.ParseFloat(fields[2], 64)
	if errEr != nil || errTd != nil {
		g.Warnf("dropped DIEL record with unparseable values %q %q", fields[1], fields[2])
		return
	}

	g.SetSubstrate(geometry.Substrate{
		Er:        er,
		Height:    geometry.DefaultHeight,
		Thickness: geometry.DefaultThickness,
		TanD:      tand,
	})
}

// parsePort handles POR id x y [z0].
func (p *Parser) parsePort(g *geometry.Geometry, fields []string) {
	if len(fields) < 4 {
		g.Warnf("dropped POR record with %d fields (need 4)", len(fields))
		return
	}

	number, errN := strconv.Atoi(fields[1])
	x, errX := strconv.ParseFloat(fields[2], 64)
	y, errY := strconv.ParseFloat(fields[3], 64)
	if errN != nil || errX != nil || errY != nil {
		g.Warnf("dropped POR record with unparseable fields")
		return
	}

	impedance := geometry.DefaultImpedance
	if len(fields) > 4 {
		z, err := units.Impedance(fields[4])
		if err != nil || z <= 0 {
			g.Warnf("port %d: bad impedance %q, defaulting to %g ohm",
				number, fields[4], geometry.DefaultImpedance)
		} else {
			impedance = z
		}
	}

	g.AddPort(geometry.Port{
		Number:    number,
		Name:      fmt.Sprintf("P%d", number),
		Position:  geometry.Position{X: x, Y: y},
		Impedance: impedance,
		Type:      geometry.PortLumped,
	})
}
