// Package kicad parses KiCad board files into the canonical geometry
// model. The file is a nested s-expression tree, but it is processed as
// an ordered sequence of lines matched per keyword: segment and via
// records sit on one line each in boards written by recent KiCad
// versions, which is all conductor extraction needs. Multi-line zone and
// polygon outlines are recognized but intentionally yield no conductor;
// that gap is reported, not silently masked.
package kicad

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/OpenEMTools/emgeo/pkg/geometry"
)

// connectorKeywords mark footprints treated as board ports.
var connectorKeywords = []string{"conn", "sma", "coax", "jack", "socket"}

// Parser parses board files.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a board parser. A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// ParseFile reads and parses a board file.
func (p *Parser) ParseFile(path string) (*geometry.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads a board from r. The whole input is split into lines up
// front; each line is matched against the handful of keywords that yield
// conductors, substrate data or ports. Bad records are dropped with a
// warning, never fatal.
func (p *Parser) Parse(r io.Reader) (*geometry.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	g := geometry.New("kicad-pcb")

	var (
		segments, vias int
		skippedZones   int
		pendingPort    *geometry.Port

		stackup      geometry.Substrate
		hasStackup   bool
		hasEr        bool
		hasHeight    bool
		hasThickness bool
		hasTanD      bool
	)

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// A pending connector footprint adopts the next position line.
		if pendingPort != nil && strings.HasPrefix(line, "(at ") {
			if x, y, ok := xyAfter(line, "(at"); ok {
				pendingPort.Position = geometry.Position{X: x, Y: y}
				g.AddPort(*pendingPort)
				pendingPort = nil
				continue
			}
		}

		switch {
		case strings.HasPrefix(line, "(segment"):
			segments++
			p.parseSegment(g, line, segments)

		case strings.HasPrefix(line, "(via"):
			vias++
			p.parseVia(g, line, vias)

		case strings.HasPrefix(line, "(zone") || strings.HasPrefix(line, "(gr_poly") ||
			strings.HasPrefix(line, "(polygon"):
			skippedZones++

		case strings.Contains(line, `"dielectric`):
			if v, ok := floatAfter(line, "(epsilon_r"); ok {
				stackup.Er = v
				hasEr = true
				hasStackup = true
			}
			if v, ok := floatAfter(line, "(thickness"); ok {
				stackup.Height = v
				hasHeight = true
				hasStackup = true
			}
			if v, ok := floatAfter(line, "(loss_tangent"); ok {
				stackup.TanD = v
				hasTanD = true
				hasStackup = true
			}

		case strings.Contains(line, `"copper"`):
			if v, ok := floatAfter(line, "(thickness"); ok {
				stackup.Thickness = v
				hasThickness = true
				hasStackup = true
			}

		case strings.HasPrefix(line, "(footprint"):
			if port, ok := p.connectorPort(line); ok {
				if port.Position != (geometry.Position{}) {
					g.AddPort(*port)
				} else {
					pendingPort = port
				}
			}
		}
	}

	if pendingPort != nil {
		g.Warnf("connector footprint %q has no position record, placed at origin", pendingPort.Name)
		g.AddPort(*pendingPort)
	}
	if skippedZones > 0 {
		g.Warnf("%d zone/polygon constructs skipped: multi-line outlines are not supported", skippedZones)
	}
	if hasStackup {
		if !hasEr {
			stackup.Er = geometry.DefaultEr
		}
		if !hasHeight {
			stackup.Height = geometry.DefaultHeight
		}
		if !hasThickness {
			stackup.Thickness = geometry.DefaultThickness
		}
		if !hasTanD {
			stackup.TanD = geometry.DefaultTanD
		}
		g.SetSubstrate(stackup)
	}

	g.Finalize()
	return g, nil
}

// parseSegment handles (segment (start x y) (end x y) (width w) (layer "L") ...).
func (p *Parser) parseSegment(g *geometry.Geometry, line string, index int) {
	n, err := parseExpr(line)
	if err != nil {
		g.Warnf("dropped segment %d: %v", index, err)
		return
	}

	startNode, ok := n.find("start")
	if !ok {
		g.Warnf("dropped segment %d: missing start position", index)
		return
	}
	sx, sy, err := startNode.position()
	if err != nil {
		g.Warnf("dropped segment %d: %v", index, err)
		return
	}

	endNode, ok := n.find("end")
	if !ok {
		g.Warnf("dropped segment %d: missing end position", index)
		return
	}
	ex, ey, err := endNode.position()
	if err != nil {
		g.Warnf("dropped segment %d: %v", index, err)
		return
	}

	width := 0.15 // default trace width
	if widthNode, ok := n.find("width"); ok {
		if w, err := widthNode.float(1); err == nil {
			width = w
		}
	}

	layer := ""
	if layerNode, ok := n.find("layer"); ok {
		layer, _ = layerNode.str(1)
	}

	g.Add(&geometry.Trace{
		Name:  fmt.Sprintf("seg%d", index),
		Start: geometry.Position{X: sx, Y: sy},
		End:   geometry.Position{X: ex, Y: ey},
		Width: width,
		Layer: layer,
	})
}

// parseVia handles (via (at x y) (size d) ...).
func (p *Parser) parseVia(g *geometry.Geometry, line string, index int) {
	n, err := parseExpr(line)
	if err != nil {
		g.Warnf("dropped via %d: %v", index, err)
		return
	}

	atNode, ok := n.find("at")
	if !ok {
		g.Warnf("dropped via %d: missing position", index)
		return
	}
	x, y, err := atNode.position()
	if err != nil {
		g.Warnf("dropped via %d: %v", index, err)
		return
	}

	sizeNode, ok := n.find("size")
	if !ok {
		g.Warnf("dropped via %d: missing size", index)
		return
	}
	size, err := sizeNode.float(1)
	if err != nil {
		g.Warnf("dropped via %d: %v", index, err)
		return
	}

	g.Add(&geometry.Via{
		Name:     fmt.Sprintf("via%d", index),
		Center:   geometry.Position{X: x, Y: y},
		Diameter: size,
	})
}

// connectorPort builds a port from a footprint line whose text contains a
// connector-like keyword. The footprint position may follow on the same
// line or on a later one.
func (p *Parser) connectorPort(line string) (*geometry.Port, bool) {
	lower := strings.ToLower(line)
	match := false
	for _, kw := range connectorKeywords {
		if strings.Contains(lower, kw) {
			match = true
			break
		}
	}
	if !match {
		return nil, false
	}

	name := "connector"
	if start := strings.Index(line, `"`); start >= 0 {
		if end := strings.Index(line[start+1:], `"`); end >= 0 {
			name = line[start+1 : start+1+end]
		}
	}

	port := &geometry.Port{
		Name:      name,
		Impedance: geometry.DefaultImpedance,
		Type:      geometry.PortConnector,
	}
	if x, y, ok := xyAfter(line, "(at"); ok {
		port.Position = geometry.Position{X: x, Y: y}
	}
	return port, true
}

// floatAfter extracts the value of a (key value) pair anywhere in a line,
// tolerating lines that are fragments of a larger multi-line block.
func floatAfter(line, key string) (float64, bool) {
	idx := strings.Index(line, key+" ")
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(key):])
	end := strings.IndexAny(rest, ") \t")
	if end < 0 {
		end = len(rest)
	}
	v, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// xyAfter extracts the first two values of a (key x y ...) pair.
func xyAfter(line, key string) (x, y float64, ok bool) {
	idx := strings.Index(line, key+" ")
	if idx < 0 {
		return 0, 0, false
	}
	rest := line[idx+len(key):]
	if end := strings.IndexRune(rest, ')'); end >= 0 {
		rest = rest[:end]
	}
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return 0, 0, false
	}
	xv, errX := strconv.ParseFloat(fields[0], 64)
	yv, errY := strconv.ParseFloat(fields[1], 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return xv, yv, true
}
