package qucs

import (
	"math"
	"strings"
	"testing"

	"github.com/OpenEMTools/emgeo/pkg/geometry"
)

const sampleSchematic = `<Qucs Schematic 0.0.19>
<Properties>
  <View=0,0,800,800,1,0,0>
</Properties>
<Components>
<SUBST Subst1 1 200 100 -30 24 0 0 "4.3" 1 "1.6 mm" 1 "35 um" 1 "0.02" 1>
<MLIN MS1 1 100 200 -26 15 0 0 "Subst1" 1 "50" 1 "10 mm" 1>
<MLIN MS2 1 110 200 -26 15 0 90 "Subst1" 1 "50" 1 "5 mm" 1>
<Pac P1 1 100 200 18 -26 0 1 "1" 1 "50 Ohm" 0>
<GND * 1 100 230 0 0 0 0>
</Components>
<Wires>
</Wires>
`

func TestParseSchematic(t *testing.T) {
	p := NewParser(nil)
	g, err := p.Parse(strings.NewReader(sampleSchematic))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(g.Conductors) != 2 {
		t.Fatalf("got %d conductors, want 2", len(g.Conductors))
	}

	ms1, ok := g.Conductors[0].(*geometry.Trace)
	if !ok {
		t.Fatalf("conductor 0 is %T, want *Trace", g.Conductors[0])
	}
	if ms1.Name != "MS1" {
		t.Errorf("trace name = %q, want MS1", ms1.Name)
	}
	if ms1.Start != (geometry.Position{X: 100, Y: 200}) {
		t.Errorf("MS1 start = %+v, want (100, 200)", ms1.Start)
	}
	// Rotation 0: the end point lies length mm along +X.
	if math.Abs(ms1.End.X-110) > 1e-9 || math.Abs(ms1.End.Y-200) > 1e-9 {
		t.Errorf("MS1 end = %+v, want (110, 200)", ms1.End)
	}
	if ms1.Width != 50 {
		t.Errorf("MS1 width = %v, want 50 (bare numbers are mm)", ms1.Width)
	}
	if ms1.Layer != "Subst1" {
		t.Errorf("MS1 layer = %q, want Subst1", ms1.Layer)
	}

	ms2 := g.Conductors[1].(*geometry.Trace)
	// Rotation 90: the end point lies length mm along +Y.
	if math.Abs(ms2.End.X-110) > 1e-9 || math.Abs(ms2.End.Y-205) > 1e-9 {
		t.Errorf("MS2 end = %+v, want (110, 205)", ms2.End)
	}

	if len(g.Ports) != 1 {
		t.Fatalf("got %d ports, want 1", len(g.Ports))
	}
	port := g.Ports[0]
	if port.Number != 1 || port.Impedance != 50 || port.Type != geometry.PortLumped {
		t.Errorf("port = %+v", port)
	}

	if !g.HasSubstrate() {
		t.Fatal("substrate record not picked up")
	}
	sub := g.Substrate
	if sub.Er != 4.3 || sub.Height != 1.6 || math.Abs(sub.Thickness-0.035) > 1e-9 || sub.TanD != 0.02 {
		t.Errorf("substrate = %+v", sub)
	}
}

func TestParseCoupledPair(t *testing.T) {
	input := `<Components>
<MCOUPLED MC1 1 0 0 -26 15 0 0 "Subst1" 1 "1 mm" 1 "10 mm" 1 "2 mm" 1>
</Components>
`
	g, err := NewParser(nil).Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(g.Conductors) != 2 {
		t.Fatalf("got %d conductors, want sibling pair", len(g.Conductors))
	}

	a, ok := g.Conductors[0].(*geometry.CoupledLine)
	if !ok {
		t.Fatalf("conductor 0 is %T, want *CoupledLine", g.Conductors[0])
	}
	b := g.Conductors[1].(*geometry.CoupledLine)

	if a.Name != "MC1_1" || b.Name != "MC1_2" {
		t.Errorf("sibling names = %q, %q", a.Name, b.Name)
	}

	// Siblings run exactly spacing apart and parallel.
	if d := a.Start.Distance(b.Start); math.Abs(d-2) > 1e-9 {
		t.Errorf("start separation = %v, want 2", d)
	}
	if d := a.End.Distance(b.End); math.Abs(d-2) > 1e-9 {
		t.Errorf("end separation = %v, want 2", d)
	}
	dirA := geometry.Position{X: a.End.X - a.Start.X, Y: a.End.Y - a.Start.Y}
	dirB := geometry.Position{X: b.End.X - b.Start.X, Y: b.End.Y - b.Start.Y}
	if math.Abs(dirA.X-dirB.X) > 1e-9 || math.Abs(dirA.Y-dirB.Y) > 1e-9 {
		t.Errorf("siblings not parallel: %+v vs %+v", dirA, dirB)
	}

	if a.Spacing != 2 || b.Spacing != 2 {
		t.Errorf("spacing = %v, %v, want 2", a.Spacing, b.Spacing)
	}
	if math.Abs(a.Length()-10) > 1e-9 {
		t.Errorf("length = %v, want 10", a.Length())
	}
}

func TestParseMalformedRecords(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantConductors int
		wantWarnings   bool
	}{
		{
			name: "truncated record among valid ones",
			input: `<MLIN MS1 1 0 0 -26 15 0 0 "S" 1 "1 mm" 1 "10 mm" 1>
<MLIN MS2 1 20
<MLIN MS3 1 40 0 -26 15 0 0 "S" 1 "1 mm" 1 "10 mm" 1>
`,
			wantConductors: 2,
			wantWarnings:   true,
		},
		{
			name:           "unparseable width defaults to zero",
			input:          `<MLIN MS1 1 0 0 -26 15 0 0 "S" 1 "wide" 1 "10 mm" 1>` + "\n",
			wantConductors: 1,
			wantWarnings:   true,
		},
		{
			name:           "unparseable position drops record",
			input:          `<MLIN MS1 1 here there -26 15 0 0 "S" 1 "1 mm" 1 "10 mm" 1>` + "\n",
			wantConductors: 0,
			wantWarnings:   true,
		},
		{
			name:           "missing parameters drops record",
			input:          `<MLIN MS1 1 0 0 -26 15 0 0 "S" 1>` + "\n",
			wantConductors: 0,
			wantWarnings:   true,
		},
		{
			name:           "unrecognized components are skipped silently",
			input:          "<R R1 1 0 0 -26 15 0 0 \"50 Ohm\" 1>\n<C C1 1 10 0 -26 15 0 0 \"1 pF\" 1>\n",
			wantConductors: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewParser(nil).Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(g.Conductors) != tt.wantConductors {
				t.Errorf("got %d conductors, want %d", len(g.Conductors), tt.wantConductors)
			}

			recordWarnings := 0
			for _, w := range g.Warnings {
				// Ignore the backfill warnings Finalize adds for empty files.
				if strings.Contains(w, "no substrate record") || strings.Contains(w, "no conductor yielded") {
					continue
				}
				recordWarnings++
			}
			if tt.wantWarnings && recordWarnings == 0 {
				t.Errorf("expected record warnings, got %v", g.Warnings)
			}
		})
	}
}

func TestParseBackfillsDefaults(t *testing.T) {
	// No substrate and no conductor: finalize repairs both.
	g, err := NewParser(nil).Parse(strings.NewReader("<Pac P1 1 0 0 18 -26 0 1 \"1\" 1 \"50 Ohm\" 0>\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if g.Substrate != geometry.DefaultSubstrate() {
		t.Errorf("substrate = %+v, want defaults", g.Substrate)
	}
	if g.Bounds.IsEmpty() {
		t.Error("bounds should be backfilled, not empty")
	}
	if len(g.Warnings) < 2 {
		t.Errorf("expected substrate and bounds warnings, got %v", g.Warnings)
	}
}

func TestLastSubstrateDeclarationWins(t *testing.T) {
	input := `<SUBST S1 1 0 0 -30 24 0 0 "4.3" 1 "1.6 mm" 1 "35 um" 1 "0.02" 1>
<SUBST S2 1 0 100 -30 24 0 0 "2.2" 1 "0.508 mm" 1 "17 um" 1 "0.0009" 1>
`
	g, err := NewParser(nil).Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if g.Substrate.Er != 2.2 {
		t.Errorf("er = %v, want last declaration (2.2)", g.Substrate.Er)
	}
}

func TestLexRecord(t *testing.T) {
	fields, err := lexRecord(`<MLIN MS1 1 100 200 -26 15 0 0 "two words" 1 "10 mm" 1>`)
	if err != nil {
		t.Fatalf("lexRecord error: %v", err)
	}

	positional, quoted := splitFields(fields)
	if len(positional) != 11 {
		t.Errorf("got %d positional fields: %v", len(positional), positional)
	}
	if len(quoted) != 2 {
		t.Fatalf("got %d quoted fields: %v", len(quoted), quoted)
	}
	if quoted[0] != "two words" {
		t.Errorf("quoted field = %q, want multi-word run kept whole", quoted[0])
	}
	if quoted[1] != "10 mm" {
		t.Errorf("quoted field = %q, want \"10 mm\"", quoted[1])
	}
	if positional[0] != "MLIN" || positional[1] != "MS1" {
		t.Errorf("positional prefix = %v", positional[:2])
	}
}
