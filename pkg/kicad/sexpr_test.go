package kicad

import (
	"testing"
)

func TestParseExpr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "flat list", input: "(width 0.25)"},
		{name: "nested lists", input: `(segment (start 1 2) (end 3 4) (width 0.25) (layer "F.Cu"))`},
		{name: "quoted string with spaces", input: `(layer "dielectric 1")`},
		{name: "escaped quote", input: `(name "a \" b")`},
		{name: "leading whitespace", input: `   (at 1 2)`},
		{name: "unbalanced", input: "(segment (start 1 2", wantErr: true},
		{name: "trailing garbage", input: "(at 1 2) extra", wantErr: true},
		{name: "not a list", input: "width 0.25", wantErr: true},
		{name: "unterminated string", input: `(layer "F.Cu`, wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := parseExpr(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseExpr(%q) expected error, got %+v", tt.input, n)
				}
				return
			}
			if err != nil {
				t.Errorf("parseExpr(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	n, err := parseExpr(`(segment (start 61.087 103.29) (end 63.701 103.29) (width 0.25) (layer "F.Cu") (net 1))`)
	if err != nil {
		t.Fatalf("parseExpr error: %v", err)
	}

	if n.key() != "segment" {
		t.Errorf("key = %q, want segment", n.key())
	}

	start, ok := n.find("start")
	if !ok {
		t.Fatal("find(start) not found")
	}
	x, y, err := start.position()
	if err != nil {
		t.Fatalf("position error: %v", err)
	}
	if x != 61.087 || y != 103.29 {
		t.Errorf("start = (%v, %v)", x, y)
	}

	width, ok := n.find("width")
	if !ok {
		t.Fatal("find(width) not found")
	}
	if w, err := width.float(1); err != nil || w != 0.25 {
		t.Errorf("width = %v, %v", w, err)
	}

	layer, _ := n.find("layer")
	if s, err := layer.str(1); err != nil || s != "F.Cu" {
		t.Errorf("layer = %q, %v (quotes must be stripped)", s, err)
	}

	if _, ok := n.find("missing"); ok {
		t.Error("find(missing) should fail")
	}
	if _, err := width.float(5); err == nil {
		t.Error("float out of bounds should fail")
	}
}

func TestFloatAfter(t *testing.T) {
	line := `      (layer "dielectric 1" (type "core") (thickness 1.6) (material "FR4") (epsilon_r 4.5) (loss_tangent 0.02))`

	if v, ok := floatAfter(line, "(epsilon_r"); !ok || v != 4.5 {
		t.Errorf("epsilon_r = %v, %v", v, ok)
	}
	if v, ok := floatAfter(line, "(thickness"); !ok || v != 1.6 {
		t.Errorf("thickness = %v, %v", v, ok)
	}
	if v, ok := floatAfter(line, "(loss_tangent"); !ok || v != 0.02 {
		t.Errorf("loss_tangent = %v, %v", v, ok)
	}
	if _, ok := floatAfter(line, "(absent"); ok {
		t.Error("absent key should not match")
	}
	if _, ok := floatAfter(`(material "FR4")`, "(material"); ok {
		t.Error("non-numeric value should not match")
	}
}

func TestXYAfter(t *testing.T) {
	if x, y, ok := xyAfter("    (at 25.4 30.2)", "(at"); !ok || x != 25.4 || y != 30.2 {
		t.Errorf("at = (%v, %v), %v", x, y, ok)
	}
	if x, y, ok := xyAfter("(at 10 20 90)", "(at"); !ok || x != 10 || y != 20 {
		t.Errorf("at with rotation = (%v, %v), %v", x, y, ok)
	}
	if _, _, ok := xyAfter("(at 10)", "(at"); ok {
		t.Error("single coordinate should not match")
	}
	if _, _, ok := xyAfter("(size 0.8)", "(at"); ok {
		t.Error("missing key should not match")
	}
}
