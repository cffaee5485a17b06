// Package units converts dimensioned literals from layout files into
// canonical numeric values: millimeters for lengths, ohms for impedance,
// hertz for frequency. Bad tokens never abort a parse; callers treat the
// returned error as a warning and keep the zero value.
package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MilToMM is the mil (thou) to millimeter ratio.
const MilToMM = 0.0254

// valueRe splits a literal into a number and an optional unit suffix.
// Accepts scientific notation and an optional space before the unit.
var valueRe = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)\s*([A-Za-zµΩ]*)$`)

var lengthFactors = map[string]float64{
	"":   1, // bare numbers are already millimeters
	"mm": 1,
	"mil": MilToMM,
	"um": 1e-3,
	"µm": 1e-3,
	"cm": 10,
	"m":  1000,
}

var frequencyFactors = map[string]float64{
	"":    1,
	"hz":  1,
	"khz": 1e3,
	"mhz": 1e6,
	"ghz": 1e9,
}

func split(token string) (float64, string, error) {
	m := valueRe.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, "", fmt.Errorf("unparseable dimension %q", token)
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", fmt.Errorf("unparseable dimension %q: %w", token, err)
	}
	return num, m[2], nil
}

// Length converts a length literal to millimeters. Unknown suffixes and
// empty tokens yield 0 with an error the caller downgrades to a warning.
func Length(token string) (float64, error) {
	num, unit, err := split(token)
	if err != nil {
		return 0, err
	}
	factor, ok := lengthFactors[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown length unit %q in %q", unit, token)
	}
	return num * factor, nil
}

// Impedance converts an impedance literal to ohms.
func Impedance(token string) (float64, error) {
	num, unit, err := split(token)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(unit) {
	case "", "ohm", "ohms", "ω":
		return num, nil
	case "kohm":
		return num * 1e3, nil
	}
	return 0, fmt.Errorf("unknown impedance unit %q in %q", unit, token)
}

// Frequency converts a frequency literal to hertz.
func Frequency(token string) (float64, error) {
	num, unit, err := split(token)
	if err != nil {
		return 0, err
	}
	factor, ok := frequencyFactors[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown frequency unit %q in %q", unit, token)
	}
	return num * factor, nil
}

// Plain parses a dimensionless literal (permittivity, loss tangent).
func Plain(token string) (float64, error) {
	num, unit, err := split(token)
	if err != nil {
		return 0, err
	}
	if unit != "" {
		return 0, fmt.Errorf("unexpected unit %q on dimensionless value %q", unit, token)
	}
	return num, nil
}
