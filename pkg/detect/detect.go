// Package detect classifies layout files into one of the three supported
// formats by extension and content signature.
package detect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a supported layout file format.
type Format string

const (
	FormatUnknown Format = ""
	FormatQucs    Format = "qucs-schematic"
	FormatSonnet  Format = "sonnet-project"
	FormatKiCad   Format = "kicad-pcb"
)

// ErrUnknownFormat is returned when neither extension nor content matches
// a supported format.
var ErrUnknownFormat = errors.New("unknown layout format")

// prefixSize bounds how much of the file is read for signature checks.
const prefixSize = 512

// Format signature literals, each found near the start of its file.
var signatures = []struct {
	format Format
	token  string
}{
	{FormatQucs, "<Qucs Schematic"},
	{FormatSonnet, "FTYP SONPROJ"},
	{FormatKiCad, "kicad_pcb"},
}

// Result is a classification plus an optional soft warning. A signature
// mismatch on a recognized extension is deliberately not fatal: a guess is
// preferred over a refusal.
type Result struct {
	Format  Format
	Warning string
}

// File classifies the file at path. Side effects are limited to reading a
// bounded prefix.
func File(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	prefix := make([]byte, prefixSize)
	n, err := f.Read(prefix)
	if err != nil && err != io.EOF {
		return Result{}, fmt.Errorf("failed to read file prefix: %w", err)
	}
	prefix = prefix[:n]

	if presumed, ok := ByExtension(path); ok {
		if sig, found := ByContent(prefix); found && sig == presumed {
			return Result{Format: presumed}, nil
		}
		// Extension wins even when the signature check fails.
		return Result{
			Format:  presumed,
			Warning: fmt.Sprintf("%s: extension suggests %s but no matching signature found in file prefix", filepath.Base(path), presumed),
		}, nil
	}

	if sig, found := ByContent(prefix); found {
		return Result{Format: sig}, nil
	}

	return Result{}, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Base(path))
}

// ByExtension returns the presumptive format for a file extension.
func ByExtension(path string) (Format, bool) {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, ".kicad_pcb") {
		return FormatKiCad, true
	}
	switch filepath.Ext(name) {
	case ".sch":
		return FormatQucs, true
	case ".son":
		return FormatSonnet, true
	}
	return FormatUnknown, false
}

// ByContent scans a file prefix for any known format signature and
// classifies by the first match.
func ByContent(prefix []byte) (Format, bool) {
	text := string(prefix)
	for _, sig := range signatures {
		if strings.Contains(text, sig.token) {
			return sig.format, true
		}
	}
	return FormatUnknown, false
}
