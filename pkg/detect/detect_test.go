package detect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFile(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		content     string
		want        Format
		wantWarning bool
		wantErr     bool
	}{
		{
			name:    "qucs by extension and signature",
			file:    "filter.sch",
			content: "<Qucs Schematic 0.0.19>\n<Components>\n",
			want:    FormatQucs,
		},
		{
			name:    "sonnet by extension and signature",
			file:    "coupler.son",
			content: "FTYP SONPROJ 3\nVER 18.52\n",
			want:    FormatSonnet,
		},
		{
			name:    "kicad by extension and signature",
			file:    "board.kicad_pcb",
			content: "(kicad_pcb (version 20221018) (generator pcbnew)\n",
			want:    FormatKiCad,
		},
		{
			name:    "kicad content with unrelated extension",
			file:    "board.txt",
			content: "(kicad_pcb (version 20221018)\n",
			want:    FormatKiCad,
		},
		{
			name:        "extension wins over missing signature",
			file:        "empty.sch",
			content:     "just some text\n",
			want:        FormatQucs,
			wantWarning: true,
		},
		{
			name:        "extension wins over conflicting signature",
			file:        "mislabeled.son",
			content:     "<Qucs Schematic 0.0.19>\n",
			want:        FormatSonnet,
			wantWarning: true,
		},
		{
			name:    "unknown extension and content",
			file:    "readme.md",
			content: "# nothing to see\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			result, err := File(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("File(%s) expected error, got %+v", tt.file, result)
				}
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("File(%s) error = %v, want ErrUnknownFormat", tt.file, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("File(%s) unexpected error: %v", tt.file, err)
			}
			if result.Format != tt.want {
				t.Errorf("File(%s) = %s, want %s", tt.file, result.Format, tt.want)
			}
			if tt.wantWarning && result.Warning == "" {
				t.Errorf("File(%s) expected a warning", tt.file)
			}
			if !tt.wantWarning && result.Warning != "" {
				t.Errorf("File(%s) unexpected warning: %s", tt.file, result.Warning)
			}
		})
	}
}

func TestFileNotFound(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing.sch"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestByExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a/b/filter.sch", FormatQucs, true},
		{"COUPLER.SON", FormatSonnet, true},
		{"Board.Kicad_Pcb", FormatKiCad, true},
		{"notes.txt", FormatUnknown, false},
		{"archive.sch.bak", FormatUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ByExtension(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ByExtension(%q) = (%s, %v), want (%s, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestByContent(t *testing.T) {
	if f, ok := ByContent([]byte("  \n(kicad_pcb (version 4)")); !ok || f != FormatKiCad {
		t.Errorf("ByContent kicad = (%s, %v)", f, ok)
	}
	if _, ok := ByContent([]byte("random bytes")); ok {
		t.Error("ByContent should not match random bytes")
	}
	if _, ok := ByContent(nil); ok {
		t.Error("ByContent should not match empty prefix")
	}
}
