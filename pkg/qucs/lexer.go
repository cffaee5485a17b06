package qucs

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// recordLexer defines the lexical structure of one schematic component
// record: angle-bracket delimited, whitespace-separated fields where a
// quoted field may span several words. Lexing a whole quoted run as one
// token replaces per-field quote tracking in the record parser.
var recordLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},

	// Record delimiters
	{Name: "LAngle", Pattern: `<`},
	{Name: "RAngle", Pattern: `>`},

	// Quoted parameter field, possibly multi-word
	{Name: "String", Pattern: `"[^"]*"`},

	// Bare positional field (identifier or number)
	{Name: "Bare", Pattern: `[^\s<>"]+`},
})

// Field is one lexed record field.
type Field struct {
	Text   string
	Quoted bool
}

// lexRecord splits a record line into ordered fields, stripping the angle
// brackets and the quotes around string fields. Returns nil for lines that
// are not component records.
func lexRecord(line string) ([]Field, error) {
	lex, err := recordLexer.LexString("", line)
	if err != nil {
		return nil, err
	}

	symbols := recordLexer.Symbols()
	stringType := symbols["String"]
	bareType := symbols["Bare"]
	spaceType := symbols["Whitespace"]

	var fields []Field
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}

		switch tok.Type {
		case spaceType:
			continue
		case stringType:
			// Strip surrounding quotes.
			fields = append(fields, Field{Text: tok.Value[1 : len(tok.Value)-1], Quoted: true})
		case bareType:
			fields = append(fields, Field{Text: tok.Value})
		}
		// Angle brackets are structural and not kept as fields.
	}

	return fields, nil
}

// splitFields separates a record's bare positional fields from its quoted
// parameter fields, preserving order within each class.
func splitFields(fields []Field) (positional, quoted []string) {
	for _, f := range fields {
		if f.Quoted {
			quoted = append(quoted, f.Text)
		} else {
			positional = append(positional, f.Text)
		}
	}
	return positional, quoted
}
