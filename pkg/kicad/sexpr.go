package kicad

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// node is one parsed s-expression list. Board records are matched line by
// line, so a node only ever represents a single-line expression; atoms
// keep their lexical order, child lists are looked up by head keyword.
type node struct {
	atoms []string
	lists []*node
}

// parseExpr parses one complete s-expression from a single line. An
// unbalanced or truncated expression is a malformed record, reported as
// an error for the caller to drop.
func parseExpr(line string) (*node, error) {
	p := &exprParser{input: []rune(strings.TrimSpace(line))}
	n, err := p.parseList()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("trailing input after expression")
	}
	return n, nil
}

type exprParser struct {
	input []rune
	pos   int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *exprParser) parseList() (*node, error) {
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != '(' {
		return nil, fmt.Errorf("expected '('")
	}
	p.pos++

	n := &node{}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unexpected end of line in expression")
		}

		switch p.input[p.pos] {
		case ')':
			p.pos++
			return n, nil

		case '(':
			child, err := p.parseList()
			if err != nil {
				return nil, err
			}
			n.lists = append(n.lists, child)

		case '"':
			s, err := p.parseString()
			if err != nil {
				return nil, err
			}
			n.atoms = append(n.atoms, s)

		default:
			n.atoms = append(n.atoms, p.parseAtom())
		}
	}
}

func (p *exprParser) parseString() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		p.pos++
		switch ch {
		case '"':
			return b.String(), nil
		case '\\':
			if p.pos < len(p.input) {
				b.WriteRune(p.input[p.pos])
				p.pos++
			}
		default:
			b.WriteRune(ch)
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *exprParser) parseAtom() string {
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		p.pos++
	}
	return string(p.input[start:p.pos])
}

// key returns the node's head keyword, empty for a bare list.
func (n *node) key() string {
	if len(n.atoms) == 0 {
		return ""
	}
	return n.atoms[0]
}

// find returns the first child list whose head keyword matches.
func (n *node) find(key string) (*node, bool) {
	for _, child := range n.lists {
		if child.key() == key {
			return child, true
		}
	}
	return nil, false
}

// str returns the atom at index (0 is the keyword).
func (n *node) str(index int) (string, error) {
	if index < 0 || index >= len(n.atoms) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(n.atoms))
	}
	return n.atoms[index], nil
}

// float parses the atom at index as a float64.
func (n *node) float(index int) (float64, error) {
	s, err := n.str(index)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", s, err)
	}
	return v, nil
}

// position extracts (keyword X Y) as a coordinate pair.
func (n *node) position() (x, y float64, err error) {
	x, err = n.float(1)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err = n.float(2)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse Y: %w", err)
	}
	return x, y, nil
}
