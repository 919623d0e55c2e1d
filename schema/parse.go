package schema

import (
	"fmt"
	"strings"

	sketchfmt "github.com/reoring/sketchfmt"
)

// Node is an unresolved type expression as written in a schema table:
// a name with optional bracketed arguments, e.g. Dict[SJObjectId, SJColor].
type Node struct {
	Name string
	Args []*Node
}

func (n *Node) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}
	parts := make([]string, 0, len(n.Args))
	for _, a := range n.Args {
		parts = append(parts, a.String())
	}
	return n.Name + "[" + strings.Join(parts, ", ") + "]"
}

// ParseTypeExpr parses the textual declaration form of a type expression.
// Whitespace between tokens is ignored.
func ParseTypeExpr(text string) (*Node, error) {
	p := &typeParser{src: text}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return n, nil
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", sketchfmt.ErrTypeSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func isIdentByte(c byte, first bool) bool {
	switch {
	case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case !first && (c >= '0' && c <= '9' || c == '.'):
		return true
	}
	return false
}

func (p *typeParser) expr() (*Node, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isIdentByte(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		if p.pos == len(p.src) {
			return nil, p.errorf("expected type name")
		}
		return nil, p.errorf("expected type name, found %q", p.src[p.pos])
	}
	n := &Node{Name: p.src[start:p.pos]}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return n, nil
	}
	p.pos++
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, arg)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated argument list of %s", n.Name)
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return n, nil
		default:
			return nil, p.errorf("expected ',' or ']', found %q", p.src[p.pos])
		}
	}
}
