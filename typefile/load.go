package typefile

import (
	"errors"
	"fmt"
	"os"
)

// Load reads the datatype file at path. Slots the file doesn't assign are
// left empty; anything malformed fails the whole load.
func Load(path string) (*Registry, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Err: err}
	}
	return Parse(path, data)
}

// Parse parses datatype file contents. name identifies the source in
// errors.
func Parse(name string, data []byte) (*Registry, error) {

	p := &parser{file: name, lex: newLexer(data)}
	return p.parse()
}

type parser struct {
	file string
	lex  *lexer
}

func (p *parser) errorf(tok token, slot string, format string, args ...any) error {
	return &LoadError{
		File:   p.file,
		Slot:   slot,
		Line:   tok.line,
		Column: tok.col,
		Err:    fmt.Errorf(format, args...),
	}
}

func (p *parser) advance(slot string) (token, error) {

	tok := p.lex.next()
	if tok.kind == tokInvalid {
		return tok, p.errorf(tok, slot, "%s", tok.text)
	}
	return tok, nil
}

func (p *parser) parse() (*Registry, error) {

	reg := &Registry{}
	for {
		tok, err := p.advance("")
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOF:
			return reg, nil
		case tokSemicolon:
			continue
		case tokIdent:
		default:
			return nil, p.errorf(tok, "", "expected a slot name, got %s", tok)
		}

		slot := tok.text
		c, ok := categoryFromFileName(slot)
		if !ok {
			return nil, p.errorf(tok, slot, "unknown slot name")
		}
		if reg.defined[c] {
			return nil, p.errorf(tok, slot, "slot assigned more than once")
		}
		eq, err := p.advance(slot)
		if err != nil {
			return nil, err
		}
		if eq.kind != tokAssign {
			return nil, p.errorf(eq, slot, "expected '=' after slot name, got %s", eq)
		}
		values, err := p.parseList(slot)
		if err != nil {
			return nil, err
		}
		*reg.slotPtr(c) = values
		reg.defined[c] = true
	}
}

var errNotAList = errors.New("value must be a list of strings")

func (p *parser) parseList(slot string) ([]string, error) {

	open, err := p.advance(slot)
	if err != nil {
		return nil, err
	}
	if open.kind != tokOpen {
		return nil, p.errorf(open, slot, "%w, got %s", errNotAList, open)
	}
	closer := "]"
	if open.text == "(" {
		closer = ")"
	}

	var values []string
	for {
		tok, err := p.advance(slot)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokClose:
			if tok.text != closer {
				return nil, p.errorf(tok, slot, "expected '%s', got %s", closer, tok)
			}
			return values, nil
		case tokString:
			values = append(values, tok.text)
		default:
			return nil, p.errorf(tok, slot, "element %d must be a string literal, got %s", len(values)+1, tok)
		}

		sep, err := p.advance(slot)
		if err != nil {
			return nil, err
		}
		switch {
		case sep.kind == tokComma:
		case sep.kind == tokClose && sep.text == closer:
			return values, nil
		default:
			return nil, p.errorf(sep, slot, "expected ',' or '%s', got %s", closer, sep)
		}
	}
}
