package typefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokAssign
	tokComma
	tokSemicolon
	tokOpen
	tokClose
	tokOther
	tokInvalid
)

type token struct {
	kind tokenKind
	// text is the decoded value for strings, the error message for
	// tokInvalid and the raw source text otherwise.
	text string
	line int
	col  int
}

func (t token) String() string {

	switch t.kind {
	case tokEOF:
		return "end of file"
	case tokIdent:
		return "name " + t.text
	case tokString:
		return "string " + strconv.Quote(t.text)
	}
	return "'" + t.text + "'"
}

// lexer splits a datatype file into tokens. The accepted syntax is the
// subset of Python needed to bind names to lists of string literals.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: string(src), line: 1, col: 1}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advanceByte() byte {
	ch := l.src[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		switch ch := l.peekByte(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f':
			l.advanceByte()
		case ch == '#':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advanceByte()
			}
		case ch == '\\' && strings.HasPrefix(l.src[l.pos:], "\\\n"):
			// explicit line continuation
			l.advanceByte()
			l.advanceByte()
		default:
			return
		}
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func isDelimiter(ch byte) bool {
	return strings.IndexByte(" \t\r\n\f#=,;[]()'\"", ch) >= 0
}

func (l *lexer) next() token {

	l.skipSpaceAndComments()
	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok
	}
	start := l.pos
	ch := l.peekByte()
	switch {
	case isIdentStart(ch):
		for l.pos < len(l.src) && isIdentPart(l.peekByte()) {
			l.advanceByte()
		}
		tok.kind = tokIdent
		tok.text = l.src[start:l.pos]
		return tok
	case ch == '"' || ch == '\'':
		return l.lexString(tok)
	}

	l.advanceByte()
	tok.text = string(ch)
	switch ch {
	case '=':
		tok.kind = tokAssign
	case ',':
		tok.kind = tokComma
	case ';':
		tok.kind = tokSemicolon
	case '[', '(':
		tok.kind = tokOpen
	case ']', ')':
		tok.kind = tokClose
	default:
		for l.pos < len(l.src) && !isDelimiter(l.peekByte()) {
			l.advanceByte()
		}
		tok.kind = tokOther
		tok.text = l.src[start:l.pos]
	}
	return tok
}

func (l *lexer) lexString(tok token) token {

	quote := l.advanceByte()
	start := l.pos
	for {
		if l.pos >= len(l.src) || l.peekByte() == '\n' {
			tok.kind = tokInvalid
			tok.text = "unterminated string literal"
			return tok
		}
		ch := l.advanceByte()
		if ch == '\\' {
			if l.pos >= len(l.src) {
				continue
			}
			l.advanceByte()
			continue
		}
		if ch == quote {
			break
		}
	}
	val, err := unquote(l.src[start:l.pos-1], quote)
	if err != nil {
		tok.kind = tokInvalid
		tok.text = fmt.Sprintf("invalid string literal: %v", err)
		return tok
	}
	tok.kind = tokString
	tok.text = val
	return tok
}

// unquote decodes the body of a single- or double-quoted literal by
// rewriting it as a Go double-quoted literal. Escapes follow Python string
// rules: \x, \u, \U and octal escapes name code points, a backslash before
// a newline continues the line, and unrecognised escapes keep their
// backslash. Bytes that are not valid UTF-8 are kept as they are.
func unquote(body string, quote byte) (string, error) {

	if !strings.ContainsAny(body, "\\\"") {
		return body, nil
	}
	var sb strings.Builder
	sb.Grow(len(body) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch == '"' && quote == '\'' {
			sb.WriteString(`\"`)
			continue
		}
		if ch >= utf8.RuneSelf {
			if r, size := utf8.DecodeRuneInString(body[i:]); r == utf8.RuneError && size == 1 {
				fmt.Fprintf(&sb, `\x%02x`, ch)
			} else {
				sb.WriteString(body[i : i+size])
				i += size - 1
			}
			continue
		}
		if ch != '\\' || i+1 == len(body) {
			sb.WriteByte(ch)
			continue
		}
		i++
		esc := body[i]
		switch {
		case esc == '\n':
		case esc == '\'':
			sb.WriteByte('\'')
		case strings.IndexByte(`abfnrtv\"uU`, esc) >= 0:
			sb.WriteByte('\\')
			sb.WriteByte(esc)
		case esc == 'x':
			if i+2 < len(body) && isHex(body[i+1]) && isHex(body[i+2]) {
				fmt.Fprintf(&sb, `\u00%s`, body[i+1:i+3])
				i += 2
			} else {
				return "", errors.New("truncated \\x escape")
			}
		case esc == 'N':
			return "", errors.New("\\N{...} escapes are not supported")
		case isOctal(esc):
			end := i + 1
			for end < len(body) && end < i+3 && isOctal(body[end]) {
				end++
			}
			v, _ := strconv.ParseUint(body[i:end], 8, 32)
			fmt.Fprintf(&sb, `\u%04x`, v)
			i = end - 1
		default:
			sb.WriteString(`\\`)
			sb.WriteByte(esc)
		}
	}
	sb.WriteByte('"')
	return strconv.Unquote(sb.String())
}

func isHex(ch byte) bool {
	return '0' <= ch && ch <= '9' || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isOctal(ch byte) bool {
	return '0' <= ch && ch <= '7'
}
