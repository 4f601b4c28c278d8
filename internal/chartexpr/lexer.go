package chartexpr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct // . ( ) [ ] , =
	tokOp    // == != < <= > >= &
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokPunct:
		return "punctuation"
	default:
		return "operator"
	}
}

type token struct {
	kind tokenKind
	text string // literal value; strings are unquoted
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%s %q", t.kind, t.text)
	}
}

// lex splits input into tokens. Backtick-quoted names lex as identifiers so
// query strings can reference columns containing spaces. offset is added to
// every reported position.
func lex(input string, offset int) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(input) {
		ch := input[pos]

		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			pos++
			continue
		}

		start := pos
		switch {
		case ch == '"' || ch == '\'':
			s, next, err := scanString(input, pos)
			if err != nil {
				return nil, &Error{Pos: start + offset, Msg: err.Error()}
			}
			toks = append(toks, token{kind: tokString, text: s, pos: start + offset})
			pos = next

		case ch == '`':
			end := strings.IndexByte(input[pos+1:], '`')
			if end < 0 {
				return nil, &Error{Pos: start + offset, Msg: "unterminated backtick name"}
			}
			toks = append(toks, token{kind: tokIdent, text: input[pos+1 : pos+1+end], pos: start + offset})
			pos += end + 2

		case unicode.IsDigit(rune(ch)) || (ch == '-' && pos+1 < len(input) && unicode.IsDigit(rune(input[pos+1]))):
			pos++
			for pos < len(input) && (unicode.IsDigit(rune(input[pos])) || input[pos] == '.') {
				pos++
			}
			toks = append(toks, token{kind: tokNumber, text: input[start:pos], pos: start + offset})

		case unicode.IsLetter(rune(ch)) || ch == '_':
			for pos < len(input) && (unicode.IsLetter(rune(input[pos])) || unicode.IsDigit(rune(input[pos])) || input[pos] == '_') {
				pos++
			}
			toks = append(toks, token{kind: tokIdent, text: input[start:pos], pos: start + offset})

		case strings.IndexByte(".()[],", ch) >= 0:
			pos++
			toks = append(toks, token{kind: tokPunct, text: string(ch), pos: start + offset})

		case ch == '=' || ch == '!' || ch == '<' || ch == '>':
			pos++
			if pos < len(input) && input[pos] == '=' {
				pos++
			}
			text := input[start:pos]
			if text == "!" {
				return nil, &Error{Pos: start + offset, Msg: "unexpected character '!'"}
			}
			kind := tokOp
			if text == "=" {
				kind = tokPunct
			}
			toks = append(toks, token{kind: kind, text: text, pos: start + offset})

		case ch == '&':
			pos++
			if pos < len(input) && input[pos] == '&' {
				pos++
			}
			toks = append(toks, token{kind: tokOp, text: "&", pos: start + offset})

		default:
			return nil, &Error{Pos: start + offset, Msg: fmt.Sprintf("unexpected character '%c'", ch)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input) + offset})
	return toks, nil
}

// scanString reads a quoted string starting at input[pos] and returns its
// unescaped value and the index just past the closing quote.
func scanString(input string, pos int) (string, int, error) {
	quote := input[pos]
	var b strings.Builder
	i := pos + 1
	for i < len(input) {
		c := input[i]
		switch {
		case c == '\\' && i+1 < len(input):
			b.WriteByte(input[i+1])
			i += 2
		case c == quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}
