// Package chartexpr interprets the small chart-construction language returned
// by the completion service. Only a fixed grammar is accepted:
//
//	px.line(df_average_month, x="Month", y="Posted Wait", color="Year")
//	px.scatter(df_average_month.query("Ride == 'Spaceship Earth' and Year >= 2018"), x="Month", y="Actual Wait")
//	px.line(df_average_month[df_average_month["Year"] == 2019], x="Month", y="Posted Wait")
//
// Anything outside the grammar or the column allow-list is rejected with an
// *Error before any data is touched.
package chartexpr

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/ridewait/internal/domain"
)

// FrameName is the only data frame an expression may reference.
const FrameName = "df_average_month"

// DefaultCode draws the mean posted wait per month, one line per year.
const DefaultCode = `px.line(df_average_month.query("Ride == 'Spaceship Earth'"), x="Month", y="Posted Wait", color = "Year")`

// Error is a structured parse or evaluation failure. Pos is a byte offset into
// the expression, or -1 when the failure is not tied to a position.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

// Call is a parsed chart call.
type Call struct {
	Kind   domain.ChartKind
	Filter []Predicate
	X      string
	Y      string
	Color  string
	Title  string
}

// Predicate compares one column with a literal.
type Predicate struct {
	Column string
	Op     string
	Value  Literal
	pos    int
}

// Literal is a string or numeric constant.
type Literal struct {
	Str   string
	Num   float64
	IsNum bool
}

func (l Literal) String() string {
	if l.IsNum {
		return strconv.FormatFloat(l.Num, 'f', -1, 64)
	}
	return strconv.Quote(l.Str)
}

var chartKinds = map[string]domain.ChartKind{
	"line":    domain.ChartLine,
	"scatter": domain.ChartScatter,
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

type parser struct {
	toks []token
	pos  int
}

// Parse validates code against the chart grammar and the column allow-list.
func Parse(code string) (*Call, error) {
	toks, err := lex(code, 0)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	call, err := p.parseCall()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &Error{Pos: t.pos, Msg: "unexpected " + t.describe() + " after chart call"}
	}
	return call, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, text string) (token, error) {
	t := p.next()
	if t.kind != kind || (text != "" && t.text != text) {
		want := text
		if want == "" {
			want = kind.String()
		} else {
			want = strconv.Quote(want)
		}
		return t, &Error{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s, expected %s", t.describe(), want)}
	}
	return t, nil
}

func (p *parser) accept(kind tokenKind, text string) bool {
	t := p.peek()
	if t.kind == kind && t.text == text {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseCall() (*Call, error) {
	if _, err := p.expect(tokIdent, "px"); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokPunct, "."); err != nil {
		return nil, err
	}
	fn, err := p.expect(tokIdent, "")
	if err != nil {
		return nil, err
	}
	kind, ok := chartKinds[fn.text]
	if !ok {
		return nil, &Error{Pos: fn.pos, Msg: fmt.Sprintf("unsupported chart function px.%s", fn.text)}
	}
	if _, err := p.expect(tokPunct, "("); err != nil {
		return nil, err
	}

	call := &Call{Kind: kind}
	if call.Filter, err = p.parseFrame(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for p.accept(tokPunct, ",") {
		if p.peek().kind == tokPunct && p.peek().text == ")" {
			break // trailing comma
		}
		name, err := p.expect(tokIdent, "")
		if err != nil {
			return nil, err
		}
		if seen[name.text] {
			return nil, &Error{Pos: name.pos, Msg: fmt.Sprintf("duplicate argument %q", name.text)}
		}
		seen[name.text] = true
		if _, err := p.expect(tokPunct, "="); err != nil {
			return nil, err
		}
		val, err := p.expect(tokString, "")
		if err != nil {
			return nil, err
		}
		if err := call.setArg(name, val); err != nil {
			return nil, err
		}
	}
	closing, err := p.expect(tokPunct, ")")
	if err != nil {
		return nil, err
	}

	if call.X == "" {
		return nil, &Error{Pos: closing.pos, Msg: fmt.Sprintf("px.%s requires an x column", fn.text)}
	}
	if call.Y == "" {
		return nil, &Error{Pos: closing.pos, Msg: fmt.Sprintf("px.%s requires a y column", fn.text)}
	}
	return call, nil
}

func (c *Call) setArg(name, val token) error {
	switch name.text {
	case "x", "y":
		if err := checkColumn(val); err != nil {
			return err
		}
		if !domain.IsNumeric(val.text) {
			return &Error{Pos: val.pos, Msg: fmt.Sprintf("column %q is not numeric and cannot be used for %s", val.text, name.text)}
		}
		if name.text == "x" {
			c.X = val.text
		} else {
			c.Y = val.text
		}
	case "color":
		if err := checkColumn(val); err != nil {
			return err
		}
		c.Color = val.text
	case "title":
		c.Title = val.text
	default:
		return &Error{Pos: name.pos, Msg: fmt.Sprintf("unsupported argument %q", name.text)}
	}
	return nil
}

// parseFrame reads the data frame argument and any filter applied to it.
func (p *parser) parseFrame() ([]Predicate, error) {
	if err := p.expectFrameName(); err != nil {
		return nil, err
	}

	switch {
	case p.accept(tokPunct, "."):
		if _, err := p.expect(tokIdent, "query"); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "("); err != nil {
			return nil, err
		}
		q, err := p.expect(tokString, "")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, ")"); err != nil {
			return nil, err
		}
		// +1 skips the opening quote so positions point into the query text.
		return parseQuery(q.text, q.pos+1)

	case p.accept(tokPunct, "["):
		pred, err := p.parseMask()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPunct, "]"); err != nil {
			return nil, err
		}
		return []Predicate{pred}, nil
	}
	return nil, nil
}

func (p *parser) expectFrameName() error {
	t := p.next()
	if t.kind != tokIdent || t.text != FrameName {
		return &Error{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s, expected data frame %s", t.describe(), FrameName)}
	}
	return nil
}

// parseMask reads a boolean mask: df["Col"] op literal or df.Col op literal.
func (p *parser) parseMask() (Predicate, error) {
	if err := p.expectFrameName(); err != nil {
		return Predicate{}, err
	}

	var col token
	var err error
	if p.accept(tokPunct, "[") {
		if col, err = p.expect(tokString, ""); err != nil {
			return Predicate{}, err
		}
		if _, err := p.expect(tokPunct, "]"); err != nil {
			return Predicate{}, err
		}
	} else {
		if _, err := p.expect(tokPunct, "."); err != nil {
			return Predicate{}, err
		}
		if col, err = p.expect(tokIdent, ""); err != nil {
			return Predicate{}, err
		}
	}
	return p.finishPredicate(col)
}

func (p *parser) finishPredicate(col token) (Predicate, error) {
	if err := checkColumn(col); err != nil {
		return Predicate{}, err
	}
	if !filterColumns[col.text] {
		return Predicate{}, &Error{Pos: col.pos, Msg: fmt.Sprintf("column %q cannot be used in a filter", col.text)}
	}
	op := p.next()
	if op.kind != tokOp || !comparisonOps[op.text] {
		return Predicate{}, &Error{Pos: op.pos, Msg: fmt.Sprintf("unexpected %s, expected comparison operator", op.describe())}
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return Predicate{}, err
	}
	pred := Predicate{Column: col.text, Op: op.text, Value: lit, pos: col.pos}
	if err := pred.typeCheck(); err != nil {
		return Predicate{}, err
	}
	return pred, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	t := p.next()
	switch t.kind {
	case tokString:
		return Literal{Str: t.text}, nil
	case tokNumber:
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return Literal{}, &Error{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.text)}
		}
		return Literal{Num: n, IsNum: true}, nil
	}
	return Literal{}, &Error{Pos: t.pos, Msg: fmt.Sprintf("unexpected %s, expected string or number", t.describe())}
}

// parseQuery parses the body of a DataFrame.query string:
// pred { ("and" | "&") pred }.
func parseQuery(query string, offset int) ([]Predicate, error) {
	toks, err := lex(query, offset)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}

	var preds []Predicate
	for {
		col, err := p.expect(tokIdent, "")
		if err != nil {
			return nil, err
		}
		pred, err := p.finishPredicate(col)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)

		if p.accept(tokIdent, "and") || p.accept(tokOp, "&") {
			continue
		}
		if t := p.peek(); t.kind != tokEOF {
			return nil, &Error{Pos: t.pos, Msg: "unexpected " + t.describe() + " in query"}
		}
		return preds, nil
	}
}

// filterColumns are the columns a query or mask may test.
var filterColumns = map[string]bool{
	domain.ColumnRide:  true,
	domain.ColumnYear:  true,
	domain.ColumnMonth: true,
}

func checkColumn(t token) error {
	allowed := (&domain.MonthlyAggregate{}).HasColumn(t.text)
	if !allowed {
		return &Error{Pos: t.pos, Msg: fmt.Sprintf("unknown column %q", t.text)}
	}
	return nil
}

func (pr Predicate) typeCheck() error {
	numeric := domain.IsNumeric(pr.Column)
	switch {
	case numeric && !pr.Value.IsNum:
		return &Error{Pos: pr.pos, Msg: fmt.Sprintf("cannot compare numeric column %q with string %s", pr.Column, pr.Value)}
	case !numeric && pr.Value.IsNum:
		return &Error{Pos: pr.pos, Msg: fmt.Sprintf("cannot compare text column %q with number %s", pr.Column, pr.Value)}
	case !numeric && pr.Op != "==" && pr.Op != "!=":
		return &Error{Pos: pr.pos, Msg: fmt.Sprintf("operator %s is not supported for text column %q", pr.Op, pr.Column)}
	}
	return nil
}
