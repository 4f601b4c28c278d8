package chartexpr

import (
	"errors"
	"math"
	"strings"

	"github.com/alexanderramin/ridewait/internal/domain"
)

// Evaluate parses code and applies it to table.
func Evaluate(code string, table *domain.MonthlyAggregate) (*domain.Figure, error) {
	call, err := Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	return call.Apply(table)
}

// Interpret evaluates code and substitutes a placeholder figure carrying the
// error message when evaluation fails.
func Interpret(code string, table *domain.MonthlyAggregate) domain.Figure {
	fig, err := Evaluate(code, table)
	if err != nil {
		return Placeholder(err)
	}
	return *fig
}

// Placeholder returns an empty figure whose title reports err.
func Placeholder(err error) domain.Figure {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return domain.Figure{
		Kind:  domain.ChartLine,
		Title: domain.PlaceholderPrefix + msg + domain.PlaceholderSuffix,
	}
}

// Apply filters the table and groups the remaining rows into series.
func (c *Call) Apply(table *domain.MonthlyAggregate) (*domain.Figure, error) {
	if table == nil {
		return nil, &Error{Pos: -1, Msg: "no data loaded"}
	}

	fig := &domain.Figure{
		Kind:       c.Kind,
		Title:      c.Title,
		XLabel:     c.X,
		YLabel:     c.Y,
		ColorLabel: c.Color,
	}

	index := map[string]int{}
	for _, row := range table.Rows {
		keep, err := c.matches(row)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}

		name := c.Y
		if c.Color != "" {
			_, label, _, err := row.Value(c.Color)
			if err != nil {
				return nil, columnError(err)
			}
			name = label
		}
		x, _, _, err := row.Value(c.X)
		if err != nil {
			return nil, columnError(err)
		}
		y, _, _, err := row.Value(c.Y)
		if err != nil {
			return nil, columnError(err)
		}

		i, ok := index[name]
		if !ok {
			i = len(fig.Series)
			index[name] = i
			fig.Series = append(fig.Series, domain.Series{Name: name})
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		s := &fig.Series[i]
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}
	return fig, nil
}

func (c *Call) matches(row domain.MonthlyRow) (bool, error) {
	for _, pred := range c.Filter {
		ok, err := pred.eval(row)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (pr Predicate) eval(row domain.MonthlyRow) (bool, error) {
	num, label, numeric, err := row.Value(pr.Column)
	if err != nil {
		return false, columnError(err)
	}
	if !numeric {
		eq := label == pr.Value.Str
		if pr.Op == "!=" {
			return !eq, nil
		}
		return eq, nil
	}
	if math.IsNaN(num) {
		return pr.Op == "!=", nil
	}
	v := pr.Value.Num
	switch pr.Op {
	case "==":
		return num == v, nil
	case "!=":
		return num != v, nil
	case "<":
		return num < v, nil
	case "<=":
		return num <= v, nil
	case ">":
		return num > v, nil
	case ">=":
		return num >= v, nil
	}
	return false, &Error{Pos: pr.pos, Msg: "unsupported operator " + pr.Op}
}

func columnError(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Pos: -1, Msg: err.Error()}
}
