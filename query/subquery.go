package query

import (
	"strings"

	"github.com/Konsultn-Engineering/sqldsl/ast"
)

// SubqueryBinding is a SELECT bound to an alias so it can stand in FROM or
// JOIN position. Its columns are referenced through Col like those of an
// alias binding.
type SubqueryBinding struct {
	sb    SelectBuilder
	alias string
	err   error
}

func newSubqueryBinding(sb SelectBuilder, alias string) SubqueryBinding {
	b := SubqueryBinding{sb: sb, alias: alias, err: sb.Err()}
	if b.err == nil && !ast.IsIdent(alias) {
		b.err = ast.Errorf(ast.ErrCodeInvalidArgument, "binding subquery", "invalid alias %q", alias)
	}
	return b
}

func (b SubqueryBinding) Alias() string { return b.alias }

func (b SubqueryBinding) Err() error { return b.err }

func (b SubqueryBinding) Source() ast.Source {
	if b.err != nil {
		return nil
	}
	return &ast.Subquery{Stmt: b.sb.stmt, Alias: b.alias}
}

// ToFragment renders the inner query parenthesized, without the alias.
func (b SubqueryBinding) ToFragment() ast.Fragment {
	if b.err != nil {
		return ast.Fail(b.err)
	}
	return b.sb.ToFragment()
}

// Col references an output column of the subquery. When the inner
// projection is explicit and fully named, unknown names are rejected.
func (b SubqueryBinding) Col(name string) ast.ColumnRef {
	ref := ast.NewColumnRef(b.alias, "", name)
	if b.err != nil {
		ref.Err = b.err
		return ref
	}
	if names := b.outputNames(); names != nil {
		for _, n := range names {
			if n == name {
				return ref
			}
		}
		ref.Err = ast.Errorf(ast.ErrCodeInvalidArgument, "resolving column",
			"subquery %q has no output column %q", b.alias, name)
	}
	return ref
}

// outputNames lists the column names the inner query produces, or nil when
// they cannot all be known (SELECT * or unnamed expressions).
func (b SubqueryBinding) outputNames() []string {
	names := b.sb.ResultNames()
	if len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			return nil
		}
		if dot := strings.LastIndexByte(n, '.'); dot >= 0 {
			n = n[dot+1:]
		}
		out[i] = n
	}
	return out
}
