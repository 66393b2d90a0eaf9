package ast

import "slices"

type SetOpKind int

const (
	Union SetOpKind = iota
	UnionAll
	Intersect
	Except
)

func (k SetOpKind) Keyword() string {
	switch k {
	case UnionAll:
		return "UNION ALL"
	case Intersect:
		return "INTERSECT"
	case Except:
		return "EXCEPT"
	default:
		return "UNION"
	}
}

type SetOp struct {
	Kind SetOpKind
	Stmt *SelectStmt
}

// SelectStmt is the clause state of a SELECT. An empty Columns list renders
// as *. Names runs parallel to Columns and holds each item's result name
// ("" when the item has none).
//
// OrderBy, Limit and ForUpdate belong to the primary SELECT. SetOrderBy and
// SetLimit apply to the whole compound once SetOps is non-empty; their
// expressions name result columns, never source aliases.
type SelectStmt struct {
	Distinct   bool
	Columns    []Fragment
	Names      []string
	From       Source
	Joins      []*JoinClause
	Where      Fragment
	GroupBy    []Fragment
	Having     Fragment
	OrderBy    []*OrderByClause
	Limit      LimitClause
	SetOps     []SetOp
	SetOrderBy []*OrderByClause
	SetLimit   LimitClause
	ForUpdate  bool
	Correlated []Ref
}

func NewSelectStmt() *SelectStmt {
	return &SelectStmt{}
}

func (s *SelectStmt) Type() NodeType         { return NodeSelect }
func (s *SelectStmt) Accept(v Visitor) error { return v.VisitSelect(s) }

// Clone copies s with every slice clipped, so appending to the copy never
// writes into storage shared with s.
func (s *SelectStmt) Clone() *SelectStmt {
	c := *s
	c.Columns = slices.Clip(s.Columns)
	c.Names = slices.Clip(s.Names)
	c.Joins = slices.Clip(s.Joins)
	c.GroupBy = slices.Clip(s.GroupBy)
	c.OrderBy = slices.Clip(s.OrderBy)
	c.SetOps = slices.Clip(s.SetOps)
	c.SetOrderBy = slices.Clip(s.SetOrderBy)
	c.Correlated = slices.Clip(s.Correlated)
	return &c
}

// Scope lists the aliases that clauses of s may reference.
func (s *SelectStmt) Scope() []Ref {
	refs := make([]Ref, 0, 1+len(s.Joins)+len(s.Correlated))
	if s.From != nil {
		refs = append(refs, SourceRef(s.From))
	}
	for _, j := range s.Joins {
		refs = append(refs, SourceRef(j.Target))
	}
	return append(refs, s.Correlated...)
}

func (s *SelectStmt) InScope(r Ref) bool {
	return slices.Contains(s.Scope(), r)
}

// IsCompound reports whether s needs parentheses when used as a set
// operation operand.
func (s *SelectStmt) IsCompound() bool {
	return s.HasTail() || len(s.SetOps) > 0
}

// HasTail reports whether the primary SELECT has its own ORDER BY, LIMIT,
// OFFSET or FOR UPDATE.
func (s *SelectStmt) HasTail() bool {
	return len(s.OrderBy) > 0 || !s.Limit.IsEmpty() || s.ForUpdate
}
