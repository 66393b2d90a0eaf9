package ast

import "slices"

// InsertStmt holds either Rows or Select, never both.
type InsertStmt struct {
	Table     *Table
	Columns   []ColumnRef
	Rows      [][]Fragment
	Select    *SelectStmt
	Returning []ColumnRef
}

func (s *InsertStmt) Type() NodeType         { return NodeInsert }
func (s *InsertStmt) Accept(v Visitor) error { return v.VisitInsert(s) }

func (s *InsertStmt) Clone() *InsertStmt {
	c := *s
	c.Columns = slices.Clip(s.Columns)
	c.Rows = slices.Clip(s.Rows)
	c.Returning = slices.Clip(s.Returning)
	return &c
}
