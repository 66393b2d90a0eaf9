package ast

import "slices"

type DeleteStmt struct {
	Table     *Table
	Where     Fragment
	Returning []ColumnRef
}

func (s *DeleteStmt) Type() NodeType         { return NodeDelete }
func (s *DeleteStmt) Accept(v Visitor) error { return v.VisitDelete(s) }

func (s *DeleteStmt) Clone() *DeleteStmt {
	c := *s
	c.Returning = slices.Clip(s.Returning)
	return &c
}
