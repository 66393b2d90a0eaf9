package ast

import "slices"

type Assignment struct {
	Column ColumnRef
	Value  Fragment
}

type UpdateStmt struct {
	Table     *Table
	Set       []Assignment
	Where     Fragment
	Returning []ColumnRef
}

func (s *UpdateStmt) Type() NodeType         { return NodeUpdate }
func (s *UpdateStmt) Accept(v Visitor) error { return v.VisitUpdate(s) }

func (s *UpdateStmt) Clone() *UpdateStmt {
	c := *s
	c.Set = slices.Clip(s.Set)
	c.Returning = slices.Clip(s.Returning)
	return &c
}
