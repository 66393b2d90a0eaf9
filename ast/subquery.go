package ast

// Subquery is a SELECT used as a FROM or JOIN target under Alias.
type Subquery struct {
	Stmt  *SelectStmt
	Alias string
}

func (s *Subquery) Type() NodeType         { return NodeSubquery }
func (s *Subquery) Accept(v Visitor) error { return v.VisitSubquery(s) }
func (s *Subquery) SourceAlias() string    { return s.Alias }

// SourceName is empty: a subquery is only reachable through its alias.
func (s *Subquery) SourceName() string { return "" }
func (s *Subquery) Source() Source     { return s }
