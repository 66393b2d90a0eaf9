package ast

// LimitClause holds the paging of a SELECT. Nil means absent.
type LimitClause struct {
	Count  *int
	Offset *int
}

func (l *LimitClause) Type() NodeType         { return NodeLimit }
func (l *LimitClause) Accept(v Visitor) error { return v.VisitLimitClause(l) }

func (l *LimitClause) IsEmpty() bool { return l == nil || (l.Count == nil && l.Offset == nil) }
