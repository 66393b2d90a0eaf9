package ast

type Visitor interface {
	VisitSelect(stmt *SelectStmt) error
	VisitInsert(stmt *InsertStmt) error
	VisitUpdate(stmt *UpdateStmt) error
	VisitDelete(stmt *DeleteStmt) error
	VisitTable(t *Table) error
	VisitSubquery(s *Subquery) error
	VisitJoinClause(clause *JoinClause) error
	VisitOrderByClause(clause *OrderByClause) error
	VisitLimitClause(clause *LimitClause) error
}
