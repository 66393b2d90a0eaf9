package ast

type NodeType int

const (
	NodeSelect NodeType = iota
	NodeInsert
	NodeUpdate
	NodeDelete
	NodeTable
	NodeSubquery
	NodeJoin
	NodeOrderBy
	NodeLimit
)

type Node interface {
	Type() NodeType
	Accept(v Visitor) error
}

// Source is a FROM or JOIN target.
type Source interface {
	Node
	SourceAlias() string
	SourceName() string
}

// Sourcer is anything that can be placed in FROM or JOIN position, such as an
// alias binding or a subquery binding.
type Sourcer interface {
	Source() Source
}

// SourceRef is the scope entry a source contributes.
func SourceRef(s Source) Ref {
	alias := s.SourceAlias()
	if alias == "" {
		alias = s.SourceName()
	}
	return Ref{Alias: alias, Source: s.SourceName()}
}
