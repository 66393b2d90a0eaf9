package ast

// ColumnRef names a column of a bound source. It renders as
// Qualifier.Name, and as Qualifier.Name AS ResultAlias in a projection.
type ColumnRef struct {
	Qualifier   string
	Source      string
	Name        string
	ResultAlias string
	Err         error
}

func NewColumnRef(qualifier, source, name string) ColumnRef {
	return ColumnRef{Qualifier: qualifier, Source: source, Name: name}
}

func (c ColumnRef) ToFragment() Fragment {
	if c.Err != nil {
		return Fail(c.Err)
	}
	if c.Qualifier == "" {
		return Ident(c.Name)
	}
	return Ident(c.Qualifier, c.Name).WithRefs(Ref{Alias: c.Qualifier, Source: c.Source})
}

// Unqualified renders the bare column name, as INSERT column lists and
// UPDATE SET targets require.
func (c ColumnRef) Unqualified() Fragment {
	if c.Err != nil {
		return Fail(c.Err)
	}
	return Ident(c.Name)
}

func (c ColumnRef) As(alias string) ColumnRef {
	c.ResultAlias = alias
	return c
}

// Result aliases the column as qualifier_name so that a row mapper can find it
// unambiguously even when several sources share column names.
func (c ColumnRef) Result() ColumnRef {
	if c.Qualifier == "" {
		return c.As(c.Name)
	}
	return c.As(c.Qualifier + "_" + c.Name)
}

func (c ColumnRef) ResultName() string {
	if c.ResultAlias != "" {
		return c.ResultAlias
	}
	if c.Qualifier == "" {
		return c.Name
	}
	return c.Qualifier + "." + c.Name
}

func (c ColumnRef) ProjectionFragment() Fragment {
	if c.ResultAlias == "" {
		return c.ToFragment()
	}
	return Combine(c.ToFragment(), Lit(" AS "), Ident(c.ResultAlias))
}

// Projection is an expression with a stable result name.
type Projection interface {
	Expression
	ProjectionFragment() Fragment
	ResultName() string
}
