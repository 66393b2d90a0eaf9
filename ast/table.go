package ast

type Table struct {
	Schema string
	Name   string
	Alias  string
}

func NewTable(schema, name, alias string) *Table {
	return &Table{Schema: schema, Name: name, Alias: alias}
}

func (t *Table) Type() NodeType         { return NodeTable }
func (t *Table) Accept(v Visitor) error { return v.VisitTable(t) }
func (t *Table) SourceAlias() string    { return t.Alias }
func (t *Table) SourceName() string     { return t.Name }
func (t *Table) Source() Source         { return t }

// Qualified renders schema.name, or just name.
func (t *Table) Qualified() Fragment {
	if t.Schema != "" {
		return Ident(t.Schema, t.Name)
	}
	return Ident(t.Name)
}

// Fragment renders the table reference with its alias: order AS o.
func (t *Table) Fragment() Fragment {
	if t.Alias == "" || t.Alias == t.Name {
		return t.Qualified()
	}
	return Combine(t.Qualified(), Lit(" AS "), Ident(t.Alias))
}
