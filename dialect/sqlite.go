package dialect

import "fmt"

type SQLite struct {
	Postgres
}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Placeholder(n int) string { return "?" }

func (SQLite) RenderValue(v any) string {
	if s, ok := renderLiteral(v); ok {
		return s
	}
	return fmt.Sprintf("X'%x'", v)
}
