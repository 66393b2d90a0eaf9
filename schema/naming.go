package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

// pluralizeClient is shared so every strategy pluralizes the same way.
var pluralizeClient = pluralizer.NewClient()

// =========================================================================
// Core Interfaces
// =========================================================================

// NamingStrategy maps Go identifiers to table and column names.
type NamingStrategy interface {
	ColumnNamingStrategy
	TableNamingStrategy
}

type ColumnNamingStrategy interface {
	ColumnName(fieldName string) string
}

type TableNamingStrategy interface {
	TableName(structName string) string
}

// =========================================================================
// Column Naming Strategies
// =========================================================================

type ColumnNamingType int

const (
	ColumnSnakeCase ColumnNamingType = iota // user_id, first_name
	ColumnAsIs                              // field name unchanged
)

type columnNamingStrategy struct {
	namingType ColumnNamingType
}

func NewColumnNamingStrategy(namingType ColumnNamingType) ColumnNamingStrategy {
	return &columnNamingStrategy{namingType: namingType}
}

func (c *columnNamingStrategy) ColumnName(fieldName string) string {
	if c.namingType == ColumnAsIs {
		return fieldName
	}
	return toSnakeCase(fieldName)
}

// =========================================================================
// Table Naming Strategies
// =========================================================================

type TableNamingType int

const (
	TableSnakeCasePlural   TableNamingType = iota // orders, blog_posts
	TableSnakeCaseSingular                        // order, blog_post
)

type tableNamingStrategy struct {
	namingType TableNamingType
}

func NewTableNamingStrategy(namingType TableNamingType) TableNamingStrategy {
	return &tableNamingStrategy{namingType: namingType}
}

func (t *tableNamingStrategy) TableName(structName string) string {
	snake := toSnakeCase(structName)
	if t.namingType == TableSnakeCaseSingular {
		return snake
	}
	return pluralize(snake)
}

// =========================================================================
// Combined Strategies
// =========================================================================

type CombinedNamingStrategy struct {
	ColumnNamingStrategy
	TableNamingStrategy
}

func NewCombinedNamingStrategy(columns ColumnNamingStrategy, tables TableNamingStrategy) NamingStrategy {
	return &CombinedNamingStrategy{
		ColumnNamingStrategy: columns,
		TableNamingStrategy:  tables,
	}
}

// DefaultNamingStrategy is snake_case columns with plural snake_case tables.
func DefaultNamingStrategy() NamingStrategy {
	return NewCombinedNamingStrategy(
		NewColumnNamingStrategy(ColumnSnakeCase),
		NewTableNamingStrategy(TableSnakeCasePlural),
	)
}

// SingularNamingStrategy keeps table names singular: Order -> order.
func SingularNamingStrategy() NamingStrategy {
	return NewCombinedNamingStrategy(
		NewColumnNamingStrategy(ColumnSnakeCase),
		NewTableNamingStrategy(TableSnakeCaseSingular),
	)
}

// =========================================================================
// Conversion Functions
// =========================================================================

// toSnakeCase converts camelCase, PascalCase and acronyms to snake_case:
// productId -> product_id, HTTPServer -> http_server, UserID -> user_id.
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	switch name {
	case "ID":
		return "id"
	case "UUID":
		return "uuid"
	case "URL":
		return "url"
	}

	if !hasUpperCase(name) {
		return name
	}

	var result strings.Builder
	result.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			// aB -> a_b, a1B -> a1_b, ABc -> a_bc
			if unicode.IsLower(prev) || unicode.IsDigit(prev) ||
				(unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])) {
				result.WriteByte('_')
			}
		}
		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}

func pluralize(name string) string {
	if name == "" {
		return ""
	}

	// Pluralize only the last word of a compound name.
	if i := strings.LastIndexByte(name, '_'); i >= 0 {
		return name[:i+1] + pluralize(name[i+1:])
	}

	switch name {
	case "person":
		return "people"
	case "datum":
		return "data"
	case "criterion":
		return "criteria"
	}

	return strings.ToLower(pluralizeClient.Pluralize(name, 2, false))
}

func hasUpperCase(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}
