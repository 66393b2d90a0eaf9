package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// =========================================================================
// Snake Case Conversion Tests
// =========================================================================

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"already snake", "product_id", "product_id"},
		{"camel", "productId", "product_id"},
		{"pascal", "FirstName", "first_name"},
		{"trailing acronym", "UserID", "user_id"},
		{"leading acronym", "HTTPServer", "http_server"},
		{"bare ID", "ID", "id"},
		{"digits", "Address2Line", "address2_line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, toSnakeCase(tt.input))
		})
	}
}

// =========================================================================
// Table Naming Tests
// =========================================================================

func TestTableNaming(t *testing.T) {
	plural := DefaultNamingStrategy()
	singular := SingularNamingStrategy()

	tests := []struct {
		structName string
		plural     string
		singular   string
	}{
		{"Order", "orders", "order"},
		{"BlogPost", "blog_posts", "blog_post"},
		{"Category", "categories", "category"},
		{"Person", "people", "person"},
		{"Box", "boxes", "box"},
	}

	for _, tt := range tests {
		t.Run(tt.structName, func(t *testing.T) {
			assert.Equal(t, tt.plural, plural.TableName(tt.structName))
			assert.Equal(t, tt.singular, singular.TableName(tt.structName))
		})
	}
}

func TestColumnNamingAsIs(t *testing.T) {
	strategy := NewColumnNamingStrategy(ColumnAsIs)
	assert.Equal(t, "ProductID", strategy.ColumnName("ProductID"))
}
