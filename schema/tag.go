package schema

import (
	"reflect"
	"strings"

	"github.com/mitranim/refut"
)

// ParsedTag is the mapping declared by a `db` struct tag.
//
// Tag format is either a bare column name (`db:"product_id"`, with
// database/sql style ",options" ignored) or a list of options:
// `db:"column:id;generator:ulid"`. `db:"-"` skips the field.
type ParsedTag struct {
	ColumnName string
	Skip       bool
	Primary    bool
	Generator  string
}

const tagName = "db"

func parseTag(field reflect.StructField, naming ColumnNamingStrategy) ParsedTag {
	value, ok := field.Tag.Lookup(tagName)
	if !ok || value == "" {
		return ParsedTag{ColumnName: naming.ColumnName(field.Name)}
	}
	if value == "-" {
		return ParsedTag{Skip: true}
	}

	if !strings.ContainsAny(value, ";:") {
		name := refut.TagIdent(value)
		if name == "" {
			name = naming.ColumnName(field.Name)
		}
		return ParsedTag{ColumnName: name}
	}

	parsed := ParsedTag{ColumnName: naming.ColumnName(field.Name)}
	for _, option := range strings.Split(value, ";") {
		option = strings.TrimSpace(option)
		key, val, hasVal := strings.Cut(option, ":")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)

		switch {
		case key == "column" || key == "name":
			parsed.ColumnName = val
		case key == "generator" || key == "gen":
			parsed.Generator = val
		case !hasVal && (key == "primary" || key == "primary_key"):
			parsed.Primary = true
		default:
			// Unknown options are ignored for forward compatibility.
		}
	}
	return parsed
}
