package dialect

import "strings"

// reserved holds words that are reserved in at least one supported dialect
// and commonly collide with table or column names.
var reserved = map[string]struct{}{
	"all": {}, "and": {}, "as": {}, "asc": {}, "between": {}, "by": {}, "case": {},
	"check": {}, "column": {}, "constraint": {}, "create": {}, "cross": {},
	"current_date": {}, "current_time": {}, "current_user": {}, "default": {},
	"delete": {}, "desc": {}, "distinct": {}, "drop": {}, "else": {}, "end": {},
	"except": {}, "exists": {}, "false": {}, "fetch": {}, "for": {}, "foreign": {},
	"from": {}, "full": {}, "grant": {}, "group": {}, "having": {}, "in": {},
	"index": {}, "inner": {}, "insert": {}, "intersect": {}, "into": {}, "is": {},
	"join": {}, "key": {}, "left": {}, "like": {}, "limit": {}, "natural": {},
	"not": {}, "null": {}, "offset": {}, "on": {}, "or": {}, "order": {},
	"outer": {}, "primary": {}, "references": {}, "right": {}, "select": {},
	"session_user": {}, "table": {}, "then": {}, "to": {}, "true": {},
	"union": {}, "unique": {}, "update": {}, "user": {}, "using": {},
	"values": {}, "when": {}, "where": {}, "with": {},
}

func IsReserved(word string) bool {
	_, ok := reserved[strings.ToLower(word)]
	return ok
}
