package dialect

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// renderLiteral covers the cases every dialect spells the same way. It
// reports false for byte slices, whose syntax differs.
func renderLiteral(v any) (string, bool) {
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		if err != nil {
			return quoteString(fmt.Sprint(v)), true
		}
		v = dv
	}

	switch val := v.(type) {
	case nil:
		return "NULL", true
	case string:
		return quoteString(val), true
	case bool:
		if val {
			return "TRUE", true
		}
		return "FALSE", true
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000000") + "'", true
	case []byte:
		return "", false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	case reflect.String:
		return quoteString(rv.String()), true
	case reflect.Bool:
		if rv.Bool() {
			return "TRUE", true
		}
		return "FALSE", true
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", true
		}
		return renderLiteral(rv.Elem().Interface())
	}
	return quoteString(fmt.Sprint(v)), true
}
