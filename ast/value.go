package ast

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"time"
)

type ValueType uint8

const (
	ValueNull ValueType = iota
	ValueBool
	ValueInt
	ValueUint
	ValueFloat
	ValueString
	ValueTime
	ValueBytes
	ValueValuer
)

func (t ValueType) String() string {
	switch t {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueUint:
		return "uint"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueTime:
		return "time"
	case ValueBytes:
		return "bytes"
	case ValueValuer:
		return "valuer"
	default:
		return fmt.Sprintf("ValueType(%d)", uint8(t))
	}
}

// Value is a bind parameter. Val is kept exactly as the caller supplied it so
// drivers see their native types; Type only records which variant it is.
type Value struct {
	Val  any
	Type ValueType
}

func Null() Value { return Value{Type: ValueNull} }

func (v Value) IsNull() bool { return v.Type == ValueNull }

// NewValue classifies v. Nil pointers become Null, other pointers are
// dereferenced. Collections and other composite kinds are rejected unless
// they implement driver.Valuer.
func NewValue(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Value{Val: x, Type: ValueBool}, nil
	case int, int8, int16, int32, int64:
		return Value{Val: x, Type: ValueInt}, nil
	case uint, uint8, uint16, uint32, uint64:
		return Value{Val: x, Type: ValueUint}, nil
	case float32, float64:
		return Value{Val: x, Type: ValueFloat}, nil
	case string:
		return Value{Val: x, Type: ValueString}, nil
	case time.Time:
		return Value{Val: x, Type: ValueTime}, nil
	case []byte:
		if x == nil {
			return Null(), nil
		}
		return Value{Val: x, Type: ValueBytes}, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null(), nil
		}
		if _, ok := v.(driver.Valuer); !ok {
			return NewValue(rv.Elem().Interface())
		}
	}
	if _, ok := v.(driver.Valuer); ok {
		return Value{Val: v, Type: ValueValuer}, nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Value{Val: v, Type: ValueBool}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{Val: v, Type: ValueInt}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{Val: v, Type: ValueUint}, nil
	case reflect.Float32, reflect.Float64:
		return Value{Val: v, Type: ValueFloat}, nil
	case reflect.String:
		return Value{Val: v, Type: ValueString}, nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Value{Val: v, Type: ValueBytes}, nil
		}
	}

	return Value{}, Errorf(ErrCodeInvalidArgument, "classifying bind value", "unsupported value type %T", v)
}
