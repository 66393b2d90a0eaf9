package query

import "github.com/Konsultn-Engineering/sqldsl/ast"

// Option is a condition that may be absent. Absent options are dropped by
// AndOpt, OrOpt and the WhereOpt transitions, so optional filters never emit
// an empty clause.
type Option struct {
	cond    ast.Fragment
	present bool
}

func Some(cond ast.Expression) Option {
	return Option{cond: expr(cond), present: true}
}

func None() Option { return Option{} }

// When is Some(fn()) if ok, None otherwise. fn is not called when ok is
// false.
func When(ok bool, fn func() ast.Fragment) Option {
	if !ok {
		return None()
	}
	return Some(fn())
}

// IfPresent builds a condition from *v when v is not nil.
func IfPresent[T any](v *T, fn func(T) ast.Fragment) Option {
	if v == nil {
		return None()
	}
	return Some(fn(*v))
}

// IfNotZero builds a condition from v unless it is the zero value.
func IfNotZero[T comparable](v T, fn func(T) ast.Fragment) Option {
	var zero T
	if v == zero {
		return None()
	}
	return Some(fn(v))
}

func (o Option) IsPresent() bool { return o.present }

func (o Option) Get() (ast.Fragment, bool) { return o.cond, o.present }

// OrElse returns the condition, or def when absent.
func (o Option) OrElse(def ast.Fragment) ast.Fragment {
	if !o.present {
		return def
	}
	return o.cond
}

// AndOpt combines the present options with AND. A single present option is
// returned unchanged; two or more are parenthesized. No present option gives
// None.
func AndOpt(opts ...Option) Option {
	return combineOpts(ast.OpAnd, opts)
}

// OrOpt is AndOpt with OR.
func OrOpt(opts ...Option) Option {
	return combineOpts(ast.OpOr, opts)
}

func combineOpts(op ast.Operator, opts []Option) Option {
	frags := make([]ast.Fragment, 0, len(opts))
	for _, o := range opts {
		if o.present {
			frags = append(frags, o.cond)
		}
	}
	if len(frags) == 0 {
		return None()
	}
	return Option{cond: joinConditions(op, frags), present: true}
}
