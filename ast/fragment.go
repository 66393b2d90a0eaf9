package ast

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/mitranim/sqlp"
)

type segmentKind uint8

const (
	segText segmentKind = iota
	segIdent
	segParam
)

type segment struct {
	kind segmentKind
	text string
}

// Ref records that a fragment mentions a column through the alias Alias of
// the source named Source. Builders compare refs against their from/join
// scope.
type Ref struct {
	Alias  string
	Source string
}

// Expression is anything that can stand in a SQL expression position.
type Expression interface {
	ToFragment() Fragment
}

// Fragment is an immutable piece of SQL: literal text, identifiers and
// placeholder slots, plus one bound Value per slot in left to right order.
// The zero Fragment is empty and is the identity of Combine.
//
// A Fragment built from bad input carries that error instead of panicking;
// combining propagates the first error so it surfaces wherever the fragment
// is finally used.
type Fragment struct {
	segs   []segment
	params []Value
	refs   []Ref
	err    error
}

func Empty() Fragment { return Fragment{} }

// Fail returns an empty fragment carrying err.
func Fail(err error) Fragment { return Fragment{err: err} }

// Lit is trusted literal SQL text. It is emitted verbatim and never scanned
// for placeholders.
func Lit(text string) Fragment {
	if text == "" {
		return Fragment{}
	}
	return Fragment{segs: []segment{{kind: segText, text: text}}}
}

// Ident renders a dotted identifier such as o.product_id. Each part must be a
// plain SQL identifier.
func Ident(parts ...string) Fragment {
	if len(parts) == 0 {
		return Fail(Errorf(ErrCodeInvalidArgument, "building identifier", "empty identifier"))
	}
	segs := make([]segment, 0, len(parts)*2-1)
	for i, p := range parts {
		if !IsIdent(p) {
			return Fail(Errorf(ErrCodeInvalidArgument, "building identifier", "invalid identifier %q", p))
		}
		if i > 0 {
			segs = append(segs, segment{kind: segText, text: "."})
		}
		segs = append(segs, segment{kind: segIdent, text: p})
	}
	return Fragment{segs: segs}
}

// Param binds v behind a single placeholder.
func Param(v any) Fragment {
	val, err := NewValue(v)
	if err != nil {
		return Fail(err)
	}
	return Fragment{segs: []segment{{kind: segParam}}, params: []Value{val}}
}

// Raw builds a fragment from hand written SQL using ? placeholders. Question
// marks inside quoted strings, quoted identifiers and comments are not
// placeholders. A param that is itself an Expression is spliced in place of
// its placeholder together with its own params.
func Raw(text string, params ...any) (Fragment, error) {
	const while = "building raw fragment"

	var (
		parts []Fragment
		buf   strings.Builder
		slots int
	)
	flush := func() {
		if buf.Len() > 0 {
			parts = append(parts, Lit(buf.String()))
			buf.Reset()
		}
	}

	tokenizer := sqlp.Tokenizer{Source: text}
	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeText:
			s := string(node)
			for {
				i := strings.IndexByte(s, '?')
				if i < 0 {
					buf.WriteString(s)
					break
				}
				buf.WriteString(s[:i])
				flush()
				if slots < len(params) {
					parts = append(parts, bindOrSplice(params[slots]))
				}
				slots++
				s = s[i+1:]
			}

		case sqlp.NodeOrdinalParam, sqlp.NodeNamedParam:
			return Fragment{}, Errorf(ErrCodeMalformedFragment, while,
				"only ? placeholders are supported, found %v", node)

		default:
			var chunk []byte
			node.Append(&chunk)
			buf.Write(chunk)
		}
	}
	flush()

	if slots != len(params) {
		return Fragment{}, Errorf(ErrCodeMalformedFragment, while,
			"%d placeholders but %d params in %q", slots, len(params), text)
	}

	out := Combine(parts...)
	if err := out.err; err != nil {
		return Fragment{}, NewErr(ErrCodeMalformedFragment, while, err)
	}
	return out, nil
}

// MustRaw is Raw for literals known at compile time.
func MustRaw(text string, params ...any) Fragment {
	f, err := Raw(text, params...)
	if err != nil {
		panic(err)
	}
	return f
}

func bindOrSplice(v any) Fragment {
	if e, ok := v.(Expression); ok {
		return e.ToFragment()
	}
	return Param(v)
}

// Combine concatenates fragments in order.
func Combine(frags ...Fragment) Fragment {
	var ns, np, nr int
	for _, f := range frags {
		ns += len(f.segs)
		np += len(f.params)
		nr += len(f.refs)
	}

	var out Fragment
	if ns > 0 {
		out.segs = make([]segment, 0, ns)
	}
	if np > 0 {
		out.params = make([]Value, 0, np)
	}
	if nr > 0 {
		out.refs = make([]Ref, 0, nr)
	}
	for _, f := range frags {
		if out.err == nil {
			out.err = f.err
		}
		out.segs = append(out.segs, f.segs...)
		out.params = append(out.params, f.params...)
		out.refs = append(out.refs, f.refs...)
	}
	return out
}

// Append returns f followed by others.
func (f Fragment) Append(others ...Fragment) Fragment {
	return Combine(append([]Fragment{f}, others...)...)
}

// Join combines the non-empty fragments with sep between them. Errors on
// empty fragments are still propagated.
func Join(sep string, frags ...Fragment) Fragment {
	parts := make([]Fragment, 0, len(frags)*2)
	for _, f := range frags {
		if f.IsEmpty() {
			if f.err != nil {
				parts = append(parts, f)
			}
			continue
		}
		if len(parts) > 0 {
			parts = append(parts, Lit(sep))
		}
		parts = append(parts, f)
	}
	return Combine(parts...)
}

func Parens(f Fragment) Fragment {
	return Combine(Lit("("), f, Lit(")"))
}

func (f Fragment) ToFragment() Fragment { return f }

func (f Fragment) IsEmpty() bool { return len(f.segs) == 0 }

func (f Fragment) Err() error { return f.err }

func (f Fragment) NumParams() int { return len(f.params) }

// Values returns a copy of the bound values.
func (f Fragment) Values() []Value {
	if len(f.params) == 0 {
		return nil
	}
	return append([]Value(nil), f.params...)
}

// Params returns the bound values as driver arguments.
func (f Fragment) Params() []any {
	if len(f.params) == 0 {
		return nil
	}
	out := make([]any, len(f.params))
	for i, p := range f.params {
		out[i] = p.Val
	}
	return out
}

func (f Fragment) Refs() []Ref {
	if len(f.refs) == 0 {
		return nil
	}
	return append([]Ref(nil), f.refs...)
}

// WithRefs replaces the alias references carried by f.
func (f Fragment) WithRefs(refs ...Ref) Fragment {
	if len(refs) == 0 {
		f.refs = nil
		return f
	}
	f.refs = append([]Ref(nil), refs...)
	return f
}

// WithErr attaches err unless f already carries one.
func (f Fragment) WithErr(err error) Fragment {
	if f.err == nil {
		f.err = err
	}
	return f
}

// Template renders f with ? placeholders and unquoted identifiers.
func (f Fragment) Template() string {
	return f.SQL(nil, nil)
}

func (f Fragment) String() string { return f.Template() }

// SQL renders f with placeholder(n) for the nth slot (1-based) and quote for
// identifiers. Nil functions fall back to ? and the bare identifier.
func (f Fragment) SQL(placeholder func(n int) string, quote func(string) string) string {
	var b strings.Builder
	n := 0
	for _, s := range f.segs {
		switch s.kind {
		case segText:
			b.WriteString(s.text)
		case segIdent:
			if quote != nil {
				b.WriteString(quote(s.text))
			} else {
				b.WriteString(s.text)
			}
		case segParam:
			n++
			if placeholder != nil {
				b.WriteString(placeholder(n))
			} else {
				b.WriteByte('?')
			}
		}
	}
	return b.String()
}

// Fingerprint identifies the shape of f. Bound values do not contribute, so
// two renders that differ only in parameters share a fingerprint.
func (f Fragment) Fingerprint() uint64 {
	d := xxhash.New()
	for _, s := range f.segs {
		_, _ = d.Write([]byte{byte(s.kind)})
		_, _ = d.WriteString(s.text)
	}
	return d.Sum64()
}

// IsIdent reports whether s is a plain SQL identifier: a letter or
// underscore followed by letters, digits, underscores or dollar signs.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '$' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
