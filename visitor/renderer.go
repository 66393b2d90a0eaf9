package visitor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Konsultn-Engineering/sqldsl/ast"
	"github.com/Konsultn-Engineering/sqldsl/cache"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
	"github.com/Konsultn-Engineering/sqldsl/utils"
)

// QuotePolicy decides which identifiers the final SQL quotes.
type QuotePolicy int

const (
	QuoteNever QuotePolicy = iota
	QuoteReserved
	QuoteAlways
)

func ParseQuotePolicy(s string) (QuotePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never":
		return QuoteNever, nil
	case "reserved":
		return QuoteReserved, nil
	case "always":
		return QuoteAlways, nil
	default:
		return QuoteNever, fmt.Errorf("unknown quote policy %q", s)
	}
}

// Renderer turns rendered fragments into dialect SQL text. The finalized
// text of each fragment shape is memoized in an optional QueryCache.
type Renderer struct {
	dialect dialect.Dialect
	qcache  cache.QueryCache
	quote   QuotePolicy
	key     uint64
}

type Option func(*Renderer)

func WithCache(c cache.QueryCache) Option {
	return func(r *Renderer) { r.qcache = c }
}

func WithQuotePolicy(p QuotePolicy) Option {
	return func(r *Renderer) { r.quote = p }
}

func NewRenderer(d dialect.Dialect, opts ...Option) *Renderer {
	if d == nil {
		d = dialect.NewPostgresDialect()
	}
	r := &Renderer{dialect: d}
	for _, opt := range opts {
		opt(r)
	}
	r.key = utils.Fingerprint(d.Name(), strconv.Itoa(int(r.quote)))
	return r
}

func (r *Renderer) Dialect() dialect.Dialect { return r.dialect }

// Build renders root and finalizes it for the dialect.
func (r *Renderer) Build(root ast.Node) (string, []any, error) {
	f, err := Render(root)
	if err != nil {
		return "", nil, err
	}
	return r.Finalize(f)
}

// Finalize numbers placeholders and quotes identifiers. The returned text
// has exactly len(args) placeholders.
func (r *Renderer) Finalize(f ast.Fragment) (string, []any, error) {
	if err := f.Err(); err != nil {
		return "", nil, err
	}
	args := f.Params()

	if r.qcache == nil {
		return f.SQL(r.dialect.Placeholder, r.quoteFunc()), args, nil
	}

	fp := utils.Mix64(f.Fingerprint(), r.key)
	if cached, ok := r.qcache.GetSQL(fp); ok && cached.NumParams == f.NumParams() {
		return cached.SQL, args, nil
	}

	sql := f.SQL(r.dialect.Placeholder, r.quoteFunc())
	r.qcache.SetSQL(fp, &cache.CachedQuery{SQL: sql, NumParams: f.NumParams()})
	return sql, args, nil
}

// Interpolate inlines bound values as literals. The result is for logs and
// debugging and must never be executed.
func (r *Renderer) Interpolate(f ast.Fragment) string {
	vals := f.Values()
	return f.SQL(func(n int) string {
		return r.dialect.RenderValue(vals[n-1].Val)
	}, r.quoteFunc())
}

func (r *Renderer) quoteFunc() func(string) string {
	switch r.quote {
	case QuoteAlways:
		return r.dialect.QuoteIdentifier
	case QuoteReserved:
		return func(name string) string {
			if dialect.IsReserved(name) {
				return r.dialect.QuoteIdentifier(name)
			}
			return name
		}
	default:
		return nil
	}
}

// Build renders root for d. Without WithCache nothing is memoized.
func Build(root ast.Node, d dialect.Dialect, opts ...Option) (string, []any, error) {
	return NewRenderer(d, opts...).Build(root)
}
