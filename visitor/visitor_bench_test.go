package visitor

import (
	"testing"

	"github.com/Konsultn-Engineering/sqldsl/cache"
	"github.com/Konsultn-Engineering/sqldsl/dialect"
)

func BenchmarkRender(b *testing.B) {
	stmt := orderStmt()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Render(stmt)
	}
}

func BenchmarkBuild(b *testing.B) {
	r := NewRenderer(dialect.NewPostgresDialect())
	stmt := orderStmt()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Build(stmt)
	}
}

func BenchmarkBuildCached(b *testing.B) {
	r := NewRenderer(dialect.NewPostgresDialect(), WithCache(cache.NewQueryCache(64)))
	stmt := orderStmt()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = r.Build(stmt)
	}
}
