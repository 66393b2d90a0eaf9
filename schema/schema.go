package schema

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitranim/refut"
)

// TableNamer lets a struct override the table name its naming strategy
// would derive.
type TableNamer interface {
	TableName() string
}

// Context derives entities from struct types and caches them per type.
type Context struct {
	namingStrategy NamingStrategy
	generators     *GeneratorRegistry
	schemaName     string

	entityCache *lru.Cache[reflect.Type, *Entity]
	cacheSize   int
	onEvict     func(reflect.Type, *Entity)
}

type Option func(*Context)

// WithNamingStrategy sets the naming strategy for table and column names.
func WithNamingStrategy(strategy NamingStrategy) Option {
	return func(ctx *Context) { ctx.namingStrategy = strategy }
}

// WithGenerators sets the registry used to resolve `generator:` tag options.
func WithGenerators(registry *GeneratorRegistry) Option {
	return func(ctx *Context) { ctx.generators = registry }
}

// WithSchema qualifies every derived table with a database schema.
func WithSchema(name string) Option {
	return func(ctx *Context) { ctx.schemaName = name }
}

// WithCacheSize sets the LRU cache size for derived entities.
func WithCacheSize(size int) Option {
	return func(ctx *Context) { ctx.cacheSize = size }
}

// WithEvictionCallback sets a callback function for cache eviction events.
func WithEvictionCallback(onEvict func(reflect.Type, *Entity)) Option {
	return func(ctx *Context) { ctx.onEvict = onEvict }
}

func New(options ...Option) *Context {
	ctx := &Context{
		namingStrategy: DefaultNamingStrategy(),
		generators:     defaultRegistry,
		cacheSize:      256,
	}

	for _, opt := range options {
		opt(ctx)
	}

	cache, err := lru.NewWithEvict(ctx.cacheSize, ctx.onEvict)
	if err != nil {
		// Only a non-positive size fails; fall back to the default.
		cache, _ = lru.NewWithEvict(256, ctx.onEvict)
	}
	ctx.entityCache = cache

	return ctx
}

var defaultContext = New()

// EntityOf derives the entity of struct type T using the default context.
func EntityOf[T any]() (*Entity, error) {
	return defaultContext.EntityOf(reflect.TypeFor[T]())
}

// MustEntityOf is EntityOf for types known to be valid.
func MustEntityOf[T any]() *Entity {
	e, err := EntityOf[T]()
	if err != nil {
		panic(err)
	}
	return e
}

// EntityOf derives the entity of a struct type. Exported fields map to
// columns through the `db` tag or the naming strategy; embedded structs are
// flattened.
func (c *Context) EntityOf(typ reflect.Type) (*Entity, error) {
	typ = refut.RtypeDeref(typ)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: expected struct type, got %v", typ)
	}

	if e, ok := c.entityCache.Get(typ); ok {
		return e, nil
	}

	e, err := c.build(typ)
	if err != nil {
		return nil, err
	}
	c.entityCache.Add(typ, e)
	return e, nil
}

func (c *Context) build(typ reflect.Type) (*Entity, error) {
	table := c.namingStrategy.TableName(typ.Name())
	if namer, ok := reflect.New(typ).Interface().(TableNamer); ok {
		table = namer.TableName()
	}

	var columns []Column
	err := refut.TraverseStructRtype(typ, func(field reflect.StructField, path []int) error {
		if !field.IsExported() || field.Anonymous {
			return nil
		}

		tag := parseTag(field, c.namingStrategy)
		if tag.Skip {
			return nil
		}

		col := Column{
			Name:    tag.ColumnName,
			Field:   field.Name,
			Index:   append([]int(nil), path...),
			Primary: tag.Primary,
		}
		if tag.Generator != "" {
			gen, ok := c.generators.Get(tag.Generator)
			if !ok {
				return fmt.Errorf("schema: unknown generator %q on %v.%s", tag.Generator, typ, field.Name)
			}
			col.Generator = gen
		}
		columns = append(columns, col)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e, err := newEntity(c.schemaName, table, columns)
	if err != nil {
		return nil, fmt.Errorf("schema: %v: %w", typ, err)
	}
	return e, nil
}

// Len reports the number of cached entities.
func (c *Context) Len() int {
	return c.entityCache.Len()
}
