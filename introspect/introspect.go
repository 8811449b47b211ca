package introspect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TableSchema is the live structure of one table as read from the catalog.
type TableSchema struct {
	TableName   string
	Fields      []Field
	Indexes     []Index
	Constraints []Constraint
}

type Field struct {
	Name     string
	Type     string // normalized, e.g. VARCHAR, TIMESTAMP
	Nullable bool
	Default  *string
}

type Index struct {
	Name   string
	Fields []string
	Unique bool
}

type Constraint struct {
	Name   string
	Type   string // PRIMARY KEY, UNIQUE, FOREIGN KEY, CHECK
	Fields []string
}

type ForeignKey struct {
	ConstraintName   string
	ColumnName       string
	ReferencedTable  string
	ReferencedColumn string
	OnDelete         string
	OnUpdate         string
}

// TableStats carries planner-estimated size figures; RowEstimate comes from
// pg_class statistics, not a live count.
type TableStats struct {
	TableName   string
	RowEstimate int64
	TotalSize   int64
	IndexSize   int64
}

// DefaultSystemTables are catalog tables that never correspond to a
// declared collection and are excluded from orphan detection.
var DefaultSystemTables = map[string]bool{
	"schema_migrations":  true,
	"migrations":         true,
	"spatial_ref_sys":    true,
	"pg_stat_statements": true,
}

// DefaultCatalogTypes maps the catalog's verbose native type names onto a
// normalized vocabulary. Unrecognized names pass through uppercased.
func DefaultCatalogTypes() map[string]string {
	return map[string]string{
		"character varying":           "VARCHAR",
		"character":                   "CHAR",
		"text":                        "TEXT",
		"integer":                     "INTEGER",
		"bigint":                      "BIGINT",
		"smallint":                    "SMALLINT",
		"numeric":                     "NUMERIC",
		"real":                        "REAL",
		"double precision":            "DOUBLE PRECISION",
		"boolean":                     "BOOLEAN",
		"timestamp without time zone": "TIMESTAMP",
		"timestamp with time zone":    "TIMESTAMPTZ",
		"time without time zone":      "TIME",
		"time with time zone":         "TIMETZ",
		"date":                        "DATE",
		"json":                        "JSON",
		"jsonb":                       "JSONB",
		"uuid":                        "UUID",
		"bytea":                       "BYTEA",
	}
}

// Inspector reads table structure from the live catalog. All operations
// are read-only and fail fast: any query error is wrapped with operation
// context and propagated, never swallowed.
type Inspector struct {
	pool       *pgxpool.Pool
	schemaName string
	types      map[string]string
	logger     *zap.Logger
}

func NewInspector(pool *pgxpool.Pool, logger *zap.Logger) *Inspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inspector{
		pool:       pool,
		schemaName: "public",
		types:      DefaultCatalogTypes(),
		logger:     logger,
	}
}

// WithSchema targets a schema other than public.
func (in *Inspector) WithSchema(name string) *Inspector {
	in.schemaName = name
	return in
}

// WithCatalogTypes replaces the native-to-normalized type table, for
// catalogs with a different native vocabulary.
func (in *Inspector) WithCatalogTypes(types map[string]string) *Inspector {
	in.types = types
	return in
}

// Schema returns the working schema name.
func (in *Inspector) Schema() string {
	return in.schemaName
}

// GetTableSchema fetches fields, indexes and constraints for one table.
// The three catalog queries run concurrently; if any fails the whole call
// fails with the underlying cause, never a partial result. A table that
// does not exist yields empty lists, not an error.
func (in *Inspector) GetTableSchema(ctx context.Context, tableName string) (*TableSchema, error) {
	ts := &TableSchema{TableName: tableName}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fields, err := in.getFields(gctx, tableName)
		if err != nil {
			return fmt.Errorf("introspecting fields for table %s: %w", tableName, err)
		}
		ts.Fields = fields
		return nil
	})
	g.Go(func() error {
		indexes, err := in.getIndexes(gctx, tableName)
		if err != nil {
			return fmt.Errorf("introspecting indexes for table %s: %w", tableName, err)
		}
		ts.Indexes = indexes
		return nil
	})
	g.Go(func() error {
		constraints, err := in.getConstraints(gctx, tableName)
		if err != nil {
			return fmt.Errorf("introspecting constraints for table %s: %w", tableName, err)
		}
		ts.Constraints = constraints
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.logger.Debug("introspected table",
		zap.String("table", tableName),
		zap.Int("fields", len(ts.Fields)),
		zap.Int("indexes", len(ts.Indexes)),
		zap.Int("constraints", len(ts.Constraints)))
	return ts, nil
}

func (in *Inspector) getFields(ctx context.Context, tableName string) ([]Field, error) {
	query := `
	SELECT column_name, data_type, (is_nullable = 'YES'), column_default
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
	ORDER BY ordinal_position;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var fields []Field
	for rows.Next() {
		var f Field
		var nativeType string
		if err := rows.Scan(&f.Name, &nativeType, &f.Nullable, &f.Default); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		f.Type = in.normalizeType(nativeType)
		fields = append(fields, f)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %w", rows.Err())
	}
	return fields, nil
}

func (in *Inspector) normalizeType(native string) string {
	if normalized, ok := in.types[strings.ToLower(native)]; ok {
		return normalized
	}
	return strings.ToUpper(native)
}

func (in *Inspector) getIndexes(ctx context.Context, tableName string) ([]Index, error) {
	query := `
	SELECT
		i.indexname,
		a.attname,
		idx.indisunique,
		array_position(idx.indkey::int2[], a.attnum) AS ordinal
	FROM pg_indexes i
	JOIN pg_class c ON c.relname = i.indexname
	JOIN pg_index idx ON idx.indexrelid = c.oid
	JOIN pg_attribute a ON a.attrelid = idx.indrelid AND a.attnum = ANY(idx.indkey)
	WHERE i.schemaname = $1 AND i.tablename = $2
	ORDER BY i.indexname, ordinal;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()

	var members []indexMember
	for rows.Next() {
		var m indexMember
		if err := rows.Scan(&m.indexName, &m.column, &m.unique, &m.ordinal); err != nil {
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		members = append(members, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating index rows: %w", rows.Err())
	}
	return groupIndexes(members), nil
}

type indexMember struct {
	indexName string
	column    string
	unique    bool
	ordinal   int
}

// groupIndexes aggregates catalog index rows by index name, keeping member
// columns in ordinal position. The implicit primary-key index is excluded:
// the primary key is surfaced through constraints instead.
func groupIndexes(members []indexMember) []Index {
	byName := map[string]*Index{}
	var order []string

	for _, m := range members {
		if strings.HasSuffix(m.indexName, "_pkey") {
			continue
		}
		idx, ok := byName[m.indexName]
		if !ok {
			idx = &Index{Name: m.indexName, Unique: m.unique}
			byName[m.indexName] = idx
			order = append(order, m.indexName)
		}
		idx.Fields = append(idx.Fields, m.column)
	}

	out := make([]Index, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

func (in *Inspector) getConstraints(ctx context.Context, tableName string) ([]Constraint, error) {
	query := `
	SELECT tc.constraint_name, tc.constraint_type, kcu.column_name, kcu.ordinal_position
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	WHERE tc.table_schema = $1 AND tc.table_name = $2
	ORDER BY tc.constraint_name, kcu.ordinal_position;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying constraints: %w", err)
	}
	defer rows.Close()

	var members []constraintMember
	for rows.Next() {
		var m constraintMember
		if err := rows.Scan(&m.name, &m.ctype, &m.column, &m.ordinal); err != nil {
			return nil, fmt.Errorf("scanning constraint: %w", err)
		}
		members = append(members, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating constraint rows: %w", rows.Err())
	}
	return groupConstraints(members), nil
}

type constraintMember struct {
	name    string
	ctype   string
	column  string
	ordinal int
}

func groupConstraints(members []constraintMember) []Constraint {
	byName := map[string]*Constraint{}
	var order []string

	for _, m := range members {
		c, ok := byName[m.name]
		if !ok {
			c = &Constraint{Name: m.name, Type: m.ctype}
			byName[m.name] = c
			order = append(order, m.name)
		}
		c.Fields = append(c.Fields, m.column)
	}

	out := make([]Constraint, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out
}

// ListUniqueColumns returns the columns of a table that are backed by a
// single-column UNIQUE constraint in the catalog.
func (in *Inspector) ListUniqueColumns(ctx context.Context, tableName string) ([]string, error) {
	constraints, err := in.getConstraints(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("listing unique columns for table %s: %w", tableName, err)
	}

	var columns []string
	for _, c := range constraints {
		if c.Type == "UNIQUE" && len(c.Fields) == 1 {
			columns = append(columns, c.Fields[0])
		}
	}
	return columns, nil
}

// ListNotNullColumns returns the columns of a table declared NOT NULL
// without a default, the set the null-violation audit scans.
func (in *Inspector) ListNotNullColumns(ctx context.Context, tableName string) ([]string, error) {
	query := `
	SELECT column_name
	FROM information_schema.columns
	WHERE table_schema = $1 AND table_name = $2
		AND is_nullable = 'NO' AND column_default IS NULL
	ORDER BY ordinal_position;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("listing not-null columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning not-null column: %w", err)
		}
		columns = append(columns, name)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating not-null column rows: %w", rows.Err())
	}
	return columns, nil
}

// TableExists reports whether a base table with the given name exists.
func (in *Inspector) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT FROM information_schema.tables
		WHERE table_schema = $1 AND table_name = $2 AND table_type = 'BASE TABLE'
	);
	`

	var exists bool
	if err := in.pool.QueryRow(ctx, query, in.schemaName, tableName).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking existence of table %s: %w", tableName, err)
	}
	return exists, nil
}

// ListTables returns the names of all base tables in the working schema,
// excluding catalog-prefixed names.
func (in *Inspector) ListTables(ctx context.Context) ([]string, error) {
	query := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		if strings.HasPrefix(name, "pg_") || strings.HasPrefix(name, "information_schema") {
			continue
		}
		tables = append(tables, name)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table rows: %w", rows.Err())
	}
	return tables, nil
}

// GetTableStats reads planner statistics and storage sizes for one table.
func (in *Inspector) GetTableStats(ctx context.Context, tableName string) (*TableStats, error) {
	query := `
	SELECT c.reltuples::bigint, pg_total_relation_size(c.oid), pg_indexes_size(c.oid)
	FROM pg_class c
	JOIN pg_namespace n ON n.oid = c.relnamespace
	WHERE n.nspname = $1 AND c.relname = $2;
	`

	stats := &TableStats{TableName: tableName}
	err := in.pool.QueryRow(ctx, query, in.schemaName, tableName).
		Scan(&stats.RowEstimate, &stats.TotalSize, &stats.IndexSize)
	if err != nil {
		return nil, fmt.Errorf("reading stats for table %s: %w", tableName, err)
	}
	if stats.RowEstimate < 0 {
		// Never-analyzed tables report -1.
		stats.RowEstimate = 0
	}
	return stats, nil
}

// ListForeignKeys returns the catalog-declared foreign keys of one table,
// including their referential actions.
func (in *Inspector) ListForeignKeys(ctx context.Context, tableName string) ([]ForeignKey, error) {
	query := `
	SELECT
		tc.constraint_name,
		kcu.column_name,
		ccu.table_name AS referenced_table,
		ccu.column_name AS referenced_column,
		rc.delete_rule,
		rc.update_rule
	FROM information_schema.table_constraints AS tc
	JOIN information_schema.key_column_usage AS kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
	JOIN information_schema.constraint_column_usage AS ccu
		ON ccu.constraint_name = tc.constraint_name
		AND ccu.table_schema = tc.table_schema
	JOIN information_schema.referential_constraints AS rc
		ON tc.constraint_name = rc.constraint_name
	WHERE tc.constraint_type = 'FOREIGN KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2;
	`

	rows, err := in.pool.Query(ctx, query, in.schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(
			&fk.ConstraintName,
			&fk.ColumnName,
			&fk.ReferencedTable,
			&fk.ReferencedColumn,
			&fk.OnDelete,
			&fk.OnUpdate,
		); err != nil {
			return nil, fmt.Errorf("scanning foreign key: %w", err)
		}
		fks = append(fks, fk)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating foreign key rows: %w", rows.Err())
	}
	return fks, nil
}

// FindOrphanTables returns catalog tables that belong to no declared
// collection and are not known system tables.
func (in *Inspector) FindOrphanTables(ctx context.Context, declared []string) ([]string, error) {
	catalog, err := in.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding orphan tables: %w", err)
	}
	return FilterOrphans(catalog, declared, DefaultSystemTables), nil
}

// FilterOrphans is the pure core of orphan detection.
func FilterOrphans(catalog, declared []string, systemTables map[string]bool) []string {
	declaredSet := make(map[string]bool, len(declared))
	for _, name := range declared {
		declaredSet[name] = true
	}

	var orphans []string
	for _, name := range catalog {
		if declaredSet[name] || systemTables[name] {
			continue
		}
		orphans = append(orphans, name)
	}
	sort.Strings(orphans)
	return orphans
}
