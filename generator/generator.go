package generator

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tetherdb/schemadrift/schema"
)

// StaticVersion tags generated schemas when content versioning is off.
const StaticVersion = "1.0.0"

// nonPersistentTypes are declaration names that describe wire envelopes,
// not stored collections. They never become tables.
var nonPersistentTypes = map[string]bool{
	"Response":          true,
	"ApiResponse":       true,
	"ErrorResponse":     true,
	"ListResponse":      true,
	"PaginatedResponse": true,
	"Pagination":        true,
	"PageInfo":          true,
	"QueryOptions":      true,
	"ListOptions":       true,
	"FilterOptions":     true,
}

// reservedProperties collide with object-model internals and are skipped.
var reservedProperties = map[string]bool{
	"constructor": true,
	"prototype":   true,
	"__proto__":   true,
	"toString":    true,
	"valueOf":     true,
}

// uniqueTokens mark a field as logically unique when its name contains one.
var uniqueTokens = []string{"email", "username", "key", "token", "uuid"}

// searchableTokens mark a field as worth a non-unique index.
var searchableTokens = []string{"name", "title", "description", "content", "text"}

// Options configures schema generation. The zero value is not usable;
// call DefaultOptions and override what you need.
type Options struct {
	DefaultStringLength int
	DecimalPrecision    int
	DecimalScale        int
	GenerateIndexes     bool
	GenerateConstraints bool
	// ContentVersion stamps the schema with a content checksum instead of
	// the static version tag.
	ContentVersion bool
	Pluralizer     schema.Pluralizer
	Mapper         *schema.TypeMapper
	Logger         *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		DefaultStringLength: 255,
		DecimalPrecision:    10,
		DecimalScale:        2,
		GenerateIndexes:     true,
		GenerateConstraints: true,
		Pluralizer:          schema.SuffixPluralizer{},
		Mapper:              schema.DefaultTypeMapper(),
		Logger:              zap.NewNop(),
	}
}

// Generate derives the expected relational schema from a mapping of
// declared type names to abstract property maps. It never fails:
// unrecognized constructs degrade to a default string column so a
// best-effort schema is always available for comparison.
func Generate(declarations map[string]map[string]interface{}, opts Options) *schema.ExpectedSchema {
	if opts.Pluralizer == nil {
		opts.Pluralizer = schema.SuffixPluralizer{}
	}
	if opts.Mapper == nil {
		opts.Mapper = schema.DefaultTypeMapper()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	// Map iteration order is random; sort names so regenerating the same
	// declarations yields an identical schema.
	names := make([]string, 0, len(declarations))
	for name := range declarations {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &schema.ExpectedSchema{Version: StaticVersion}

	for _, name := range names {
		if nonPersistentTypes[name] {
			opts.Logger.Debug("skipping non-persistent declaration", zap.String("type", name))
			continue
		}
		table := buildTable(name, declarations[name], opts)
		out.Tables = append(out.Tables, table)
	}

	inferRelations(out, opts)

	if opts.ContentVersion {
		out.Version = schema.Checksum(out)
	}
	return out
}

func buildTable(declName string, properties map[string]interface{}, opts Options) schema.TableDefinition {
	tableName := opts.Pluralizer.Pluralize(schema.Normalize(declName))
	table := schema.TableDefinition{Name: tableName}

	propNames := make([]string, 0, len(properties))
	for prop := range properties {
		propNames = append(propNames, prop)
	}
	sort.Strings(propNames)

	for _, prop := range propNames {
		if reservedProperties[prop] {
			continue
		}
		field := buildField(prop, properties[prop], opts)
		if schema.IsForeignKeyName(field.Name) {
			// The legacy rule marked every *_id column primary alongside the
			// id column itself; flag the divergence instead of reproducing it.
			opts.Logger.Warn("foreign-key-shaped field not marked primary",
				zap.String("table", tableName),
				zap.String("field", field.Name))
		}
		table.Fields = append(table.Fields, field)
	}

	if opts.GenerateIndexes {
		table.Indexes = inferIndexes(table)
	}
	if opts.GenerateConstraints {
		table.Constraints = inferConstraints(table)
	}
	return table
}

func buildField(propName string, raw interface{}, opts Options) schema.FieldDefinition {
	name := schema.Normalize(propName)

	field := schema.FieldDefinition{
		Name: name,
		Type: opts.Mapper.ResolveFieldType(raw),
	}

	optional := false
	if desc, ok := raw.(map[string]interface{}); ok {
		if v, ok := desc["optional"].(bool); ok {
			optional = v
		}
		if v, ok := desc["required"].(bool); ok {
			optional = !v
		}
	}
	field.Nullable = optional
	field.Required = !optional

	field.Primary = schema.IsPrimaryKeyName(name)
	field.Unique = containsAny(name, uniqueTokens)

	if opts.Mapper.IsStringLike(field.Type) {
		field.Length = opts.DefaultStringLength
	}
	if field.Type == schema.TypeDecimal {
		field.Precision = opts.DecimalPrecision
		field.Scale = opts.DecimalScale
	}
	if field.Type == schema.TypeTimestamp && (name == "created_at" || name == "updated_at") {
		def := "CURRENT_TIMESTAMP"
		field.Default = &def
	}
	return field
}

// inferIndexes derives indexes per field. A field matching several rules
// receives one entry per rule; nothing is deduplicated.
func inferIndexes(table schema.TableDefinition) []schema.IndexDefinition {
	var indexes []schema.IndexDefinition
	for _, f := range table.Fields {
		if f.Primary {
			indexes = append(indexes, schema.IndexDefinition{
				Name:   fmt.Sprintf("%s_pkey", table.Name),
				Fields: []string{f.Name},
				Unique: true,
				Type:   "btree",
			})
		}
		if f.Unique {
			indexes = append(indexes, schema.IndexDefinition{
				Name:   fmt.Sprintf("idx_%s_%s_unique", table.Name, f.Name),
				Fields: []string{f.Name},
				Unique: true,
				Type:   "btree",
			})
		}
		if schema.IsForeignKeyName(f.Name) {
			indexes = append(indexes, schema.IndexDefinition{
				Name:   fmt.Sprintf("idx_%s_%s_fk", table.Name, f.Name),
				Fields: []string{f.Name},
				Type:   "btree",
			})
		}
		if containsAny(f.Name, searchableTokens) {
			indexes = append(indexes, schema.IndexDefinition{
				Name:   fmt.Sprintf("idx_%s_%s", table.Name, f.Name),
				Fields: []string{f.Name},
				Type:   "btree",
			})
		}
	}
	return indexes
}

func inferConstraints(table schema.TableDefinition) []schema.ConstraintDefinition {
	var constraints []schema.ConstraintDefinition

	var primaryFields []string
	for _, f := range table.Fields {
		if f.Primary {
			primaryFields = append(primaryFields, f.Name)
		}
	}
	if len(primaryFields) > 0 {
		constraints = append(constraints, schema.ConstraintDefinition{
			Name:   fmt.Sprintf("%s_pkey", table.Name),
			Type:   schema.ConstraintPrimaryKey,
			Fields: primaryFields,
		})
	}

	for _, f := range table.Fields {
		if f.Unique {
			constraints = append(constraints, schema.ConstraintDefinition{
				Name:   fmt.Sprintf("%s_%s_key", table.Name, f.Name),
				Type:   schema.ConstraintUnique,
				Fields: []string{f.Name},
			})
		}
	}

	for _, f := range table.Fields {
		if !f.Nullable {
			constraints = append(constraints, schema.ConstraintDefinition{
				Name:   fmt.Sprintf("%s_%s_not_null", table.Name, f.Name),
				Type:   schema.ConstraintNotNull,
				Fields: []string{f.Name},
			})
		}
	}
	return constraints
}

// inferRelations runs after all tables are built because a relation is
// only emitted when the pluralized target exists in the same batch.
func inferRelations(s *schema.ExpectedSchema, opts Options) {
	tableNames := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		tableNames[t.Name] = true
	}

	for i := range s.Tables {
		table := &s.Tables[i]
		for _, f := range table.Fields {
			if !schema.IsForeignKeyName(f.Name) {
				continue
			}
			target := opts.Pluralizer.Pluralize(schema.ForeignKeyStem(f.Name))
			if !tableNames[target] {
				opts.Logger.Debug("dropping relation with no target in batch",
					zap.String("table", table.Name),
					zap.String("field", f.Name),
					zap.String("target", target))
				continue
			}
			table.Relations = append(table.Relations, schema.RelationDefinition{
				Name:          fmt.Sprintf("fk_%s_%s", table.Name, f.Name),
				Type:          schema.ManyToOne,
				TargetTable:   target,
				SourceField:   f.Name,
				TargetField:   "id",
				CascadeDelete: false,
			})
		}
	}
}

func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
