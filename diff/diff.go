package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/schema"
)

type DriftType string

const (
	MissingTable        DriftType = "MISSING_TABLE"
	ExtraTable          DriftType = "EXTRA_TABLE"
	MissingField        DriftType = "MISSING_FIELD"
	ExtraField          DriftType = "EXTRA_FIELD"
	TypeMismatch        DriftType = "TYPE_MISMATCH"
	NullabilityMismatch DriftType = "NULLABILITY_MISMATCH"
	MissingIndex        DriftType = "MISSING_INDEX"
	ExtraIndex          DriftType = "EXTRA_INDEX"
	MissingConstraint   DriftType = "MISSING_CONSTRAINT"
	ExtraConstraint     DriftType = "EXTRA_CONSTRAINT"
)

// Drift is one discrepancy between the expected and the live schema.
type Drift struct {
	Type     DriftType
	Table    string
	Object   string // field, index or constraint name; empty for table-level drift
	Expected string
	Actual   string
}

func (d Drift) String() string {
	switch d.Type {
	case MissingTable:
		return fmt.Sprintf("table %s is declared but missing from the database", d.Table)
	case ExtraTable:
		return fmt.Sprintf("table %s exists in the database but is not declared", d.Table)
	case MissingField:
		return fmt.Sprintf("%s.%s is declared but missing from the database", d.Table, d.Object)
	case ExtraField:
		return fmt.Sprintf("%s.%s exists in the database but is not declared", d.Table, d.Object)
	case TypeMismatch:
		return fmt.Sprintf("%s.%s type mismatch: expected %s, found %s", d.Table, d.Object, d.Expected, d.Actual)
	case NullabilityMismatch:
		return fmt.Sprintf("%s.%s nullability mismatch: expected %s, found %s", d.Table, d.Object, d.Expected, d.Actual)
	case MissingIndex:
		return fmt.Sprintf("index %s on %s is declared but missing from the database", d.Object, d.Table)
	case ExtraIndex:
		return fmt.Sprintf("index %s on %s exists in the database but is not declared", d.Object, d.Table)
	case MissingConstraint:
		return fmt.Sprintf("constraint %s on %s is declared but missing from the database", d.Object, d.Table)
	case ExtraConstraint:
		return fmt.Sprintf("constraint %s on %s exists in the database but is not declared", d.Object, d.Table)
	}
	return fmt.Sprintf("%s on %s.%s", d.Type, d.Table, d.Object)
}

// Compare reports every discrepancy between an expected schema and the
// live tables read from the catalog. It is a pure function: both inputs
// are taken as-is and neither is mutated.
func Compare(expected *schema.ExpectedSchema, actual []introspect.TableSchema, mapper *schema.TypeMapper) []Drift {
	if mapper == nil {
		mapper = schema.DefaultTypeMapper()
	}

	var drifts []Drift

	actualByName := make(map[string]introspect.TableSchema, len(actual))
	for _, t := range actual {
		actualByName[t.TableName] = t
	}
	expectedByName := make(map[string]schema.TableDefinition, len(expected.Tables))
	for _, t := range expected.Tables {
		expectedByName[t.Name] = t
	}

	for _, table := range expected.Tables {
		live, exists := actualByName[table.Name]
		if !exists {
			drifts = append(drifts, Drift{Type: MissingTable, Table: table.Name})
			continue
		}
		drifts = append(drifts, compareFields(table, live, mapper)...)
		drifts = append(drifts, compareIndexes(table, live)...)
		drifts = append(drifts, compareConstraints(table, live)...)
	}

	for _, live := range actual {
		if _, exists := expectedByName[live.TableName]; !exists {
			drifts = append(drifts, Drift{Type: ExtraTable, Table: live.TableName})
		}
	}

	return drifts
}

func compareFields(table schema.TableDefinition, live introspect.TableSchema, mapper *schema.TypeMapper) []Drift {
	var drifts []Drift

	liveFields := make(map[string]introspect.Field, len(live.Fields))
	for _, f := range live.Fields {
		liveFields[f.Name] = f
	}
	expectedFields := make(map[string]schema.FieldDefinition, len(table.Fields))
	for _, f := range table.Fields {
		expectedFields[f.Name] = f
	}

	for _, f := range table.Fields {
		liveField, exists := liveFields[f.Name]
		if !exists {
			drifts = append(drifts, Drift{Type: MissingField, Table: table.Name, Object: f.Name})
			continue
		}

		expectedType := mapper.ColumnType(f.Type)
		if !strings.EqualFold(expectedType, liveField.Type) {
			drifts = append(drifts, Drift{
				Type:     TypeMismatch,
				Table:    table.Name,
				Object:   f.Name,
				Expected: expectedType,
				Actual:   liveField.Type,
			})
		}

		if f.Nullable != liveField.Nullable {
			drifts = append(drifts, Drift{
				Type:     NullabilityMismatch,
				Table:    table.Name,
				Object:   f.Name,
				Expected: nullability(f.Nullable),
				Actual:   nullability(liveField.Nullable),
			})
		}
	}

	for _, f := range live.Fields {
		if _, exists := expectedFields[f.Name]; !exists {
			drifts = append(drifts, Drift{Type: ExtraField, Table: table.Name, Object: f.Name})
		}
	}

	return drifts
}

func nullability(nullable bool) string {
	if nullable {
		return "NULL"
	}
	return "NOT NULL"
}

// compareIndexes matches indexes by name or by covered columns plus
// uniqueness. The engine names the index backing a unique constraint after
// the constraint (users_email_key), so a name-only match would report a
// missing idx_..._unique and an extra users_..._key on a database that
// exactly matches the declarations.
func compareIndexes(table schema.TableDefinition, live introspect.TableSchema) []Drift {
	var drifts []Drift

	liveNames := make(map[string]bool, len(live.Indexes))
	liveSigs := make(map[string]bool, len(live.Indexes))
	for _, idx := range live.Indexes {
		liveNames[idx.Name] = true
		liveSigs[indexSignature(idx.Fields, idx.Unique)] = true
	}
	expectedNames := make(map[string]bool, len(table.Indexes))
	expectedSigs := make(map[string]bool, len(table.Indexes))
	for _, idx := range table.Indexes {
		expectedNames[idx.Name] = true
		expectedSigs[indexSignature(idx.Fields, idx.Unique)] = true
	}

	for _, idx := range table.Indexes {
		// The inspector filters the implicit primary-key index; the primary
		// key itself is compared through constraints.
		if strings.HasSuffix(idx.Name, "_pkey") {
			continue
		}
		if liveNames[idx.Name] || liveSigs[indexSignature(idx.Fields, idx.Unique)] {
			continue
		}
		drifts = append(drifts, Drift{Type: MissingIndex, Table: table.Name, Object: idx.Name})
	}

	for _, idx := range live.Indexes {
		if expectedNames[idx.Name] || expectedSigs[indexSignature(idx.Fields, idx.Unique)] {
			continue
		}
		drifts = append(drifts, Drift{Type: ExtraIndex, Table: table.Name, Object: idx.Name})
	}

	return drifts
}

// indexSignature is order-insensitive over the covered columns: two
// indexes with the same column set and uniqueness are interchangeable for
// drift purposes even if their names or column order differ.
func indexSignature(fields []string, unique bool) string {
	cols := append([]string(nil), fields...)
	sort.Strings(cols)
	sig := strings.Join(cols, ",")
	if unique {
		return "unique:" + sig
	}
	return sig
}

// compareConstraints matches primary-key and unique constraints by the
// columns they cover, not by name: constraint names are generated on the
// expected side and assigned by the engine on the live side. Not-null
// constraints are intentionally excluded here; they surface as
// nullability mismatches on the field instead.
func compareConstraints(table schema.TableDefinition, live introspect.TableSchema) []Drift {
	var drifts []Drift

	var livePrimary []introspect.Constraint
	liveUniqueCols := map[string]string{} // column -> constraint name
	for _, c := range live.Constraints {
		switch c.Type {
		case "PRIMARY KEY":
			livePrimary = append(livePrimary, c)
		case "UNIQUE":
			if len(c.Fields) == 1 {
				liveUniqueCols[c.Fields[0]] = c.Name
			}
		}
	}

	expectedUniqueCols := map[string]bool{}
	expectedHasPrimary := false
	for _, c := range table.Constraints {
		switch c.Type {
		case schema.ConstraintPrimaryKey:
			expectedHasPrimary = true
			if len(livePrimary) == 0 {
				drifts = append(drifts, Drift{
					Type:     MissingConstraint,
					Table:    table.Name,
					Object:   c.Name,
					Expected: fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(c.Fields, ", ")),
				})
			}
		case schema.ConstraintUnique:
			for _, col := range c.Fields {
				expectedUniqueCols[col] = true
			}
			if len(c.Fields) == 1 {
				if _, exists := liveUniqueCols[c.Fields[0]]; !exists {
					drifts = append(drifts, Drift{
						Type:     MissingConstraint,
						Table:    table.Name,
						Object:   c.Name,
						Expected: fmt.Sprintf("UNIQUE (%s)", c.Fields[0]),
					})
				}
			}
		}
	}

	if !expectedHasPrimary {
		for _, c := range livePrimary {
			drifts = append(drifts, Drift{
				Type:   ExtraConstraint,
				Table:  table.Name,
				Object: c.Name,
				Actual: fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(c.Fields, ", ")),
			})
		}
	}
	extraCols := make([]string, 0, len(liveUniqueCols))
	for col := range liveUniqueCols {
		if !expectedUniqueCols[col] {
			extraCols = append(extraCols, col)
		}
	}
	sort.Strings(extraCols)
	for _, col := range extraCols {
		drifts = append(drifts, Drift{
			Type:   ExtraConstraint,
			Table:  table.Name,
			Object: liveUniqueCols[col],
			Actual: fmt.Sprintf("UNIQUE (%s)", col),
		})
	}

	return drifts
}
