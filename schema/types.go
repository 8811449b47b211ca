package schema

import "fmt"

// TypeMapper translates the abstract field-type vocabulary to relational
// column types and back. The mapping tables are plain fields so callers
// targeting another catalog dialect can swap them out.
type TypeMapper struct {
	ToSQL   map[FieldType]string
	FromSQL map[string]FieldType
}

// DefaultTypeMapper returns the PostgreSQL mapping.
func DefaultTypeMapper() *TypeMapper {
	toSQL := map[FieldType]string{
		TypeString:    "VARCHAR",
		TypeVarchar:   "VARCHAR",
		TypeInteger:   "INTEGER",
		TypeBoolean:   "BOOLEAN",
		TypeDecimal:   "NUMERIC",
		TypeTimestamp: "TIMESTAMP",
		TypeDate:      "DATE",
		TypeTime:      "TIME",
		TypeJSON:      "JSON",
		TypeJSONB:     "JSONB",
		TypeUUID:      "UUID",
		TypeArray:     "JSONB",
		TypeObject:    "JSONB",
		TypeFile:      "VARCHAR",
		TypeImage:     "VARCHAR",
		TypeVideo:     "VARCHAR",
		TypeAudio:     "VARCHAR",
		TypeReference: "VARCHAR",
		TypeRelation:  "JSONB",
		TypeEnum:      "VARCHAR",
		TypePassword:  "VARCHAR",
		TypeEncrypted: "VARCHAR",
		TypeEmail:     "VARCHAR",
		TypeURL:       "VARCHAR",
		TypePhone:     "VARCHAR",
		TypeUniqueID:  "VARCHAR",
	}

	fromSQL := map[string]FieldType{
		"VARCHAR":   TypeString,
		"TEXT":      TypeString,
		"INTEGER":   TypeInteger,
		"BIGINT":    TypeInteger,
		"SMALLINT":  TypeInteger,
		"BOOLEAN":   TypeBoolean,
		"NUMERIC":   TypeDecimal,
		"TIMESTAMP": TypeTimestamp,
		"DATE":      TypeDate,
		"TIME":      TypeTime,
		"JSON":      TypeJSON,
		"JSONB":     TypeJSONB,
		"UUID":      TypeUUID,
	}

	return &TypeMapper{ToSQL: toSQL, FromSQL: fromSQL}
}

// ResolveFieldType resolves a raw declared property value to a FieldType.
// String literals map directly; unions resolve to their first member;
// nested descriptors recurse through their "type" entry. Everything else
// falls back to TypeString so generation never fails on malformed input.
func (m *TypeMapper) ResolveFieldType(raw interface{}) FieldType {
	switch v := raw.(type) {
	case string:
		ft := FieldType(v)
		if _, ok := m.ToSQL[ft]; ok {
			return ft
		}
		// Declarations sometimes use source-language spellings.
		switch v {
		case "number", "int", "float":
			return TypeInteger
		case "bool":
			return TypeBoolean
		case "Date", "datetime":
			return TypeTimestamp
		case "text":
			return TypeString
		}
		return TypeString
	case []interface{}:
		if len(v) == 0 {
			return TypeString
		}
		return m.ResolveFieldType(v[0])
	case map[string]interface{}:
		if t, ok := v["type"]; ok {
			return m.ResolveFieldType(t)
		}
		return TypeString
	default:
		return TypeString
	}
}

// ColumnType returns the relational column type for an expected field,
// without length or precision decoration.
func (m *TypeMapper) ColumnType(t FieldType) string {
	if sql, ok := m.ToSQL[t]; ok {
		return sql
	}
	return "VARCHAR"
}

// ColumnSpec renders the full column type including length and precision,
// e.g. VARCHAR(255) or NUMERIC(10,2).
func (m *TypeMapper) ColumnSpec(f FieldDefinition) string {
	base := m.ColumnType(f.Type)
	switch base {
	case "VARCHAR":
		if f.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", f.Length)
		}
	case "NUMERIC":
		if f.Precision > 0 {
			return fmt.Sprintf("NUMERIC(%d,%d)", f.Precision, f.Scale)
		}
	}
	return base
}

// AbstractType maps a normalized catalog type back into the abstract
// vocabulary; unknown types come back as TypeString.
func (m *TypeMapper) AbstractType(sqlType string) FieldType {
	if ft, ok := m.FromSQL[sqlType]; ok {
		return ft
	}
	return TypeString
}

// IsStringLike reports whether a field type renders as a VARCHAR column
// and therefore takes the configurable default length.
func (m *TypeMapper) IsStringLike(t FieldType) bool {
	return m.ColumnType(t) == "VARCHAR"
}
