package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveFieldType(t *testing.T) {
	t.Parallel()

	mapper := DefaultTypeMapper()

	tests := []struct {
		name string
		in   interface{}
		want FieldType
	}{
		{"direct tag", "integer", TypeInteger},
		{"email tag", "email", TypeEmail},
		{"source spelling Date", "Date", TypeTimestamp},
		{"source spelling number", "number", TypeInteger},
		{"unknown string", "frobnicator", TypeString},
		{"union first member wins", []interface{}{"string", "undefined"}, TypeString},
		{"union of integer", []interface{}{"integer", "undefined"}, TypeInteger},
		{"empty union", []interface{}{}, TypeString},
		{"nested descriptor", map[string]interface{}{"type": "boolean"}, TypeBoolean},
		{"doubly nested descriptor", map[string]interface{}{"type": map[string]interface{}{"type": "uuid"}}, TypeUUID},
		{"descriptor without type", map[string]interface{}{"optional": true}, TypeString},
		{"nil", nil, TypeString},
		{"number literal", 42, TypeString},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mapper.ResolveFieldType(tt.in))
		})
	}
}

func TestUnionMatchesPlainType(t *testing.T) {
	t.Parallel()

	mapper := DefaultTypeMapper()
	plain := mapper.ColumnType(mapper.ResolveFieldType("string"))
	union := mapper.ColumnType(mapper.ResolveFieldType([]interface{}{"string", "undefined"}))
	assert.Equal(t, plain, union)
}

func TestColumnSpec(t *testing.T) {
	t.Parallel()

	mapper := DefaultTypeMapper()

	assert.Equal(t, "VARCHAR(255)", mapper.ColumnSpec(FieldDefinition{Type: TypeString, Length: 255}))
	assert.Equal(t, "VARCHAR", mapper.ColumnSpec(FieldDefinition{Type: TypeString}))
	assert.Equal(t, "NUMERIC(10,2)", mapper.ColumnSpec(FieldDefinition{Type: TypeDecimal, Precision: 10, Scale: 2}))
	assert.Equal(t, "TIMESTAMP", mapper.ColumnSpec(FieldDefinition{Type: TypeTimestamp}))
	assert.Equal(t, "JSONB", mapper.ColumnSpec(FieldDefinition{Type: TypeObject}))
}

func TestAbstractType(t *testing.T) {
	t.Parallel()

	mapper := DefaultTypeMapper()
	assert.Equal(t, TypeInteger, mapper.AbstractType("BIGINT"))
	assert.Equal(t, TypeString, mapper.AbstractType("TEXT"))
	assert.Equal(t, TypeString, mapper.AbstractType("CIRCLE"))
}
