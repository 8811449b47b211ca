package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/schema"
)

func TestValidateGeneratedSchema(t *testing.T) {
	t.Parallel()

	decls := map[string]map[string]interface{}{
		"User": {"id": "string", "email": "string"},
		"Post": {"id": "string", "user_id": "string", "title": "string"},
	}

	s := generator.Generate(decls, generator.DefaultOptions())
	result := ValidateSchema(s)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateDuplicateField(t *testing.T) {
	t.Parallel()

	s := &schema.ExpectedSchema{
		Tables: []schema.TableDefinition{
			{
				Name: "users",
				Fields: []schema.FieldDefinition{
					{Name: "id", Type: schema.TypeString, Required: true, Primary: true},
					{Name: "id", Type: schema.TypeString, Required: true},
				},
			},
		},
	}

	result := ValidateSchema(s)
	require.False(t, result.Valid)

	var found bool
	for _, e := range result.Errors {
		if e.Type == "duplicate_field" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateNullabilityInvariant(t *testing.T) {
	t.Parallel()

	s := &schema.ExpectedSchema{
		Tables: []schema.TableDefinition{
			{
				Name: "users",
				Fields: []schema.FieldDefinition{
					{Name: "id", Type: schema.TypeString, Required: true, Nullable: true, Primary: true},
				},
			},
		},
	}

	result := ValidateSchema(s)
	require.False(t, result.Valid)
	assert.Equal(t, "nullability", result.Errors[0].Type)
}

func TestValidateRelationTarget(t *testing.T) {
	t.Parallel()

	s := &schema.ExpectedSchema{
		Tables: []schema.TableDefinition{
			{
				Name: "posts",
				Fields: []schema.FieldDefinition{
					{Name: "id", Type: schema.TypeString, Required: true, Primary: true},
					{Name: "user_id", Type: schema.TypeString, Required: true},
				},
				Relations: []schema.RelationDefinition{
					{Name: "fk_posts_user_id", Type: schema.ManyToOne, TargetTable: "users", SourceField: "user_id", TargetField: "id"},
				},
			},
		},
	}

	result := ValidateSchema(s)
	require.False(t, result.Valid)
	assert.Equal(t, "relation_target_not_found", result.Errors[0].Type)
}

func TestValidateWarnings(t *testing.T) {
	t.Parallel()

	s := &schema.ExpectedSchema{
		Tables: []schema.TableDefinition{
			{
				// Reserved keyword, and no primary field.
				Name: "order",
				Fields: []schema.FieldDefinition{
					{Name: "total", Type: schema.TypeDecimal, Required: true},
				},
			},
		},
	}

	result := ValidateSchema(s)
	assert.True(t, result.Valid, "warnings alone do not invalidate a schema")

	types := map[string]bool{}
	for _, w := range result.Warnings {
		types[w.Type] = true
	}
	assert.True(t, types["reserved_keyword"])
	assert.True(t, types["no_primary_key"])
}

func TestValidateBadIdentifier(t *testing.T) {
	t.Parallel()

	s := &schema.ExpectedSchema{
		Tables: []schema.TableDefinition{
			{
				Name: "users!",
				Fields: []schema.FieldDefinition{
					{Name: "id", Type: schema.TypeString, Required: true, Primary: true},
				},
			},
		},
	}

	result := ValidateSchema(s)
	require.False(t, result.Valid)
	assert.Equal(t, "table_name", result.Errors[0].Type)
}
