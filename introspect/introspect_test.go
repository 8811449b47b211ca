package introspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOrphans(t *testing.T) {
	t.Parallel()

	catalog := []string{"users", "posts", "migrations"}
	declared := []string{"users"}
	deny := map[string]bool{"migrations": true}

	assert.Equal(t, []string{"posts"}, FilterOrphans(catalog, declared, deny))
}

func TestFilterOrphansEmpty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FilterOrphans(nil, nil, DefaultSystemTables))
	assert.Empty(t, FilterOrphans([]string{"users"}, []string{"users"}, nil))
}

func TestGroupIndexes(t *testing.T) {
	t.Parallel()

	members := []indexMember{
		{indexName: "users_pkey", column: "id", unique: true, ordinal: 1},
		{indexName: "idx_users_tenant", column: "tenant_id", unique: false, ordinal: 1},
		{indexName: "idx_users_tenant", column: "email", unique: false, ordinal: 2},
		{indexName: "idx_users_email", column: "email", unique: true, ordinal: 1},
	}

	indexes := groupIndexes(members)
	require.Len(t, indexes, 2, "primary-key index must be excluded")

	assert.Equal(t, "idx_users_tenant", indexes[0].Name)
	assert.Equal(t, []string{"tenant_id", "email"}, indexes[0].Fields)
	assert.False(t, indexes[0].Unique)

	assert.Equal(t, "idx_users_email", indexes[1].Name)
	assert.True(t, indexes[1].Unique)
}

func TestGroupConstraints(t *testing.T) {
	t.Parallel()

	members := []constraintMember{
		{name: "users_pkey", ctype: "PRIMARY KEY", column: "tenant_id", ordinal: 1},
		{name: "users_pkey", ctype: "PRIMARY KEY", column: "id", ordinal: 2},
		{name: "users_email_key", ctype: "UNIQUE", column: "email", ordinal: 1},
	}

	constraints := groupConstraints(members)
	require.Len(t, constraints, 2)

	assert.Equal(t, "users_pkey", constraints[0].Name)
	assert.Equal(t, "PRIMARY KEY", constraints[0].Type)
	assert.Equal(t, []string{"tenant_id", "id"}, constraints[0].Fields)

	assert.Equal(t, "users_email_key", constraints[1].Name)
	assert.Equal(t, []string{"email"}, constraints[1].Fields)
}

func TestNormalizeType(t *testing.T) {
	t.Parallel()

	in := &Inspector{types: DefaultCatalogTypes()}

	assert.Equal(t, "VARCHAR", in.normalizeType("character varying"))
	assert.Equal(t, "TIMESTAMP", in.normalizeType("timestamp without time zone"))
	assert.Equal(t, "DOUBLE PRECISION", in.normalizeType("double precision"))
	// Unrecognized native types pass through uppercased.
	assert.Equal(t, "CIRCLE", in.normalizeType("circle"))
}
