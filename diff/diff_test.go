package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetherdb/schemadrift/generator"
	"github.com/tetherdb/schemadrift/introspect"
	"github.com/tetherdb/schemadrift/schema"
)

func expectedUsers() *schema.ExpectedSchema {
	return &schema.ExpectedSchema{
		Version: "1.0.0",
		Tables: []schema.TableDefinition{
			{
				Name: "users",
				Fields: []schema.FieldDefinition{
					{Name: "id", Type: schema.TypeString, Required: true, Primary: true, Length: 255},
					{Name: "email", Type: schema.TypeString, Required: true, Unique: true, Length: 255},
					{Name: "bio", Type: schema.TypeString, Nullable: true, Length: 255},
				},
				Indexes: []schema.IndexDefinition{
					{Name: "users_pkey", Fields: []string{"id"}, Unique: true, Type: "btree"},
					{Name: "idx_users_email_unique", Fields: []string{"email"}, Unique: true, Type: "btree"},
				},
				Constraints: []schema.ConstraintDefinition{
					{Name: "users_pkey", Type: schema.ConstraintPrimaryKey, Fields: []string{"id"}},
					{Name: "users_email_key", Type: schema.ConstraintUnique, Fields: []string{"email"}},
					{Name: "users_id_not_null", Type: schema.ConstraintNotNull, Fields: []string{"id"}},
				},
			},
		},
	}
}

func liveUsers() introspect.TableSchema {
	return introspect.TableSchema{
		TableName: "users",
		Fields: []introspect.Field{
			{Name: "id", Type: "VARCHAR", Nullable: false},
			{Name: "email", Type: "VARCHAR", Nullable: false},
			{Name: "bio", Type: "VARCHAR", Nullable: true},
		},
		Indexes: []introspect.Index{
			// The engine names the unique constraint's backing index after
			// the constraint, not after the declared index.
			{Name: "users_email_key", Fields: []string{"email"}, Unique: true},
		},
		Constraints: []introspect.Constraint{
			{Name: "users_pkey", Type: "PRIMARY KEY", Fields: []string{"id"}},
			{Name: "users_email_key", Type: "UNIQUE", Fields: []string{"email"}},
		},
	}
}

func TestCompareClean(t *testing.T) {
	t.Parallel()

	drifts := Compare(expectedUsers(), []introspect.TableSchema{liveUsers()}, nil)
	assert.Empty(t, drifts)
}

func TestCompareMissingAndExtraTable(t *testing.T) {
	t.Parallel()

	actual := []introspect.TableSchema{liveUsers(), {TableName: "legacy_data"}}
	expected := expectedUsers()
	expected.Tables = append(expected.Tables, schema.TableDefinition{Name: "posts"})

	drifts := Compare(expected, actual, nil)

	byType := map[DriftType][]Drift{}
	for _, d := range drifts {
		byType[d.Type] = append(byType[d.Type], d)
	}

	require.Len(t, byType[MissingTable], 1)
	assert.Equal(t, "posts", byType[MissingTable][0].Table)

	require.Len(t, byType[ExtraTable], 1)
	assert.Equal(t, "legacy_data", byType[ExtraTable][0].Table)
}

func TestCompareFieldDrift(t *testing.T) {
	t.Parallel()

	live := liveUsers()
	// email column dropped, a stray column added, id retyped, bio made NOT NULL.
	live.Fields = []introspect.Field{
		{Name: "id", Type: "INTEGER", Nullable: false},
		{Name: "bio", Type: "VARCHAR", Nullable: false},
		{Name: "stray", Type: "TEXT", Nullable: true},
	}

	drifts := Compare(expectedUsers(), []introspect.TableSchema{live}, nil)

	byType := map[DriftType][]Drift{}
	for _, d := range drifts {
		byType[d.Type] = append(byType[d.Type], d)
	}

	require.Len(t, byType[MissingField], 1)
	assert.Equal(t, "email", byType[MissingField][0].Object)

	require.Len(t, byType[ExtraField], 1)
	assert.Equal(t, "stray", byType[ExtraField][0].Object)

	require.Len(t, byType[TypeMismatch], 1)
	assert.Equal(t, "id", byType[TypeMismatch][0].Object)
	assert.Equal(t, "VARCHAR", byType[TypeMismatch][0].Expected)
	assert.Equal(t, "INTEGER", byType[TypeMismatch][0].Actual)

	require.Len(t, byType[NullabilityMismatch], 1)
	assert.Equal(t, "bio", byType[NullabilityMismatch][0].Object)
}

func TestCompareIndexDrift(t *testing.T) {
	t.Parallel()

	live := liveUsers()
	live.Indexes = []introspect.Index{
		{Name: "idx_users_legacy", Fields: []string{"bio"}},
	}

	drifts := Compare(expectedUsers(), []introspect.TableSchema{live}, nil)

	var missing, extra []Drift
	for _, d := range drifts {
		switch d.Type {
		case MissingIndex:
			missing = append(missing, d)
		case ExtraIndex:
			extra = append(extra, d)
		}
	}

	require.Len(t, missing, 1)
	assert.Equal(t, "idx_users_email_unique", missing[0].Object)

	require.Len(t, extra, 1)
	assert.Equal(t, "idx_users_legacy", extra[0].Object)
}

func TestComparePkeyIndexNotReportedMissing(t *testing.T) {
	t.Parallel()

	// The inspector filters the implicit primary-key index, so its absence
	// from the live side is not drift.
	drifts := Compare(expectedUsers(), []introspect.TableSchema{liveUsers()}, nil)
	for _, d := range drifts {
		assert.NotEqual(t, "users_pkey", d.Object)
	}
}

// A database that exactly implements the generated schema must produce no
// drift even though the unique index on the live side carries the
// constraint-derived name instead of the declared one.
func TestCompareGeneratedSchemaAgainstConstraintBackedIndexes(t *testing.T) {
	t.Parallel()

	decls := map[string]map[string]interface{}{
		"User": {"id": "string", "email": "string"},
	}
	expected := generator.Generate(decls, generator.DefaultOptions())

	live := []introspect.TableSchema{
		{
			TableName: "users",
			Fields: []introspect.Field{
				{Name: "email", Type: "VARCHAR", Nullable: false},
				{Name: "id", Type: "VARCHAR", Nullable: false},
			},
			Indexes: []introspect.Index{
				{Name: "users_email_key", Fields: []string{"email"}, Unique: true},
			},
			Constraints: []introspect.Constraint{
				{Name: "users_pkey", Type: "PRIMARY KEY", Fields: []string{"id"}},
				{Name: "users_email_key", Type: "UNIQUE", Fields: []string{"email"}},
			},
		},
	}

	drifts := Compare(expected, live, nil)
	assert.Empty(t, drifts)
}

func TestCompareConstraintDrift(t *testing.T) {
	t.Parallel()

	live := liveUsers()
	live.Constraints = []introspect.Constraint{
		{Name: "users_legacy_key", Type: "UNIQUE", Fields: []string{"bio"}},
	}

	drifts := Compare(expectedUsers(), []introspect.TableSchema{live}, nil)

	byType := map[DriftType][]Drift{}
	for _, d := range drifts {
		byType[d.Type] = append(byType[d.Type], d)
	}

	// Expected primary key and unique(email) are both gone.
	require.Len(t, byType[MissingConstraint], 2)

	// The live unique on bio is undeclared.
	require.Len(t, byType[ExtraConstraint], 1)
	assert.Equal(t, "users_legacy_key", byType[ExtraConstraint][0].Object)
}

func TestDriftString(t *testing.T) {
	t.Parallel()

	d := Drift{Type: TypeMismatch, Table: "users", Object: "id", Expected: "VARCHAR", Actual: "INTEGER"}
	assert.Contains(t, d.String(), "users.id")
	assert.Contains(t, d.String(), "VARCHAR")
	assert.Contains(t, d.String(), "INTEGER")
}
