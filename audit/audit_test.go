package audit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetherdb/schemadrift/introspect"
)

// testPool connects to the database named by TEST_DATABASE_URL, skipping
// the test when none is configured.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	t.Cleanup(pool.Close)
	return pool
}

func mustExec(t *testing.T, pool *pgxpool.Pool, sql string, args ...interface{}) {
	t.Helper()
	_, err := pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func TestCheckTableIntegrityCleanTable(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	mustExec(t, pool, `DROP TABLE IF EXISTS audit_clean`)
	mustExec(t, pool, `
		CREATE TABLE audit_clean (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE
		)`)
	t.Cleanup(func() { mustExec(t, pool, `DROP TABLE IF EXISTS audit_clean`) })

	mustExec(t, pool, `INSERT INTO audit_clean (id, email) VALUES ('u1', 'a@x.io'), ('u2', 'b@x.io')`)

	auditor := NewAuditor(pool, introspect.NewInspector(pool, nil), nil)
	report := auditor.CheckTableIntegrity(ctx, "audit_clean")

	assert.Equal(t, "audit_clean", report.TableName)
	assert.False(t, report.HasNullViolations)
	assert.False(t, report.HasUniqueViolations)
	assert.False(t, report.HasForeignKeyViolations)
	assert.Empty(t, report.Issues)
}

func TestCheckTableIntegrityDanglingForeignKey(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	mustExec(t, pool, `DROP TABLE IF EXISTS audit_posts`)
	mustExec(t, pool, `DROP TABLE IF EXISTS audit_users`)
	mustExec(t, pool, `CREATE TABLE audit_users (id VARCHAR(255) PRIMARY KEY)`)
	mustExec(t, pool, `
		CREATE TABLE audit_posts (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255)
		)`)
	t.Cleanup(func() {
		mustExec(t, pool, `DROP TABLE IF EXISTS audit_posts`)
		mustExec(t, pool, `DROP TABLE IF EXISTS audit_users`)
	})

	mustExec(t, pool, `INSERT INTO audit_users (id) VALUES ('u1')`)
	mustExec(t, pool, `INSERT INTO audit_posts (id, user_id) VALUES
		('p1', 'u1'), ('p2', 'ghost'), ('p3', 'ghost'), ('p4', NULL)`)

	// NOT VALID skips validation of existing rows, which is exactly the
	// state the auditor exists to detect.
	mustExec(t, pool, `
		ALTER TABLE audit_posts
		ADD CONSTRAINT audit_posts_user_id_fkey
		FOREIGN KEY (user_id) REFERENCES audit_users (id) NOT VALID`)

	auditor := NewAuditor(pool, introspect.NewInspector(pool, nil), nil)
	report := auditor.CheckTableIntegrity(ctx, "audit_posts")

	assert.True(t, report.HasForeignKeyViolations)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "audit_posts_user_id_fkey")
	assert.Contains(t, report.Issues[0], "2 dangling references")

	// NULL references are not dangling.
	assert.False(t, report.HasNullViolations)
}

func TestCheckTableIntegrityNullViolations(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	mustExec(t, pool, `DROP TABLE IF EXISTS audit_legacy`)
	mustExec(t, pool, `
		CREATE TABLE audit_legacy (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255)
		)`)
	t.Cleanup(func() { mustExec(t, pool, `DROP TABLE IF EXISTS audit_legacy`) })

	mustExec(t, pool, `INSERT INTO audit_legacy (id, email) VALUES
		('u1', NULL), ('u2', NULL), ('u3', 'c@x.io')`)

	// Flip the catalog flag directly: the column is now declared NOT NULL
	// without the existing rows ever being validated, the exact state the
	// null check exists to detect.
	mustExec(t, pool, `
		UPDATE pg_catalog.pg_attribute SET attnotnull = true
		WHERE attrelid = 'audit_legacy'::regclass AND attname = 'email'`)

	auditor := NewAuditor(pool, introspect.NewInspector(pool, nil), nil)
	report := auditor.CheckTableIntegrity(ctx, "audit_legacy")

	assert.True(t, report.HasNullViolations)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "email")
	assert.Contains(t, report.Issues[0], "2 NULL values")

	assert.False(t, report.HasUniqueViolations)
	assert.False(t, report.HasForeignKeyViolations)
}

func TestAuditUniqueColumnsCountsDuplicateGroups(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	// No unique constraint on purpose: the table holds the duplicates a
	// declared-but-unenforced constraint would have let through.
	mustExec(t, pool, `DROP TABLE IF EXISTS audit_dupes`)
	mustExec(t, pool, `
		CREATE TABLE audit_dupes (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255)
		)`)
	t.Cleanup(func() { mustExec(t, pool, `DROP TABLE IF EXISTS audit_dupes`) })

	mustExec(t, pool, `INSERT INTO audit_dupes (id, email) VALUES
		('u1', 'a@x.io'), ('u2', 'a@x.io'),
		('u3', 'b@x.io'), ('u4', 'b@x.io'), ('u5', 'b@x.io'),
		('u6', 'c@x.io'), ('u7', NULL), ('u8', NULL)`)

	auditor := NewAuditor(pool, introspect.NewInspector(pool, nil), nil)
	report := &Report{TableName: "audit_dupes"}
	auditor.auditUniqueColumns(ctx, "audit_dupes", []string{"email"}, report)

	// Two values occur more than once; NULLs never count.
	assert.True(t, report.HasUniqueViolations)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "email")
	assert.Contains(t, report.Issues[0], "2 duplicated value groups")
}

func TestCheckTableIntegrityMissingTable(t *testing.T) {
	pool := testPool(t)

	auditor := NewAuditor(pool, introspect.NewInspector(pool, nil), nil)
	report := auditor.CheckTableIntegrity(context.Background(), "audit_absent")

	// Best effort: a table the catalog does not know simply has nothing
	// to check, the call itself must not fail.
	assert.NotNil(t, report)
	assert.False(t, report.HasNullViolations)
	assert.False(t, report.HasUniqueViolations)
	assert.False(t, report.HasForeignKeyViolations)
}

func ExampleReport() {
	report := &Report{
		TableName:         "users",
		HasNullViolations: true,
		Issues:            []string{"column email has 2 NULL values but is declared NOT NULL"},
	}
	fmt.Println(report.TableName, len(report.Issues))
	// Output: users 1
}
