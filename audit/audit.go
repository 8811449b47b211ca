package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tetherdb/schemadrift/introspect"
)

// Report is a point-in-time integrity audit of one table. The boolean
// flags answer "is this category violated anywhere"; Issues carries one
// diagnostic per finding, including check failures.
type Report struct {
	TableName               string
	HasNullViolations       bool
	HasUniqueViolations     bool
	HasForeignKeyViolations bool
	Issues                  []string
}

// Auditor detects live-data violations of catalog-declared constraints:
// NULLs in NOT NULL columns left by legacy rows, duplicates under unique
// constraints, and dangling foreign-key references. Unlike the Inspector
// it is best-effort: a failed check becomes an issue entry and the
// remaining checks still run.
type Auditor struct {
	pool      *pgxpool.Pool
	inspector *introspect.Inspector
	logger    *zap.Logger
}

func NewAuditor(pool *pgxpool.Pool, inspector *introspect.Inspector, logger *zap.Logger) *Auditor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Auditor{pool: pool, inspector: inspector, logger: logger}
}

// CheckTableIntegrity runs the null, unique and foreign-key checks in
// order and always returns a report. Checks run sequentially because the
// unique and foreign-key passes depend on catalog lists fetched first.
func (a *Auditor) CheckTableIntegrity(ctx context.Context, tableName string) *Report {
	report := &Report{TableName: tableName}

	a.checkNullViolations(ctx, tableName, report)
	a.checkUniqueViolations(ctx, tableName, report)
	a.checkForeignKeyViolations(ctx, tableName, report)

	a.logger.Info("integrity audit complete",
		zap.String("table", tableName),
		zap.Bool("null_violations", report.HasNullViolations),
		zap.Bool("unique_violations", report.HasUniqueViolations),
		zap.Bool("fk_violations", report.HasForeignKeyViolations),
		zap.Int("issues", len(report.Issues)))
	return report
}

// checkNullViolations counts NULL rows in every column the catalog
// declares NOT NULL without a default. Positive counts mean the
// constraint was added after NULL rows existed or was never enforced.
func (a *Auditor) checkNullViolations(ctx context.Context, tableName string, report *Report) {
	columns, err := a.inspector.ListNotNullColumns(ctx, tableName)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("could not check NULL violations: %v", err))
		return
	}
	a.auditNotNullColumns(ctx, tableName, columns, report)
}

func (a *Auditor) auditNotNullColumns(ctx context.Context, tableName string, columns []string, report *Report) {
	for _, column := range columns {
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE "%s" IS NULL`,
			a.qualified(tableName), column)

		var count int64
		if err := a.pool.QueryRow(ctx, query).Scan(&count); err != nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("could not count NULLs in column %s: %v", column, err))
			continue
		}
		if count > 0 {
			report.HasNullViolations = true
			report.Issues = append(report.Issues,
				fmt.Sprintf("column %s has %d NULL values but is declared NOT NULL", column, count))
		}
	}
}

// checkUniqueViolations counts duplicated value groups in every column
// backed by a catalog UNIQUE constraint.
func (a *Auditor) checkUniqueViolations(ctx context.Context, tableName string, report *Report) {
	columns, err := a.inspector.ListUniqueColumns(ctx, tableName)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("could not check unique violations: %v", err))
		return
	}
	a.auditUniqueColumns(ctx, tableName, columns, report)
}

// auditUniqueColumns counts, per column, the distinct non-null values that
// occur more than once. The reported number is value groups, not rows.
func (a *Auditor) auditUniqueColumns(ctx context.Context, tableName string, columns []string, report *Report) {
	for _, column := range columns {
		query := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT "%s" FROM %s
			WHERE "%s" IS NOT NULL
			GROUP BY "%s"
			HAVING COUNT(*) > 1
		) duplicates`, column, a.qualified(tableName), column, column)

		var count int64
		if err := a.pool.QueryRow(ctx, query).Scan(&count); err != nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("could not count duplicates in column %s: %v", column, err))
			continue
		}
		if count > 0 {
			report.HasUniqueViolations = true
			report.Issues = append(report.Issues,
				fmt.Sprintf("column %s has %d duplicated value groups under a unique constraint", column, count))
		}
	}
}

// checkForeignKeyViolations counts rows whose reference is non-null but
// matches no row in the referenced table, e.g. leftovers of a
// non-cascading delete.
func (a *Auditor) checkForeignKeyViolations(ctx context.Context, tableName string, report *Report) {
	fks, err := a.inspector.ListForeignKeys(ctx, tableName)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("could not check foreign key violations: %v", err))
		return
	}

	for _, fk := range fks {
		query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s src
		LEFT JOIN %s ref ON src."%s" = ref."%s"
		WHERE src."%s" IS NOT NULL AND ref."%s" IS NULL`,
			a.qualified(tableName), a.qualified(fk.ReferencedTable),
			fk.ColumnName, fk.ReferencedColumn,
			fk.ColumnName, fk.ReferencedColumn)

		var count int64
		if err := a.pool.QueryRow(ctx, query).Scan(&count); err != nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("could not check foreign key %s: %v", fk.ConstraintName, err))
			continue
		}
		if count > 0 {
			report.HasForeignKeyViolations = true
			report.Issues = append(report.Issues,
				fmt.Sprintf("foreign key %s has %d dangling references from %s.%s to %s.%s",
					fk.ConstraintName, count, tableName, fk.ColumnName, fk.ReferencedTable, fk.ReferencedColumn))
		}
	}
}

// qualified prefixes a table with the inspector's working schema so the
// audit queries hit the same schema the catalog reads came from.
func (a *Auditor) qualified(tableName string) string {
	return fmt.Sprintf(`"%s"."%s"`, a.inspector.Schema(), tableName)
}
