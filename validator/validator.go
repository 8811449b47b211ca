package validator

import (
	"fmt"
	"strings"

	"github.com/tetherdb/schemadrift/schema"
)

// ValidationError represents a single finding with its location.
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Field    string `json:"field,omitempty"`
	Index    string `json:"index,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all findings for one schema.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

// reservedKeywords would need quoting as table names; flag them early.
var reservedKeywords = map[string]bool{
	"user": true, "order": true, "group": true, "table": true,
	"index": true, "view": true, "schema": true,
}

// ValidateSchema checks a generated schema for structural problems:
// identifier rules, duplicate field and index names, missing primary
// keys, and relations pointing outside the schema. It needs no database.
func ValidateSchema(s *schema.ExpectedSchema) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	tableNames := map[string]bool{}
	for _, table := range s.Tables {
		if tableNames[table.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_table",
				Table:    table.Name,
				Message:  fmt.Sprintf("duplicate table name %q", table.Name),
				Severity: "error",
			})
		}
		tableNames[table.Name] = true

		validateTable(table, result)
	}

	validateRelations(s, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateTable(table schema.TableDefinition, result *ValidationResult) {
	if err := validateIdentifier(table.Name, "table"); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "table_name",
			Table:    table.Name,
			Message:  err.Error(),
			Severity: "error",
		})
	}
	if reservedKeywords[strings.ToLower(table.Name)] {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "reserved_keyword",
			Table:    table.Name,
			Message:  fmt.Sprintf("table name %q is a reserved keyword and will need quoting", table.Name),
			Severity: "warning",
		})
	}

	if len(table.Fields) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Type:     "no_fields",
			Table:    table.Name,
			Message:  fmt.Sprintf("table %q has no fields", table.Name),
			Severity: "error",
		})
		return
	}

	fieldNames := map[string]bool{}
	primaryCount := 0
	for _, field := range table.Fields {
		if fieldNames[field.Name] {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "duplicate_field",
				Table:    table.Name,
				Field:    field.Name,
				Message:  fmt.Sprintf("duplicate field %q in table %q", field.Name, table.Name),
				Severity: "error",
			})
			continue
		}
		fieldNames[field.Name] = true

		if err := validateIdentifier(field.Name, "field"); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "field_name",
				Table:    table.Name,
				Field:    field.Name,
				Message:  err.Error(),
				Severity: "error",
			})
		}
		if field.Required == field.Nullable {
			result.Errors = append(result.Errors, ValidationError{
				Type:     "nullability",
				Table:    table.Name,
				Field:    field.Name,
				Message:  fmt.Sprintf("field %q breaks the required == !nullable invariant", field.Name),
				Severity: "error",
			})
		}
		if field.Primary {
			primaryCount++
		}
	}

	if primaryCount == 0 {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "no_primary_key",
			Table:    table.Name,
			Message:  fmt.Sprintf("table %q has no primary field", table.Name),
			Severity: "warning",
		})
	}
	if primaryCount > 1 {
		result.Warnings = append(result.Warnings, ValidationError{
			Type:     "multiple_primary_keys",
			Table:    table.Name,
			Message:  fmt.Sprintf("table %q has %d primary fields", table.Name, primaryCount),
			Severity: "warning",
		})
	}

	indexNames := map[string]bool{}
	for _, index := range table.Indexes {
		if indexNames[index.Name] {
			result.Warnings = append(result.Warnings, ValidationError{
				Type:     "duplicate_index",
				Table:    table.Name,
				Index:    index.Name,
				Message:  fmt.Sprintf("duplicate index name %q in table %q", index.Name, table.Name),
				Severity: "warning",
			})
			continue
		}
		indexNames[index.Name] = true

		for _, column := range index.Fields {
			if !fieldNames[column] {
				result.Errors = append(result.Errors, ValidationError{
					Type:     "index_field_not_found",
					Table:    table.Name,
					Index:    index.Name,
					Field:    column,
					Message:  fmt.Sprintf("index %q references unknown field %q", index.Name, column),
					Severity: "error",
				})
			}
		}
	}
}

func validateRelations(s *schema.ExpectedSchema, result *ValidationResult) {
	tables := map[string]schema.TableDefinition{}
	for _, t := range s.Tables {
		tables[t.Name] = t
	}

	for _, table := range s.Tables {
		for _, rel := range table.Relations {
			target, exists := tables[rel.TargetTable]
			if !exists {
				result.Errors = append(result.Errors, ValidationError{
					Type:     "relation_target_not_found",
					Table:    table.Name,
					Field:    rel.SourceField,
					Message:  fmt.Sprintf("relation %q targets unknown table %q", rel.Name, rel.TargetTable),
					Severity: "error",
				})
				continue
			}
			if target.Field(rel.TargetField) == nil {
				result.Errors = append(result.Errors, ValidationError{
					Type:     "relation_field_not_found",
					Table:    table.Name,
					Field:    rel.SourceField,
					Message:  fmt.Sprintf("relation %q targets unknown field %s.%s", rel.Name, rel.TargetTable, rel.TargetField),
					Severity: "error",
				})
			}
		}
	}
}

func validateIdentifier(name, kind string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if len(name) > 63 {
		return fmt.Errorf("%s name %q is too long (max 63 characters)", kind, name)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name %q contains invalid character %q", kind, name, char)
		}
	}
	return nil
}
