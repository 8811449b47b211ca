package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Checksum computes a deterministic digest of a schema's content. Tables
// and their members are serialized in sorted order so two structurally
// identical schemas always hash the same regardless of generation order.
// The Version field itself is excluded from the digest.
func Checksum(s *ExpectedSchema) string {
	var b strings.Builder

	tables := make([]TableDefinition, len(s.Tables))
	copy(tables, s.Tables)
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	for _, t := range tables {
		fmt.Fprintf(&b, "table:%s\n", t.Name)

		fields := make([]FieldDefinition, len(t.Fields))
		copy(fields, t.Fields)
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		for _, f := range fields {
			def := ""
			if f.Default != nil {
				def = *f.Default
			}
			fmt.Fprintf(&b, "field:%s:%s:%t:%t:%t:%s:%d:%d:%d\n",
				f.Name, f.Type, f.Nullable, f.Primary, f.Unique, def, f.Length, f.Precision, f.Scale)
		}

		indexes := make([]IndexDefinition, len(t.Indexes))
		copy(indexes, t.Indexes)
		sort.Slice(indexes, func(i, j int) bool { return indexes[i].Name < indexes[j].Name })
		for _, idx := range indexes {
			fmt.Fprintf(&b, "index:%s:%s:%t:%s\n", idx.Name, strings.Join(idx.Fields, ","), idx.Unique, idx.Type)
		}

		constraints := make([]ConstraintDefinition, len(t.Constraints))
		copy(constraints, t.Constraints)
		sort.Slice(constraints, func(i, j int) bool { return constraints[i].Name < constraints[j].Name })
		for _, c := range constraints {
			fmt.Fprintf(&b, "constraint:%s:%s:%s\n", c.Name, c.Type, strings.Join(c.Fields, ","))
		}

		relations := make([]RelationDefinition, len(t.Relations))
		copy(relations, t.Relations)
		sort.Slice(relations, func(i, j int) bool { return relations[i].Name < relations[j].Name })
		for _, r := range relations {
			fmt.Fprintf(&b, "relation:%s:%s:%s:%s:%s\n", r.Name, r.Type, r.TargetTable, r.SourceField, r.TargetField)
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
