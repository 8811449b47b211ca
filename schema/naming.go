package schema

import "strings"

// Normalize converts a mixed-case identifier to lower snake_case: an
// underscore is inserted before each uppercase letter, the result is
// lowercased, a leading underscore is stripped and repeated underscores
// collapse. Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}

	out := strings.TrimPrefix(b.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return out
}

// Pluralizer derives a table name from a foreign-key stem. The default is
// the naive suffix rule; callers with irregular plurals supply their own.
type Pluralizer interface {
	Pluralize(noun string) string
}

// SuffixPluralizer appends "s" unconditionally.
type SuffixPluralizer struct{}

func (SuffixPluralizer) Pluralize(noun string) string { return noun + "s" }

// RulePluralizer applies the y→ies rule and avoids doubling a trailing s.
type RulePluralizer struct{}

func (RulePluralizer) Pluralize(noun string) string {
	if strings.HasSuffix(noun, "y") {
		return strings.TrimSuffix(noun, "y") + "ies"
	}
	if strings.HasSuffix(noun, "s") {
		return noun
	}
	return noun + "s"
}

// IsForeignKeyName reports whether a field name is foreign-key shaped:
// it ends with _id but is not the literal id column.
func IsForeignKeyName(name string) bool {
	return name != "id" && strings.HasSuffix(name, "_id")
}

// IsPrimaryKeyName reports whether a field name is the conventional
// primary key. This is deliberately narrower than IsForeignKeyName;
// the two predicates are independent.
func IsPrimaryKeyName(name string) bool {
	return name == "id"
}

// ForeignKeyStem strips the _id suffix from a foreign-key-shaped name.
func ForeignKeyStem(name string) string {
	return strings.TrimSuffix(name, "_id")
}
