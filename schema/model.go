package schema

// FieldType is the closed vocabulary of abstract field types a collection
// declaration may use. Anything outside it degrades to TypeString.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeVarchar   FieldType = "varchar"
	TypeInteger   FieldType = "integer"
	TypeBoolean   FieldType = "boolean"
	TypeDecimal   FieldType = "decimal"
	TypeTimestamp FieldType = "timestamp"
	TypeDate      FieldType = "date"
	TypeTime      FieldType = "time"
	TypeJSON      FieldType = "json"
	TypeJSONB     FieldType = "jsonb"
	TypeUUID      FieldType = "uuid"
	TypeArray     FieldType = "array"
	TypeObject    FieldType = "object"
	TypeFile      FieldType = "file"
	TypeImage     FieldType = "image"
	TypeVideo     FieldType = "video"
	TypeAudio     FieldType = "audio"
	TypeReference FieldType = "reference"
	TypeRelation  FieldType = "relation"
	TypeEnum      FieldType = "enum"
	TypePassword  FieldType = "password"
	TypeEncrypted FieldType = "encrypted"
	TypeEmail     FieldType = "email"
	TypeURL       FieldType = "url"
	TypePhone     FieldType = "phone"
	TypeUniqueID  FieldType = "uniqueID"
)

// ExpectedSchema is the "should be" state derived from collection
// declarations. It is built fresh on every generation call and never
// mutated afterwards.
type ExpectedSchema struct {
	Tables  []TableDefinition `yaml:"tables"`
	Version string            `yaml:"version"`
}

// TableDefinition describes one declared collection as a relational table.
// Name is unique within an ExpectedSchema.
type TableDefinition struct {
	Name        string                 `yaml:"name"`
	Fields      []FieldDefinition      `yaml:"fields"`
	Indexes     []IndexDefinition      `yaml:"indexes,omitempty"`
	Constraints []ConstraintDefinition `yaml:"constraints,omitempty"`
	Relations   []RelationDefinition   `yaml:"relations,omitempty"`
}

// FieldDefinition is a single column in an expected table.
// Invariant: Required == !Nullable.
type FieldDefinition struct {
	Name      string    `yaml:"name"`
	Type      FieldType `yaml:"type"`
	Required  bool      `yaml:"required"`
	Nullable  bool      `yaml:"nullable"`
	Primary   bool      `yaml:"primary,omitempty"`
	Unique    bool      `yaml:"unique,omitempty"`
	Default   *string   `yaml:"default,omitempty"`
	Length    int       `yaml:"length,omitempty"`
	Precision int       `yaml:"precision,omitempty"`
	Scale     int       `yaml:"scale,omitempty"`
}

// IndexDefinition names are derived from table+field+purpose so that
// regenerating the same declarations yields the same index set.
type IndexDefinition struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
	Unique bool     `yaml:"unique,omitempty"`
	Type   string   `yaml:"type"` // btree, hash, gin, etc.
}

type ConstraintType string

const (
	ConstraintPrimaryKey ConstraintType = "primary_key"
	ConstraintUnique     ConstraintType = "unique"
	ConstraintNotNull    ConstraintType = "not_null"
)

type ConstraintDefinition struct {
	Name   string         `yaml:"name"`
	Type   ConstraintType `yaml:"type"`
	Fields []string       `yaml:"fields"`
}

type RelationType string

const (
	ManyToOne RelationType = "many-to-one"
)

// RelationDefinition is inferred from foreign-key-shaped field names.
// TargetField is always "id" and CascadeDelete is always false; relations
// whose pluralized target is not in the same generation batch are dropped.
type RelationDefinition struct {
	Name          string       `yaml:"name"`
	Type          RelationType `yaml:"type"`
	TargetTable   string       `yaml:"target_table"`
	SourceField   string       `yaml:"source_field"`
	TargetField   string       `yaml:"target_field"`
	CascadeDelete bool         `yaml:"cascade_delete"`
}

// Table returns the table with the given name, or nil.
func (s *ExpectedSchema) Table(name string) *TableDefinition {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// Field returns the field with the given name, or nil.
func (t *TableDefinition) Field(name string) *FieldDefinition {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}
