package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

// StructLoader derives abstract collection declarations from Go structs,
// so a codebase can keep its data model in code instead of YAML. Fields
// may carry a `schemadrift` tag to override the inferred type or mark a
// field optional.
type StructLoader struct {
	modelsDir string
}

func NewStructLoader(modelsDir string) *StructLoader {
	return &StructLoader{modelsDir: modelsDir}
}

// LoadDeclarationsFromStructs parses every .go file under modelsDir.
func LoadDeclarationsFromStructs(modelsDir string) (Declarations, error) {
	return NewStructLoader(modelsDir).Load()
}

func (sl *StructLoader) Load() (Declarations, error) {
	if _, err := os.Stat(sl.modelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("models directory %q does not exist", sl.modelsDir)
	}

	decls := Declarations{}

	err := filepath.Walk(sl.modelsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if err := sl.parseFile(path, decls); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading declarations: %w", err)
	}

	return decls, nil
}

func (sl *StructLoader) parseFile(path string, decls Declarations) error {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
	if err != nil {
		return err
	}

	ast.Inspect(node, func(n ast.Node) bool {
		spec, ok := n.(*ast.TypeSpec)
		if !ok {
			return true
		}
		structType, ok := spec.Type.(*ast.StructType)
		if !ok {
			return true
		}
		decls[spec.Name.Name] = sl.parseStruct(structType)
		return true
	})
	return nil
}

func (sl *StructLoader) parseStruct(structType *ast.StructType) map[string]interface{} {
	properties := map[string]interface{}{}

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			continue // embedded fields are not declared properties
		}
		name := field.Names[0].Name
		if !ast.IsExported(name) {
			continue
		}

		typeName, optional := fieldType(field.Type)
		override, tagOptional, ignore := parseTag(field.Tag)
		if ignore {
			continue
		}
		if override != "" {
			typeName = override
		}

		properties[toSnakeCase(name)] = map[string]interface{}{
			"type":     abstractType(typeName),
			"optional": optional || tagOptional,
		}
	}
	return properties
}

// parseTag reads the schemadrift struct tag: "-" ignores the field,
// "type:email" overrides the inferred type, "optional" marks it nullable.
func parseTag(tag *ast.BasicLit) (override string, optional, ignore bool) {
	if tag == nil {
		return "", false, false
	}
	value := reflect.StructTag(strings.Trim(tag.Value, "`")).Get("schemadrift")
	if value == "-" {
		return "", false, true
	}
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		switch {
		case part == "optional":
			optional = true
		case strings.HasPrefix(part, "type:"):
			override = strings.TrimPrefix(part, "type:")
		}
	}
	return override, optional, false
}

func fieldType(expr ast.Expr) (name string, optional bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false
	case *ast.StarExpr:
		inner, _ := fieldType(t.X)
		return inner, true
	case *ast.ArrayType:
		return "array", false
	case *ast.MapType, *ast.StructType:
		return "object", false
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name, false
		}
	}
	return "", false
}

// toSnakeCase converts a Go field name to snake_case, inserting an
// underscore only at a lower-to-upper boundary so initialisms collapse:
// ID becomes id and UserID becomes user_id, which is what the key-naming
// conventions downstream key off.
func toSnakeCase(s string) string {
	var result string
	var prev rune

	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			result += "_"
		}
		result += string(r)
		prev = r
	}
	return strings.ToLower(result)
}

func abstractType(goType string) string {
	switch goType {
	case "string":
		return "string"
	case "int", "int32", "int64", "uint", "uint32", "uint64":
		return "integer"
	case "bool":
		return "boolean"
	case "float32", "float64":
		return "decimal"
	case "time.Time":
		return "timestamp"
	case "uuid.UUID":
		return "uuid"
	case "array", "object":
		return goType
	case "":
		return "string"
	default:
		if strings.Contains(goType, ".") {
			return "object"
		}
		return goType
	}
}
