package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Declarations maps a declared collection name to its abstract property
// map. A property value is a primitive type tag, a union (ordered list,
// first element significant) or a nested descriptor carrying type and
// optional/required flags — exactly what the generator consumes.
type Declarations map[string]map[string]interface{}

type yamlFile struct {
	Collections map[string]map[string]interface{} `yaml:"collections"`
}

// LoadDeclarationsFromYAML reads a collections file, e.g.:
//
//	collections:
//	  AdminUser:
//	    id: string
//	    email: { type: string, required: true }
//	    deletedAt: ["Date", "undefined"]
func LoadDeclarationsFromYAML(filename string) (Declarations, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading collections file: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if yf.Collections == nil {
		return Declarations{}, nil
	}
	return Declarations(yf.Collections), nil
}
