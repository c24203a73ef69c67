package persona

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/persona-authenticity/internal/config"
	"github.com/jonathan/persona-authenticity/internal/schemas"
	"github.com/jonathan/persona-authenticity/internal/types"
)

// File is the on-disk layout of a persona definitions file
type File struct {
	Personas []types.PersonaProfile `yaml:"personas"`
}

// LoadFile reads a YAML (or JSON) persona definitions file and builds a Store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.Error{Field: "personas_file", Message: fmt.Sprintf("failed to read %s", path), Cause: err}
	}
	return Parse(data)
}

// Parse decodes persona definitions, checks them against the embedded schema and builds a Store.
func Parse(data []byte) (*Store, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &config.Error{Field: "personas_file", Message: "failed to parse persona YAML", Cause: err}
	}
	if err := schemas.ValidateDocument(schemas.PersonasSchema, doc); err != nil {
		return nil, &config.Error{Field: "personas_file", Message: "persona definitions do not match schema", Cause: err}
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, &config.Error{Field: "personas_file", Message: "failed to decode personas", Cause: err}
	}

	return NewStore(file.Personas)
}
