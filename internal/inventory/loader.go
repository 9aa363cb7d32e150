// Package inventory loads the hostconf inventory and indexes it by MAC address.
//
// The inventory is read, schema-validated and decoded exactly once, when the
// process starts. The resulting *models.Document and *Index are never mutated
// afterwards and may be shared by any number of goroutines without locking.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"evalgo.org/hostconf/internal/validation"
	"evalgo.org/hostconf/models"
)

var (
	// ErrConfigNotFound is returned when the inventory file does not exist.
	ErrConfigNotFound = errors.New("inventory not found")

	// ErrConfigParse is returned when the inventory is not well-formed YAML.
	ErrConfigParse = errors.New("inventory is not valid YAML")
)

// Load reads the inventory at path and returns the validated document.
//
// A missing file wraps ErrConfigNotFound, malformed YAML wraps ErrConfigParse
// and schema violations are returned as *validation.SchemaError.
func Load(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse validates and decodes an inventory document.
func Parse(data []byte) (*models.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := validation.New().Validate(&root); err != nil {
		return nil, err
	}

	var doc models.Document
	if err := root.Decode(&doc); err != nil {
		// Merge keys are expanded before validation, so every value
		// decoded here has already been checked against the schema.
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	return &doc, nil
}
