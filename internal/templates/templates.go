// Package templates loads the reply template table.
package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NamePlaceholder is replaced with the reviewer's display name.
const NamePlaceholder = "{name}"

// Table maps "{stars}_{period}_{lang}" keys to reply templates.
// It is read-only after loading.
type Table struct {
	entries map[string]string
}

// Load reads the template table from a JSON or YAML file.
// YAML is a superset of JSON, so templates.json files load unchanged.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a template table from JSON or YAML bytes.
func Parse(data []byte) (*Table, error) {
	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return New(entries), nil
}

// New builds a table from an in-memory map. The map is copied.
func New(entries map[string]string) *Table {
	t := &Table{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Lookup returns the template for key. A missing key is not an error.
func (t *Table) Lookup(key string) (string, bool) {
	tpl, ok := t.entries[key]
	if !ok || tpl == "" {
		return "", false
	}
	return tpl, true
}

// Len returns the number of templates.
func (t *Table) Len() int {
	return len(t.entries)
}
