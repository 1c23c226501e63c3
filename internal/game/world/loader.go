package world

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileRoom is the on-disk representation of a single room entry.
type fileRoom struct {
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

// LoadFromFile reads and validates a world file. Files ending in .yaml
// or .yml are parsed as YAML; everything else is parsed as JSON. Both
// formats share the same schema: a mapping from "x,y,z" keys to
// {label, description} entries.
//
// Precondition: path must point to a readable world file.
// Postcondition: Returns a validated Manager or a non-nil error.
func LoadFromFile(path string) (*Manager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return LoadFromYAML(data)
	}
	return LoadFromJSON(data)
}

// LoadFromJSON parses and validates a world from JSON bytes.
//
// Postcondition: Returns a validated Manager or a non-nil error.
func LoadFromJSON(data []byte) (*Manager, error) {
	var entries map[string]fileRoom
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing world JSON: %w", err)
	}
	return buildManager(entries)
}

// LoadFromYAML parses and validates a world from YAML bytes.
//
// Postcondition: Returns a validated Manager or a non-nil error.
func LoadFromYAML(data []byte) (*Manager, error) {
	var entries map[string]fileRoom
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}
	return buildManager(entries)
}

// buildManager converts parsed file entries into a validated Manager.
func buildManager(entries map[string]fileRoom) (*Manager, error) {
	rooms := make(map[Location]Room, len(entries))
	for key, entry := range entries {
		loc, err := ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("world entry: %w", err)
		}
		if entry.Label == "" {
			return nil, fmt.Errorf("world entry %q: label must not be empty", key)
		}
		if _, exists := rooms[loc]; exists {
			return nil, fmt.Errorf("world entry %q: duplicate location", key)
		}
		rooms[loc] = Room{
			Location:    loc,
			Label:       entry.Label,
			Description: strings.TrimSpace(entry.Description),
		}
	}
	if len(rooms) == 0 {
		return nil, fmt.Errorf("world contains no rooms")
	}
	return NewManager(rooms), nil
}
