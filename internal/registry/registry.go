// Package registry loads the resource schemas that drive the rest of
// the application: which resource kinds exist, how to list them, which
// columns to render, and which actions apply.
package registry

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaError reports a malformed resource definition. It is fatal at
// startup since the schemas are compiled into the binary.
type SchemaError struct {
	File   string
	Key    string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("schema %s: %s", e.File, e.Reason)
	}
	return fmt.Sprintf("schema %s: resource %q: %s", e.File, e.Key, e.Reason)
}

// Registry is the indexed set of resource definitions and color maps.
// Immutable after Load; safe for concurrent reads.
type Registry struct {
	resources map[string]*ResourceDef
	colorMaps map[string][]ColorDef
	keys      []string
}

// Load parses and validates the embedded schema files.
func Load() (*Registry, error) {
	return loadFS(schemaFS, "schemas")
}

func loadFS(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema dir: %w", err)
	}

	reg := &Registry{
		resources: make(map[string]*ResourceDef),
		colorMaps: make(map[string][]ColorDef),
	}

	for _, entry := range entries {
		name := entry.Name()
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", name, err)
		}
		var file schemaFile
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, &SchemaError{File: name, Reason: fmt.Sprintf("invalid JSON: %v", err)}
		}
		for mapName, colors := range file.ColorMaps {
			reg.colorMaps[mapName] = colors
		}
		for key, def := range file.Resources {
			if _, exists := reg.resources[key]; exists {
				return nil, &SchemaError{File: name, Key: key, Reason: "duplicate resource key"}
			}
			if err := validateDef(key, def); err != nil {
				return nil, &SchemaError{File: name, Key: key, Reason: err.Error()}
			}
			def.Key = key
			reg.resources[key] = def
		}
	}

	// Sub-resource links must point at keys that actually loaded.
	for key, def := range reg.resources {
		for _, sub := range def.SubResources {
			if _, ok := reg.resources[sub.ResourceKey]; !ok {
				return nil, &SchemaError{Key: key, Reason: fmt.Sprintf("sub-resource references unknown key %q", sub.ResourceKey)}
			}
		}
	}

	reg.keys = make([]string, 0, len(reg.resources))
	for key := range reg.resources {
		reg.keys = append(reg.keys, key)
	}
	sort.Strings(reg.keys)

	slog.Info("resource registry loaded", "resources", len(reg.resources), "color_maps", len(reg.colorMaps))
	return reg, nil
}

func validateDef(key string, def *ResourceDef) error {
	if key == "" {
		return fmt.Errorf("empty resource key")
	}
	switch {
	case def.DisplayName == "":
		return fmt.Errorf("missing display_name")
	case def.Service == "":
		return fmt.Errorf("missing service")
	case def.SDKMethod == "":
		return fmt.Errorf("missing sdk_method")
	case def.ResponsePath == "":
		return fmt.Errorf("missing response_path")
	case def.IDField == "":
		return fmt.Errorf("missing id_field")
	case def.NameField == "":
		return fmt.Errorf("missing name_field")
	case len(def.Columns) == 0:
		return fmt.Errorf("no columns defined")
	}
	for _, col := range def.Columns {
		if col.Header == "" || col.JSONPath == "" {
			return fmt.Errorf("column with empty header or json_path")
		}
	}
	for _, action := range def.Actions {
		if action.Key == "" || action.SDKMethod == "" {
			return fmt.Errorf("action with empty key or sdk_method")
		}
	}
	return nil
}

// Get returns the definition for a resource key.
func (r *Registry) Get(key string) (*ResourceDef, bool) {
	def, ok := r.resources[key]
	return def, ok
}

// Keys returns all resource keys in sorted order, for autocomplete.
func (r *Registry) Keys() []string {
	return r.keys
}

// ColorFor resolves a cell value through a named color map.
func (r *Registry) ColorFor(mapName, value string) ([3]uint8, bool) {
	for _, def := range r.colorMaps[mapName] {
		if def.Value == value {
			return def.Color, true
		}
	}
	return [3]uint8{}, false
}
