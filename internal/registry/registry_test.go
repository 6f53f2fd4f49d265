package registry

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedSchemas(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(reg.Keys()) == 0 {
		t.Fatal("Expected registry to have resources")
	}
}

func TestComputeInstancesResourceExists(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def, ok := reg.Get("compute-instances")
	if !ok {
		t.Fatal("Expected compute-instances resource to exist")
	}
	if def.DisplayName != "VM Instances" {
		t.Errorf("Expected display name 'VM Instances', got %q", def.DisplayName)
	}
	if def.Service != "compute" {
		t.Errorf("Expected service 'compute', got %q", def.Service)
	}
	if def.Key != "compute-instances" {
		t.Errorf("Expected key to be set on the definition, got %q", def.Key)
	}
}

func TestKeysAreSorted(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	keys := reg.Keys()
	found := false
	for i, key := range keys {
		if key == "compute-instances" {
			found = true
		}
		if i > 0 && keys[i-1] > key {
			t.Errorf("Expected sorted keys, but %q comes after %q", key, keys[i-1])
		}
	}
	if !found {
		t.Error("Expected keys to contain compute-instances")
	}
}

func TestSubResourceLinksResolve(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, key := range reg.Keys() {
		def, _ := reg.Get(key)
		for _, sub := range def.SubResources {
			if _, ok := reg.Get(sub.ResourceKey); !ok {
				t.Errorf("Resource %q links to unknown sub-resource %q", key, sub.ResourceKey)
			}
		}
	}
}

func TestColorForStatusMap(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	color, ok := reg.ColorFor("status", "RUNNING")
	if !ok {
		t.Fatal("Expected status color map to contain RUNNING")
	}
	if color == [3]uint8{} {
		t.Error("Expected a non-zero color for RUNNING")
	}
	if _, ok := reg.ColorFor("status", "NO-SUCH-VALUE"); ok {
		t.Error("Expected unknown value to report ok=false")
	}
	if _, ok := reg.ColorFor("no-such-map", "RUNNING"); ok {
		t.Error("Expected unknown map to report ok=false")
	}
}

const validResource = `{
  "display_name": "Widgets",
  "service": "compute",
  "sdk_method": "list_widgets",
  "response_path": "items",
  "id_field": "name",
  "name_field": "name",
  "columns": [{ "header": "NAME", "json_path": "name", "width": 20 }]
}`

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"resources": {"widgets": ` + validResource + `}}`)},
		"b.json": {Data: []byte(`{"resources": {"widgets": ` + validResource + `}}`)},
	}

	_, err := loadFS(fsys, ".")
	if err == nil {
		t.Fatal("Expected duplicate key to fail load")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %T: %v", err, err)
	}
	if schemaErr.Key != "widgets" {
		t.Errorf("Expected error to name key 'widgets', got %q", schemaErr.Key)
	}
}

func TestLoadRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing sdk_method", `{"display_name": "W", "service": "compute", "response_path": "items", "id_field": "name", "name_field": "name", "columns": [{"header": "N", "json_path": "name", "width": 5}]}`},
		{"missing response_path", `{"display_name": "W", "service": "compute", "sdk_method": "list_w", "id_field": "name", "name_field": "name", "columns": [{"header": "N", "json_path": "name", "width": 5}]}`},
		{"missing id_field", `{"display_name": "W", "service": "compute", "sdk_method": "list_w", "response_path": "items", "name_field": "name", "columns": [{"header": "N", "json_path": "name", "width": 5}]}`},
		{"no columns", `{"display_name": "W", "service": "compute", "sdk_method": "list_w", "response_path": "items", "id_field": "name", "name_field": "name", "columns": []}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"a.json": {Data: []byte(`{"resources": {"widgets": ` + tc.json + `}}`)},
			}
			if _, err := loadFS(fsys, "."); err == nil {
				t.Error("Expected load to fail")
			}
		})
	}
}

func TestLoadRejectsDanglingSubResource(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"resources": {"widgets": {
			"display_name": "Widgets",
			"service": "compute",
			"sdk_method": "list_widgets",
			"response_path": "items",
			"id_field": "name",
			"name_field": "name",
			"columns": [{ "header": "NAME", "json_path": "name", "width": 20 }],
			"sub_resources": [{ "resource_key": "no-such-thing", "display_name": "X", "shortcut": "x", "parent_id_field": "name", "filter_param": "widget" }]
		}}}`)},
	}

	_, err := loadFS(fsys, ".")
	if err == nil {
		t.Fatal("Expected dangling sub-resource reference to fail load")
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{not json`)},
	}
	if _, err := loadFS(fsys, "."); err == nil {
		t.Error("Expected invalid JSON to fail load")
	}
}

func TestLookupReturnsSuppliedDefinition(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(`{"resources": {"widgets": ` + validResource + `}}`)},
	}
	reg, err := loadFS(fsys, ".")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	def, ok := reg.Get("widgets")
	if !ok {
		t.Fatal("Expected widgets to be found")
	}
	if def.SDKMethod != "list_widgets" {
		t.Errorf("Expected sdk_method 'list_widgets', got %q", def.SDKMethod)
	}
	if _, ok := reg.Get("gadgets"); ok {
		t.Error("Expected lookup of unknown key to report ok=false")
	}
}

func TestActionLookupHelpers(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def, _ := reg.Get("compute-instances")

	action, ok := def.ActionByShortcut("s")
	if !ok {
		t.Fatal("Expected 's' to resolve an action on instances")
	}
	if action.SDKMethod != "ssh_instance" {
		t.Errorf("Expected ssh_instance, got %q", action.SDKMethod)
	}
	if !action.IsShell() {
		t.Error("Expected ssh_instance to be a shell action")
	}

	del, ok := def.DeleteAction()
	if !ok {
		t.Fatal("Expected instances to define a delete action")
	}
	if del.SDKMethod != "delete_instance" {
		t.Errorf("Expected delete_instance, got %q", del.SDKMethod)
	}
	if !del.RequiresConfirm() {
		t.Error("Expected delete to require confirmation")
	}
	cfg := del.ConfirmConfig()
	if cfg == nil || !cfg.Destructive {
		t.Error("Expected delete confirm config to be destructive")
	}
	if cfg != nil && cfg.DefaultYes {
		t.Error("Expected delete to default to No")
	}
}

func TestSubResourceByShortcut(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	def, _ := reg.Get("compute-networks")

	sub, ok := def.SubResourceByShortcut("s")
	if !ok {
		t.Fatal("Expected 's' to resolve a sub-resource on networks")
	}
	if sub.ResourceKey != "compute-subnetworks" {
		t.Errorf("Expected compute-subnetworks, got %q", sub.ResourceKey)
	}
	if _, ok := def.SubResourceByShortcut("q"); ok {
		t.Error("Expected unknown shortcut to report ok=false")
	}
}

func TestConfirmConfigSynthesizedFromNeedsConfirm(t *testing.T) {
	action := ActionDef{Key: "stop", DisplayName: "Stop", SDKMethod: "stop_widget", NeedsConfirm: true}

	if !action.RequiresConfirm() {
		t.Fatal("Expected needs_confirm to require confirmation")
	}
	cfg := action.ConfirmConfig()
	if cfg == nil {
		t.Fatal("Expected a synthesized confirm config")
	}
	if cfg.DefaultYes {
		t.Error("Expected synthesized config to default to No")
	}
	if cfg.Message != "Stop" {
		t.Errorf("Expected message to fall back to display name, got %q", cfg.Message)
	}
}
