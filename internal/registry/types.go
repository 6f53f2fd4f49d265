package registry

// ColorDef maps a cell value to an RGB color.
type ColorDef struct {
	Value string   `json:"value"`
	Color [3]uint8 `json:"color"`
}

// ColumnDef describes one table column of a resource list view.
type ColumnDef struct {
	Header   string `json:"header"`
	JSONPath string `json:"json_path"`
	Width    int    `json:"width"`
	ColorMap string `json:"color_map,omitempty"`
}

// SubResourceDef links a resource to a child resource reachable by
// drill-down, e.g. network -> subnetworks.
type SubResourceDef struct {
	ResourceKey   string `json:"resource_key"`
	DisplayName   string `json:"display_name"`
	Shortcut      string `json:"shortcut"`
	ParentIDField string `json:"parent_id_field"`
	FilterParam   string `json:"filter_param"`
}

// ConfirmDef configures the confirmation dialog for an action.
type ConfirmDef struct {
	Message     string `json:"message,omitempty"`
	DefaultYes  bool   `json:"default_yes"`
	Destructive bool   `json:"destructive"`
}

// ActionDef describes an operation the user can trigger on a resource.
type ActionDef struct {
	Key          string      `json:"key"`
	DisplayName  string      `json:"display_name"`
	Shortcut     string      `json:"shortcut,omitempty"`
	SDKMethod    string      `json:"sdk_method"`
	IDParam      string      `json:"id_param,omitempty"`
	NeedsConfirm bool        `json:"needs_confirm,omitempty"`
	Confirm      *ConfirmDef `json:"confirm,omitempty"`
}

// RequiresConfirm reports whether the action needs a yes/no prompt.
func (a *ActionDef) RequiresConfirm() bool {
	return a.Confirm != nil || a.NeedsConfirm
}

// ConfirmConfig returns the confirmation settings, synthesizing a
// default-no dialog for actions that only set needs_confirm.
func (a *ActionDef) ConfirmConfig() *ConfirmDef {
	if a.Confirm != nil {
		return a.Confirm
	}
	if a.NeedsConfirm {
		return &ConfirmDef{Message: a.DisplayName}
	}
	return nil
}

// IsShell reports whether the action takes over the terminal instead of
// dispatching an API call.
func (a *ActionDef) IsShell() bool {
	switch a.SDKMethod {
	case "ssh_instance", "ssh_instance_iap", "open_console":
		return true
	}
	return false
}

// ResourceDef is the static schema for one resource kind: how to list
// it, how to render it, and what can be done to it.
type ResourceDef struct {
	Key                   string            `json:"-"`
	DisplayName           string            `json:"display_name"`
	Service               string            `json:"service"`
	SDKMethod             string            `json:"sdk_method"`
	SDKMethodParams       map[string]string `json:"sdk_method_params,omitempty"`
	ResponsePath          string            `json:"response_path"`
	IDField               string            `json:"id_field"`
	NameField             string            `json:"name_field"`
	IsGlobal              bool              `json:"is_global,omitempty"`
	IsRegional            bool              `json:"is_regional,omitempty"`
	Columns               []ColumnDef       `json:"columns"`
	SubResources          []SubResourceDef  `json:"sub_resources,omitempty"`
	Actions               []ActionDef       `json:"actions,omitempty"`
	DetailSDKMethod       string            `json:"detail_sdk_method,omitempty"`
	DetailSDKMethodParams map[string]string `json:"detail_sdk_method_params,omitempty"`
}

// SubResourceByShortcut finds the drill-down link bound to a key press.
func (r *ResourceDef) SubResourceByShortcut(shortcut string) (*SubResourceDef, bool) {
	for i := range r.SubResources {
		if r.SubResources[i].Shortcut == shortcut {
			return &r.SubResources[i], true
		}
	}
	return nil, false
}

// ActionByShortcut finds the action bound to a key press.
func (r *ResourceDef) ActionByShortcut(shortcut string) (*ActionDef, bool) {
	for i := range r.Actions {
		if r.Actions[i].Shortcut == shortcut {
			return &r.Actions[i], true
		}
	}
	return nil, false
}

// DeleteAction finds the action whose method deletes the resource, if
// the schema defines one. Bound to the Delete key.
func (r *ResourceDef) DeleteAction() (*ActionDef, bool) {
	for i := range r.Actions {
		if len(r.Actions[i].SDKMethod) > 7 && r.Actions[i].SDKMethod[:7] == "delete_" {
			return &r.Actions[i], true
		}
	}
	return nil, false
}

// schemaFile is the root structure of one embedded schema document.
type schemaFile struct {
	ColorMaps map[string][]ColorDef   `json:"color_maps"`
	Resources map[string]*ResourceDef `json:"resources"`
}
