package ui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/notify"
	"github.com/MrMichou/tgcp/internal/registry"
	"github.com/MrMichou/tgcp/internal/shell"
	"github.com/MrMichou/tgcp/internal/state"
)

func toParams(filterParams map[string]string) gcp.Params {
	if len(filterParams) == 0 {
		return nil
	}
	params := gcp.Params{}
	for k, v := range filterParams {
		params[k] = v
	}
	return params
}

// itemScope narrows the fetch scope to the zone an aggregated-list
// item actually lives in. Acting across all zones needs the item's
// own zone for zonal URLs.
func (m Model) itemScope(item gcp.Item) gcp.Scope {
	scope := m.App.Scope()
	if scope.Zone == gcp.ZoneAll {
		if z := item.Field("zone_short"); z != "" && z != "-" {
			scope.Zone = z
		}
	}
	return scope
}

// splashCmd runs the startup fan-out: the root frame's resource plus a
// fixed set of headline resources, fetched concurrently. Marks the
// fetch in flight before handing off.
func (m Model) splashCmd() tea.Cmd {
	top := m.App.Top()
	if top == nil {
		return nil
	}
	_ = m.App.BeginFetch()

	keys := []string{top.ResourceKey}
	for _, k := range splashResources {
		if k != top.ResourceKey {
			keys = append(keys, k)
		}
	}
	reqs := make([]gcp.FetchRequest, 0, len(keys))
	for i, k := range keys {
		def, ok := m.Registry.Get(k)
		if !ok {
			continue
		}
		req := gcp.FetchRequest{Def: def, Scope: m.App.Scope()}
		if i == 0 {
			req.Params = toParams(top.FilterParams)
		}
		reqs = append(reqs, req)
	}

	frameID := top.ID
	ctx, client := m.ctx, m.Client
	return func() tea.Msg {
		return SplashMsg{FrameID: frameID, Results: gcp.FetchMany(ctx, client, reqs)}
	}
}

// fetchPageCmd lists the current page of the top frame.
func (m Model) fetchPageCmd(f *state.Frame, def *registry.ResourceDef) tea.Cmd {
	req := gcp.FetchRequest{
		Def:       def,
		Scope:     m.App.Scope(),
		Params:    toParams(f.FilterParams),
		PageToken: f.PageToken,
	}
	frameID := f.ID
	ctx, client := m.ctx, m.Client
	display := def.DisplayName
	return func() tea.Msg {
		page, err := gcp.FetchPage(ctx, client, req)
		if err != nil {
			return DataMsg{FrameID: frameID, Err: gcp.HandleAPIError(err, display)}
		}
		return DataMsg{FrameID: frameID, Items: page.Items, NextToken: page.NextToken}
	}
}

// describeCmd loads the full document for one item. Resources without
// a detail method reuse the list document.
func (m Model) describeCmd(def *registry.ResourceDef, item gcp.Item) tea.Cmd {
	top := m.App.Top()
	if top == nil {
		return nil
	}
	frameID := top.ID
	name := item.Name(def)

	if def.DetailSDKMethod == "" {
		doc := item.Raw
		return func() tea.Msg {
			return DetailsMsg{FrameID: frameID, Name: name, Doc: doc}
		}
	}

	params := toParams(top.FilterParams)
	if params == nil {
		params = gcp.Params{}
	}
	params["name"] = name
	scope := m.itemScope(item)
	ctx, client := m.ctx, m.Client
	return func() tea.Msg {
		doc, err := gcp.FetchDetail(ctx, client, def, scope, params)
		if err != nil {
			return DetailsMsg{FrameID: frameID, Name: name, Err: gcp.HandleAPIError(err, name)}
		}
		return DetailsMsg{FrameID: frameID, Name: name, Doc: doc}
	}
}

// projectsCmd loads the project selector.
func (m Model) projectsCmd() tea.Cmd {
	ctx, client := m.ctx, m.Client
	return func() tea.Msg {
		projects, err := gcp.ListProjects(ctx, client)
		if err != nil {
			return ProjectsMsg{Err: gcp.HandleAPIError(err, "projects")}
		}
		return ProjectsMsg{Projects: projects}
	}
}

// zonesCmd loads the zone selector, falling back to the static table
// when the API is unreachable.
func (m Model) zonesCmd() tea.Cmd {
	ctx, client, project := m.ctx, m.Client, m.App.Project
	return func() tea.Msg {
		zones, err := gcp.ListZones(ctx, client, project)
		if err != nil {
			return ZonesMsg{Zones: gcp.StaticZones(), Fallback: true, Err: gcp.HandleAPIError(err, "zones")}
		}
		return ZonesMsg{Zones: zones}
	}
}

// actionCmd submits one mutation and tracks its operation to a
// terminal state. The notification is created here, on the update
// loop, so the status bar reflects it immediately.
func (m Model) actionCmd(def *registry.ResourceDef, action registry.ActionDef, item gcp.Item) tea.Cmd {
	target := item.Name(def)
	notifID := m.Notifier.Start(action.SDKMethod, def.Key, target)

	params := gcp.Params{}
	if top := m.App.Top(); top != nil {
		for k, v := range top.FilterParams {
			params[k] = v
		}
	}
	if action.IDParam != "" {
		params[action.IDParam] = target
	}

	scope := m.itemScope(item)
	ctx, client, notifier := m.ctx, m.Client, m.Notifier
	service, method, resourceKey := def.Service, action.SDKMethod, def.Key

	return func() tea.Msg {
		spec, err := gcp.Resolve(service, method, scope, params)
		if err == nil {
			var body []byte
			body, err = gcp.Invoke(ctx, client, spec)
			if err == nil {
				if pollURL := gcp.ExtractOperationURL(body); pollURL != "" {
					notifier.SetOperationURL(notifID, pollURL)
					var result gcp.OperationResult
					result, err = gcp.TrackOperation(ctx, client, pollURL, gcp.PollInterval)
					if err == nil && result.Status == gcp.OperationFailed {
						err = errors.New(result.Message)
					}
				}
			}
		}
		if err != nil {
			friendly := gcp.HandleAPIError(err, target)
			notifier.Fail(notifID, friendly.Error())
			return ActionDoneMsg{NotificationID: notifID, ResourceKey: resourceKey, Err: friendly}
		}
		notifier.Complete(notifID)
		return ActionDoneMsg{NotificationID: notifID, ResourceKey: resourceKey}
	}
}

// sshCmd hands the terminal to gcloud compute ssh until the session
// ends.
func (m Model) sshCmd(def *registry.ResourceDef, item gcp.Item, useIAP bool) tea.Cmd {
	zone := item.Field("zone_short")
	if zone == "" || zone == "-" {
		zone = m.App.Zone
	}
	cmd := shell.SSHCommand(m.App.Project, zone, item.Name(def), useIAP || m.Config.SSH.UseIAP, m.Config.SSH.ExtraArgs)
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return ExecFinishedMsg{Err: err}
	})
}

// consoleCmd opens the Cloud Console page for one item in a browser.
func (m Model) consoleCmd(def *registry.ResourceDef, item gcp.Item) tea.Cmd {
	zone := item.Field("zone_short")
	if zone == "" || zone == "-" {
		zone = m.App.Zone
	}
	url := shell.ConsoleURL(def.Key, m.App.Project, zone, item.Name(def))
	return func() tea.Msg {
		if err := shell.OpenBrowserCommand(url).Start(); err != nil {
			return ExecFinishedMsg{Err: err}
		}
		return ExecFinishedMsg{}
	}
}

// toastTickCmd schedules a redraw just after the toast window closes.
func toastTickCmd() tea.Cmd {
	return tea.Tick(notify.ToastDuration+100*time.Millisecond, func(time.Time) tea.Msg {
		return ToastExpiredMsg{}
	})
}
