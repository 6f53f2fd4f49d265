package gcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/MrMichou/tgcp/internal/registry"
)

// MaxPages bounds a full listing. Hitting the ceiling is an error, not
// a silent truncation.
const MaxPages = 500

// fetchWorkers bounds concurrent multi-type fetches.
const fetchWorkers = 4

var (
	// ErrTooManyPages means a listing walked MaxPages pages without
	// exhausting the collection.
	ErrTooManyPages = errors.New("pagination exceeded page limit")
	// ErrFetchInFlight rejects a list request while an earlier one for
	// the same view is still running.
	ErrFetchInFlight = errors.New("fetch already in progress")
)

// Item is one fetched resource instance. Raw holds the original JSON
// document; Computed holds derived display fields layered on top.
type Item struct {
	Raw      []byte
	Computed map[string]string
}

// Field resolves a column path against the item. Computed fields win
// over document paths. Missing and null values render as "-".
func (it Item) Field(path string) string {
	if v, ok := it.Computed[path]; ok {
		return v
	}
	res := gjson.GetBytes(it.Raw, path)
	switch {
	case !res.Exists(), res.Type == gjson.Null:
		return "-"
	case res.IsArray():
		return fmt.Sprintf("[%d items]", len(res.Array()))
	case res.IsObject():
		return "[object]"
	}
	return res.String()
}

// ID returns the item's identifier per the resource definition.
func (it Item) ID(def *registry.ResourceDef) string {
	return it.Field(def.IDField)
}

// Name returns the item's display name per the resource definition.
func (it Item) Name(def *registry.ResourceDef) string {
	return it.Field(def.NameField)
}

// FetchRequest describes one listing.
type FetchRequest struct {
	Def       *registry.ResourceDef
	Scope     Scope
	Params    Params
	PageToken string
}

// Page is one page of results.
type Page struct {
	Items     []Item
	NextToken string
}

// FetchPage lists a single page for one resource type.
func FetchPage(ctx context.Context, client Client, req FetchRequest) (Page, error) {
	params := Params{}
	for k, v := range req.Def.SDKMethodParams {
		params[k] = v
	}
	for k, v := range req.Params {
		params[k] = v
	}
	if req.PageToken != "" {
		params["pageToken"] = req.PageToken
	}

	spec, err := Resolve(req.Def.Service, req.Def.SDKMethod, req.Scope, params)
	if err != nil {
		return Page{}, err
	}
	body, err := Invoke(ctx, client, spec)
	if err != nil {
		return Page{}, err
	}
	if spec.Aggregated {
		body = flattenAggregated(body, req.Def.ResponsePath)
	}

	raws := extractItems(body, req.Def.ResponsePath)
	items := make([]Item, 0, len(raws))
	for _, raw := range raws {
		items = append(items, Item{Raw: raw, Computed: computeFields(raw)})
	}
	return Page{Items: items, NextToken: gjson.GetBytes(body, "nextPageToken").String()}, nil
}

// FetchAll walks every page of a listing. Any page failure discards
// the partial result; the caller keeps whatever it showed before.
func FetchAll(ctx context.Context, client Client, req FetchRequest) ([]Item, error) {
	var all []Item
	token := ""
	for page := 0; page < MaxPages; page++ {
		req.PageToken = token
		p, err := FetchPage(ctx, client, req)
		if err != nil {
			return nil, fmt.Errorf("fetching %s page %d: %w", req.Def.Key, page+1, err)
		}
		all = append(all, p.Items...)
		if p.NextToken == "" {
			slog.Debug("fetched resource list", "resource", req.Def.Key, "items", len(all), "pages", page+1)
			return all, nil
		}
		token = p.NextToken
	}
	return nil, fmt.Errorf("%w: %s walked %d pages", ErrTooManyPages, req.Def.Key, MaxPages)
}

// TypeResult is the outcome for one resource type in a multi-type
// fetch. Failures stay per-type; one failing type never blocks others.
type TypeResult struct {
	Key   string
	Items []Item
	Err   error
}

// FetchMany lists several resource types concurrently. Results come
// back in request order regardless of completion order.
func FetchMany(ctx context.Context, client Client, reqs []FetchRequest) []TypeResult {
	results := make([]TypeResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(fetchWorkers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			items, err := FetchAll(ctx, client, req)
			results[i] = TypeResult{Key: req.Def.Key, Items: items, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}

// FetchDetail retrieves the full document for one item via the
// definition's detail method.
func FetchDetail(ctx context.Context, client Client, def *registry.ResourceDef, scope Scope, params Params) ([]byte, error) {
	if def.DetailSDKMethod == "" {
		return nil, fmt.Errorf("%w: %s has no detail method", ErrUnknownMethod, def.Key)
	}
	merged := Params{}
	for k, v := range def.DetailSDKMethodParams {
		merged[k] = v
	}
	for k, v := range params {
		merged[k] = v
	}
	spec, err := Resolve(def.Service, def.DetailSDKMethod, scope, merged)
	if err != nil {
		return nil, err
	}
	return Invoke(ctx, client, spec)
}

// flattenAggregated rewrites an aggregated-list response into the flat
// shape the rest of the pipeline expects. Each per-scope bucket holds
// the resource array under its own key; warnings mark empty scopes and
// are skipped.
func flattenAggregated(body []byte, responsePath string) []byte {
	flat := []json.RawMessage{}
	gjson.GetBytes(body, "items").ForEach(func(_, scoped gjson.Result) bool {
		scoped.ForEach(func(key, value gjson.Result) bool {
			if key.String() == "warning" || !value.IsArray() {
				return true
			}
			for _, item := range value.Array() {
				flat = append(flat, json.RawMessage(item.Raw))
			}
			return true
		})
		return true
	})

	out := map[string]any{responsePath: flat}
	if tok := gjson.GetBytes(body, "nextPageToken"); tok.Exists() {
		out["nextPageToken"] = tok.String()
	}
	rebuilt, err := json.Marshal(out)
	if err != nil {
		return body
	}
	return rebuilt
}

func extractItems(body []byte, responsePath string) [][]byte {
	res := gjson.GetBytes(body, responsePath)
	if !res.IsArray() {
		return nil
	}
	arr := res.Array()
	items := make([][]byte, 0, len(arr))
	for _, item := range arr {
		items = append(items, []byte(item.Raw))
	}
	return items
}

// computeFields derives display-only fields from a raw document.
// Derived values never overwrite document fields; columns reference
// them through _short, _count and _display suffix names.
func computeFields(raw []byte) map[string]string {
	doc := gjson.ParseBytes(raw)
	out := map[string]string{}

	shorten := func(field string) {
		if v := doc.Get(field); v.Exists() && v.Type == gjson.String {
			out[field+"_short"] = lastPathSegment(v.String())
		}
	}
	shorten("zone")
	shorten("region")
	shorten("machineType")
	shorten("type")
	shorten("network")
	shorten("subnetwork")

	if v := doc.Get("users"); v.IsArray() {
		out["users_count"] = strconv.Itoa(len(v.Array()))
	}
	if v := doc.Get("subnetworks"); v.IsArray() {
		out["subnetworks_count"] = strconv.Itoa(len(v.Array()))
	}
	if v := doc.Get("autoCreateSubnetworks"); v.Exists() {
		if v.Bool() {
			out["autoCreateSubnetworks_display"] = "Auto"
		} else {
			out["autoCreateSubnetworks_display"] = "Custom"
		}
	}
	if doc.Get("allowed").Exists() {
		out["action_display"] = "ALLOW"
	} else if doc.Get("denied").Exists() {
		out["action_display"] = "DENY"
	}

	if v := doc.Get("creationTimestamp"); v.Exists() {
		out["creationTimestamp_short"] = firstN(v.String(), 10)
	}
	if v := doc.Get("timeCreated"); v.Exists() {
		out["timeCreated_short"] = firstN(v.String(), 10)
	}
	if v := doc.Get("updated"); v.Exists() {
		out["updated_short"] = firstN(v.String(), 10)
	}
	if v := doc.Get("size"); v.Exists() {
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			out["size_display"] = formatBytes(n)
		}
	}

	// GKE clusters and node pools.
	if doc.Get("currentMasterVersion").Exists() {
		if doc.Get("autopilot.enabled").Bool() {
			out["autopilot_display"] = "Autopilot"
		} else {
			out["autopilot_display"] = "Standard"
		}
	}
	if doc.Get("initialNodeCount").Exists() || doc.Get("autoscaling.enabled").Exists() {
		if doc.Get("autoscaling.enabled").Bool() {
			out["autoscaling_display"] = "Yes"
		} else {
			out["autoscaling_display"] = "No"
		}
	}

	computeBillingFields(doc, out)
	return out
}

// computeBillingFields covers the Cloud Billing resource shapes:
// accounts, budgets, services and SKUs.
func computeBillingFields(doc gjson.Result, out map[string]string) {
	if v := doc.Get("name"); v.Exists() && strings.HasPrefix(v.String(), "billingAccounts/") {
		out["name_short"] = strings.TrimPrefix(v.String(), "billingAccounts/")
	}
	if v := doc.Get("open"); v.Exists() {
		if v.Bool() {
			out["open_display"] = "OPEN"
		} else {
			out["open_display"] = "CLOSED"
		}
		if master := doc.Get("masterBillingAccount"); master.Exists() {
			out["masterBillingAccount_short"] = strings.TrimPrefix(master.String(), "billingAccounts/")
		} else {
			out["masterBillingAccount_short"] = "-"
		}
	}

	if amount := doc.Get("amount"); amount.Exists() {
		if spec := amount.Get("specifiedAmount"); spec.Exists() {
			out["amount_display"] = formatCurrency(parseMoney(spec))
		} else {
			out["amount_display"] = "Last Period"
		}
		out["budget_status"] = "OK"
	}
	if v := doc.Get("thresholdRules"); v.IsArray() {
		out["thresholdRules_count"] = strconv.Itoa(len(v.Array()))
	}

	if v := doc.Get("businessEntityName"); v.Exists() {
		out["businessEntityName_short"] = strings.TrimPrefix(v.String(), "businessEntities/")
	}
	if expr := doc.Get("pricingInfo.0.pricingExpression"); expr.Exists() {
		if unit := expr.Get("usageUnit"); unit.Exists() {
			out["usage_unit"] = unit.String()
		}
		if price := expr.Get("tieredRates.0.unitPrice"); price.Exists() {
			out["price_display"] = formatPrice(parseMoney(price))
		}
	}
}

// parseMoney converts the API Money shape (units plus nanos) to a float.
func parseMoney(money gjson.Result) float64 {
	return float64(money.Get("units").Int()) + float64(money.Get("nanos").Int())/1e9
}

func formatCurrency(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

func formatPrice(v float64) string {
	switch {
	case v == 0:
		return "Free"
	case v < 0.0001:
		return fmt.Sprintf("$%.6f", v)
	default:
		return fmt.Sprintf("$%.4f", v)
	}
}

func formatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
		tb = 1 << 40
	)
	switch {
	case n >= tb:
		return fmt.Sprintf("%.1f TB", float64(n)/tb)
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	}
	return fmt.Sprintf("%d B", n)
}

func lastPathSegment(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
