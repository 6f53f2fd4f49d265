package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/MrMichou/tgcp/internal/registry"
)

func instancesDef() *registry.ResourceDef {
	return &registry.ResourceDef{
		Key:          "compute-instances",
		DisplayName:  "VM Instances",
		Service:      "compute",
		SDKMethod:    "list_instances",
		ResponsePath: "items",
		IDField:      "id",
		NameField:    "name",
	}
}

func testScope() Scope {
	return Scope{Project: "my-proj", Zone: "us-central1-a"}
}

func TestFetchAllConcatenatesPages(t *testing.T) {
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		if strings.Contains(url, "pageToken=tok2") {
			return []byte(`{"items":[{"id":"3","name":"c"}]}`), nil
		}
		return []byte(`{"items":[{"id":"1","name":"a"},{"id":"2","name":"b"}],"nextPageToken":"tok2"}`), nil
	}}

	items, err := FetchAll(context.Background(), client, FetchRequest{Def: instancesDef(), Scope: testScope()})
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got := items[i].Field("name"); got != want {
			t.Errorf("items[%d].name = %q, want %q", i, got, want)
		}
	}
	if calls := client.Calls(); len(calls) != 2 {
		t.Errorf("made %d requests, want 2", len(calls))
	}
}

func TestFetchAllFailsFastMidPagination(t *testing.T) {
	boom := errors.New("boom")
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		if strings.Contains(url, "pageToken") {
			return nil, boom
		}
		return []byte(`{"items":[{"id":"1","name":"a"}],"nextPageToken":"tok2"}`), nil
	}}

	items, err := FetchAll(context.Background(), client, FetchRequest{Def: instancesDef(), Scope: testScope()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if items != nil {
		t.Errorf("partial results must be discarded on failure, got %d items", len(items))
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error should name the failing page, got %q", err)
	}
}

func TestFetchAllPageCeiling(t *testing.T) {
	client := &MockClient{GetFunc: func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"items":[{"id":"1","name":"a"}],"nextPageToken":"again"}`), nil
	}}

	_, err := FetchAll(context.Background(), client, FetchRequest{Def: instancesDef(), Scope: testScope()})
	if !errors.Is(err, ErrTooManyPages) {
		t.Fatalf("err = %v, want ErrTooManyPages", err)
	}
	if calls := client.Calls(); len(calls) != MaxPages {
		t.Errorf("made %d requests, want %d", len(calls), MaxPages)
	}
}

func TestFetchPageAggregatedFlattening(t *testing.T) {
	body := `{
		"items": {
			"zones/us-central1-a": {"instances": [{"id":"1","name":"a","zone":"projects/p/zones/us-central1-a"}]},
			"zones/us-central1-b": {"warning": {"code": "NO_RESULTS_ON_PAGE"}},
			"zones/us-east1-b":    {"instances": [{"id":"2","name":"b","zone":"projects/p/zones/us-east1-b"}]}
		}
	}`
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		if !strings.Contains(url, "/aggregated/instances") {
			return nil, fmt.Errorf("unexpected url %s", url)
		}
		return []byte(body), nil
	}}

	page, err := FetchPage(context.Background(), client, FetchRequest{
		Def:   instancesDef(),
		Scope: Scope{Project: "my-proj", Zone: ZoneAll},
	})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(page.Items))
	}
	if got := page.Items[0].Field("name"); got != "a" {
		t.Errorf("first item name = %q, want a", got)
	}
	if got := page.Items[1].Field("zone_short"); got != "us-east1-b" {
		t.Errorf("zone_short = %q, want us-east1-b", got)
	}
}

func TestFetchManyPreservesRequestOrder(t *testing.T) {
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		switch {
		case strings.Contains(url, "/instances"):
			return []byte(`{"items":[{"id":"1","name":"vm-a"}]}`), nil
		case strings.Contains(url, "/disks"):
			return nil, errors.New("disks quota exceeded")
		case strings.Contains(url, "storage"):
			return []byte(`{"items":[{"id":"b1","name":"bucket-a"},{"id":"b2","name":"bucket-b"}]}`), nil
		}
		return nil, fmt.Errorf("unexpected url %s", url)
	}}

	disksDef := instancesDef()
	disksDef.Key = "compute-disks"
	disksDef.SDKMethod = "list_disks"
	bucketsDef := &registry.ResourceDef{
		Key: "storage-buckets", Service: "storage", SDKMethod: "list_buckets",
		ResponsePath: "items", IDField: "id", NameField: "name",
	}

	results := FetchMany(context.Background(), client, []FetchRequest{
		{Def: instancesDef(), Scope: testScope()},
		{Def: disksDef, Scope: testScope()},
		{Def: bucketsDef, Scope: testScope()},
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	wantKeys := []string{"compute-instances", "compute-disks", "storage-buckets"}
	for i, key := range wantKeys {
		if results[i].Key != key {
			t.Errorf("results[%d].Key = %q, want %q", i, results[i].Key, key)
		}
	}
	if results[0].Err != nil || len(results[0].Items) != 1 {
		t.Errorf("instances result = (%d items, %v), want 1 item and no error", len(results[0].Items), results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("disks failure must surface on its own slot")
	}
	if results[2].Err != nil || len(results[2].Items) != 2 {
		t.Errorf("buckets result = (%d items, %v), want 2 items and no error", len(results[2].Items), results[2].Err)
	}
}

func TestFetchPageMergesFilterParams(t *testing.T) {
	var seen string
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		seen = url
		return []byte(`{"items":[]}`), nil
	}}

	def := instancesDef()
	def.Key = "compute-firewalls"
	def.SDKMethod = "list_firewalls"
	_, err := FetchPage(context.Background(), client, FetchRequest{
		Def:    def,
		Scope:  testScope(),
		Params: Params{"filter": `network="https://x/net-1"`},
	})
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if !strings.Contains(seen, "filter=") {
		t.Errorf("filter param should reach the query string, got %q", seen)
	}
}

func TestFetchDetail(t *testing.T) {
	client := &MockClient{GetFunc: func(_ context.Context, url string) ([]byte, error) {
		if !strings.HasSuffix(url, "/instances/web-1") {
			return nil, fmt.Errorf("unexpected url %s", url)
		}
		return []byte(`{"id":"1","name":"web-1","status":"RUNNING"}`), nil
	}}

	def := instancesDef()
	def.DetailSDKMethod = "get_instance"
	body, err := FetchDetail(context.Background(), client, def, testScope(), Params{"name": "web-1"})
	if err != nil {
		t.Fatalf("FetchDetail returned error: %v", err)
	}
	if !strings.Contains(string(body), `"status":"RUNNING"`) {
		t.Errorf("detail body = %s", body)
	}
}

func TestFetchDetailWithoutMethod(t *testing.T) {
	_, err := FetchDetail(context.Background(), &MockClient{}, instancesDef(), testScope(), nil)
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("err = %v, want ErrUnknownMethod", err)
	}
}

func TestItemFieldFallbacks(t *testing.T) {
	item := Item{Raw: []byte(`{"name":"a","tags":["x","y"],"labels":{"env":"prod"},"gone":null}`)}
	for _, tc := range []struct {
		path string
		want string
	}{
		{"name", "a"},
		{"missing", "-"},
		{"gone", "-"},
		{"tags", "[2 items]"},
		{"labels", "[object]"},
		{"labels.env", "prod"},
	} {
		if got := item.Field(tc.path); got != tc.want {
			t.Errorf("Field(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestItemFieldPrefersComputed(t *testing.T) {
	item := Item{
		Raw:      []byte(`{"zone":"projects/p/zones/us-central1-a"}`),
		Computed: map[string]string{"zone_short": "us-central1-a"},
	}
	if got := item.Field("zone_short"); got != "us-central1-a" {
		t.Errorf("Field(zone_short) = %q", got)
	}
}

func TestComputeFieldsInstance(t *testing.T) {
	raw := []byte(`{
		"name": "web-1",
		"zone": "https://compute.googleapis.com/compute/v1/projects/p/zones/us-central1-a",
		"machineType": "https://compute.googleapis.com/compute/v1/projects/p/machineTypes/e2-medium",
		"creationTimestamp": "2024-03-01T12:34:56.000-07:00"
	}`)
	fields := computeFields(raw)
	if fields["zone_short"] != "us-central1-a" {
		t.Errorf("zone_short = %q", fields["zone_short"])
	}
	if fields["machineType_short"] != "e2-medium" {
		t.Errorf("machineType_short = %q", fields["machineType_short"])
	}
	if fields["creationTimestamp_short"] != "2024-03-01" {
		t.Errorf("creationTimestamp_short = %q", fields["creationTimestamp_short"])
	}
}

func TestComputeFieldsNetwork(t *testing.T) {
	auto := computeFields([]byte(`{"name":"default","autoCreateSubnetworks":true,"subnetworks":["a","b","c"]}`))
	if auto["autoCreateSubnetworks_display"] != "Auto" {
		t.Errorf("auto mode = %q", auto["autoCreateSubnetworks_display"])
	}
	if auto["subnetworks_count"] != "3" {
		t.Errorf("subnetworks_count = %q", auto["subnetworks_count"])
	}

	custom := computeFields([]byte(`{"name":"vpc-1","autoCreateSubnetworks":false}`))
	if custom["autoCreateSubnetworks_display"] != "Custom" {
		t.Errorf("custom mode = %q", custom["autoCreateSubnetworks_display"])
	}
}

func TestComputeFieldsFirewallAction(t *testing.T) {
	allow := computeFields([]byte(`{"name":"allow-ssh","allowed":[{"IPProtocol":"tcp"}]}`))
	if allow["action_display"] != "ALLOW" {
		t.Errorf("allow rule = %q", allow["action_display"])
	}
	deny := computeFields([]byte(`{"name":"deny-all","denied":[{"IPProtocol":"all"}]}`))
	if deny["action_display"] != "DENY" {
		t.Errorf("deny rule = %q", deny["action_display"])
	}
}

func TestComputeFieldsObjectSize(t *testing.T) {
	fields := computeFields([]byte(`{"name":"backup.tar","size":"2048","timeCreated":"2024-05-09T08:00:00Z"}`))
	if fields["size_display"] != "2.0 KB" {
		t.Errorf("size_display = %q", fields["size_display"])
	}
	if fields["timeCreated_short"] != "2024-05-09" {
		t.Errorf("timeCreated_short = %q", fields["timeCreated_short"])
	}
}

func TestComputeFieldsCluster(t *testing.T) {
	autopilot := computeFields([]byte(`{"name":"prod","currentMasterVersion":"1.29.1","autopilot":{"enabled":true}}`))
	if autopilot["autopilot_display"] != "Autopilot" {
		t.Errorf("autopilot cluster = %q", autopilot["autopilot_display"])
	}
	standard := computeFields([]byte(`{"name":"dev","currentMasterVersion":"1.29.1"}`))
	if standard["autopilot_display"] != "Standard" {
		t.Errorf("standard cluster = %q", standard["autopilot_display"])
	}

	pool := computeFields([]byte(`{"name":"default-pool","initialNodeCount":3,"autoscaling":{"enabled":true}}`))
	if pool["autoscaling_display"] != "Yes" {
		t.Errorf("autoscaling pool = %q", pool["autoscaling_display"])
	}
}

func TestComputeFieldsBillingAccount(t *testing.T) {
	fields := computeFields([]byte(`{"name":"billingAccounts/0123-4567","displayName":"Main","open":true}`))
	if fields["name_short"] != "0123-4567" {
		t.Errorf("name_short = %q", fields["name_short"])
	}
	if fields["open_display"] != "OPEN" {
		t.Errorf("open_display = %q", fields["open_display"])
	}
	if fields["masterBillingAccount_short"] != "-" {
		t.Errorf("masterBillingAccount_short = %q", fields["masterBillingAccount_short"])
	}
}

func TestComputeFieldsBudget(t *testing.T) {
	specified := computeFields([]byte(`{
		"displayName": "monthly",
		"amount": {"specifiedAmount": {"currencyCode": "USD", "units": "1500"}},
		"thresholdRules": [{"thresholdPercent": 0.5}, {"thresholdPercent": 0.9}]
	}`))
	if specified["amount_display"] != "$1.5K" {
		t.Errorf("amount_display = %q", specified["amount_display"])
	}
	if specified["thresholdRules_count"] != "2" {
		t.Errorf("thresholdRules_count = %q", specified["thresholdRules_count"])
	}

	lastPeriod := computeFields([]byte(`{"displayName":"rolling","amount":{"lastPeriodAmount":{}}}`))
	if lastPeriod["amount_display"] != "Last Period" {
		t.Errorf("amount_display = %q", lastPeriod["amount_display"])
	}
}

func TestComputeFieldsSKU(t *testing.T) {
	fields := computeFields([]byte(`{
		"description": "N1 Predefined Instance Core",
		"pricingInfo": [{
			"pricingExpression": {
				"usageUnit": "h",
				"tieredRates": [{"unitPrice": {"currencyCode": "USD", "units": "0", "nanos": 31611000}}]
			}
		}]
	}`))
	if fields["price_display"] != "$0.0316" {
		t.Errorf("price_display = %q", fields["price_display"])
	}
	if fields["usage_unit"] != "h" {
		t.Errorf("usage_unit = %q", fields["usage_unit"])
	}
}

func TestFormatBytes(t *testing.T) {
	for _, tc := range []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1 << 20, "5.0 MB"},
		{3 * 1 << 30, "3.0 GB"},
		{2 * 1 << 40, "2.0 TB"},
	} {
		if got := formatBytes(tc.n); got != tc.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want string
	}{
		{42.5, "$42.50"},
		{1500, "$1.5K"},
		{2500000, "$2.5M"},
	} {
		if got := formatCurrency(tc.v); got != tc.want {
			t.Errorf("formatCurrency(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	for _, tc := range []struct {
		v    float64
		want string
	}{
		{0, "Free"},
		{0.00005, "$0.000050"},
		{0.0316, "$0.0316"},
	} {
		if got := formatPrice(tc.v); got != tc.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}
