package gcp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// ZoneAll selects the aggregated list APIs instead of a single zone.
const ZoneAll = "all"

var (
	// ErrUnknownMethod means no dispatch mapping exists for a
	// (service, method) pair. Always surfaced to the user.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrMissingScope means the URL needs a project or zone that the
	// scope does not carry.
	ErrMissingScope = errors.New("missing scope")
)

// Scope qualifies where a resource lives.
type Scope struct {
	Project string
	Zone    string
}

// Region derives the region from the zone: us-central1-a -> us-central1.
func (s Scope) Region() string {
	if i := strings.LastIndex(s.Zone, "-"); i > 0 {
		return s.Zone[:i]
	}
	return s.Zone
}

// AllZones reports whether listing should aggregate across zones.
func (s Scope) AllZones() bool {
	return s.Zone == ZoneAll
}

// CallSpec is a fully resolved HTTP request. Aggregated marks responses
// that need aggregated-list flattening before item extraction.
type CallSpec struct {
	Verb       string
	URL        string
	Body       []byte
	Aggregated bool
}

// Params is the parameter bag handed to Resolve. List methods append
// most entries as query parameters; action methods interpolate their
// target identifier into the URL.
type Params map[string]string

func (p Params) require(key string) (string, error) {
	if v, ok := p[key]; ok && v != "" {
		return v, nil
	}
	return "", fmt.Errorf("missing required parameter %q", key)
}

type callBuilder func(scope Scope, params Params) (CallSpec, error)

// Resolve maps an abstract (service, method) pair to a concrete HTTP
// call. Unknown pairs are an error, never silently ignored.
func Resolve(service, method string, scope Scope, params Params) (CallSpec, error) {
	methods, ok := dispatchTable[service]
	if !ok {
		return CallSpec{}, fmt.Errorf("%w: service %q", ErrUnknownMethod, service)
	}
	builder, ok := methods[method]
	if !ok {
		return CallSpec{}, fmt.Errorf("%w: %s.%s", ErrUnknownMethod, service, method)
	}
	return builder(scope, params)
}

var dispatchTable = map[string]map[string]callBuilder{
	"compute": {
		"list_instances":               zonalList("instances"),
		"list_disks":                   zonalList("disks"),
		"list_network_endpoint_groups": zonalList("networkEndpointGroups"),
		"list_networks":                globalList("networks"),
		"list_firewalls":               globalList("firewalls"),
		"list_backend_services":        globalList("backendServices"),
		"list_backend_buckets":         globalList("backendBuckets"),
		"list_url_maps":                globalList("urlMaps"),
		"list_target_http_proxies":     globalList("targetHttpProxies"),
		"list_target_https_proxies":    globalList("targetHttpsProxies"),
		"list_target_tcp_proxies":      globalList("targetTcpProxies"),
		"list_target_ssl_proxies":      globalList("targetSslProxies"),
		"list_target_grpc_proxies":     globalList("targetGrpcProxies"),
		"list_global_forwarding_rules": globalList("globalForwardingRules"),
		"list_ssl_certificates":        globalList("sslCertificates"),
		"list_ssl_policies":            globalList("sslPolicies"),
		"list_security_policies":       globalList("securityPolicies"),
		"list_health_checks":           globalList("healthChecks"),
		"list_subnetworks":             regionalList("subnetworks"),
		"list_target_pools":            regionalList("targetPools"),

		"get_instance": func(s Scope, p Params) (CallSpec, error) {
			name, err := p.require("name")
			if err != nil {
				return CallSpec{}, err
			}
			base, err := computeZonalURL(s, "instances/"+name)
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodGet, URL: base}, nil
		},

		"start_instance": instanceOp("start"),
		"stop_instance":  instanceOp("stop"),
		"reset_instance": instanceOp("reset"),

		"delete_instance":               zonalDelete("instances", "instance"),
		"delete_disk":                   zonalDelete("disks", "disk"),
		"delete_network_endpoint_group": zonalDelete("networkEndpointGroups", "networkEndpointGroup"),
		"delete_firewall":               globalDelete("firewalls", "firewall"),
		"delete_backend_service":        globalDelete("backendServices", "backendService"),
		"delete_backend_bucket":         globalDelete("backendBuckets", "backendBucket"),
		"delete_url_map":                globalDelete("urlMaps", "urlMap"),
		"delete_target_http_proxy":      globalDelete("targetHttpProxies", "targetHttpProxy"),
		"delete_target_https_proxy":     globalDelete("targetHttpsProxies", "targetHttpsProxy"),
		"delete_target_tcp_proxy":       globalDelete("targetTcpProxies", "targetTcpProxy"),
		"delete_target_ssl_proxy":       globalDelete("targetSslProxies", "targetSslProxy"),
		"delete_target_grpc_proxy":      globalDelete("targetGrpcProxies", "targetGrpcProxy"),
		"delete_global_forwarding_rule": globalDelete("globalForwardingRules", "forwardingRule"),
		"delete_ssl_certificate":        globalDelete("sslCertificates", "sslCertificate"),
		"delete_ssl_policy":             globalDelete("sslPolicies", "sslPolicy"),
		"delete_security_policy":        globalDelete("securityPolicies", "securityPolicy"),
		"delete_health_check":           globalDelete("healthChecks", "healthCheck"),
		"delete_target_pool":            regionalDelete("targetPools", "targetPool"),
	},

	"storage": {
		"list_buckets": func(s Scope, p Params) (CallSpec, error) {
			if s.Project == "" {
				return CallSpec{}, fmt.Errorf("%w: project required for list_buckets", ErrMissingScope)
			}
			base := storageURL("b") + "?project=" + url.QueryEscape(s.Project)
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
		},
		"list_objects": func(s Scope, p Params) (CallSpec, error) {
			bucket, err := p.require("bucket")
			if err != nil {
				return CallSpec{}, err
			}
			base := storageURL("b/" + bucket + "/o")
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
		},
		"delete_bucket": func(s Scope, p Params) (CallSpec, error) {
			bucket, err := p.require("bucket")
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodDelete, URL: storageURL("b/" + bucket)}, nil
		},
		"delete_object": func(s Scope, p Params) (CallSpec, error) {
			bucket, err := p.require("bucket")
			if err != nil {
				return CallSpec{}, err
			}
			object, err := p.require("object")
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodDelete, URL: storageURL("b/" + bucket + "/o/" + url.PathEscape(object))}, nil
		},
	},

	"container": {
		"list_clusters": func(s Scope, p Params) (CallSpec, error) {
			base, err := containerLocationURL(s, "-", "clusters")
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
		},
		"list_nodepools": func(s Scope, p Params) (CallSpec, error) {
			cluster, err := p.require("cluster")
			if err != nil {
				return CallSpec{}, err
			}
			location := p["location"]
			if location == "" {
				location = s.Zone
			}
			base, err := containerLocationURL(s, location, "clusters/"+cluster+"/nodePools")
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodGet, URL: base}, nil
		},
	},

	"billing": {
		"list_billing_accounts": func(s Scope, p Params) (CallSpec, error) {
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(billingURL("billingAccounts"), p)}, nil
		},
		"list_budgets": func(s Scope, p Params) (CallSpec, error) {
			account, err := p.require("billingAccount")
			if err != nil {
				return CallSpec{}, err
			}
			base := "https://billingbudgets.googleapis.com/v1/" + account + "/budgets"
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
		},
		"list_services": func(s Scope, p Params) (CallSpec, error) {
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(billingURL("services"), p)}, nil
		},
		"list_skus": func(s Scope, p Params) (CallSpec, error) {
			parent, err := p.require("parent")
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(billingURL(parent+"/skus"), p)}, nil
		},
		"get_billing_info": func(s Scope, p Params) (CallSpec, error) {
			if s.Project == "" {
				return CallSpec{}, fmt.Errorf("%w: project required for get_billing_info", ErrMissingScope)
			}
			return CallSpec{Verb: http.MethodGet, URL: billingURL("projects/" + s.Project + "/billingInfo")}, nil
		},
	},
}

// =============================================================================
// Builder constructors
// =============================================================================

// zonalList lists a zonal compute resource, switching to the aggregated
// API when the scope covers all zones.
func zonalList(resource string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		if s.AllZones() {
			base, err := computeProjectURL(s, "aggregated/"+resource)
			if err != nil {
				return CallSpec{}, err
			}
			return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p), Aggregated: true}, nil
		}
		base, err := computeZonalURL(s, resource)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
	}
}

func globalList(resource string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		base, err := computeProjectURL(s, "global/"+resource)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
	}
}

func regionalList(resource string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		base, err := computeRegionalURL(s, resource)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodGet, URL: addQueryParams(base, p)}, nil
	}
}

// instanceOp builds the start/stop/reset POST call for one instance.
func instanceOp(op string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		name, err := p.require("instance")
		if err != nil {
			return CallSpec{}, err
		}
		base, err := computeZonalURL(s, "instances/"+name+"/"+op)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodPost, URL: base}, nil
	}
}

func zonalDelete(resource, idParam string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		name, err := p.require(idParam)
		if err != nil {
			return CallSpec{}, err
		}
		base, err := computeZonalURL(s, resource+"/"+name)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodDelete, URL: base}, nil
	}
}

func globalDelete(resource, idParam string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		name, err := p.require(idParam)
		if err != nil {
			return CallSpec{}, err
		}
		base, err := computeProjectURL(s, "global/"+resource+"/"+name)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodDelete, URL: base}, nil
	}
}

func regionalDelete(resource, idParam string) callBuilder {
	return func(s Scope, p Params) (CallSpec, error) {
		name, err := p.require(idParam)
		if err != nil {
			return CallSpec{}, err
		}
		base, err := computeRegionalURL(s, resource+"/"+name)
		if err != nil {
			return CallSpec{}, err
		}
		return CallSpec{Verb: http.MethodDelete, URL: base}, nil
	}
}

// =============================================================================
// URL helpers
// =============================================================================

func computeProjectURL(s Scope, path string) (string, error) {
	if s.Project == "" {
		return "", fmt.Errorf("%w: project required", ErrMissingScope)
	}
	return "https://compute.googleapis.com/compute/v1/projects/" + s.Project + "/" + path, nil
}

func computeZonalURL(s Scope, resource string) (string, error) {
	if s.Zone == "" || s.AllZones() {
		return "", fmt.Errorf("%w: zone required for %s", ErrMissingScope, resource)
	}
	return computeProjectURL(s, "zones/"+s.Zone+"/"+resource)
}

func computeRegionalURL(s Scope, resource string) (string, error) {
	if s.Zone == "" || s.AllZones() {
		return "", fmt.Errorf("%w: zone required to derive region for %s", ErrMissingScope, resource)
	}
	return computeProjectURL(s, "regions/"+s.Region()+"/"+resource)
}

func containerLocationURL(s Scope, location, resource string) (string, error) {
	if s.Project == "" {
		return "", fmt.Errorf("%w: project required", ErrMissingScope)
	}
	return "https://container.googleapis.com/v1/projects/" + s.Project + "/locations/" + location + "/" + resource, nil
}

func storageURL(path string) string {
	return "https://storage.googleapis.com/storage/v1/" + path
}

func billingURL(path string) string {
	return "https://cloudbilling.googleapis.com/v1/" + path
}

func resourceManagerURL(path string) string {
	return "https://cloudresourcemanager.googleapis.com/v1/" + path
}

// internalParams flow into URL paths, not query strings.
var internalParams = map[string]bool{
	"bucket":         true,
	"cluster":        true,
	"location":       true,
	"name":           true,
	"parent":         true,
	"billingAccount": true,
}

// addQueryParams appends the parameter bag as query parameters in
// sorted key order so resolved URLs are deterministic.
func addQueryParams(base string, params Params) string {
	if len(params) == 0 {
		return base
	}
	keys := make([]string, 0, len(params))
	for key := range params {
		if internalParams[key] || params[key] == "" {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return base
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+url.QueryEscape(params[key]))
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + strings.Join(parts, "&")
}
