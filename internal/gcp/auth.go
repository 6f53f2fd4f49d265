package gcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// cloudPlatformScope grants the broad read/mutate surface every
// dispatched method needs.
const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewTokenSource builds a token source from Application Default
// Credentials.
func NewTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	ts, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	return ts, nil
}

// GCloudConfigDir locates the gcloud CLI configuration directory.
func GCloudConfigDir() string {
	if dir := os.Getenv("CLOUDSDK_CONFIG"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gcloud")
}

// DefaultProject resolves the project the gcloud CLI would use:
// environment overrides first, then the active configuration file.
func DefaultProject() string {
	for _, env := range []string{"CLOUDSDK_CORE_PROJECT", "GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return activeConfigProperty("core", "project")
}

// DefaultComputeZone resolves the zone the gcloud CLI would use, or
// empty when none is configured.
func DefaultComputeZone() string {
	if v := os.Getenv("CLOUDSDK_COMPUTE_ZONE"); v != "" {
		return v
	}
	return activeConfigProperty("compute", "zone")
}

// activeConfigProperty reads one property from the active gcloud
// configuration. Failures resolve to empty; the caller falls back to
// flags or built-in defaults.
func activeConfigProperty(section, key string) string {
	dir := GCloudConfigDir()
	if dir == "" {
		return ""
	}
	name := "default"
	if b, err := os.ReadFile(filepath.Join(dir, "active_config")); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			name = s
		}
	}
	// The config name comes from a file the user controls; refuse
	// anything that would escape the configurations directory.
	if strings.ContainsAny(name, `/\`) || name == ".." {
		return ""
	}
	path := filepath.Join(dir, "configurations", "config_"+name)
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return configProperty(string(b), section, key)
}

// configProperty pulls key = value out of one section of gcloud's
// INI-style configuration text.
func configProperty(text, section, key string) string {
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if current != section {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var projectIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{4,28}[a-z0-9]$`)

// ValidateProjectID checks the documented project id shape: 6 to 30
// characters, lowercase letters, digits and hyphens, starting with a
// letter and not ending with a hyphen.
func ValidateProjectID(id string) error {
	if !projectIDPattern.MatchString(id) {
		return fmt.Errorf("invalid project id %q", id)
	}
	return nil
}
