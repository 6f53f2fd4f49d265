package gcp

import (
	"context"
	"sort"

	"github.com/tidwall/gjson"
)

// Project is one selectable Cloud project.
type Project struct {
	ID   string
	Name string
}

// ListProjects returns the active projects the credentials can see,
// sorted by id.
func ListProjects(ctx context.Context, client Client) ([]Project, error) {
	url := resourceManagerURL("projects") + "?filter=lifecycleState%3AACTIVE"
	var projects []Project
	for {
		body, err := client.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		for _, p := range gjson.GetBytes(body, "projects").Array() {
			projects = append(projects, Project{
				ID:   p.Get("projectId").String(),
				Name: p.Get("name").String(),
			})
		}
		token := gjson.GetBytes(body, "nextPageToken").String()
		if token == "" {
			break
		}
		url = resourceManagerURL("projects") + "?filter=lifecycleState%3AACTIVE&pageToken=" + token
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

// ListZones returns the compute zones available to a project, sorted.
func ListZones(ctx context.Context, client Client, project string) ([]string, error) {
	base, err := computeProjectURL(Scope{Project: project}, "zones")
	if err != nil {
		return nil, err
	}
	var zones []string
	url := base
	for {
		body, err := client.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		for _, z := range gjson.GetBytes(body, "items").Array() {
			zones = append(zones, z.Get("name").String())
		}
		token := gjson.GetBytes(body, "nextPageToken").String()
		if token == "" {
			break
		}
		url = base + "?pageToken=" + token
	}
	sort.Strings(zones)
	return zones, nil
}

// StaticZones is the selector fallback when the zones API is
// unreachable. A spread of common zones per major region.
func StaticZones() []string {
	return []string{
		"asia-east1-a", "asia-east1-b",
		"asia-northeast1-a", "asia-northeast1-b",
		"asia-south1-a", "asia-south1-b",
		"asia-southeast1-a", "asia-southeast1-b",
		"australia-southeast1-a",
		"europe-north1-a", "europe-north1-b",
		"europe-west1-b", "europe-west1-c", "europe-west1-d",
		"europe-west2-a", "europe-west2-b",
		"europe-west3-a", "europe-west3-b",
		"europe-west4-a", "europe-west4-b",
		"northamerica-northeast1-a",
		"southamerica-east1-a",
		"us-central1-a", "us-central1-b", "us-central1-c", "us-central1-f",
		"us-east1-b", "us-east1-c", "us-east1-d",
		"us-east4-a", "us-east4-b",
		"us-west1-a", "us-west1-b", "us-west1-c",
		"us-west2-a", "us-west2-b",
	}
}
