// Package shell builds the external commands the dashboard hands the
// terminal to: gcloud SSH sessions and browser opens for the Cloud
// Console.
package shell

import (
	"fmt"
	"os/exec"
	"runtime"
)

// SSHCommand builds the gcloud compute ssh invocation for one VM.
func SSHCommand(project, zone, instance string, useIAP bool, extraArgs []string) *exec.Cmd {
	args := []string{"compute", "ssh", instance, "--project", project, "--zone", zone}
	if useIAP {
		args = append(args, "--tunnel-through-iap")
	}
	args = append(args, extraArgs...)
	return exec.Command("gcloud", args...)
}

// ConsoleURL returns the Cloud Console page for one resource, falling
// back to the project dashboard for kinds without a dedicated page.
func ConsoleURL(resourceKey, project, zone, name string) string {
	switch resourceKey {
	case "compute-instances":
		return fmt.Sprintf("https://console.cloud.google.com/compute/instancesDetail/zones/%s/instances/%s?project=%s", zone, name, project)
	case "compute-disks":
		return fmt.Sprintf("https://console.cloud.google.com/compute/disksDetail/zones/%s/disks/%s?project=%s", zone, name, project)
	case "compute-networks":
		return fmt.Sprintf("https://console.cloud.google.com/networking/networks/details/%s?project=%s", name, project)
	case "compute-firewalls":
		return fmt.Sprintf("https://console.cloud.google.com/networking/firewalls/details/%s?project=%s", name, project)
	case "storage-buckets":
		return fmt.Sprintf("https://console.cloud.google.com/storage/browser/%s?project=%s", name, project)
	case "gke-clusters":
		return fmt.Sprintf("https://console.cloud.google.com/kubernetes/clusters/details/%s/%s?project=%s", zone, name, project)
	}
	return fmt.Sprintf("https://console.cloud.google.com/home/dashboard?project=%s", project)
}

// OpenBrowserCommand returns the platform command that opens a URL.
func OpenBrowserCommand(url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	return exec.Command("xdg-open", url)
}
