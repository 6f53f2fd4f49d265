package shell

import (
	"strings"
	"testing"
)

func TestSSHCommandArgs(t *testing.T) {
	cmd := SSHCommand("my-proj", "us-central1-a", "web-1", false, nil)
	joined := strings.Join(cmd.Args, " ")
	for _, want := range []string{"gcloud", "compute ssh web-1", "--project my-proj", "--zone us-central1-a"} {
		if !strings.Contains(joined, want) {
			t.Errorf("argv %q missing %q", joined, want)
		}
	}
	if strings.Contains(joined, "--tunnel-through-iap") {
		t.Error("IAP flag should be off by default")
	}
}

func TestSSHCommandIAPAndExtras(t *testing.T) {
	cmd := SSHCommand("my-proj", "us-central1-a", "web-1", true, []string{"--ssh-flag=-v"})
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "--tunnel-through-iap") {
		t.Error("IAP flag missing")
	}
	if !strings.Contains(joined, "--ssh-flag=-v") {
		t.Error("extra args should pass through")
	}
}

func TestConsoleURL(t *testing.T) {
	url := ConsoleURL("compute-instances", "my-proj", "us-central1-a", "web-1")
	for _, want := range []string{"console.cloud.google.com", "instancesDetail", "us-central1-a", "web-1", "project=my-proj"} {
		if !strings.Contains(url, want) {
			t.Errorf("instance url %q missing %q", url, want)
		}
	}

	url = ConsoleURL("storage-buckets", "my-proj", "", "my-bucket")
	if !strings.Contains(url, "storage/browser/my-bucket") {
		t.Errorf("bucket url = %q", url)
	}

	url = ConsoleURL("compute-ssl-policies", "my-proj", "", "")
	if !strings.Contains(url, "home/dashboard") {
		t.Errorf("unmapped kind should fall back to the dashboard, got %q", url)
	}
}

func TestOpenBrowserCommand(t *testing.T) {
	cmd := OpenBrowserCommand("https://example.com")
	if cmd == nil || len(cmd.Args) == 0 {
		t.Fatal("no browser command")
	}
	if got := cmd.Args[len(cmd.Args)-1]; got != "https://example.com" {
		t.Errorf("url should be the last arg, got %q", got)
	}
}
