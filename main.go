package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MrMichou/tgcp/internal/config"
	"github.com/MrMichou/tgcp/internal/gcp"
	"github.com/MrMichou/tgcp/internal/logger"
	"github.com/MrMichou/tgcp/internal/notify"
	"github.com/MrMichou/tgcp/internal/registry"
	"github.com/MrMichou/tgcp/internal/state"
	"github.com/MrMichou/tgcp/internal/ui"
)

var (
	flagProject  string
	flagZone     string
	flagResource string
	flagLogLevel string
	flagReadOnly bool
)

func main() {
	root := &cobra.Command{
		Use:   "tgcp",
		Short: "Terminal dashboard for Google Cloud resources",
		Long: `tgcp is a keyboard-driven terminal dashboard for browsing and
managing Google Cloud resources: Compute Engine, Cloud Storage, GKE,
load balancing and billing, without leaving the shell.

Credentials come from Application Default Credentials; run
'gcloud auth application-default login' first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	root.Flags().StringVarP(&flagProject, "project", "p", "", "GCP project id (default: gcloud config)")
	root.Flags().StringVarP(&flagZone, "zone", "z", "", `compute zone, or "all" for every zone (default: gcloud config)`)
	root.Flags().StringVarP(&flagResource, "resource", "r", "", "resource view to open at startup")
	root.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn or error")
	root.Flags().BoolVar(&flagReadOnly, "read-only", false, "disable every mutating action")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgDir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := logger.Init(cfgDir, flagLogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	// Schema problems are fatal: every view is driven by them.
	reg, err := registry.Load()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("loading config", "error", err)
		cfg = &config.Config{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tokens, err := gcp.NewTokenSource(ctx)
	if err != nil {
		return fmt.Errorf("loading credentials: %w (run 'gcloud auth application-default login')", err)
	}
	client := gcp.NewAPIClient(tokens)

	project := firstOf(flagProject, cfg.ProjectID, gcp.DefaultProject())
	if project == "" {
		return fmt.Errorf("no project configured: pass --project or run 'gcloud config set project'")
	}
	if err := gcp.ValidateProjectID(project); err != nil {
		return err
	}
	zone := firstOf(flagZone, cfg.Zone, gcp.DefaultComputeZone(), config.DefaultZone)

	rootKey := firstOf(flagResource, cfg.LastResource, "compute-instances")
	if target, ok := cfg.Alias(rootKey); ok {
		rootKey = target
	}
	def, ok := reg.Get(rootKey)
	if !ok {
		return fmt.Errorf("unknown resource %q", rootKey)
	}

	app := state.NewApp(project, zone)
	app.ReadOnly = flagReadOnly
	app.Push(def.Key, def.DisplayName, nil)
	cfg.LastResource = def.Key

	slog.Info("starting", "project", project, "zone", zone, "resource", def.Key, "read_only", flagReadOnly)

	m := ui.NewModel(ctx, app, reg, client, notify.NewManager(), cfg)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	cancel()

	cfg.ProjectID = app.Project
	cfg.Zone = app.Zone
	if err := cfg.Save(); err != nil {
		slog.Warn("saving config", "error", err)
	}
	return nil
}

// firstOf returns the first non-empty value.
func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
