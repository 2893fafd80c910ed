package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

var (
	watchOutput      string
	watchWorkers     int
	watchBackend     string
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a folder and analyse reports as they arrive",
	Long: `Watches a directory tree for CSV, Excel and PDF reports.

Files already present are analysed once at startup. New and modified
files are analysed as they change; edits to a file still being processed
are ignored until it finishes. Flags override the config file for this run.

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "directory for analysis results")
	watchCmd.Flags().IntVarP(&watchWorkers, "workers", "w", 0, "number of files processed concurrently")
	watchCmd.Flags().StringVar(&watchBackend, "backend", "", "watch backend: fsnotify or polling")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	applyWatchFlags(cmd, settings, args)
	if settings.Watch.Directory == "" {
		return errors.New("no directory to watch: pass one or set watch.directory")
	}
	if err := settingsService.Validate(settings); err != nil {
		return err
	}

	engine, err := buildEngine(settings)
	if err != nil {
		return err
	}
	warnMissingTools(cmd, engine)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (%s, %d workers)\n",
		settings.Watch.Directory, settings.Watch.Backend.Description(), settings.Processing.Workers)
	if settings.Output.Directory != "" {
		cmd.Printf("Writing results to %s\n", settings.Output.Directory)
	}
	if settings.Metrics.Address != "" {
		cmd.Printf("Metrics on http://%s/metrics\n", settings.Metrics.Address)
	}

	if err := engine.Run(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped.")
	return nil
}

// applyWatchFlags overlays explicitly set flags on settings.
func applyWatchFlags(cmd *cobra.Command, settings *domain.Settings, args []string) {
	if len(args) == 1 {
		settings.Watch.Directory = args[0]
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		settings.Output.Directory = watchOutput
	}
	if flags.Changed("workers") {
		settings.Processing.Workers = watchWorkers
	}
	if flags.Changed("backend") {
		settings.Watch.Backend = domain.WatchBackend(watchBackend)
	}
	if flags.Changed("metrics-addr") {
		settings.Metrics.Address = watchMetricsAddr
	}
}
