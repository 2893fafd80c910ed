package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

var (
	showOutput   string
	showInsights bool
)

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the stored analysis for a report file",
	Long: `Reads the analysis written for a report by watch or analyze --output
and prints it as JSON. With --insights the insights are listed together
with any rendered charts.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "directory holding analysis results")
	showCmd.Flags().BoolVar(&showInsights, "insights", false, "print insights and charts only")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		settings.Output.Directory = showOutput
	}

	engine, err := buildEngine(settings)
	if err != nil {
		return err
	}

	result, manifest, err := engine.Stored(args[0])
	if err != nil {
		return fmt.Errorf("no stored analysis for %s: %w", args[0], err)
	}

	if !showInsights {
		return outputResultJSON(cmd, result)
	}
	outputInsights(cmd, result)
	outputCharts(cmd, manifest)
	return nil
}

func outputCharts(cmd *cobra.Command, manifest *domain.VisualizationManifest) {
	if manifest == nil || len(manifest.Charts) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Charts:")
	for _, c := range manifest.Charts {
		cmd.Printf("  %s (%s): %s\n", c.Title, c.Type, c.Path)
	}
}
