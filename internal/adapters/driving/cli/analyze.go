package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

var (
	analyzeOutput   string
	analyzeInsights bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse a single report file",
	Long: `Extracts and analyses one CSV, Excel or PDF file and prints the result
as JSON. With --output the result is also written to
<output>/<name>_<ext>/analysis.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "directory for analysis results")
	analyzeCmd.Flags().BoolVar(&analyzeInsights, "insights", false, "print insights only")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		settings.Output.Directory = analyzeOutput
	}

	engine, err := buildEngine(settings)
	if err != nil {
		return err
	}
	if ft, ok := domain.FileTypeForPath(args[0]); ok && ft == domain.FileTypePDF {
		warnMissingTools(cmd, engine)
	}

	result, err := engine.Process(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeInsights {
		outputInsights(cmd, result)
		return nil
	}
	return outputResultJSON(cmd, result)
}

// outputResultJSON writes to stdout so the result can be piped.
func outputResultJSON(cmd *cobra.Command, result *domain.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputInsights(cmd *cobra.Command, result *domain.AnalysisResult) {
	if len(result.Insights) == 0 {
		cmd.Println("No insights.")
		return
	}

	cmd.Printf("Insights for %s:\n", result.FileName)
	cmd.Println()
	for _, in := range result.Insights {
		cmd.Printf("  [%s] %s\n", in.Severity, in.Description)
	}
}
