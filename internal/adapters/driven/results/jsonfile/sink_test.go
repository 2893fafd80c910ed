package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

func sampleResult() *domain.AnalysisResult {
	r := domain.NewAnalysisResult("q1 sales.csv", domain.FileTypeCSV)
	r.Summary["q1 sales"] = domain.TableSummary{RowCount: 5, ColumnCount: 4}
	r.Correlations["q1 sales"] = domain.CorrelationMatrix{
		"Sales": {"Sales": 1, "Units": 0.98},
		"Units": {"Units": 1, "Sales": 0.98},
	}
	r.Insights = append(r.Insights, domain.Insight{
		Description: "Strong positive correlation (0.98) between Sales and Units",
		Severity:    domain.SeverityInfo,
		Category:    domain.InsightCorrelation,
		Table:       "q1 sales",
		MetricRefs:  []string{"correlations.q1 sales.Sales"},
	})
	return r
}

func TestSink_ReportDir(t *testing.T) {
	sink := NewSink("/out", "/in")

	tests := []struct {
		source string
		want   string
	}{
		{"/in/report.xlsx", filepath.Join("/out", "report_xlsx")},
		{"/in/a/q1.csv", filepath.Join("/out", "a", "q1_csv")},
		{"/in/b/q1.csv", filepath.Join("/out", "b", "q1_csv")},
		{"/in/archive.2024.pdf", filepath.Join("/out", "archive.2024_pdf")},
		{"/elsewhere/report.xlsx", filepath.Join("/out", "report_xlsx")},
		{"report.csv", filepath.Join("/out", "report_csv")},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, sink.ReportDir(tt.source))
		})
	}

	assert.Equal(t, filepath.Join("/out", "report_xlsx"), NewSink("/out", "").ReportDir("/in/a/report.xlsx"))
}

func TestSink_SameStemDoesNotCollide(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	sink := NewSink(out, in)

	sources := []string{
		filepath.Join(in, "a", "q1.csv"),
		filepath.Join(in, "b", "q1.csv"),
		filepath.Join(in, "q1.xlsx"),
	}
	for _, source := range sources {
		result := domain.NewAnalysisResult(filepath.Base(source), domain.FileTypeCSV)
		result.SourcePath = source
		require.NoError(t, sink.Write(context.Background(), result))
	}

	for _, source := range sources {
		got, err := sink.Result(source)
		require.NoError(t, err, source)
		assert.Equal(t, source, got.SourcePath)
	}
}

func TestSink_WriteAndRead(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, "")
	result := sampleResult()

	require.NoError(t, sink.Write(context.Background(), result))

	path := filepath.Join(dir, "q1 sales_csv", ResultFile)
	assert.Equal(t, path, sink.Path(result.FileName))

	got, err := sink.Result(result.FileName)
	require.NoError(t, err)
	assert.Equal(t, result.FileName, got.FileName)
	assert.Equal(t, result.FileType, got.FileType)
	assert.Equal(t, result.Correlations, got.Correlations)
	assert.Equal(t, result.Insights, got.Insights)
}

func TestSink_SnakeCaseKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, NewSink(dir, "").Write(context.Background(), sampleResult()))

	data, err := os.ReadFile(filepath.Join(dir, "q1 sales_csv", ResultFile))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"file_name", "file_type", "summary", "kpi_metrics", "correlations", "trends", "insights"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "key_terms", "only PDFs carry key terms")
	assert.NotContains(t, doc, "source_path")
}

func TestSink_Overwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir, "")
	first := sampleResult()
	require.NoError(t, sink.Write(context.Background(), first))

	second := sampleResult()
	second.Insights = nil
	require.NoError(t, sink.Write(context.Background(), second))

	got, err := sink.Result(second.FileName)
	require.NoError(t, err)
	assert.Empty(t, got.Insights)

	entries, err := os.ReadDir(sink.ReportDir(second.FileName))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestSink_Errors(t *testing.T) {
	sink := NewSink(t.TempDir(), "")

	assert.ErrorIs(t, sink.Write(context.Background(), nil), domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.Write(ctx, sampleResult()), context.Canceled)
}

func TestSink_Result_Errors(t *testing.T) {
	sink := NewSink(t.TempDir(), "")

	_, err := sink.Result("missing.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.MkdirAll(sink.ReportDir("bad.csv"), 0o755))
	require.NoError(t, os.WriteFile(sink.Path("bad.csv"), []byte("{"), 0o600))
	_, err = sink.Result("bad.csv")
	assert.ErrorContains(t, err, "decode")
}

func TestSink_Manifest(t *testing.T) {
	sink := NewSink(t.TempDir(), "")
	reportDir := sink.ReportDir("training.xlsx")
	require.NoError(t, os.MkdirAll(reportDir, 0o755))
	manifest := `{
  "file_name": "training.xlsx",
  "file_type": "excel",
  "charts": [
    {"title": "Completion", "type": "bar", "category": "kpi", "source": "Sheet1",
     "file": "kpi_completion.png", "path": "/out/training_xlsx/kpi_completion.png"}
  ]
}`
	require.NoError(t, os.WriteFile(filepath.Join(reportDir, ManifestFile), []byte(manifest), 0o600))

	got, err := sink.Manifest("training.xlsx")

	require.NoError(t, err)
	assert.Equal(t, "training.xlsx", got.FileName)
	require.Len(t, got.Charts, 1)
	assert.Equal(t, "bar", got.Charts[0].Type)
	assert.Equal(t, "kpi_completion.png", got.Charts[0].File)
}

func TestSink_Manifest_Missing(t *testing.T) {
	got, err := NewSink(t.TempDir(), "").Manifest("plain.csv")

	assert.NoError(t, err)
	assert.Nil(t, got)
}
