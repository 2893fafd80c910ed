package csv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtractor_FileType(t *testing.T) {
	assert.Equal(t, domain.FileTypeCSV, New().FileType())
}

func TestExtract_SalesReport(t *testing.T) {
	path := writeFile(t, "sales.csv", strings.Join([]string{
		"Date,Region,Sales,Units",
		"2024-01-01,North,100,10",
		"2024-02-01,South,120,12",
		"2024-02-01,South,120,12",
		",,,",
		"2024-03-01,East,140,14",
		"",
	}, "\n"))

	ds, err := New().Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", ds.Metadata.FileName)
	assert.Equal(t, domain.FileTypeCSV, ds.Metadata.FileType)
	require.Len(t, ds.Tables, 1)

	table := ds.Tables[0]
	assert.Equal(t, "sales", table.Name)
	assert.Equal(t, []string{"Date", "Region", "Sales", "Units"}, table.Columns)
	assert.Equal(t, 3, table.NumRows())
	assert.Equal(t, 3, ds.Metadata.RowCounts["sales"])
	assert.Equal(t, 4, ds.Metadata.ColumnCounts["sales"])
	assert.Equal(t, domain.ColumnNumeric, table.ColumnKind(2))
}

func TestExtract_ByteOrderMark(t *testing.T) {
	path := writeFile(t, "bom.csv", "\ufeffscore,name\n90,a\n")

	ds, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, ds.Tables, 1)
	assert.Equal(t, "score", ds.Tables[0].Columns[0])
}

func TestExtract_RaggedAndDuplicateHeaders(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,a,\n1,2,3\n4\n")

	ds, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, ds.Tables, 1)
	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2"}, ds.Tables[0].Columns)
	assert.Equal(t, 2, ds.Tables[0].NumRows())
}

func TestExtract_HeaderOnly(t *testing.T) {
	path := writeFile(t, "empty.csv", "a,b\n")

	ds, err := New().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Empty(t, ds.Tables)
	assert.False(t, ds.HasData())
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := New().Extract(context.Background(), filepath.Join(t.TempDir(), "gone.csv"))

	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "open", ee.Stage)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_Cancelled(t *testing.T) {
	path := writeFile(t, "sales.csv", "Region,Sales\nNorth,100\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, path)

	var ee *domain.ExtractionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "cancelled", ee.Stage)
	assert.Equal(t, path, ee.Path)
	assert.ErrorIs(t, err, context.Canceled)
}
