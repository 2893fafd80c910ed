package domain

// DatasetMetadata describes what was extracted from a report file.
type DatasetMetadata struct {
	FileName     string              `json:"file_name"`
	FileType     FileType            `json:"file_type"`
	SheetNames   []string            `json:"sheet_names,omitempty"`
	PageCount    int                 `json:"page_count,omitempty"`
	TableCount   int                 `json:"table_count"`
	RowCounts    map[string]int      `json:"row_counts"`
	ColumnCounts map[string]int      `json:"column_counts"`
	ColumnNames  map[string][]string `json:"column_names"`
}

// ExtractedDataset holds the cleaned tables from one report file.
// Tables are kept in extraction order; names are unique within a dataset.
// Text is only set for PDF sources.
type ExtractedDataset struct {
	Metadata DatasetMetadata
	Tables   []*Table
	Text     string
}

// NewExtractedDataset creates an empty dataset for a file.
func NewExtractedDataset(fileName string, fileType FileType) *ExtractedDataset {
	return &ExtractedDataset{
		Metadata: DatasetMetadata{
			FileName:     fileName,
			FileType:     fileType,
			RowCounts:    make(map[string]int),
			ColumnCounts: make(map[string]int),
			ColumnNames:  make(map[string][]string),
		},
	}
}

// AddTable appends a cleaned table and records its shape in the metadata.
func (d *ExtractedDataset) AddTable(t *Table) {
	d.Tables = append(d.Tables, t)
	d.Metadata.TableCount = len(d.Tables)
	d.Metadata.RowCounts[t.Name] = t.NumRows()
	d.Metadata.ColumnCounts[t.Name] = t.NumCols()
	d.Metadata.ColumnNames[t.Name] = append([]string(nil), t.Columns...)
}

// HasData returns true if there is anything to analyse.
func (d *ExtractedDataset) HasData() bool {
	return d != nil && (len(d.Tables) > 0 || d.Text != "")
}
