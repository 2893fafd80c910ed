// Package domain defines the core business entities for reportlens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - WatchedFile, FileEvent: Files discovered in the watched folder
//   - Table, Value: Cleaned tabular data extracted from a report
//   - ExtractedDataset: All tables (and PDF text) pulled from one file
//   - AnalysisResult: KPI metrics, correlations, trends and insights
//   - Taxonomy: The ordered KPI category keyword list
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
