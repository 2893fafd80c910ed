// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Watcher: Streams filesystem changes under a directory (fsnotify or polling)
//   - Extractor: Reads one report file type into cleaned tables
//   - ExtractorRegistry: Selects the extractor for a file type
//   - Analyzer: Turns an extracted dataset into an AnalysisResult
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ResultSink: Persists analysis results. Without it, results are only logged.
//   - Enhancer: Augments a copy of a result (e.g. with model-written insights).
//   - Metrics: Pipeline counters. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
