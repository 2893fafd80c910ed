package domain

import (
	"path/filepath"
	"strings"
)

// FileType identifies which extractor handles a report file.
type FileType string

// Supported report file types.
const (
	FileTypeExcel FileType = "excel"
	FileTypeCSV   FileType = "csv"
	FileTypePDF   FileType = "pdf"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypeExcel, FileTypeCSV, FileTypePDF:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// extensionTypes maps lower-case file extensions to report types.
var extensionTypes = map[string]FileType{
	".xlsx": FileTypeExcel,
	".xls":  FileTypeExcel,
	".csv":  FileTypeCSV,
	".pdf":  FileTypePDF,
}

// FileTypeForPath classifies a path by its extension (case-insensitive).
// Returns false for unsupported extensions.
func FileTypeForPath(path string) (FileType, bool) {
	t, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]
	return t, ok
}

// SupportedExtensions returns the extensions the watcher reacts to.
func SupportedExtensions() []string {
	return []string{".xlsx", ".xls", ".csv", ".pdf"}
}

// EventKind describes why a callback was invoked for a file.
type EventKind string

// Event kinds delivered to folder monitor callbacks.
const (
	EventCreated  EventKind = "created"
	EventModified EventKind = "modified"
	EventMoved    EventKind = "moved"
	EventExisting EventKind = "existing"
)

// String returns the string representation.
func (k EventKind) String() string {
	return string(k)
}

// WatchedFile is a report file discovered in the watched folder.
// Identity is the absolute path. Run identifies the monitor run that
// dispatched the file; zero for files not seen through a monitor.
type WatchedFile struct {
	Path string
	Type FileType
	Run  uint64
}

// FileOp is the raw filesystem operation reported by a watcher backend.
type FileOp int

// Raw filesystem operations.
const (
	OpCreate FileOp = iota + 1
	OpWrite
	OpMove
	OpRemove
)

// String returns a short name for the operation.
func (op FileOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpMove:
		return "move"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// FileEvent is a single notification from a watcher backend.
// For OpMove, Path is the destination path.
type FileEvent struct {
	Path  string
	Op    FileOp
	IsDir bool
}
