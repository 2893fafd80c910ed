// Package extractors turns report files into cleaned tables.
//
// Each sub-package handles one file type and implements driven.Extractor.
// The Registry dispatches a file to the extractor for its type and is
// populated at startup by the composition root.
package extractors
