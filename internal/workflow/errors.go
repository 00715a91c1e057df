// Package workflow implements the per-document extraction pipeline as a
// state graph: fetch → extract? → fields → finalize, with the content-router
// decision expressed as conditional edges.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrNoColumns        = errors.New("no extraction-enabled columns")
	ErrFetchFailed      = errors.New("content fetch failed")
	ErrExtractFailed    = errors.New("text extraction failed")
	ErrFieldsFailed     = errors.New("field extraction failed")
)
