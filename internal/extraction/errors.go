// Package extraction implements the document field-extraction core: content
// routing, the ordered text-extraction strategy chain, and the batched
// field-extraction client that turns document content into per-column values.
package extraction

import "errors"

// Sentinel errors for extraction operations.
var (
	// ErrContentUnavailable indicates the document's content could not be
	// fetched from storage. Retryable via reprocess.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrUnusableContent indicates every text-extraction strategy failed to
	// produce text above the minimum-length bar.
	ErrUnusableContent = errors.New("no usable text content")

	// ErrMalformedResponse indicates the completion response did not match
	// the expected field contract. It is absorbed by the client, never
	// surfaced as a document failure.
	ErrMalformedResponse = errors.New("malformed completion response")

	// ErrCompletionFailed indicates the completion call itself failed with
	// no response at all. This is the one client error that propagates.
	ErrCompletionFailed = errors.New("completion call failed")
)
