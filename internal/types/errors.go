package types

import "errors"

// Error kinds surfaced by the image parsers. Callers test for them with errors.Is;
// every layer wraps them with context.
var (
	// ErrTruncatedImage means a computed offset or length runs past the image.
	ErrTruncatedImage = errors.New("truncated image")

	// ErrUnsupportedContainer means a 2IMG header is missing or not version 1.
	ErrUnsupportedContainer = errors.New("unsupported container")

	// ErrUnknownFormat means neither ProDOS nor DOS 3.3 structures were found.
	ErrUnknownFormat = errors.New("unknown disk format")

	// ErrPathSegmentNotFound means a requested path segment has no matching entry.
	ErrPathSegmentNotFound = errors.New("path segment not found")

	// ErrMalformedEntry means a structure holds a value outside its recognized set.
	ErrMalformedEntry = errors.New("malformed entry")
)
