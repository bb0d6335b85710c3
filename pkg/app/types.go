package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// CommonError represents application-level errors
type CommonError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CommonError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CommonError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeImageAccess      = "IMAGE_ACCESS"
	ErrCodeUnsupportedImage = "UNSUPPORTED_IMAGE"
	ErrCodeMalformedImage   = "MALFORMED_IMAGE"
	ErrCodePathNotFound     = "PATH_NOT_FOUND"
	ErrCodePermission       = "PERMISSION_DENIED"
	ErrCodeInternal         = "INTERNAL"
)

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	// ExitImage covers images that cannot be read or do not hold the
	// requested file
	ExitImage = 2
)

// NewError creates a new CommonError
func NewError(code, message string, cause error) *CommonError {
	return &CommonError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ClassifyError wraps err in a CommonError whose code reflects the
// underlying failure. A CommonError is returned unchanged.
func ClassifyError(message string, err error) *CommonError {
	if err == nil {
		return nil
	}
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(err, types.ErrTruncatedImage),
		errors.Is(err, types.ErrUnsupportedContainer),
		errors.Is(err, types.ErrUnknownFormat):
		code = ErrCodeUnsupportedImage
	case errors.Is(err, types.ErrMalformedEntry):
		code = ErrCodeMalformedImage
	case errors.Is(err, types.ErrPathSegmentNotFound):
		code = ErrCodePathNotFound
	case errors.Is(err, fs.ErrPermission):
		code = ErrCodePermission
	case errors.Is(err, fs.ErrNotExist):
		code = ErrCodeImageAccess
	}
	return NewError(code, message, err)
}

// ExitCode returns the process exit code for the error
func (e *CommonError) ExitCode() int {
	switch e.Code {
	case ErrCodeImageAccess, ErrCodeUnsupportedImage, ErrCodePathNotFound:
		return ExitImage
	default:
		return ExitFailure
	}
}

// ExitCodeFor returns the process exit code for any error
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *CommonError
	if errors.As(err, &ce) {
		return ce.ExitCode()
	}
	return ExitFailure
}
