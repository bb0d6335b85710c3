package app

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     string
		exitCode int
	}{
		{"truncated image", fmt.Errorf("failed to read: %w", types.ErrTruncatedImage), ErrCodeUnsupportedImage, ExitImage},
		{"bad container", types.ErrUnsupportedContainer, ErrCodeUnsupportedImage, ExitImage},
		{"unknown format", types.ErrUnknownFormat, ErrCodeUnsupportedImage, ExitImage},
		{"missing path", fmt.Errorf("%w: FOO", types.ErrPathSegmentNotFound), ErrCodePathNotFound, ExitImage},
		{"missing image", &fs.PathError{Op: "open", Path: "x.po", Err: fs.ErrNotExist}, ErrCodeImageAccess, ExitImage},
		{"malformed", types.ErrMalformedEntry, ErrCodeMalformedImage, ExitFailure},
		{"permission", fs.ErrPermission, ErrCodePermission, ExitFailure},
		{"other", errors.New("boom"), ErrCodeInternal, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := ClassifyError("failed", tt.err)
			require.NotNil(t, ce)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.exitCode, ce.ExitCode())
			assert.Equal(t, tt.exitCode, ExitCodeFor(fmt.Errorf("wrapped: %w", ce)))
			assert.ErrorIs(t, ce, tt.err)
		})
	}
}

func TestClassifyErrorPassThrough(t *testing.T) {
	assert.Nil(t, ClassifyError("ok", nil))

	orig := NewError(ErrCodeInvalidInput, "bad flag", nil)
	assert.Same(t, orig, ClassifyError("again", fmt.Errorf("ctx: %w", orig)))
	assert.Equal(t, "bad flag", orig.Error())
	assert.Equal(t, ExitOK, ExitCodeFor(nil))
	assert.Equal(t, ExitFailure, ExitCodeFor(errors.New("plain")))
}

func TestCommonErrorMessage(t *testing.T) {
	err := NewError(ErrCodeImageAccess, "failed to load image", errors.New("no such file"))
	assert.Equal(t, "failed to load image: no such file", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "no such file")
}
