// File: internal/interfaces/block_device.go
package interfaces

import "github.com/deploymenttheory/go-a2fs/internal/types"

// ImageReader provides bounds-checked read access to an in-memory disk image.
// Implementations never hand out slices that alias mutable state; the image is
// immutable once loaded.
type ImageReader interface {
	// Kind returns the filesystem the image was classified as
	Kind() types.FsKind

	// Len returns the size of the image in bytes
	Len() int

	// Slice returns n bytes starting at off, failing with ErrTruncatedImage
	// when the range runs past the image
	Slice(off, n int) ([]byte, error)

	// ReadBlock returns the ProDOS block or DOS 3.3 sector at addr
	ReadBlock(addr types.BlockAddress) ([]byte, error)
}
