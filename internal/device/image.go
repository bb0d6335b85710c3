package device

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// ImageDevice is a read-only, bounds-checked view of a disk image held in memory
type ImageDevice struct {
	data []byte
	kind types.FsKind
}

// NewImageDevice wraps image bytes already normalised to the order the
// given filesystem expects. The slice is owned by the device from here on.
func NewImageDevice(data []byte, kind types.FsKind) *ImageDevice {
	return &ImageDevice{data: data, kind: kind}
}

// Kind returns the filesystem the image was classified as
func (d *ImageDevice) Kind() types.FsKind {
	return d.kind
}

// Len returns the image size in bytes
func (d *ImageDevice) Len() int {
	return len(d.data)
}

// Slice returns n bytes starting at off
func (d *ImageDevice) Slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off > len(d.data) || n > len(d.data)-off {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d exceeds image size %d",
			types.ErrTruncatedImage, n, off, len(d.data))
	}
	return d.data[off : off+n : off+n], nil
}

// ReadBlock returns the block or sector named by addr
func (d *ImageDevice) ReadBlock(addr types.BlockAddress) ([]byte, error) {
	off, err := addressing.ByteOffset(addr)
	if err != nil {
		return nil, err
	}
	data, err := d.Slice(off, addr.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", addr, err)
	}
	return data, nil
}

// Fingerprint returns the xxhash64 digest of the image contents
func (d *ImageDevice) Fingerprint() uint64 {
	return xxhash.Sum64(d.data)
}

// TotalBlocks returns the number of whole blocks or sectors on the image
func (d *ImageDevice) TotalBlocks() int {
	if d.kind == types.FsKindDOS33 {
		return len(d.data) / types.DOS33SectorSize
	}
	return len(d.data) / types.ProDOSBlockSize
}
