package twoimg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/types"
)

const (
	// HeaderSize is the only header length version 1 defines.
	HeaderSize = 64

	// Version is the only supported container version.
	Version = 1

	// FlagLocked marks the image as write protected.
	FlagLocked uint32 = 1 << 31

	// FlagDOSVolumeValid means the low byte of Flags carries a DOS 3.3 volume number.
	FlagDOSVolumeValid uint32 = 1 << 8
)

// Magic identifies a 2IMG container.
var Magic = []byte("2IMG")

// ImageFormat is the sector order of the wrapped image.
type ImageFormat uint32

const (
	FormatDOSOrder    ImageFormat = 0
	FormatProDOSOrder ImageFormat = 1
	FormatNibble      ImageFormat = 2
)

func (f ImageFormat) String() string {
	switch f {
	case FormatDOSOrder:
		return "DOS order"
	case FormatProDOSOrder:
		return "ProDOS order"
	case FormatNibble:
		return "nibble"
	}
	return fmt.Sprintf("format %d", uint32(f))
}

// MarshalText renders the format by name in JSON and YAML output.
func (f ImageFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// Header is the decoded 64-byte 2IMG header.
type Header struct {
	Creator       string      `json:"creator" yaml:"creator"`
	HeaderLength  uint16      `json:"header_length" yaml:"header_length"`
	Version       uint16      `json:"version" yaml:"version"`
	ImageFormat   ImageFormat `json:"image_format" yaml:"image_format"`
	Flags         uint32      `json:"flags" yaml:"flags"`
	NumBlocks     uint32      `json:"num_blocks" yaml:"num_blocks"`
	DataOffset    uint32      `json:"data_offset" yaml:"data_offset"`
	DataLength    uint32      `json:"data_length" yaml:"data_length"`
	CommentOffset uint32      `json:"-" yaml:"-"`
	CommentLength uint32      `json:"-" yaml:"-"`
	CreatorOffset uint32      `json:"-" yaml:"-"`
	CreatorLength uint32      `json:"-" yaml:"-"`

	// Comment and CreatorData are the optional trailing chunks.
	Comment     string `json:"comment,omitempty" yaml:"comment,omitempty"`
	CreatorData []byte `json:"-" yaml:"-"`
}

// IsTwoIMG reports whether data starts with the 2IMG magic.
func IsTwoIMG(data []byte) bool {
	return bytes.HasPrefix(data, Magic)
}

// ParseHeader decodes and validates the header at the start of data.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: insufficient data for 2IMG header: %d bytes", types.ErrUnsupportedContainer, len(data))
	}
	if !IsTwoIMG(data) {
		return nil, fmt.Errorf("%w: missing 2IMG magic", types.ErrUnsupportedContainer)
	}

	le := binary.LittleEndian
	h := &Header{
		Creator:       string(data[4:8]),
		HeaderLength:  le.Uint16(data[8:10]),
		Version:       le.Uint16(data[10:12]),
		ImageFormat:   ImageFormat(le.Uint32(data[12:16])),
		Flags:         le.Uint32(data[16:20]),
		NumBlocks:     le.Uint32(data[20:24]),
		DataOffset:    le.Uint32(data[24:28]),
		DataLength:    le.Uint32(data[28:32]),
		CommentOffset: le.Uint32(data[32:36]),
		CommentLength: le.Uint32(data[36:40]),
		CreatorOffset: le.Uint32(data[40:44]),
		CreatorLength: le.Uint32(data[44:48]),
	}

	if h.HeaderLength != HeaderSize {
		return nil, fmt.Errorf("%w: header length %d", types.ErrUnsupportedContainer, h.HeaderLength)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: version %d", types.ErrUnsupportedContainer, h.Version)
	}

	if c, ok := chunk(data, h.CommentOffset, h.CommentLength); ok {
		h.Comment = string(c)
	}
	if c, ok := chunk(data, h.CreatorOffset, h.CreatorLength); ok {
		h.CreatorData = bytes.Clone(c)
	}
	return h, nil
}

// Locked reports whether the write-protect flag is set.
func (h *Header) Locked() bool {
	return h.Flags&FlagLocked != 0
}

// DOSVolume returns the DOS 3.3 volume number, if the header carries one.
func (h *Header) DOSVolume() (uint8, bool) {
	if h.Flags&FlagDOSVolumeValid == 0 {
		return 0, false
	}
	return uint8(h.Flags), true
}

// Strip returns the disk data wrapped by the container. A zero data length
// means the data runs to the end of the file.
func Strip(data []byte) ([]byte, *Header, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	start := uint64(h.DataOffset)
	length := uint64(h.DataLength)
	if length == 0 && start <= uint64(len(data)) {
		length = uint64(len(data)) - start
	}
	if start+length > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: 2IMG data %d+%d exceeds file size %d",
			types.ErrTruncatedImage, start, length, len(data))
	}
	return data[start : start+length], h, nil
}

func chunk(data []byte, off, n uint32) ([]byte, bool) {
	if off == 0 || n == 0 || uint64(off)+uint64(n) > uint64(len(data)) {
		return nil, false
	}
	return data[off : off+n], true
}
