package types

import "fmt"

// FsKind identifies the filesystem found on an image.
type FsKind uint8

const (
	// FsKindUnknown means neither signature matched.
	FsKindUnknown FsKind = iota

	// FsKindProDOS is a ProDOS (or SOS) hierarchical volume, 512-byte blocks.
	FsKindProDOS

	// FsKindDOS33 is a DOS 3.3 volume, 256-byte sectors addressed by track and sector.
	FsKindDOS33
)

// String returns a human readable name for the filesystem kind.
func (k FsKind) String() string {
	switch k {
	case FsKindProDOS:
		return "ProDOS"
	case FsKindDOS33:
		return "DOS 3.3"
	default:
		return "Unknown"
	}
}

// BlockAddress is a logical position on an image: either a ProDOS block
// number or a DOS 3.3 track/sector pair. Which half is meaningful depends on Kind.
type BlockAddress struct {
	Kind   FsKind
	Block  uint16
	Track  uint8
	Sector uint8
}

// ProDOSBlock returns the address of a ProDOS block.
func ProDOSBlock(block uint16) BlockAddress {
	return BlockAddress{Kind: FsKindProDOS, Block: block}
}

// TrackSector returns the address of a DOS 3.3 sector.
func TrackSector(track, sector uint8) BlockAddress {
	return BlockAddress{Kind: FsKindDOS33, Track: track, Sector: sector}
}

// IsZero reports whether the address is a null pointer (block 0 or T0 S0).
// Both formats use a zero pointer to mean "none" or a sparse hole.
func (a BlockAddress) IsZero() bool {
	if a.Kind == FsKindDOS33 {
		return a.Track == 0 && a.Sector == 0
	}
	return a.Block == 0
}

// Size returns the natural size of the block or sector the address names.
func (a BlockAddress) Size() int {
	if a.Kind == FsKindDOS33 {
		return DOS33SectorSize
	}
	return ProDOSBlockSize
}

func (a BlockAddress) String() string {
	if a.Kind == FsKindDOS33 {
		return fmt.Sprintf("T%02X S%02X", a.Track, a.Sector)
	}
	return fmt.Sprintf("block %d", a.Block)
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k FsKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
