package addressing

import (
	"fmt"
	"strconv"

	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// ByteOffset converts a block address into an absolute offset within an image.
// ProDOS blocks are 512 bytes; DOS 3.3 sectors are 256 bytes, 16 to a track.
func ByteOffset(addr types.BlockAddress) (int, error) {
	switch addr.Kind {
	case types.FsKindProDOS:
		return int(addr.Block) * types.ProDOSBlockSize, nil
	case types.FsKindDOS33:
		if addr.Track >= types.TracksPerDisk || addr.Sector >= types.SectorsPerTrack {
			return 0, fmt.Errorf("%w: track/sector %s out of range", types.ErrMalformedEntry, addr)
		}
		return TrackSectorOffset(int(addr.Track), int(addr.Sector)), nil
	}
	return 0, fmt.Errorf("%w: address of unknown kind", types.ErrMalformedEntry)
}

// TrackSectorOffset returns track*4096 + sector*256 without range checks.
func TrackSectorOffset(track, sector int) int {
	return track*types.TrackSize + sector*types.DOS33SectorSize
}

// ParseTrackSector parses a track and sector given as hex strings ("11", "0F").
func ParseTrackSector(track, sector string) (types.BlockAddress, error) {
	t, err := strconv.ParseUint(track, 16, 8)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("invalid track %q: %w", track, err)
	}
	s, err := strconv.ParseUint(sector, 16, 8)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("invalid sector %q: %w", sector, err)
	}
	if t >= types.TracksPerDisk || s >= types.SectorsPerTrack {
		return types.BlockAddress{}, fmt.Errorf("%w: track $%02X sector $%02X out of range", types.ErrMalformedEntry, t, s)
	}
	return types.TrackSector(uint8(t), uint8(s)), nil
}

// InterleaveSector maps a sector to its slot in the alternate interleave.
// Sectors 0 and 15 stay put; every other sector s moves to 15-s.
func InterleaveSector(s int) int {
	if s == 0 || s == types.SectorsPerTrack-1 {
		return s
	}
	return types.SectorsPerTrack - 1 - s
}

// CorrectSectorOrder converts a 140K image between DOS order and ProDOS order.
// The input is left untouched; applying it twice yields the original image.
func CorrectSectorOrder(image []byte) ([]byte, error) {
	if len(image) != types.FloppyImageSize {
		return nil, fmt.Errorf("%w: sector order correction needs %d bytes, got %d",
			types.ErrTruncatedImage, types.FloppyImageSize, len(image))
	}

	out := make([]byte, len(image))
	for t := 0; t < types.TracksPerDisk; t++ {
		for s := 0; s < types.SectorsPerTrack; s++ {
			src := TrackSectorOffset(t, s)
			dst := TrackSectorOffset(t, InterleaveSector(s))
			copy(out[dst:dst+types.DOS33SectorSize], image[src:src+types.DOS33SectorSize])
		}
	}
	return out, nil
}
