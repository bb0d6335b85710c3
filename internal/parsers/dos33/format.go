package dos33

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/storage"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// Format decodes DOS 3.3 catalogs and files. DOS 3.3 has no subdirectories;
// the catalog is a single directory chained through sectors of track 17.
type Format struct {
	image interfaces.ImageReader
	index *storage.IndexResolver
}

var _ interfaces.FilesystemFormat = (*Format)(nil)

// NewFormat creates a DOS 3.3 format over an image in DOS sector order.
func NewFormat(image interfaces.ImageReader) *Format {
	return &Format{image: image, index: storage.NewIndexResolver(image)}
}

// Kind returns FsKindDOS33.
func (f *Format) Kind() types.FsKind {
	return types.FsKindDOS33
}

// VTOC returns the volume table of contents sector.
func (f *Format) VTOC() ([]byte, error) {
	vtoc, err := f.image.ReadBlock(types.TrackSector(types.DOS33VTOCTrack, types.DOS33VTOCSector))
	if err != nil {
		return nil, fmt.Errorf("%w: no VTOC: %v", types.ErrUnknownFormat, err)
	}
	return vtoc, nil
}

// VolumeNumber returns the volume number recorded in the VTOC.
func (f *Format) VolumeNumber() (uint8, error) {
	vtoc, err := f.VTOC()
	if err != nil {
		return 0, err
	}
	return vtoc[types.DOS33VTOCVolumeOffset], nil
}

// RootDirectory returns the first catalog sector named by the VTOC.
func (f *Format) RootDirectory() (types.BlockAddress, error) {
	vtoc, err := f.VTOC()
	if err != nil {
		return types.BlockAddress{}, err
	}
	t, s := vtoc[types.DOS33VTOCCatalogOffset], vtoc[types.DOS33VTOCCatalogOffset+1]
	if t >= types.TracksPerDisk || s >= types.SectorsPerTrack {
		return types.BlockAddress{}, fmt.Errorf("%w: VTOC catalog pointer T%02X S%02X out of range", types.ErrUnknownFormat, t, s)
	}
	return types.TrackSector(t, s), nil
}

// ReadHeader summarises the catalog starting at dir. DOS 3.3 catalogs carry
// no name or file count, so the live entries are counted by walking the chain.
func (f *Format) ReadHeader(dir types.BlockAddress, _ uint16) (*types.DirectoryHeader, error) {
	n, err := f.CountEntries(dir)
	if err != nil {
		return nil, err
	}
	return &types.DirectoryHeader{
		StorageType: types.StorageVolumeHeader,
		Key:         dir,
		EntryCount:  n,
	}, nil
}

// CountEntries counts the live catalog entries. A zero first byte marks the
// end of the catalog and deleted entries are skipped.
func (f *Format) CountEntries(dir types.BlockAddress) (int, error) {
	count := 0
	visited := make(map[types.BlockAddress]struct{})
	for cur := dir; !cur.IsZero(); {
		if _, seen := visited[cur]; seen {
			return 0, fmt.Errorf("%w: catalog chain loops back to %s", types.ErrMalformedEntry, cur)
		}
		visited[cur] = struct{}{}

		sec, err := f.image.ReadBlock(cur)
		if err != nil {
			return 0, fmt.Errorf("failed to read catalog sector: %w", err)
		}
		for i := 0; i < types.DOS33EntriesPerSector; i++ {
			switch sec[types.DOS33CatalogFirstEntry+i*types.DOS33EntryLength] {
			case 0:
				return count, nil
			case types.DOS33DeletedMarker:
			default:
				count++
			}
		}
		cur = nextPair(sec)
	}
	return count, nil
}

// EntryOffset returns the offset of entry index in the catalog sector dir.
func (f *Format) EntryOffset(dir types.BlockAddress, index int) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: negative entry index %d", types.ErrMalformedEntry, index)
	}
	base, err := addressing.ByteOffset(dir)
	if err != nil {
		return 0, err
	}
	return base + types.DOS33CatalogFirstEntry + types.DOS33EntryLength*(index%types.DOS33EntriesPerSector), nil
}

// IsChunkBoundary reports whether entry next starts a new catalog sector.
func (f *Format) IsChunkBoundary(next int) bool {
	return next%types.DOS33EntriesPerSector == 0
}

// NextChunk returns the next catalog sector, or T0 S0 at the end.
func (f *Format) NextChunk(dir types.BlockAddress) (types.BlockAddress, error) {
	sec, err := f.image.ReadBlock(dir)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("failed to read catalog sector: %w", err)
	}
	return nextPair(sec), nil
}

// DecodeEntry decodes the catalog entry at index in the catalog sector dir.
// Live entries get a ProDOS equivalent type, aux type and length, which
// needs the first data sector and, for text files, the whole T/S list.
func (f *Format) DecodeEntry(dir types.BlockAddress, index int) (*types.DirectoryEntry, error) {
	off, err := f.EntryOffset(dir, index)
	if err != nil {
		return nil, err
	}
	ent, err := f.image.Slice(off, types.DOS33EntryLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog entry %d of %s: %w", index, dir, err)
	}

	rawType := ent[types.DOS33EntryTypeOffset]
	e := &types.DirectoryEntry{
		Name:       decodeName(ent[types.DOS33EntryNameOffset : types.DOS33EntryNameOffset+types.DOS33NameLength]),
		KeyPointer: types.TrackSector(ent[types.DOS33EntryTrackOffset], ent[types.DOS33EntrySectorOffset]),
		BlocksUsed: binary.LittleEndian.Uint16(ent[types.DOS33EntrySectorsOffset:]),
		DOS33Type:  rawType & types.DOS33TypeMask,
		Locked:     rawType&types.DOS33TypeLockedFlag != 0,
		Directory:  dir,
		Index:      index,
		Offset:     off,
	}
	e.Access = types.AccessRead
	if !e.Locked {
		e.Access |= types.AccessWrite | types.AccessRename | types.AccessDestroy
	}

	first := ent[types.DOS33EntryTrackOffset]
	if first == 0 || first == types.DOS33DeletedMarker {
		e.StorageType = types.StorageDeleted
		return e, nil
	}
	e.StorageType = types.StorageTSList

	if err := f.inferTypeAndLength(e); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", e.NameString(), err)
	}
	return e, nil
}

// inferTypeAndLength maps the DOS 3.3 type onto ProDOS codes. Binary files
// keep their load address and length in the first four data bytes, BASIC
// programs their length in the first two.
func (f *Format) inferTypeAndLength(e *types.DirectoryEntry) error {
	switch e.DOS33Type {
	case types.DOS33TypeBinary:
		e.FileType = types.FileTypeBinary
	case types.DOS33TypeInteger:
		e.FileType, e.AuxType = types.FileTypeInteger, types.IntegerAuxType
	case types.DOS33TypeApplesoft:
		e.FileType, e.AuxType = types.FileTypeApplesoft, types.ApplesoftAuxType
	default:
		e.FileType = types.FileTypeText
		n, err := f.index.TextLength(e.KeyPointer)
		if err != nil {
			return err
		}
		e.Length = n
		return nil
	}

	data, err := f.index.FirstDataSector(e.KeyPointer)
	if err != nil {
		return err
	}
	if data.IsZero() {
		return nil
	}
	sec, err := f.image.ReadBlock(data)
	if err != nil {
		return fmt.Errorf("failed to read first data sector: %w", err)
	}

	le := binary.LittleEndian
	if e.FileType == types.FileTypeBinary {
		e.AuxType = le.Uint16(sec[0:])
		e.Length = uint32(le.Uint16(sec[2:])) + 4
	} else {
		e.Length = uint32(le.Uint16(sec[0:])) + 2
	}
	return nil
}

// ResolveLength returns the length derived when the entry was decoded.
func (f *Format) ResolveLength(entry *types.DirectoryEntry) (uint32, error) {
	return entry.Length, nil
}

// Resolve returns the content of a catalog entry.
func (f *Format) Resolve(entry *types.DirectoryEntry) (*types.ResolvedFile, error) {
	s, err := entry.Storage()
	if err != nil {
		return nil, err
	}
	data, err := f.index.Resolve(s)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", entry.NameString(), err)
	}
	return &types.ResolvedFile{DataFork: data}, nil
}

// decodeName strips the high bit from each character and the space padding.
func decodeName(raw []byte) []byte {
	name := make([]byte, len(raw))
	for i, c := range raw {
		name[i] = c & types.DOS33NameHighBitMask
	}
	return bytes.TrimRight(name, " \t\n\v\f\r")
}

func nextPair(sec []byte) types.BlockAddress {
	return types.TrackSector(sec[types.DOS33CatalogNextOffset], sec[types.DOS33CatalogNextOffset+1])
}
