package prodos

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/forks"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/storage"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// Options controls how ProDOS names are decoded.
type Options struct {
	// CasefoldUpper ignores GS/OS case-fold masks and keeps names upper case.
	CasefoldUpper bool
}

// Format decodes ProDOS directories and files.
type Format struct {
	image interfaces.ImageReader
	index *storage.IndexResolver
	forks *forks.ForkResolver
	opts  Options
}

var _ interfaces.FilesystemFormat = (*Format)(nil)

// NewFormat creates a ProDOS format over an image in ProDOS block order.
func NewFormat(image interfaces.ImageReader, opts Options) *Format {
	index := storage.NewIndexResolver(image)
	return &Format{
		image: image,
		index: index,
		forks: forks.NewForkResolver(image, index),
		opts:  opts,
	}
}

// Kind returns FsKindProDOS.
func (f *Format) Kind() types.FsKind {
	return types.FsKindProDOS
}

// RootDirectory returns the volume directory key block after checking that
// it holds a volume directory header.
func (f *Format) RootDirectory() (types.BlockAddress, error) {
	root := types.ProDOSBlock(types.ProDOSVolumeDirectoryBlock)
	blk, err := f.image.ReadBlock(root)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("%w: no volume directory: %v", types.ErrUnknownFormat, err)
	}
	if st := types.StorageType(blk[types.ProDOSDirHeaderOffset] >> 4); st != types.StorageVolumeHeader {
		return types.BlockAddress{}, fmt.Errorf("%w: block 2 holds %s, not a volume directory header", types.ErrUnknownFormat, st)
	}
	return root, nil
}

// ReadHeader decodes the header entry of a directory key block.
func (f *Format) ReadHeader(dir types.BlockAddress, parentCaseMask uint16) (*types.DirectoryHeader, error) {
	blk, err := f.image.ReadBlock(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory key block: %w", err)
	}

	first := blk[types.ProDOSDirHeaderOffset]
	st := types.StorageType(first >> 4)
	word := parentCaseMask
	switch st {
	case types.StorageVolumeHeader:
		word = binary.LittleEndian.Uint16(blk[types.ProDOSDirVolumeCaseOffset:])
	case types.StorageSubdirHeader:
	default:
		return nil, fmt.Errorf("%w: %s has %s where a directory header belongs", types.ErrMalformedEntry, dir, st)
	}

	n := int(first & 0x0F)
	name := bytes.Clone(blk[types.ProDOSDirHeaderNameOffset : types.ProDOSDirHeaderNameOffset+n])
	return &types.DirectoryHeader{
		Name:        applyCaseWord(name, word, f.opts.CasefoldUpper),
		StorageType: st,
		Key:         dir,
		EntryCount:  int(binary.LittleEndian.Uint16(blk[types.ProDOSDirFileCountOffset:])),
		CaseMask:    word,
		Created:     DateTimeFromProDOS(blk[types.ProDOSDirCreatedOffset : types.ProDOSDirCreatedOffset+4]),
	}, nil
}

// EntryOffset returns the offset of entry index in the directory chunk at dir.
// Entries 0-11 follow the header in the key block; each later block holds 13.
func (f *Format) EntryOffset(dir types.BlockAddress, index int) (int, error) {
	if index < 0 {
		return 0, fmt.Errorf("%w: negative entry index %d", types.ErrMalformedEntry, index)
	}
	skip, first := 0, types.ProDOSFirstEntryOffset
	if index > 11 {
		skip, first = 1, types.ProDOSDirHeaderOffset
	}
	return int(dir.Block)*types.ProDOSBlockSize +
		types.ProDOSEntryLength*((index+skip)%types.ProDOSEntriesPerBlock) + first, nil
}

// IsChunkBoundary reports whether entry next starts a new directory block.
func (f *Format) IsChunkBoundary(next int) bool {
	if next > 11 {
		next++
	}
	return next%types.ProDOSEntriesPerBlock == 0
}

// NextChunk returns the next block of a directory, or block 0 at the end.
func (f *Format) NextChunk(dir types.BlockAddress) (types.BlockAddress, error) {
	blk, err := f.image.ReadBlock(dir)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("failed to read directory block: %w", err)
	}
	return types.ProDOSBlock(binary.LittleEndian.Uint16(blk[types.ProDOSDirNextPointerOffset:])), nil
}

// DecodeEntry decodes the file entry at index in the directory chunk at dir.
func (f *Format) DecodeEntry(dir types.BlockAddress, index int) (*types.DirectoryEntry, error) {
	off, err := f.EntryOffset(dir, index)
	if err != nil {
		return nil, err
	}
	ent, err := f.image.Slice(off, types.ProDOSEntryLength)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %d of %s: %w", index, dir, err)
	}

	st := types.StorageType(ent[0] >> 4)
	if !st.IsEntryStorage() || st == types.StorageTSList {
		return nil, fmt.Errorf("%w: entry %d of %s has storage type %s", types.ErrMalformedEntry, index, dir, st)
	}

	le := binary.LittleEndian
	n := int(ent[0] & 0x0F)
	caseWord := le.Uint16(ent[types.ProDOSEntryCaseMaskOffset:])
	access := ent[types.ProDOSEntryAccessOffset]
	name := bytes.Clone(ent[types.ProDOSEntryNameOffset : types.ProDOSEntryNameOffset+n])

	return &types.DirectoryEntry{
		Name:          applyCaseWord(name, caseWord, f.opts.CasefoldUpper),
		StorageType:   st,
		FileType:      ent[types.ProDOSEntryFileTypeOffset],
		AuxType:       le.Uint16(ent[types.ProDOSEntryAuxTypeOffset:]),
		KeyPointer:    types.ProDOSBlock(le.Uint16(ent[types.ProDOSEntryKeyPointerOffset:])),
		Length:        uint24(ent[types.ProDOSEntryEOFOffset:]),
		BlocksUsed:    le.Uint16(ent[types.ProDOSEntryBlocksUsedOffset:]),
		Created:       DateTimeFromProDOS(ent[types.ProDOSEntryCreatedOffset : types.ProDOSEntryCreatedOffset+4]),
		Modified:      DateTimeFromProDOS(ent[types.ProDOSEntryModifiedOffset : types.ProDOSEntryModifiedOffset+4]),
		CaseMask:      caseWord,
		Access:        access,
		Locked:        access&types.AccessWrite == 0,
		HeaderPointer: le.Uint16(ent[types.ProDOSEntryHeaderPtrOffset:]),
		Directory:     dir,
		Index:         index,
		Offset:        off,
	}, nil
}

// ResolveLength returns the data length of an entry. For extended files
// the entry EOF only covers the key block, so the data fork length is used.
func (f *Format) ResolveLength(entry *types.DirectoryEntry) (uint32, error) {
	if entry.IsForked() {
		kb, err := f.forks.ReadKeyBlock(entry.KeyPointer)
		if err != nil {
			return 0, err
		}
		return kb.Data.Length, nil
	}
	return entry.Length, nil
}

// Resolve returns the content of a file entry.
func (f *Format) Resolve(entry *types.DirectoryEntry) (*types.ResolvedFile, error) {
	s, err := entry.Storage()
	if err != nil {
		return nil, err
	}
	switch st := s.(type) {
	case types.Forked:
		return f.forks.Resolve(st.Key)
	case types.Subdirectory:
		return nil, fmt.Errorf("%w: %s is a directory", types.ErrMalformedEntry, entry.NameString())
	}

	data, err := f.index.Resolve(s)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", entry.NameString(), err)
	}
	return &types.ResolvedFile{DataFork: data}, nil
}

// ReadKeyBlock exposes the fork headers of an extended entry.
func (f *Format) ReadKeyBlock(entry *types.DirectoryEntry) (*forks.KeyBlock, error) {
	if !entry.IsForked() {
		return nil, fmt.Errorf("%w: %s is not an extended file", types.ErrMalformedEntry, entry.NameString())
	}
	return f.forks.ReadKeyBlock(entry.KeyPointer)
}

func uint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}
