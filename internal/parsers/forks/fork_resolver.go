package forks

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/storage"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// Finder info entry types within an extended key block.
const (
	finderInfoTypeFInfo  = 1
	finderInfoTypeFXInfo = 2
)

// ForkHeader is one fork mini-entry of an extended key block.
type ForkHeader struct {
	StorageType types.StorageType
	KeyPointer  types.BlockAddress
	BlocksUsed  uint16
	Length      uint32
}

// Storage returns the storage variant of the fork. Only seedling, sapling
// and tree forks exist.
func (f ForkHeader) Storage() (types.Storage, error) {
	switch f.StorageType {
	case types.StorageSeedling, types.StorageSapling, types.StorageTree:
		return types.NewStorage(f.StorageType, f.KeyPointer, f.Length)
	}
	return nil, fmt.Errorf("%w: fork storage type %s", types.ErrMalformedEntry, f.StorageType)
}

// KeyBlock is a decoded extended key block.
type KeyBlock struct {
	Data       ForkHeader
	Resource   ForkHeader
	FinderInfo *types.FinderInfo
}

// ForkResolver resolves GS/OS extended files into their two forks.
type ForkResolver struct {
	image interfaces.ImageReader
	index *storage.IndexResolver
}

// NewForkResolver creates a resolver over image.
func NewForkResolver(image interfaces.ImageReader, index *storage.IndexResolver) *ForkResolver {
	return &ForkResolver{image: image, index: index}
}

// ReadKeyBlock decodes the extended key block at key.
func (r *ForkResolver) ReadKeyBlock(key types.BlockAddress) (*KeyBlock, error) {
	blk, err := r.image.ReadBlock(key)
	if err != nil {
		return nil, fmt.Errorf("failed to read extended key block %s: %w", key, err)
	}

	kb := &KeyBlock{
		Data:     parseForkHeader(blk[types.ForkDataOffset:]),
		Resource: parseForkHeader(blk[types.ForkResourceOffset:]),
	}
	kb.FinderInfo = parseFinderInfo(blk[types.ForkFinderInfoOffset:])
	return kb, nil
}

// Resolve returns both forks of the extended file whose key block is key.
func (r *ForkResolver) Resolve(key types.BlockAddress) (*types.ResolvedFile, error) {
	kb, err := r.ReadKeyBlock(key)
	if err != nil {
		return nil, err
	}

	data, err := r.resolveFork(kb.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data fork of %s: %w", key, err)
	}
	rsrc, err := r.resolveFork(kb.Resource)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve resource fork of %s: %w", key, err)
	}

	return &types.ResolvedFile{
		DataFork:     data,
		ResourceFork: rsrc,
		FinderInfo:   kb.FinderInfo,
	}, nil
}

func (r *ForkResolver) resolveFork(f ForkHeader) ([]byte, error) {
	s, err := f.Storage()
	if err != nil {
		return nil, err
	}
	return r.index.Resolve(s)
}

func parseForkHeader(b []byte) ForkHeader {
	return ForkHeader{
		StorageType: types.StorageType(b[types.ForkStorageOffset]),
		KeyPointer:  types.ProDOSBlock(binary.LittleEndian.Uint16(b[types.ForkKeyPointerOffset:])),
		BlocksUsed:  binary.LittleEndian.Uint16(b[types.ForkBlocksUsedOffset:]),
		Length:      uint32(b[types.ForkEOFOffset]) | uint32(b[types.ForkEOFOffset+1])<<8 | uint32(b[types.ForkEOFOffset+2])<<16,
	}
}

// parseFinderInfo reads the two optional 18-byte Finder info entries that
// follow the data fork mini-entry. Each is a size byte, a type byte and 16
// bytes of FInfo or FXInfo.
func parseFinderInfo(b []byte) *types.FinderInfo {
	var fi types.FinderInfo
	for i := 0; i < 2; i++ {
		ent := b[i*types.ForkFinderEntryLength:]
		if ent[0] != types.ForkFinderEntryLength {
			continue
		}
		data := bytes.Clone(ent[2 : 2+types.FinderInfoLength])
		switch ent[1] {
		case finderInfoTypeFInfo:
			fi.FInfo = data
		case finderInfoTypeFXInfo:
			fi.FXInfo = data
		}
	}
	if fi.FInfo == nil && fi.FXInfo == nil {
		return nil
	}
	return &fi
}
