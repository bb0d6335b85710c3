package storage

import (
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// IndexResolver reassembles file data from seedling, sapling and tree
// index structures on ProDOS volumes and from track/sector list chains on
// DOS 3.3 volumes. A zero block pointer is a sparse hole and reads as zeros.
type IndexResolver struct {
	image interfaces.ImageReader
}

// NewIndexResolver creates a resolver over image.
func NewIndexResolver(image interfaces.ImageReader) *IndexResolver {
	return &IndexResolver{image: image}
}

// Resolve returns the data described by a storage variant.
func (r *IndexResolver) Resolve(s types.Storage) ([]byte, error) {
	switch st := s.(type) {
	case types.Seedling:
		return r.Seedling(st.Block, st.Length)
	case types.Sapling:
		return r.Sapling(st.Index, st.Length)
	case types.Tree:
		return r.Tree(st.MasterIndex, st.Length)
	case types.TSList:
		return r.TSList(st.List, st.Length)
	case types.Deleted:
		return nil, fmt.Errorf("%w: deleted entry has no data", types.ErrMalformedEntry)
	case types.Forked:
		return nil, fmt.Errorf("%w: forked file at %s needs fork resolution", types.ErrMalformedEntry, st.Key)
	case types.Subdirectory:
		return nil, fmt.Errorf("%w: %s is a directory", types.ErrMalformedEntry, st.Key)
	}
	return nil, fmt.Errorf("%w: unhandled storage %T", types.ErrMalformedEntry, s)
}

// Seedling returns length bytes from a single data block. Bytes past the
// end of the block read as zeros.
func (r *IndexResolver) Seedling(block types.BlockAddress, length uint32) ([]byte, error) {
	out := make([]byte, length)
	if err := r.copyBlock(out[:min(len(out), block.Size())], block); err != nil {
		return nil, err
	}
	return out, nil
}

// Sapling returns length bytes from the data blocks listed in an index
// block. Bytes past what the index addresses read as zeros.
func (r *IndexResolver) Sapling(index types.BlockAddress, length uint32) ([]byte, error) {
	out := make([]byte, length)
	if err := r.fillIndex(out[:min(len(out), types.ProDOSMaxSaplingLength)], index); err != nil {
		return nil, err
	}
	return out, nil
}

// Tree returns length bytes from the sapling index blocks listed in a master
// index block, concatenated in order. Bytes past what the master index
// addresses read as zeros.
func (r *IndexResolver) Tree(master types.BlockAddress, length uint32) ([]byte, error) {
	out := make([]byte, length)
	if len(out) == 0 || master.IsZero() {
		return out, nil
	}

	blk, err := r.image.ReadBlock(master)
	if err != nil {
		return nil, fmt.Errorf("failed to read master index %s: %w", master, err)
	}
	for i := 0; i < types.ProDOSIndexPointers && i*types.ProDOSMaxSaplingLength < len(out); i++ {
		start := i * types.ProDOSMaxSaplingLength
		end := min(start+types.ProDOSMaxSaplingLength, len(out))
		if err := r.fillIndex(out[start:end], indexPointer(blk, i)); err != nil {
			return nil, fmt.Errorf("failed to resolve master index entry %d: %w", i, err)
		}
	}
	return out, nil
}

// TSList returns length bytes from the data sectors of a DOS 3.3 T/S list chain.
func (r *IndexResolver) TSList(list types.BlockAddress, length uint32) ([]byte, error) {
	out := make([]byte, length)
	if len(out) == 0 {
		return out, nil
	}

	pos := 0
	err := r.WalkTSList(list, func(data types.BlockAddress) (bool, error) {
		end := min(pos+types.DOS33SectorSize, len(out))
		if err := r.copyBlock(out[pos:end], data); err != nil {
			return false, err
		}
		pos = end
		return pos < len(out), nil
	})
	if err != nil {
		return nil, err
	}
	if pos < len(out) {
		return nil, fmt.Errorf("%w: length %d exceeds T/S list capacity %d", types.ErrMalformedEntry, length, pos)
	}
	return out, nil
}

// WalkTSList calls fn with every data sector pointer of a T/S list chain in
// file order, including zero (sparse) pointers, until fn returns false or the
// chain ends. A chain that revisits a list sector is malformed.
func (r *IndexResolver) WalkTSList(list types.BlockAddress, fn func(data types.BlockAddress) (bool, error)) error {
	visited := make(map[types.BlockAddress]struct{})
	for cur := list; !cur.IsZero(); {
		if _, seen := visited[cur]; seen {
			return fmt.Errorf("%w: T/S list chain loops back to %s", types.ErrMalformedEntry, cur)
		}
		visited[cur] = struct{}{}

		sec, err := r.image.ReadBlock(cur)
		if err != nil {
			return fmt.Errorf("failed to read T/S list %s: %w", cur, err)
		}
		for off := types.DOS33TSListFirstPair; off+1 < types.DOS33SectorSize; off += 2 {
			more, err := fn(types.TrackSector(sec[off], sec[off+1]))
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		cur = types.TrackSector(sec[types.DOS33CatalogNextOffset], sec[types.DOS33CatalogNextOffset+1])
	}
	return nil
}

// FirstDataSector returns the first data pointer of a T/S list, which may be zero.
func (r *IndexResolver) FirstDataSector(list types.BlockAddress) (types.BlockAddress, error) {
	sec, err := r.image.ReadBlock(list)
	if err != nil {
		return types.BlockAddress{}, fmt.Errorf("failed to read T/S list %s: %w", list, err)
	}
	off := types.DOS33TSListFirstPair
	return types.TrackSector(sec[off], sec[off+1]), nil
}

// TextLength estimates the length of a DOS 3.3 file that stores none. Every
// data pointer up to the first zero pair counts as a full sector; the last
// sector is then trimmed after its final non-zero byte. Trailing zero bytes
// that are really part of the file are indistinguishable from padding.
func (r *IndexResolver) TextLength(list types.BlockAddress) (uint32, error) {
	var (
		sectors uint32
		last    types.BlockAddress
	)
	err := r.WalkTSList(list, func(data types.BlockAddress) (bool, error) {
		if data.IsZero() {
			return false, nil
		}
		sectors++
		last = data
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	if sectors == 0 {
		return 0, nil
	}

	sec, err := r.image.ReadBlock(last)
	if err != nil {
		return 0, fmt.Errorf("failed to read last data sector %s: %w", last, err)
	}
	size := (sectors - 1) * types.DOS33SectorSize
	for off := types.DOS33SectorSize - 1; off >= 0; off-- {
		if sec[off] != 0 {
			size += uint32(off + 1)
			break
		}
	}
	return size, nil
}

// fillIndex fills dst from the data blocks listed in a sapling index block.
func (r *IndexResolver) fillIndex(dst []byte, index types.BlockAddress) error {
	if len(dst) == 0 || index.IsZero() {
		return nil
	}
	blk, err := r.image.ReadBlock(index)
	if err != nil {
		return fmt.Errorf("failed to read index block %s: %w", index, err)
	}
	for i := 0; i < types.ProDOSIndexPointers && i*types.ProDOSBlockSize < len(dst); i++ {
		start := i * types.ProDOSBlockSize
		end := min(start+types.ProDOSBlockSize, len(dst))
		if err := r.copyBlock(dst[start:end], indexPointer(blk, i)); err != nil {
			return fmt.Errorf("failed to resolve entry %d of index %s: %w", i, index, err)
		}
	}
	return nil
}

// copyBlock copies the first len(dst) bytes of a block into dst. A zero
// address leaves dst as it is.
func (r *IndexResolver) copyBlock(dst []byte, addr types.BlockAddress) error {
	if addr.IsZero() {
		return nil
	}
	data, err := r.image.ReadBlock(addr)
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// indexPointer reads pointer i of an index block. Low bytes occupy the first
// half of the block and high bytes the second.
func indexPointer(blk []byte, i int) types.BlockAddress {
	return types.ProDOSBlock(uint16(blk[i]) | uint16(blk[i+types.ProDOSIndexPointers])<<8)
}
