package services

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// DirectoryIterator walks the live entries of a single directory. It follows
// the chunk chain of the directory (ProDOS blocks, DOS 3.3 catalog sectors)
// and stops once the number of live entries named by the header has been
// returned, or the chain ends.
type DirectoryIterator struct {
	format    interfaces.FilesystemFormat
	header    *types.DirectoryHeader
	chunk     types.BlockAddress
	index     int
	processed int
	visited   map[types.BlockAddress]struct{}
	done      bool
}

var _ interfaces.DirectoryWalker = (*DirectoryIterator)(nil)

// NewDirectoryIterator reads the header of the directory whose key block or
// first catalog sector is dir.
func NewDirectoryIterator(format interfaces.FilesystemFormat, dir types.BlockAddress, parentCaseMask uint16) (*DirectoryIterator, error) {
	if format == nil {
		return nil, fmt.Errorf("filesystem format cannot be nil")
	}
	header, err := format.ReadHeader(dir, parentCaseMask)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory header at %s: %w", dir, err)
	}
	return &DirectoryIterator{
		format:  format,
		header:  header,
		chunk:   dir,
		visited: map[types.BlockAddress]struct{}{dir: {}},
		done:    header.EntryCount == 0,
	}, nil
}

// Header returns the decoded directory header
func (it *DirectoryIterator) Header() *types.DirectoryHeader {
	return it.header
}

// Next returns the next live entry, or (nil, nil) when the directory is
// exhausted. An entry that fails to decode is returned as an error and
// skipped, so the caller may keep iterating. Errors following the chunk
// chain end the iteration.
func (it *DirectoryIterator) Next() (*types.DirectoryEntry, error) {
	for !it.done {
		if it.index > 0 && it.format.IsChunkBoundary(it.index) {
			if err := it.advance(); err != nil {
				it.done = true
				return nil, err
			}
			if it.done {
				break
			}
		}

		index := it.index
		it.index++
		entry, err := it.format.DecodeEntry(it.chunk, index)
		if err != nil {
			it.count()
			return nil, err
		}
		if entry.IsDeleted() {
			continue
		}
		it.count()
		return entry, nil
	}
	return nil, nil
}

// Entries drains the iterator. Decode errors are collected and returned
// with the entries that did decode.
func (it *DirectoryIterator) Entries() ([]*types.DirectoryEntry, error) {
	var (
		entries []*types.DirectoryEntry
		errs    []error
	)
	for {
		entry, err := it.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if entry == nil {
			return entries, errors.Join(errs...)
		}
		entries = append(entries, entry)
	}
}

func (it *DirectoryIterator) count() {
	it.processed++
	if it.processed >= it.header.EntryCount {
		it.done = true
	}
}

func (it *DirectoryIterator) advance() error {
	next, err := it.format.NextChunk(it.chunk)
	if err != nil {
		return err
	}
	if next.IsZero() {
		it.done = true
		return nil
	}
	if _, seen := it.visited[next]; seen {
		return fmt.Errorf("%w: directory chain at %s loops back to %s", types.ErrMalformedEntry, it.header.Key, next)
	}
	it.visited[next] = struct{}{}
	it.chunk = next
	return nil
}
