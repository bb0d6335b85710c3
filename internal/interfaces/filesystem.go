// File: internal/interfaces/filesystem.go
package interfaces

import "github.com/deploymenttheory/go-a2fs/internal/types"

// FilesystemFormat is the set of operations that differ between ProDOS and
// DOS 3.3. One implementation is selected per image after detection and
// used uniformly by the directory walker and file resolution.
type FilesystemFormat interface {
	// Kind returns the filesystem this format decodes
	Kind() types.FsKind

	// RootDirectory returns the key block (ProDOS) or first catalog sector (DOS 3.3)
	RootDirectory() (types.BlockAddress, error)

	// ReadHeader decodes the directory header at a key block. parentCaseMask is
	// the case-fold word of the entry that pointed at the directory, or 0.
	ReadHeader(dir types.BlockAddress, parentCaseMask uint16) (*types.DirectoryHeader, error)

	// EntryOffset returns the absolute byte offset of entry index within the
	// directory whose current chunk is dir
	EntryOffset(dir types.BlockAddress, index int) (int, error)

	// IsChunkBoundary reports whether the entry index following a processed
	// entry lives in the next chunk of the directory
	IsChunkBoundary(next int) bool

	// NextChunk returns the continuation block or sector of a directory chunk.
	// A zero address terminates the chain.
	NextChunk(dir types.BlockAddress) (types.BlockAddress, error)

	// DecodeEntry decodes the entry at index within the directory chunk dir
	DecodeEntry(dir types.BlockAddress, index int) (*types.DirectoryEntry, error)

	// ResolveLength returns the byte length of an entry's data
	ResolveLength(entry *types.DirectoryEntry) (uint32, error)

	// Resolve materialises the content of a file entry
	Resolve(entry *types.DirectoryEntry) (*types.ResolvedFile, error)
}

// DirectoryWalker iterates the live entries of one directory in on-disk order
type DirectoryWalker interface {
	// Header returns the decoded directory header
	Header() *types.DirectoryHeader

	// Next returns the next live entry. It returns (nil, nil) when the
	// directory is exhausted.
	Next() (*types.DirectoryEntry, error)
}
