package services

import "github.com/deploymenttheory/go-a2fs/internal/types"

// VolumeReader provides read access to the files of a volume
type VolumeReader interface {
	Kind() types.FsKind
	VolumeName() string
	RootPath() string
	DisplayName(entry *types.DirectoryEntry) string
	Walk(fn WalkFunc) error
	WalkPath(path string, fn WalkFunc) error
	Lookup(path string) (entry *types.DirectoryEntry, found bool, missing string, err error)
	ResolveLength(entry *types.DirectoryEntry) (uint32, error)
	ReadFile(entry *types.DirectoryEntry) (*types.ResolvedFile, error)
}

// CatalogService lists and describes volumes
type CatalogService interface {
	Info() (*VolumeInfo, error)
	Catalog(path string) (*Catalog, error)
}

var (
	_ VolumeReader   = (*VolumeService)(nil)
	_ CatalogService = (*VolumeService)(nil)
)
