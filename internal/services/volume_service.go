package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-a2fs/internal/disk"
	"github.com/deploymenttheory/go-a2fs/internal/interfaces"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/dos33"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/prodos"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
)

// ErrSkipDir is returned by a WalkFunc to skip the directory it was called with.
var ErrSkipDir = errors.New("skip this directory")

// WalkFunc is called for every live entry found by Walk. path is the full
// path of the entry. When an entry or directory cannot be read, err is set
// and entry may be nil. Returning ErrSkipDir for a directory skips its
// contents; any other error aborts the walk.
type WalkFunc func(path string, entry *types.DirectoryEntry, err error) error

// VolumeService reads the filesystem of one loaded disk image
type VolumeService struct {
	image  *disk.Image
	config *disk.Config
	format interfaces.FilesystemFormat
	root   types.BlockAddress
	header *types.DirectoryHeader
	cache  *fileCache
	log    logr.Logger
}

// OpenVolume selects the filesystem format for img and reads its root directory
func OpenVolume(img *disk.Image, config *disk.Config, log logr.Logger) (*VolumeService, error) {
	if img == nil || img.Device == nil {
		return nil, fmt.Errorf("disk image cannot be nil")
	}
	if config == nil {
		config = disk.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var format interfaces.FilesystemFormat
	switch img.Kind() {
	case types.FsKindProDOS:
		format = prodos.NewFormat(img.Device, prodos.Options{CasefoldUpper: config.CasefoldUpper})
	case types.FsKindDOS33:
		format = dos33.NewFormat(img.Device)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownFormat, img.Kind())
	}

	root, err := format.RootDirectory()
	if err != nil {
		return nil, err
	}
	header, err := format.ReadHeader(root, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read root directory: %w", err)
	}

	v := &VolumeService{
		image:  img,
		config: config,
		format: format,
		root:   root,
		header: header,
		cache:  newFileCache(config.CacheSize, img.Device.Fingerprint()),
		log:    log.WithName("volume"),
	}
	v.log.V(1).Info("opened volume", "kind", format.Kind().String(), "name", v.VolumeName(), "root", root.String(), "entries", header.EntryCount)
	return v, nil
}

// Format returns the filesystem format in use
func (v *VolumeService) Format() interfaces.FilesystemFormat {
	return v.format
}

// Kind returns the filesystem kind of the volume
func (v *VolumeService) Kind() types.FsKind {
	return v.format.Kind()
}

// RootHeader returns the root directory header
func (v *VolumeService) RootHeader() *types.DirectoryHeader {
	return v.header
}

// VolumeName returns the ProDOS volume name. DOS 3.3 volumes have none, so
// the image file name stands in for it.
func (v *VolumeService) VolumeName() string {
	if v.format.Kind() == types.FsKindDOS33 {
		if v.config.ProDOSNames {
			return ToProDOSName(v.image.Name)
		}
		return v.image.Name
	}
	return v.header.NameString()
}

// DisplayName returns the name an entry is listed and extracted under
func (v *VolumeService) DisplayName(entry *types.DirectoryEntry) string {
	if v.config.ProDOSNames && v.format.Kind() == types.FsKindDOS33 {
		return ToProDOSName(entry.NameString())
	}
	return entry.NameString()
}

// Walk visits every entry of the volume depth first, in directory order
func (v *VolumeService) Walk(fn WalkFunc) error {
	return v.walkDir(v.RootPath(), v.root, 0, 0, map[types.BlockAddress]struct{}{}, fn)
}

// WalkPath walks the file or directory at path. An empty path, or one naming
// only the volume, walks the whole volume.
func (v *VolumeService) WalkPath(path string, fn WalkFunc) error {
	res, err := v.lookup(path)
	if err != nil {
		return err
	}
	if !res.found {
		return fmt.Errorf("%w: %s", types.ErrPathSegmentNotFound, res.missing)
	}
	if res.entry == nil {
		return v.Walk(fn)
	}

	if err := fn(res.path, res.entry, nil); err != nil {
		if errors.Is(err, ErrSkipDir) {
			return nil
		}
		return err
	}
	if !res.entry.IsDirectory() {
		return nil
	}
	return v.walkDir(res.path, res.entry.KeyPointer, res.entry.CaseMask, res.depth, map[types.BlockAddress]struct{}{}, fn)
}

// Lookup finds the entry at path. ProDOS paths start with '/' or ':' and
// name the volume first; DOS 3.3 paths are a single file name. Matching
// ignores case. A path naming only the volume returns a nil entry. When a
// segment does not exist, found is false and missing holds that segment.
func (v *VolumeService) Lookup(path string) (entry *types.DirectoryEntry, found bool, missing string, err error) {
	res, err := v.lookup(path)
	if err != nil {
		return nil, false, "", err
	}
	return res.entry, res.found, res.missing, nil
}

// ResolveLength returns the data length of an entry
func (v *VolumeService) ResolveLength(entry *types.DirectoryEntry) (uint32, error) {
	return v.format.ResolveLength(entry)
}

// CacheStats returns how many ReadFile calls were served from the resolved
// file cache and how many had to resolve the file.
func (v *VolumeService) CacheStats() (hits, misses int64) {
	return v.cache.stats()
}

// ReadFile returns the forks of a file entry. In ProDOS-names mode the load
// address and length header DOS 3.3 keeps in binary and BASIC files is
// removed from the data.
func (v *VolumeService) ReadFile(entry *types.DirectoryEntry) (*types.ResolvedFile, error) {
	if entry == nil {
		return nil, fmt.Errorf("entry cannot be nil")
	}
	if entry.IsDirectory() {
		return nil, fmt.Errorf("%w: %s is a directory", types.ErrMalformedEntry, entry.NameString())
	}

	file, ok := v.cache.get(entry.Offset)
	if !ok {
		var err error
		file, err = v.format.Resolve(entry)
		if err != nil {
			return nil, err
		}
		v.cache.add(entry.Offset, file)
	} else {
		v.log.V(2).Info("file cache hit", "name", entry.NameString())
	}

	if v.config.ProDOSNames && v.format.Kind() == types.FsKindDOS33 {
		out := *file
		out.DataFork = stripDOS33Header(entry.FileType, file.DataFork)
		return &out, nil
	}
	return file, nil
}

// ResourceLength returns the resource fork length of an extended ProDOS file
func (v *VolumeService) ResourceLength(entry *types.DirectoryEntry) (uint32, error) {
	pf, ok := v.format.(*prodos.Format)
	if !ok || !entry.IsForked() {
		return 0, nil
	}
	kb, err := pf.ReadKeyBlock(entry)
	if err != nil {
		return 0, err
	}
	return kb.Resource.Length, nil
}

// RootPath is the path Walk reports the root directory under: "/VOLUME" for
// ProDOS and empty for DOS 3.3
func (v *VolumeService) RootPath() string {
	if v.format.Kind() == types.FsKindProDOS {
		return "/" + v.VolumeName()
	}
	return ""
}

func (v *VolumeService) walkDir(path string, dir types.BlockAddress, caseMask uint16, depth int, visited map[types.BlockAddress]struct{}, fn WalkFunc) error {
	if depth > v.config.MaxDepth {
		return fn(path, nil, fmt.Errorf("%w: %s is nested deeper than %d directories", types.ErrMalformedEntry, path, v.config.MaxDepth))
	}
	if _, seen := visited[dir]; seen {
		return fn(path, nil, fmt.Errorf("%w: directory %s at %s was already visited", types.ErrMalformedEntry, path, dir))
	}
	visited[dir] = struct{}{}

	it, err := NewDirectoryIterator(v.format, dir, caseMask)
	if err != nil {
		return fn(path, nil, err)
	}
	v.log.V(1).Info("walking directory", "path", path, "key", dir.String(), "entries", it.Header().EntryCount)

	for {
		entry, err := it.Next()
		if err != nil {
			if err := fn(path, nil, err); err != nil {
				return err
			}
			continue
		}
		if entry == nil {
			return nil
		}

		child := joinPath(path, v.DisplayName(entry))
		if err := fn(child, entry, nil); err != nil {
			if errors.Is(err, ErrSkipDir) {
				continue
			}
			return err
		}
		if entry.IsDirectory() {
			if err := v.walkDir(child, entry.KeyPointer, entry.CaseMask, depth+1, visited, fn); err != nil {
				return err
			}
		}
	}
}

type lookupResult struct {
	entry   *types.DirectoryEntry
	path    string
	depth   int
	found   bool
	missing string
}

func (v *VolumeService) lookup(path string) (*lookupResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return &lookupResult{path: v.RootPath(), found: true}, nil
	}

	if v.format.Kind() == types.FsKindDOS33 {
		name := strings.TrimLeft(path, "/:")
		if name == "" {
			return &lookupResult{found: true}, nil
		}
		entry, err := v.findEntry(v.root, 0, name)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return &lookupResult{missing: name}, nil
		}
		return &lookupResult{entry: entry, path: v.DisplayName(entry), found: true}, nil
	}

	sep := path[0]
	if sep != '/' && sep != ':' {
		return nil, fmt.Errorf("%w: ProDOS path %q must start with / or :", types.ErrPathSegmentNotFound, path)
	}
	var segments []string
	for _, s := range strings.Split(path, string(sep)) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return &lookupResult{path: v.RootPath(), found: true}, nil
	}
	if !strings.EqualFold(segments[0], v.VolumeName()) {
		return &lookupResult{missing: segments[0]}, nil
	}

	res := &lookupResult{path: v.RootPath(), found: true}
	dir, mask := v.root, uint16(0)
	for i, seg := range segments[1:] {
		if res.entry != nil && !res.entry.IsDirectory() {
			return &lookupResult{missing: seg}, nil
		}
		entry, err := v.findEntry(dir, mask, seg)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return &lookupResult{missing: seg}, nil
		}
		res.entry = entry
		res.path = joinPath(res.path, v.DisplayName(entry))
		res.depth = i + 1
		dir, mask = entry.KeyPointer, entry.CaseMask
	}
	return res, nil
}

func (v *VolumeService) findEntry(dir types.BlockAddress, caseMask uint16, name string) (*types.DirectoryEntry, error) {
	it, err := NewDirectoryIterator(v.format, dir, caseMask)
	if err != nil {
		return nil, err
	}
	for {
		entry, err := it.Next()
		if err != nil {
			v.log.V(1).Info("skipping unreadable entry", "dir", dir.String(), "error", err.Error())
			continue
		}
		if entry == nil {
			return nil, nil
		}
		if strings.EqualFold(entry.NameString(), name) || strings.EqualFold(v.DisplayName(entry), name) {
			return entry, nil
		}
	}
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// ToProDOSName adapts a DOS 3.3 name to ProDOS rules: no leading '.',
// letters, digits and '.' only, at most 15 characters.
func ToProDOSName(name string) string {
	name = strings.TrimPrefix(name, ".")
	out := []byte(name)
	for i, c := range out {
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '.') {
			out[i] = '.'
		}
	}
	if len(out) > types.ProDOSMaxNameLength {
		out = out[:types.ProDOSMaxNameLength]
	}
	return string(out)
}

// dos33HeaderSize is the length of the address and length prefix DOS 3.3
// stores in front of binary and BASIC file data
func dos33HeaderSize(fileType uint8) uint32 {
	switch fileType {
	case types.FileTypeBinary:
		return 4
	case types.FileTypeInteger, types.FileTypeApplesoft:
		return 2
	}
	return 0
}

func stripDOS33Header(fileType uint8, data []byte) []byte {
	n := min(int(dos33HeaderSize(fileType)), len(data))
	return data[n:]
}
