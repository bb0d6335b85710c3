// Package export writes files read from a disk image to the host filesystem.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deploymenttheory/go-a2fs/internal/services"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// AppleDoubleDir is the directory netatalk keeps AppleDouble files in
const AppleDoubleDir = ".AppleDouble"

// Options controls how files are written to the host
type Options struct {
	// Dest is the host directory extracted files are written under
	Dest string
	// Mode selects how resource forks and file types are preserved
	Mode types.ForkMode
	// Now supplies the timestamp for files carrying no dates
	Now func() time.Time
}

// Failure records an entry that could not be extracted
type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Result lists what an extraction wrote
type Result struct {
	Root        string    `json:"root" yaml:"root"`
	Files       []string  `json:"files" yaml:"files"`
	Directories []string  `json:"directories,omitempty" yaml:"directories,omitempty"`
	Failures    []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Exporter extracts files from a volume
type Exporter struct {
	volume services.VolumeReader
	opts   Options
	log    logr.Logger
}

// NewExporter creates an exporter writing under opts.Dest
func NewExporter(volume services.VolumeReader, opts Options, log logr.Logger) (*Exporter, error) {
	if volume == nil {
		return nil, fmt.Errorf("volume cannot be nil")
	}
	if opts.Dest == "" {
		opts.Dest = "."
	}
	if opts.Mode == "" {
		opts.Mode = types.ForkModeNone
	}
	if _, err := types.ParseForkMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{volume: volume, opts: opts, log: log.WithName("export")}, nil
}

// Extract writes the file or directory at path. An empty path, or one
// naming the volume, extracts the whole volume into a directory named after
// it. A named file is written straight into the destination and a named
// directory is recreated there.
func (x *Exporter) Extract(path string) (*Result, error) {
	entry, found, missing, err := x.volume.Lookup(path)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", types.ErrPathSegmentNotFound, missing)
	}

	res := &Result{Root: x.opts.Dest}
	hostDirs := map[string]string{}
	taken := map[string]bool{}
	if entry == nil {
		res.Root = filepath.Join(x.opts.Dest, HostName(x.volume.VolumeName()))
		hostDirs[x.volume.RootPath()] = res.Root
	}
	if err := x.mkdir(res.Root); err != nil {
		return nil, err
	}

	err = x.volume.WalkPath(path, func(p string, entry *types.DirectoryEntry, err error) error {
		if err != nil {
			x.log.Info("skipping unreadable entry", "path", p, "error", err.Error())
			res.Failures = append(res.Failures, Failure{Path: p, Error: err.Error()})
			return nil
		}

		parent, ok := hostDirs[parentPath(p)]
		if !ok {
			parent = res.Root
		}
		name := claimName(taken, parent, HostName(x.volume.DisplayName(entry)))

		if entry.IsDirectory() {
			dir := filepath.Join(parent, name)
			if err := x.mkdir(dir); err != nil {
				return err
			}
			hostDirs[p] = dir
			res.Directories = append(res.Directories, dir)
			return nil
		}

		written, err := x.writeFile(parent, name, entry)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Path: p, Error: err.Error()})
			return nil
		}
		x.log.V(1).Info("extracted file", "path", p, "host", written)
		res.Files = append(res.Files, written)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (x *Exporter) mkdir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if x.opts.Mode == types.ForkModeAppleDouble {
		if err := os.MkdirAll(filepath.Join(dir, AppleDoubleDir), 0o755); err != nil {
			return fmt.Errorf("failed to create AppleDouble directory in %s: %w", dir, err)
		}
	}
	return nil
}

// writeFile writes the forks of entry into dir and returns the data fork path
func (x *Exporter) writeFile(dir, name string, entry *types.DirectoryEntry) (string, error) {
	file, err := x.volume.ReadFile(entry)
	if err != nil {
		return "", err
	}
	created, modified := x.fileTimes(entry)

	target := filepath.Join(dir, name)
	switch x.opts.Mode {
	case types.ForkModeExtended:
		target = filepath.Join(dir, ExtendedName(name, entry.FileType, entry.AuxType))
		if file.HasResourceFork() {
			if err := writeAtomic(target+"r", file.ResourceFork, modified); err != nil {
				return "", err
			}
		}
	case types.ForkModeAppleDouble:
		ad := BuildAppleDouble(AppleDoubleInfo{
			Created:  created,
			Modified: modified,
			FileType: entry.FileType,
			AuxType:  entry.AuxType,
			Access:   entry.Access,
			Finder:   file.FinderInfo,
			Resource: file.ResourceFork,
		})
		if err := writeAtomic(filepath.Join(dir, AppleDoubleDir, name), ad, modified); err != nil {
			return "", err
		}
	}

	if err := writeAtomic(target, file.DataFork, modified); err != nil {
		return "", err
	}
	return target, nil
}

// fileTimes fills in missing dates: a missing modification date falls back
// to the creation date, then to now, and a missing creation date to the
// modification date.
func (x *Exporter) fileTimes(entry *types.DirectoryEntry) (created, modified time.Time) {
	created, modified = entry.Created, entry.Modified
	if modified.IsZero() {
		modified = created
		if modified.IsZero() {
			modified = x.opts.Now()
		}
	}
	if created.IsZero() {
		created = modified
	}
	return created, modified
}

// writeAtomic stages data in a uniquely named file beside path and renames
// it into place with its modification time already set
func writeAtomic(path string, data []byte, modified time.Time) error {
	tmp := filepath.Join(filepath.Dir(path), ".a2fs-"+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chtimes(tmp, modified, modified); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to set times on %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}

// ExtendedName appends the ProDOS file type and aux type to name in the
// form name#ttaaaa.
func ExtendedName(name string, fileType uint8, auxType uint16) string {
	return fmt.Sprintf("%s#%02x%04x", name, fileType, auxType)
}

// HostName makes an Apple II name safe to use as a host file name
func HostName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}

// claimName returns name, or name with a _N suffix when a sibling in dir
// already maps to the same host name. Names are compared without regard to
// case so they stay distinct on case-insensitive hosts.
func claimName(taken map[string]bool, dir, name string) string {
	key := func(n string) string { return strings.ToLower(filepath.Join(dir, n)) }
	candidate := name
	for n := 2; taken[key(candidate)]; n++ {
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	taken[key(candidate)] = true
	return candidate
}

func parentPath(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}
