package services

import (
	"fmt"

	"github.com/deploymenttheory/go-a2fs/internal/parsers/dos33"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// Info describes the image and its volume
func (v *VolumeService) Info() (*VolumeInfo, error) {
	info := &VolumeInfo{
		Name:        v.VolumeName(),
		Kind:        v.Kind(),
		Detection:   v.image.Detection,
		Compression: string(v.image.Compression),
		Container:   v.image.Container,
		ImageSize:   v.image.Device.Len(),
		TotalBlocks: v.image.Device.TotalBlocks(),
		Fingerprint: fmt.Sprintf("%016x", v.image.Device.Fingerprint()),
		RootEntries: v.header.EntryCount,
		Created:     v.header.Created,
	}
	if df, ok := v.format.(*dos33.Format); ok {
		n, err := df.VolumeNumber()
		if err != nil {
			return nil, err
		}
		info.VolumeNumber = &n
	}
	return info, nil
}

// Catalog lists the entries under path, recursively. Entries that cannot
// be read are recorded in Errors and the listing carries on.
func (v *VolumeService) Catalog(path string) (*Catalog, error) {
	cat := &Catalog{Volume: v.VolumeName(), Kind: v.Kind()}
	err := v.WalkPath(path, func(p string, entry *types.DirectoryEntry, err error) error {
		if err != nil {
			cat.Errors = append(cat.Errors, CatalogError{Path: p, Error: err.Error()})
			return nil
		}
		ce, err := v.catalogEntry(p, entry)
		if err != nil {
			cat.Errors = append(cat.Errors, CatalogError{Path: p, Error: err.Error()})
			return nil
		}
		cat.Entries = append(cat.Entries, *ce)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (v *VolumeService) catalogEntry(path string, entry *types.DirectoryEntry) (*CatalogEntry, error) {
	ce := &CatalogEntry{
		Path:         path,
		Name:         v.DisplayName(entry),
		FileType:     entry.FileType,
		TypeMnemonic: types.FileTypeMnemonic(entry.FileType),
		AuxType:      entry.AuxType,
		BlocksUsed:   entry.BlocksUsed,
		Created:      entry.Created,
		Modified:     entry.Modified,
		Directory:    entry.IsDirectory(),
		Forked:       entry.IsForked(),
		Locked:       entry.Locked,
	}
	if ce.Directory {
		return ce, nil
	}

	length, err := v.format.ResolveLength(entry)
	if err != nil {
		return nil, err
	}
	ce.Length = length
	if v.config.ProDOSNames && v.Kind() == types.FsKindDOS33 {
		ce.Length -= min(length, dos33HeaderSize(entry.FileType))
	}
	if ce.Forked {
		if ce.ResourceLength, err = v.ResourceLength(entry); err != nil {
			return nil, err
		}
	}
	return ce, nil
}
