package services

import (
	"time"

	"github.com/deploymenttheory/go-a2fs/internal/parsers/detect"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/twoimg"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// CatalogEntry is one line of a volume catalog
type CatalogEntry struct {
	Path           string    `json:"path" yaml:"path"`
	Name           string    `json:"name" yaml:"name"`
	FileType       uint8     `json:"file_type" yaml:"file_type"`
	TypeMnemonic   string    `json:"type" yaml:"type"`
	AuxType        uint16    `json:"aux_type" yaml:"aux_type"`
	Length         uint32    `json:"length" yaml:"length"`
	ResourceLength uint32    `json:"resource_length,omitempty" yaml:"resource_length,omitempty"`
	BlocksUsed     uint16    `json:"blocks_used" yaml:"blocks_used"`
	Created        time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Modified       time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
	Directory      bool      `json:"directory" yaml:"directory"`
	Forked         bool      `json:"forked" yaml:"forked"`
	Locked         bool      `json:"locked" yaml:"locked"`
}

// CatalogError records an entry or directory that could not be read
type CatalogError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Catalog is the listing of a volume or part of one
type Catalog struct {
	Volume  string         `json:"volume" yaml:"volume"`
	Kind    types.FsKind   `json:"kind" yaml:"kind"`
	Entries []CatalogEntry `json:"entries" yaml:"entries"`
	Errors  []CatalogError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// VolumeInfo summarises an image and the volume on it
type VolumeInfo struct {
	Name         string           `json:"name" yaml:"name"`
	Kind         types.FsKind     `json:"kind" yaml:"kind"`
	Detection    detect.Detection `json:"detection" yaml:"detection"`
	Compression  string           `json:"compression,omitempty" yaml:"compression,omitempty"`
	Container    *twoimg.Header   `json:"container,omitempty" yaml:"container,omitempty"`
	ImageSize    int              `json:"image_size" yaml:"image_size"`
	TotalBlocks  int              `json:"total_blocks" yaml:"total_blocks"`
	Fingerprint  string           `json:"fingerprint" yaml:"fingerprint"`
	RootEntries  int              `json:"root_entries" yaml:"root_entries"`
	VolumeNumber *uint8           `json:"volume_number,omitempty" yaml:"volume_number,omitempty"`
	Created      time.Time        `json:"created,omitempty" yaml:"created,omitempty"`
}
