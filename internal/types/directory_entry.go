package types

import (
	"strings"
	"time"
)

// CaseMaskPresent is set in a GS/OS case-fold word when the low 15 bits are valid.
// Bit 14 corresponds to the first character of the name, bit 0 to the fifteenth.
const CaseMaskPresent = 0x8000

// ProDOS access bits.
const (
	AccessDestroy   = 0x80
	AccessRename    = 0x40
	AccessBackup    = 0x20
	AccessInvisible = 0x04
	AccessWrite     = 0x02
	AccessRead      = 0x01
)

// DirectoryEntry is one decoded file entry of a ProDOS directory or DOS 3.3 catalog.
type DirectoryEntry struct {
	// Name is the raw name, with the case-fold mask applied unless suppressed.
	Name []byte

	StorageType StorageType

	// FileType and AuxType are ProDOS codes. DOS 3.3 entries carry inferred equivalents.
	FileType uint8
	AuxType  uint16

	KeyPointer BlockAddress

	// Length is the EOF. For DOS 3.3 files it is derived from the file data.
	Length     uint32
	BlocksUsed uint16

	// Created and Modified are zero when the entry carries no valid date.
	Created  time.Time
	Modified time.Time

	// CaseMask is the raw GS/OS case-fold word; see CaseMaskPresent.
	CaseMask uint16

	Access        uint8
	Locked        bool
	HeaderPointer uint16

	// DOS33Type is the raw DOS 3.3 type byte with the lock bit stripped.
	DOS33Type uint8

	// Directory, Index and Offset locate the entry on the image.
	Directory BlockAddress
	Index     int
	Offset    int
}

// HasCaseMask reports whether the entry carries a GS/OS case-fold mask.
func (e *DirectoryEntry) HasCaseMask() bool {
	return e.CaseMask&CaseMaskPresent != 0
}

// IsDirectory reports whether the entry is a subdirectory.
func (e *DirectoryEntry) IsDirectory() bool {
	return e.StorageType == StorageDirectory
}

// IsForked reports whether the entry has a resource fork.
func (e *DirectoryEntry) IsForked() bool {
	return e.StorageType == StorageExtended
}

// IsDeleted reports whether the entry is inactive.
func (e *DirectoryEntry) IsDeleted() bool {
	return e.StorageType == StorageDeleted
}

// NameString decodes the name as Latin-1.
func (e *DirectoryEntry) NameString() string {
	return Latin1(e.Name)
}

// Storage returns the tagged storage layout of the entry.
func (e *DirectoryEntry) Storage() (Storage, error) {
	return NewStorage(e.StorageType, e.KeyPointer, e.Length)
}

// DirectoryHeader is the header entry in the key block of a ProDOS directory,
// or the summary of a DOS 3.3 catalog.
type DirectoryHeader struct {
	Name        []byte
	StorageType StorageType
	Key         BlockAddress
	EntryCount  int
	CaseMask    uint16
	Created     time.Time
}

// NameString decodes the header name as Latin-1.
func (h *DirectoryHeader) NameString() string {
	return Latin1(h.Name)
}

// FinderInfo holds the raw Finder information stored in an extended key block.
// Either half may be nil when the key block does not carry it.
type FinderInfo struct {
	// FInfo is the 16-byte FInfo record: type, creator, flags, location, folder.
	FInfo []byte
	// FXInfo is the 16-byte FXInfo record.
	FXInfo []byte
}

// ResolvedFile is the materialised content of one file entry.
type ResolvedFile struct {
	DataFork []byte
	// ResourceFork is nil for files without one.
	ResourceFork []byte
	FinderInfo   *FinderInfo
}

// HasResourceFork reports whether the file came from an extended entry.
func (r *ResolvedFile) HasResourceFork() bool {
	return r.ResourceFork != nil
}

// Latin1 decodes bytes one rune per byte.
func Latin1(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}
