package export

import (
	"encoding/binary"
	"time"

	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// AppleDouble version 2 header layout as netatalk writes it for ProDOS files
const (
	AppleDoubleMagic      uint32 = 0x00051607
	AppleDoubleVersion    uint32 = 0x00020000
	AppleDoubleHeaderSize        = 741

	appleDoubleEntryCount = 13
	appleDoubleTableStart = 0x1A
)

// AppleDouble entry IDs
const (
	ADResourceFork = 2
	ADRealName     = 3
	ADComment      = 4
	ADDates        = 8
	ADFinderInfo   = 9
	ADProDOSInfo   = 11
	ADShortName    = 13
	ADAFPInfo      = 14
	ADDirectoryID  = 15
)

type adEntry struct {
	id     uint32
	offset uint32
	length uint32
}

// The remaining four of the thirteen descriptor slots are left zero.
var adEntries = []adEntry{
	{ADResourceFork, AppleDoubleHeaderSize, 0},
	{ADRealName, 0xB6, 0},
	{ADComment, 0x1B5, 0},
	{ADDates, 0x27D, 16},
	{ADFinderInfo, 0x28D, 32},
	{ADProDOSInfo, 0x2C1, 8},
	{ADShortName, 0x2B5, 0},
	{ADAFPInfo, 0x2B1, 4},
	{ADDirectoryID, 0x2AD, 4},
}

// appleEpoch is the AppleDouble date origin
var appleEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// unknownDate marks backup and access dates that were never recorded
const unknownDate uint32 = 0x80000000

// AppleDoubleInfo is the metadata carried alongside a file's data fork
type AppleDoubleInfo struct {
	Created  time.Time
	Modified time.Time
	FileType uint8
	AuxType  uint16
	Access   uint8
	Finder   *types.FinderInfo
	Resource []byte
}

// BuildAppleDouble returns the AppleDouble file for info. Finder type is
// 'p' followed by the ProDOS file type and aux type, creator is 'pdos'.
// Raw Finder info from an extended file fills the remainder of the Finder
// info entry.
func BuildAppleDouble(info AppleDoubleInfo) []byte {
	out := make([]byte, AppleDoubleHeaderSize+len(info.Resource))
	be := binary.BigEndian

	be.PutUint32(out[0:], AppleDoubleMagic)
	be.PutUint32(out[4:], AppleDoubleVersion)
	be.PutUint16(out[0x18:], appleDoubleEntryCount)
	for i, e := range adEntries {
		d := out[appleDoubleTableStart+12*i:]
		be.PutUint32(d[0:], e.id)
		be.PutUint32(d[4:], e.offset)
		be.PutUint32(d[8:], e.length)
	}
	// resource fork descriptor length
	be.PutUint32(out[appleDoubleTableStart+8:], uint32(len(info.Resource)))

	dates := out[0x27D:]
	be.PutUint32(dates[0:], AppleDoubleDate(info.Created))
	be.PutUint32(dates[4:], AppleDoubleDate(info.Modified))
	be.PutUint32(dates[8:], unknownDate)
	be.PutUint32(dates[12:], unknownDate)

	finder := out[0x28D : 0x28D+32]
	finder[0] = 'p'
	finder[1] = info.FileType
	be.PutUint16(finder[2:], info.AuxType)
	copy(finder[4:8], "pdos")
	if info.Finder != nil {
		if len(info.Finder.FInfo) >= 16 {
			copy(finder[8:16], info.Finder.FInfo[8:16])
		}
		copy(finder[16:32], info.Finder.FXInfo)
	}

	prodos := out[0x2C1:]
	be.PutUint16(prodos[0:], uint16(info.Access))
	be.PutUint16(prodos[2:], uint16(info.FileType))
	be.PutUint32(prodos[4:], uint32(info.AuxType))

	copy(out[AppleDoubleHeaderSize:], info.Resource)
	return out
}

// AppleDoubleDate converts t to seconds since 2000-01-01 UTC. Earlier dates
// wrap, as signed values stored in four bytes.
func AppleDoubleDate(t time.Time) uint32 {
	return uint32(t.Unix() - appleEpoch.Unix())
}
