package types

// Apple II disk geometry
// Reference: Beneath Apple DOS, chapter 3; ProDOS 8 Technical Reference Manual, appendix B

const (
	// ProDOSBlockSize is the size of a ProDOS logical block.
	ProDOSBlockSize = 512

	// DOS33SectorSize is the size of a DOS 3.3 sector.
	DOS33SectorSize = 256

	// TracksPerDisk is the number of tracks on a 5.25" floppy.
	TracksPerDisk = 35

	// SectorsPerTrack is the number of 16-sector-format sectors per track.
	SectorsPerTrack = 16

	// TrackSize is the number of bytes in one track.
	TrackSize = SectorsPerTrack * DOS33SectorSize

	// FloppyImageSize is the size of a 140K 5.25" disk image (143,360 bytes).
	// Only images of exactly this size are probed for sector interleave.
	FloppyImageSize = TracksPerDisk * TrackSize
)

// ProDOS volume constants
const (
	// ProDOSVolumeDirectoryBlock is the key block of the volume directory.
	ProDOSVolumeDirectoryBlock = 2

	// ProDOSEntryLength is the size of a directory entry.
	ProDOSEntryLength = 0x27

	// ProDOSEntriesPerBlock includes the header entry of a key block.
	ProDOSEntriesPerBlock = 0x0D

	// ProDOSMaxNameLength is the longest ProDOS file name.
	ProDOSMaxNameLength = 15

	// ProDOSIndexPointers is the number of block pointers in an index block.
	// Each pointer is split: low byte at +n, high byte at +n+256.
	ProDOSIndexPointers = 256

	// ProDOSMaxSaplingLength is the largest file a single index block can address.
	ProDOSMaxSaplingLength = ProDOSIndexPointers * ProDOSBlockSize

	// ProDOSMaxTreeLength is the largest file a master index block can address.
	ProDOSMaxTreeLength = ProDOSIndexPointers * ProDOSMaxSaplingLength
)

// ProDOS directory header offsets, relative to the start of a directory block
const (
	ProDOSDirPrevPointerOffset = 0x00
	ProDOSDirNextPointerOffset = 0x02
	ProDOSDirHeaderOffset      = 0x04
	ProDOSDirHeaderNameOffset  = 0x05
	ProDOSDirVolumeCaseOffset  = 0x1A
	ProDOSDirCreatedOffset     = 0x1C
	ProDOSDirFileCountOffset   = 0x25

	// ProDOSFirstEntryOffset is where entry 0 starts in a key block, just
	// past the header entry.
	ProDOSFirstEntryOffset = ProDOSDirHeaderOffset + ProDOSEntryLength
)

// ProDOS directory entry field offsets, relative to the start of an entry
const (
	ProDOSEntryStorageNameOffset = 0x00
	ProDOSEntryNameOffset        = 0x01
	ProDOSEntryFileTypeOffset    = 0x10
	ProDOSEntryKeyPointerOffset  = 0x11
	ProDOSEntryBlocksUsedOffset  = 0x13
	ProDOSEntryEOFOffset         = 0x15
	ProDOSEntryCreatedOffset     = 0x18
	ProDOSEntryCaseMaskOffset    = 0x1C // shares the version/min_version bytes
	ProDOSEntryAccessOffset      = 0x1E
	ProDOSEntryAuxTypeOffset     = 0x1F
	ProDOSEntryModifiedOffset    = 0x21
	ProDOSEntryHeaderPtrOffset   = 0x25
)

// ProDOS extended (forked) key block layout
// Reference: ProDOS 8 Technical Note #25
const (
	ForkDataOffset        = 0x000
	ForkResourceOffset    = 0x100
	ForkStorageOffset     = 0x00
	ForkKeyPointerOffset  = 0x01
	ForkBlocksUsedOffset  = 0x03
	ForkEOFOffset         = 0x05
	ForkFinderInfoOffset  = 0x08
	ForkFinderEntryLength = 18
	FinderInfoLength      = 16
)

// DOS 3.3 VTOC and catalog constants
// Reference: Beneath Apple DOS, chapter 4
const (
	// DOS33VTOCTrack and DOS33VTOCSector locate the volume table of contents.
	DOS33VTOCTrack  = 17
	DOS33VTOCSector = 0

	// DOS33VTOCCatalogOffset holds the first catalog track/sector pair.
	DOS33VTOCCatalogOffset = 0x01

	// DOS33VTOCVersionOffset holds the DOS release that formatted the disk.
	DOS33VTOCVersionOffset = 0x03

	// DOS33VTOCVolumeOffset holds the volume number.
	DOS33VTOCVolumeOffset = 0x06

	// DOS33CatalogNextOffset holds the next catalog (or T/S list) sector pair.
	DOS33CatalogNextOffset = 0x01

	// DOS33CatalogFirstEntry is the offset of the first entry in a catalog sector.
	DOS33CatalogFirstEntry = 0x0B

	// DOS33EntryLength is the size of a catalog entry.
	DOS33EntryLength = 0x23

	// DOS33EntriesPerSector is the number of entries in a catalog sector.
	DOS33EntriesPerSector = 7

	// DOS33NameLength is the fixed, space padded file name length.
	DOS33NameLength = 30

	// DOS33DeletedMarker in the first byte of an entry marks a deleted file.
	DOS33DeletedMarker = 0xFF

	// DOS33TSListFirstPair is the offset of the first track/sector pair in a T/S list sector.
	DOS33TSListFirstPair = 0x0C

	// DOS33TSPairsPerList is the number of data pointers in one T/S list sector.
	DOS33TSPairsPerList = (DOS33SectorSize - DOS33TSListFirstPair) / 2
)

// DOS 3.3 catalog entry field offsets
const (
	DOS33EntryTrackOffset    = 0x00
	DOS33EntrySectorOffset   = 0x01
	DOS33EntryTypeOffset     = 0x02
	DOS33EntryNameOffset     = 0x03
	DOS33EntrySectorsOffset  = 0x21
	DOS33TypeLockedFlag      = 0x80
	DOS33TypeMask            = 0x7F
	DOS33NameHighBitMask     = 0x7F
	DOS33CatalogSectorsLimit = TracksPerDisk * SectorsPerTrack
)

// Volume detection signatures
const (
	// ProDOSMarker is searched for just past the boot loader in sector 1 (PO) or 14 (DO).
	ProDOSMarker = "PRODOS"

	// ProDOSMarkerOffset is the offset of the marker within its sector.
	ProDOSMarkerOffset = 3

	// DOS33VTOCVersion is the DOS release byte of a 3.3 VTOC.
	DOS33VTOCVersion = 3

	// DOS33InterleaveProbeSector and DOS33InterleaveProbeOffset locate the catalog
	// link byte that reads 13 in DOS order.
	DOS33InterleaveProbeSector = 14
	DOS33InterleaveProbeOffset = 2
	DOS33InterleaveProbeValue  = 13
)

// ProDOSBootSignature is the first four bytes of a ProDOS boot block.
var ProDOSBootSignature = [4]byte{0x01, 0x38, 0xB0, 0x03}
