package testutil

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// DOS33Entry describes a catalog entry to write into a synthetic catalog sector.
type DOS33Entry struct {
	ListTrack  uint8
	ListSector uint8
	Type       uint8
	Locked     bool
	Deleted    bool
	Name       string
	Sectors    uint16
}

// DOS33Image is a DOS-order 140K image under construction. It carries a
// VTOC at T17 S0 and a catalog chain running from T17 S15 down to T17 S1.
type DOS33Image struct {
	Data []byte

	nextTrack  int
	nextSector int
}

// NewDOS33Image returns a formatted, empty DOS 3.3 image in DOS order.
func NewDOS33Image() *DOS33Image {
	d := &DOS33Image{Data: make([]byte, types.FloppyImageSize), nextTrack: 18}
	vtoc := d.Sector(types.DOS33VTOCTrack, types.DOS33VTOCSector)
	vtoc[types.DOS33VTOCCatalogOffset] = types.DOS33VTOCTrack
	vtoc[types.DOS33VTOCCatalogOffset+1] = 15
	vtoc[types.DOS33VTOCVersionOffset] = types.DOS33VTOCVersion
	vtoc[types.DOS33VTOCVolumeOffset] = 254
	vtoc[0x27] = types.DOS33TSPairsPerList
	vtoc[0x34] = types.TracksPerDisk
	vtoc[0x35] = types.SectorsPerTrack
	binary.LittleEndian.PutUint16(vtoc[0x36:], types.DOS33SectorSize)

	for s := 15; s >= 1; s-- {
		next := [2]byte{}
		if s > 1 {
			next = [2]byte{types.DOS33VTOCTrack, byte(s - 1)}
		}
		d.LinkSector(types.DOS33VTOCTrack, s, next)
	}
	return d
}

// Sector returns the writable bytes of a sector.
func (d *DOS33Image) Sector(track, sector int) []byte {
	off := addressing.TrackSectorOffset(track, sector)
	return d.Data[off : off+types.DOS33SectorSize]
}

// LinkSector sets the next-sector pair of a catalog or T/S list sector.
func (d *DOS33Image) LinkSector(track, sector int, next [2]byte) {
	sec := d.Sector(track, sector)
	sec[types.DOS33CatalogNextOffset] = next[0]
	sec[types.DOS33CatalogNextOffset+1] = next[1]
}

// CatalogSlot returns the track and sector of catalog entry index in the
// default chain, and the slot within that sector.
func CatalogSlot(index int) (track, sector, slot int) {
	return types.DOS33VTOCTrack, 15 - index/types.DOS33EntriesPerSector, index % types.DOS33EntriesPerSector
}

// WriteEntry writes e as catalog entry index.
func (d *DOS33Image) WriteEntry(index int, e DOS33Entry) {
	t, s, slot := CatalogSlot(index)
	ent := d.Sector(t, s)[types.DOS33CatalogFirstEntry+slot*types.DOS33EntryLength:]
	ent[types.DOS33EntryTrackOffset] = e.ListTrack
	if e.Deleted {
		ent[types.DOS33EntryTrackOffset] = types.DOS33DeletedMarker
	}
	ent[types.DOS33EntrySectorOffset] = e.ListSector
	ent[types.DOS33EntryTypeOffset] = e.Type
	if e.Locked {
		ent[types.DOS33EntryTypeOffset] |= types.DOS33TypeLockedFlag
	}
	name := ent[types.DOS33EntryNameOffset : types.DOS33EntryNameOffset+types.DOS33NameLength]
	for i := range name {
		c := byte(' ')
		if i < len(e.Name) {
			c = e.Name[i]
		}
		name[i] = c | 0x80
	}
	binary.LittleEndian.PutUint16(ent[types.DOS33EntrySectorsOffset:], e.Sectors)
}

// Allocate returns the next free sector, starting at track 18.
func (d *DOS33Image) Allocate() (uint8, uint8) {
	t, s := d.nextTrack, d.nextSector
	d.nextSector++
	if d.nextSector == types.SectorsPerTrack {
		d.nextSector = 0
		d.nextTrack++
	}
	return uint8(t), uint8(s)
}

// WriteTSList writes data pointers into a T/S list sector and links it.
func (d *DOS33Image) WriteTSList(track, sector uint8, next [2]byte, pairs [][2]byte) {
	sec := d.Sector(int(track), int(sector))
	d.LinkSector(int(track), int(sector), next)
	for i, p := range pairs {
		off := types.DOS33TSListFirstPair + 2*i
		sec[off] = p[0]
		sec[off+1] = p[1]
	}
}

// AddFile stores content in freshly allocated sectors, builds its T/S list
// chain and writes catalog entry index pointing at it.
func (d *DOS33Image) AddFile(index int, name string, dosType uint8, content []byte) {
	var pairs [][2]byte
	for off := 0; off < len(content); off += types.DOS33SectorSize {
		t, s := d.Allocate()
		end := min(off+types.DOS33SectorSize, len(content))
		copy(d.Sector(int(t), int(s)), content[off:end])
		pairs = append(pairs, [2]byte{t, s})
	}

	var lists [][2]byte
	for i := 0; i < len(pairs) || i == 0; i += types.DOS33TSPairsPerList {
		t, s := d.Allocate()
		lists = append(lists, [2]byte{t, s})
	}
	for i, l := range lists {
		next := [2]byte{}
		if i+1 < len(lists) {
			next = lists[i+1]
		}
		lo := i * types.DOS33TSPairsPerList
		hi := min(lo+types.DOS33TSPairsPerList, len(pairs))
		d.WriteTSList(l[0], l[1], next, pairs[lo:hi])
	}

	d.WriteEntry(index, DOS33Entry{
		ListTrack:  lists[0][0],
		ListSector: lists[0][1],
		Type:       dosType,
		Name:       name,
		Sectors:    uint16(len(pairs) + len(lists)),
	})
}

// BinaryFile prefixes data with the DOS 3.3 load address and length header.
func BinaryFile(address uint16, data []byte) []byte {
	out := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint16(out[0:], address)
	binary.LittleEndian.PutUint16(out[2:], uint16(len(data)))
	return append(out, data...)
}

// BasicFile prefixes a tokenised program with its length word.
func BasicFile(data []byte) []byte {
	out := make([]byte, 2, 2+len(data))
	binary.LittleEndian.PutUint16(out, uint16(len(data)))
	return append(out, data...)
}
