// Package testutil builds synthetic disk images for tests.
package testutil

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-a2fs/internal/types"
)

// ProDOSEntry describes a file entry to write into a synthetic directory.
type ProDOSEntry struct {
	Storage       types.StorageType
	Name          string
	FileType      uint8
	Key           uint16
	BlocksUsed    uint16
	EOF           uint32
	Created       [4]byte
	CaseMask      uint16
	Access        uint8
	AuxType       uint16
	Modified      [4]byte
	HeaderPointer uint16
}

// ForkEntry describes one fork mini-entry of an extended key block.
type ForkEntry struct {
	Storage    types.StorageType
	Key        uint16
	BlocksUsed uint16
	EOF        uint32
}

// ProDOSImage is a ProDOS-order image under construction.
type ProDOSImage struct {
	Data []byte
}

// NewProDOSImage returns a zeroed image of the given number of blocks.
func NewProDOSImage(blocks int) *ProDOSImage {
	return &ProDOSImage{Data: make([]byte, blocks*types.ProDOSBlockSize)}
}

// NewProDOSVolume returns a 140K ProDOS-order image with a boot block,
// the PRODOS marker and an empty four block volume directory named name.
func NewProDOSVolume(name string) *ProDOSImage {
	img := NewProDOSImage(types.FloppyImageSize / types.ProDOSBlockSize)
	copy(img.Data, types.ProDOSBootSignature[:])
	copy(img.Data[types.DOS33SectorSize+types.ProDOSMarkerOffset:], types.ProDOSMarker)

	img.WriteDirectoryHeader(2, types.StorageVolumeHeader, name, 0)
	for b := uint16(2); b <= 5; b++ {
		prev := b - 1
		if b == 2 {
			prev = 0
		}
		next := b + 1
		if b == 5 {
			next = 0
		}
		img.LinkBlock(b, prev, next)
	}
	return img
}

// Block returns the writable bytes of block n.
func (p *ProDOSImage) Block(n int) []byte {
	off := n * types.ProDOSBlockSize
	return p.Data[off : off+types.ProDOSBlockSize]
}

// Fill fills block n with pattern(i) for each byte offset i.
func (p *ProDOSImage) Fill(n int, pattern func(i int) byte) {
	blk := p.Block(n)
	for i := range blk {
		blk[i] = pattern(i)
	}
}

// LinkBlock sets the previous and next pointers of a directory block.
func (p *ProDOSImage) LinkBlock(block, prev, next uint16) {
	blk := p.Block(int(block))
	binary.LittleEndian.PutUint16(blk[0:], prev)
	binary.LittleEndian.PutUint16(blk[2:], next)
}

// WriteDirectoryHeader writes a volume or subdirectory header into block.
func (p *ProDOSImage) WriteDirectoryHeader(block uint16, storage types.StorageType, name string, fileCount uint16) {
	blk := p.Block(int(block))
	blk[4] = byte(storage)<<4 | byte(len(name))
	copy(blk[5:5+15], name)
	blk[0x23] = types.ProDOSEntryLength
	blk[0x24] = types.ProDOSEntriesPerBlock
	binary.LittleEndian.PutUint16(blk[types.ProDOSDirFileCountOffset:], fileCount)
}

// SetFileCount rewrites the file count of a directory header.
func (p *ProDOSImage) SetFileCount(block uint16, fileCount uint16) {
	binary.LittleEndian.PutUint16(p.Block(int(block))[types.ProDOSDirFileCountOffset:], fileCount)
}

// SetVolumeCaseMask writes the GS/OS case-fold word of a volume header.
func (p *ProDOSImage) SetVolumeCaseMask(block uint16, mask uint16) {
	binary.LittleEndian.PutUint16(p.Block(int(block))[types.ProDOSDirVolumeCaseOffset:], mask)
}

// EntryOffset returns the absolute offset of entry index within the chunk at block.
func EntryOffset(block, index int) int {
	skip := 0
	first := 43
	if index > 11 {
		skip = 1
		first = 4
	}
	return block*types.ProDOSBlockSize + types.ProDOSEntryLength*((index+skip)%types.ProDOSEntriesPerBlock) + first
}

// WriteEntry writes e as entry index of the directory chunk at block.
func (p *ProDOSImage) WriteEntry(block, index int, e ProDOSEntry) {
	ent := p.Data[EntryOffset(block, index):]
	ent[0] = byte(e.Storage)<<4 | byte(len(e.Name))
	copy(ent[1:16], e.Name)
	ent[types.ProDOSEntryFileTypeOffset] = e.FileType
	binary.LittleEndian.PutUint16(ent[types.ProDOSEntryKeyPointerOffset:], e.Key)
	binary.LittleEndian.PutUint16(ent[types.ProDOSEntryBlocksUsedOffset:], e.BlocksUsed)
	putUint24(ent[types.ProDOSEntryEOFOffset:], e.EOF)
	copy(ent[types.ProDOSEntryCreatedOffset:], e.Created[:])
	binary.LittleEndian.PutUint16(ent[types.ProDOSEntryCaseMaskOffset:], e.CaseMask)
	ent[types.ProDOSEntryAccessOffset] = e.Access
	binary.LittleEndian.PutUint16(ent[types.ProDOSEntryAuxTypeOffset:], e.AuxType)
	copy(ent[types.ProDOSEntryModifiedOffset:], e.Modified[:])
	binary.LittleEndian.PutUint16(ent[types.ProDOSEntryHeaderPtrOffset:], e.HeaderPointer)
}

// WriteIndexBlock writes block pointers into an index block, low bytes in
// the first half and high bytes in the second.
func (p *ProDOSImage) WriteIndexBlock(block int, pointers []uint16) {
	blk := p.Block(block)
	for i, ptr := range pointers {
		blk[i] = byte(ptr)
		blk[i+types.ProDOSIndexPointers] = byte(ptr >> 8)
	}
}

// WriteForkKeyBlock writes an extended key block with the given forks.
// finfo and fxinfo are written as Finder info entries when non-nil.
func (p *ProDOSImage) WriteForkKeyBlock(block int, data, rsrc ForkEntry, finfo, fxinfo []byte) {
	blk := p.Block(block)
	writeFork := func(off int, f ForkEntry) {
		blk[off] = byte(f.Storage)
		binary.LittleEndian.PutUint16(blk[off+1:], f.Key)
		binary.LittleEndian.PutUint16(blk[off+3:], f.BlocksUsed)
		putUint24(blk[off+5:], f.EOF)
	}
	writeFork(types.ForkDataOffset, data)
	writeFork(types.ForkResourceOffset, rsrc)

	off := types.ForkFinderInfoOffset
	for i, info := range [][]byte{finfo, fxinfo} {
		if info == nil {
			continue
		}
		blk[off] = types.ForkFinderEntryLength
		blk[off+1] = byte(i + 1)
		copy(blk[off+2:off+2+types.FinderInfoLength], info)
		off += types.ForkFinderEntryLength
	}
}

// ProDOSDate encodes a date and time in the ProDOS on-disk layout.
func ProDOSDate(year, month, day, hour, minute int) [4]byte {
	y := year % 100
	return [4]byte{
		byte(month&0x07)<<5 | byte(day&0x1F),
		byte(y)<<1 | byte(month>>3)&0x01,
		byte(minute & 0x3F),
		byte(hour & 0x1F),
	}
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
