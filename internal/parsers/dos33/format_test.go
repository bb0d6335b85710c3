package dos33

import (
	"bytes"
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/device"
	"github.com/deploymenttheory/go-a2fs/internal/testutil"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	binData  = []byte{0xA9, 0xC1, 0x20, 0xED, 0xFD, 0x60}
	basData  = []byte{0x0B, 0x08, 0x0A, 0x00, 0xBA, 0x22, 0x48, 0x49, 0x22, 0x00, 0x00, 0x00}
	textData = []byte("HELLO\rWORLD\r")
)

func buildDisk(t *testing.T) *testutil.DOS33Image {
	t.Helper()
	d := testutil.NewDOS33Image()
	d.AddFile(0, "HELLO", types.DOS33TypeApplesoft, testutil.BasicFile(basData))
	d.AddFile(1, "GAME", types.DOS33TypeBinary, testutil.BinaryFile(0x0803, binData))
	d.AddFile(2, "OLD", types.DOS33TypeText, []byte("gone"))
	d.Sector(17, 15)[types.DOS33CatalogFirstEntry+2*types.DOS33EntryLength] = types.DOS33DeletedMarker
	d.AddFile(3, "NOTES", types.DOS33TypeText|types.DOS33TypeLockedFlag, textData)
	d.AddFile(4, "INT.PROG", types.DOS33TypeInteger, testutil.BasicFile([]byte{1, 2, 3}))
	d.AddFile(5, "REL", types.DOS33TypeRelocatable, []byte{9, 9})
	d.AddFile(6, "A", types.DOS33TypeBinary, testutil.BinaryFile(0x2000, []byte{1}))
	d.AddFile(7, "NEXT.SECTOR", types.DOS33TypeText, []byte("second catalog sector"))
	return d
}

func newFormat(d *testutil.DOS33Image) *Format {
	return NewFormat(device.NewImageDevice(d.Data, types.FsKindDOS33))
}

func TestRootDirectory(t *testing.T) {
	f := newFormat(buildDisk(t))
	root, err := f.RootDirectory()
	require.NoError(t, err)
	assert.Equal(t, types.TrackSector(17, 15), root)
	assert.Equal(t, types.FsKindDOS33, f.Kind())

	vol, err := f.VolumeNumber()
	require.NoError(t, err)
	assert.Equal(t, uint8(254), vol)

	bad := testutil.NewDOS33Image()
	bad.Sector(17, 0)[types.DOS33VTOCCatalogOffset+1] = 0x10
	_, err = newFormat(bad).RootDirectory()
	assert.ErrorIs(t, err, types.ErrUnknownFormat)
}

func TestCountEntries(t *testing.T) {
	t.Run("skips deleted and stops at unused", func(t *testing.T) {
		f := newFormat(buildDisk(t))
		hdr, err := f.ReadHeader(types.TrackSector(17, 15), 0)
		require.NoError(t, err)
		assert.Equal(t, 7, hdr.EntryCount)
	})

	t.Run("empty catalog", func(t *testing.T) {
		n, err := newFormat(testutil.NewDOS33Image()).CountEntries(types.TrackSector(17, 15))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("full chain without terminator", func(t *testing.T) {
		d := testutil.NewDOS33Image()
		for i := 0; i < 15*types.DOS33EntriesPerSector; i++ {
			d.WriteEntry(i, testutil.DOS33Entry{ListTrack: 20, ListSector: 0, Name: "F"})
		}
		n, err := newFormat(d).CountEntries(types.TrackSector(17, 15))
		require.NoError(t, err)
		assert.Equal(t, 105, n)
	})

	t.Run("looping chain", func(t *testing.T) {
		d := testutil.NewDOS33Image()
		d.WriteEntry(0, testutil.DOS33Entry{ListTrack: 20, Name: "F"})
		for i := 1; i < types.DOS33EntriesPerSector; i++ {
			d.WriteEntry(i, testutil.DOS33Entry{ListTrack: 20, Name: "F"})
		}
		d.LinkSector(17, 15, [2]byte{17, 15})
		_, err := newFormat(d).CountEntries(types.TrackSector(17, 15))
		assert.ErrorIs(t, err, types.ErrMalformedEntry)
	})
}

func TestEntryOffsetAndChunks(t *testing.T) {
	f := newFormat(testutil.NewDOS33Image())
	for idx, want := range map[int]int{0: 11, 1: 46, 6: 221, 7: 11, 13: 221} {
		off, err := f.EntryOffset(types.TrackSector(17, 15), idx)
		require.NoError(t, err)
		assert.Equal(t, 17*4096+15*256+want, off, "index %d", idx)
	}
	_, err := f.EntryOffset(types.TrackSector(40, 0), 0)
	assert.ErrorIs(t, err, types.ErrMalformedEntry)

	assert.True(t, f.IsChunkBoundary(7))
	assert.True(t, f.IsChunkBoundary(14))
	assert.False(t, f.IsChunkBoundary(8))

	next, err := f.NextChunk(types.TrackSector(17, 15))
	require.NoError(t, err)
	assert.Equal(t, types.TrackSector(17, 14), next)
	next, err = f.NextChunk(types.TrackSector(17, 1))
	require.NoError(t, err)
	assert.True(t, next.IsZero())
}

func TestDecodeEntry(t *testing.T) {
	d := buildDisk(t)
	f := newFormat(d)
	root := types.TrackSector(17, 15)

	tests := []struct {
		name     string
		dir      types.BlockAddress
		index    int
		fileName string
		fileType uint8
		auxType  uint16
		length   uint32
		locked   bool
		deleted  bool
	}{
		{"applesoft", root, 0, "HELLO", types.FileTypeApplesoft, 0x0801, uint32(len(basData) + 2), false, false},
		{"binary", root, 1, "GAME", types.FileTypeBinary, 0x0803, uint32(len(binData) + 4), false, false},
		{"deleted", root, 2, "OLD", 0, 0, 0, false, true},
		{"locked text", root, 3, "NOTES", types.FileTypeText, 0, uint32(len(textData)), true, false},
		{"integer", root, 4, "INT.PROG", types.FileTypeInteger, 0x9600, 5, false, false},
		{"other types map to text", root, 5, "REL", types.FileTypeText, 0, 2, false, false},
		{"second catalog sector", types.TrackSector(17, 14), 7, "NEXT.SECTOR", types.FileTypeText, 0, 21, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := f.DecodeEntry(tt.dir, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.fileName, e.NameString())
			assert.Equal(t, tt.deleted, e.IsDeleted())
			assert.Equal(t, tt.locked, e.Locked)
			if tt.deleted {
				return
			}
			assert.Equal(t, types.StorageTSList, e.StorageType)
			assert.Equal(t, tt.fileType, e.FileType)
			assert.Equal(t, tt.auxType, e.AuxType)
			assert.Equal(t, tt.length, e.Length)
			n, err := f.ResolveLength(e)
			require.NoError(t, err)
			assert.Equal(t, tt.length, n)
		})
	}
}

func TestDecodeEntryErrors(t *testing.T) {
	d := testutil.NewDOS33Image()
	d.WriteEntry(0, testutil.DOS33Entry{ListTrack: 0x40, ListSector: 0, Type: types.DOS33TypeBinary, Name: "BAD"})
	f := newFormat(d)

	_, err := f.DecodeEntry(types.TrackSector(17, 15), 0)
	assert.ErrorIs(t, err, types.ErrMalformedEntry)
	assert.Contains(t, err.Error(), "BAD")

	_, err = f.DecodeEntry(types.TrackSector(17, 15), -1)
	assert.ErrorIs(t, err, types.ErrMalformedEntry)
}

func TestDecodeName(t *testing.T) {
	raw := bytes.Repeat([]byte{0xA0}, types.DOS33NameLength)
	copy(raw, []byte{0xC8, 0xC5, 0xCC, 0xCC, 0xCF, 0xA0, 0xD7})
	assert.Equal(t, "HELLO W", string(decodeName(raw)))
	assert.Empty(t, decodeName(bytes.Repeat([]byte{0xA0}, 4)))
}

func TestResolve(t *testing.T) {
	d := buildDisk(t)
	f := newFormat(d)
	root := types.TrackSector(17, 15)

	bin, err := f.DecodeEntry(root, 1)
	require.NoError(t, err)
	got, err := f.Resolve(bin)
	require.NoError(t, err)
	assert.Equal(t, testutil.BinaryFile(0x0803, binData), got.DataFork)
	assert.Nil(t, got.ResourceFork)

	txt, err := f.DecodeEntry(root, 3)
	require.NoError(t, err)
	got, err = f.Resolve(txt)
	require.NoError(t, err)
	assert.Equal(t, textData, got.DataFork)

	deleted, err := f.DecodeEntry(root, 2)
	require.NoError(t, err)
	_, err = f.Resolve(deleted)
	assert.ErrorIs(t, err, types.ErrMalformedEntry)
}
