package services

import (
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/disk"
	"github.com/deploymenttheory/go-a2fs/internal/testutil"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
)

// newProDOSFixture builds a volume laid out as
//
//	/TESTVOL/README          seedling, "HELLO"
//	/TESTVOL/SUBDIR/INNER    seedling, "abc"
//	/TESTVOL/SUBDIR/DEEPER/  empty directory
//	/TESTVOL/FORKED          data "DATA", resource "RS"
//
// with a deleted entry between SUBDIR and FORKED.
func newProDOSFixture() *testutil.ProDOSImage {
	img := testutil.NewProDOSVolume("TESTVOL")
	img.SetFileCount(2, 3)
	created := testutil.ProDOSDate(1990, 6, 15, 12, 30)

	img.WriteEntry(2, 0, testutil.ProDOSEntry{
		Storage: types.StorageSeedling, Name: "README", FileType: types.FileTypeText,
		Key: 10, BlocksUsed: 1, EOF: 5, Created: created, Modified: created, Access: 0xC3,
	})
	copy(img.Block(10), "HELLO")

	img.WriteEntry(2, 1, testutil.ProDOSEntry{
		Storage: types.StorageDirectory, Name: "SUBDIR", FileType: types.FileTypeDirectory,
		Key: 20, BlocksUsed: 1, EOF: 512, Access: 0xC3,
	})
	img.WriteDirectoryHeader(20, types.StorageSubdirHeader, "SUBDIR", 2)
	img.WriteEntry(20, 0, testutil.ProDOSEntry{
		Storage: types.StorageSeedling, Name: "INNER", FileType: types.FileTypeBinary,
		Key: 11, BlocksUsed: 1, EOF: 3, AuxType: 0x2000, Access: 0xC3, HeaderPointer: 20,
	})
	copy(img.Block(11), "abc")
	img.WriteEntry(20, 1, testutil.ProDOSEntry{
		Storage: types.StorageDirectory, Name: "DEEPER", FileType: types.FileTypeDirectory,
		Key: 21, BlocksUsed: 1, EOF: 512, Access: 0xC3, HeaderPointer: 20,
	})
	img.WriteDirectoryHeader(21, types.StorageSubdirHeader, "DEEPER", 0)

	img.WriteEntry(2, 2, testutil.ProDOSEntry{Storage: types.StorageDeleted, Name: "GONE", Key: 12})

	img.WriteEntry(2, 3, testutil.ProDOSEntry{
		Storage: types.StorageExtended, Name: "FORKED", FileType: types.FileTypeGSOSFile,
		Key: 30, BlocksUsed: 3, EOF: 512, Access: 0xC3,
	})
	img.WriteForkKeyBlock(30,
		testutil.ForkEntry{Storage: types.StorageSeedling, Key: 31, BlocksUsed: 1, EOF: 4},
		testutil.ForkEntry{Storage: types.StorageSeedling, Key: 32, BlocksUsed: 1, EOF: 2},
		nil, nil)
	copy(img.Block(31), "DATA")
	copy(img.Block(32), "RS")
	return img
}

// newDOS33Fixture builds a catalog holding HELLO (Applesoft), a deleted
// slot, CODE (binary at $2000) and NOTES (text).
func newDOS33Fixture() *testutil.DOS33Image {
	img := testutil.NewDOS33Image()
	img.AddFile(0, "HELLO", types.DOS33TypeApplesoft, testutil.BasicFile([]byte{0x0A, 0x08, 0x0A, 0x00}))
	img.WriteEntry(1, testutil.DOS33Entry{ListTrack: 20, ListSector: 0, Deleted: true, Name: "OLD"})
	img.AddFile(2, "CODE", types.DOS33TypeBinary, testutil.BinaryFile(0x2000, []byte{0xA9, 0x00, 0x60}))
	img.AddFile(3, "NOTES", types.DOS33TypeText, []byte("LINE\r"))
	return img
}

func openVolume(t *testing.T, data []byte, name string, cfg *disk.Config) *VolumeService {
	t.Helper()
	img, err := disk.DecodeImage(data, name, logr.Discard())
	require.NoError(t, err)
	v, err := OpenVolume(img, cfg, logr.Discard())
	require.NoError(t, err)
	return v
}
