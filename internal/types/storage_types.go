package types

import "fmt"

// StorageType is the high nibble of a ProDOS entry's first byte.
// Reference: ProDOS 8 Technical Reference Manual, B.2.4
type StorageType uint8

const (
	// StorageDeleted marks an inactive entry.
	StorageDeleted StorageType = 0x0

	// StorageSeedling is a file of at most one data block.
	StorageSeedling StorageType = 0x1

	// StorageSapling is a file addressed through one index block (up to 128 KB).
	StorageSapling StorageType = 0x2

	// StorageTree is a file addressed through a master index block (up to 16 MB).
	StorageTree StorageType = 0x3

	// StoragePascal is a Pascal area on a ProDOS partition.
	StoragePascal StorageType = 0x4

	// StorageExtended is a GS/OS forked file with a data and a resource fork.
	StorageExtended StorageType = 0x5

	// StorageDirectory is a subdirectory file entry.
	StorageDirectory StorageType = 0xD

	// StorageSubdirHeader is the header entry of a subdirectory key block.
	StorageSubdirHeader StorageType = 0xE

	// StorageVolumeHeader is the header entry of the volume directory key block.
	StorageVolumeHeader StorageType = 0xF

	// StorageTSList is a live DOS 3.3 file, whose data is reached through a
	// track/sector list. It is deliberately outside the ProDOS nibble range.
	StorageTSList StorageType = 0x10
)

func (s StorageType) String() string {
	switch s {
	case StorageDeleted:
		return "deleted"
	case StorageSeedling:
		return "seedling"
	case StorageSapling:
		return "sapling"
	case StorageTree:
		return "tree"
	case StoragePascal:
		return "pascal"
	case StorageExtended:
		return "extended"
	case StorageDirectory:
		return "directory"
	case StorageSubdirHeader:
		return "subdirectory header"
	case StorageVolumeHeader:
		return "volume header"
	case StorageTSList:
		return "t/s list"
	}
	return fmt.Sprintf("storage $%X", uint8(s))
}

// IsEntryStorage reports whether s may appear in a directory file entry
// (as opposed to a header, or a value no format defines).
func (s StorageType) IsEntryStorage() bool {
	switch s {
	case StorageDeleted, StorageSeedling, StorageSapling, StorageTree,
		StorageExtended, StorageDirectory, StorageTSList:
		return true
	}
	return false
}

// Storage is the resolved storage layout of a directory entry. The set of
// implementations is closed; resolvers switch over it exhaustively.
type Storage interface {
	storage()
}

// Deleted is an inactive entry. It owns no blocks.
type Deleted struct{}

// Seedling is a single data block.
type Seedling struct {
	Block  BlockAddress
	Length uint32
}

// Sapling is an index block listing data blocks.
type Sapling struct {
	Index  BlockAddress
	Length uint32
}

// Tree is a master index block listing sapling index blocks.
type Tree struct {
	MasterIndex BlockAddress
	Length      uint32
}

// TSList is a DOS 3.3 track/sector list chain.
type TSList struct {
	List   BlockAddress
	Length uint32
}

// Forked is a GS/OS extended key block holding two fork mini-entries.
type Forked struct {
	Key BlockAddress
}

// Subdirectory is the key block of a directory.
type Subdirectory struct {
	Key BlockAddress
}

func (Deleted) storage()      {}
func (Seedling) storage()     {}
func (Sapling) storage()      {}
func (Tree) storage()         {}
func (TSList) storage()       {}
func (Forked) storage()       {}
func (Subdirectory) storage() {}

// NewStorage builds the storage variant for a storage type, key pointer and length.
func NewStorage(st StorageType, key BlockAddress, length uint32) (Storage, error) {
	switch st {
	case StorageDeleted:
		return Deleted{}, nil
	case StorageSeedling:
		return Seedling{Block: key, Length: length}, nil
	case StorageSapling:
		return Sapling{Index: key, Length: length}, nil
	case StorageTree:
		return Tree{MasterIndex: key, Length: length}, nil
	case StorageTSList:
		return TSList{List: key, Length: length}, nil
	case StorageExtended:
		return Forked{Key: key}, nil
	case StorageDirectory:
		return Subdirectory{Key: key}, nil
	}
	return nil, fmt.Errorf("%w: %s at %s", ErrMalformedEntry, st, key)
}
