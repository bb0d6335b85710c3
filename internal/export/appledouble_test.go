package export

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppleDoubleDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want uint32
	}{
		{"epoch", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 0},
		{"one day later", time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC), 86400},
		{"before epoch wraps", time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC), 0xFFFFFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AppleDoubleDate(tt.in))
		})
	}
}

func TestBuildAppleDouble(t *testing.T) {
	created := time.Date(2000, 1, 1, 0, 1, 0, 0, time.UTC)
	modified := time.Date(2000, 1, 1, 0, 2, 0, 0, time.UTC)
	finfo := make([]byte, 16)
	for i := range finfo {
		finfo[i] = byte(0x10 + i)
	}
	fxinfo := make([]byte, 16)
	for i := range fxinfo {
		fxinfo[i] = byte(0x40 + i)
	}

	ad := BuildAppleDouble(AppleDoubleInfo{
		Created:  created,
		Modified: modified,
		FileType: 0xB3,
		AuxType:  0xDB07,
		Access:   0xC3,
		Finder:   &types.FinderInfo{FInfo: finfo, FXInfo: fxinfo},
		Resource: []byte("RSRC"),
	})
	be := binary.BigEndian

	require.Len(t, ad, AppleDoubleHeaderSize+4)
	assert.Equal(t, []byte{0x00, 0x05, 0x16, 0x07, 0x00, 0x02, 0x00, 0x00}, ad[0:8])
	assert.Equal(t, uint16(13), be.Uint16(ad[0x18:]))

	// resource fork descriptor
	assert.Equal(t, uint32(ADResourceFork), be.Uint32(ad[0x1A:]))
	assert.Equal(t, uint32(0x2E5), be.Uint32(ad[0x1E:]))
	assert.Equal(t, uint32(4), be.Uint32(ad[0x22:]))
	// AFP directory ID is the last descriptor written
	assert.Equal(t, []byte{0, 0, 0, 0x0F, 0, 0, 0x02, 0xAD, 0, 0, 0, 4}, ad[0x7A:0x86])

	assert.Equal(t, uint32(60), be.Uint32(ad[637:]))
	assert.Equal(t, uint32(120), be.Uint32(ad[641:]))
	assert.Equal(t, byte(0x80), ad[645])
	assert.Equal(t, byte(0x80), ad[649])

	assert.Equal(t, []byte{'p', 0xB3, 0xDB, 0x07}, ad[653:657])
	assert.Equal(t, "pdos", string(ad[657:661]))
	assert.Equal(t, finfo[8:16], ad[661:669])
	assert.Equal(t, fxinfo, ad[669:685])

	assert.Equal(t, []byte{0x00, 0xC3, 0x00, 0xB3, 0x00, 0x00, 0xDB, 0x07}, ad[0x2C1:0x2C9])
	assert.Equal(t, "RSRC", string(ad[AppleDoubleHeaderSize:]))
}

func TestBuildAppleDoubleWithoutFinderInfo(t *testing.T) {
	ad := BuildAppleDouble(AppleDoubleInfo{FileType: 0x06, AuxType: 0x2000})
	require.Len(t, ad, AppleDoubleHeaderSize)
	assert.Equal(t, []byte{'p', 0x06, 0x20, 0x00}, ad[653:657])
	assert.Equal(t, make([]byte, 24), ad[661:685])
	assert.Zero(t, binary.BigEndian.Uint32(ad[0x22:]))
}
