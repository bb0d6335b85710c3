package twoimg

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildContainer(t *testing.T, payload []byte, mutate func(h []byte)) []byte {
	t.Helper()
	comment := []byte("side A")
	data := make([]byte, HeaderSize, HeaderSize+len(payload)+len(comment))
	copy(data, "2IMG")
	copy(data[4:], "A2FS")
	le := binary.LittleEndian
	le.PutUint16(data[8:], HeaderSize)
	le.PutUint16(data[10:], Version)
	le.PutUint32(data[12:], uint32(FormatProDOSOrder))
	le.PutUint32(data[16:], FlagLocked)
	le.PutUint32(data[20:], uint32(len(payload)/512))
	le.PutUint32(data[24:], HeaderSize)
	le.PutUint32(data[28:], uint32(len(payload)))
	le.PutUint32(data[32:], uint32(HeaderSize+len(payload)))
	le.PutUint32(data[36:], uint32(len(comment)))
	data = append(data, payload...)
	data = append(data, comment...)
	if mutate != nil {
		mutate(data)
	}
	return data
}

func TestParseHeader(t *testing.T) {
	payload := make([]byte, 1024)

	t.Run("valid header", func(t *testing.T) {
		h, err := ParseHeader(buildContainer(t, payload, nil))
		require.NoError(t, err)
		assert.Equal(t, "A2FS", h.Creator)
		assert.Equal(t, FormatProDOSOrder, h.ImageFormat)
		assert.Equal(t, uint32(2), h.NumBlocks)
		assert.Equal(t, uint32(HeaderSize), h.DataOffset)
		assert.Equal(t, uint32(1024), h.DataLength)
		assert.True(t, h.Locked())
		assert.Equal(t, "side A", h.Comment)
		_, ok := h.DOSVolume()
		assert.False(t, ok)
	})

	tests := []struct {
		name     string
		data     []byte
		errorMsg string
	}{
		{"short", []byte("2IMG"), "insufficient data"},
		{"bad magic", buildContainer(t, payload, func(h []byte) { copy(h, "WOZ2") }), "missing 2IMG magic"},
		{"bad header length", buildContainer(t, payload, func(h []byte) { h[8] = 52 }), "header length 52"},
		{"bad version", buildContainer(t, payload, func(h []byte) { h[10] = 2 }), "version 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestStrip(t *testing.T) {
	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	t.Run("returns payload", func(t *testing.T) {
		out, h, err := Strip(buildContainer(t, payload, nil))
		require.NoError(t, err)
		require.NotNil(t, h)
		assert.Equal(t, payload, out)
	})

	t.Run("zero data length runs to end of file", func(t *testing.T) {
		data := buildContainer(t, payload, func(h []byte) {
			binary.LittleEndian.PutUint32(h[28:], 0)
		})
		out, _, err := Strip(data)
		require.NoError(t, err)
		assert.Len(t, out, len(data)-HeaderSize)
	})

	t.Run("data past end of file", func(t *testing.T) {
		data := buildContainer(t, payload, func(h []byte) {
			binary.LittleEndian.PutUint32(h[28:], 1<<20)
		})
		_, _, err := Strip(data)
		assert.ErrorIs(t, err, types.ErrTruncatedImage)
	})

	t.Run("DOS volume number", func(t *testing.T) {
		data := buildContainer(t, payload, func(h []byte) {
			binary.LittleEndian.PutUint32(h[16:], FlagDOSVolumeValid|254)
		})
		_, h, err := Strip(data)
		require.NoError(t, err)
		vol, ok := h.DOSVolume()
		assert.True(t, ok)
		assert.Equal(t, uint8(254), vol)
		assert.False(t, h.Locked())
	})
}
