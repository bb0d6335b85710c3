package disk

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/detect"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/twoimg"
	"github.com/deploymenttheory/go-a2fs/internal/testutil"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wrap2IMG(payload []byte, format twoimg.ImageFormat) []byte {
	hdr := make([]byte, twoimg.HeaderSize)
	copy(hdr, "2IMG")
	copy(hdr[4:], "TEST")
	le := binary.LittleEndian
	le.PutUint16(hdr[8:], twoimg.HeaderSize)
	le.PutUint16(hdr[10:], twoimg.Version)
	le.PutUint32(hdr[12:], uint32(format))
	le.PutUint32(hdr[20:], uint32(len(payload)/512))
	le.PutUint32(hdr[24:], twoimg.HeaderSize)
	le.PutUint32(hdr[28:], uint32(len(payload)))
	return append(hdr, payload...)
}

func gzipped(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	prodos := testutil.NewProDOSVolume("VOL").Data
	prodosDO, err := addressing.CorrectSectorOrder(prodos)
	require.NoError(t, err)
	dos := testutil.NewDOS33Image().Data

	tests := []struct {
		name        string
		raw         []byte
		file        string
		kind        types.FsKind
		method      detect.Method
		compression Compression
		container   bool
		baseName    string
	}{
		{"plain ProDOS", prodos, "disk.po", types.FsKindProDOS, detect.MethodBootBlock, CompressionNone, false, "disk"},
		{"ProDOS in DOS order", prodosDO, "disk.dsk", types.FsKindProDOS, detect.MethodBootBlock, CompressionNone, false, "disk"},
		{"DOS 3.3", dos, "master.do", types.FsKindDOS33, detect.MethodVTOC, CompressionNone, false, "master"},
		{"2IMG wrapped", wrap2IMG(prodos, twoimg.FormatProDOSOrder), "disk.2mg", types.FsKindProDOS, detect.MethodBootBlock, CompressionNone, true, "disk"},
		{"2IMG without extension", wrap2IMG(dos, twoimg.FormatDOSOrder), "disk.img", types.FsKindDOS33, detect.MethodVTOC, CompressionNone, true, "disk"},
		{"gzip", gzipped(t, prodos), "disk.po.gz", types.FsKindProDOS, detect.MethodBootBlock, CompressionGzip, false, "disk"},
		{"gzip 2IMG", gzipped(t, wrap2IMG(dos, twoimg.FormatDOSOrder)), "disk.2mg.gz", types.FsKindDOS33, detect.MethodVTOC, CompressionGzip, true, "disk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.raw, tt.file, logr.Discard())
			require.NoError(t, err)
			assert.Equal(t, tt.kind, img.Kind())
			assert.Equal(t, tt.method, img.Detection.Method)
			assert.True(t, img.Detection.Confident)
			assert.Equal(t, tt.compression, img.Compression)
			assert.Equal(t, tt.container, img.Container != nil)
			assert.Equal(t, tt.baseName, img.Name)
			assert.Equal(t, types.FloppyImageSize, img.Device.Len())
			assert.Equal(t, tt.kind, img.Device.Kind())

			// Whatever the input order, the loaded image is in the order its
			// filesystem expects.
			got, err := img.Device.Slice(0, img.Device.Len())
			require.NoError(t, err)
			if tt.kind == types.FsKindProDOS {
				assert.Equal(t, prodos, got)
			} else {
				assert.Equal(t, dos, got)
			}
		})
	}
}

func TestDecodeImageErrors(t *testing.T) {
	t.Run("2mg extension without header", func(t *testing.T) {
		_, err := DecodeImage(make([]byte, types.FloppyImageSize), "disk.2mg", logr.Discard())
		assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
	})

	t.Run("bad 2IMG version", func(t *testing.T) {
		raw := wrap2IMG(make([]byte, 1024), twoimg.FormatProDOSOrder)
		raw[10] = 2
		_, err := DecodeImage(raw, "disk.2mg", logr.Discard())
		assert.ErrorIs(t, err, types.ErrUnsupportedContainer)
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		_, err := DecodeImage([]byte("\x1f\x8bnot really gzip"), "disk.po.gz", logr.Discard())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "gzip")
	})

	t.Run("corrupt xz", func(t *testing.T) {
		_, err := DecodeImage([]byte("\xfd7zXZ\x00garbage garbage garbage"), "disk.po.xz", logr.Discard())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "xz")
	})
}

func TestDecodeImageLowConfidence(t *testing.T) {
	img, err := DecodeImage(make([]byte, types.FloppyImageSize), "mystery.po", logr.Discard())
	require.NoError(t, err)
	assert.False(t, img.Detection.Confident)
	assert.Equal(t, types.FsKindProDOS, img.Kind())
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.po")
	require.NoError(t, os.WriteFile(path, testutil.NewProDOSVolume("VOL").Data, 0o644))

	img, err := LoadImage(path, logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, path, img.Path)
	assert.Equal(t, "volume", img.Name)
	assert.Equal(t, ".po", img.Ext)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.po"), logr.Discard())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read disk image")
}
