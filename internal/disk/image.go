package disk

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/deploymenttheory/go-a2fs/internal/device"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/detect"
	"github.com/deploymenttheory/go-a2fs/internal/parsers/twoimg"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
	"github.com/therootcompany/xz"
)

// MaxImageSize bounds decompressed images. The largest ProDOS volume is 32 MB.
const MaxImageSize = 32<<20 + twoimg.HeaderSize + 64<<10

// Compression identifies the wrapper an image was stored in
type Compression string

const (
	CompressionNone  Compression = ""
	CompressionGzip  Compression = "gzip"
	CompressionXZ    Compression = "xz"
	CompressionBzip2 Compression = "bzip2"
)

// Image is a disk image loaded into memory, unwrapped, classified and
// normalised to the sector order its filesystem expects
type Image struct {
	Path        string
	Name        string
	Ext         string
	Compression Compression
	Container   *twoimg.Header
	Detection   detect.Detection
	Device      *device.ImageDevice
}

// LoadImage reads and prepares the image at path
func LoadImage(path string, log logr.Logger) (*Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk image: %w", err)
	}
	img, err := DecodeImage(raw, filepath.Base(path), log)
	if err != nil {
		return nil, err
	}
	img.Path = path
	return img, nil
}

// DecodeImage prepares raw image bytes. name is the file name, used for the
// extension hint and for DOS 3.3 volume names.
func DecodeImage(raw []byte, name string, log logr.Logger) (*Image, error) {
	log = log.WithName("disk")
	img := &Image{Name: name}

	data, comp, err := decompress(raw)
	if err != nil {
		return nil, err
	}
	img.Compression = comp
	if comp != CompressionNone {
		log.V(1).Info("decompressed image", "compression", comp, "size", len(data))
		name = trimCompressionExt(name)
	}
	img.Ext = strings.ToLower(filepath.Ext(name))
	img.Name = strings.TrimSuffix(name, filepath.Ext(name))

	if twoimg.IsTwoIMG(data) || img.Ext == ".2mg" || img.Ext == ".2img" {
		stripped, hdr, err := twoimg.Strip(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse 2IMG container: %w", err)
		}
		log.V(1).Info("stripped 2IMG header", "creator", hdr.Creator, "format", hdr.ImageFormat.String(), "locked", hdr.Locked())
		img.Container = hdr
		data = stripped
	}

	img.Detection = detect.NewDetector(log).Detect(data, img.Ext)
	if img.Detection.NeedsOrderFix {
		log.V(1).Info("correcting sector order", "kind", img.Detection.Kind.String())
		if data, err = addressing.CorrectSectorOrder(data); err != nil {
			return nil, err
		}
	}

	img.Device = device.NewImageDevice(data, img.Detection.Kind)
	log.V(1).Info("loaded disk image", "name", img.Name, "kind", img.Detection.Kind.String(),
		"confident", img.Detection.Confident, "fingerprint", fmt.Sprintf("%016x", img.Device.Fingerprint()))
	return img, nil
}

// Kind returns the detected filesystem
func (i *Image) Kind() types.FsKind {
	return i.Detection.Kind
}

func decompress(raw []byte) ([]byte, Compression, error) {
	var (
		r    io.Reader
		comp Compression
		err  error
	)
	switch {
	case bytes.HasPrefix(raw, []byte("\x1f\x8b")):
		comp = CompressionGzip
		r, err = gzip.NewReader(bytes.NewReader(raw))
	case bytes.HasPrefix(raw, []byte("\xfd7zXZ\x00")):
		comp = CompressionXZ
		r, err = xz.NewReader(bytes.NewReader(raw), xz.DefaultDictMax)
	case bytes.HasPrefix(raw, []byte("BZh")):
		comp = CompressionBzip2
		r = bzip2.NewReader(bytes.NewReader(raw))
	default:
		return raw, CompressionNone, nil
	}
	if err != nil {
		return nil, comp, fmt.Errorf("failed to open %s stream: %w", comp, err)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, comp, fmt.Errorf("failed to decompress %s image: %w", comp, err)
	}
	if len(data) > MaxImageSize {
		return nil, comp, fmt.Errorf("decompressed %s image exceeds %d bytes", comp, MaxImageSize)
	}
	return data, comp, nil
}

func trimCompressionExt(name string) string {
	for _, ext := range []string{".gz", ".gzip", ".xz", ".bz2"} {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
