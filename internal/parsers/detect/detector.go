package detect

import (
	"bytes"
	"strings"

	"github.com/deploymenttheory/go-a2fs/internal/parsers/addressing"
	"github.com/deploymenttheory/go-a2fs/internal/types"
	"github.com/go-logr/logr"
)

// Method names how a Detection was reached.
type Method string

const (
	MethodBootBlock     Method = "boot block"
	MethodVTOC          Method = "vtoc"
	MethodExtension     Method = "extension"
	MethodVolumeHeader  Method = "volume header"
	MethodAssumedProDOS Method = "assumed"
)

// Detection is the classification of an image.
type Detection struct {
	Kind types.FsKind `json:"kind" yaml:"kind"`

	// NeedsOrderFix means the sectors must be re-interleaved before parsing.
	NeedsOrderFix bool `json:"needs_order_fix" yaml:"needs_order_fix"`

	// Confident is false when no signature matched and ProDOS was assumed.
	Confident bool `json:"confident" yaml:"confident"`

	Method Method `json:"method" yaml:"method"`
}

// Detector classifies raw images as ProDOS or DOS 3.3.
type Detector struct {
	log logr.Logger
}

// NewDetector returns a detector that reports diagnostics to log.
func NewDetector(log logr.Logger) *Detector {
	return &Detector{log: log.WithName("detect")}
}

// Detect classifies image, a raw image with any container header stripped.
// ext is the lower-case file extension including the dot, used only when no
// signature matches. Only 140K images are checked for interleave.
func (d *Detector) Detect(image []byte, ext string) Detection {
	if len(image) != types.FloppyImageSize {
		return d.detectLarge(image)
	}
	d.log.V(1).Info("140k disk image", "size", len(image))

	if bytes.Equal(image[:len(types.ProDOSBootSignature)], types.ProDOSBootSignature[:]) {
		d.log.V(1).Info("ProDOS boot block signature found")
		if hasProDOSMarker(image, 1) {
			d.log.V(1).Info("ProDOS volume in ProDOS order")
			return Detection{Kind: types.FsKindProDOS, Confident: true, Method: MethodBootBlock}
		}
		if hasProDOSMarker(image, types.DOS33InterleaveProbeSector) {
			d.log.V(1).Info("ProDOS volume in DOS order, needs order fix")
			return Detection{Kind: types.FsKindProDOS, NeedsOrderFix: true, Confident: true, Method: MethodBootBlock}
		}
	} else if det, ok := d.detectDOS33(image); ok {
		return det
	}

	det := Detection{Kind: types.FsKindProDOS, Method: MethodAssumedProDOS}
	switch strings.ToLower(ext) {
	case ".dsk", ".do":
		d.log.V(1).Info("extension indicates DOS order", "ext", ext)
		det.NeedsOrderFix = true
		det.Method = MethodExtension
	}
	d.log.Info("unable to determine disk format, assuming ProDOS", "ext", ext, "orderFix", det.NeedsOrderFix)
	return det
}

func (d *Detector) detectDOS33(image []byte) (Detection, bool) {
	vtoc := addressing.TrackSectorOffset(types.DOS33VTOCTrack, types.DOS33VTOCSector)
	if image[vtoc+types.DOS33VTOCVersionOffset] != types.DOS33VTOCVersion {
		return Detection{}, false
	}
	catTrack := image[vtoc+types.DOS33VTOCCatalogOffset]
	catSector := image[vtoc+types.DOS33VTOCCatalogOffset+1]
	if catTrack >= types.TracksPerDisk || catSector >= types.SectorsPerTrack {
		d.log.V(1).Info("VTOC catalog pointer out of range", "track", catTrack, "sector", catSector)
		return Detection{}, false
	}

	det := Detection{Kind: types.FsKindDOS33, Confident: true, Method: MethodVTOC}
	probe := addressing.TrackSectorOffset(types.DOS33VTOCTrack, types.DOS33InterleaveProbeSector)
	if image[probe+types.DOS33InterleaveProbeOffset] != types.DOS33InterleaveProbeValue {
		det.NeedsOrderFix = true
	}
	d.log.V(1).Info("DOS 3.3 VTOC found", "orderFix", det.NeedsOrderFix)
	return det, true
}

// detectLarge handles images other than 140K. These are never re-interleaved.
func (d *Detector) detectLarge(image []byte) Detection {
	det := Detection{Kind: types.FsKindProDOS, Method: MethodAssumedProDOS}
	hdr := types.ProDOSVolumeDirectoryBlock*types.ProDOSBlockSize + types.ProDOSDirHeaderOffset
	if hdr < len(image) && types.StorageType(image[hdr]>>4) == types.StorageVolumeHeader {
		det.Confident = true
		det.Method = MethodVolumeHeader
	} else {
		d.log.Info("no ProDOS volume header found, assuming ProDOS", "size", len(image))
	}
	return det
}

func hasProDOSMarker(image []byte, sector int) bool {
	off := addressing.TrackSectorOffset(0, sector) + types.ProDOSMarkerOffset
	return string(image[off:off+len(types.ProDOSMarker)]) == types.ProDOSMarker
}
