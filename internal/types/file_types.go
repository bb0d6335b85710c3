package types

import "fmt"

// ProDOS file types referenced by the parsers.
const (
	FileTypeUnknown     uint8 = 0x00
	FileTypeText        uint8 = 0x04
	FileTypeBinary      uint8 = 0x06
	FileTypeDirectory   uint8 = 0x0F
	FileTypeGSOSFile    uint8 = 0xB3
	FileTypeInteger     uint8 = 0xFA
	FileTypeApplesoft   uint8 = 0xFC
	FileTypeRelocatable uint8 = 0xFE
	FileTypeSystem      uint8 = 0xFF
)

// DOS 3.3 catalog type codes, after masking off the lock bit.
const (
	DOS33TypeText        uint8 = 0x00
	DOS33TypeInteger     uint8 = 0x01
	DOS33TypeApplesoft   uint8 = 0x02
	DOS33TypeBinary      uint8 = 0x04
	DOS33TypeS           uint8 = 0x08
	DOS33TypeRelocatable uint8 = 0x10
	DOS33TypeA           uint8 = 0x20
	DOS33TypeB           uint8 = 0x40
)

// Implied aux types for DOS 3.3 BASIC programs.
const (
	IntegerAuxType   uint16 = 0x9600
	ApplesoftAuxType uint16 = 0x0801
)

// ProDOSTypeMap maps a ProDOS file type to its mnemonic and description.
var ProDOSTypeMap = map[uint8][2]string{
	0x00: {"UNK", "Unknown"},
	0x01: {"BAD", "Bad Block"},
	0x02: {"PCD", "Pascal Code"},
	0x03: {"PTX", "Pascal Text"},
	0x04: {"TXT", "ASCII Text"},
	0x05: {"PDA", "Pascal Data"},
	0x06: {"BIN", "Binary File"},
	0x07: {"FNT", "Apple III Font"},
	0x08: {"FOT", "HiRes/Double HiRes Graphics"},
	0x09: {"BA3", "Apple III BASIC Program"},
	0x0A: {"DA3", "Apple III BASIC Data"},
	0x0B: {"WPF", "Generic Word Processing"},
	0x0C: {"SOS", "SOS System File"},
	0x0F: {"DIR", "ProDOS Directory"},
	0x19: {"ADB", "AppleWorks Database"},
	0x1A: {"AWP", "AppleWorks Word Processing"},
	0x1B: {"ASP", "AppleWorks Spreadsheet"},
	0x2A: {"8SC", "Apple II Source Code"},
	0x2B: {"8OB", "Apple II Object Code"},
	0x2C: {"8IC", "Apple II Interpreted Code"},
	0x2D: {"8LD", "Apple II Language Data"},
	0x2E: {"P8C", "ProDOS 8 Code Module"},
	0x50: {"GWP", "Apple IIgs Word Processing"},
	0x51: {"GSS", "Apple IIgs Spreadsheet"},
	0x52: {"GDB", "Apple IIgs Database"},
	0x53: {"DRW", "Drawing"},
	0x54: {"GDP", "Desktop Publishing"},
	0x55: {"HMD", "Hypermedia"},
	0x56: {"EDU", "Educational Data"},
	0x57: {"STN", "Stationery"},
	0x58: {"HLP", "Help File"},
	0x59: {"COM", "Communications File"},
	0x5A: {"CFG", "Configuration File"},
	0x5B: {"ANM", "Animation File"},
	0x5C: {"MUM", "Multimedia File"},
	0x5D: {"ENT", "Game/Entertainment File"},
	0x5E: {"DVU", "Development Utility"},
	0x6B: {"BIO", "PC Transporter BIOS"},
	0x6D: {"TDR", "PC Transporter Driver"},
	0x6E: {"PRE", "PC Transporter Pre-Boot"},
	0x6F: {"HDV", "PC Transporter Volume"},
	0xA0: {"WP ", "WordPerfect Document"},
	0xAB: {"GSB", "Apple IIgs BASIC Program"},
	0xAC: {"TDF", "Apple IIgs BASIC TDF"},
	0xAD: {"BDF", "Apple IIgs BASIC Data"},
	0xB0: {"SRC", "Apple IIgs Source Code"},
	0xB1: {"OBJ", "Apple IIgs Object Code"},
	0xB2: {"LIB", "Apple IIgs Library"},
	0xB3: {"S16", "Apple IIgs Application Program"},
	0xB4: {"RTL", "Apple IIgs Runtime Library"},
	0xB5: {"EXE", "Apple IIgs Shell Script"},
	0xB6: {"PIF", "Apple IIgs Permanent INIT"},
	0xB7: {"TIF", "Apple IIgs Temporary INIT"},
	0xB8: {"NDA", "Apple IIgs New Desk Accessory"},
	0xB9: {"CDA", "Apple IIgs Classic Desk Accessory"},
	0xBA: {"TOL", "Apple IIgs Tool"},
	0xBB: {"DRV", "Apple IIgs Device Driver"},
	0xBC: {"LDF", "Apple IIgs Generic Load File"},
	0xBD: {"FST", "Apple IIgs File System Translator"},
	0xBF: {"DOC", "Apple IIgs Document"},
	0xC0: {"PNT", "Apple IIgs Packed Super HiRes"},
	0xC1: {"PIC", "Apple IIgs Super HiRes"},
	0xC2: {"ANI", "PaintWorks Animation"},
	0xC3: {"PAL", "PaintWorks Palette"},
	0xC5: {"OOG", "Object-Oriented Graphics"},
	0xC6: {"SCR", "Script"},
	0xC7: {"CDV", "Apple IIgs Control Panel"},
	0xC8: {"FON", "Apple IIgs Font"},
	0xC9: {"FND", "Apple IIgs Finder Data"},
	0xCA: {"ICN", "Apple IIgs Icon File"},
	0xD5: {"MUS", "Music"},
	0xD6: {"INS", "Instrument"},
	0xD7: {"MDI", "MIDI"},
	0xD8: {"SND", "Apple IIgs Audio"},
	0xDB: {"DBM", "DB Master Document"},
	0xE0: {"LBR", "Archive"},
	0xE2: {"ATK", "AppleTalk Data"},
	0xEE: {"R16", "EDASM 816 Relocatable Code"},
	0xEF: {"PAS", "Pascal Area"},
	0xF0: {"CMD", "BASIC Command"},
	0xF9: {"P16", "ProDOS 16 System File"},
	0xFA: {"INT", "Integer BASIC Program"},
	0xFB: {"IVR", "Integer BASIC Variables"},
	0xFC: {"BAS", "Applesoft BASIC Program"},
	0xFD: {"VAR", "Applesoft BASIC Variables"},
	0xFE: {"REL", "Relocatable Code"},
	0xFF: {"SYS", "ProDOS 8 System File"},
}

// DOS33TypeMap maps a DOS 3.3 catalog type to its letter and description.
var DOS33TypeMap = map[uint8][2]string{
	DOS33TypeText:        {"T", "ASCII Text"},
	DOS33TypeInteger:     {"I", "Integer Basic Program"},
	DOS33TypeApplesoft:   {"A", "Applesoft Basic Program"},
	DOS33TypeBinary:      {"B", "Binary File"},
	DOS33TypeS:           {"S", "S File Type"},
	DOS33TypeRelocatable: {"R", "Relocatable Object Code"},
	DOS33TypeA:           {"a", "A File Type"},
	DOS33TypeB:           {"b", "B File Type"},
}

// FileTypeMnemonic returns the three letter mnemonic of a ProDOS file type,
// or $XX when none is assigned.
func FileTypeMnemonic(ft uint8) string {
	if info, ok := ProDOSTypeMap[ft]; ok {
		return info[0]
	}
	return fmt.Sprintf("$%02X", ft)
}

// FileTypeDescription returns the long description of a ProDOS file type.
func FileTypeDescription(ft uint8) string {
	if info, ok := ProDOSTypeMap[ft]; ok {
		return info[1]
	}
	return "Unknown"
}

// DOS33TypeLetter returns the catalog letter of a DOS 3.3 type byte.
func DOS33TypeLetter(t uint8) string {
	if info, ok := DOS33TypeMap[t&DOS33TypeMask]; ok {
		return info[0]
	}
	return "?"
}
