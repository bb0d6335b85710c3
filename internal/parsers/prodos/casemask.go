package prodos

import "github.com/deploymenttheory/go-a2fs/internal/types"

// CaseMask splits a GS/OS case-fold word into its 15 case bits and whether
// the word is valid at all. Words below 0x8000 predate GS/OS and carry no mask.
func CaseMask(word uint16) (uint16, bool) {
	if word&types.CaseMaskPresent == 0 {
		return 0, false
	}
	return word &^ types.CaseMaskPresent, true
}

// ApplyCaseMask returns a copy of name with the characters flagged in a
// 15-bit case mask lowered. Bit 14 covers the first character and bit 0 the
// fifteenth.
func ApplyCaseMask(name []byte, mask uint16) []byte {
	out := make([]byte, len(name))
	copy(out, name)
	for i := 0; i < len(out) && i < types.ProDOSMaxNameLength; i++ {
		if mask&(1<<(14-i)) != 0 {
			out[i] = toLower(out[i])
		}
	}
	return out
}

// applyCaseWord applies a raw case-fold word unless upper-case names were requested.
func applyCaseWord(name []byte, word uint16, casefoldUpper bool) []byte {
	mask, ok := CaseMask(word)
	if !ok || casefoldUpper {
		return name
	}
	return ApplyCaseMask(name, mask)
}

func toLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
