package types

import "fmt"

// ForkMode selects how resource forks and Finder metadata are written out.
type ForkMode string

const (
	// ForkModeNone writes data forks only.
	ForkModeNone ForkMode = "none"

	// ForkModeAppleDouble writes an AppleDouble header file per file in .AppleDouble.
	ForkModeAppleDouble ForkMode = "appledouble"

	// ForkModeExtended appends #ttaaaa to names and writes resource forks to name#ttaaaar.
	ForkModeExtended ForkMode = "extended"
)

// ParseForkMode validates a fork mode name. The empty string means none.
func ParseForkMode(s string) (ForkMode, error) {
	switch m := ForkMode(s); m {
	case "":
		return ForkModeNone, nil
	case ForkModeNone, ForkModeAppleDouble, ForkModeExtended:
		return m, nil
	}
	return "", fmt.Errorf("invalid fork mode %q: must be none, appledouble or extended", s)
}
