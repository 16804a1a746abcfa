// Package fonts provides the fallback typefaces used when the font assets
// are missing or cannot be parsed.
//
// The Go fonts ship inside golang.org/x/image, so the fallback never touches
// the filesystem and always covers Latin and Cyrillic.
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Names of the built-in weights.
const (
	Regular = "regular"
	Bold    = "bold"
)

// FamilyName is the family the fallback faces are registered under.
const FamilyName = "Go"

// Load returns the TTF data of a built-in weight. The name is matched
// case-insensitively and may be prefixed with "embed:".
func Load(name string) ([]byte, error) {
	switch strings.ToLower(strings.TrimPrefix(name, "embed:")) {
	case Regular:
		return goregular.TTF, nil
	case Bold:
		return gobold.TTF, nil
	default:
		return nil, fmt.Errorf("fonts: no built-in font %q", name)
	}
}

// MustLoad is Load for names known at compile time.
func MustLoad(name string) []byte {
	data, err := Load(name)
	if err != nil {
		panic(err)
	}
	return data
}
