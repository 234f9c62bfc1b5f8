package batch

import (
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/widen/internal/utils"
	"golang.org/x/text/unicode/norm"
)

// Naming derives output file names from input paths.
type Naming struct {
	// StripToken is removed from the base name, e.g. "-10000px".
	StripToken string
	// Suffix is appended to the base name, e.g. "-4k".
	Suffix string
	// Format selects the extension.
	Format string
}

// DefaultNaming returns the naming used when nothing is configured.
func DefaultNaming() Naming {
	return Naming{StripToken: "-10000px", Suffix: "-4k", Format: utils.FormatJPEG}
}

// OutputName returns the NFC-normalized output file name for inputPath.
func (n Naming) OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	base = norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
	if n.StripToken != "" {
		base = strings.ReplaceAll(base, norm.NFC.String(n.StripToken), "")
	}
	return norm.NFC.String(base + n.Suffix + utils.ExtensionFor(n.Format))
}

// OutputPath joins dir and OutputName.
func (n Naming) OutputPath(dir, inputPath string) string {
	return filepath.Join(dir, n.OutputName(inputPath))
}
