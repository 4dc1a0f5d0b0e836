package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant      = "~"
	forwardSlashByteConstant = '/'
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading "~" in user-supplied paths with the home directory.
// The provider is consulted at most once per expander.
type HomeExpander struct {
	homeDirectory func() (string, error)
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectory: sync.OnceValues(func() (string, error) {
		return provider()
	})}
}

// Expand resolves "~" and "~/..." against the home directory. "~user" forms and every path
// seen while the home directory is unavailable are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil {
		return candidatePath
	}
	remainder, hasTilde := strings.CutPrefix(candidatePath, tildeSymbolConstant)
	if !hasTilde {
		return candidatePath
	}
	if len(remainder) > 0 && !isPathSeparator(remainder[0]) {
		return candidatePath
	}

	homeDirectory, homeDirectoryError := expander.homeDirectory()
	if homeDirectoryError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, remainder)
}

func isPathSeparator(character byte) bool {
	return character == forwardSlashByteConstant || os.IsPathSeparator(character)
}
