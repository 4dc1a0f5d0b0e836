package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	directoryResolutionErrorTemplateConstant = "unable to resolve directory %q: %w"
	notDirectoryMessageConstant              = "not a directory"
)

// ErrNotDirectory indicates that a resolved path exists but is not a directory.
var ErrNotDirectory = errors.New(notDirectoryMessageConstant)

// DirectoryResolver turns user-supplied directory arguments into absolute, existing directories.
type DirectoryResolver struct {
	homeExpander *HomeExpander
}

// NewDirectoryResolver constructs a DirectoryResolver; a nil expander uses the operating system home lookup.
func NewDirectoryResolver(homeExpander *HomeExpander) *DirectoryResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &DirectoryResolver{homeExpander: homeExpander}
}

// Resolve trims whitespace, expands "~", and returns the absolute path of an existing directory.
// Empty input resolves to the empty string so callers can fall back to their own default.
func (resolver *DirectoryResolver) Resolve(candidatePath string) (string, error) {
	trimmedCandidate := strings.TrimSpace(candidatePath)
	if len(trimmedCandidate) == 0 {
		return "", nil
	}

	expandedCandidate := resolver.homeExpander.Expand(trimmedCandidate)
	absolutePath, absoluteError := filepath.Abs(expandedCandidate)
	if absoluteError != nil {
		return "", fmt.Errorf(directoryResolutionErrorTemplateConstant, candidatePath, absoluteError)
	}

	fileInformation, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(directoryResolutionErrorTemplateConstant, candidatePath, statError)
	}
	if !fileInformation.IsDir() {
		return "", fmt.Errorf(directoryResolutionErrorTemplateConstant, candidatePath, ErrNotDirectory)
	}

	return absolutePath, nil
}
