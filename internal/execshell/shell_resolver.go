package execshell

import (
	"fmt"
	"runtime"
)

const (
	bashShellPathConstant               = "/bin/bash"
	zshShellPathConstant                = "/bin/zsh"
	unsupportedPlatformTemplateConstant = "%w: %s"
)

// darwin runs zsh; the remaining Unix-like platforms run bash.
var platformShellPaths = map[string]string{
	"darwin":    zshShellPathConstant,
	"linux":     bashShellPathConstant,
	"freebsd":   bashShellPathConstant,
	"openbsd":   bashShellPathConstant,
	"netbsd":    bashShellPathConstant,
	"dragonfly": bashShellPathConstant,
	"solaris":   bashShellPathConstant,
	"illumos":   bashShellPathConstant,
	"aix":       bashShellPathConstant,
}

// ResolveShell returns the shell designated for the provided GOOS identifier.
func ResolveShell(operatingSystem string) (string, error) {
	shellPath, supported := platformShellPaths[operatingSystem]
	if !supported {
		return "", fmt.Errorf(unsupportedPlatformTemplateConstant, ErrUnsupportedPlatform, operatingSystem)
	}
	return shellPath, nil
}

// ResolveHostShell returns the shell designated for the running platform.
func ResolveHostShell() (string, error) {
	return ResolveShell(runtime.GOOS)
}
