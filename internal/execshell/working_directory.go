package execshell

import "os"

// WorkingDirectoryResolver supplies the directory used when a request names none.
type WorkingDirectoryResolver interface {
	WorkingDirectory() (string, error)
}

// ProcessWorkingDirectoryResolver reports the working directory of the current process.
type ProcessWorkingDirectoryResolver struct{}

// WorkingDirectory returns os.Getwd.
func (ProcessWorkingDirectoryResolver) WorkingDirectory() (string, error) {
	return os.Getwd()
}

// StaticWorkingDirectoryResolver always reports the same directory.
type StaticWorkingDirectoryResolver string

// WorkingDirectory returns the configured directory.
func (resolver StaticWorkingDirectoryResolver) WorkingDirectory() (string, error) {
	return string(resolver), nil
}
