package pathutils_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/cmdrun/internal/utils/path"
)

func TestDirectoryResolverResolve(t *testing.T) {
	homeDirectory := t.TempDir()
	projectDirectory := filepath.Join(homeDirectory, "project")
	require.NoError(t, os.MkdirAll(projectDirectory, 0o755))
	regularFile := filepath.Join(homeDirectory, "notes.txt")
	require.NoError(t, os.WriteFile(regularFile, []byte("x"), 0o600))

	resolver := pathutils.NewDirectoryResolver(pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return homeDirectory, nil
	}))

	testCases := []struct {
		name          string
		candidatePath string
		expectedPath  string
		expectedError error
		expectError   bool
	}{
		{name: "Empty", candidatePath: "   ", expectedPath: ""},
		{name: "Absolute", candidatePath: projectDirectory, expectedPath: projectDirectory},
		{name: "HomeRelative", candidatePath: "~/project", expectedPath: projectDirectory},
		{name: "Home", candidatePath: "~", expectedPath: homeDirectory},
		{name: "Missing", candidatePath: filepath.Join(homeDirectory, "missing"), expectedError: os.ErrNotExist, expectError: true},
		{name: "RegularFile", candidatePath: regularFile, expectedError: pathutils.ErrNotDirectory, expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resolvedPath, resolveError := resolver.Resolve(testCase.candidatePath)
			if testCase.expectError {
				require.Error(t, resolveError)
				require.True(t, errors.Is(resolveError, testCase.expectedError))
				return
			}
			require.NoError(t, resolveError)
			require.Equal(t, testCase.expectedPath, resolvedPath)
		})
	}
}

func TestHomeExpanderLeavesUnexpandablePathsAlone(t *testing.T) {
	failingExpander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	require.Equal(t, "~/project", failingExpander.Expand("~/project"))
	require.Equal(t, "~other/project", pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "/home/user", nil
	}).Expand("~other/project"))
	require.Equal(t, "relative", failingExpander.Expand("relative"))
}
