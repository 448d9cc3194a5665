package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/reauthor/internal/utils/path"
)

const (
	testHomeDirectoryConstant    = "/home/operator"
	testWorkingDirectoryConstant = "/work"
)

func TestDirectoryResolverResolve(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configured    string
		expectedPath  string
		expectedError error
	}{
		{name: "relative", configured: "fresh-repos/repo-update-working_dir", expectedPath: filepath.Join(testWorkingDirectoryConstant, "fresh-repos", "repo-update-working_dir")},
		{name: "home_prefix", configured: "~/staging", expectedPath: filepath.Join(testHomeDirectoryConstant, "staging")},
		{name: "bare_home", configured: " ~ ", expectedPath: testHomeDirectoryConstant},
		{name: "absolute_cleaned", configured: "/tmp/a/../b", expectedPath: "/tmp/b"},
		{name: "other_user_left_relative", configured: "~other/dir", expectedPath: filepath.Join(testWorkingDirectoryConstant, "~other", "dir")},
		{name: "empty", configured: "   ", expectedError: pathutils.ErrEmptyDirectory},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver := pathutils.NewDirectoryResolver(
				pathutils.NewHomeExpanderWithProvider(func() (string, error) { return testHomeDirectoryConstant, nil }),
				func() (string, error) { return testWorkingDirectoryConstant, nil },
			)

			resolvedPath, resolveError := resolver.Resolve(testCase.configured)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedPath, resolvedPath)
		})
	}
}

func TestHomeExpanderKeepsPathWhenLookupFails(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) { return "", errors.New("no home") })
	require.Equal(testInstance, "~/staging", expander.Expand("~/staging"))
}
