package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reauthor/cmd/cli"
	"github.com/temirov/reauthor/cmd/cli/rewrite"
)

const (
	testToolPathConstant             = "/usr/local/bin/git-filter-repo"
	testConfigurationContentConstant = `common:
  log_level: warn
rewrite:
  staging_directory: /srv/reauthor/staging
  rewrite_tool:
    download_timeout: 5s
  catalog:
    source: gh
    skip_forks: true
`
)

func newTestApplication(testInstance *testing.T) (*cli.Application, *bytes.Buffer) {
	testInstance.Helper()
	application := cli.NewApplicationWithDependencies(rewrite.Dependencies{
		LookPath: func(string) (string, error) { return testToolPathConstant, nil },
	})
	output := &bytes.Buffer{}
	application.RootCommand().SetOut(output)
	application.RootCommand().SetErr(output)
	return application, output
}

func TestEmbeddedConfigurationMatchesDefaults(testInstance *testing.T) {
	content, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(content)))

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration, viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())))

	require.Equal(testInstance, rewrite.DefaultConfiguration(), configuration.Rewrite)
	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
}

func TestApplicationConfigurationPrecedence(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), "config.yaml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	testCases := []struct {
		name        string
		arguments   []string
		environment map[string]string
		verify      func(*testing.T, cli.ApplicationConfiguration)
	}{
		{
			name:      "embedded_defaults",
			arguments: []string{"bootstrap"},
			verify: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, rewrite.DefaultConfiguration(), configuration.Rewrite)
				require.Equal(testInstance, "console", configuration.Common.LogFormat)
			},
		},
		{
			name:      "configuration_file",
			arguments: []string{"--config", configurationPath, "bootstrap"},
			verify: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, "warn", configuration.Common.LogLevel)
				require.Equal(testInstance, "/srv/reauthor/staging", configuration.Rewrite.StagingDirectory)
				require.Equal(testInstance, 5*time.Second, configuration.Rewrite.RewriteTool.DownloadTimeout)
				require.Equal(testInstance, rewrite.CatalogSourceGitHubCLI, configuration.Rewrite.Catalog.Source)
				require.True(testInstance, configuration.Rewrite.Catalog.SkipForks)
				require.Equal(testInstance, 100, configuration.Rewrite.Catalog.PageSize)
			},
		},
		{
			name:        "environment_over_file",
			arguments:   []string{"--config", configurationPath, "bootstrap"},
			environment: map[string]string{"REAUTHOR_REWRITE_PUSH": "true", "REAUTHOR_REWRITE_STAGING_DIRECTORY": "/var/tmp/staging"},
			verify: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.True(testInstance, configuration.Rewrite.Push)
				require.Equal(testInstance, "/var/tmp/staging", configuration.Rewrite.StagingDirectory)
			},
		},
		{
			name:      "flags_over_everything",
			arguments: []string{"--config", configurationPath, "--log-level", "error", "--log-format", "structured", "bootstrap"},
			verify: func(testInstance *testing.T, configuration cli.ApplicationConfiguration) {
				require.Equal(testInstance, "error", configuration.Common.LogLevel)
				require.Equal(testInstance, "structured", configuration.Common.LogFormat)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for environmentKey, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentKey, environmentValue)
			}
			application, output := newTestApplication(testInstance)
			application.RootCommand().SetArgs(testCase.arguments)

			require.NoError(testInstance, application.Execute())
			require.Contains(testInstance, output.String(), "git-filter-repo ready at "+testToolPathConstant)
			testCase.verify(testInstance, application.Configuration())
		})
	}
}

func TestApplicationRejectsUnknownLogFormat(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)
	application.RootCommand().SetArgs([]string{"--log-format", "xml", "bootstrap"})

	require.ErrorContains(testInstance, application.Execute(), "unable to create logger")
}

func TestApplicationRootCommandListsSubcommands(testInstance *testing.T) {
	application, output := newTestApplication(testInstance)
	application.RootCommand().SetArgs([]string{})

	require.NoError(testInstance, application.Execute())
	for _, commandName := range []string{"repo", "account", "bootstrap"} {
		require.Contains(testInstance, output.String(), commandName)
	}
}
