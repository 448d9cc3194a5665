package rewrite

import (
	"strings"
	"time"

	"github.com/temirov/reauthor/internal/bootstrap"
)

const (
	configurationStagingDirectoryKeyConstant = "staging_directory"
	configurationPushKeyConstant             = "push"
	configurationPlanKeyConstant             = "plan"
	rewriteToolConfigurationKeyConstant      = "rewrite_tool"
	rewriteToolPathKeyConstant               = "path"
	rewriteToolInstallDirectoryKeyConstant   = "install_directory"
	rewriteToolDownloadURLKeyConstant        = "download_url"
	rewriteToolDownloadTimeoutKeyConstant    = "download_timeout"
	catalogConfigurationKeyConstant          = "catalog"
	catalogSourceKeyConstant                 = "source"
	catalogAPIURLKeyConstant                 = "api_url"
	catalogPageSizeKeyConstant               = "page_size"
	catalogSkipForksKeyConstant              = "skip_forks"
	catalogSkipArchivedKeyConstant           = "skip_archived"
	defaultStagingDirectoryConstant          = "./fresh-repos/repo-update-working_dir"
	defaultInstallDirectoryConstant          = "."
	defaultDownloadTimeoutConstant           = 30 * time.Second
	defaultCatalogAPIURLConstant             = "https://api.github.com/"
	defaultCatalogPageSizeConstant           = 100
	configurationKeySeparatorConstant        = "."
)

// CatalogSource selects how account repositories are listed.
type CatalogSource string

// Supported catalog sources.
const (
	CatalogSourceAPI       CatalogSource = CatalogSource("api")
	CatalogSourceGitHubCLI CatalogSource = CatalogSource("gh")
)

// Configuration captures settings shared by the repo, account and bootstrap commands.
type Configuration struct {
	StagingDirectory string                   `mapstructure:"staging_directory"`
	Push             bool                     `mapstructure:"push"`
	Plan             string                   `mapstructure:"plan"`
	RewriteTool      RewriteToolConfiguration `mapstructure:"rewrite_tool"`
	Catalog          CatalogConfiguration     `mapstructure:"catalog"`
}

// RewriteToolConfiguration locates or installs git-filter-repo.
type RewriteToolConfiguration struct {
	Path             string        `mapstructure:"path"`
	InstallDirectory string        `mapstructure:"install_directory"`
	DownloadURL      string        `mapstructure:"download_url"`
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
}

// CatalogConfiguration describes how account repositories are listed.
type CatalogConfiguration struct {
	Source       CatalogSource `mapstructure:"source"`
	APIURL       string        `mapstructure:"api_url"`
	PageSize     int           `mapstructure:"page_size"`
	SkipForks    bool          `mapstructure:"skip_forks"`
	SkipArchived bool          `mapstructure:"skip_archived"`
}

// DefaultConfiguration returns baseline values for the rewrite commands.
func DefaultConfiguration() Configuration {
	return Configuration{
		StagingDirectory: defaultStagingDirectoryConstant,
		RewriteTool: RewriteToolConfiguration{
			InstallDirectory: defaultInstallDirectoryConstant,
			DownloadURL:      bootstrap.DefaultDownloadURL,
			DownloadTimeout:  defaultDownloadTimeoutConstant,
		},
		Catalog: CatalogConfiguration{
			Source:   CatalogSourceAPI,
			APIURL:   defaultCatalogAPIURLConstant,
			PageSize: defaultCatalogPageSizeConstant,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	key := func(segments ...string) string {
		return strings.Join(append([]string{rootKey}, segments...), configurationKeySeparatorConstant)
	}
	return map[string]any{
		key(configurationStagingDirectoryKeyConstant):                                    defaults.StagingDirectory,
		key(configurationPushKeyConstant):                                                defaults.Push,
		key(configurationPlanKeyConstant):                                                defaults.Plan,
		key(rewriteToolConfigurationKeyConstant, rewriteToolPathKeyConstant):             defaults.RewriteTool.Path,
		key(rewriteToolConfigurationKeyConstant, rewriteToolInstallDirectoryKeyConstant): defaults.RewriteTool.InstallDirectory,
		key(rewriteToolConfigurationKeyConstant, rewriteToolDownloadURLKeyConstant):      defaults.RewriteTool.DownloadURL,
		key(rewriteToolConfigurationKeyConstant, rewriteToolDownloadTimeoutKeyConstant):  defaults.RewriteTool.DownloadTimeout.String(),
		key(catalogConfigurationKeyConstant, catalogSourceKeyConstant):                   string(defaults.Catalog.Source),
		key(catalogConfigurationKeyConstant, catalogAPIURLKeyConstant):                   defaults.Catalog.APIURL,
		key(catalogConfigurationKeyConstant, catalogPageSizeKeyConstant):                 defaults.Catalog.PageSize,
		key(catalogConfigurationKeyConstant, catalogSkipForksKeyConstant):                defaults.Catalog.SkipForks,
		key(catalogConfigurationKeyConstant, catalogSkipArchivedKeyConstant):             defaults.Catalog.SkipArchived,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	defaults := DefaultConfiguration()
	sanitized.StagingDirectory = strings.TrimSpace(configuration.StagingDirectory)
	if len(sanitized.StagingDirectory) == 0 {
		sanitized.StagingDirectory = defaults.StagingDirectory
	}
	sanitized.Plan = strings.TrimSpace(configuration.Plan)
	sanitized.RewriteTool.Path = strings.TrimSpace(configuration.RewriteTool.Path)
	sanitized.RewriteTool.InstallDirectory = strings.TrimSpace(configuration.RewriteTool.InstallDirectory)
	if len(sanitized.RewriteTool.InstallDirectory) == 0 {
		sanitized.RewriteTool.InstallDirectory = defaults.RewriteTool.InstallDirectory
	}
	if sanitized.RewriteTool.DownloadTimeout <= 0 {
		sanitized.RewriteTool.DownloadTimeout = defaults.RewriteTool.DownloadTimeout
	}
	sanitized.Catalog.Source = CatalogSource(strings.ToLower(strings.TrimSpace(string(configuration.Catalog.Source))))
	if len(sanitized.Catalog.Source) == 0 {
		sanitized.Catalog.Source = defaults.Catalog.Source
	}
	sanitized.Catalog.APIURL = strings.TrimSpace(configuration.Catalog.APIURL)
	return sanitized
}
