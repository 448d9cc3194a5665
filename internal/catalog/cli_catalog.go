package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/githubcli"
	"github.com/temirov/reauthor/internal/repository"
)

// RepositoryLister is the githubcli.Client capability used by GitHubCLICatalog.
type RepositoryLister interface {
	ListUserRepositories(executionContext context.Context, account string) ([]githubcli.RemoteRepository, error)
}

// GitHubCLICatalog lists repositories through gh, reusing its authentication.
type GitHubCLICatalog struct {
	lister RepositoryLister
	filter Filter
	logger *zap.Logger
}

// NewGitHubCLICatalog constructs a catalog backed by lister.
func NewGitHubCLICatalog(lister RepositoryLister, filter Filter, logger *zap.Logger) *GitHubCLICatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubCLICatalog{lister: lister, filter: filter, logger: logger}
}

// ListRepositories resolves the account through gh api --paginate.
func (catalog *GitHubCLICatalog) ListRepositories(executionContext context.Context, account string) ([]*repository.Handle, error) {
	normalizedAccount, accountError := normalizeAccount(account)
	if accountError != nil {
		return nil, accountError
	}

	remoteRepositories, listError := catalog.lister.ListUserRepositories(executionContext, normalizedAccount)
	if listError != nil {
		return nil, CatalogUnavailableError{Account: normalizedAccount, Cause: listError}
	}

	listed := make([]listedRepository, 0, len(remoteRepositories))
	for _, remoteRepository := range remoteRepositories {
		listed = append(listed, listedRepository{
			name:     remoteRepository.Name,
			sshURL:   remoteRepository.SSHURL,
			fork:     remoteRepository.Fork,
			archived: remoteRepository.Archived,
		})
	}
	return buildHandles(catalog.logger, normalizedAccount, catalog.filter, listed), nil
}
