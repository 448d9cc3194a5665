package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v32/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/reauthor/internal/repository"
)

const (
	defaultPageSizeConstant       = 100
	urlPathSeparatorConstant      = "/"
	logMessagePageFetchedConstant = "repository page fetched"
	logFieldPageConstant          = "page"
)

// APIConfiguration configures an APICatalog.
type APIConfiguration struct {
	// BaseURL overrides the REST endpoint, e.g. for GitHub Enterprise.
	BaseURL  string
	Token    string
	PageSize int
	Filter   Filter
}

// APICatalog lists repositories through the GitHub REST API.
type APICatalog struct {
	client   *github.Client
	pageSize int
	filter   Filter
	logger   *zap.Logger
}

// NewAPICatalog constructs a catalog. A token is optional; anonymous requests
// are subject to lower rate limits and see only public repositories.
func NewAPICatalog(configuration APIConfiguration, logger *zap.Logger) (*APICatalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var httpClient *http.Client
	if token := strings.TrimSpace(configuration.Token); len(token) > 0 {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	client := github.NewClient(httpClient)

	if baseURL := strings.TrimSpace(configuration.BaseURL); len(baseURL) > 0 {
		if !strings.HasSuffix(baseURL, urlPathSeparatorConstant) {
			baseURL += urlPathSeparatorConstant
		}
		parsedBaseURL, parseError := url.Parse(baseURL)
		if parseError != nil {
			return nil, parseError
		}
		client.BaseURL = parsedBaseURL
	}

	pageSize := configuration.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSizeConstant
	}

	return &APICatalog{client: client, pageSize: pageSize, filter: configuration.Filter, logger: logger}, nil
}

// ListRepositories fetches every page of the account's repositories.
func (catalog *APICatalog) ListRepositories(executionContext context.Context, account string) ([]*repository.Handle, error) {
	normalizedAccount, accountError := normalizeAccount(account)
	if accountError != nil {
		return nil, accountError
	}

	listOptions := &github.RepositoryListOptions{ListOptions: github.ListOptions{PerPage: catalog.pageSize, Page: 1}}
	listed := []listedRepository{}
	for {
		repositories, response, listError := catalog.client.Repositories.List(executionContext, normalizedAccount, listOptions)
		if listError != nil {
			return nil, CatalogUnavailableError{Account: normalizedAccount, Cause: listError}
		}
		catalog.logger.Debug(logMessagePageFetchedConstant, zap.String(logFieldAccountConstant, normalizedAccount), zap.Int(logFieldPageConstant, listOptions.Page), zap.Int(logFieldCountConstant, len(repositories)))

		for _, remoteRepository := range repositories {
			listed = append(listed, listedRepository{
				name:     remoteRepository.GetName(),
				sshURL:   remoteRepository.GetSSHURL(),
				fork:     remoteRepository.GetFork(),
				archived: remoteRepository.GetArchived(),
			})
		}

		if response == nil || response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return buildHandles(catalog.logger, normalizedAccount, catalog.filter, listed), nil
}
