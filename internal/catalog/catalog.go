package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/repository"
)

const (
	catalogUnavailableTemplateConstant = "repository catalog unavailable for %q: %v"
	accountRequiredMessageConstant     = "account required"
	logMessageSkippedNoSSHURLConstant  = "skipping repository without ssh url"
	logMessageSkippedInvalidConstant   = "skipping repository with invalid metadata"
	logMessageSkippedFilteredConstant  = "skipping filtered repository"
	logMessageListedConstant           = "repository catalog resolved"
	logFieldAccountConstant            = "account"
	logFieldRepositoryConstant         = "repository"
	logFieldReasonConstant             = "reason"
	logFieldCountConstant              = "count"
	filterReasonForkConstant           = "fork"
	filterReasonArchivedConstant       = "archived"
)

// ErrAccountRequired indicates an empty account identifier.
var ErrAccountRequired = errors.New(accountRequiredMessageConstant)

// Catalog lists the repositories of an account in listing order.
type Catalog interface {
	ListRepositories(executionContext context.Context, account string) ([]*repository.Handle, error)
}

// CatalogUnavailableError reports that the listing could not be obtained.
// Operators may retry or abort when they see it.
type CatalogUnavailableError struct {
	Account string
	Cause   error
}

// Error describes the failure.
func (unavailableError CatalogUnavailableError) Error() string {
	return fmt.Sprintf(catalogUnavailableTemplateConstant, unavailableError.Account, unavailableError.Cause)
}

// Unwrap exposes the underlying cause.
func (unavailableError CatalogUnavailableError) Unwrap() error {
	return unavailableError.Cause
}

// Filter excludes categories of repositories from a listing.
type Filter struct {
	SkipForks    bool
	SkipArchived bool
}

// listedRepository is the source-independent shape of one listing entry.
type listedRepository struct {
	name     string
	sshURL   string
	fork     bool
	archived bool
}

func normalizeAccount(account string) (string, error) {
	trimmedAccount := strings.TrimSpace(account)
	if len(trimmedAccount) == 0 {
		return "", CatalogUnavailableError{Account: account, Cause: ErrAccountRequired}
	}
	return trimmedAccount, nil
}

// buildHandles converts listing entries to handles keyed by SSH URL,
// preserving order and logging every entry it leaves out.
func buildHandles(logger *zap.Logger, account string, filter Filter, repositories []listedRepository) []*repository.Handle {
	handles := make([]*repository.Handle, 0, len(repositories))
	for _, listed := range repositories {
		repositoryField := zap.String(logFieldRepositoryConstant, listed.name)
		switch {
		case filter.SkipForks && listed.fork:
			logger.Info(logMessageSkippedFilteredConstant, repositoryField, zap.String(logFieldReasonConstant, filterReasonForkConstant))
			continue
		case filter.SkipArchived && listed.archived:
			logger.Info(logMessageSkippedFilteredConstant, repositoryField, zap.String(logFieldReasonConstant, filterReasonArchivedConstant))
			continue
		case len(strings.TrimSpace(listed.sshURL)) == 0:
			logger.Warn(logMessageSkippedNoSSHURLConstant, repositoryField)
			continue
		}

		handle, handleError := repository.NewHandle(listed.name, listed.sshURL)
		if handleError != nil {
			logger.Warn(logMessageSkippedInvalidConstant, repositoryField, zap.Error(handleError))
			continue
		}
		handles = append(handles, handle)
	}

	logger.Info(logMessageListedConstant, zap.String(logFieldAccountConstant, account), zap.Int(logFieldCountConstant, len(handles)))
	return handles
}
