package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/reauthor/internal/catalog"
	"github.com/temirov/reauthor/internal/history"
	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/repository"
)

const (
	logFieldRepositoryConstant           = "repository"
	logFieldFieldConstant                = "field"
	logFieldOldValueConstant             = "old_value"
	logFieldNewValueConstant             = "new_value"
	logFieldOutcomeConstant              = "outcome"
	logFieldAccountConstant              = "account"
	logFieldCountConstant                = "count"
	cloneLogMessageConstant              = "working copy ready"
	renameRequestedLogMessageConstant    = "rewrite requested"
	renameFailedLogMessageConstant       = "rewrite failed"
	noObservedEffectLogMessageConstant   = "rewrite had no observed effect"
	catalogResolvedLogMessageConstant    = "repositories listed"
	pushFailedLogMessageConstant         = "push failed"
	cloneSkippedTemplateConstant         = "Skipping %s: %v"
	renameFailedTemplateConstant         = "Rewrite of %s in %s failed: %v"
	bulkApplyDeclinedTemplateConstant    = "Kept %s %q unchanged"
	noRepositoriesTemplateConstant       = "No repositories found for %s"
	noRepositoriesClonedTemplateConstant = "No repository of %s could be cloned"
	pushFailedTemplateConstant           = "Push of %s failed: %v"
	pushSkippedTemplateConstant          = "Push of %s skipped"
)

// History is the subset of history.Client the workflow drives.
type History interface {
	Clone(executionContext context.Context, handle *repository.Handle) (history.CloneOutcome, error)
	ListAuthors(executionContext context.Context, handle *repository.Handle) ([]identity.Authorship, error)
	RenameAuthor(executionContext context.Context, handle *repository.Handle, oldName string, newName string) error
	RenameEmail(executionContext context.Context, handle *repository.Handle, oldEmail string, newEmail string) error
	Push(executionContext context.Context, handle *repository.Handle) error
}

// Configuration controls workflow behaviour.
type Configuration struct {
	AutoPush bool
}

// Dependencies wires collaborators into the Workflow.
type Dependencies struct {
	History  History
	Catalog  catalog.Catalog
	Operator Operator
	Reporter Reporter
	Logger   *zap.Logger
}

// Summary is the final state of one repository. Unconfirmed lists rewrites
// whose old value was still listed afterwards.
type Summary struct {
	Handle        *repository.Handle
	RenamedNames  []string
	RenamedEmails []string
	Authors       []identity.Authorship
	Unconfirmed   []MutationNoObservedEffectError
	Pushed        bool
}

// Workflow runs the list, rewrite and verify cycle in single-repository and
// all-repositories modes.
type Workflow struct {
	configuration Configuration
	history       History
	catalog       catalog.Catalog
	operator      Operator
	reporter      Reporter
	logger        *zap.Logger
}

// NewWorkflow validates dependencies and constructs a Workflow.
func NewWorkflow(configuration Configuration, dependencies Dependencies) (*Workflow, error) {
	if dependencies.History == nil {
		return nil, ErrHistoryNotConfigured
	}
	if dependencies.Operator == nil {
		return nil, ErrOperatorNotConfigured
	}

	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = silentReporter{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Workflow{
		configuration: configuration,
		history:       dependencies.History,
		catalog:       dependencies.Catalog,
		operator:      dependencies.Operator,
		reporter:      reporter,
		logger:        logger,
	}, nil
}

// RunSingle reconciles one repository: a names loop, an emails loop and an
// optional push. The summary is rendered before returning. A rejected push
// is returned as the error alongside the summary.
func (workflow *Workflow) RunSingle(executionContext context.Context, handle *repository.Handle) (Summary, error) {
	summary := Summary{Handle: handle}
	if handle == nil {
		return summary, history.ErrHandleRequired
	}

	if cloneError := workflow.clone(executionContext, handle); cloneError != nil {
		return summary, cloneError
	}

	authorships, listError := workflow.history.ListAuthors(executionContext, handle)
	if listError != nil {
		return summary, listError
	}

	var unconfirmed []MutationNoObservedEffectError
	for _, field := range []identity.Field{identity.FieldName, identity.FieldEmail} {
		updatedAuthorships, fieldUnconfirmed, loopError := workflow.renameLoop(executionContext, handle, field, authorships)
		if loopError != nil {
			return summary, loopError
		}
		authorships = updatedAuthorships
		unconfirmed = append(unconfirmed, fieldUnconfirmed...)
	}

	pushed, pushError := workflow.pushWhenApproved(executionContext, handle)
	if pushError != nil && !isPushRejection(pushError) {
		return summary, pushError
	}

	summary = buildSummary(handle, authorships, unconfirmed, pushed)
	workflow.reporter.ShowSummary(summary)
	return summary, pushError
}

func (workflow *Workflow) renameLoop(executionContext context.Context, handle *repository.Handle, field identity.Field, authorships []identity.Authorship) ([]identity.Authorship, []MutationNoObservedEffectError, error) {
	var unconfirmed []MutationNoObservedEffectError
	for {
		workflow.reporter.ShowAuthorship(handle.Name(), authorships)

		proceed, decisionError := workflow.operator.ContinueRenaming(field, handle.Name())
		if decisionError != nil {
			return authorships, unconfirmed, decisionError
		}
		if !proceed {
			return authorships, unconfirmed, nil
		}

		request, requestError := workflow.operator.RenamePair(field, authorships)
		if requestError != nil {
			return authorships, unconfirmed, requestError
		}

		outcome, updatedAuthorships, applyError := workflow.apply(executionContext, handle, request, true)
		if applyError != nil {
			return authorships, unconfirmed, applyError
		}
		if outcome.Unobserved() {
			unconfirmed = append(unconfirmed, noObservedEffect(handle, request))
		}
		authorships = updatedAuthorships
	}
}

// RunAll reconciles every repository of account through a shared menu of
// distinct names and emails. Each selected change is applied to every cloned
// repository, a no-op where the old value is absent. Push rejections are
// reported per repository and returned joined after all repositories were
// handled.
func (workflow *Workflow) RunAll(executionContext context.Context, account string) ([]Summary, error) {
	if workflow.catalog == nil {
		return nil, ErrCatalogNotConfigured
	}

	handles, catalogError := workflow.resolveRepositories(executionContext, account)
	if catalogError != nil {
		return nil, catalogError
	}
	if len(handles) == 0 {
		workflow.reporter.Notice(fmt.Sprintf(noRepositoriesTemplateConstant, account))
		return nil, nil
	}

	clonedHandles := make([]*repository.Handle, 0, len(handles))
	for _, handle := range handles {
		if cloneError := workflow.clone(executionContext, handle); cloneError != nil {
			if contextError := executionContext.Err(); contextError != nil {
				return nil, contextError
			}
			workflow.reporter.Warn(fmt.Sprintf(cloneSkippedTemplateConstant, handle.Name(), cloneError))
			continue
		}
		clonedHandles = append(clonedHandles, handle)
	}
	if len(clonedHandles) == 0 {
		workflow.reporter.Notice(fmt.Sprintf(noRepositoriesClonedTemplateConstant, account))
		return nil, nil
	}

	authorshipsByHandle := make([][]identity.Authorship, len(clonedHandles))
	for handleIndex, handle := range clonedHandles {
		authorships, listError := workflow.history.ListAuthors(executionContext, handle)
		if listError != nil {
			return nil, listError
		}
		authorshipsByHandle[handleIndex] = authorships
	}

	unconfirmedByHandle := make([][]MutationNoObservedEffectError, len(clonedHandles))
	if menuError := workflow.bulkRenameLoop(executionContext, clonedHandles, authorshipsByHandle, unconfirmedByHandle); menuError != nil {
		return nil, menuError
	}

	for handleIndex, handle := range clonedHandles {
		workflow.reporter.ShowAuthorship(handle.Name(), authorshipsByHandle[handleIndex])
	}

	summaries := make([]Summary, 0, len(clonedHandles))
	var pushErrors []error
	for handleIndex, handle := range clonedHandles {
		pushed, pushError := workflow.pushWhenApproved(executionContext, handle)
		if pushError != nil {
			if !isPushRejection(pushError) {
				return summaries, pushError
			}
			pushErrors = append(pushErrors, pushError)
		}
		summary := buildSummary(handle, authorshipsByHandle[handleIndex], unconfirmedByHandle[handleIndex], pushed)
		workflow.reporter.ShowSummary(summary)
		summaries = append(summaries, summary)
	}
	return summaries, errors.Join(pushErrors...)
}

func (workflow *Workflow) bulkRenameLoop(executionContext context.Context, handles []*repository.Handle, authorshipsByHandle [][]identity.Authorship, unconfirmedByHandle [][]MutationNoObservedEffectError) error {
	repositoryNames := make([]string, 0, len(handles))
	for _, handle := range handles {
		repositoryNames = append(repositoryNames, handle.Name())
	}

	for {
		menu := BuildMenu(identity.Union(authorshipsByHandle...))
		selection, selectionError := workflow.operator.ChooseTarget(menu)
		if selectionError != nil {
			return selectionError
		}
		if selection.Quit {
			return nil
		}

		replacement, replacementError := workflow.operator.ReplacementValue(selection)
		if replacementError != nil {
			return replacementError
		}
		request := RenameRequest{Field: selection.Field, OldValue: selection.Value, NewValue: replacement}

		approved, approvalError := workflow.operator.ConfirmBulkApply(request, repositoryNames)
		if approvalError != nil {
			return approvalError
		}
		if !approved {
			workflow.reporter.Notice(fmt.Sprintf(bulkApplyDeclinedTemplateConstant, request.Field, request.OldValue))
			continue
		}

		for handleIndex, handle := range handles {
			// Repositories that never listed the old value keep an empty audit log.
			presentBefore := identity.Contains(authorshipsByHandle[handleIndex], request.Field, request.OldValue)
			outcome, updatedAuthorships, applyError := workflow.apply(executionContext, handle, request, presentBefore)
			if applyError != nil {
				return applyError
			}
			if outcome.Unobserved() {
				unconfirmedByHandle[handleIndex] = append(unconfirmedByHandle[handleIndex], noObservedEffect(handle, request))
			}
			authorshipsByHandle[handleIndex] = updatedAuthorships
		}
	}
}

// apply requests the rewrite, records it in the handle's audit log when the
// request succeeded and record is set, then re-lists authors to verify the
// effect. Rewrite failures are reported and do not stop the workflow; a
// failed listing does.
func (workflow *Workflow) apply(executionContext context.Context, handle *repository.Handle, request RenameRequest, record bool) (MutationOutcome, []identity.Authorship, error) {
	var renameError error
	switch request.Field {
	case identity.FieldEmail:
		renameError = workflow.history.RenameEmail(executionContext, handle, request.OldValue, request.NewValue)
	default:
		renameError = workflow.history.RenameAuthor(executionContext, handle, request.OldValue, request.NewValue)
	}

	requestFields := []zap.Field{
		zap.String(logFieldRepositoryConstant, handle.Name()),
		zap.String(logFieldFieldConstant, string(request.Field)),
		zap.String(logFieldOldValueConstant, request.OldValue),
		zap.String(logFieldNewValueConstant, request.NewValue),
	}

	var outcome MutationOutcome
	if renameError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return outcome, nil, contextError
		}
		workflow.logger.Warn(renameFailedLogMessageConstant, append(requestFields, zap.Error(renameError))...)
		workflow.reporter.Warn(fmt.Sprintf(renameFailedTemplateConstant, request.Field, handle.Name(), renameError))
	} else {
		outcome.Requested = true
		if record {
			recordRename(handle, request)
		}
		workflow.logger.Info(renameRequestedLogMessageConstant, requestFields...)
	}

	authorships, listError := workflow.history.ListAuthors(executionContext, handle)
	if listError != nil {
		return outcome, nil, listError
	}

	outcome.Confirmed = request.OldValue == request.NewValue || !identity.Contains(authorships, request.Field, request.OldValue)
	if outcome.Unobserved() {
		effectError := noObservedEffect(handle, request)
		workflow.logger.Warn(noObservedEffectLogMessageConstant, append(requestFields, zap.Error(effectError))...)
		workflow.reporter.Warn(effectError.Error())
	}
	return outcome, authorships, nil
}

func (workflow *Workflow) clone(executionContext context.Context, handle *repository.Handle) error {
	outcome, cloneError := workflow.history.Clone(executionContext, handle)
	if cloneError != nil {
		return cloneError
	}
	workflow.logger.Info(cloneLogMessageConstant,
		zap.String(logFieldRepositoryConstant, handle.Name()),
		zap.String(logFieldOutcomeConstant, outcome.String()),
	)
	return nil
}

func (workflow *Workflow) resolveRepositories(executionContext context.Context, account string) ([]*repository.Handle, error) {
	for {
		handles, listError := workflow.catalog.ListRepositories(executionContext, account)
		if listError == nil {
			workflow.logger.Info(catalogResolvedLogMessageConstant,
				zap.String(logFieldAccountConstant, account),
				zap.Int(logFieldCountConstant, len(handles)),
			)
			return handles, nil
		}

		var unavailableError catalog.CatalogUnavailableError
		if !errors.As(listError, &unavailableError) || executionContext.Err() != nil {
			return nil, listError
		}
		workflow.reporter.Warn(listError.Error())

		retry, decisionError := workflow.operator.RetryCatalog(account, listError)
		if decisionError != nil {
			return nil, decisionError
		}
		if !retry {
			return nil, listError
		}
	}
}

// pushWhenApproved pushes when AutoPush is set or the operator approves.
func (workflow *Workflow) pushWhenApproved(executionContext context.Context, handle *repository.Handle) (bool, error) {
	approved := workflow.configuration.AutoPush
	if !approved {
		decision, decisionError := workflow.operator.ConfirmPush(handle.Name())
		if decisionError != nil {
			return false, decisionError
		}
		approved = decision
	}
	if !approved {
		workflow.reporter.Notice(fmt.Sprintf(pushSkippedTemplateConstant, handle.Name()))
		return false, nil
	}

	if pushError := workflow.history.Push(executionContext, handle); pushError != nil {
		workflow.logger.Warn(pushFailedLogMessageConstant, zap.String(logFieldRepositoryConstant, handle.Name()), zap.Error(pushError))
		workflow.reporter.Warn(fmt.Sprintf(pushFailedTemplateConstant, handle.Name(), pushError))
		return false, pushError
	}
	return true, nil
}

func isPushRejection(err error) bool {
	var rejectedError history.PushRejectedError
	return errors.As(err, &rejectedError)
}

func recordRename(handle *repository.Handle, request RenameRequest) {
	if request.Field == identity.FieldEmail {
		handle.RecordRenamedEmail(request.NewValue)
		return
	}
	handle.RecordRenamedName(request.NewValue)
}

func noObservedEffect(handle *repository.Handle, request RenameRequest) MutationNoObservedEffectError {
	return MutationNoObservedEffectError{Repository: handle.Name(), Field: request.Field, OldValue: request.OldValue}
}

func buildSummary(handle *repository.Handle, authorships []identity.Authorship, unconfirmed []MutationNoObservedEffectError, pushed bool) Summary {
	return Summary{
		Handle:        handle,
		RenamedNames:  handle.RenamedNames(),
		RenamedEmails: handle.RenamedEmails(),
		Authors:       authorships,
		Unconfirmed:   unconfirmed,
		Pushed:        pushed,
	}
}

type silentReporter struct{}

func (silentReporter) ShowAuthorship(string, []identity.Authorship) {}

func (silentReporter) ShowSummary(Summary) {}

func (silentReporter) Warn(string) {}

func (silentReporter) Notice(string) {}
