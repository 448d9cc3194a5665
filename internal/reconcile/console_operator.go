package reconcile

import (
	"fmt"
	"strings"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	continueRenamingPromptTemplateConstant   = "Change one more %s in %s?"
	choosePresentValuePromptTemplateConstant = "Which %s should change?"
	askOldValuePromptTemplateConstant        = "Current %s to replace:"
	askNewValuePromptTemplateConstant        = "Replace %s %q with:"
	chooseTargetPromptConstant               = "Select a name or email to replace across every repository:"
	bulkApplyPromptTemplateConstant          = "Replace %s %q with %q in %d repositories (%s)?"
	pushPromptTemplateConstant               = "Force push the rewritten history of %s to origin?"
	retryCatalogPromptTemplateConstant       = "Listing repositories of %s failed: %v. Try again?"
	repositoryListSeparatorConstant          = ", "
)

// Prompter is the console surface ConsoleOperator needs.
type Prompter interface {
	Confirm(prompt string) (bool, error)
	Choose(prompt string, options []string) (int, error)
	Ask(prompt string) (string, error)
}

// ConsoleOperator answers workflow decisions by asking a person.
type ConsoleOperator struct {
	prompter Prompter
}

// NewConsoleOperator constructs a ConsoleOperator.
func NewConsoleOperator(prompter Prompter) *ConsoleOperator {
	return &ConsoleOperator{prompter: prompter}
}

// ContinueRenaming asks whether another value should change.
func (operator *ConsoleOperator) ContinueRenaming(field identity.Field, repositoryName string) (bool, error) {
	return operator.prompter.Confirm(fmt.Sprintf(continueRenamingPromptTemplateConstant, field, repositoryName))
}

// RenamePair offers the values currently present for field and asks for the
// replacement. Free text is requested when the history has no such values.
func (operator *ConsoleOperator) RenamePair(field identity.Field, authorships []identity.Authorship) (RenameRequest, error) {
	oldValue, oldValueError := operator.askOldValue(field, authorships)
	if oldValueError != nil {
		return RenameRequest{}, oldValueError
	}
	newValue, newValueError := operator.prompter.Ask(fmt.Sprintf(askNewValuePromptTemplateConstant, field, oldValue))
	if newValueError != nil {
		return RenameRequest{}, newValueError
	}
	return RenameRequest{Field: field, OldValue: oldValue, NewValue: newValue}, nil
}

func (operator *ConsoleOperator) askOldValue(field identity.Field, authorships []identity.Authorship) (string, error) {
	presentValues := fieldValues(field, authorships)
	if len(presentValues) == 0 {
		return operator.prompter.Ask(fmt.Sprintf(askOldValuePromptTemplateConstant, field))
	}
	selectedIndex, chooseError := operator.prompter.Choose(fmt.Sprintf(choosePresentValuePromptTemplateConstant, field), presentValues)
	if chooseError != nil {
		return "", chooseError
	}
	return presentValues[selectedIndex], nil
}

// ChooseTarget presents the menu and returns the selected entry.
func (operator *ConsoleOperator) ChooseTarget(menu []MenuEntry) (Selection, error) {
	labels := make([]string, 0, len(menu))
	for _, entry := range menu {
		labels = append(labels, entry.Label)
	}
	selectedIndex, chooseError := operator.prompter.Choose(chooseTargetPromptConstant, labels)
	if chooseError != nil {
		return Selection{}, chooseError
	}
	return menu[selectedIndex].Selection, nil
}

// ReplacementValue asks for the new value of the selected entry.
func (operator *ConsoleOperator) ReplacementValue(target Selection) (string, error) {
	return operator.prompter.Ask(fmt.Sprintf(askNewValuePromptTemplateConstant, target.Field, target.Value))
}

// ConfirmBulkApply asks before rewriting every repository.
func (operator *ConsoleOperator) ConfirmBulkApply(request RenameRequest, repositoryNames []string) (bool, error) {
	return operator.prompter.Confirm(fmt.Sprintf(
		bulkApplyPromptTemplateConstant,
		request.Field,
		request.OldValue,
		request.NewValue,
		len(repositoryNames),
		strings.Join(repositoryNames, repositoryListSeparatorConstant),
	))
}

// ConfirmPush asks before force pushing.
func (operator *ConsoleOperator) ConfirmPush(repositoryName string) (bool, error) {
	return operator.prompter.Confirm(fmt.Sprintf(pushPromptTemplateConstant, repositoryName))
}

// RetryCatalog asks whether to list the account again.
func (operator *ConsoleOperator) RetryCatalog(account string, failure error) (bool, error) {
	return operator.prompter.Confirm(fmt.Sprintf(retryCatalogPromptTemplateConstant, account, failure))
}
