package reconcile

import (
	"fmt"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	quitMenuLabelConstant     = "quit"
	valueMenuTemplateConstant = "%s (%s)"
)

// RenameRequest is one old to new value change of a single field.
type RenameRequest struct {
	Field    identity.Field
	OldValue string
	NewValue string
}

// Selection is an entry picked from the all-repositories menu.
type Selection struct {
	Quit  bool
	Field identity.Field
	Value string
}

// MenuEntry pairs a menu label with the selection it stands for.
type MenuEntry struct {
	Label     string
	Selection Selection
}

// Operator takes every decision of the workflow.
type Operator interface {
	// ContinueRenaming asks whether another value of field should change in repositoryName.
	ContinueRenaming(field identity.Field, repositoryName string) (bool, error)
	// RenamePair supplies the next change for field given the current authorship.
	RenamePair(field identity.Field, authorships []identity.Authorship) (RenameRequest, error)
	// ChooseTarget picks a value from the combined menu, or quit.
	ChooseTarget(menu []MenuEntry) (Selection, error)
	// ReplacementValue supplies the new value for target.
	ReplacementValue(target Selection) (string, error)
	// ConfirmBulkApply approves applying a change to every listed repository.
	ConfirmBulkApply(request RenameRequest, repositoryNames []string) (bool, error)
	// ConfirmPush approves force pushing repositoryName.
	ConfirmPush(repositoryName string) (bool, error)
	// RetryCatalog decides whether to list the account again after failure.
	RetryCatalog(account string, failure error) (bool, error)
}

// BuildMenu lists every distinct name, then every distinct email, then quit.
func BuildMenu(values identity.DistinctValues) []MenuEntry {
	menu := make([]MenuEntry, 0, len(values.Names)+len(values.Emails)+1)
	for _, name := range values.Names {
		menu = append(menu, MenuEntry{
			Label:     fmt.Sprintf(valueMenuTemplateConstant, name, identity.FieldName),
			Selection: Selection{Field: identity.FieldName, Value: name},
		})
	}
	for _, email := range values.Emails {
		menu = append(menu, MenuEntry{
			Label:     fmt.Sprintf(valueMenuTemplateConstant, email, identity.FieldEmail),
			Selection: Selection{Field: identity.FieldEmail, Value: email},
		})
	}
	return append(menu, MenuEntry{Label: quitMenuLabelConstant, Selection: Selection{Quit: true}})
}

func fieldValues(field identity.Field, authorships []identity.Authorship) []string {
	values := identity.Union(authorships)
	if field == identity.FieldEmail {
		return values.Emails
	}
	return values.Names
}
