package reconcile

import (
	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/ui"
)

const (
	renamedNamesLabelConstant          = "names"
	renamedEmailsLabelConstant         = "emails"
	pushedMessageTemplateConstant      = "Pushed rewritten history of %s"
	notPushedMessageTemplateConstant   = "History of %s was not pushed"
	unconfirmedMessageTemplateConstant = "Unconfirmed: %s"
)

// Reporter shows workflow progress to the operator.
type Reporter interface {
	ShowAuthorship(repositoryName string, authorships []identity.Authorship)
	ShowSummary(summary Summary)
	Warn(message string)
	Notice(message string)
}

// ConsoleReporter renders tables and notices through a ui.Notifier.
type ConsoleReporter struct {
	notifier *ui.Notifier
}

// NewConsoleReporter constructs a ConsoleReporter.
func NewConsoleReporter(notifier *ui.Notifier) *ConsoleReporter {
	return &ConsoleReporter{notifier: notifier}
}

// ShowAuthorship renders the authorship table of a repository.
func (reporter *ConsoleReporter) ShowAuthorship(repositoryName string, authorships []identity.Authorship) {
	ui.RenderAuthorship(reporter.notifier.Writer(), repositoryName, authorships)
}

// ShowSummary renders the audit log, the final authorship and the push state.
func (reporter *ConsoleReporter) ShowSummary(summary Summary) {
	repositoryName := summary.Handle.Name()
	writer := reporter.notifier.Writer()
	ui.RenderRenamedValues(writer, repositoryName, renamedNamesLabelConstant, summary.RenamedNames)
	ui.RenderRenamedValues(writer, repositoryName, renamedEmailsLabelConstant, summary.RenamedEmails)
	ui.RenderAuthorship(writer, repositoryName, summary.Authors)
	for _, unconfirmed := range summary.Unconfirmed {
		reporter.notifier.Warning(unconfirmedMessageTemplateConstant, unconfirmed.Error())
	}
	if summary.Pushed {
		reporter.notifier.Success(pushedMessageTemplateConstant, repositoryName)
		return
	}
	reporter.notifier.Notice(notPushedMessageTemplateConstant, repositoryName)
}

// Warn prints a warning line.
func (reporter *ConsoleReporter) Warn(message string) {
	reporter.notifier.Warning("%s", message)
}

// Notice prints an informational line.
func (reporter *ConsoleReporter) Notice(message string) {
	reporter.notifier.Notice("%s", message)
}
