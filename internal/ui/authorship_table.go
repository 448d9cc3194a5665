package ui

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	authorshipHeaderNameConstant       = "Name"
	authorshipHeaderEmailConstant      = "Email"
	authorshipHeaderCommitsConstant    = "Commits"
	authorshipTitleTemplateConstant    = "Current authors on %s"
	authorshipFooterTemplateConstant   = "%d authors"
	emptyAuthorshipTemplateConstant    = "No authors found on %s\n"
	renamedValuesTitleTemplateConstant = "Updated %s on %s"
	renamedValuesHeaderConstant        = "#"
	noRenamedValuesTemplateConstant    = "No %s updated on %s\n"
)

// RenderAuthorship writes the authorship listing of one repository as a table.
func RenderAuthorship(writer io.Writer, repositoryName string, authorships []identity.Authorship) {
	if writer == nil {
		return
	}
	if len(authorships) == 0 {
		fmt.Fprintf(writer, emptyAuthorshipTemplateConstant, repositoryName)
		return
	}

	tableWriter := newTableWriter(writer)
	tableWriter.SetTitle(fmt.Sprintf(authorshipTitleTemplateConstant, repositoryName))
	tableWriter.AppendHeader(table.Row{authorshipHeaderNameConstant, authorshipHeaderEmailConstant, authorshipHeaderCommitsConstant})
	for _, authorship := range authorships {
		tableWriter.AppendRow(table.Row{
			authorship.Identity.Name,
			authorship.Identity.Email,
			humanize.Comma(int64(authorship.Commits)),
		})
	}
	tableWriter.AppendFooter(table.Row{fmt.Sprintf(authorshipFooterTemplateConstant, len(authorships))})
	tableWriter.Render()
}

// RenderRenamedValues writes an audit log of renamed values in insertion order.
func RenderRenamedValues(writer io.Writer, repositoryName string, fieldLabel string, values []string) {
	if writer == nil {
		return
	}
	if len(values) == 0 {
		fmt.Fprintf(writer, noRenamedValuesTemplateConstant, fieldLabel, repositoryName)
		return
	}

	tableWriter := newTableWriter(writer)
	tableWriter.SetTitle(fmt.Sprintf(renamedValuesTitleTemplateConstant, fieldLabel, repositoryName))
	tableWriter.AppendHeader(table.Row{renamedValuesHeaderConstant, fieldLabel})
	for valueIndex, value := range values {
		tableWriter.AppendRow(table.Row{valueIndex + 1, value})
	}
	tableWriter.Render()
}

func newTableWriter(writer io.Writer) table.Writer {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(writer)
	tableWriter.SetStyle(table.StyleLight)
	tableWriter.Style().Options.SeparateRows = false
	tableWriter.Style().Format.Header = text.FormatDefault
	tableWriter.Style().Format.Footer = text.FormatDefault
	return tableWriter
}
