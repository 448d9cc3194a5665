package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Notifier prints operator-facing status lines, coloured when the output supports it.
type Notifier struct {
	writer       io.Writer
	warningColor *color.Color
	successColor *color.Color
	noticeColor  *color.Color
}

// NewNotifier constructs a Notifier writing to writer. Colours are disabled when
// colorize is false, which keeps captured output free of escape sequences.
func NewNotifier(writer io.Writer, colorize bool) *Notifier {
	notifier := &Notifier{
		writer:       writer,
		warningColor: color.New(color.FgYellow, color.Bold),
		successColor: color.New(color.FgGreen),
		noticeColor:  color.New(color.FgCyan),
	}
	if !colorize {
		notifier.warningColor.DisableColor()
		notifier.successColor.DisableColor()
		notifier.noticeColor.DisableColor()
	} else {
		notifier.warningColor.EnableColor()
		notifier.successColor.EnableColor()
		notifier.noticeColor.EnableColor()
	}
	return notifier
}

// Warning prints a highlighted warning line.
func (notifier *Notifier) Warning(format string, arguments ...any) {
	notifier.print(notifier.warningColor, format, arguments...)
}

// Success prints a confirmation line.
func (notifier *Notifier) Success(format string, arguments ...any) {
	notifier.print(notifier.successColor, format, arguments...)
}

// Notice prints an informational line.
func (notifier *Notifier) Notice(format string, arguments ...any) {
	notifier.print(notifier.noticeColor, format, arguments...)
}

// Writer exposes the underlying output for table rendering.
func (notifier *Notifier) Writer() io.Writer {
	if notifier == nil {
		return nil
	}
	return notifier.writer
}

func (notifier *Notifier) print(lineColor *color.Color, format string, arguments ...any) {
	if notifier == nil || notifier.writer == nil {
		return
	}
	lineColor.Fprintln(notifier.writer, fmt.Sprintf(format, arguments...))
}
