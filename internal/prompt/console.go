// Package prompt implements the console dialogue reauthor holds with the
// operator: numbered choices, yes/no confirmations and free-text answers.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

const (
	confirmationOptionsConstant     = "1 - Yes, 2 - No"
	optionLineTemplateConstant      = "%d - %s\n"
	answerMarkerConstant            = "> "
	invalidConfirmationConstant     = "Please answer 1 (yes) or 2 (no)."
	invalidChoiceTemplateConstant   = "Please enter a number between 1 and %d or text matching one option."
	ambiguousChoiceTemplateConstant = "%q matches several options: %s"
	emptyAnswerMessageConstant      = "An answer is required."
	ambiguousSeparatorConstant      = ", "
	noOptionsMessageConstant        = "no options to choose from"
	lineFeedConstant                = "\n"
	carriageReturnConstant          = "\r"
)

var (
	// ErrInputClosed indicates the operator's input ended before an answer was given.
	ErrInputClosed = errors.New("input closed before an answer was given")
	// ErrNoOptions indicates Choose was called without options.
	ErrNoOptions = errors.New(noOptionsMessageConstant)
)

var (
	affirmativeAnswers = map[string]struct{}{"1": {}, "y": {}, "yes": {}}
	negativeAnswers    = map[string]struct{}{"2": {}, "n": {}, "no": {}}
)

// Console reads answers line by line from input and writes questions to output.
type Console struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewConsole constructs a Console.
func NewConsole(input io.Reader, output io.Writer) *Console {
	if output == nil {
		output = io.Discard
	}
	return &Console{reader: bufio.NewReader(input), writer: output}
}

// Confirm asks a yes/no question using the numbered protocol.
func (console *Console) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(console.writer, "%s\n%s\n%s", prompt, confirmationOptionsConstant, answerMarkerConstant)
		answer, readError := console.readLine()
		if readError != nil {
			return false, readError
		}
		normalizedAnswer := strings.ToLower(answer)
		if _, affirmative := affirmativeAnswers[normalizedAnswer]; affirmative {
			return true, nil
		}
		if _, negative := negativeAnswers[normalizedAnswer]; negative {
			return false, nil
		}
		fmt.Fprintln(console.writer, invalidConfirmationConstant)
	}
}

// Choose presents options numbered from 1 and returns the zero-based index
// of the selection. Besides a number, the operator may type text that
// fuzzily matches exactly one option or equals one option ignoring case.
func (console *Console) Choose(prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	for {
		fmt.Fprintln(console.writer, prompt)
		for optionIndex, option := range options {
			fmt.Fprintf(console.writer, optionLineTemplateConstant, optionIndex+1, option)
		}
		fmt.Fprint(console.writer, answerMarkerConstant)

		answer, readError := console.readLine()
		if readError != nil {
			return 0, readError
		}

		selectedIndex, resolution := resolveChoice(answer, options)
		switch resolution {
		case choiceResolved:
			return selectedIndex, nil
		case choiceAmbiguous:
			fmt.Fprintf(console.writer, ambiguousChoiceTemplateConstant+"\n", answer, strings.Join(matchingOptions(answer, options), ambiguousSeparatorConstant))
		default:
			fmt.Fprintf(console.writer, invalidChoiceTemplateConstant+"\n", len(options))
		}
	}
}

// Ask reads a free-text answer that is not blank. The answer keeps its
// surrounding spaces; only the line terminator is removed.
func (console *Console) Ask(prompt string) (string, error) {
	for {
		fmt.Fprintf(console.writer, "%s\n%s", prompt, answerMarkerConstant)
		answer, readError := console.readRawLine()
		if readError != nil {
			return "", readError
		}
		if len(strings.TrimSpace(answer)) > 0 {
			return answer, nil
		}
		fmt.Fprintln(console.writer, emptyAnswerMessageConstant)
	}
}

// AskWithDefault reads a trimmed free-text answer and returns defaultValue for an empty line.
func (console *Console) AskWithDefault(prompt string, defaultValue string) (string, error) {
	fmt.Fprintf(console.writer, "%s [%s]\n%s", prompt, defaultValue, answerMarkerConstant)
	answer, readError := console.readLine()
	if readError != nil {
		return "", readError
	}
	if len(answer) == 0 {
		return defaultValue, nil
	}
	return answer, nil
}

// readLine returns the next line with surrounding whitespace removed.
func (console *Console) readLine() (string, error) {
	line, readError := console.readRawLine()
	return strings.TrimSpace(line), readError
}

// readRawLine returns the next line without its \n or \r\n terminator. A
// final line without a newline is still returned; ErrInputClosed is reported
// only when nothing was read.
func (console *Console) readRawLine() (string, error) {
	line, readError := console.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	if readError != nil && len(line) == 0 {
		return "", ErrInputClosed
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, lineFeedConstant), carriageReturnConstant), nil
}

type choiceResolution int

const (
	choiceInvalid choiceResolution = iota
	choiceResolved
	choiceAmbiguous
)

func resolveChoice(answer string, options []string) (int, choiceResolution) {
	if len(answer) == 0 {
		return 0, choiceInvalid
	}
	if number, parseError := strconv.Atoi(answer); parseError == nil {
		if number >= 1 && number <= len(options) {
			return number - 1, choiceResolved
		}
		return 0, choiceInvalid
	}

	for optionIndex, option := range options {
		if strings.EqualFold(option, answer) {
			return optionIndex, choiceResolved
		}
	}

	matches := fuzzy.Find(answer, options)
	switch len(matches) {
	case 0:
		return 0, choiceInvalid
	case 1:
		return matches[0].Index, choiceResolved
	default:
		return 0, choiceAmbiguous
	}
}

func matchingOptions(answer string, options []string) []string {
	matches := fuzzy.Find(answer, options)
	matched := make([]string, 0, len(matches))
	for _, match := range matches {
		matched = append(matched, match.Str)
	}
	return matched
}
