// Package historytest provides an in-memory git and git-filter-repo stand-in
// that models authorship and origin state, for tests of history consumers.
package historytest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/temirov/reauthor/internal/execshell"
	"github.com/temirov/reauthor/internal/identity"
)

const (
	shortlogLineTemplateConstant            = "%6d\t%s <%s>\n"
	callbackPrefixTemplateConstant          = "return %[1]s if %[1]s != "
	callbackSeparatorConstant               = " else "
	missingRemoteStandardErrorConstant      = "error: No such remote 'origin'"
	existingRemoteStandardErrorConstant     = "error: remote origin already exists."
	unknownRepositoryStandardErrorConstant  = "fatal: repository not found"
	missingWorkingCopyStandardErrorConstant = "fatal: not a git repository"
	missingRemoteExitCodeConstant           = 2
	existingRemoteExitCodeConstant          = 3
	fatalExitCodeConstant                   = 128
)

// ErrMalformedCallback reports a rewrite invocation the fake cannot interpret.
var ErrMalformedCallback = errors.New("malformed rewrite callback")

// WorkingCopy is the modelled state of one clone.
type WorkingCopy struct {
	Authorships []identity.Authorship
	Origin      string
}

// FakeGitExecutor implements the history client's executor contract in memory.
// Clones create real directories so working copy detection behaves as on disk.
type FakeGitExecutor struct {
	remotes       map[string][]identity.Authorship
	workingCopies map[string]*WorkingCopy
	pushFailures  map[string]error

	// RewriteFailure, when set, is returned by every rewrite after origin has been stripped.
	RewriteFailure error
	// Commands lists every invocation in order.
	Commands []execshell.ShellCommand
	// PushedURLs lists the origin URL of every successful push in order.
	PushedURLs []string
}

// NewFakeGitExecutor constructs an executor without remotes.
func NewFakeGitExecutor() *FakeGitExecutor {
	return &FakeGitExecutor{
		remotes:       map[string][]identity.Authorship{},
		workingCopies: map[string]*WorkingCopy{},
		pushFailures:  map[string]error{},
	}
}

// AddRemote registers a clonable repository with its authorship.
func (executor *FakeGitExecutor) AddRemote(cloneURL string, authorships ...identity.Authorship) {
	executor.remotes[cloneURL] = append([]identity.Authorship(nil), authorships...)
}

// RemoteAuthorships returns the authorship currently stored for cloneURL.
func (executor *FakeGitExecutor) RemoteAuthorships(cloneURL string) []identity.Authorship {
	return append([]identity.Authorship(nil), executor.remotes[cloneURL]...)
}

// FailPushTo makes pushes to remoteURL fail with failure.
func (executor *FakeGitExecutor) FailPushTo(remoteURL string, failure error) {
	executor.pushFailures[remoteURL] = failure
}

// WorkingCopy returns the modelled working copy at path.
func (executor *FakeGitExecutor) WorkingCopy(path string) (*WorkingCopy, bool) {
	workingCopy, exists := executor.workingCopies[filepath.Clean(path)]
	return workingCopy, exists
}

// CountCommands reports how many recorded invocations start with the given argument.
func (executor *FakeGitExecutor) CountCommands(firstArgument string) int {
	count := 0
	for _, command := range executor.Commands {
		if len(command.Details.Arguments) > 0 && command.Details.Arguments[0] == firstArgument {
			count++
		}
	}
	return count
}

// ExecuteGit models clone, shortlog, remote and push.
func (executor *FakeGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	command := execshell.ShellCommand{Name: execshell.CommandGit, Details: details}
	executor.Commands = append(executor.Commands, command)

	arguments := details.Arguments
	if len(arguments) == 0 {
		return failure(command, fatalExitCodeConstant, "usage")
	}

	if arguments[0] == "clone" {
		return executor.clone(command)
	}

	workingCopy, exists := executor.WorkingCopy(details.WorkingDirectory)
	if !exists {
		return failure(command, fatalExitCodeConstant, missingWorkingCopyStandardErrorConstant)
	}

	switch arguments[0] {
	case "shortlog":
		var output strings.Builder
		for _, authorship := range workingCopy.Authorships {
			fmt.Fprintf(&output, shortlogLineTemplateConstant, authorship.Commits, authorship.Identity.Name, authorship.Identity.Email)
		}
		return execshell.ExecutionResult{StandardOutput: output.String()}, nil
	case "remote":
		return executor.remote(command, workingCopy)
	case "push":
		if len(workingCopy.Origin) == 0 {
			return failure(command, fatalExitCodeConstant, "fatal: 'origin' does not appear to be a git repository")
		}
		if pushFailure, failing := executor.pushFailures[workingCopy.Origin]; failing {
			return failure(command, 1, pushFailure.Error())
		}
		executor.remotes[workingCopy.Origin] = append([]identity.Authorship(nil), workingCopy.Authorships...)
		executor.PushedURLs = append(executor.PushedURLs, workingCopy.Origin)
		return execshell.ExecutionResult{}, nil
	default:
		return failure(command, 1, "unsupported git subcommand "+arguments[0])
	}
}

// ExecuteRewriteTool models git-filter-repo with a single name or email callback.
func (executor *FakeGitExecutor) ExecuteRewriteTool(_ context.Context, toolPath string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	command := execshell.ShellCommand{Name: execshell.CommandName(toolPath), Details: details}
	executor.Commands = append(executor.Commands, command)

	workingCopy, exists := executor.WorkingCopy(details.WorkingDirectory)
	if !exists {
		return failure(command, 1, missingWorkingCopyStandardErrorConstant)
	}

	field, oldValue, newValue, parseError := parseCallbackArguments(details.Arguments)
	if parseError != nil {
		return execshell.ExecutionResult{}, parseError
	}

	workingCopy.Origin = ""
	if executor.RewriteFailure != nil {
		return failure(command, 1, executor.RewriteFailure.Error())
	}

	for index := range workingCopy.Authorships {
		record := &workingCopy.Authorships[index].Identity
		switch {
		case field == identity.FieldName && record.Name == oldValue:
			record.Name = newValue
		case field == identity.FieldEmail && record.Email == oldValue:
			record.Email = newValue
		}
	}
	workingCopy.Authorships = mergeAuthorships(workingCopy.Authorships)
	return execshell.ExecutionResult{}, nil
}

func (executor *FakeGitExecutor) clone(command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	arguments := command.Details.Arguments
	if len(arguments) < 3 {
		return failure(command, fatalExitCodeConstant, "usage")
	}
	remoteAuthorships, known := executor.remotes[arguments[1]]
	if !known {
		return failure(command, fatalExitCodeConstant, unknownRepositoryStandardErrorConstant)
	}

	workingCopyPath := filepath.Clean(filepath.Join(command.Details.WorkingDirectory, arguments[2]))
	if mkdirError := os.MkdirAll(workingCopyPath, 0o755); mkdirError != nil {
		return execshell.ExecutionResult{}, mkdirError
	}
	executor.workingCopies[workingCopyPath] = &WorkingCopy{
		Authorships: append([]identity.Authorship(nil), remoteAuthorships...),
		Origin:      arguments[1],
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *FakeGitExecutor) remote(command execshell.ShellCommand, workingCopy *WorkingCopy) (execshell.ExecutionResult, error) {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return failure(command, 1, "usage")
	}
	switch arguments[1] {
	case "get-url":
		if len(workingCopy.Origin) == 0 {
			return failure(command, missingRemoteExitCodeConstant, missingRemoteStandardErrorConstant)
		}
		return execshell.ExecutionResult{StandardOutput: workingCopy.Origin + "\n"}, nil
	case "set-url":
		if len(workingCopy.Origin) == 0 {
			return failure(command, missingRemoteExitCodeConstant, missingRemoteStandardErrorConstant)
		}
		workingCopy.Origin = arguments[len(arguments)-1]
		return execshell.ExecutionResult{}, nil
	case "add":
		if len(workingCopy.Origin) > 0 {
			return failure(command, existingRemoteExitCodeConstant, existingRemoteStandardErrorConstant)
		}
		workingCopy.Origin = arguments[len(arguments)-1]
		return execshell.ExecutionResult{}, nil
	default:
		return failure(command, 1, "unsupported remote subcommand")
	}
}

func failure(command execshell.ShellCommand, exitCode int, standardError string) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: command,
		Result:  execshell.ExecutionResult{ExitCode: exitCode, StandardError: standardError},
	}
}

func parseCallbackArguments(arguments []string) (identity.Field, string, string, error) {
	for index := 0; index+1 < len(arguments); index++ {
		for _, field := range []identity.Field{identity.FieldName, identity.FieldEmail} {
			if arguments[index] != "--"+string(field)+"-callback" {
				continue
			}
			oldValue, newValue, parseError := parseCallback(field, arguments[index+1])
			return field, oldValue, newValue, parseError
		}
	}
	return "", "", "", ErrMalformedCallback
}

func parseCallback(field identity.Field, callback string) (string, string, error) {
	prefix := fmt.Sprintf(callbackPrefixTemplateConstant, field)
	if !strings.HasPrefix(callback, prefix) {
		return "", "", ErrMalformedCallback
	}
	oldValue, remainder, oldError := decodeBytesLiteral(strings.TrimPrefix(callback, prefix))
	if oldError != nil || !strings.HasPrefix(remainder, callbackSeparatorConstant) {
		return "", "", ErrMalformedCallback
	}
	newValue, remainder, newError := decodeBytesLiteral(strings.TrimPrefix(remainder, callbackSeparatorConstant))
	if newError != nil || len(remainder) > 0 {
		return "", "", ErrMalformedCallback
	}
	return oldValue, newValue, nil
}

// decodeBytesLiteral reads one b"..." literal and returns its value and the unread remainder.
func decodeBytesLiteral(input string) (string, string, error) {
	if !strings.HasPrefix(input, `b"`) {
		return "", "", ErrMalformedCallback
	}
	var decoded []byte
	for index := 2; index < len(input); index++ {
		switch input[index] {
		case '"':
			return string(decoded), input[index+1:], nil
		case '\\':
			if index+1 >= len(input) {
				return "", "", ErrMalformedCallback
			}
			switch input[index+1] {
			case '\\', '"':
				decoded = append(decoded, input[index+1])
				index++
			case 'x':
				if index+3 >= len(input) {
					return "", "", ErrMalformedCallback
				}
				value, parseError := strconv.ParseUint(input[index+2:index+4], 16, 8)
				if parseError != nil {
					return "", "", ErrMalformedCallback
				}
				decoded = append(decoded, byte(value))
				index += 3
			default:
				return "", "", ErrMalformedCallback
			}
		default:
			decoded = append(decoded, input[index])
		}
	}
	return "", "", ErrMalformedCallback
}

// mergeAuthorships folds identical identities together and orders them the
// way git shortlog -sne does: by commit count, then by name.
func mergeAuthorships(authorships []identity.Authorship) []identity.Authorship {
	commitsByIdentity := map[identity.Record]int{}
	for _, authorship := range authorships {
		commitsByIdentity[authorship.Identity] += authorship.Commits
	}
	merged := make([]identity.Authorship, 0, len(commitsByIdentity))
	for record, commits := range commitsByIdentity {
		merged = append(merged, identity.Authorship{Identity: record, Commits: commits})
	}
	sort.Slice(merged, func(first int, second int) bool {
		if merged[first].Commits != merged[second].Commits {
			return merged[first].Commits > merged[second].Commits
		}
		if merged[first].Identity.Name != merged[second].Identity.Name {
			return merged[first].Identity.Name < merged[second].Identity.Name
		}
		return merged[first].Identity.Email < merged[second].Identity.Email
	})
	return merged
}
