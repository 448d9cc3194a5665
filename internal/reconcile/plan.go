package reconcile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	planPathRequiredMessageConstant     = "plan path must be provided"
	planLoadErrorTemplateConstant       = "failed to load plan: %w"
	planParseErrorTemplateConstant      = "failed to parse plan: %w"
	planEmptyMessageConstant            = "plan must define at least one name or email rename"
	planEntryInvalidTemplateConstant    = "plan %s entry %d: %s"
	planEntryMissingFromMessageConstant = "from must be non-empty"
	planEntryMissingToMessageConstant   = "to must be non-empty"
	planEntryMultilineMessageConstant   = "values must fit on a single line"
	lineBreakCharactersConstant         = "\r\n"
)

// PlanRename is one from/to entry of a plan file.
type PlanRename struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Plan lists the renames to apply without prompting.
type Plan struct {
	Names  []PlanRename `yaml:"names"`
	Emails []PlanRename `yaml:"emails"`
	Push   bool         `yaml:"push"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(filePath string) (Plan, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Plan{}, errors.New(planPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Plan{}, fmt.Errorf(planLoadErrorTemplateConstant, readError)
	}
	return ParsePlan(contentBytes)
}

// ParsePlan decodes plan YAML. Unknown keys are rejected so that a typo does
// not silently drop a rename.
func ParsePlan(contentBytes []byte) (Plan, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(contentBytes))
	decoder.KnownFields(true)

	var plan Plan
	if decodeError := decoder.Decode(&plan); decodeError != nil && !errors.Is(decodeError, io.EOF) {
		return Plan{}, fmt.Errorf(planParseErrorTemplateConstant, decodeError)
	}

	if len(plan.Names) == 0 && len(plan.Emails) == 0 {
		return Plan{}, errors.New(planEmptyMessageConstant)
	}
	if validationError := validatePlanRenames(identity.FieldName, plan.Names); validationError != nil {
		return Plan{}, validationError
	}
	if validationError := validatePlanRenames(identity.FieldEmail, plan.Emails); validationError != nil {
		return Plan{}, validationError
	}
	return plan, nil
}

func validatePlanRenames(field identity.Field, renames []PlanRename) error {
	for renameIndex := range renames {
		renames[renameIndex].From = strings.TrimSpace(renames[renameIndex].From)
		renames[renameIndex].To = strings.TrimSpace(renames[renameIndex].To)

		var message string
		switch {
		case len(renames[renameIndex].From) == 0:
			message = planEntryMissingFromMessageConstant
		case len(renames[renameIndex].To) == 0:
			message = planEntryMissingToMessageConstant
		case strings.ContainsAny(renames[renameIndex].From+renames[renameIndex].To, lineBreakCharactersConstant):
			message = planEntryMultilineMessageConstant
		default:
			continue
		}
		return fmt.Errorf(planEntryInvalidTemplateConstant, field, renameIndex+1, message)
	}
	return nil
}

// PlanOperator answers workflow decisions from a Plan. Each rename is handed
// out once: single-repository runs consume names and emails through their
// own loops, all-repositories runs consume names first, then emails, and
// quit when the plan is exhausted.
type PlanOperator struct {
	plan          Plan
	nameCursor    int
	emailCursor   int
	pendingTarget *PlanRename
}

// NewPlanOperator constructs a PlanOperator.
func NewPlanOperator(plan Plan) *PlanOperator {
	return &PlanOperator{plan: plan}
}

// ContinueRenaming reports whether renames of field remain.
func (operator *PlanOperator) ContinueRenaming(field identity.Field, _ string) (bool, error) {
	_, remaining := operator.peek(field)
	return remaining, nil
}

// RenamePair hands out the next rename of field.
func (operator *PlanOperator) RenamePair(field identity.Field, _ []identity.Authorship) (RenameRequest, error) {
	rename, remaining := operator.next(field)
	if !remaining {
		return RenameRequest{}, fmt.Errorf("plan has no %s renames left", field)
	}
	return RenameRequest{Field: field, OldValue: rename.From, NewValue: rename.To}, nil
}

// ChooseTarget selects the next pending rename, or quit.
func (operator *PlanOperator) ChooseTarget(_ []MenuEntry) (Selection, error) {
	for _, field := range []identity.Field{identity.FieldName, identity.FieldEmail} {
		if rename, remaining := operator.next(field); remaining {
			operator.pendingTarget = &rename
			return Selection{Field: field, Value: rename.From}, nil
		}
	}
	operator.pendingTarget = nil
	return Selection{Quit: true}, nil
}

// ReplacementValue returns the target of the rename chosen last.
func (operator *PlanOperator) ReplacementValue(target Selection) (string, error) {
	if operator.pendingTarget == nil || operator.pendingTarget.From != target.Value {
		return "", fmt.Errorf("plan has no replacement for %s %q", target.Field, target.Value)
	}
	return operator.pendingTarget.To, nil
}

// ConfirmBulkApply always approves; the plan is the approval.
func (operator *PlanOperator) ConfirmBulkApply(RenameRequest, []string) (bool, error) {
	return true, nil
}

// ConfirmPush follows the plan's push setting.
func (operator *PlanOperator) ConfirmPush(string) (bool, error) {
	return operator.plan.Push, nil
}

// RetryCatalog never retries.
func (operator *PlanOperator) RetryCatalog(string, error) (bool, error) {
	return false, nil
}

func (operator *PlanOperator) peek(field identity.Field) (PlanRename, bool) {
	renames, cursor := operator.plan.Names, operator.nameCursor
	if field == identity.FieldEmail {
		renames, cursor = operator.plan.Emails, operator.emailCursor
	}
	if cursor >= len(renames) {
		return PlanRename{}, false
	}
	return renames[cursor], true
}

func (operator *PlanOperator) next(field identity.Field) (PlanRename, bool) {
	rename, remaining := operator.peek(field)
	if !remaining {
		return PlanRename{}, false
	}
	if field == identity.FieldEmail {
		operator.emailCursor++
	} else {
		operator.nameCursor++
	}
	return rename, true
}
