package reconcile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reauthor/internal/identity"
	"github.com/temirov/reauthor/internal/reconcile"
)

const testPlanContentConstant = `names:
  - from: Jane Smith
    to: Jane Doe
emails:
  - from: jane@old.com
    to: " jane@new.com "
  - from: john@old.com
    to: john@new.com
push: true
`

func TestParsePlan(testInstance *testing.T) {
	testCases := []struct {
		name          string
		content       string
		expectedPlan  reconcile.Plan
		expectedError string
	}{
		{
			name:    "complete_plan",
			content: testPlanContentConstant,
			expectedPlan: reconcile.Plan{
				Names: []reconcile.PlanRename{{From: "Jane Smith", To: "Jane Doe"}},
				Emails: []reconcile.PlanRename{
					{From: "jane@old.com", To: "jane@new.com"},
					{From: "john@old.com", To: "john@new.com"},
				},
				Push: true,
			},
		},
		{name: "empty_document", content: "", expectedError: "plan must define at least one name or email rename"},
		{name: "unknown_key", content: "nmes:\n  - from: a\n    to: b\n", expectedError: "failed to parse plan"},
		{name: "missing_target", content: "names:\n  - from: a\n", expectedError: "plan name entry 1: to must be non-empty"},
		{name: "missing_source", content: "emails:\n  - from: a@x\n    to: b@x\n  - to: c@x\n", expectedError: "plan email entry 2: from must be non-empty"},
		{name: "multiline_value", content: "names:\n  - from: \"a\\nb\"\n    to: c\n", expectedError: "plan name entry 1: values must fit on a single line"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			plan, parseError := reconcile.ParsePlan([]byte(testCase.content))
			if len(testCase.expectedError) > 0 {
				require.Error(testInstance, parseError)
				require.Contains(testInstance, parseError.Error(), testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedPlan, plan)
		})
	}
}

func TestLoadPlan(testInstance *testing.T) {
	planPath := filepath.Join(testInstance.TempDir(), "renames.yaml")
	require.NoError(testInstance, os.WriteFile(planPath, []byte(testPlanContentConstant), 0o600))

	plan, loadError := reconcile.LoadPlan(planPath)
	require.NoError(testInstance, loadError)
	require.Len(testInstance, plan.Emails, 2)

	_, missingError := reconcile.LoadPlan(filepath.Join(testInstance.TempDir(), "absent.yaml"))
	require.ErrorContains(testInstance, missingError, "failed to load plan")

	_, emptyPathError := reconcile.LoadPlan("  ")
	require.ErrorContains(testInstance, emptyPathError, "plan path must be provided")
}

func TestPlanOperatorSingleRepositoryDecisions(testInstance *testing.T) {
	plan, parseError := reconcile.ParsePlan([]byte(testPlanContentConstant))
	require.NoError(testInstance, parseError)
	operator := reconcile.NewPlanOperator(plan)

	var names []reconcile.RenameRequest
	for {
		proceed, decisionError := operator.ContinueRenaming(identity.FieldName, testDemoNameConstant)
		require.NoError(testInstance, decisionError)
		if !proceed {
			break
		}
		request, requestError := operator.RenamePair(identity.FieldName, nil)
		require.NoError(testInstance, requestError)
		names = append(names, request)
	}
	require.Equal(testInstance, []reconcile.RenameRequest{{Field: identity.FieldName, OldValue: "Jane Smith", NewValue: "Jane Doe"}}, names)

	request, requestError := operator.RenamePair(identity.FieldEmail, nil)
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, "jane@new.com", request.NewValue)

	_, exhaustedError := operator.RenamePair(identity.FieldName, nil)
	require.Error(testInstance, exhaustedError)

	push, pushError := operator.ConfirmPush(testDemoNameConstant)
	require.NoError(testInstance, pushError)
	require.True(testInstance, push)
}

func TestPlanOperatorAllRepositoriesDecisions(testInstance *testing.T) {
	plan, parseError := reconcile.ParsePlan([]byte(testPlanContentConstant))
	require.NoError(testInstance, parseError)
	operator := reconcile.NewPlanOperator(plan)

	var applied []reconcile.RenameRequest
	for {
		selection, selectionError := operator.ChooseTarget(nil)
		require.NoError(testInstance, selectionError)
		if selection.Quit {
			break
		}
		replacement, replacementError := operator.ReplacementValue(selection)
		require.NoError(testInstance, replacementError)
		approved, approvalError := operator.ConfirmBulkApply(reconcile.RenameRequest{}, nil)
		require.NoError(testInstance, approvalError)
		require.True(testInstance, approved)
		applied = append(applied, reconcile.RenameRequest{Field: selection.Field, OldValue: selection.Value, NewValue: replacement})
	}

	require.Equal(testInstance, []reconcile.RenameRequest{
		{Field: identity.FieldName, OldValue: "Jane Smith", NewValue: "Jane Doe"},
		{Field: identity.FieldEmail, OldValue: "jane@old.com", NewValue: "jane@new.com"},
		{Field: identity.FieldEmail, OldValue: "john@old.com", NewValue: "john@new.com"},
	}, applied)

	retry, retryError := operator.RetryCatalog(testAccountConstant, nil)
	require.NoError(testInstance, retryError)
	require.False(testInstance, retry)
}

func TestPlanOperatorDrivesWorkflow(testInstance *testing.T) {
	fixture := newWorkflowFixture(testInstance)
	fixture.executor.AddRemote(testDemoURLConstant, authorship("Jane Smith", "jane@old.com", 2))
	plan, parseError := reconcile.ParsePlan([]byte(testPlanContentConstant))
	require.NoError(testInstance, parseError)
	workflow := fixture.workflow(testInstance, reconcile.Configuration{}, fixture.client, nil, reconcile.NewPlanOperator(plan))

	summary, runError := workflow.RunSingle(testContext(), newHandle(testInstance, testDemoNameConstant, testDemoURLConstant))
	require.NoError(testInstance, runError)

	require.Equal(testInstance, []identity.Authorship{authorship("Jane Doe", "jane@new.com", 2)}, summary.Authors)
	require.Equal(testInstance, []string{"jane@new.com", "john@new.com"}, summary.RenamedEmails)
	require.True(testInstance, summary.Pushed)
}
