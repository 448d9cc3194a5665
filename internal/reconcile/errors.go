package reconcile

import (
	"errors"
	"fmt"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	noObservedEffectTemplateConstant = "%s %q is still present in %s after the rewrite"
)

var (
	// ErrHistoryNotConfigured indicates the workflow was built without a history client.
	ErrHistoryNotConfigured = errors.New("history client not configured")
	// ErrOperatorNotConfigured indicates the workflow was built without an operator.
	ErrOperatorNotConfigured = errors.New("operator not configured")
	// ErrCatalogNotConfigured indicates RunAll was called without a catalog.
	ErrCatalogNotConfigured = errors.New("repository catalog not configured")
)

// MutationNoObservedEffectError reports a rewrite that completed while the
// targeted value is still listed afterwards.
type MutationNoObservedEffectError struct {
	Repository string
	Field      identity.Field
	OldValue   string
}

// Error describes the missing effect.
func (effectError MutationNoObservedEffectError) Error() string {
	return fmt.Sprintf(noObservedEffectTemplateConstant, effectError.Field, effectError.OldValue, effectError.Repository)
}

// MutationOutcome distinguishes a rewrite that was requested successfully
// from one whose effect was observed in the following authorship listing.
type MutationOutcome struct {
	Requested bool
	Confirmed bool
}

// Unobserved reports a rewrite that was requested but left the old value listed.
func (outcome MutationOutcome) Unobserved() bool {
	return outcome.Requested && !outcome.Confirmed
}
