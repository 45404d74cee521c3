/**
 * @description
 * Decision rules for the primary-flag invariant, shared by wallets and bank
 * accounts: among active instances of a kind there is exactly one primary
 * whenever any active instance exists. The repository transactions in
 * postgres_paymentmethods.go execute whatever these functions decide.
 */

package store

// createPrimaryOutcome decides the primary flag for a newly created instance.
// The first active instance of a kind is always primary, regardless of what
// the caller asked for. Otherwise the request stands, and an explicitly
// primary newcomer demotes the current primary.
func createPrimaryOutcome(activeCount int, requested bool) (becomePrimary, demoteOthers bool) {
	if activeCount == 0 {
		return true, false
	}
	return requested, requested
}

// stepDownOutcome decides whether the current primary may stop being primary.
// stillActive is the instance's active flag after the mutation;
// successorPromoted reports whether another active instance took over.
// Stepping down without a successor is only allowed when the instance is
// also deactivating, which leaves the kind with no active instances at all.
func stepDownOutcome(stillActive, successorPromoted bool) error {
	if successorPromoted || !stillActive {
		return nil
	}
	return ErrCannotUnsetSolePrimary
}

// deletePrimaryOutcome decides whether the primary instance may be deleted.
// A successor must have been promoted; the sole active instance cannot go.
func deletePrimaryOutcome(successorPromoted bool) error {
	if successorPromoted {
		return nil
	}
	return ErrCannotDeleteSolePrimary
}
