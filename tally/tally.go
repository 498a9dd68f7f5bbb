// Package tally counts the votes received by each candidate of an election.
package tally

import (
	"errors"
	"fmt"

	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// Increment adds one vote to the candidate and returns the new count. An
// absent entry becomes 1. It fails with types.ErrArithmeticOverflow when
// the count is already at its maximum, leaving it unchanged.
func Increment(tx *storage.Tx, election types.ElectionID, candidate types.CandidateID) (types.VoteCount, error) {
	count, err := tx.Tally(election, candidate)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return types.VoteCount{}, err
	}
	next, err := count.Inc()
	if err != nil {
		return types.VoteCount{}, fmt.Errorf("tally of candidate %d in election %d: %w", candidate, election, err)
	}
	if err := tx.SetTally(election, candidate, next); err != nil {
		return types.VoteCount{}, err
	}
	return next, nil
}

// Get returns the votes of the candidate. The boolean is false when the
// candidate has received no votes yet, which is distinct from a zero count.
func Get(v storage.View, election types.ElectionID, candidate types.CandidateID) (types.VoteCount, bool, error) {
	count, err := v.Tally(election, candidate)
	if errors.Is(err, storage.ErrNotFound) {
		return types.VoteCount{}, false, nil
	}
	if err != nil {
		return types.VoteCount{}, false, err
	}
	return count, true, nil
}

// Results lists the count of every candidate with votes in the election,
// ordered by candidate id.
func Results(v storage.View, election types.ElectionID) ([]storage.TallyEntry, error) {
	return v.Results(election)
}
