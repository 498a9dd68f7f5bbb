package sequencer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// CastVote counts a confidential vote. Any authenticated caller may vote.
// The election must be open for voting (else
// processor.ErrInvalidElectionIDOrNotOpenForVoting) and the proof must verify
// (else processor.ErrProofVerificationFailed). It returns the new count of
// the candidate.
//
// The proof is verified without holding the sequencer lock, so verifications
// of concurrent votes run in parallel. The election phase is checked again
// under the lock before counting.
func (s *Sequencer) CastVote(origin common.Address, vote *types.Vote) (count types.VoteCount, err error) {
	if err := s.auth.Authorize(origin, auth.RoleVoter); err != nil {
		s.metrics.ObserveOperation("cast_vote", err)
		return count, err
	}
	if err := s.votes.CheckElection(s.stg.View, vote.ElectionID); err != nil {
		s.metrics.ObserveOperation("cast_vote", err)
		return count, err
	}
	if err := s.votes.VerifyVote(vote); err != nil {
		s.metrics.ObserveOperation("cast_vote", err)
		return count, err
	}
	err = s.apply("cast_vote", origin, auth.RoleVoter, func(tx *storage.Tx) (*types.Event, error) {
		var err error
		if count, err = s.votes.Count(tx, vote); err != nil {
			return nil, err
		}
		return &types.Event{
			Type:        types.EventVoteCasted,
			ElectionID:  vote.ElectionID,
			CandidateID: vote.CandidateID,
		}, nil
	})
	if err != nil {
		return types.VoteCount{}, err
	}
	s.metrics.VoteCast()
	return count, nil
}

// VerifyProofs verifies independent proofs in parallel with at most workers
// goroutines. An item without label is verified under the vote transcript
// label. It reads no state.
func (s *Sequencer) VerifyProofs(ctx context.Context, items []rangeproof.BatchItem, workers int) ([]bool, error) {
	for i := range items {
		if items[i].Label == "" {
			items[i].Label = s.votes.Label()
		}
	}
	return rangeproof.VerifyBatch(ctx, s.verifier, items, workers)
}
