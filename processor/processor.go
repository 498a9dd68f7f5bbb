// Package processor is the voting coordinator. It admits a vote only when its
// election is open for voting and its range proof verifies, and then counts
// it in the tally.
package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/vocdoni/zkballot/crypto/pedersen"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/tally"
	"github.com/vocdoni/zkballot/types"
)

var (
	// ErrInvalidElectionIDOrNotOpenForVoting is returned when voting in an
	// unknown election or one whose voting phase is closed.
	ErrInvalidElectionIDOrNotOpenForVoting = errors.New("invalid election id or election not open for voting")
	// ErrProofVerificationFailed is returned when the range proof of a vote
	// does not verify against its commitment.
	ErrProofVerificationFailed = errors.New("proof verification failed")
)

// VerifyObserver is called after every proof verification.
type VerifyObserver func(ok bool, took time.Duration)

// VoteProcessor checks and counts votes.
type VoteProcessor struct {
	verifier rangeproof.Verifier
	label    string
	observer VerifyObserver
}

// NewVoteProcessor returns a VoteProcessor verifying proofs with verifier
// under the transcript label. A nil verifier means rangeproof.DefaultVerifier
// and an empty label means types.DefaultTranscriptLabel.
func NewVoteProcessor(verifier rangeproof.Verifier, label string) *VoteProcessor {
	if verifier == nil {
		verifier = rangeproof.DefaultVerifier
	}
	if label == "" {
		label = types.DefaultTranscriptLabel
	}
	return &VoteProcessor{verifier: verifier, label: label}
}

// SetVerifyObserver installs a function called after each verification.
func (p *VoteProcessor) SetVerifyObserver(o VerifyObserver) {
	p.observer = o
}

// Label returns the transcript label proofs are verified under.
func (p *VoteProcessor) Label() string {
	return p.label
}

// CheckElection fails with ErrInvalidElectionIDOrNotOpenForVoting unless the
// election of the vote is open for voting.
func (p *VoteProcessor) CheckElection(v storage.View, electionID types.ElectionID) error {
	if !election.IsOpenForVoting(v, electionID) {
		return fmt.Errorf("%w: %d", ErrInvalidElectionIDOrNotOpenForVoting, electionID)
	}
	return nil
}

// VerifyVote checks the range proof of the vote. It reads no state.
func (p *VoteProcessor) VerifyVote(vote *types.Vote) error {
	commitment, err := pedersen.CommitmentFromBytes(vote.Commitment)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProofVerificationFailed, err)
	}
	start := time.Now()
	ok := p.verifier.Verify(commitment, vote.Proof, p.label)
	if p.observer != nil {
		p.observer(ok, time.Since(start))
	}
	if !ok {
		return ErrProofVerificationFailed
	}
	return nil
}

// CastVote checks the election phase, verifies the proof and increments the
// tally, in that order. It returns the new count of the candidate. On error
// nothing has been written to tx.
func (p *VoteProcessor) CastVote(tx *storage.Tx, vote *types.Vote) (types.VoteCount, error) {
	if err := p.CheckElection(tx.View, vote.ElectionID); err != nil {
		return types.VoteCount{}, err
	}
	if err := p.VerifyVote(vote); err != nil {
		return types.VoteCount{}, err
	}
	return p.Count(tx, vote)
}

// Count increments the tally for a vote whose proof was already verified by
// VerifyVote. The election phase is checked again, since it may have changed
// since the verification.
func (p *VoteProcessor) Count(tx *storage.Tx, vote *types.Vote) (types.VoteCount, error) {
	if err := p.CheckElection(tx.View, vote.ElectionID); err != nil {
		return types.VoteCount{}, err
	}
	count, err := tally.Increment(tx, vote.ElectionID, vote.CandidateID)
	if err != nil {
		return types.VoteCount{}, err
	}
	log.Debugw("vote counted", "election", vote.ElectionID.String(), "candidate", vote.CandidateID.String())
	return count, nil
}
