package processor

import (
	"fmt"

	"github.com/vocdoni/zkballot/crypto/pedersen"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/types"
)

// NewVote builds a vote for candidate: it derives the blinding factor from
// seed, commits to value and proves that the committed value fits in 64
// bits under label. A non-empty seed must be fresh random material for every
// vote, otherwise the commitments of two votes for the same value are equal.
// An empty seed draws a random blinding factor.
func NewVote(electionID types.ElectionID, candidateID types.CandidateID, value uint64, seed []byte, label string) (*types.Vote, error) {
	if label == "" {
		label = types.DefaultTranscriptLabel
	}
	blinding := pedersen.BlindingFromSeed(seed)
	if len(seed) == 0 {
		var err error
		if blinding, err = pedersen.RandomBlinding(); err != nil {
			return nil, fmt.Errorf("could not build vote: %w", err)
		}
	}
	proof, commitment, err := rangeproof.Prove(value, &blinding, label)
	if err != nil {
		return nil, fmt.Errorf("could not build vote: %w", err)
	}
	return &types.Vote{
		ElectionID:  electionID,
		CandidateID: candidateID,
		Commitment:  commitment.Bytes(),
		Proof:       proof.Bytes(),
	}, nil
}
