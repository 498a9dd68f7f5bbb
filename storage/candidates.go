package storage

import (
	"github.com/vocdoni/zkballot/types"
)

// Candidate returns the candidate registered under the election, or
// ErrNotFound.
func (v View) Candidate(election types.ElectionID, id types.CandidateID) (*types.CandidateInfo, error) {
	info := &types.CandidateInfo{}
	if err := v.getArtifact(candidatePrefix, compositeKey(election.Bytes(), id.Bytes()), info); err != nil {
		return nil, err
	}
	return info, nil
}

// Candidates returns the candidates of an election ordered by id.
func (v View) Candidates(election types.ElectionID) ([]*types.CandidateInfo, error) {
	var candidates []*types.CandidateInfo
	var decodeErr error
	if err := v.iterateArtifacts(candidatePrefix, election.Bytes(), func(_, data []byte) bool {
		info := &types.CandidateInfo{}
		if decodeErr = decodeArtifact(data, info); decodeErr != nil {
			return false
		}
		candidates = append(candidates, info)
		return true
	}); err != nil {
		return nil, err
	}
	return candidates, decodeErr
}

// SetCandidate stores the candidate under its election.
func (tx *Tx) SetCandidate(info *types.CandidateInfo) error {
	return tx.setArtifact(candidatePrefix, compositeKey(info.ElectionID.Bytes(), info.ID.Bytes()), info)
}
