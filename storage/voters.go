package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/types"
)

// Voter returns the registration of address in the election, or ErrNotFound.
func (v View) Voter(election types.ElectionID, address common.Address) (*types.VoterRecord, error) {
	rec := &types.VoterRecord{}
	if err := v.getArtifact(voterPrefix, compositeKey(election.Bytes(), address.Bytes()), rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Voters returns the voters registered in an election, ordered by address.
func (v View) Voters(election types.ElectionID) ([]*types.VoterRecord, error) {
	var voters []*types.VoterRecord
	var decodeErr error
	if err := v.iterateArtifacts(voterPrefix, election.Bytes(), func(_, data []byte) bool {
		rec := &types.VoterRecord{}
		if decodeErr = decodeArtifact(data, rec); decodeErr != nil {
			return false
		}
		voters = append(voters, rec)
		return true
	}); err != nil {
		return nil, err
	}
	return voters, decodeErr
}

// SetVoter stores a voter registration.
func (tx *Tx) SetVoter(rec *types.VoterRecord) error {
	return tx.setArtifact(voterPrefix, compositeKey(rec.ElectionID.Bytes(), rec.Address.Bytes()), rec)
}
