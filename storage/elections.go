package storage

import (
	"errors"

	"github.com/vocdoni/zkballot/types"
)

// Election returns the record of the election, or ErrNotFound.
func (v View) Election(id types.ElectionID) (*types.ElectionRecord, error) {
	e := &types.ElectionRecord{}
	if err := v.getArtifact(electionPrefix, id.Bytes(), e); err != nil {
		return nil, err
	}
	return e, nil
}

// Elections returns every stored election record ordered by id.
func (v View) Elections() ([]*types.ElectionRecord, error) {
	var elections []*types.ElectionRecord
	var decodeErr error
	if err := v.iterateArtifacts(electionPrefix, nil, func(_, data []byte) bool {
		e := &types.ElectionRecord{}
		if decodeErr = decodeArtifact(data, e); decodeErr != nil {
			return false
		}
		elections = append(elections, e)
		return true
	}); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return elections, nil
}

// SetElection stores the election record, replacing any previous version.
func (tx *Tx) SetElection(e *types.ElectionRecord) error {
	return tx.setArtifact(electionPrefix, e.ID.Bytes(), e)
}

// DeleteElection removes the election record. Removing an absent election is
// not an error.
func (tx *Tx) DeleteElection(id types.ElectionID) error {
	return tx.deleteArtifact(electionPrefix, id.Bytes())
}

// ElectionExists reports whether the election is stored.
func (v View) ElectionExists(id types.ElectionID) (bool, error) {
	_, err := prefixedGet(v, electionPrefix, id.Bytes())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
