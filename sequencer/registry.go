package sequencer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// RegisterCandidate adds a candidate to an election open for registration.
// The caller must be a member of the election commission.
func (s *Sequencer) RegisterCandidate(origin common.Address, electionID types.ElectionID, name, info string) (types.CandidateID, error) {
	var id types.CandidateID
	err := s.apply("register_candidate", origin, auth.RoleCommission, func(tx *storage.Tx) (*types.Event, error) {
		var err error
		if id, err = s.registry.RegisterCandidate(tx, electionID, name, info); err != nil {
			return nil, err
		}
		return &types.Event{Type: types.EventCandidateRegistered, ElectionID: electionID, CandidateID: id}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// RegisterVoter registers the caller as a voter of an election open for
// registration. A repeated registration returns the existing record with
// created set to false and emits no event.
//
// The census leaf is inserted once the record is committed. A repeated
// registration inserts it again if it is missing, so a registration whose
// census update failed is completed by retrying it.
func (s *Sequencer) RegisterVoter(origin common.Address, electionID types.ElectionID, credential []byte) (rec *types.VoterRecord, created bool, err error) {
	err = s.applyThen("register_voter", origin, auth.RoleVoter, func(tx *storage.Tx) (*types.Event, error) {
		var err error
		if rec, created, err = s.registry.RegisterVoter(tx, electionID, origin, credential); err != nil {
			return nil, err
		}
		if !created {
			return nil, nil
		}
		return &types.Event{Type: types.EventVoterRegistered, ElectionID: electionID}, nil
	}, func() error {
		return s.registry.AddToCensus(rec)
	})
	if err != nil {
		return nil, false, err
	}
	return rec, created, nil
}
