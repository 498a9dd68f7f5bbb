package sequencer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// RegisterElection creates an election with both phases closed. The caller
// must be a member of the election commission.
func (s *Sequencer) RegisterElection(origin common.Address) (types.ElectionID, error) {
	var id types.ElectionID
	err := s.apply("register_election", origin, auth.RoleCommission, func(tx *storage.Tx) (*types.Event, error) {
		var err error
		if id, err = election.Register(tx); err != nil {
			return nil, err
		}
		return &types.Event{Type: types.EventElectionRegistered, ElectionID: id}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeregisterElection removes an election and its voter census. Removing an
// unknown election succeeds. Tallies are kept.
func (s *Sequencer) DeregisterElection(origin common.Address, id types.ElectionID) error {
	if err := s.apply("deregister_election", origin, auth.RoleCommission, func(tx *storage.Tx) (*types.Event, error) {
		if err := election.Deregister(tx, id); err != nil {
			return nil, err
		}
		return &types.Event{Type: types.EventElectionDeregistered, ElectionID: id}, nil
	}); err != nil {
		return err
	}
	if err := s.registry.DeleteCensus(id); err != nil {
		log.Warnw("failed to delete census", "election", id.String(), "error", err.Error())
	}
	return nil
}

func (s *Sequencer) OpenRegistration(origin common.Address, id types.ElectionID) error {
	return s.lifecycle("open_registration", origin, id, election.OpenRegistration, types.EventRegistrationOpened)
}

func (s *Sequencer) CloseRegistration(origin common.Address, id types.ElectionID) error {
	return s.lifecycle("close_registration", origin, id, election.CloseRegistration, types.EventRegistrationClosed)
}

func (s *Sequencer) OpenVoting(origin common.Address, id types.ElectionID) error {
	return s.lifecycle("open_voting", origin, id, election.OpenVoting, types.EventVotingOpened)
}

func (s *Sequencer) CloseVoting(origin common.Address, id types.ElectionID) error {
	return s.lifecycle("close_voting", origin, id, election.CloseVoting, types.EventVotingClosed)
}

// CompleteElection closes both phases for good.
func (s *Sequencer) CompleteElection(origin common.Address, id types.ElectionID) error {
	return s.lifecycle("complete_election", origin, id, election.Complete, types.EventElectionCompleted)
}

func (s *Sequencer) lifecycle(op string, origin common.Address, id types.ElectionID,
	fn func(*storage.Tx, types.ElectionID) error, evType types.EventType,
) error {
	return s.apply(op, origin, auth.RoleCommission, func(tx *storage.Tx) (*types.Event, error) {
		if err := fn(tx, id); err != nil {
			return nil, err
		}
		return &types.Event{Type: evType, ElectionID: id}, nil
	})
}
