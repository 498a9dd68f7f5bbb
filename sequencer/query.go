package sequencer

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/tally"
	"github.com/vocdoni/zkballot/types"
)

// Election returns the election record or election.ErrInvalidElectionID.
func (s *Sequencer) Election(id types.ElectionID) (*types.ElectionRecord, error) {
	return election.Get(s.stg.View, id)
}

// Elections returns every registered election.
func (s *Sequencer) Elections() ([]*types.ElectionRecord, error) {
	return election.List(s.stg.View)
}

func (s *Sequencer) IsOpenForRegistration(id types.ElectionID) bool {
	return election.IsOpenForRegistration(s.stg.View, id)
}

func (s *Sequencer) IsOpenForVoting(id types.ElectionID) bool {
	return election.IsOpenForVoting(s.stg.View, id)
}

// Candidate returns a candidate of an election, or storage.ErrNotFound.
func (s *Sequencer) Candidate(electionID types.ElectionID, id types.CandidateID) (*types.CandidateInfo, error) {
	return s.stg.Candidate(electionID, id)
}

func (s *Sequencer) Candidates(electionID types.ElectionID) ([]*types.CandidateInfo, error) {
	return s.stg.Candidates(electionID)
}

// Voter returns the registration of address, or storage.ErrNotFound.
func (s *Sequencer) Voter(electionID types.ElectionID, address common.Address) (*types.VoterRecord, error) {
	return s.registry.Voter(s.stg.View, electionID, address)
}

// Voters returns the voters registered in an election, ordered by address.
func (s *Sequencer) Voters(electionID types.ElectionID) ([]*types.VoterRecord, error) {
	return s.stg.Voters(electionID)
}

// CensusRoot returns the root and size of the voter census of an election.
func (s *Sequencer) CensusRoot(electionID types.ElectionID) ([]byte, int, error) {
	return s.registry.CensusRoot(electionID)
}

// VoterProof returns the census inclusion proof of a voter.
func (s *Sequencer) VoterProof(electionID types.ElectionID, address common.Address) (*types.CensusProof, error) {
	return s.registry.VoterProof(electionID, address)
}

// VoterProofByRoot returns the inclusion proof of a voter in the census with
// the given current root.
func (s *Sequencer) VoterProofByRoot(root []byte, address common.Address) (*types.CensusProof, error) {
	return s.registry.VoterProofByRoot(root, address)
}

// Tally returns the votes of a candidate. The boolean is false when the
// candidate has no votes yet.
func (s *Sequencer) Tally(electionID types.ElectionID, candidateID types.CandidateID) (types.VoteCount, bool, error) {
	return tally.Get(s.stg.View, electionID, candidateID)
}

// Results returns the tally of every candidate with votes.
func (s *Sequencer) Results(electionID types.ElectionID) ([]storage.TallyEntry, error) {
	return tally.Results(s.stg.View, electionID)
}

// Events returns up to limit journal events appended after the given event.
func (s *Sequencer) Events(after string, limit int) ([]*types.Event, error) {
	return s.stg.Events(after, limit)
}
