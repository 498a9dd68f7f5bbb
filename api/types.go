package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// NewElectionResponse is the response to an election registration.
type NewElectionResponse struct {
	ElectionID types.ElectionID `json:"electionId"`
}

// ElectionsResponse lists the registered elections.
type ElectionsResponse struct {
	Elections []*types.ElectionRecord `json:"elections"`
}

// NewCandidate is the body of a candidate registration.
type NewCandidate struct {
	Name string `json:"name"`
	Info string `json:"info,omitempty"`
}

// NewCandidateResponse is the response to a candidate registration.
type NewCandidateResponse struct {
	CandidateID types.CandidateID `json:"candidateId"`
}

// CandidatesResponse lists the candidates of an election.
type CandidatesResponse struct {
	Candidates []*types.CandidateInfo `json:"candidates"`
}

// NewVoter is the body of a voter registration. The voter is the signer of
// the request.
type NewVoter struct {
	Credential types.HexBytes `json:"credential"`
}

// NewVoterResponse is the response to a voter registration. Created is false
// when the caller was already registered.
type NewVoterResponse struct {
	Voter   *types.VoterRecord `json:"voter"`
	Created bool               `json:"created"`
}

// CensusInfo describes the voter census of an election.
type CensusInfo struct {
	Root   types.HexBytes `json:"root"`
	Size   int            `json:"size"`
	Voters []*VoterEntry  `json:"voters"`
}

// VoterEntry is a registered voter. The credential is left out.
type VoterEntry struct {
	Address common.Address `json:"address"`
	Index   uint64         `json:"index"`
}

// Vote is the body of a vote. The election is taken from the URL.
type Vote struct {
	CandidateID types.CandidateID `json:"candidateId"`
	Commitment  types.HexBytes    `json:"commitment"`
	Proof       types.HexBytes    `json:"proof"`
}

// VoteResponse is the response to a counted vote.
type VoteResponse struct {
	Votes types.VoteCount `json:"votes"`
}

// CandidateTally is the tally of a candidate. Counted is false when the
// candidate has received no votes yet.
type CandidateTally struct {
	ElectionID  types.ElectionID  `json:"electionId"`
	CandidateID types.CandidateID `json:"candidateId"`
	Votes       types.VoteCount   `json:"votes"`
	Counted     bool              `json:"counted"`
}

// Results is the tally of an election.
type Results struct {
	ElectionID types.ElectionID     `json:"electionId"`
	Results    []storage.TallyEntry `json:"results"`
}

// ProofItem is a proof to verify. An empty label means the label of votes.
type ProofItem struct {
	Commitment types.HexBytes `json:"commitment"`
	Proof      types.HexBytes `json:"proof"`
	Label      string         `json:"label,omitempty"`
}

// VerifyProofs is the body of a batch verification.
type VerifyProofs struct {
	Proofs []ProofItem `json:"proofs"`
}

// VerifyProofsResponse holds the result of each proof, in order.
type VerifyProofsResponse struct {
	Valid []bool `json:"valid"`
}

// EventsResponse is a page of the event journal.
type EventsResponse struct {
	Events []*types.Event `json:"events"`
}
