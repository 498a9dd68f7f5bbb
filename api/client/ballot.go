package client

import (
	"encoding/hex"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/api"
	"github.com/vocdoni/zkballot/types"
)

func electionPath(endpoint string, id types.ElectionID) string {
	return api.EndpointWithParam(endpoint, api.ElectionURLParam, id.String())
}

func candidatePath(endpoint string, id types.ElectionID, candidate types.CandidateID) string {
	return api.EndpointWithParam(electionPath(endpoint, id), api.CandidateURLParam, candidate.String())
}

// RegisterElection registers a new election. The signer must be a member
// of the election commission.
func (c *HTTPclient) RegisterElection() (types.ElectionID, error) {
	resp := &api.NewElectionResponse{}
	if err := c.call(HTTPPOST, struct{}{}, resp, nil, api.ElectionsEndpoint); err != nil {
		return 0, err
	}
	return resp.ElectionID, nil
}

func (c *HTTPclient) Election(id types.ElectionID) (*types.ElectionRecord, error) {
	e := &types.ElectionRecord{}
	if err := c.call(HTTPGET, nil, e, nil, electionPath(api.ElectionEndpoint, id)); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *HTTPclient) Elections() ([]*types.ElectionRecord, error) {
	resp := &api.ElectionsResponse{}
	if err := c.call(HTTPGET, nil, resp, nil, api.ElectionsEndpoint); err != nil {
		return nil, err
	}
	return resp.Elections, nil
}

func (c *HTTPclient) DeregisterElection(id types.ElectionID) error {
	return c.call(HTTPDELETE, nil, nil, nil, electionPath(api.ElectionEndpoint, id))
}

func (c *HTTPclient) OpenRegistration(id types.ElectionID) (*types.ElectionRecord, error) {
	return c.transition(api.OpenRegistrationEndpoint, id)
}

func (c *HTTPclient) CloseRegistration(id types.ElectionID) (*types.ElectionRecord, error) {
	return c.transition(api.CloseRegistrationEndpoint, id)
}

func (c *HTTPclient) OpenVoting(id types.ElectionID) (*types.ElectionRecord, error) {
	return c.transition(api.OpenVotingEndpoint, id)
}

func (c *HTTPclient) CloseVoting(id types.ElectionID) (*types.ElectionRecord, error) {
	return c.transition(api.CloseVotingEndpoint, id)
}

func (c *HTTPclient) CompleteElection(id types.ElectionID) (*types.ElectionRecord, error) {
	return c.transition(api.CompleteEndpoint, id)
}

func (c *HTTPclient) transition(endpoint string, id types.ElectionID) (*types.ElectionRecord, error) {
	e := &types.ElectionRecord{}
	if err := c.call(HTTPPOST, struct{}{}, e, nil, electionPath(endpoint, id)); err != nil {
		return nil, err
	}
	return e, nil
}

// RegisterCandidate registers a candidate. The signer must be a member of
// the election commission.
func (c *HTTPclient) RegisterCandidate(id types.ElectionID, name, info string) (types.CandidateID, error) {
	resp := &api.NewCandidateResponse{}
	req := &api.NewCandidate{Name: name, Info: info}
	if err := c.call(HTTPPOST, req, resp, nil, electionPath(api.CandidatesEndpoint, id)); err != nil {
		return 0, err
	}
	return resp.CandidateID, nil
}

func (c *HTTPclient) Candidates(id types.ElectionID) ([]*types.CandidateInfo, error) {
	resp := &api.CandidatesResponse{}
	if err := c.call(HTTPGET, nil, resp, nil, electionPath(api.CandidatesEndpoint, id)); err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

// RegisterVoter registers the signer as a voter of the election.
func (c *HTTPclient) RegisterVoter(id types.ElectionID, credential []byte) (*api.NewVoterResponse, error) {
	resp := &api.NewVoterResponse{}
	if err := c.call(HTTPPOST, &api.NewVoter{Credential: credential}, resp, nil, electionPath(api.VotersEndpoint, id)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPclient) Census(id types.ElectionID) (*api.CensusInfo, error) {
	resp := &api.CensusInfo{}
	if err := c.call(HTTPGET, nil, resp, nil, electionPath(api.VotersEndpoint, id)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPclient) VoterProof(id types.ElectionID, voter common.Address) (*types.CensusProof, error) {
	proof := &types.CensusProof{}
	p := api.EndpointWithParam(electionPath(api.VoterProofEndpoint, id), api.AddressURLParam, voter.Hex())
	if err := c.call(HTTPGET, nil, proof, nil, p); err != nil {
		return nil, err
	}
	return proof, nil
}

// VoterProofByRoot returns the inclusion proof of voter in the census whose
// current root is root.
func (c *HTTPclient) VoterProofByRoot(root []byte, voter common.Address) (*types.CensusProof, error) {
	proof := &types.CensusProof{}
	p := api.EndpointWithParam(api.CensusProofEndpoint, api.RootURLParam, hex.EncodeToString(root))
	p = api.EndpointWithParam(p, api.AddressURLParam, voter.Hex())
	if err := c.call(HTTPGET, nil, proof, nil, p); err != nil {
		return nil, err
	}
	return proof, nil
}

// CastVote sends a vote signed by the signer and returns the new count of
// the candidate.
func (c *HTTPclient) CastVote(vote *types.Vote) (types.VoteCount, error) {
	resp := &api.VoteResponse{}
	req := &api.Vote{CandidateID: vote.CandidateID, Commitment: vote.Commitment, Proof: vote.Proof}
	if err := c.call(HTTPPOST, req, resp, nil, electionPath(api.VotesEndpoint, vote.ElectionID)); err != nil {
		return types.VoteCount{}, err
	}
	return resp.Votes, nil
}

func (c *HTTPclient) Tally(id types.ElectionID, candidate types.CandidateID) (*api.CandidateTally, error) {
	resp := &api.CandidateTally{}
	if err := c.call(HTTPGET, nil, resp, nil, candidatePath(api.CandidateTallyEndpoint, id, candidate)); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPclient) Results(id types.ElectionID) (*api.Results, error) {
	resp := &api.Results{}
	if err := c.call(HTTPGET, nil, resp, nil, electionPath(api.TallyEndpoint, id)); err != nil {
		return nil, err
	}
	return resp, nil
}

// VerifyProofs verifies proofs on the server without casting them.
func (c *HTTPclient) VerifyProofs(proofs []api.ProofItem) ([]bool, error) {
	resp := &api.VerifyProofsResponse{}
	if err := c.call(HTTPPOST, &api.VerifyProofs{Proofs: proofs}, resp, nil, api.VerifyProofsEndpoint); err != nil {
		return nil, err
	}
	return resp.Valid, nil
}

// Events returns up to limit events appended after the event with id after.
func (c *HTTPclient) Events(after string, limit int) ([]*types.Event, error) {
	resp := &api.EventsResponse{}
	params := []string{"limit", strconv.Itoa(limit)}
	if after != "" {
		params = append(params, "after", after)
	}
	if err := c.call(HTTPGET, nil, resp, params, api.EventsEndpoint); err != nil {
		return nil, err
	}
	return resp.Events, nil
}
