package api

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/zkballot/types"
	"github.com/vocdoni/zkballot/util"
)

// newCandidate registers a candidate
// POST /elections/{electionId}/candidates
func (a *API) newCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	req := &NewCandidate{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Name == "" {
		ErrMalformedBody.With("missing candidate name").Write(w)
		return
	}
	caller, _ := Caller(r.Context())
	candidateID, err := a.seq.RegisterCandidate(caller, id, req.Name, req.Info)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, &NewCandidateResponse{CandidateID: candidateID})
}

// candidates lists the candidates of an election
// GET /elections/{electionId}/candidates
func (a *API) candidates(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	list, err := a.seq.Candidates(id)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	if list == nil {
		list = []*types.CandidateInfo{}
	}
	httpWriteJSON(w, &CandidatesResponse{Candidates: list})
}

// candidate returns a candidate
// GET /elections/{electionId}/candidates/{candidateId}
func (a *API) candidate(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	candidateID, err := candidateIDParam(r)
	if err != nil {
		ErrMalformedCandidateID.WithErr(err).Write(w)
		return
	}
	info, err := a.seq.Candidate(id, candidateID)
	if err != nil {
		ErrCandidateNotFound.WithErr(err).Write(w)
		return
	}
	httpWriteJSON(w, info)
}

// newVoter registers the caller as a voter
// POST /elections/{electionId}/voters
func (a *API) newVoter(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	req := &NewVoter{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	caller, _ := Caller(r.Context())
	rec, created, err := a.seq.RegisterVoter(caller, id, req.Credential)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, &NewVoterResponse{Voter: rec, Created: created})
}

// censusInfo returns the root, size and voters of the voter census
// GET /elections/{electionId}/voters
func (a *API) censusInfo(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	if _, err := a.seq.Election(id); err != nil {
		apiError(err).Write(w)
		return
	}
	root, size, err := a.seq.CensusRoot(id)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	voters, err := a.seq.Voters(id)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	info := &CensusInfo{Root: root, Size: size, Voters: make([]*VoterEntry, 0, len(voters))}
	for _, v := range voters {
		info.Voters = append(info.Voters, &VoterEntry{Address: v.Address, Index: v.Index})
	}
	httpWriteJSON(w, info)
}

// voterProof returns the census inclusion proof of a voter
// GET /elections/{electionId}/voters/{address}/proof
func (a *API) voterProof(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	addr, ok := addressParam(r)
	if !ok {
		ErrMalformedAddress.Write(w)
		return
	}
	proof, err := a.seq.VoterProof(id, addr)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, proof)
}

// censusProof returns the inclusion proof of a voter in the census with the
// given current root
// GET /census/{root}/proof/{address}
func (a *API) censusProof(w http.ResponseWriter, r *http.Request) {
	root, err := hex.DecodeString(util.TrimHex(chi.URLParam(r, RootURLParam)))
	if err != nil || len(root) == 0 {
		ErrMalformedCensusRoot.Write(w)
		return
	}
	addr, ok := addressParam(r)
	if !ok {
		ErrMalformedAddress.Write(w)
		return
	}
	proof, err := a.seq.VoterProofByRoot(root, addr)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, proof)
}
