package api

import (
	"encoding/json"
	"net/http"

	"github.com/vocdoni/zkballot/crypto/pedersen"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

// maxBatchProofs bounds the proofs of a single verification request.
const maxBatchProofs = 256

// newVote casts a vote
// POST /elections/{electionId}/votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	req := &Vote{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	caller, _ := Caller(r.Context())
	count, err := a.seq.CastVote(caller, &types.Vote{
		ElectionID:  id,
		CandidateID: req.CandidateID,
		Commitment:  req.Commitment,
		Proof:       req.Proof,
	})
	if err != nil {
		apiError(err).Write(w)
		return
	}
	log.Debugw("vote cast", "electionId", id.String(), "candidateId", req.CandidateID.String())
	httpWriteJSON(w, &VoteResponse{Votes: count})
}

// results returns the tally of every candidate with votes
// GET /elections/{electionId}/tally
func (a *API) results(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	results, err := a.seq.Results(id)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	res := &Results{ElectionID: id, Results: results}
	if res.Results == nil {
		res.Results = []storage.TallyEntry{}
	}
	httpWriteJSON(w, res)
}

// candidateTally returns the tally of a candidate
// GET /elections/{electionId}/tally/{candidateId}
func (a *API) candidateTally(w http.ResponseWriter, r *http.Request) {
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
	count, counted, err := a.seq.Tally(id, candidateID)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, &CandidateTally{ElectionID: id, CandidateID: candidateID, Votes: count, Counted: counted})
}

// verifyProofs verifies a batch of range proofs without changing any state
// POST /proofs/verify
func (a *API) verifyProofs(w http.ResponseWriter, r *http.Request) {
	req := &VerifyProofs{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if len(req.Proofs) == 0 || len(req.Proofs) > maxBatchProofs {
		ErrMalformedBody.Withf("between 1 and %d proofs expected", maxBatchProofs).Write(w)
		return
	}
	items := make([]rangeproof.BatchItem, 0, len(req.Proofs))
	malformed := make([]bool, len(req.Proofs))
	for i, p := range req.Proofs {
		if len(p.Label) > rangeproof.MaxLabelSize {
			ErrMalformedBody.Withf("proof %d: label longer than %d bytes", i, rangeproof.MaxLabelSize).Write(w)
			return
		}
		commitment, err := pedersen.CommitmentFromBytes(p.Commitment)
		if err != nil {
			malformed[i] = true
		}
		items = append(items, rangeproof.BatchItem{Commitment: commitment, Proof: p.Proof, Label: p.Label})
	}
	valid, err := a.seq.VerifyProofs(r.Context(), items, 0)
	if err != nil {
		ErrGenericInternalServerError.WithErr(err).Write(w)
		return
	}
	for i := range valid {
		valid[i] = valid[i] && !malformed[i]
	}
	httpWriteJSON(w, &VerifyProofsResponse{Valid: valid})
}
