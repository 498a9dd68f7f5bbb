package api

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/types"
)

// newElection registers a new election
// POST /elections
func (a *API) newElection(w http.ResponseWriter, r *http.Request) {
	caller, _ := Caller(r.Context())
	id, err := a.seq.RegisterElection(caller)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	log.Infow("new election", "electionId", id.String(), "caller", caller.Hex())
	httpWriteJSON(w, &NewElectionResponse{ElectionID: id})
}

// elections lists the registered elections
// GET /elections
func (a *API) elections(w http.ResponseWriter, r *http.Request) {
	list, err := a.seq.Elections()
	if err != nil {
		apiError(err).Write(w)
		return
	}
	if list == nil {
		list = []*types.ElectionRecord{}
	}
	httpWriteJSON(w, &ElectionsResponse{Elections: list})
}

// election returns an election record
// GET /elections/{electionId}
func (a *API) election(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	e, err := a.seq.Election(id)
	if err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteJSON(w, e)
}

// deregisterElection removes an election
// DELETE /elections/{electionId}
func (a *API) deregisterElection(w http.ResponseWriter, r *http.Request) {
	id, err := electionIDParam(r)
	if err != nil {
		ErrMalformedElectionID.WithErr(err).Write(w)
		return
	}
	caller, _ := Caller(r.Context())
	if err := a.seq.DeregisterElection(caller, id); err != nil {
		apiError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// lifecycle returns the handler of a phase transition of an election
// POST /elections/{electionId}/{registration,voting}/{open,close}
// POST /elections/{electionId}/complete
func (a *API) lifecycle(op func(common.Address, types.ElectionID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := electionIDParam(r)
		if err != nil {
			ErrMalformedElectionID.WithErr(err).Write(w)
			return
		}
		caller, _ := Caller(r.Context())
		if err := op(caller, id); err != nil {
			apiError(err).Write(w)
			return
		}
		e, err := a.seq.Election(id)
		if err != nil {
			apiError(err).Write(w)
			return
		}
		httpWriteJSON(w, e)
	}
}
