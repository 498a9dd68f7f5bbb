package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/crypto/ethereum"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/metrics"
	"github.com/vocdoni/zkballot/processor"
	"github.com/vocdoni/zkballot/sequencer"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db/metadb"
)

type testAPI struct {
	c          *qt.C
	api        *API
	seq        *sequencer.Sequencer
	commission *ethereum.SignKeys
}

func newKeys(c *qt.C) *ethereum.SignKeys {
	k := ethereum.NewSignKeys()
	c.Assert(k.Generate(), qt.IsNil)
	return k
}

func newTestAPI(t *testing.T) *testAPI {
	c := qt.New(t)
	commission := newKeys(c)
	m, err := metrics.New()
	c.Assert(err, qt.IsNil)
	seq, err := sequencer.New(&sequencer.Config{
		Storage:        storage.New(metadb.NewTest(t)),
		Authorizer:     auth.NewCommissionList(commission.Address()),
		ProofCacheSize: 16,
		Metrics:        m,
	})
	c.Assert(err, qt.IsNil)
	a, err := newAPI(&APIConfig{Sequencer: seq, Metrics: m})
	c.Assert(err, qt.IsNil)
	return &testAPI{c: c, api: a, seq: seq, commission: commission}
}

// request sends a request to the router. If keys is not nil the request is
// signed. The response body is decoded into out when the status is 200.
func (ta *testAPI) request(method, path string, body any, keys *ethereum.SignKeys, out any) int {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		ta.c.Assert(err, qt.IsNil)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	if keys != nil {
		ta.c.Assert(SignRequest(req, data, keys, time.Now()), qt.IsNil)
	}
	return ta.do(req, out)
}

func (ta *testAPI) do(req *http.Request, out any) int {
	w := httptest.NewRecorder()
	ta.api.Router().ServeHTTP(w, req)
	if w.Code == http.StatusOK && out != nil {
		ta.c.Assert(json.Unmarshal(w.Body.Bytes(), out), qt.IsNil, qt.Commentf("%s", w.Body.String()))
	}
	if w.Code != http.StatusOK && out != nil {
		if e, ok := out.(*Error); ok {
			ta.c.Assert(json.Unmarshal(w.Body.Bytes(), e), qt.IsNil)
		}
	}
	return w.Code
}

func electionPath(endpoint string, id types.ElectionID) string {
	return EndpointWithParam(endpoint, ElectionURLParam, id.String())
}

func (ta *testAPI) newElection() types.ElectionID {
	resp := &NewElectionResponse{}
	ta.c.Assert(ta.request(http.MethodPost, ElectionsEndpoint, struct{}{}, ta.commission, resp), qt.Equals, http.StatusOK)
	return resp.ElectionID
}

func TestPing(t *testing.T) {
	ta := newTestAPI(t)
	ta.c.Assert(ta.request(http.MethodGet, PingEndpoint, nil, nil, nil), qt.Equals, http.StatusOK)

	apiErr := &Error{}
	ta.c.Assert(ta.request(http.MethodGet, "/nothing/here", nil, nil, apiErr), qt.Equals, http.StatusNotFound)
	ta.c.Assert(apiErr.Code, qt.Equals, ErrResourceNotFound.Code)
}

func TestSignedRequests(t *testing.T) {
	ta := newTestAPI(t)
	c := ta.c

	// unsigned
	apiErr := &Error{}
	c.Assert(ta.request(http.MethodPost, ElectionsEndpoint, struct{}{}, nil, apiErr), qt.Equals, http.StatusUnauthorized)
	c.Assert(apiErr.Code, qt.Equals, ErrUnauthenticated.Code)

	// signed by someone outside the commission
	apiErr = &Error{}
	c.Assert(ta.request(http.MethodPost, ElectionsEndpoint, struct{}{}, newKeys(c), apiErr), qt.Equals, http.StatusForbidden)
	c.Assert(apiErr.Code, qt.Equals, ErrUnauthorized.Code)

	id := ta.newElection()
	c.Assert(id, qt.Equals, types.ElectionID(1))

	// the same signed request sent twice
	body := []byte("{}")
	req := httptest.NewRequest(http.MethodPost, ElectionsEndpoint, bytes.NewReader(body))
	c.Assert(SignRequest(req, body, ta.commission, time.Now()), qt.IsNil)
	replay := req.Clone(req.Context())
	replay.Body = io.NopCloser(bytes.NewReader(body))
	c.Assert(ta.do(req, nil), qt.Equals, http.StatusOK)
	apiErr = &Error{}
	c.Assert(ta.do(replay, apiErr), qt.Equals, http.StatusUnauthorized)
	c.Assert(apiErr.Code, qt.Equals, ErrReplayedRequest.Code)

	// a body that does not match the signature recovers another address
	req = httptest.NewRequest(http.MethodPost, ElectionsEndpoint, strings.NewReader(`{"x":1}`))
	c.Assert(SignRequest(req, body, ta.commission, time.Now()), qt.IsNil)
	c.Assert(ta.do(req, nil), qt.Equals, http.StatusForbidden)

	// a timestamp out of the window
	req = httptest.NewRequest(http.MethodPost, ElectionsEndpoint, bytes.NewReader(body))
	c.Assert(SignRequest(req, body, ta.commission, time.Now().Add(-time.Hour)), qt.IsNil)
	apiErr = &Error{}
	c.Assert(ta.do(req, apiErr), qt.Equals, http.StatusUnauthorized)
	c.Assert(apiErr.Code, qt.Equals, ErrExpiredSignature.Code)

	// a malformed signature
	req = httptest.NewRequest(http.MethodPost, ElectionsEndpoint, bytes.NewReader(body))
	c.Assert(SignRequest(req, body, ta.commission, time.Now()), qt.IsNil)
	req.Header.Set(SignatureHeader, "0xzz")
	apiErr = &Error{}
	c.Assert(ta.do(req, apiErr), qt.Equals, http.StatusUnauthorized)
	c.Assert(apiErr.Code, qt.Equals, ErrInvalidSignature.Code)

	// the nonce is part of the signed message
	req = httptest.NewRequest(http.MethodPost, ElectionsEndpoint, bytes.NewReader(body))
	c.Assert(SignRequest(req, body, ta.commission, time.Now()), qt.IsNil)
	req.Header.Del(NonceHeader)
	apiErr = &Error{}
	c.Assert(ta.do(req, apiErr), qt.Equals, http.StatusUnauthorized)
	c.Assert(apiErr.Code, qt.Equals, ErrUnauthenticated.Code)

	list := &ElectionsResponse{}
	c.Assert(ta.request(http.MethodGet, ElectionsEndpoint, nil, nil, list), qt.Equals, http.StatusOK)
	c.Assert(list.Elections, qt.HasLen, 2)
}

func TestVoteFlow(t *testing.T) {
	ta := newTestAPI(t)
	c := ta.c
	voter := newKeys(c)

	id := ta.newElection()
	rec := &types.ElectionRecord{}
	c.Assert(ta.request(http.MethodPost, electionPath(OpenRegistrationEndpoint, id), struct{}{}, ta.commission, rec), qt.Equals, http.StatusOK)
	c.Assert(rec.RegistrationOpen, qt.IsTrue)

	// opening twice is a conflict
	apiErr := &Error{}
	c.Assert(ta.request(http.MethodPost, electionPath(OpenRegistrationEndpoint, id), struct{}{}, ta.commission, apiErr), qt.Equals, http.StatusConflict)
	c.Assert(apiErr.Code, qt.Equals, ErrAlreadyOpenForRegistration.Code)

	cand := &NewCandidateResponse{}
	c.Assert(ta.request(http.MethodPost, electionPath(CandidatesEndpoint, id), &NewCandidate{Name: "alice"}, ta.commission, cand), qt.Equals, http.StatusOK)
	c.Assert(ta.request(http.MethodPost, electionPath(CandidatesEndpoint, id), &NewCandidate{}, ta.commission, nil), qt.Equals, http.StatusBadRequest)

	cands := &CandidatesResponse{}
	c.Assert(ta.request(http.MethodGet, electionPath(CandidatesEndpoint, id), nil, nil, cands), qt.Equals, http.StatusOK)
	c.Assert(cands.Candidates, qt.HasLen, 1)
	c.Assert(cands.Candidates[0].Name, qt.Equals, "alice")

	nv := &NewVoterResponse{}
	c.Assert(ta.request(http.MethodPost, electionPath(VotersEndpoint, id), &NewVoter{Credential: []byte("cred")}, voter, nv), qt.Equals, http.StatusOK)
	c.Assert(nv.Created, qt.IsTrue)
	c.Assert(nv.Voter.Address, qt.Equals, voter.Address())

	census := &CensusInfo{}
	c.Assert(ta.request(http.MethodGet, electionPath(VotersEndpoint, id), nil, nil, census), qt.Equals, http.StatusOK)
	c.Assert(census.Size, qt.Equals, 1)
	proof := &types.CensusProof{}
	proofPath := EndpointWithParam(electionPath(VoterProofEndpoint, id), AddressURLParam, voter.Address().Hex())
	c.Assert(ta.request(http.MethodGet, proofPath, nil, nil, proof), qt.Equals, http.StatusOK)
	c.Assert([]byte(proof.Root), qt.DeepEquals, []byte(census.Root))
	c.Assert(census.Voters, qt.DeepEquals, []*VoterEntry{{Address: voter.Address(), Index: 0}})

	censusProofPath := func(root string) string {
		return EndpointWithParam(EndpointWithParam(CensusProofEndpoint, RootURLParam, root), AddressURLParam, voter.Address().Hex())
	}
	byRoot := &types.CensusProof{}
	c.Assert(ta.request(http.MethodGet, censusProofPath(hex.EncodeToString(census.Root)), nil, nil, byRoot), qt.Equals, http.StatusOK)
	c.Assert(byRoot, qt.DeepEquals, proof)
	apiErr = &Error{}
	c.Assert(ta.request(http.MethodGet, censusProofPath("0x0102"), nil, nil, apiErr), qt.Equals, http.StatusNotFound)
	c.Assert(apiErr.Code, qt.Equals, ErrCensusRootNotFound.Code)
	c.Assert(ta.request(http.MethodGet, censusProofPath("zz"), nil, nil, nil), qt.Equals, http.StatusBadRequest)

	vote, err := processor.NewVote(id, cand.CandidateID, 1, []byte("seed"), ta.seq.TranscriptLabel())
	c.Assert(err, qt.IsNil)
	body := &Vote{CandidateID: vote.CandidateID, Commitment: vote.Commitment, Proof: vote.Proof}

	// voting is not open yet
	apiErr = &Error{}
	c.Assert(ta.request(http.MethodPost, electionPath(VotesEndpoint, id), body, voter, apiErr), qt.Equals, http.StatusConflict)
	c.Assert(apiErr.Code, qt.Equals, ErrVotingNotAllowed.Code)

	c.Assert(ta.request(http.MethodPost, electionPath(OpenVotingEndpoint, id), struct{}{}, ta.commission, nil), qt.Equals, http.StatusOK)

	// a corrupted proof is rejected
	bad := &Vote{CandidateID: vote.CandidateID, Commitment: vote.Commitment, Proof: append(types.HexBytes(nil), vote.Proof...)}
	bad.Proof[10] ^= 0x01
	apiErr = &Error{}
	c.Assert(ta.request(http.MethodPost, electionPath(VotesEndpoint, id), bad, voter, apiErr), qt.Equals, http.StatusUnprocessableEntity)
	c.Assert(apiErr.Code, qt.Equals, ErrProofVerificationFailed.Code)

	resp := &VoteResponse{}
	c.Assert(ta.request(http.MethodPost, electionPath(VotesEndpoint, id), body, voter, resp), qt.Equals, http.StatusOK)
	c.Assert(resp.Votes.String(), qt.Equals, "1")

	tally := &CandidateTally{}
	tallyPath := EndpointWithParam(electionPath(CandidateTallyEndpoint, id), CandidateURLParam, cand.CandidateID.String())
	c.Assert(ta.request(http.MethodGet, tallyPath, nil, nil, tally), qt.Equals, http.StatusOK)
	c.Assert(tally.Counted, qt.IsTrue)
	c.Assert(tally.Votes.String(), qt.Equals, "1")

	results := &Results{}
	c.Assert(ta.request(http.MethodGet, electionPath(TallyEndpoint, id), nil, nil, results), qt.Equals, http.StatusOK)
	c.Assert(results.Results, qt.HasLen, 1)

	c.Assert(ta.request(http.MethodPost, electionPath(CompleteEndpoint, id), struct{}{}, ta.commission, rec), qt.Equals, http.StatusOK)
	c.Assert(rec.Complete, qt.IsTrue)
	c.Assert(rec.VotingOpen, qt.IsFalse)

	events := &EventsResponse{}
	c.Assert(ta.request(http.MethodGet, EventsEndpoint, nil, nil, events), qt.Equals, http.StatusOK)
	c.Assert(events.Events, qt.HasLen, 7)
	c.Assert(events.Events[5].Type, qt.Equals, types.EventVoteCasted)
	c.Assert(events.Events[5].Caller, qt.Equals, voter.Address())

	page := &EventsResponse{}
	c.Assert(ta.request(http.MethodGet, EventsEndpoint+"?limit=2&after="+events.Events[4].ID, nil, nil, page), qt.Equals, http.StatusOK)
	c.Assert(page.Events, qt.HasLen, 2)
	c.Assert(page.Events[0].ID, qt.Equals, events.Events[5].ID)
	c.Assert(ta.request(http.MethodGet, EventsEndpoint+"?limit=-1", nil, nil, nil), qt.Equals, http.StatusBadRequest)
}

func TestElectionNotFound(t *testing.T) {
	ta := newTestAPI(t)
	c := ta.c

	apiErr := &Error{}
	c.Assert(ta.request(http.MethodGet, electionPath(ElectionEndpoint, 42), nil, nil, apiErr), qt.Equals, http.StatusNotFound)
	c.Assert(apiErr.Code, qt.Equals, ErrElectionNotFound.Code)
	c.Assert(ta.request(http.MethodGet, ElectionsEndpoint+"/abc", nil, nil, apiErr), qt.Equals, http.StatusBadRequest)
	c.Assert(ta.request(http.MethodGet, electionPath(VotersEndpoint, 42), nil, nil, nil), qt.Equals, http.StatusNotFound)

	id := ta.newElection()
	c.Assert(ta.request(http.MethodDelete, electionPath(ElectionEndpoint, id), nil, ta.commission, nil), qt.Equals, http.StatusOK)
	c.Assert(ta.request(http.MethodGet, electionPath(ElectionEndpoint, id), nil, nil, nil), qt.Equals, http.StatusNotFound)
}

func TestVerifyProofsEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	c := ta.c
	vote, err := processor.NewVote(1, 1, 5, []byte("seed"), ta.seq.TranscriptLabel())
	c.Assert(err, qt.IsNil)

	req := &VerifyProofs{Proofs: []ProofItem{
		{Commitment: vote.Commitment, Proof: vote.Proof},
		{Commitment: vote.Commitment, Proof: vote.Proof, Label: "other"},
		{Commitment: []byte{1, 2, 3}, Proof: vote.Proof},
	}}
	resp := &VerifyProofsResponse{}
	c.Assert(ta.request(http.MethodPost, VerifyProofsEndpoint, req, nil, resp), qt.Equals, http.StatusOK)
	c.Assert(resp.Valid, qt.DeepEquals, []bool{true, false, false})

	c.Assert(ta.request(http.MethodPost, VerifyProofsEndpoint, &VerifyProofs{}, nil, nil), qt.Equals, http.StatusBadRequest)

	long := &VerifyProofs{Proofs: []ProofItem{
		{Commitment: vote.Commitment, Proof: vote.Proof, Label: strings.Repeat("x", rangeproof.MaxLabelSize+1)},
	}}
	c.Assert(ta.request(http.MethodPost, VerifyProofsEndpoint, long, nil, nil), qt.Equals, http.StatusBadRequest)
}

func TestMetricsEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	ta.newElection()

	w := httptest.NewRecorder()
	ta.api.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, MetricsEndpoint, nil))
	ta.c.Assert(w.Code, qt.Equals, http.StatusOK)
	ta.c.Assert(w.Body.String(), qt.Contains, `zkballot_operations_total{operation="register_election",result="ok"} 1`)
}
