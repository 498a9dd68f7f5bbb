package client

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkballot/api"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/crypto/ethereum"
	"github.com/vocdoni/zkballot/processor"
	"github.com/vocdoni/zkballot/sequencer"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func newKeys(c *qt.C) *ethereum.SignKeys {
	k := ethereum.NewSignKeys()
	c.Assert(k.Generate(), qt.IsNil)
	return k
}

func TestClient(t *testing.T) {
	c := qt.New(t)
	commission, voter := newKeys(c), newKeys(c)

	seq, err := sequencer.New(&sequencer.Config{
		Storage:    storage.New(metadb.NewTest(t)),
		Authorizer: auth.NewCommissionList(commission.Address()),
	})
	c.Assert(err, qt.IsNil)
	srv, err := api.New(&api.APIConfig{Host: "127.0.0.1", Port: 0, Sequencer: seq})
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = srv.Close(context.Background()) })

	cli, err := New("http://" + srv.Addr().String())
	c.Assert(err, qt.IsNil)

	// unsigned requests are rejected
	_, err = cli.RegisterElection()
	c.Assert(errors.Is(err, api.ErrUnauthenticated), qt.IsTrue, qt.Commentf("%v", err))

	cli.SetSigner(commission)
	id, err := cli.RegisterElection()
	c.Assert(err, qt.IsNil)
	_, err = cli.OpenRegistration(id)
	c.Assert(err, qt.IsNil)
	cand, err := cli.RegisterCandidate(id, "alice", "")
	c.Assert(err, qt.IsNil)
	cands, err := cli.Candidates(id)
	c.Assert(err, qt.IsNil)
	c.Assert(cands, qt.HasLen, 1)

	cli.SetSigner(voter)
	reg, err := cli.RegisterVoter(id, []byte("credential"))
	c.Assert(err, qt.IsNil)
	c.Assert(reg.Created, qt.IsTrue)
	reg, err = cli.RegisterVoter(id, []byte("credential"))
	c.Assert(err, qt.IsNil)
	c.Assert(reg.Created, qt.IsFalse)
	census, err := cli.Census(id)
	c.Assert(err, qt.IsNil)
	c.Assert(census.Size, qt.Equals, 1)
	proof, err := cli.VoterProof(id, voter.Address())
	c.Assert(err, qt.IsNil)
	c.Assert([]byte(proof.Root), qt.DeepEquals, []byte(census.Root))
	c.Assert(census.Voters, qt.HasLen, 1)
	byRoot, err := cli.VoterProofByRoot(census.Root, voter.Address())
	c.Assert(err, qt.IsNil)
	c.Assert(byRoot, qt.DeepEquals, proof)

	// the voter is not part of the commission
	_, err = cli.OpenVoting(id)
	c.Assert(errors.Is(err, api.ErrUnauthorized), qt.IsTrue)

	cli.SetSigner(commission)
	e, err := cli.OpenVoting(id)
	c.Assert(err, qt.IsNil)
	c.Assert(e.VotingOpen, qt.IsTrue)

	cli.SetSigner(voter)
	vote, err := processor.NewVote(id, cand, 1, []byte("seed"), seq.TranscriptLabel())
	c.Assert(err, qt.IsNil)
	valid, err := cli.VerifyProofs([]api.ProofItem{{Commitment: vote.Commitment, Proof: vote.Proof}})
	c.Assert(err, qt.IsNil)
	c.Assert(valid, qt.DeepEquals, []bool{true})

	count, err := cli.CastVote(vote)
	c.Assert(err, qt.IsNil)
	c.Assert(count.String(), qt.Equals, "1")

	vote.Proof[0] ^= 0x01
	_, err = cli.CastVote(vote)
	c.Assert(errors.Is(err, api.ErrProofVerificationFailed), qt.IsTrue)

	tally, err := cli.Tally(id, cand)
	c.Assert(err, qt.IsNil)
	c.Assert(tally.Counted, qt.IsTrue)
	c.Assert(tally.Votes, qt.Equals, types.NewVoteCount(1))
	results, err := cli.Results(id)
	c.Assert(err, qt.IsNil)
	c.Assert(results.Results, qt.HasLen, 1)

	events, err := cli.Events("", 100)
	c.Assert(err, qt.IsNil)
	c.Assert(events, qt.HasLen, 6)
	c.Assert(events[len(events)-1].Type, qt.Equals, types.EventVoteCasted)

	_, err = cli.Election(99)
	c.Assert(errors.Is(err, api.ErrElectionNotFound), qt.IsTrue)
}
