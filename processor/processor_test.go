package processor

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkballot/crypto/pedersen"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/tally"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func openElection(c *qt.C, st *storage.Storage, voting bool) types.ElectionID {
	var id types.ElectionID
	c.Assert(st.Update(func(tx *storage.Tx) error {
		var err error
		if id, err = election.Register(tx); err != nil {
			return err
		}
		if voting {
			return election.OpenVoting(tx, id)
		}
		return nil
	}), qt.IsNil)
	return id
}

func castVote(st *storage.Storage, p *VoteProcessor, vote *types.Vote) (types.VoteCount, error) {
	var count types.VoteCount
	err := st.Update(func(tx *storage.Tx) error {
		var err error
		count, err = p.CastVote(tx, vote)
		return err
	})
	return count, err
}

func TestNewVote(t *testing.T) {
	c := qt.New(t)
	vote, err := NewVote(1, 2, 2, []byte("seed"), "")
	c.Assert(err, qt.IsNil)
	c.Assert(vote.ElectionID, qt.Equals, types.ElectionID(1))
	c.Assert(vote.CandidateID, qt.Equals, types.CandidateID(2))
	blinding := pedersen.BlindingFromSeed([]byte("seed"))
	c.Assert([]byte(vote.Commitment), qt.DeepEquals, pedersen.Commit(2, &blinding).Bytes())

	p := NewVoteProcessor(nil, "")
	c.Assert(p.Label(), qt.Equals, types.DefaultTranscriptLabel)
	c.Assert(p.VerifyVote(vote), qt.IsNil)
	c.Assert(NewVoteProcessor(nil, "other").VerifyVote(vote), qt.ErrorIs, ErrProofVerificationFailed)
}

func TestNewVoteRandomBlinding(t *testing.T) {
	c := qt.New(t)
	v1, err := NewVote(1, 2, 1, nil, "")
	c.Assert(err, qt.IsNil)
	v2, err := NewVote(1, 2, 1, []byte{}, "")
	c.Assert(err, qt.IsNil)
	// same value, independent blinding factors
	c.Assert([]byte(v1.Commitment), qt.Not(qt.DeepEquals), []byte(v2.Commitment))

	p := NewVoteProcessor(nil, "")
	c.Assert(p.VerifyVote(v1), qt.IsNil)
	c.Assert(p.VerifyVote(v2), qt.IsNil)
}

func TestCastVote(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))
	p := NewVoteProcessor(nil, "")
	e := openElection(c, st, true)

	verifications := 0
	p.SetVerifyObserver(func(ok bool, took time.Duration) { verifications++ })

	for i := 1; i <= 2; i++ {
		vote, err := NewVote(e, 1, 1, []byte{byte(i)}, "")
		c.Assert(err, qt.IsNil)
		count, err := castVote(st, p, vote)
		c.Assert(err, qt.IsNil)
		c.Assert(count.String(), qt.Equals, types.NewVoteCount(uint64(i)).String())
	}
	c.Assert(verifications, qt.Equals, 2)
}

func TestCastVoteClosed(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))
	p := NewVoteProcessor(nil, "")
	e := openElection(c, st, false)

	vote, err := NewVote(e, 1, 1, []byte("seed"), "")
	c.Assert(err, qt.IsNil)
	_, err = castVote(st, p, vote)
	c.Assert(err, qt.ErrorIs, ErrInvalidElectionIDOrNotOpenForVoting)

	vote.ElectionID = 77
	_, err = castVote(st, p, vote)
	c.Assert(err, qt.ErrorIs, ErrInvalidElectionIDOrNotOpenForVoting)

	_, ok, err := tally.Get(st.View, e, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestCastVoteBadProof(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))
	p := NewVoteProcessor(nil, "")
	e := openElection(c, st, true)

	good, err := NewVote(e, 1, 1, []byte("seed"), "")
	c.Assert(err, qt.IsNil)
	_, err = castVote(st, p, good)
	c.Assert(err, qt.IsNil)

	corrupted, err := NewVote(e, 1, 1, []byte("seed2"), "")
	c.Assert(err, qt.IsNil)
	corrupted.Proof[100] ^= 0xff
	_, err = castVote(st, p, corrupted)
	c.Assert(err, qt.ErrorIs, ErrProofVerificationFailed)

	// the commitment of another vote does not match the proof
	mismatched, err := NewVote(e, 1, 1, []byte("seed3"), "")
	c.Assert(err, qt.IsNil)
	mismatched.Commitment = good.Commitment
	_, err = castVote(st, p, mismatched)
	c.Assert(err, qt.ErrorIs, ErrProofVerificationFailed)

	// a malformed commitment
	malformed, err := NewVote(e, 1, 1, []byte("seed4"), "")
	c.Assert(err, qt.IsNil)
	malformed.Commitment = malformed.Commitment[:10]
	_, err = castVote(st, p, malformed)
	c.Assert(err, qt.ErrorIs, ErrProofVerificationFailed)

	count, ok, err := tally.Get(st.View, e, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(count.String(), qt.Equals, "1")
}

func TestCountRechecksElection(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))
	p := NewVoteProcessor(nil, "")
	e := openElection(c, st, true)

	vote, err := NewVote(e, 3, 1, []byte("seed"), "")
	c.Assert(err, qt.IsNil)
	c.Assert(p.VerifyVote(vote), qt.IsNil)

	// voting closes between verification and counting
	c.Assert(st.Update(func(tx *storage.Tx) error { return election.CloseVoting(tx, e) }), qt.IsNil)
	err = st.Update(func(tx *storage.Tx) error {
		_, err := p.Count(tx, vote)
		return err
	})
	c.Assert(err, qt.ErrorIs, ErrInvalidElectionIDOrNotOpenForVoting)
}
