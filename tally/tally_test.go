package tally

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db/metadb"
)

func increment(st *storage.Storage, e types.ElectionID, cand types.CandidateID) (types.VoteCount, error) {
	var count types.VoteCount
	err := st.Update(func(tx *storage.Tx) error {
		var err error
		count, err = Increment(tx, e, cand)
		return err
	})
	return count, err
}

func TestIncrement(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))

	_, ok, err := Get(st.View, 1, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	// interleaved increments over several keys
	keys := []struct {
		e    types.ElectionID
		cand types.CandidateID
	}{{1, 1}, {1, 2}, {2, 1}, {1, 1}, {2, 1}, {1, 1}}
	for _, k := range keys {
		_, err := increment(st, k.e, k.cand)
		c.Assert(err, qt.IsNil)
	}
	for _, want := range []struct {
		e     types.ElectionID
		cand  types.CandidateID
		votes string
	}{{1, 1, "3"}, {1, 2, "1"}, {2, 1, "2"}} {
		count, ok, err := Get(st.View, want.e, want.cand)
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue)
		c.Assert(count.String(), qt.Equals, want.votes)
	}

	results, err := Results(st.View, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(results, qt.HasLen, 2)
	c.Assert(results[0].CandidateID, qt.Equals, types.CandidateID(1))
	c.Assert(results[0].Votes.String(), qt.Equals, "3")
}

func TestIncrementWithinTransaction(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))

	// increments in the same transaction see each other
	c.Assert(st.Update(func(tx *storage.Tx) error {
		for i := 0; i < 4; i++ {
			if _, err := Increment(tx, 1, 7); err != nil {
				return err
			}
		}
		return nil
	}), qt.IsNil)
	count, _, err := Get(st.View, 1, 7)
	c.Assert(err, qt.IsNil)
	c.Assert(count.String(), qt.Equals, "4")

	// a discarded increment is not counted
	tx := st.Begin()
	_, err = Increment(tx, 1, 7)
	c.Assert(err, qt.IsNil)
	tx.Discard()
	count, _, err = Get(st.View, 1, 7)
	c.Assert(err, qt.IsNil)
	c.Assert(count.String(), qt.Equals, "4")
}

func TestIncrementOverflow(t *testing.T) {
	c := qt.New(t)
	st := storage.New(metadb.NewTest(t))
	c.Assert(st.Update(func(tx *storage.Tx) error {
		return tx.SetTally(1, 1, types.MaxVoteCount())
	}), qt.IsNil)

	_, err := increment(st, 1, 1)
	c.Assert(err, qt.ErrorIs, types.ErrArithmeticOverflow)
	count, ok, err := Get(st.View, 1, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(count.Cmp(types.MaxVoteCount()), qt.Equals, 0)
}
