package types

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/fxamacker/cbor/v2"
)

func TestVoteCountInc(t *testing.T) {
	c := qt.New(t)
	v := NewVoteCount(0)
	c.Assert(v.IsZero(), qt.IsTrue)
	for i := 0; i < 3; i++ {
		var err error
		v, err = v.Inc()
		c.Assert(err, qt.IsNil)
	}
	n, ok := v.Uint64()
	c.Assert(ok, qt.IsTrue)
	c.Assert(n, qt.Equals, uint64(3))

	// crossing the uint64 boundary is fine
	v, err := NewVoteCount(^uint64(0)).Inc()
	c.Assert(err, qt.IsNil)
	_, ok = v.Uint64()
	c.Assert(ok, qt.IsFalse)
	c.Assert(v.String(), qt.Equals, "18446744073709551616")
}

func TestVoteCountOverflow(t *testing.T) {
	c := qt.New(t)
	max := MaxVoteCount()
	c.Assert(max.String(), qt.Equals, "340282366920938463463374607431768211455")
	_, err := max.Inc()
	c.Assert(err, qt.ErrorIs, ErrArithmeticOverflow)

	_, err = VoteCountFromDecimal("340282366920938463463374607431768211456")
	c.Assert(err, qt.ErrorIs, ErrArithmeticOverflow)
}

func TestVoteCountEncoding(t *testing.T) {
	c := qt.New(t)
	v, err := VoteCountFromDecimal("340282366920938463463374607431768211455")
	c.Assert(err, qt.IsNil)

	data, err := json.Marshal(map[string]VoteCount{"votes": v})
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, `{"votes":"340282366920938463463374607431768211455"}`)
	var fromJSON map[string]VoteCount
	c.Assert(json.Unmarshal(data, &fromJSON), qt.IsNil)
	c.Assert(fromJSON["votes"].Cmp(v), qt.Equals, 0)

	data, err = cbor.Marshal(v)
	c.Assert(err, qt.IsNil)
	var fromCBOR VoteCount
	c.Assert(cbor.Unmarshal(data, &fromCBOR), qt.IsNil)
	c.Assert(fromCBOR.Cmp(v), qt.Equals, 0)
}
