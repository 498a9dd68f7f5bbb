package pedersen

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	qt "github.com/frankban/quicktest"
)

func TestCommitDeterministic(t *testing.T) {
	c := qt.New(t)
	r := BlindingFromSeed([]byte("voter seed"))
	c1 := Commit(1, &r)
	c2 := Commit(1, &r)
	c.Assert(c1, qt.Equals, c2)

	// different value or blinding give a different commitment
	c.Assert(Commit(2, &r), qt.Not(qt.Equals), c1)
	r2 := BlindingFromSeed([]byte("other seed"))
	c.Assert(Commit(1, &r2), qt.Not(qt.Equals), c1)

	_, err := c1.Point()
	c.Assert(err, qt.IsNil)
}

func TestCommitHomomorphic(t *testing.T) {
	c := qt.New(t)
	r1 := BlindingFromSeed([]byte("a"))
	r2 := BlindingFromSeed([]byte("b"))
	p1, err := Commit(3, &r1).Point()
	c.Assert(err, qt.IsNil)
	p2, err := Commit(4, &r2).Point()
	c.Assert(err, qt.IsNil)

	var sum fr.Element
	sum.Add(&r1, &r2)
	p1.Add(&p1, &p2)
	c.Assert(CommitmentFromPoint(&p1), qt.Equals, Commit(7, &sum))
}

func TestBlindingFromSeed(t *testing.T) {
	c := qt.New(t)
	a := BlindingFromSeed([]byte("seed"))
	b := BlindingFromSeed([]byte("seed"))
	c.Assert(a.Equal(&b), qt.IsTrue)
	c.Assert(a.IsZero(), qt.IsFalse)

	other := BlindingFromSeed([]byte("seed2"))
	c.Assert(a.Equal(&other), qt.IsFalse)

	// 64 bytes of 0xff are reduced below the modulus
	wide := make([]byte, 64)
	for i := range wide {
		wide[i] = 0xff
	}
	s := ScalarFromWideBytes(wide)
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 512), big.NewInt(1))
	c.Assert(s.BigInt(new(big.Int)).Cmp(max.Mod(max, fr.Modulus())), qt.Equals, 0)
}

func TestDecodePointRejects(t *testing.T) {
	c := qt.New(t)
	r := BlindingFromSeed([]byte("seed"))
	cm := Commit(5, &r)

	_, err := DecodePoint(cm[:10])
	c.Assert(err, qt.ErrorIs, ErrInvalidPoint)

	// the identity commits to nothing
	var zero fr.Element
	identity := Commit(0, &zero)
	_, err = identity.Point()
	c.Assert(err, qt.ErrorIs, ErrInvalidPoint)
}

func TestCommitmentJSON(t *testing.T) {
	c := qt.New(t)
	r := BlindingFromSeed([]byte("seed"))
	cm := Commit(9, &r)
	data, err := json.Marshal(cm)
	c.Assert(err, qt.IsNil)
	var decoded Commitment
	c.Assert(json.Unmarshal(data, &decoded), qt.IsNil)
	c.Assert(decoded, qt.Equals, cm)

	c.Assert(json.Unmarshal([]byte(`"0x0102"`), &decoded), qt.ErrorMatches, "invalid commitment length 2.*")
}
