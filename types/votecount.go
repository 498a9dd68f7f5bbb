package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrArithmeticOverflow is returned when a counter would exceed its maximum.
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// voteCountBytes is the encoded size of a VoteCount (128 bits).
const voteCountBytes = 16

var maxVoteCount = new(uint256.Int).Sub(
	new(uint256.Int).Lsh(uint256.NewInt(1), 8*voteCountBytes),
	uint256.NewInt(1),
)

// VoteCount is an unsigned 128 bit vote counter.
type VoteCount struct {
	n uint256.Int
}

// NewVoteCount returns a VoteCount holding v.
func NewVoteCount(v uint64) VoteCount {
	var c VoteCount
	c.n.SetUint64(v)
	return c
}

// MaxVoteCount returns the largest value a VoteCount can hold, 2^128-1.
func MaxVoteCount() VoteCount {
	var c VoteCount
	c.n.Set(maxVoteCount)
	return c
}

// VoteCountFromDecimal parses a base 10 vote count.
func VoteCountFromDecimal(s string) (VoteCount, error) {
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return VoteCount{}, fmt.Errorf("invalid vote count %q: %w", s, err)
	}
	if n.Gt(maxVoteCount) {
		return VoteCount{}, fmt.Errorf("vote count %s: %w", s, ErrArithmeticOverflow)
	}
	return VoteCount{n: *n}, nil
}

// Inc returns c+1, or ErrArithmeticOverflow if c is already the maximum.
func (c VoteCount) Inc() (VoteCount, error) {
	if c.n.Eq(maxVoteCount) {
		return c, ErrArithmeticOverflow
	}
	var r VoteCount
	r.n.AddUint64(&c.n, 1)
	return r, nil
}

// Uint64 returns the count as uint64, and false if it does not fit.
func (c VoteCount) Uint64() (uint64, bool) {
	return c.n.Uint64(), c.n.IsUint64()
}

func (c VoteCount) IsZero() bool {
	return c.n.IsZero()
}

func (c VoteCount) Cmp(o VoteCount) int {
	return c.n.Cmp(&o.n)
}

func (c VoteCount) String() string {
	return c.n.Dec()
}

// MarshalBinary encodes the count as 16 big endian bytes.
func (c VoteCount) MarshalBinary() ([]byte, error) {
	b := c.n.Bytes32()
	return b[32-voteCountBytes:], nil
}

func (c *VoteCount) UnmarshalBinary(data []byte) error {
	if len(data) != voteCountBytes {
		return fmt.Errorf("invalid vote count length %d", len(data))
	}
	c.n.SetBytes(data)
	return nil
}

// MarshalJSON encodes the count as a decimal string, since 128 bit values do
// not fit in a json number.
func (c VoteCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.n.Dec())
}

func (c *VoteCount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := VoteCountFromDecimal(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}
