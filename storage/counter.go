package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/vocdoni/zkballot/types"
)

// Counter is a persistent, monotonically increasing identifier source. An
// absent counter reads as zero, so the first identifier it hands out is 1.
type Counter struct {
	name []byte
}

var (
	// ElectionCounter assigns election ids.
	ElectionCounter = Counter{name: []byte("election")}
	// CandidateCounter assigns candidate ids. It is shared by all elections.
	CandidateCounter = Counter{name: []byte("candidate")}
)

// Current returns the last identifier handed out, or zero.
func (c Counter) Current(v View) (uint64, error) {
	data, err := prefixedGet(v, counterPrefix, c.name)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("corrupted counter %s", c.name)
	}
	return binary.BigEndian.Uint64(data), nil
}

// Next advances the counter and returns the new value. It fails with
// types.ErrArithmeticOverflow once the counter reaches its maximum, leaving
// the counter unchanged.
func (c Counter) Next(tx *Tx) (uint64, error) {
	cur, err := c.Current(tx.View)
	if err != nil {
		return 0, err
	}
	if cur == math.MaxUint64 {
		return 0, fmt.Errorf("counter %s: %w", c.name, types.ErrArithmeticOverflow)
	}
	if err := c.set(tx, cur+1); err != nil {
		return 0, err
	}
	return cur + 1, nil
}

func (c Counter) set(tx *Tx, value uint64) error {
	return prefixedSet(tx, counterPrefix, c.name, binary.BigEndian.AppendUint64(nil, value))
}
