package types

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// ElectionID identifies an election. IDs are assigned by a counter that
// starts at 1 and are never reused.
type ElectionID uint64

// CandidateID identifies a candidate. The counter behind it is shared by all
// elections.
type CandidateID uint64

// Bytes returns the big endian encoding of the id, so stored keys sort in
// numeric order.
func (id ElectionID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func (id ElectionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

func (id CandidateID) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(id))
}

func (id CandidateID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseElectionID parses the decimal representation of an election id.
func ParseElectionID(s string) (ElectionID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid election id %q: %w", s, err)
	}
	return ElectionID(n), nil
}

// ParseCandidateID parses the decimal representation of a candidate id.
func ParseCandidateID(s string) (CandidateID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid candidate id %q: %w", s, err)
	}
	return CandidateID(n), nil
}
