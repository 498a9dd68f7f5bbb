package storage

import (
	"encoding/binary"

	"github.com/vocdoni/zkballot/types"
)

// TallyEntry is the vote count of a candidate.
type TallyEntry struct {
	CandidateID types.CandidateID `json:"candidateId"`
	Votes       types.VoteCount   `json:"votes"`
}

// Tally returns the vote count stored for the candidate in the election. It
// returns ErrNotFound if no vote was ever counted for it, which is distinct
// from a zero count.
func (v View) Tally(election types.ElectionID, candidate types.CandidateID) (types.VoteCount, error) {
	var count types.VoteCount
	data, err := prefixedGet(v, tallyPrefix, compositeKey(election.Bytes(), candidate.Bytes()))
	if err != nil {
		return count, err
	}
	if err := count.UnmarshalBinary(data); err != nil {
		return count, err
	}
	return count, nil
}

// Results returns every tally entry of an election ordered by candidate.
func (v View) Results(election types.ElectionID) ([]TallyEntry, error) {
	var entries []TallyEntry
	var decodeErr error
	if err := v.iterateArtifacts(tallyPrefix, election.Bytes(), func(k, data []byte) bool {
		// the iterated key does not include the election prefix
		var entry TallyEntry
		if len(k) != 8 {
			return true
		}
		entry.CandidateID = types.CandidateID(binary.BigEndian.Uint64(k))
		if decodeErr = entry.Votes.UnmarshalBinary(data); decodeErr != nil {
			return false
		}
		entries = append(entries, entry)
		return true
	}); err != nil {
		return nil, err
	}
	return entries, decodeErr
}

// SetTally stores the vote count of a candidate.
func (tx *Tx) SetTally(election types.ElectionID, candidate types.CandidateID, count types.VoteCount) error {
	data, err := count.MarshalBinary()
	if err != nil {
		return err
	}
	return prefixedSet(tx, tallyPrefix, compositeKey(election.Bytes(), candidate.Bytes()), data)
}
