package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
)

// ElectionRecord holds the lifecycle state of an election. Registration and
// voting are independent flags: any combination of them is valid.
type ElectionRecord struct {
	ID               ElectionID `json:"id"               cbor:"0,keyasint,omitempty"`
	RegistrationOpen bool       `json:"registrationOpen" cbor:"1,keyasint,omitempty"`
	VotingOpen       bool       `json:"votingOpen"       cbor:"2,keyasint,omitempty"`
	Complete         bool       `json:"complete"         cbor:"3,keyasint,omitempty"`
}

func (e *ElectionRecord) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}

// CandidateInfo is the immutable record of a registered candidate.
type CandidateInfo struct {
	ID         CandidateID `json:"id"         cbor:"0,keyasint,omitempty"`
	ElectionID ElectionID  `json:"electionId" cbor:"1,keyasint,omitempty"`
	Name       string      `json:"name"       cbor:"2,keyasint,omitempty"`
	Info       string      `json:"info"       cbor:"3,keyasint,omitempty"`
}

// VoterRecord is the registration of an identity as a voter of an election.
// Index is the position of the voter in the election census.
type VoterRecord struct {
	ElectionID ElectionID     `json:"electionId" cbor:"0,keyasint,omitempty"`
	Address    common.Address `json:"address"    cbor:"1,keyasint,omitempty"`
	Credential HexBytes       `json:"credential" cbor:"2,keyasint,omitempty"`
	Index      uint64         `json:"index"      cbor:"3,keyasint,omitempty"`
}

// CensusProof is a merkle proof of inclusion of a voter in the census tree
// of an election.
type CensusProof struct {
	Root     HexBytes `json:"root"`
	Key      HexBytes `json:"key"`
	Value    HexBytes `json:"value"`
	Siblings HexBytes `json:"siblings"`
}

// Vote is a single confidential vote. The commitment hides the voted value
// and the proof shows it lies in [0, 2^64) without revealing it.
type Vote struct {
	ElectionID  ElectionID  `json:"electionId"`
	CandidateID CandidateID `json:"candidateId"`
	Commitment  HexBytes    `json:"commitment"`
	Proof       HexBytes    `json:"proof"`
}
