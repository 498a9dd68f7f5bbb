package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names something that happened to the state.
type EventType string

const (
	EventElectionRegistered   EventType = "ElectionRegistered"
	EventElectionDeregistered EventType = "ElectionDeregistered"
	EventRegistrationOpened   EventType = "RegistrationOpened"
	EventRegistrationClosed   EventType = "RegistrationClosed"
	EventVotingOpened         EventType = "VotingOpened"
	EventVotingClosed         EventType = "VotingClosed"
	EventElectionCompleted    EventType = "ElectionCompleted"
	EventCandidateRegistered  EventType = "CandidateRegistered"
	EventVoterRegistered      EventType = "VoterRegistered"
	EventVoteCasted           EventType = "VoteCasted"
)

// Event is an entry of the append-only event journal. Candidate and Voter are
// only set for the event types they apply to.
type Event struct {
	ID          string         `json:"id"                    cbor:"0,keyasint,omitempty"`
	Type        EventType      `json:"type"                  cbor:"1,keyasint,omitempty"`
	ElectionID  ElectionID     `json:"electionId"            cbor:"2,keyasint,omitempty"`
	CandidateID CandidateID    `json:"candidateId,omitempty" cbor:"3,keyasint,omitempty"`
	Caller      common.Address `json:"caller"                cbor:"4,keyasint,omitempty"`
	Time        time.Time      `json:"time"                  cbor:"5,keyasint,omitempty"`
}
