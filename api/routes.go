package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// MetricsEndpoint serves the prometheus metrics
	MetricsEndpoint = "/metrics"

	ElectionURLParam  = "electionId"
	CandidateURLParam = "candidateId"
	AddressURLParam   = "address"
	RootURLParam      = "root"

	// ElectionsEndpoint is the endpoint to register and list elections
	ElectionsEndpoint = "/elections"
	// ElectionEndpoint is the endpoint to get or deregister an election
	ElectionEndpoint = ElectionsEndpoint + "/{" + ElectionURLParam + "}"
	// Lifecycle endpoints of an election
	OpenRegistrationEndpoint  = ElectionEndpoint + "/registration/open"
	CloseRegistrationEndpoint = ElectionEndpoint + "/registration/close"
	OpenVotingEndpoint        = ElectionEndpoint + "/voting/open"
	CloseVotingEndpoint       = ElectionEndpoint + "/voting/close"
	CompleteEndpoint          = ElectionEndpoint + "/complete"
	// CandidatesEndpoint is the endpoint to register and list candidates
	CandidatesEndpoint = ElectionEndpoint + "/candidates"
	CandidateEndpoint  = CandidatesEndpoint + "/{" + CandidateURLParam + "}"
	// VotersEndpoint registers the caller as voter, and returns the census
	VotersEndpoint = ElectionEndpoint + "/voters"
	// VoterProofEndpoint returns the census inclusion proof of a voter
	VoterProofEndpoint = VotersEndpoint + "/{" + AddressURLParam + "}/proof"
	// CensusProofEndpoint returns the inclusion proof of a voter in the census
	// with the given current root
	CensusProofEndpoint = "/census/{" + RootURLParam + "}/proof/{" + AddressURLParam + "}"
	// VotesEndpoint is the endpoint for casting a vote
	VotesEndpoint = ElectionEndpoint + "/votes"
	// TallyEndpoint returns the results of an election
	TallyEndpoint          = ElectionEndpoint + "/tally"
	CandidateTallyEndpoint = TallyEndpoint + "/{" + CandidateURLParam + "}"
	// VerifyProofsEndpoint verifies a batch of range proofs
	VerifyProofsEndpoint = "/proofs/verify"
	// EventsEndpoint returns the event journal
	EventsEndpoint = "/events"
)

// EndpointWithParam replaces the URL parameter param of endpoint by value.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.Replace(endpoint, "{"+param+"}", value, 1)
}
