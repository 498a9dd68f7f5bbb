//nolint:lll
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/processor"
	"github.com/vocdoni/zkballot/registry"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/storage/census"
	"github.com/vocdoni/zkballot/types"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 401, 403, 404, 409 or 422, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
// If you notice there's a gap (say, error code 4010, 4011 and 4013 exist, 4012 is missing) DON'T fill in the gap,
// that code was used in the past for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound             = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody                = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature             = Error{Code: 40005, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("invalid signature")}
	ErrMalformedElectionID          = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound             = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrMalformedCandidateID         = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed candidate ID")}
	ErrMalformedAddress             = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed address")}
	ErrUnauthorized                 = Error{Code: 40010, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("unauthorized")}
	ErrExpiredSignature             = Error{Code: 40011, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("signature timestamp out of the accepted window")}
	ErrReplayedRequest              = Error{Code: 40012, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("replayed request")}
	ErrAlreadyOpenForRegistration   = Error{Code: 40013, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election already open for registration")}
	ErrNotOpenForRegistration       = Error{Code: 40014, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election not open for registration")}
	ErrAlreadyOpenForVoting         = Error{Code: 40015, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election already open for voting")}
	ErrNotOpenForVoting             = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election not open for voting")}
	ErrElectionComplete             = Error{Code: 40017, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("election is complete")}
	ErrRegistrationNotAllowed       = Error{Code: 40018, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invalid election or election not open for registration")}
	ErrVotingNotAllowed             = Error{Code: 40019, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invalid election or election not open for voting")}
	ErrProofVerificationFailed      = Error{Code: 40020, HTTPstatus: http.StatusUnprocessableEntity, Err: fmt.Errorf("proof verification failed")}
	ErrCandidateNotFound            = Error{Code: 40021, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("candidate not found")}
	ErrVoterNotFound                = Error{Code: 40022, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("voter not found")}
	ErrMalformedParam               = Error{Code: 40023, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed parameter")}
	ErrUnauthenticated              = Error{Code: 40024, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("unauthenticated")}
	ErrMalformedCensusRoot          = Error{Code: 40025, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed census root")}
	ErrCensusRootNotFound           = Error{Code: 40026, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("no census with the provided root")}
	ErrMarshalingServerJSONFailed   = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError   = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrArithmeticOverflow           = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("arithmetic overflow")}
)

// errorMapping associates the engine errors with their API errors. The first
// match wins.
var errorMapping = []struct {
	err    error
	apiErr Error
}{
	{auth.ErrUnauthenticated, ErrUnauthenticated},
	{auth.ErrUnauthorized, ErrUnauthorized},
	{election.ErrInvalidElectionID, ErrElectionNotFound},
	{election.ErrAlreadyOpenForRegistration, ErrAlreadyOpenForRegistration},
	{election.ErrNotOpenForRegistration, ErrNotOpenForRegistration},
	{election.ErrAlreadyOpenForVoting, ErrAlreadyOpenForVoting},
	{election.ErrNotOpenForVoting, ErrNotOpenForVoting},
	{election.ErrElectionComplete, ErrElectionComplete},
	{registry.ErrInvalidElectionIDOrNotOpenForRegistration, ErrRegistrationNotAllowed},
	{processor.ErrInvalidElectionIDOrNotOpenForVoting, ErrVotingNotAllowed},
	{processor.ErrProofVerificationFailed, ErrProofVerificationFailed},
	{census.ErrRootNotFound, ErrCensusRootNotFound},
	{census.ErrCensusNotFound, ErrVoterNotFound},
	{census.ErrKeyNotFound, ErrVoterNotFound},
	{storage.ErrNotFound, ErrResourceNotFound},
	{types.ErrArithmeticOverflow, ErrArithmeticOverflow},
}

// apiError returns the API error of an engine error. Unknown errors are
// internal server errors.
func apiError(err error) Error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.apiErr.WithErr(err)
		}
	}
	return ErrGenericInternalServerError.WithErr(err)
}
