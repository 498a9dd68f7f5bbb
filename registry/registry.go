// Package registry keeps the candidates and voters of each election.
// Candidates are stored records; voters are stored records that are also
// leaves of a per election census Merkle tree, keyed by address, whose
// value is the Poseidon digest of the voter credential.
package registry

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/zkballot/crypto/hash/poseidon"
	"github.com/vocdoni/zkballot/election"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/storage/census"
	"github.com/vocdoni/zkballot/types"
)

// ErrInvalidElectionIDOrNotOpenForRegistration is returned when registering
// into an unknown election or one whose registration phase is closed.
var ErrInvalidElectionIDOrNotOpenForRegistration = errors.New("invalid election id or election not open for registration")

// credentialDigestLen is the byte length of a census leaf value.
const credentialDigestLen = 32

// Registry registers candidates and voters.
type Registry struct {
	census *census.CensusDB
}

// New returns a Registry keeping the voter census trees in censusDB.
func New(censusDB *census.CensusDB) *Registry {
	return &Registry{census: censusDB}
}

// Census returns the census database.
func (r *Registry) Census() *census.CensusDB {
	return r.census
}

// RegisterCandidate stores a new candidate of the election. Candidate ids
// come from a counter shared by all elections.
func (r *Registry) RegisterCandidate(tx *storage.Tx, electionID types.ElectionID, name, info string) (types.CandidateID, error) {
	if !election.IsOpenForRegistration(tx.View, electionID) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidElectionIDOrNotOpenForRegistration, electionID)
	}
	next, err := storage.CandidateCounter.Next(tx)
	if err != nil {
		return 0, fmt.Errorf("could not allocate candidate id: %w", err)
	}
	id := types.CandidateID(next)
	if err := tx.SetCandidate(&types.CandidateInfo{
		ID:         id,
		ElectionID: electionID,
		Name:       name,
		Info:       info,
	}); err != nil {
		return 0, err
	}
	return id, nil
}

// RegisterVoter adds address to the voters of the election. The voters of an
// election form a set: registering an address again returns the existing
// record and created set to false.
//
// Only the record is written to tx. The census leaf is added by AddToCensus
// once tx is committed, so a failed commit leaves the census untouched.
func (r *Registry) RegisterVoter(tx *storage.Tx, electionID types.ElectionID, address common.Address,
	credential []byte,
) (rec *types.VoterRecord, created bool, err error) {
	if !election.IsOpenForRegistration(tx.View, electionID) {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidElectionIDOrNotOpenForRegistration, electionID)
	}
	existing, err := tx.Voter(electionID, address)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, err
	}
	if _, err := CredentialDigest(credential); err != nil {
		return nil, false, err
	}
	ref, err := r.census.LoadOrNew(electionID)
	if err != nil {
		return nil, false, fmt.Errorf("could not open census of election %d: %w", electionID, err)
	}
	rec = &types.VoterRecord{
		ElectionID: electionID,
		Address:    address,
		Credential: credential,
		Index:      uint64(ref.Size()),
	}
	if err := tx.SetVoter(rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// AddToCensus inserts the census leaf of a committed voter record. Adding a
// leaf that is already present is a no-op.
func (r *Registry) AddToCensus(rec *types.VoterRecord) error {
	digest, err := CredentialDigest(rec.Credential)
	if err != nil {
		return err
	}
	ref, err := r.census.LoadOrNew(rec.ElectionID)
	if err != nil {
		return fmt.Errorf("could not open census of election %d: %w", rec.ElectionID, err)
	}
	if err := ref.Insert(rec.Address.Bytes(), digest); err != nil {
		return fmt.Errorf("could not add voter to census: %w", err)
	}
	return nil
}

// Voter returns the registration of address, or storage.ErrNotFound.
func (r *Registry) Voter(v storage.View, electionID types.ElectionID, address common.Address) (*types.VoterRecord, error) {
	return v.Voter(electionID, address)
}

// CensusRoot returns the census root and number of voters of the election.
// An election without voters has a nil root.
func (r *Registry) CensusRoot(electionID types.ElectionID) ([]byte, int, error) {
	ref, err := r.census.Load(electionID)
	if errors.Is(err, census.ErrCensusNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return ref.Root(), ref.Size(), nil
}

// VoterProof returns the census inclusion proof of address.
func (r *Registry) VoterProof(electionID types.ElectionID, address common.Address) (*types.CensusProof, error) {
	return r.census.Proof(electionID, address.Bytes())
}

// VoterProofByRoot returns the inclusion proof of address in the census whose
// current root is root.
func (r *Registry) VoterProofByRoot(root []byte, address common.Address) (*types.CensusProof, error) {
	return r.census.ProofByRoot(root, address.Bytes())
}

// DeleteCensus drops the census tree of an election.
func (r *Registry) DeleteCensus(electionID types.ElectionID) error {
	if !r.census.Exists(electionID) {
		return nil
	}
	return r.census.Del(electionID)
}

// CredentialDigest returns the census leaf value of a credential.
func CredentialDigest(credential []byte) ([]byte, error) {
	h, err := poseidon.HashBytes(credential)
	if err != nil {
		return nil, fmt.Errorf("invalid credential: %w", err)
	}
	return arbo.BigIntToBytes(credentialDigestLen, h), nil
}
