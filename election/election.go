// Package election implements the election lifecycle: two independent
// phases, registration and voting, each either open or closed, plus a
// terminal complete flag. Every operation works on a storage transaction, so
// a failed guard leaves no trace once the transaction is discarded.
package election

import (
	"errors"
	"fmt"

	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/types"
)

var (
	ErrInvalidElectionID          = errors.New("invalid election id")
	ErrAlreadyOpenForRegistration = errors.New("election already open for registration")
	ErrNotOpenForRegistration     = errors.New("election not open for registration")
	ErrAlreadyOpenForVoting       = errors.New("election already open for voting")
	ErrNotOpenForVoting           = errors.New("election not open for voting")
	ErrElectionComplete           = errors.New("election is complete")
)

// Register allocates the next election id and stores a record with both
// phases closed.
func Register(tx *storage.Tx) (types.ElectionID, error) {
	next, err := storage.ElectionCounter.Next(tx)
	if err != nil {
		return 0, fmt.Errorf("could not allocate election id: %w", err)
	}
	id := types.ElectionID(next)
	if err := tx.SetElection(&types.ElectionRecord{ID: id}); err != nil {
		return 0, err
	}
	return id, nil
}

// Deregister removes the election record. Removing an unknown election is
// not an error. The counter is not rewound, so the id is never reused.
func Deregister(tx *storage.Tx, id types.ElectionID) error {
	return tx.DeleteElection(id)
}

// Get returns the election record or ErrInvalidElectionID.
func Get(v storage.View, id types.ElectionID) (*types.ElectionRecord, error) {
	e, err := v.Election(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidElectionID, id)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// List returns every registered election ordered by id.
func List(v storage.View) ([]*types.ElectionRecord, error) {
	return v.Elections()
}

// IsOpenForRegistration reports whether the election accepts candidate and
// voter registrations. An unknown election reads as closed.
func IsOpenForRegistration(v storage.View, id types.ElectionID) bool {
	e, err := v.Election(id)
	return err == nil && e.RegistrationOpen
}

// IsOpenForVoting reports whether the election accepts votes. An unknown
// election reads as closed.
func IsOpenForVoting(v storage.View, id types.ElectionID) bool {
	e, err := v.Election(id)
	return err == nil && e.VotingOpen
}

func OpenRegistration(tx *storage.Tx, id types.ElectionID) error {
	return update(tx, id, func(e *types.ElectionRecord) error {
		if e.Complete {
			return ErrElectionComplete
		}
		if e.RegistrationOpen {
			return ErrAlreadyOpenForRegistration
		}
		e.RegistrationOpen = true
		return nil
	})
}

func CloseRegistration(tx *storage.Tx, id types.ElectionID) error {
	return update(tx, id, func(e *types.ElectionRecord) error {
		if !e.RegistrationOpen {
			return ErrNotOpenForRegistration
		}
		e.RegistrationOpen = false
		return nil
	})
}

func OpenVoting(tx *storage.Tx, id types.ElectionID) error {
	return update(tx, id, func(e *types.ElectionRecord) error {
		if e.Complete {
			return ErrElectionComplete
		}
		if e.VotingOpen {
			return ErrAlreadyOpenForVoting
		}
		e.VotingOpen = true
		return nil
	})
}

func CloseVoting(tx *storage.Tx, id types.ElectionID) error {
	return update(tx, id, func(e *types.ElectionRecord) error {
		if !e.VotingOpen {
			return ErrNotOpenForVoting
		}
		e.VotingOpen = false
		return nil
	})
}

// Complete closes both phases and marks the election as finished. No phase
// can be opened again afterwards.
func Complete(tx *storage.Tx, id types.ElectionID) error {
	return update(tx, id, func(e *types.ElectionRecord) error {
		if e.Complete {
			return ErrElectionComplete
		}
		e.RegistrationOpen = false
		e.VotingOpen = false
		e.Complete = true
		return nil
	})
}

// update loads the record, applies fn and stores the result. Nothing is
// written when fn fails.
func update(tx *storage.Tx, id types.ElectionID, fn func(*types.ElectionRecord) error) error {
	e, err := Get(tx.View, id)
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return fmt.Errorf("election %d: %w", id, err)
	}
	return tx.SetElection(e)
}
