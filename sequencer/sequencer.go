// Package sequencer applies the operations of the ballot engine. Every state
// changing operation is authorized, serialized with the others and applied
// as a single storage transaction which also appends its event to the
// journal: either all of its effects are committed or none is.
package sequencer

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/zkballot/auth"
	"github.com/vocdoni/zkballot/crypto/rangeproof"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/metrics"
	"github.com/vocdoni/zkballot/processor"
	"github.com/vocdoni/zkballot/registry"
	"github.com/vocdoni/zkballot/storage"
	"github.com/vocdoni/zkballot/storage/census"
	"github.com/vocdoni/zkballot/types"
)

// Config holds the collaborators of a Sequencer.
type Config struct {
	// Storage is the state of the engine. Required.
	Storage *storage.Storage
	// Authorizer decides which callers may run each operation. Required.
	Authorizer auth.Authorizer
	// Verifier checks vote proofs. Defaults to rangeproof.DefaultVerifier.
	Verifier rangeproof.Verifier
	// ProofCacheSize, when positive, wraps Verifier with a cache of that
	// many verification results.
	ProofCacheSize int
	// TranscriptLabel is the label vote proofs are bound to. Defaults to
	// types.DefaultTranscriptLabel.
	TranscriptLabel string
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Sequencer is the single entry point for state transitions.
type Sequencer struct {
	stg      *storage.Storage
	auth     auth.Authorizer
	registry *registry.Registry
	votes    *processor.VoteProcessor
	verifier rangeproof.Verifier
	metrics  *metrics.Metrics

	// mu serializes the state transitions
	mu sync.Mutex
}

// New creates a Sequencer from the given configuration.
//
// Parameters:
//   - cfg: the storage, authorizer and optional verification settings
//
// Returns a ready Sequencer or an error if the configuration is invalid.
func New(cfg *Config) (*Sequencer, error) {
	if cfg == nil || cfg.Storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if cfg.Authorizer == nil {
		return nil, fmt.Errorf("authorizer cannot be nil")
	}
	verifier := cfg.Verifier
	if verifier == nil {
		verifier = rangeproof.DefaultVerifier
	}
	if cfg.ProofCacheSize > 0 {
		cached, err := rangeproof.NewCachedVerifier(verifier, cfg.ProofCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create proof cache: %w", err)
		}
		if err := cfg.Metrics.RegisterCacheStats("proofs", cached.Stats); err != nil {
			return nil, fmt.Errorf("failed to register cache metrics: %w", err)
		}
		verifier = cached
	}
	votes := processor.NewVoteProcessor(verifier, cfg.TranscriptLabel)
	votes.SetVerifyObserver(cfg.Metrics.ObserveVerification)

	log.Debugw("sequencer initialized",
		"transcriptLabel", votes.Label(),
		"proofCacheSize", cfg.ProofCacheSize,
	)
	return &Sequencer{
		stg:      cfg.Storage,
		auth:     cfg.Authorizer,
		registry: registry.New(census.NewCensusDB(cfg.Storage.DB())),
		votes:    votes,
		verifier: verifier,
		metrics:  cfg.Metrics,
	}, nil
}

// TranscriptLabel returns the label vote proofs must be bound to.
func (s *Sequencer) TranscriptLabel() string {
	return s.votes.Label()
}

// apply runs fn as one atomic state transition on behalf of origin, which
// must hold role. When fn succeeds the event it returns, if any, is added to
// the journal in the same transaction.
func (s *Sequencer) apply(op string, origin common.Address, role auth.Role, fn func(tx *storage.Tx) (*types.Event, error)) error {
	return s.applyThen(op, origin, role, fn, nil)
}

// applyThen is apply with a hook run after the transaction is committed and
// before the sequencer lock is released. It updates state kept outside the
// transaction, and must be idempotent since a failed hook is retried by
// repeating the operation.
func (s *Sequencer) applyThen(op string, origin common.Address, role auth.Role,
	fn func(tx *storage.Tx) (*types.Event, error), afterCommit func() error,
) (err error) {
	defer func() {
		s.metrics.ObserveOperation(op, err)
		if err != nil {
			log.Debugw("operation rejected", "op", op, "caller", origin.Hex(), "error", err.Error())
		}
	}()
	if err := s.auth.Authorize(origin, role); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.stg.Begin()
	defer tx.Discard()

	ev, err := fn(tx)
	if err != nil {
		return err
	}
	if ev != nil {
		ev.Caller = origin
		if err := tx.AppendEvent(ev); err != nil {
			return fmt.Errorf("failed to append event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", op, err)
	}
	if ev != nil {
		log.Infow("operation applied",
			"op", op,
			"event", string(ev.Type),
			"election", ev.ElectionID.String(),
			"caller", origin.Hex(),
		)
	}
	if afterCommit != nil {
		if err := afterCommit(); err != nil {
			return fmt.Errorf("%s committed but not completed: %w", op, err)
		}
	}
	return nil
}
