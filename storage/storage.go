// storage package contains all the artifacts of the ballot engine that are
// stored in the database. Every state transition is applied through a Tx, a
// single database write transaction which is either committed as a whole or
// discarded. The following prefixes are used:
//   - 'k/' for counters
//   - 'e/' for election records
//   - 'c/' for candidates (election id + candidate id)
//   - 'vr/' for voter records (election id + address)
//   - 't/' for tallies (election id + candidate id)
//   - 'j/' for the event journal
//
// Voter census trees live in their own prefixes, managed by storage/census.
package storage

import (
	"errors"

	"github.com/vocdoni/zkballot/log"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// Prefixes for the keys in the database.
	counterPrefix   = []byte("k/")
	electionPrefix  = []byte("e/")
	candidatePrefix = []byte("c/")
	voterPrefix     = []byte("vr/")
	tallyPrefix     = []byte("t/")
	journalPrefix   = []byte("j/")

	// ErrNotFound is returned when an artifact is not found in the database.
	ErrNotFound = errors.New("not found")
)

// Storage gives read access to the stored artifacts and creates the write
// transactions that modify them.
type Storage struct {
	View
	db db.Database
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	return &Storage{
		View: View{r: database},
		db:   database,
	}
}

// DB returns the underlying database.
func (s *Storage) DB() db.Database {
	return s.db
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("error closing storage", "err", err)
	}
}

// Begin starts a write transaction. The caller must either Commit or
// Discard it.
func (s *Storage) Begin() *Tx {
	wtx := s.db.WriteTx()
	return &Tx{View: View{r: wtx}, wtx: wtx}
}

// Update runs fn inside a write transaction, committing it if fn returns nil
// and discarding it otherwise.
func (s *Storage) Update(fn func(tx *Tx) error) error {
	tx := s.Begin()
	defer tx.Discard()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// View reads artifacts, either from the committed state or from a pending
// transaction, in which case its own writes are visible.
type View struct {
	r db.Reader
}

// Tx is a write transaction over the stored artifacts.
type Tx struct {
	View
	wtx  db.WriteTx
	done bool
}

// Commit applies every write of the transaction.
func (tx *Tx) Commit() error {
	if tx.done {
		return errors.New("transaction already finished")
	}
	tx.done = true
	return tx.wtx.Commit()
}

// Discard drops the transaction. It is a no-op after Commit.
func (tx *Tx) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	tx.wtx.Discard()
}

// prefixedGet returns the raw value stored under prefix+key, or ErrNotFound.
func prefixedGet(v View, prefix, key []byte) ([]byte, error) {
	data, err := prefixeddb.NewPrefixedReader(v.r, prefix).Get(key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func prefixedSet(tx *Tx, prefix, key, value []byte) error {
	return prefixeddb.NewPrefixedWriteTx(tx.wtx, prefix).Set(key, value)
}

// getArtifact decodes the artifact stored under prefix+key into out. It
// returns ErrNotFound if there is none.
func (v View) getArtifact(prefix, key []byte, out any) error {
	data, err := prefixedGet(v, prefix, key)
	if err != nil {
		return err
	}
	return decodeArtifact(data, out)
}

// iterateArtifacts calls fn with every key (without the prefix) and raw value
// stored under prefix+keyPrefix, in key order, until fn returns false.
func (v View) iterateArtifacts(prefix, keyPrefix []byte, fn func(k, v []byte) bool) error {
	return prefixeddb.NewPrefixedReader(v.r, prefix).Iterate(keyPrefix, fn)
}

func (tx *Tx) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	return prefixedSet(tx, prefix, key, data)
}

func (tx *Tx) deleteArtifact(prefix, key []byte) error {
	return prefixeddb.NewPrefixedWriteTx(tx.wtx, prefix).Delete(key)
}
