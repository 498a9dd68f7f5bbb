// Package census keeps the voter census of every election as an arbo merkle
// tree. A leaf maps a voter address to the poseidon digest of the voter
// credential, so the tree root commits to the full voter set and a voter can
// prove membership with a merkle proof.
package census

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/zkballot/log"
	"github.com/vocdoni/zkballot/types"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

const (
	censusDBprefix          = "vc/"
	censusDBreferencePrefix = "vcr/"
)

var (
	// ErrCensusNotFound is returned when a census is not found in the database.
	ErrCensusNotFound = errors.New("census not found in the local database")
	// ErrCensusAlreadyExists is returned by New() if the census already exists.
	ErrCensusAlreadyExists = errors.New("census already exists in the local database")
	// ErrKeyNotFound is returned when a key is not found in the Merkle tree.
	ErrKeyNotFound = errors.New("key not found")
	// ErrRootNotFound is returned when no census has the requested root.
	ErrRootNotFound = errors.New("no census found with the provided root")

	defaultHashFunction = arbo.HashFunctionSha256
)

// rootKey converts a root (a byte slice) to its canonical hexadecimal string.
func rootKey(root []byte) string {
	return hex.EncodeToString(root)
}

// CensusDB is a safe and persistent database of the census trees of every
// election. It maintains an in-memory index mapping tree roots (in
// hexadecimal form) to elections.
type CensusDB struct {
	mu           sync.RWMutex
	db           db.Database
	loadedCensus map[types.ElectionID]*CensusRef
	rootIndex    map[string]types.ElectionID
}

// NewCensusDB creates a new CensusDB object.
func NewCensusDB(db db.Database) *CensusDB {
	return &CensusDB{
		db:           db,
		loadedCensus: make(map[types.ElectionID]*CensusRef),
		rootIndex:    make(map[string]types.ElectionID),
	}
}

// New creates the census of an election and adds it to the database.
// It returns ErrCensusAlreadyExists if the election already has one.
func (c *CensusDB) New(election types.ElectionID) (*CensusRef, error) {
	key := referenceKey(election)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check in-memory.
	if _, exists := c.loadedCensus[election]; exists {
		return nil, ErrCensusAlreadyExists
	}
	// Check persistent DB.
	if _, err := c.db.Get(key); err == nil {
		return nil, ErrCensusAlreadyExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return nil, err
	}

	ref := &CensusRef{
		ElectionID: election,
		MaxLevels:  types.CensusTreeMaxLevels,
		HashType:   string(defaultHashFunction.Type()),
		Created:    time.Now(),
	}
	if err := c.openTree(ref); err != nil {
		return nil, err
	}
	if err := c.writeReference(ref); err != nil {
		return nil, err
	}
	c.index(ref)
	return ref, nil
}

// LoadOrNew returns the census of the election, creating it if needed.
func (c *CensusDB) LoadOrNew(election types.ElectionID) (*CensusRef, error) {
	ref, err := c.Load(election)
	if errors.Is(err, ErrCensusNotFound) {
		ref, err = c.New(election)
		if errors.Is(err, ErrCensusAlreadyExists) {
			return c.Load(election)
		}
	}
	return ref, err
}

// openTree opens the merkle tree of the reference and reads its root.
func (c *CensusDB) openTree(ref *CensusRef) error {
	tree, err := arbo.NewTree(arbo.Config{
		Database:     prefixeddb.NewPrefixedDatabase(c.db, censusPrefix(ref.ElectionID)),
		MaxLevels:    ref.MaxLevels,
		HashFunction: defaultHashFunction,
	})
	if err != nil {
		return err
	}
	ref.tree = tree
	root, err := tree.Root()
	if err != nil {
		return err
	}
	ref.currentRoot = root
	ref.onRootChange = c.updateRoot
	return nil
}

// index adds the reference to the in-memory maps. The caller holds c.mu.
func (c *CensusDB) index(ref *CensusRef) {
	c.loadedCensus[ref.ElectionID] = ref
	rk := rootKey(ref.currentRoot)
	if _, exists := c.rootIndex[rk]; !exists {
		c.rootIndex[rk] = ref.ElectionID
	}
}

// writeReference writes a census reference to the database.
func (c *CensusDB) writeReference(ref *CensusRef) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ref); err != nil {
		return err
	}
	wtx := c.db.WriteTx()
	defer wtx.Discard()
	if err := wtx.Set(referenceKey(ref.ElectionID), buf.Bytes()); err != nil {
		return err
	}
	return wtx.Commit()
}

// Exists returns true if the election has a census in the local database.
func (c *CensusDB) Exists(election types.ElectionID) bool {
	c.mu.RLock()
	_, exists := c.loadedCensus[election]
	c.mu.RUnlock()
	if exists {
		return true
	}
	_, err := c.db.Get(referenceKey(election))
	return err == nil
}

// Load returns a census from memory or from the persistent KV database.
func (c *CensusDB) Load(election types.ElectionID) (*CensusRef, error) {
	c.mu.RLock()
	if ref, exists := c.loadedCensus[election]; exists {
		c.mu.RUnlock()
		return ref, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// double check, another goroutine may have loaded it meanwhile
	if ref, exists := c.loadedCensus[election]; exists {
		return ref, nil
	}

	b, err := c.db.Get(referenceKey(election))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: election %d", ErrCensusNotFound, election)
		}
		return nil, err
	}
	ref := &CensusRef{}
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(ref); err != nil {
		return nil, err
	}
	if err := c.openTree(ref); err != nil {
		return nil, err
	}
	c.index(ref)
	return ref, nil
}

// Del removes the census of an election from the database and memory.
func (c *CensusDB) Del(election types.ElectionID) error {
	wtx := c.db.WriteTx()
	if err := wtx.Delete(referenceKey(election)); err != nil {
		wtx.Discard()
		return err
	}
	if err := wtx.Commit(); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.loadedCensus, election)
	for rk, id := range c.rootIndex {
		if id == election {
			delete(c.rootIndex, rk)
		}
	}
	c.mu.Unlock()

	n, err := deleteCensusTreeFromDatabase(c.db, censusPrefix(election))
	if err != nil {
		log.Warnw("error deleting census tree", "election", election, "err", err)
		return nil
	}
	log.Debugw("census tree deleted", "election", election, "keys", n)
	return nil
}

// deleteCensusTreeFromDatabase removes all keys belonging to a census tree from the database.
func deleteCensusTreeFromDatabase(kv db.Database, prefix []byte) (int, error) {
	database := prefixeddb.NewPrefixedDatabase(kv, prefix)
	wtx := database.WriteTx()
	defer wtx.Discard()
	count := 0
	err := database.Iterate(nil, func(k, _ []byte) bool {
		if err := wtx.Delete(bytes.Clone(k)); err != nil {
			log.Warnw("could not remove key from database", "key", hex.EncodeToString(k))
		} else {
			count++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, wtx.Commit()
}

// Proof generates a merkle proof of inclusion of leafKey in the census of
// the election.
func (c *CensusDB) Proof(election types.ElectionID, leafKey []byte) (*types.CensusProof, error) {
	ref, err := c.Load(election)
	if err != nil {
		return nil, err
	}
	return ref.Proof(leafKey)
}

// ProofByRoot finds a census by its current Merkle tree root and generates a
// Merkle proof for the given leafKey. Censuses persisted by a previous run are
// loaded on the first miss.
func (c *CensusDB) ProofByRoot(root, leafKey []byte) (*types.CensusProof, error) {
	election, exists := c.electionByRoot(root)
	if !exists {
		if err := c.loadAll(); err != nil {
			return nil, err
		}
		if election, exists = c.electionByRoot(root); !exists {
			return nil, fmt.Errorf("%w: root %x", ErrRootNotFound, root)
		}
	}
	return c.Proof(election, leafKey)
}

func (c *CensusDB) electionByRoot(root []byte) (types.ElectionID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	election, exists := c.rootIndex[rootKey(root)]
	return election, exists
}

// loadAll loads every census reference stored in the database.
func (c *CensusDB) loadAll() error {
	var elections []types.ElectionID
	if err := c.db.Iterate([]byte(censusDBreferencePrefix), func(k, _ []byte) bool {
		if len(k) == 8 {
			elections = append(elections, types.ElectionID(binary.BigEndian.Uint64(k)))
		}
		return true
	}); err != nil {
		return err
	}
	for _, election := range elections {
		if _, err := c.Load(election); err != nil {
			return fmt.Errorf("could not load census of election %d: %w", election, err)
		}
	}
	return nil
}

// updateRoot moves the root index entry of an election to its new root.
func (c *CensusDB) updateRoot(election types.ElectionID, oldRoot, newRoot []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.loadedCensus[election]; !exists {
		return
	}
	if id, ok := c.rootIndex[rootKey(oldRoot)]; ok && id == election {
		delete(c.rootIndex, rootKey(oldRoot))
	}
	c.rootIndex[rootKey(newRoot)] = election
}

// censusPrefix returns the prefix used for the census tree in the database.
func censusPrefix(election types.ElectionID) []byte {
	return append([]byte(censusDBprefix), election.Bytes()...)
}

func referenceKey(election types.ElectionID) []byte {
	return append([]byte(censusDBreferencePrefix), election.Bytes()...)
}
