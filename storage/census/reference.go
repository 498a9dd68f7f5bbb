package census

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/vocdoni/arbo"
	"github.com/vocdoni/zkballot/types"
)

// CensusRef is a reference to the census of an election. It holds the Merkle
// tree. All accesses to the underlying tree (and its currentRoot) are
// protected by treeMu.
type CensusRef struct {
	ElectionID  types.ElectionID
	MaxLevels   int
	HashType    string
	Created     time.Time
	currentRoot []byte
	tree        *arbo.Tree
	// treeMu protects all access to the underlying Merkle tree.
	treeMu sync.Mutex
	// onRootChange is called after every change of the root, with treeMu
	// held. It must not call back into the CensusRef.
	onRootChange func(election types.ElectionID, oldRoot, newRoot []byte)
}

// Insert safely inserts a key/value pair into the Merkle tree. Inserting a
// key that already holds the same value is a no-op.
func (cr *CensusRef) Insert(key, value []byte) error {
	cr.treeMu.Lock()
	if _, v, err := cr.tree.Get(key); err == nil {
		cr.treeMu.Unlock()
		if bytes.Equal(v, value) {
			return nil
		}
		return arbo.ErrKeyAlreadyExists
	}
	if err := cr.tree.Add(key, value); err != nil {
		cr.treeMu.Unlock()
		return err
	}
	oldRoot := cr.currentRoot
	newRoot, err := cr.tree.Root()
	if err != nil {
		cr.treeMu.Unlock()
		return err
	}
	cr.currentRoot = newRoot
	// notify while holding treeMu, so root changes are seen in order
	if cr.onRootChange != nil {
		cr.onRootChange(cr.ElectionID, oldRoot, newRoot)
	}
	cr.treeMu.Unlock()
	return nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (cr *CensusRef) Get(key []byte) ([]byte, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	_, v, err := cr.tree.Get(key)
	if errors.Is(err, arbo.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

// Root safely returns the current Merkle tree root.
func (cr *CensusRef) Root() []byte {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	return cr.currentRoot
}

// Size safely returns the number of leaves in the Merkle tree.
func (cr *CensusRef) Size() int {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	size, err := cr.tree.GetNLeafs()
	if err != nil {
		return 0
	}
	return size
}

// GenProof safely generates a Merkle proof for the given leaf key.
// It returns the proof components and an inclusion boolean.
func (cr *CensusRef) GenProof(key []byte) ([]byte, []byte, []byte, bool, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	return cr.tree.GenProof(key)
}

// Proof returns the inclusion proof of key, or ErrKeyNotFound if the key is
// not in the tree.
func (cr *CensusRef) Proof(key []byte) (*types.CensusProof, error) {
	k, value, siblings, inclusion, err := cr.GenProof(key)
	if err != nil {
		return nil, err
	}
	if !inclusion {
		return nil, ErrKeyNotFound
	}
	return &types.CensusProof{
		Root:     cr.Root(),
		Key:      k,
		Value:    value,
		Siblings: siblings,
	}, nil
}

// VerifyProof verifies a Merkle proof for the given leaf key.
func VerifyProof(key, value, root, siblings []byte) bool {
	valid, err := arbo.CheckProof(defaultHashFunction, key, value, root, siblings)
	if err != nil {
		return false
	}
	return valid
}
