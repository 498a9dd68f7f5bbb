package rangeproof

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vocdoni/zkballot/crypto/pedersen"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCacheSize is the number of verification results kept by a
	// CachedVerifier when no size is given.
	DefaultCacheSize = 4096
	// MaxLabelSize bounds the transcript labels accepted from untrusted
	// callers.
	MaxLabelSize = 256
)

// Verifier checks range proofs.
type Verifier interface {
	Verify(commitment pedersen.Commitment, proof []byte, label string) bool
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(commitment pedersen.Commitment, proof []byte, label string) bool

func (f VerifierFunc) Verify(commitment pedersen.Commitment, proof []byte, label string) bool {
	return f(commitment, proof, label)
}

// DefaultVerifier verifies every proof from scratch.
var DefaultVerifier Verifier = VerifierFunc(Verify)

// CachedVerifier memoizes verification results. Since verification is a
// pure function of its inputs, a cached result is always valid.
type CachedVerifier struct {
	next   Verifier
	cache  *lru.Cache[[32]byte, bool]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedVerifier wraps next with a cache of size entries. If next is nil
// DefaultVerifier is used.
func NewCachedVerifier(next Verifier, size int) (*CachedVerifier, error) {
	if next == nil {
		next = DefaultVerifier
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, bool](size)
	if err != nil {
		return nil, err
	}
	return &CachedVerifier{next: next, cache: cache}, nil
}

func (cv *CachedVerifier) Verify(commitment pedersen.Commitment, proof []byte, label string) bool {
	key := cacheKey(commitment, proof, label)
	if ok, found := cv.cache.Get(key); found {
		cv.hits.Add(1)
		return ok
	}
	cv.misses.Add(1)
	ok := cv.next.Verify(commitment, proof, label)
	cv.cache.Add(key, ok)
	return ok
}

// Stats returns the number of cache hits and misses.
func (cv *CachedVerifier) Stats() (hits, misses uint64) {
	return cv.hits.Load(), cv.misses.Load()
}

func cacheKey(commitment pedersen.Commitment, proof []byte, label string) [32]byte {
	h := sha256.New()
	// every field is prefixed with its full length, so that bytes cannot be
	// shifted from one field into another
	for _, field := range [][]byte{[]byte(label), commitment[:], proof} {
		h.Write(binary.BigEndian.AppendUint64(nil, uint64(len(field))))
		h.Write(field)
	}
	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// BatchItem is one entry of a batch verification.
type BatchItem struct {
	Commitment pedersen.Commitment
	Proof      []byte
	Label      string
}

// VerifyBatch verifies independent proofs in parallel, using at most workers
// goroutines. The result at index i is the outcome of items[i]. It returns
// early with the context error if ctx is done.
func VerifyBatch(ctx context.Context, v Verifier, items []BatchItem, workers int) ([]bool, error) {
	if v == nil {
		v = DefaultVerifier
	}
	results := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.Verify(items[i].Commitment, items[i].Proof, items[i].Label)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
