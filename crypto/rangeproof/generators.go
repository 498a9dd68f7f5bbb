package rangeproof

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/vocdoni/zkballot/crypto/pedersen"
)

// Generators holds the vector generators used by the range proof, one G and
// one H per proven bit.
type Generators struct {
	G []bn254.G1Affine
	H []bn254.G1Affine
}

var (
	defaultGens     *Generators
	defaultGensOnce sync.Once
)

// DefaultGenerators returns the generators for BitSize bit proofs. They are
// derived by hashing to the curve the first time they are needed.
func DefaultGenerators() *Generators {
	defaultGensOnce.Do(func() {
		gens, err := NewGenerators(BitSize)
		if err != nil {
			panic(fmt.Sprintf("cannot derive range proof generators: %v", err))
		}
		defaultGens = gens
	})
	return defaultGens
}

// NewGenerators derives n pairs of vector generators.
func NewGenerators(n int) (*Generators, error) {
	gens := &Generators{
		G: make([]bn254.G1Affine, n),
		H: make([]bn254.G1Affine, n),
	}
	for i := 0; i < n; i++ {
		var err error
		if gens.G[i], err = pedersen.HashToPoint(fmt.Appendf(nil, "bulletproof G %d", i)); err != nil {
			return nil, err
		}
		if gens.H[i], err = pedersen.HashToPoint(fmt.Appendf(nil, "bulletproof H %d", i)); err != nil {
			return nil, err
		}
	}
	return gens, nil
}
