// Package poseidon hashes arbitrary byte strings into BN254 scalar field
// elements with the iden3 poseidon implementation.
package poseidon

import (
	"errors"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

const (
	// maxInputs is the number of field elements MultiPoseidon accepts.
	maxInputs = 256
	// chunkSize is the number of bytes packed into each field element, small
	// enough for any chunk to be below the field modulus.
	chunkSize = 31
	// MaxBytes is the longest input accepted by HashBytes.
	MaxBytes = maxInputs * chunkSize
)

var (
	ErrTooManyInputs = errors.New("too many inputs")
	ErrNoInputs      = errors.New("no inputs provided")
)

// MultiPoseidon hashes up to 256 field elements. The inputs are hashed in
// chunks of 16 and, if there is more than one chunk, the chunk hashes are
// hashed again.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) > maxInputs {
		return nil, ErrTooManyInputs
	} else if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	// calculate chunk hashes
	hashes := []*big.Int{}
	chunk := []*big.Int{}
	for _, input := range inputs {
		if len(chunk) == 16 {
			hash, err := poseidon.Hash(chunk)
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, hash)
			chunk = []*big.Int{}
		}
		chunk = append(chunk, input)
	}
	// if the final chunk is not empty, hash it to get the last chunk hash
	if len(chunk) > 0 {
		hash, err := poseidon.Hash(chunk)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
	}
	// if there is only one chunk hash, return it
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	// return the hash of all chunk hashes
	return poseidon.Hash(hashes)
}

// HashBytes packs data into 31 byte big endian field elements and hashes
// them with MultiPoseidon. The length of data is hashed too, so inputs that
// only differ in trailing zeros do not collide. Empty data is accepted.
func HashBytes(data []byte) (*big.Int, error) {
	if len(data) > MaxBytes-chunkSize {
		return nil, ErrTooManyInputs
	}
	inputs := []*big.Int{big.NewInt(int64(len(data)))}
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		inputs = append(inputs, new(big.Int).SetBytes(data[start:end]))
	}
	return MultiPoseidon(inputs...)
}
