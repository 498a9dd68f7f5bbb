// Package pedersen implements Pedersen commitments to 64 bit values over the
// BN254 G1 group.
package pedersen

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkballot/types"
)

// HashToCurveDST is the domain separation tag used to derive every public
// generator that is not the standard G1 generator.
const HashToCurveDST = "ZKBALLOT-V01-CS01-with-BN254G1_XMD:SHA-256_SVDW_RO_"

// CommitmentSize is the size in bytes of an encoded commitment.
const CommitmentSize = bn254.SizeOfG1AffineCompressed

// ErrInvalidPoint is returned when a point encoding cannot be decoded, is not
// canonical or is the identity.
var ErrInvalidPoint = errors.New("invalid curve point")

// Generators is the pair of public generators used for commitments: B
// multiplies the value and BBlinding the blinding factor.
type Generators struct {
	B         bn254.G1Affine
	BBlinding bn254.G1Affine
}

var (
	defaultGens     *Generators
	defaultGensOnce sync.Once
)

// DefaultGenerators returns the fixed generators shared by every commitment.
// B is the standard G1 generator and BBlinding is derived by hashing to the
// curve, so nobody knows the discrete log between them.
func DefaultGenerators() *Generators {
	defaultGensOnce.Do(func() {
		_, _, g1, _ := bn254.Generators()
		blinding, err := HashToPoint([]byte("pedersen blinding generator"))
		if err != nil {
			panic(fmt.Sprintf("cannot derive blinding generator: %v", err))
		}
		defaultGens = &Generators{B: g1, BBlinding: blinding}
	})
	return defaultGens
}

// HashToPoint maps msg to a G1 point under HashToCurveDST.
func HashToPoint(msg []byte) (bn254.G1Affine, error) {
	return bn254.HashToG1(msg, []byte(HashToCurveDST))
}

// Commit returns the point value·B + blinding·BBlinding.
func (g *Generators) Commit(value *fr.Element, blinding *fr.Element) bn254.G1Affine {
	var vB, rB, c bn254.G1Affine
	vB.ScalarMultiplication(&g.B, value.BigInt(new(big.Int)))
	rB.ScalarMultiplication(&g.BBlinding, blinding.BigInt(new(big.Int)))
	c.Add(&vB, &rB)
	return c
}

// Commitment is the compressed encoding of a Pedersen commitment point.
type Commitment [CommitmentSize]byte

// Commit commits to value using the default generators.
func Commit(value uint64, blinding *fr.Element) Commitment {
	var v fr.Element
	v.SetUint64(value)
	p := DefaultGenerators().Commit(&v, blinding)
	return CommitmentFromPoint(&p)
}

// CommitmentFromPoint encodes p as a commitment.
func CommitmentFromPoint(p *bn254.G1Affine) Commitment {
	return Commitment(p.Bytes())
}

// CommitmentFromBytes copies b into a Commitment. It only checks the length,
// the point itself is validated by Point.
func CommitmentFromBytes(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != CommitmentSize {
		return c, fmt.Errorf("invalid commitment length %d, expected %d", len(b), CommitmentSize)
	}
	copy(c[:], b)
	return c, nil
}

// Point decodes the commitment.
func (c Commitment) Point() (bn254.G1Affine, error) {
	return DecodePoint(c[:])
}

func (c Commitment) Bytes() []byte {
	return slices.Clone(c[:])
}

func (c Commitment) String() string {
	return types.HexBytes(c[:]).String()
}

func (c Commitment) MarshalJSON() ([]byte, error) {
	return types.HexBytes(c[:]).MarshalJSON()
}

func (c *Commitment) UnmarshalJSON(data []byte) error {
	var b types.HexBytes
	if err := b.UnmarshalJSON(data); err != nil {
		return err
	}
	decoded, err := CommitmentFromBytes(b)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// DecodePoint decodes a compressed G1 point. The identity and any non
// canonical encoding are rejected.
func DecodePoint(b []byte) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	if len(b) != bn254.SizeOfG1AffineCompressed {
		return p, fmt.Errorf("%w: length %d", ErrInvalidPoint, len(b))
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	if p.IsInfinity() {
		return p, fmt.Errorf("%w: identity", ErrInvalidPoint)
	}
	if enc := p.Bytes(); !slices.Equal(enc[:], b) {
		return p, fmt.Errorf("%w: non canonical encoding", ErrInvalidPoint)
	}
	return p, nil
}

// ScalarFromWideBytes interprets b as a little endian integer and reduces it
// modulo the group order. With 64 input bytes the result is close to uniform.
func ScalarFromWideBytes(b []byte) fr.Element {
	le := slices.Clone(b)
	slices.Reverse(le)
	var s fr.Element
	s.SetBigInt(new(big.Int).SetBytes(le))
	return s
}

// BlindingFromSeed derives a blinding factor from an arbitrary seed: the
// SHA-512 digest of the seed reduced modulo the group order.
func BlindingFromSeed(seed []byte) fr.Element {
	h := sha512.Sum512(seed)
	return ScalarFromWideBytes(h[:])
}

// RandomBlinding returns a uniformly random blinding factor.
func RandomBlinding() (fr.Element, error) {
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return r, fmt.Errorf("cannot generate blinding: %w", err)
	}
	return r, nil
}
