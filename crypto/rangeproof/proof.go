// Package rangeproof implements Bulletproofs range proofs showing that a
// Pedersen commitment hides a value in [0, 2^64), without revealing it. The
// protocol is made non interactive with a merlin transcript seeded by a
// caller supplied label, so a proof only verifies under the label it was
// created with.
package rangeproof

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkballot/crypto/pedersen"
	"github.com/vocdoni/zkballot/types"
)

// BitSize is the number of bits proven by every range proof.
const BitSize = types.VoteRangeBits

const (
	pointSize  = bn254.SizeOfG1AffineCompressed
	scalarSize = fr.Bytes
)

// ProofSize is the encoded size of a BitSize bit range proof: 4 points,
// 3 scalars, a pair of points per inner product round and 2 final scalars.
var ProofSize = EncodedSize(BitSize)

// EncodedSize returns the encoded size of a range proof over n bits.
func EncodedSize(n int) int {
	rounds := 0
	for m := n; m > 1; m >>= 1 {
		rounds++
	}
	return 4*pointSize + 3*scalarSize + 2*rounds*pointSize + 2*scalarSize
}

// Proof is a range proof for a single commitment.
type Proof struct {
	A          bn254.G1Affine
	S          bn254.G1Affine
	T1         bn254.G1Affine
	T2         bn254.G1Affine
	TX         fr.Element
	TXBlinding fr.Element
	EBlinding  fr.Element
	ipp        *innerProductProof
}

// Bytes encodes the proof as A‖S‖T1‖T2‖t_x‖t_x_blinding‖e_blinding followed
// by the inner product proof: the L and R point of every round and the final
// scalars a and b.
func (p *Proof) Bytes() []byte {
	buf := make([]byte, 0, 4*pointSize+5*scalarSize+2*len(p.ipp.L)*pointSize)
	for _, pt := range []*bn254.G1Affine{&p.A, &p.S, &p.T1, &p.T2} {
		b := pt.Bytes()
		buf = append(buf, b[:]...)
	}
	for _, s := range []*fr.Element{&p.TX, &p.TXBlinding, &p.EBlinding} {
		b := s.Bytes()
		buf = append(buf, b[:]...)
	}
	for i := range p.ipp.L {
		l := p.ipp.L[i].Bytes()
		r := p.ipp.R[i].Bytes()
		buf = append(buf, l[:]...)
		buf = append(buf, r[:]...)
	}
	a := p.ipp.A.Bytes()
	b := p.ipp.B.Bytes()
	buf = append(buf, a[:]...)
	return append(buf, b[:]...)
}

// ProofFromBytes decodes a proof. Every point must be a canonical encoding
// of a point that is not the identity and every scalar must be reduced.
func ProofFromBytes(data []byte) (*Proof, error) {
	fixed := 4*pointSize + 3*scalarSize + 2*scalarSize
	if len(data) < fixed || (len(data)-fixed)%(2*pointSize) != 0 {
		return nil, fmt.Errorf("invalid proof length %d", len(data))
	}
	rounds := (len(data) - fixed) / (2 * pointSize)

	off := 0
	nextPoint := func() (bn254.G1Affine, error) {
		p, err := pedersen.DecodePoint(data[off : off+pointSize])
		off += pointSize
		return p, err
	}
	nextScalar := func() (fr.Element, error) {
		s, err := scalarFromBytes(data[off : off+scalarSize])
		off += scalarSize
		return s, err
	}

	p := &Proof{ipp: &innerProductProof{
		L: make([]bn254.G1Affine, rounds),
		R: make([]bn254.G1Affine, rounds),
	}}
	var err error
	for _, pt := range []*bn254.G1Affine{&p.A, &p.S, &p.T1, &p.T2} {
		if *pt, err = nextPoint(); err != nil {
			return nil, err
		}
	}
	for _, s := range []*fr.Element{&p.TX, &p.TXBlinding, &p.EBlinding} {
		if *s, err = nextScalar(); err != nil {
			return nil, err
		}
	}
	for i := 0; i < rounds; i++ {
		if p.ipp.L[i], err = nextPoint(); err != nil {
			return nil, err
		}
		if p.ipp.R[i], err = nextPoint(); err != nil {
			return nil, err
		}
	}
	if p.ipp.A, err = nextScalar(); err != nil {
		return nil, err
	}
	if p.ipp.B, err = nextScalar(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Proof) MarshalBinary() ([]byte, error) {
	return p.Bytes(), nil
}

func (p *Proof) UnmarshalBinary(data []byte) error {
	decoded, err := ProofFromBytes(data)
	if err != nil {
		return err
	}
	*p = *decoded
	return nil
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(types.HexBytes(p.Bytes()))
}

func (p *Proof) UnmarshalJSON(data []byte) error {
	var b types.HexBytes
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	return p.UnmarshalBinary(b)
}
