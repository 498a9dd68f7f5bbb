package rangeproof

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/gtank/merlin"
	"github.com/vocdoni/zkballot/crypto/pedersen"
)

// transcript wraps a merlin transcript with the helpers the range proof and
// inner product protocols need. Prover and verifier must feed it the same
// messages in the same order.
type transcript struct {
	t *merlin.Transcript
}

func newTranscript(label string) *transcript {
	return &transcript{t: merlin.NewTranscript(label)}
}

func (t *transcript) appendMessage(label string, msg []byte) {
	t.t.AppendMessage([]byte(label), msg)
}

func (t *transcript) appendU64(label string, v uint64) {
	t.appendMessage(label, binary.LittleEndian.AppendUint64(nil, v))
}

func (t *transcript) rangeProofDomainSep(n, m uint64) {
	t.appendMessage("dom-sep", []byte("rangeproof v1"))
	t.appendU64("n", n)
	t.appendU64("m", m)
}

func (t *transcript) innerProductDomainSep(n uint64) {
	t.appendMessage("dom-sep", []byte("ipp v1"))
	t.appendU64("n", n)
}

func (t *transcript) appendPoint(label string, p *bn254.G1Affine) {
	b := p.Bytes()
	t.appendMessage(label, b[:])
}

// validateAndAppendPoint refuses the identity, since a prover that sends it
// could make some terms of the verification equation vanish.
func (t *transcript) validateAndAppendPoint(label string, p *bn254.G1Affine) error {
	if p.IsInfinity() {
		return fmt.Errorf("%w: %s is the identity", pedersen.ErrInvalidPoint, label)
	}
	t.appendPoint(label, p)
	return nil
}

func (t *transcript) appendScalar(label string, s *fr.Element) {
	b := s.Bytes()
	t.appendMessage(label, b[:])
}

// challengeScalar extracts 64 bytes and reduces them modulo the group order.
func (t *transcript) challengeScalar(label string) fr.Element {
	return pedersen.ScalarFromWideBytes(t.t.ExtractBytes([]byte(label), 64))
}

// scalarFromBytes decodes a 32 byte big endian scalar, rejecting values that
// are not reduced.
func scalarFromBytes(b []byte) (fr.Element, error) {
	var s fr.Element
	if len(b) != fr.Bytes {
		return s, fmt.Errorf("invalid scalar length %d", len(b))
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return s, fmt.Errorf("scalar is not canonical")
	}
	s.SetBigInt(v)
	return s, nil
}
