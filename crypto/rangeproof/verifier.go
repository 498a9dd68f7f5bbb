package rangeproof

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkballot/crypto/pedersen"
)

// ErrVerification is returned by VerifyProof when the proof does not hold.
var ErrVerification = errors.New("range proof verification failed")

// Verify reports whether proof shows that commitment hides a value in
// [0, 2^64), under the transcript label. It never panics and has no side
// effects: malformed inputs simply do not verify.
func Verify(commitment pedersen.Commitment, proof []byte, label string) bool {
	return VerifyBytes(commitment, proof, label) == nil
}

// VerifyBytes decodes and verifies proof, returning the reason of a failure.
func VerifyBytes(commitment pedersen.Commitment, proof []byte, label string) error {
	p, err := ProofFromBytes(proof)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return p.Verify(commitment, label)
}

// Verify checks the proof against commitment and label.
func (p *Proof) Verify(commitment pedersen.Commitment, label string) error {
	return verify(pedersen.DefaultGenerators(), DefaultGenerators(), p, commitment, label)
}

func verify(pc *pedersen.Generators, bp *Generators, p *Proof, commitment pedersen.Commitment, label string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrVerification, r)
		}
	}()
	if err := verifyEquation(pc, bp, p, commitment, label); err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}
	return nil
}

func verifyEquation(pc *pedersen.Generators, bp *Generators, p *Proof, commitment pedersen.Commitment, label string) error {
	n := BitSize
	if p == nil || p.ipp == nil {
		return errors.New("empty proof")
	}
	if len(bp.G) < n || len(bp.H) < n {
		return errors.New("not enough generators")
	}
	V, err := commitment.Point()
	if err != nil {
		return err
	}

	t := newTranscript(label)
	t.rangeProofDomainSep(uint64(n), 1)
	t.appendPoint("V", &V)

	if err := t.validateAndAppendPoint("A", &p.A); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("S", &p.S); err != nil {
		return err
	}
	y := t.challengeScalar("y")
	z := t.challengeScalar("z")
	if y.IsZero() {
		return errors.New("zero challenge")
	}
	var zz, minusZ fr.Element
	zz.Square(&z)
	minusZ.Neg(&z)

	if err := t.validateAndAppendPoint("T_1", &p.T1); err != nil {
		return err
	}
	if err := t.validateAndAppendPoint("T_2", &p.T2); err != nil {
		return err
	}
	x := t.challengeScalar("x")
	var xx fr.Element
	xx.Square(&x)

	t.appendScalar("t_x", &p.TX)
	t.appendScalar("t_x_blinding", &p.TXBlinding)
	t.appendScalar("e_blinding", &p.EBlinding)
	w := t.challengeScalar("w")

	uSq, uInvSq, s, err := p.ipp.verificationScalars(n, t)
	if err != nil {
		return err
	}
	// c combines the range and inner product equations into a single check.
	// It is drawn after every proof element so the check stays deterministic.
	c := t.challengeScalar("c")

	a, b := p.ipp.A, p.ipp.B

	var yInv, two fr.Element
	yInv.Inverse(&y)
	two.SetUint64(2)
	yInvPow := powers(&yInv, n)
	twoPow := powers(&two, n)

	scalars := make([]fr.Element, 0, 2*n+2*len(uSq)+7)
	points := make([]bn254.G1Affine, 0, cap(scalars))
	add := func(sc fr.Element, pt bn254.G1Affine) {
		scalars = append(scalars, sc)
		points = append(points, pt)
	}

	var one, tmp, tmp2 fr.Element
	one.SetOne()

	// A + x·S
	add(one, p.A)
	add(x, p.S)

	// c·x·T1 + c·x^2·T2
	tmp.Mul(&c, &x)
	add(tmp, p.T1)
	tmp.Mul(&c, &xx)
	add(tmp, p.T2)

	// Σ u^2·L + Σ u^-2·R
	for i := range uSq {
		add(uSq[i], p.ipp.L[i])
		add(uInvSq[i], p.ipp.R[i])
	}

	// (-e_blinding - c·t_x_blinding)·B̃
	tmp.Mul(&c, &p.TXBlinding)
	tmp.Add(&tmp, &p.EBlinding)
	tmp.Neg(&tmp)
	add(tmp, pc.BBlinding)

	// (w·(t_x - a·b) + c·(δ(y,z) - t_x))·B
	delta := computeDelta(n, &y, &z)
	var ab fr.Element
	ab.Mul(&a, &b)
	tmp.Sub(&p.TX, &ab)
	tmp.Mul(&tmp, &w)
	tmp2.Sub(&delta, &p.TX)
	tmp2.Mul(&tmp2, &c)
	tmp.Add(&tmp, &tmp2)
	add(tmp, pc.B)

	// Σ (-z - a·s_i)·G_i
	for i := 0; i < n; i++ {
		tmp.Mul(&a, &s[i])
		tmp.Sub(&minusZ, &tmp)
		add(tmp, bp.G[i])
	}

	// Σ (z + y^-i·(z^2·2^i - b·s_{n-1-i}))·H_i
	for i := 0; i < n; i++ {
		tmp.Mul(&b, &s[n-1-i])
		tmp2.Mul(&zz, &twoPow[i])
		tmp2.Sub(&tmp2, &tmp)
		tmp2.Mul(&tmp2, &yInvPow[i])
		tmp2.Add(&tmp2, &z)
		add(tmp2, bp.H[i])
	}

	// c·z^2·V
	tmp.Mul(&c, &zz)
	add(tmp, V)

	check := msm(scalars, points)
	var res bn254.G1Affine
	res.FromJacobian(&check)
	if !res.IsInfinity() {
		return errors.New("verification equation does not hold")
	}
	return nil
}

// computeDelta returns δ(y,z) = (z - z^2)·<1,y^n> - z^3·<1,2^n>.
func computeDelta(n int, y, z *fr.Element) fr.Element {
	var zz, zzz, two, res, tmp fr.Element
	zz.Square(z)
	zzz.Mul(&zz, z)
	two.SetUint64(2)

	sumY := sumOfPowers(y, n)
	sum2 := sumOfPowers(&two, n)

	res.Sub(z, &zz)
	res.Mul(&res, &sumY)
	tmp.Mul(&zzz, &sum2)
	res.Sub(&res, &tmp)
	return res
}
