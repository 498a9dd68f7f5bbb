package rangeproof

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/vocdoni/zkballot/crypto/pedersen"
)

// ErrProofGeneration is returned when the prover fails internally, for
// instance when the system randomness source is not available. It is not
// caused by the inputs.
var ErrProofGeneration = errors.New("internal proof generation failure")

// Prove creates a range proof for value committed with blinding, bound to
// label. It returns the proof and the commitment it proves, which is the same
// as pedersen.Commit(value, blinding).
func Prove(value uint64, blinding *fr.Element, label string) (*Proof, pedersen.Commitment, error) {
	return prove(pedersen.DefaultGenerators(), DefaultGenerators(), value, blinding, label)
}

func prove(pc *pedersen.Generators, bp *Generators, value uint64, blinding *fr.Element, label string) (*Proof, pedersen.Commitment, error) {
	n := BitSize
	if len(bp.G) < n || len(bp.H) < n {
		return nil, pedersen.Commitment{}, fmt.Errorf("%w: not enough generators", ErrProofGeneration)
	}
	G := append([]bn254.G1Affine(nil), bp.G[:n]...)
	H := append([]bn254.G1Affine(nil), bp.H[:n]...)

	var v fr.Element
	v.SetUint64(value)
	V := pc.Commit(&v, blinding)

	t := newTranscript(label)
	t.rangeProofDomainSep(uint64(n), 1)
	t.appendPoint("V", &V)

	randomness, err := randomScalars(4 + 2*n)
	if err != nil {
		return nil, pedersen.Commitment{}, fmt.Errorf("%w: %v", ErrProofGeneration, err)
	}
	alpha, rho, tau1, tau2 := randomness[0], randomness[1], randomness[2], randomness[3]
	sL, sR := randomness[4:4+n], randomness[4+n:]

	// aL holds the bits of the value and aR = aL - 1
	aL := make([]fr.Element, n)
	aR := make([]fr.Element, n)
	var minusOne fr.Element
	minusOne.SetOne()
	minusOne.Neg(&minusOne)
	for i := 0; i < n; i++ {
		if (value>>i)&1 == 1 {
			aL[i].SetOne()
		} else {
			aR[i] = minusOne
		}
	}

	// A = α·B̃ + <aL,G> + <aR,H>
	A := msm(aL, G)
	tmp := msm(aR, H)
	A.AddAssign(&tmp)
	blind := mulPoint(&pc.BBlinding, &alpha)
	A.AddMixed(&blind)

	// S = ρ·B̃ + <sL,G> + <sR,H>
	S := msm(sL, G)
	tmp = msm(sR, H)
	S.AddAssign(&tmp)
	blind = mulPoint(&pc.BBlinding, &rho)
	S.AddMixed(&blind)

	proof := &Proof{}
	proof.A.FromJacobian(&A)
	proof.S.FromJacobian(&S)
	t.appendPoint("A", &proof.A)
	t.appendPoint("S", &proof.S)

	y := t.challengeScalar("y")
	z := t.challengeScalar("z")
	var zz fr.Element
	zz.Square(&z)

	// l(X) = (aL - z) + sL·X
	// r(X) = y^n ∘ (aR + z + sR·X) + z^2·2^n
	yPow := powers(&y, n)
	var two fr.Element
	two.SetUint64(2)
	twoPow := powers(&two, n)

	l0 := make([]fr.Element, n)
	r0 := make([]fr.Element, n)
	r1 := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		l0[i].Sub(&aL[i], &z)

		var x fr.Element
		x.Add(&aR[i], &z)
		r0[i].Mul(&yPow[i], &x)
		x.Mul(&zz, &twoPow[i])
		r0[i].Add(&r0[i], &x)

		r1[i].Mul(&yPow[i], &sR[i])
	}
	l1 := sL

	// t1 = <l0,r1> + <l1,r0>, t2 = <l1,r1>
	t1 := innerProduct(l0, r1)
	cross := innerProduct(l1, r0)
	t1.Add(&t1, &cross)
	t2 := innerProduct(l1, r1)

	T1 := pc.Commit(&t1, &tau1)
	T2 := pc.Commit(&t2, &tau2)
	proof.T1, proof.T2 = T1, T2
	t.appendPoint("T_1", &proof.T1)
	t.appendPoint("T_2", &proof.T2)

	x := t.challengeScalar("x")
	var xx fr.Element
	xx.Square(&x)

	l := make([]fr.Element, n)
	r := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		var s fr.Element
		s.Mul(&l1[i], &x)
		l[i].Add(&l0[i], &s)
		s.Mul(&r1[i], &x)
		r[i].Add(&r0[i], &s)
	}
	proof.TX = innerProduct(l, r)

	// t_x_blinding = τ2·x^2 + τ1·x + z^2·γ
	var s fr.Element
	proof.TXBlinding.Mul(&tau2, &xx)
	s.Mul(&tau1, &x)
	proof.TXBlinding.Add(&proof.TXBlinding, &s)
	s.Mul(&zz, blinding)
	proof.TXBlinding.Add(&proof.TXBlinding, &s)

	// e_blinding = α + ρ·x
	s.Mul(&rho, &x)
	proof.EBlinding.Add(&alpha, &s)

	t.appendScalar("t_x", &proof.TX)
	t.appendScalar("t_x_blinding", &proof.TXBlinding)
	t.appendScalar("e_blinding", &proof.EBlinding)

	w := t.challengeScalar("w")
	Q := mulPoint(&pc.B, &w)

	// the inner product runs over H'_i = y^-i·H_i
	var yInv fr.Element
	yInv.Inverse(&y)
	yInvPow := powers(&yInv, n)
	for i := 0; i < n; i++ {
		H[i] = mulPoint(&H[i], &yInvPow[i])
	}
	proof.ipp = proveInnerProduct(t, &Q, G, H, l, r)

	return proof, pedersen.CommitmentFromPoint(&V), nil
}
