package rangeproof

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// innerProductProof shows knowledge of vectors a, b such that
// P = <a,G> + <b,H> + <a,b>·Q, in log2(n) rounds.
type innerProductProof struct {
	L []bn254.G1Affine
	R []bn254.G1Affine
	A fr.Element
	B fr.Element
}

// proveInnerProduct consumes a, b, G and H, which are modified in place.
// The length of every vector must be a power of two.
func proveInnerProduct(t *transcript, Q *bn254.G1Affine, G, H []bn254.G1Affine, a, b []fr.Element) *innerProductProof {
	n := len(G)
	t.innerProductDomainSep(uint64(n))

	proof := &innerProductProof{}
	for n > 1 {
		n /= 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		L := msm(aL, gR)
		tmp := msm(bR, hL)
		L.AddAssign(&tmp)
		q := mulPoint(Q, &cL)
		L.AddMixed(&q)

		R := msm(aR, gL)
		tmp = msm(bL, hR)
		R.AddAssign(&tmp)
		q = mulPoint(Q, &cR)
		R.AddMixed(&q)

		var lAff, rAff bn254.G1Affine
		lAff.FromJacobian(&L)
		rAff.FromJacobian(&R)
		proof.L = append(proof.L, lAff)
		proof.R = append(proof.R, rAff)
		t.appendPoint("L", &lAff)
		t.appendPoint("R", &rAff)

		u := t.challengeScalar("u")
		var uInv fr.Element
		uInv.Inverse(&u)

		for i := 0; i < n; i++ {
			var x, y fr.Element
			// a' = u·aL + u^-1·aR
			x.Mul(&aL[i], &u)
			y.Mul(&aR[i], &uInv)
			aL[i].Add(&x, &y)
			// b' = u^-1·bL + u·bR
			x.Mul(&bL[i], &uInv)
			y.Mul(&bR[i], &u)
			bL[i].Add(&x, &y)
			// G' = u^-1·GL + u·GR
			g := msm([]fr.Element{uInv, u}, []bn254.G1Affine{gL[i], gR[i]})
			gL[i].FromJacobian(&g)
			// H' = u·HL + u^-1·HR
			h := msm([]fr.Element{u, uInv}, []bn254.G1Affine{hL[i], hR[i]})
			hL[i].FromJacobian(&h)
		}
		a, b, G, H = aL, bL, gL, hL
	}
	proof.A = a[0]
	proof.B = b[0]
	return proof
}

// verificationScalars replays the challenges of the proof and returns the
// squared challenges, their inverses and the vector s such that the folded
// generators are G = <s,G> and H = <s^-1,H>.
func (p *innerProductProof) verificationScalars(n int, t *transcript) (uSq, uInvSq, s []fr.Element, err error) {
	lgN := len(p.L)
	if lgN >= 32 || n != 1<<lgN {
		return nil, nil, nil, fmt.Errorf("inner product proof has %d rounds for %d elements", lgN, n)
	}
	if len(p.R) != lgN {
		return nil, nil, nil, errors.New("mismatched L and R in inner product proof")
	}

	t.innerProductDomainSep(uint64(n))

	challenges := make([]fr.Element, lgN)
	for i := range p.L {
		if err := t.validateAndAppendPoint("L", &p.L[i]); err != nil {
			return nil, nil, nil, err
		}
		if err := t.validateAndAppendPoint("R", &p.R[i]); err != nil {
			return nil, nil, nil, err
		}
		challenges[i] = t.challengeScalar("u")
		if challenges[i].IsZero() {
			return nil, nil, nil, errors.New("zero inner product challenge")
		}
	}

	inv := fr.BatchInvert(challenges)
	var allInv fr.Element
	allInv.SetOne()
	for i := range inv {
		allInv.Mul(&allInv, &inv[i])
	}

	uSq = make([]fr.Element, lgN)
	uInvSq = make([]fr.Element, lgN)
	for i := range challenges {
		uSq[i].Square(&challenges[i])
		uInvSq[i].Square(&inv[i])
	}

	s = make([]fr.Element, n)
	s[0] = allInv
	for i := 1; i < n; i++ {
		lgI := bits.Len(uint(i)) - 1
		k := 1 << lgI
		// the challenges are stored in "creation order" as [u_k,...,u_1],
		// so u_{lg(i)+1} is indexed by (lgN-1) - lgI
		s[i].Mul(&s[i-k], &uSq[(lgN-1)-lgI])
	}
	return uSq, uInvSq, s, nil
}
