package rangeproof

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// msm computes Σ scalars[i]·points[i]. Both slices must have the same length.
func msm(scalars []fr.Element, points []bn254.G1Affine) bn254.G1Jac {
	var acc bn254.G1Jac
	if _, err := acc.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		panic(fmt.Sprintf("rangeproof: multi-exponentiation: %v", err))
	}
	return acc
}

func mulPoint(p *bn254.G1Affine, s *fr.Element) bn254.G1Affine {
	var r bn254.G1Affine
	r.ScalarMultiplication(p, s.BigInt(new(big.Int)))
	return r
}

func innerProduct(a, b []fr.Element) fr.Element {
	var acc, tmp fr.Element
	for i := range a {
		tmp.Mul(&a[i], &b[i])
		acc.Add(&acc, &tmp)
	}
	return acc
}

// powers returns [1, x, x^2, ..., x^(n-1)].
func powers(x *fr.Element, n int) []fr.Element {
	res := make([]fr.Element, n)
	if n == 0 {
		return res
	}
	res[0].SetOne()
	for i := 1; i < n; i++ {
		res[i].Mul(&res[i-1], x)
	}
	return res
}

// sumOfPowers returns Σ_{i<n} x^i.
func sumOfPowers(x *fr.Element, n int) fr.Element {
	var sum fr.Element
	for _, p := range powers(x, n) {
		sum.Add(&sum, &p)
	}
	return sum
}

func randomScalar() (fr.Element, error) {
	var s fr.Element
	_, err := s.SetRandom()
	return s, err
}

func randomScalars(n int) ([]fr.Element, error) {
	res := make([]fr.Element, n)
	for i := range res {
		if _, err := res[i].SetRandom(); err != nil {
			return nil, err
		}
	}
	return res, nil
}
