package ethereum

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSignKeysGeneration(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	pub, priv := s.HexString()
	c.Assert(pub, qt.Not(qt.Equals), "")
	c.Assert(priv, qt.Not(qt.Equals), "")

	// Test key import
	imported := NewSignKeys()
	c.Assert(imported.AddHexKey(priv), qt.IsNil)

	importedPub, importedPriv := imported.HexString()
	c.Assert(importedPub, qt.Equals, pub)
	c.Assert(importedPriv, qt.Equals, priv)
}

func TestEthereumSigning(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	s := NewSignKeys()
	c.Assert(s.AddHexKey("0xfad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"), qt.IsNil)
	_, priv := s.HexString()
	c.Assert(priv, qt.Equals, "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19")

	// signatures are deterministic (RFC 6979)
	sig1, err := s.SignEthereum([]byte("open voting for election 1"))
	c.Assert(err, qt.IsNil)
	c.Assert(sig1, qt.HasLen, SignatureLength)
	sig2, err := s.SignEthereum([]byte("open voting for election 1"))
	c.Assert(err, qt.IsNil)
	c.Assert(sig2, qt.DeepEquals, sig1)

	// wallets produce a 27/28 recovery id, which is accepted too
	legacy := append([]byte(nil), sig1...)
	legacy[64] += 27
	addr, err := AddrFromSignature([]byte("open voting for election 1"), legacy)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())

	// a signature by keys without a private part fails
	_, err = NewSignKeys().SignEthereum([]byte("hello"))
	c.Assert(err, qt.ErrorMatches, "no private key available")

	_, err = AddrFromSignature([]byte("hello"), sig1[:10])
	c.Assert(err, qt.ErrorMatches, "signature length not correct.*")
}

func TestAddressRecovery(t *testing.T) {
	c := qt.New(t)
	t.Parallel()

	testCases := []struct {
		name    string
		message []byte
	}{
		{
			name:    "simple message",
			message: []byte("register voter 0x01"),
		},
		{
			name:    "different message",
			message: []byte("cast vote for candidate 2"),
		},
	}

	// Generate keys
	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	// Get address from public key
	expectedAddr, err := AddrFromPublicKey(s.PublicKey())
	c.Assert(err, qt.IsNil)
	c.Assert(expectedAddr.String(), qt.Equals, s.AddressString())

	// Test address recovery from signatures of different messages
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)

			signature, err := s.SignEthereum(tc.message)
			c.Assert(err, qt.IsNil)

			recoveredAddr, err := AddrFromSignature(tc.message, signature)
			c.Assert(err, qt.IsNil)
			c.Assert(recoveredAddr, qt.Equals, expectedAddr)
		})
	}
}

func TestAddressRecoveryWrongMessage(t *testing.T) {
	c := qt.New(t)
	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)
	sig, err := s.SignEthereum([]byte("a"))
	c.Assert(err, qt.IsNil)
	addr, err := AddrFromSignature([]byte("b"), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Not(qt.Equals), s.Address())
}
