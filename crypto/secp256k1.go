package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// Errors for signing, recovery and verification.
var (
	ErrInvalidSignature = errors.New("secp256k1: invalid signature")
	ErrInvalidSecret    = errors.New("secp256k1: invalid secret key")
	ErrInvalidPublic    = errors.New("secp256k1: invalid public key")
	ErrInvalidMessage   = errors.New("secp256k1: message hash must be 32 bytes")
)

// Curve order and half order, exposed for range and malleability checks.
var (
	secp256k1N     = uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	secp256k1HalfN = new(uint256.Int).Rsh(secp256k1N, 1)
)

// Signature is a 65-byte compact ECDSA signature: R (32) || S (32) || V (1).
// V is the raw recovery id (0 or 1).
type Signature [65]byte

// NewSignature assembles a compact signature from its components.
func NewSignature(r, s *uint256.Int, v byte) Signature {
	var sig Signature
	r32, s32 := r.Bytes32(), s.Bytes32()
	copy(sig[:32], r32[:])
	copy(sig[32:64], s32[:])
	sig[64] = v
	return sig
}

// SignatureFromBytes parses a 65-byte compact signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != 65 {
		return sig, ErrInvalidSignature
	}
	copy(sig[:], b)
	return sig, nil
}

// R returns the R component of the signature.
func (sig *Signature) R() *uint256.Int {
	return new(uint256.Int).SetBytes(sig[:32])
}

// S returns the S component of the signature.
func (sig *Signature) S() *uint256.Int {
	return new(uint256.Int).SetBytes(sig[32:64])
}

// V returns the recovery id.
func (sig *Signature) V() byte { return sig[64] }

// Bytes returns the signature as a byte slice.
func (sig *Signature) Bytes() []byte { return sig[:] }

// IsValid reports whether r and s are in [1, N-1] and v is a raw recovery id.
func (sig *Signature) IsValid() bool {
	if sig.V() > 1 {
		return false
	}
	r, s := sig.R(), sig.S()
	if r.IsZero() || r.Cmp(secp256k1N) >= 0 {
		return false
	}
	if s.IsZero() || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	return true
}

// IsLowS reports whether s lies in the lower half of the curve order.
// High-s signatures are valid ECDSA but malleable: (r, N-s) verifies too.
func (sig *Signature) IsLowS() bool {
	return sig.S().Cmp(secp256k1HalfN) <= 0
}

// Secret is a 32-byte secp256k1 private key scalar.
type Secret [32]byte

// SecretFromBytes parses a 32-byte scalar and checks it is in [1, N-1].
func SecretFromBytes(b []byte) (*Secret, error) {
	if len(b) != 32 {
		return nil, ErrInvalidSecret
	}
	d := new(uint256.Int).SetBytes(b)
	if d.IsZero() || d.Cmp(secp256k1N) >= 0 {
		return nil, ErrInvalidSecret
	}
	var sec Secret
	copy(sec[:], b)
	return &sec, nil
}

// Sign produces a recoverable ECDSA signature over a 32-byte message hash.
// The nonce is derived deterministically (RFC 6979, HMAC-SHA256), s is
// normalized to the lower half of the curve order, and v is the recovery id.
func Sign(secret *Secret, hash []byte) (Signature, error) {
	if len(hash) != 32 {
		return Signature{}, ErrInvalidMessage
	}
	c := s256()
	d := new(big.Int).SetBytes(secret[:])
	if d.Sign() == 0 || d.Cmp(c.n) >= 0 {
		return Signature{}, ErrInvalidSecret
	}
	e := new(big.Int).SetBytes(hash)
	e.Mod(e, c.n)

	gen := newNonceGenerator(secret[:], hash, c.n)
	for {
		k := gen.next()
		if k.Sign() == 0 || k.Cmp(c.n) >= 0 {
			continue
		}
		rx, ry := c.scalarBaseMult(k)
		if rx.Sign() == 0 && ry.Sign() == 0 {
			continue
		}
		// Keep r below N so the recovery id stays in {0, 1}.
		if rx.Cmp(c.n) >= 0 {
			continue
		}
		r := new(big.Int).Set(rx)
		if r.Sign() == 0 {
			continue
		}
		kInv := new(big.Int).ModInverse(k, c.n)
		if kInv == nil {
			continue
		}

		// s = k^{-1} * (e + r*d) mod n
		s := new(big.Int).Mul(r, d)
		s.Add(s, e)
		s.Mul(s, kInv)
		s.Mod(s, c.n)
		if s.Sign() == 0 {
			continue
		}

		v := byte(ry.Bit(0))
		// Low-s normalization flips the recovery bit.
		if s.Cmp(c.halfN) > 0 {
			s.Sub(c.n, s)
			v ^= 1
		}

		var sig Signature
		r.FillBytes(sig[:32])
		s.FillBytes(sig[32:64])
		sig[64] = v
		return sig, nil
	}
}

// Recover returns the 64-byte uncompressed public key (X || Y, no 0x04
// prefix) that produced sig over hash. It fails if the signature is
// malformed or does not name a recoverable curve point.
func Recover(sig Signature, hash []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, ErrInvalidMessage
	}
	if !sig.IsValid() {
		return nil, ErrInvalidSignature
	}
	c := s256()
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	qx, qy, err := c.recoverPoint(hash, r, s, sig.V())
	if err != nil {
		return nil, err
	}
	pub := make([]byte, 64)
	qx.FillBytes(pub[:32])
	qy.FillBytes(pub[32:])
	return pub, nil
}

// VerifyPublic checks sig over hash against a 64-byte public key. It returns
// an error for malformed inputs (wrong lengths, point not on the curve) and
// false for a well-formed signature that simply does not match.
func VerifyPublic(pub []byte, sig Signature, hash []byte) (bool, error) {
	if len(hash) != 32 {
		return false, ErrInvalidMessage
	}
	if len(pub) != 64 {
		return false, ErrInvalidPublic
	}
	c := s256()
	qx := new(big.Int).SetBytes(pub[:32])
	qy := new(big.Int).SetBytes(pub[32:])
	if !c.isOnCurve(qx, qy) {
		return false, ErrInvalidPublic
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	return c.verifyPoint(hash, r, s, qx, qy), nil
}

// PublicFromSecret derives the 64-byte public key for a secret scalar.
func PublicFromSecret(secret *Secret) ([]byte, error) {
	c := s256()
	d := new(big.Int).SetBytes(secret[:])
	if d.Sign() == 0 || d.Cmp(c.n) >= 0 {
		return nil, ErrInvalidSecret
	}
	qx, qy := c.scalarBaseMult(d)
	pub := make([]byte, 64)
	qx.FillBytes(pub[:32])
	qy.FillBytes(pub[32:])
	return pub, nil
}

// nonceGenerator implements the RFC 6979 deterministic nonce derivation with
// HMAC-SHA256. qlen == hlen == 256, so bits2int is a plain interpretation of
// the 32-byte block.
type nonceGenerator struct {
	k, v []byte
}

func newNonceGenerator(x, h1 []byte, q *big.Int) *nonceGenerator {
	// bits2octets(h1) = bits2int(h1) mod q, padded to 32 bytes.
	z := new(big.Int).SetBytes(h1)
	z.Mod(z, q)
	zb := make([]byte, 32)
	z.FillBytes(zb)

	k := make([]byte, 32) // 0x00 repeated
	v := make([]byte, 32)
	for i := range v {
		v[i] = 0x01
	}
	k = hmacSHA256(k, v, []byte{0x00}, x, zb)
	v = hmacSHA256(k, v)
	k = hmacSHA256(k, v, []byte{0x01}, x, zb)
	v = hmacSHA256(k, v)
	return &nonceGenerator{k: k, v: v}
}

// next produces the next candidate nonce and advances the generator state so
// that a rejected candidate yields a fresh successor.
func (g *nonceGenerator) next() *big.Int {
	g.v = hmacSHA256(g.k, g.v)
	k := new(big.Int).SetBytes(g.v)
	g.k = hmacSHA256(g.k, g.v, []byte{0x00})
	g.v = hmacSHA256(g.k, g.v)
	return k
}

func hmacSHA256(key []byte, chunks ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, c := range chunks {
		mac.Write(c)
	}
	return mac.Sum(nil)
}
