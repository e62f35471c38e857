// Package types defines the canonical transaction payload, its signing and
// verification state machine, and the storage descriptor records that share
// the same wire encoding discipline.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cfx2030/cfx2030/crypto"
)

const (
	HashLength    = 32
	AddressLength = 20
	PublicLength  = 64
)

// Hash represents the 32-byte Keccak-256 hash of data.
type Hash [HashLength]byte

// Address represents the 20-byte address of an account.
type Address [AddressLength]byte

// Public represents a 64-byte uncompressed secp256k1 public key (X || Y,
// without the 0x04 marker byte).
type Public [PublicLength]byte

var (
	// UnsignedSender is the reserved sender address attributed to unsigned
	// transactions. No real account can have it.
	UnsignedSender = Address{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}

	// KeccakEmpty is the Keccak-256 hash of the empty string.
	KeccakEmpty = HexToHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

	// MerkleNullNode is the well-known hash denoting an empty merkle subtree.
	MerkleNullNode = KeccakEmpty
)

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string (with optional 0x prefix) to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(mustDecodeHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the 0x-prefixed hex representation of the hash.
func (h Hash) Hex() string { return hexutil.Encode(h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string (with optional 0x prefix) to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(mustDecodeHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the 0x-prefixed hex representation of the address.
func (a Address) Hex() string { return hexutil.Encode(a[:]) }

// SetBytes sets the address from a byte slice.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// BytesToPublic converts bytes to Public, left-padding if shorter than 64 bytes.
func BytesToPublic(b []byte) Public {
	var p Public
	if len(b) > PublicLength {
		b = b[len(b)-PublicLength:]
	}
	copy(p[PublicLength-len(b):], b)
	return p
}

// Bytes returns the byte representation of the public key.
func (p Public) Bytes() []byte { return p[:] }

// Hex returns the 0x-prefixed hex representation of the public key.
func (p Public) Hex() string { return hexutil.Encode(p[:]) }

// IsZero returns whether the public key is all zeros.
func (p Public) IsZero() bool {
	return p == Public{}
}

// String implements fmt.Stringer.
func (p Public) String() string { return p.Hex() }

// PublicToAddress derives the account address of a public key:
// the low 20 bytes of Keccak-256 over the 64-byte key.
func PublicToAddress(p Public) Address {
	return BytesToAddress(crypto.Keccak256(p[:])[12:])
}

// keccakHash hashes data to a Hash value.
func keccakHash(data []byte) Hash {
	return BytesToHash(crypto.Keccak256(data))
}

// mustDecodeHex decodes a hex string, tolerating a missing 0x prefix and odd
// length; used only for literal constants and test fixtures.
func mustDecodeHex(s string) []byte {
	if len(s) < 2 || (s[0] != '0' || (s[1] != 'x' && s[1] != 'X')) {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		panic(fmt.Sprintf("types: bad hex literal %q: %v", s, err))
	}
	return b
}
