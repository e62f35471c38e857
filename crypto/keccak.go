// Package crypto provides the digest and elliptic-curve primitives backing
// transaction identity: Keccak-256 hashing and secp256k1 ECDSA with public
// key recovery. It operates on raw byte slices and has no dependency on the
// consensus type definitions layered on top of it.
package crypto

import "golang.org/x/crypto/sha3"

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}
