// Package signer defines an interface for BIP-340 signing and verification
// so the key handling implementation stays swappable.
package signer

// I is the interface for signature operations on 32 byte hashes.
type I interface {
	// Generate creates a fresh keypair.
	Generate() (err error)
	// InitSec initialises the signer from raw secret key bytes.
	InitSec(sec []byte) (err error)
	// InitPub initialises a verify-only signer from a 32 byte x-only public
	// key.
	InitPub(pub []byte) (err error)
	// Sec returns the raw secret key bytes, nil for verify-only signers.
	Sec() (b []byte)
	// Pub returns the 32 byte x-only public key.
	Pub() (b []byte)
	// Sign signs a message hash.
	Sign(msg []byte) (sig []byte, err error)
	// Verify checks a signature over a message hash.
	Verify(msg, sig []byte) (valid bool, err error)
	// Zero wipes the secret key material.
	Zero()
}
