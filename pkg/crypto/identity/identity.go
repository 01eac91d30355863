// Package identity seals the client secret key for storage at rest. The
// passphrase is stretched with argon2id and the key encrypted with
// XChaCha20-Poly1305, so a copied database does not leak the identity.
package identity

import (
	"crypto/cipher"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"lukechampine.com/frand"

	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

const (
	version  = 1
	saltLen  = 16
	argonMem = 64 * 1024
	argonP   = 4
	// argonTime is deliberately small; the memory cost dominates.
	argonTime = 1
)

func deriveKey(passphrase string, salt []byte) (key []byte) {
	return argon2.IDKey(
		[]byte(passphrase), salt, argonTime, argonMem, argonP,
		chacha20poly1305.KeySize,
	)
}

// Seal encrypts a secret key under a passphrase. The returned blob is
// self-describing: version, salt, nonce, ciphertext.
func Seal(sec []byte, passphrase string) (blob []byte, err error) {
	salt := frand.Bytes(saltLen)
	nonce := frand.Bytes(chacha20poly1305.NonceSizeX)
	var aead cipher.AEAD
	if aead, err = chacha20poly1305.NewX(deriveKey(passphrase, salt)); chk.E(err) {
		return
	}
	blob = append(blob, version)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = aead.Seal(blob, nonce, sec, nil)
	return
}

// Open decrypts a sealed identity blob. A wrong passphrase fails
// authentication and returns an error.
func Open(blob []byte, passphrase string) (sec []byte, err error) {
	if len(blob) < 1+saltLen+chacha20poly1305.NonceSizeX {
		err = errorf.E("sealed identity blob too short: %d bytes", len(blob))
		return
	}
	if blob[0] != version {
		err = errorf.E("unknown sealed identity version %d", blob[0])
		return
	}
	salt := blob[1 : 1+saltLen]
	nonce := blob[1+saltLen : 1+saltLen+chacha20poly1305.NonceSizeX]
	ct := blob[1+saltLen+chacha20poly1305.NonceSizeX:]
	var aead cipher.AEAD
	if aead, err = chacha20poly1305.NewX(deriveKey(passphrase, salt)); chk.E(err) {
		return
	}
	if sec, err = aead.Open(nil, nonce, ct, nil); err != nil {
		err = errorf.D("could not unseal identity: %v", err)
		return
	}
	return
}
