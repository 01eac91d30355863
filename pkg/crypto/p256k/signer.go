// Package p256k implements the signer.I interface with BIP-340 schnorr
// signatures on the secp256k1 curve.
package p256k

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"github.com/crisdut/gossip/pkg/interfaces/signer"
	"github.com/crisdut/gossip/pkg/utils/chk"
	"github.com/crisdut/gossip/pkg/utils/errorf"
)

// SecKeyLen is the length of a raw secret key.
const SecKeyLen = 32

// PubKeyLen is the length of an x-only public key.
const PubKeyLen = 32

// Signer implements signer.I using the btcec schnorr implementation.
type Signer struct {
	sec      *btcec.PrivateKey
	pub      *btcec.PublicKey
	skb, pkb []byte
}

var _ signer.I = &Signer{}

// Generate creates a new keypair.
func (s *Signer) Generate() (err error) {
	if s.sec, err = btcec.NewPrivateKey(); chk.E(err) {
		return
	}
	s.skb = s.sec.Serialize()
	s.pub = s.sec.PubKey()
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// InitSec initialises the signer from raw secret key bytes.
func (s *Signer) InitSec(sec []byte) (err error) {
	if len(sec) != SecKeyLen {
		err = errorf.E("sec key must be %d bytes, got %d", SecKeyLen, len(sec))
		return
	}
	s.skb = sec
	s.sec, s.pub = btcec.PrivKeyFromBytes(sec)
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// InitPub initialises a verify-only signer from an x-only public key.
func (s *Signer) InitPub(pub []byte) (err error) {
	if s.pub, err = schnorr.ParsePubKey(pub); chk.E(err) {
		return
	}
	s.pkb = pub
	return
}

// Sec returns the raw secret key bytes.
func (s *Signer) Sec() (b []byte) {
	if s == nil {
		return
	}
	return s.skb
}

// Pub returns the 32 byte x-only public key.
func (s *Signer) Pub() (b []byte) {
	if s == nil {
		return
	}
	return s.pkb
}

// Sign signs a message hash with the secret key.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	if s.sec == nil {
		err = errorf.E("signer has no secret key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.Sign(s.sec, msg); chk.E(err) {
		return
	}
	sig = ss.Serialize()
	return
}

// Verify checks a signature over a message hash against the public key.
func (s *Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pub == nil {
		err = errorf.E("signer has no public key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.ParseSignature(sig); chk.E(err) {
		return
	}
	valid = ss.Verify(msg, s.pub)
	return
}

// Zero wipes the secret key material.
func (s *Signer) Zero() {
	if s.sec != nil {
		s.sec.Zero()
		s.sec = nil
	}
	for i := range s.skb {
		s.skb[i] = 0
	}
	s.skb = nil
}
