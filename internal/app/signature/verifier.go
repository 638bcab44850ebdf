// Package signature verifies detached Ed25519 signatures over raw message
// bytes, with the signature and the public key given as base58 strings.
package signature

import (
	"github.com/gagliardetto/solana-go"
)

type Verifier interface {
	Verify(message []byte, signature, publicKey string) bool
}

type Ed25519Verifier struct{}

func (Ed25519Verifier) Verify(message []byte, signature, publicKey string) bool {
	return Verify(message, signature, publicKey)
}

// Verify reports whether signature is a valid Ed25519 signature of message by
// publicKey. Malformed base58, a key that is not 32 bytes or a signature that
// is not 64 bytes all yield false.
func Verify(message []byte, signature, publicKey string) bool {
	pub, err := solana.PublicKeyFromBase58(publicKey)
	if err != nil {
		return false
	}
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return false
	}
	return sig.Verify(pub, message)
}
