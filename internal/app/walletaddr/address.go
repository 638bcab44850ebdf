// Package walletaddr holds the wallet-address shape check and the ordered
// heuristics that derive a wallet address from verified token claims.
package walletaddr

import (
	"crypto/ed25519"
	"regexp"

	"github.com/mr-tron/base58"
)

// 32-44 characters of the base58 alphabet (no 0, O, I, l).
var addressPattern = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// IsWalletAddress is the lexical shape check. It does not prove the string
// decodes to a 32-byte key; see IsPublicKey for that.
func IsWalletAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsPublicKey reports whether s passes the shape check and decodes to exactly
// one Ed25519 public key.
func IsPublicKey(s string) bool {
	if !IsWalletAddress(s) {
		return false
	}
	decoded, err := base58.Decode(s)
	return err == nil && len(decoded) == ed25519.PublicKeySize
}
