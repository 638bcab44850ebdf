package walletaddr

import "strings"

type Source string

const (
	SourceWalletClaim  Source = "wallet_claim"
	SourceAddressClaim Source = "address_claim"
	SourceSubject      Source = "subject"
	SourceBinding      Source = "binding"
	SourceParameter    Source = "parameter"
)

// Authoritative reports whether an address from this source may back a
// balance-affecting operation. Signed wallet claims and completed bindings
// qualify; the subject fallback and caller parameters never do.
func (s Source) Authoritative() bool {
	switch s {
	case SourceWalletClaim, SourceAddressClaim, SourceBinding:
		return true
	default:
		return false
	}
}

type Resolution struct {
	Address string
	Source  Source
}

func (r Resolution) Authoritative() bool { return r.Source.Authoritative() }

const (
	walletsClaim       = "wallets"
	walletAddressClaim = "walletAddress"
	walletAddressSnake = "wallet_address"
)

// Descriptor fields checked in order on every entry of the wallets claim.
var descriptorFields = []string{"address", "public_key", "publicKey"}

// Resolve applies the heuristics in order and returns the first match:
// an address in the wallets claim, a walletAddress claim, then the subject
// when it happens to look like an address. ok is false when nothing matched.
func Resolve(subject string, claims map[string]any) (Resolution, bool) {
	if addr, ok := fromWalletDescriptors(claims[walletsClaim]); ok {
		return Resolution{Address: addr, Source: SourceWalletClaim}, true
	}

	for _, key := range []string{walletAddressClaim, walletAddressSnake} {
		if addr, ok := claims[key].(string); ok && IsWalletAddress(strings.TrimSpace(addr)) {
			return Resolution{Address: strings.TrimSpace(addr), Source: SourceAddressClaim}, true
		}
	}

	// TODO: drop once every login flow carries a wallets claim; the subject is
	// normally an opaque issuer id.
	if IsWalletAddress(subject) {
		return Resolution{Address: subject, Source: SourceSubject}, true
	}

	return Resolution{}, false
}

func fromWalletDescriptors(raw any) (string, bool) {
	list, ok := raw.([]any)
	if !ok {
		return "", false
	}
	for _, entry := range list {
		descriptor, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		for _, field := range descriptorFields {
			if addr, ok := descriptor[field].(string); ok && IsWalletAddress(addr) {
				return addr, true
			}
		}
	}
	return "", false
}
