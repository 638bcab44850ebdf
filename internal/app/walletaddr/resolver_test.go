package walletaddr_test

import (
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"learnsol-identity/internal/app/walletaddr"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func newAddress(t *testing.T) string {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return priv.PublicKey().String()
}

func TestIsWalletAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "system program", input: "11111111111111111111111111111111", want: true},
		{name: "token program", input: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", want: true},
		{name: "too short", input: strings.Repeat("a", 31), want: false},
		{name: "too long", input: strings.Repeat("a", 45), want: false},
		{name: "contains zero", input: "0" + strings.Repeat("a", 40), want: false},
		{name: "contains capital O", input: "O" + strings.Repeat("a", 40), want: false},
		{name: "contains capital I", input: "I" + strings.Repeat("a", 40), want: false},
		{name: "contains lowercase l", input: "l" + strings.Repeat("a", 40), want: false},
		{name: "opaque issuer id", input: "google-oauth2|104523456789012345678", want: false},
		{name: "ethereum address", input: "0x52908400098527886E0F7030069857D2E4169EE7", want: false},
		{name: "empty", input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, walletaddr.IsWalletAddress(tt.input))
		})
	}
}

func TestIsWalletAddressProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(32, 44).Draw(t, "length")
		runes := rapid.SliceOfN(rapid.SampledFrom([]rune(base58Alphabet)), n, n).Draw(t, "runes")
		if !walletaddr.IsWalletAddress(string(runes)) {
			t.Fatalf("rejected well-shaped %q", string(runes))
		}

		bad := rapid.SampledFrom([]rune("0OIl+/=_-")).Draw(t, "bad")
		pos := rapid.IntRange(0, n-1).Draw(t, "pos")
		runes[pos] = bad
		if walletaddr.IsWalletAddress(string(runes)) {
			t.Fatalf("accepted %q", string(runes))
		}
	})
}

func TestIsPublicKey(t *testing.T) {
	assert.True(t, walletaddr.IsPublicKey(newAddress(t)))
	// each leading '1' decodes to a zero byte
	assert.False(t, walletaddr.IsPublicKey(strings.Repeat("1", 33)))
	assert.False(t, walletaddr.IsPublicKey("not-an-address"))
}

func TestResolveFromWalletDescriptor(t *testing.T) {
	addr := newAddress(t)
	claims := map[string]any{
		"wallets": []any{
			map[string]any{"public_key": "04abcdef0123456789", "type": "web3auth_app_key", "curve": "secp256k1"},
			map[string]any{"address": addr, "type": "solana", "curve": "ed25519"},
		},
		"walletAddress": newAddress(t),
	}

	res, ok := walletaddr.Resolve("opaque-subject", claims)
	require.True(t, ok)
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, walletaddr.SourceWalletClaim, res.Source)
	assert.True(t, res.Authoritative())
}

func TestResolveFromAddressClaim(t *testing.T) {
	addr := newAddress(t)
	claims := map[string]any{
		"wallets":       []any{map[string]any{"public_key": "deadbeef"}},
		"walletAddress": addr,
	}

	res, ok := walletaddr.Resolve("opaque-subject", claims)
	require.True(t, ok)
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, walletaddr.SourceAddressClaim, res.Source)

	res, ok = walletaddr.Resolve("opaque-subject", map[string]any{"wallet_address": addr})
	require.True(t, ok)
	assert.Equal(t, addr, res.Address)
}

func TestResolveSubjectFailingShapeReturnsNothing(t *testing.T) {
	_, ok := walletaddr.Resolve("google-oauth2|104523456789012345678", map[string]any{
		"email":         "learner@example.com",
		"walletAddress": "not a wallet",
		"wallets":       "unexpected type",
	})
	assert.False(t, ok)
}

// A subject that looks like an address is returned, but only as a
// non-authoritative convenience value.
func TestResolveSubjectPassingShape(t *testing.T) {
	addr := newAddress(t)
	res, ok := walletaddr.Resolve(addr, map[string]any{})
	require.True(t, ok)
	assert.Equal(t, addr, res.Address)
	assert.Equal(t, walletaddr.SourceSubject, res.Source)
	assert.False(t, res.Authoritative())
}

func TestResolveNilClaims(t *testing.T) {
	_, ok := walletaddr.Resolve("", nil)
	assert.False(t, ok)
}
