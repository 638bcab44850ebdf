package binding_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"learnsol-identity/internal/app/binding"
	"learnsol-identity/internal/app/database"
)

// tb is the part of testing.TB that *rapid.T also provides.
type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

type wallet struct {
	priv    solana.PrivateKey
	address string
}

func newWallet(t tb) wallet {
	t.Helper()
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return wallet{priv: priv, address: priv.PublicKey().String()}
}

func (w wallet) sign(t tb, message string) string {
	t.Helper()
	sig, err := w.priv.Sign([]byte(message))
	require.NoError(t, err)
	return sig.String()
}

// forEachRepository runs fn against the gorm repository on a fresh database
// and against the in-memory repository.
func forEachRepository(t *testing.T, fn func(t *testing.T, repo binding.Repository)) {
	t.Run("gorm", func(t *testing.T) {
		fn(t, binding.NewRepository(database.SetupTestDB(t)))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, binding.NewInMemoryRepository())
	})
}
