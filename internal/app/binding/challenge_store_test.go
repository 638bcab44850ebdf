package binding_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"learnsol-identity/internal/app/binding"
	"learnsol-identity/internal/app/model"
)

const (
	subjectA = "google-oauth2|104523456789012345678"
	subjectB = "discord|88812309"
)

func TestGenerateNonce(t *testing.T) {
	format := regexp.MustCompile(`^learnsol-[0-9a-f]{32}$`)
	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		nonce, err := binding.GenerateNonce()
		require.NoError(t, err)
		assert.Regexp(t, format, nonce)
		_, dup := seen[nonce]
		assert.False(t, dup, "duplicate nonce %s", nonce)
		seen[nonce] = struct{}{}
	}
}

func TestConsumeWithoutIssue(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)

		_, err := store.Consume(context.Background(), w.address, subjectA, w.sign(t, "learnsol-anything"))
		assert.ErrorIs(t, err, binding.ErrNoPendingNonce)
	})
}

func TestIssueCreatesRowAndOverwrites(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)

		first, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		second, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)

		row, err := repo.FindByWallet(ctx, w.address)
		require.NoError(t, err)
		require.NotNil(t, row)
		require.NotNil(t, row.PendingNonce)
		assert.Equal(t, second, *row.PendingNonce)
		assert.Nil(t, row.BoundAt)

		_, err = store.Consume(ctx, w.address, subjectA, w.sign(t, first))
		assert.ErrorIs(t, err, binding.ErrInvalidSignature)

		_, err = store.Consume(ctx, w.address, subjectA, w.sign(t, second))
		assert.NoError(t, err)
	})
}

func TestConsumeClearsNonce(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		boundAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		store := binding.NewChallengeStore(repo, binding.WithClock(func() time.Time { return boundAt }))
		w := newWallet(t)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		sig := w.sign(t, nonce)

		bound, err := store.Consume(ctx, w.address, subjectA, sig)
		require.NoError(t, err)
		require.NotNil(t, bound.Subject)
		assert.Equal(t, subjectA, *bound.Subject)

		row, err := repo.FindByWallet(ctx, w.address)
		require.NoError(t, err)
		assert.Nil(t, row.PendingNonce)
		assert.Nil(t, row.RequestedBy)
		require.NotNil(t, row.BoundAt)
		assert.True(t, row.BoundAt.Equal(boundAt))

		_, err = store.Consume(ctx, w.address, subjectA, sig)
		assert.ErrorIs(t, err, binding.ErrNoPendingNonce)
	})
}

func TestInvalidSignatureLeavesStateUnchanged(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)
		intruder := newWallet(t)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		before, err := repo.FindByWallet(ctx, w.address)
		require.NoError(t, err)

		for _, sig := range []string{
			w.sign(t, "learnsol-00000000000000000000000000000000"),
			intruder.sign(t, nonce),
			"not-base58-0OIl",
		} {
			_, err = store.Consume(ctx, w.address, subjectA, sig)
			assert.ErrorIs(t, err, binding.ErrInvalidSignature)
		}

		after, err := repo.FindByWallet(ctx, w.address)
		require.NoError(t, err)
		assert.Equal(t, before.PendingNonce, after.PendingNonce)
		assert.Nil(t, after.BoundAt)
		assert.Nil(t, after.Subject)
	})
}

func TestNonceIsTiedToRequestingSubject(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		sig := w.sign(t, nonce)

		_, err = store.Consume(ctx, w.address, subjectB, sig)
		assert.ErrorIs(t, err, binding.ErrNoPendingNonce)

		_, err = store.Consume(ctx, w.address, subjectA, sig)
		assert.NoError(t, err)
	})
}

func TestRebindReleasesPreviousWallet(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		first := newWallet(t)
		second := newWallet(t)

		for _, w := range []wallet{first, second} {
			nonce, err := store.Issue(ctx, w.address, subjectA)
			require.NoError(t, err)
			_, err = store.Consume(ctx, w.address, subjectA, w.sign(t, nonce))
			require.NoError(t, err)
		}

		current, err := repo.FindBySubject(ctx, subjectA)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, second.address, current.WalletAddress)

		old, err := repo.FindByWallet(ctx, first.address)
		require.NoError(t, err)
		assert.Nil(t, old.Subject)
		assert.NotNil(t, old.BoundAt, "history is kept")
	})
}

func TestReissueAfterBindKeepsBinding(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		_, err = store.Consume(ctx, w.address, subjectA, w.sign(t, nonce))
		require.NoError(t, err)

		_, err = store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)

		row, err := repo.FindBySubject(ctx, subjectA)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.NotNil(t, row.PendingNonce)
		assert.NotNil(t, row.BoundAt)
	})
}

func TestConcurrentConsumeSucceedsOnce(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		store := binding.NewChallengeStore(repo)
		w := newWallet(t)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		sig := w.sign(t, nonce)

		const workers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				_, err := store.Consume(ctx, w.address, subjectA, sig)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}()
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, binding.ErrNoPendingNonce)
		}
		assert.Equal(t, 1, succeeded)
	})
}

type countingVerifier struct {
	mu    sync.Mutex
	calls int
}

func (v *countingVerifier) Verify([]byte, string, string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return true
}

func TestConsumeSkipsVerificationWithoutNonce(t *testing.T) {
	verifier := &countingVerifier{}
	repo := binding.NewInMemoryRepository()
	store := binding.NewChallengeStore(repo, binding.WithSignatureVerifier(verifier))

	_, err := store.Consume(context.Background(), "11111111111111111111111111111111", subjectA, "sig")
	assert.ErrorIs(t, err, binding.ErrNoPendingNonce)
	assert.Zero(t, verifier.calls)
}

// A stale read must still lose: the row changes between read and update.
type racingRepository struct {
	binding.Repository
	onConsume func()
}

func (r *racingRepository) ConsumeNonce(ctx context.Context, wallet, subject, nonce string, at time.Time) (bool, error) {
	r.onConsume()
	return r.Repository.ConsumeNonce(ctx, wallet, subject, nonce, at)
}

func TestConsumeLosesToReissueBetweenReadAndUpdate(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo binding.Repository) {
		ctx := context.Background()
		w := newWallet(t)
		racing := &racingRepository{Repository: repo}
		store := binding.NewChallengeStore(racing)

		nonce, err := store.Issue(ctx, w.address, subjectA)
		require.NoError(t, err)
		racing.onConsume = func() {
			require.NoError(t, repo.SetPendingNonce(ctx, w.address, subjectA, "learnsol-ffffffffffffffffffffffffffffffff"))
		}

		_, err = store.Consume(ctx, w.address, subjectA, w.sign(t, nonce))
		assert.ErrorIs(t, err, binding.ErrNoPendingNonce)

		var row *model.WalletBinding
		row, err = repo.FindByWallet(ctx, w.address)
		require.NoError(t, err)
		assert.Nil(t, row.BoundAt)
	})
}
