package pin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pingate-bank/web/internal/model"
	"pingate-bank/web/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *memory.Store, model.Identity) {
	t.Helper()
	st := memory.NewStore()
	id, err := st.CreateIdentity(context.Background(), model.Identity{Email: "pat@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	svc := NewService(st, NewArgon2idHasher(testParams()), NewAttemptLimiter(DefaultLimiterConfig()), nil)
	return svc, st, id
}

func TestService_SetThenVerify(t *testing.T) {
	svc, st, id := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, id, "123456"))

	p, err := st.GetProfile(ctx, id.ID)
	require.NoError(t, err)
	assert.Equal(t, "pat", p.FirstName, "profile created lazily with a default name")
	assert.NotContains(t, p.PinHash, "123456")

	assert.NoError(t, svc.Verify(ctx, id, "123456"))
	assert.ErrorIs(t, svc.Verify(ctx, id, "000000"), ErrIncorrectPin)
	assert.ErrorIs(t, svc.Verify(ctx, id, "12345"), ErrInvalidInput)
}

func TestService_SetOverwrites(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, id, "111111"))
	require.NoError(t, svc.Set(ctx, id, "222222"))

	assert.ErrorIs(t, svc.Verify(ctx, id, "111111"), ErrIncorrectPin)
	assert.NoError(t, svc.Verify(ctx, id, "222222"))
}

func TestService_SetRejectsMalformed(t *testing.T) {
	svc, st, id := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Set(ctx, id, "12ab56"), ErrInvalidInput)
	_, err := st.GetProfile(ctx, id.ID)
	assert.Error(t, err, "nothing is written for invalid input")
}

func TestService_PinNotSet(t *testing.T) {
	svc, st, id := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Verify(ctx, id, "123456"), ErrPinNotSet, "no profile")

	_, err := st.CreateProfile(ctx, model.Profile{UserID: id.ID})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Verify(ctx, id, "123456"), ErrPinNotSet, "profile without digest")
}

func TestService_LockoutAfterFailures(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, id, "123456"))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, svc.Verify(ctx, id, "000000"), ErrIncorrectPin)
	}

	err := svc.Verify(ctx, id, "123456")
	assert.ErrorIs(t, err, ErrLocked)
	var locked *LockedError
	require.True(t, errors.As(err, &locked))
	assert.Greater(t, locked.RetryAfter, 50*time.Second)

	// setting a new PIN clears the counter
	require.NoError(t, svc.Set(ctx, id, "654321"))
	assert.NoError(t, svc.Verify(ctx, id, "654321"))
}

type slowHasher struct {
	Hasher
	delay time.Duration
}

func (h slowHasher) Verify(pin, encoded string) (bool, bool, error) {
	time.Sleep(h.delay)
	return h.Hasher.Verify(pin, encoded)
}

func TestService_ConcurrentLockout(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	id, err := st.CreateIdentity(ctx, model.Identity{Email: "pat@example.com", PasswordHash: "x"})
	require.NoError(t, err)
	hasher := slowHasher{Hasher: NewArgon2idHasher(testParams()), delay: 5 * time.Millisecond}
	svc := NewService(st, hasher, NewAttemptLimiter(DefaultLimiterConfig()), nil)
	require.NoError(t, svc.Set(ctx, id, "123456"))

	var (
		wg              sync.WaitGroup
		mu              sync.Mutex
		wrong, lockouts int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Verify(ctx, id, "000000")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrIncorrectPin):
				wrong++
			case errors.Is(err, ErrLocked):
				lockouts++
			default:
				t.Errorf("unexpected result: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, wrong, "only MaxFailures guesses are evaluated")
	assert.Equal(t, 35, lockouts)
	assert.ErrorIs(t, svc.Verify(ctx, id, "123456"), ErrLocked)
}

func TestService_UpgradesLegacyDigest(t *testing.T) {
	svc, st, id := newTestService(t)
	ctx := context.Background()

	legacy, _ := (&LegacySHA256{Salt: LegacySalt}).Hash("123456")
	_, err := st.UpsertPinHash(ctx, model.Profile{UserID: id.ID}, legacy)
	require.NoError(t, err)

	require.NoError(t, svc.Verify(ctx, id, "123456"))

	p, err := st.GetProfile(ctx, id.ID)
	require.NoError(t, err)
	assert.NotEqual(t, legacy, p.PinHash)
	assert.Contains(t, p.PinHash, "$argon2id$")

	assert.NoError(t, svc.Verify(ctx, id, "123456"))
}

type failingStore struct{ err error }

func (f failingStore) GetProfile(context.Context, string) (*model.Profile, error) { return nil, f.err }
func (f failingStore) UpsertPinHash(context.Context, model.Profile, string) (model.Profile, error) {
	return model.Profile{}, f.err
}

func TestService_StoreFailurePropagates(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(failingStore{err: boom}, NewArgon2idHasher(testParams()), nil, nil)
	id := model.Identity{ID: "u1", Email: "x@example.com"}

	err := svc.Verify(context.Background(), id, "123456")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrPinNotSet))

	assert.ErrorIs(t, svc.Set(context.Background(), id, "123456"), boom)
}
