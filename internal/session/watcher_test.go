package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"newsdesk/internal/domain"
	"newsdesk/internal/logging"
)

type watcherFixture struct {
	client  *fakeAuthClient
	cache   *MemoryCache
	clock   *clockwork.FakeClock
	watcher *Watcher
}

func newWatcherFixture(t *testing.T) *watcherFixture {
	t.Helper()
	f := &watcherFixture{
		client: &fakeAuthClient{},
		cache:  NewMemoryCache("userData"),
		clock:  clockwork.NewFakeClock(),
	}
	reconciler := NewReconciler(f.client, f.cache, logging.Discard())
	f.watcher = NewWatcher(reconciler, f.cache, 5*time.Second, f.clock, logging.Discard())
	return f
}

func (f *watcherFixture) cached(t *testing.T) string {
	t.Helper()
	data, err := f.cache.Get(context.Background())
	require.NoError(t, err)
	return string(data)
}

func TestWatcher_PollRestoresEmptyCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)

	f.watcher.Initialize(context.Background())
	defer f.watcher.Stop()

	f.clock.BlockUntil(1)
	assert.Equal(t, 0, f.client.calls(), "nothing happens before the first tick")

	f.clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool { return f.cached(t) != "" }, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, alice, f.cached(t))
}

func TestWatcher_PollSkipsWhenCachePopulated(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)
	require.NoError(t, f.cache.Set(context.Background(), domain.UserData(alice)))

	f.watcher.Initialize(context.Background())

	f.clock.BlockUntil(1)
	for i := 0; i < 3; i++ {
		f.clock.Advance(5 * time.Second)
	}

	f.watcher.Stop()
	assert.Equal(t, 0, f.client.calls())
}

func TestWatcher_ExternalClearRestoresSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)
	require.NoError(t, f.cache.Set(context.Background(), domain.UserData(alice)))

	f.watcher.Initialize(context.Background())
	defer f.watcher.Stop()

	f.cache.SimulateExternal(nil)

	require.Eventually(t, func() bool { return f.client.calls() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return f.cached(t) != "" }, time.Second, 5*time.Millisecond)
	assert.JSONEq(t, alice, f.cached(t))
}

func TestWatcher_ExternalClearAfterServerLogoutStaysEmpty(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession("")
	require.NoError(t, f.cache.Set(context.Background(), domain.UserData(alice)))

	f.watcher.Initialize(context.Background())
	defer f.watcher.Stop()

	f.cache.SimulateExternal(nil)
	require.Eventually(t, func() bool { return f.client.calls() == 1 }, time.Second, 5*time.Millisecond)

	f.clock.BlockUntil(1)
	f.clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return f.client.calls() == 2 }, time.Second, 5*time.Millisecond)

	assert.Empty(t, f.cached(t))
}

func TestWatcher_IgnoresExternalWrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)

	f.watcher.Initialize(context.Background())

	other := `{"id":"u2"}`
	f.cache.SimulateExternal(domain.UserData(other))

	require.Eventually(t, func() bool { return f.cached(t) == other }, time.Second, 5*time.Millisecond)

	f.watcher.Stop()
	assert.Equal(t, 0, f.client.calls())
}

func TestWatcher_InitializeIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)

	f.watcher.Initialize(context.Background())
	f.watcher.Initialize(context.Background())
	f.watcher.Initialize(context.Background())

	f.clock.BlockUntil(1)
	f.clock.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return f.cached(t) != "" }, time.Second, 5*time.Millisecond)

	f.watcher.Stop()
	f.watcher.Stop()
	assert.Equal(t, 1, f.client.calls())
}

func TestWatcher_RunReturnsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- f.watcher.Run(ctx) }()

	f.clock.BlockUntil(1)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_ClosedChangeFeedKeepsPolling(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newWatcherFixture(t)
	f.client.setSession(alice)
	require.NoError(t, f.cache.Close())

	f.watcher.Initialize(context.Background())
	defer f.watcher.Stop()

	f.clock.BlockUntil(1)
	f.clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool { return f.cached(t) != "" }, time.Second, 5*time.Millisecond)
}
