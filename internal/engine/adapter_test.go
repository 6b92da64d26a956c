package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// fakeEngine is a scriptable in-memory Engine.
type fakeEngine struct {
	mu           sync.Mutex
	balance      Balance
	txs          []Transaction
	refreshCalls atomic.Int32
	refreshGate  chan struct{}
	refreshErr   error
	closed       bool
	closedSave   bool
}

func (f *fakeEngine) Refresh(context.Context) (Balance, error) {
	f.refreshCalls.Add(1)
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	if f.refreshErr != nil {
		return Balance{}, f.refreshErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeEngine) Balance(context.Context) (Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, nil
}

func (f *fakeEngine) Transfer(_ context.Context, opts SendOptions) (SendResult, error) {
	return SendResult{TxHash: "deadbeef", Fee: 42, AmountAtomic: opts.AmountAtomic}, nil
}

func (f *fakeEngine) SweepAll(context.Context, string) ([]SendResult, error) {
	return []SendResult{{TxHash: "sweep1", Fee: 10, AmountAtomic: 1000}}, nil
}

func (f *fakeEngine) Transactions(context.Context) ([]Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Transaction(nil), f.txs...), nil
}

func (f *fakeEngine) Height(context.Context) (uint64, uint64, error) {
	return 100, 200, nil
}

func (f *fakeEngine) Close(_ context.Context, save bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closedSave = save
	return nil
}

// fakeOpener hands out a fixed engine and counts opens.
type fakeOpener struct {
	engine *fakeEngine
	opens  atomic.Int32
	err    error
}

func (f *fakeOpener) Open(context.Context, OpenRequest) (Engine, error) {
	f.opens.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.engine, nil
}

func testRequest() OpenRequest {
	return OpenRequest{Mnemonic: testMnemonic, Network: wallet.NetworkMainnet, RestoreHeight: 100}
}

func validAddress(t *testing.T) string {
	t.Helper()
	seed, err := wallet.MnemonicToSeed(testMnemonic)
	require.NoError(t, err)
	addr, err := wallet.DeriveAddress(seed, wallet.NetworkMainnet)
	require.NoError(t, err)
	return addr
}

func TestEnsureInstanceUnbound(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeOpener{engine: &fakeEngine{}}, config.NullLogger())
	_, err := a.EnsureInstance(context.Background())
	require.ErrorIs(t, err, lanternerr.ErrWalletNotReady)
}

func TestEnsureInstanceCaches(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{engine: &fakeEngine{}}
	a := NewAdapter(opener, config.NullLogger())
	a.Bind(testRequest())

	first, err := a.EnsureInstance(context.Background())
	require.NoError(t, err)
	second, err := a.EnsureInstance(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), opener.opens.Load())
}

func TestDisposeThenReopen(t *testing.T) {
	t.Parallel()

	opener := &fakeOpener{engine: &fakeEngine{}}
	a := NewAdapter(opener, config.NullLogger())
	a.Bind(testRequest())

	_, err := a.EnsureInstance(context.Background())
	require.NoError(t, err)
	require.NoError(t, a.Dispose(context.Background(), true))
	assert.True(t, opener.engine.closed)
	assert.True(t, opener.engine.closedSave)

	// Binding survives disposal; the next call reconnects.
	_, err = a.EnsureInstance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), opener.opens.Load())
}

func TestDisposeWithoutInstance(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeOpener{engine: &fakeEngine{}}, config.NullLogger())
	require.NoError(t, a.Dispose(context.Background(), false))
}

func TestSyncSingleFlight(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{
		balance:     Balance{Total: 500, Unlocked: 400},
		refreshGate: make(chan struct{}),
	}
	a := NewAdapter(&fakeOpener{engine: eng}, config.NullLogger())
	a.Bind(testRequest())

	const callers = 8
	results := make(chan Balance, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := a.Sync(context.Background())
			assert.NoError(t, err)
			results <- b
		}()
	}

	// Let the goroutines pile up on the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(eng.refreshGate)
	wg.Wait()
	close(results)

	for b := range results {
		assert.Equal(t, Balance{Total: 500, Unlocked: 400}, b)
	}
	assert.Equal(t, int32(1), eng.refreshCalls.Load())
}

func TestSyncPropagatesFailure(t *testing.T) {
	t.Parallel()

	eng := &fakeEngine{refreshErr: assert.AnError}
	a := NewAdapter(&fakeOpener{engine: eng}, config.NullLogger())
	a.Bind(testRequest())

	var done bool
	a.SetProgress(func(p SyncProgress) {
		if p.Done {
			done = true
		}
	})

	_, err := a.Sync(context.Background())
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, done, "progress state must be cleared on failure")
}

func TestSendValidation(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeOpener{engine: &fakeEngine{}}, config.NullLogger())
	a.Bind(testRequest())
	ctx := context.Background()

	_, err := a.Send(ctx, SendOptions{Address: "not-an-address", AmountAtomic: 100})
	require.ErrorIs(t, err, lanternerr.ErrInvalidAddress)

	_, err = a.Send(ctx, SendOptions{Address: validAddress(t), AmountAtomic: 0})
	require.ErrorIs(t, err, lanternerr.ErrInvalidAmount)
}

func TestSend(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeOpener{engine: &fakeEngine{}}, config.NullLogger())
	a.Bind(testRequest())

	result, err := a.Send(context.Background(), SendOptions{
		Address:      validAddress(t),
		AmountAtomic: 1_000_000,
		Priority:     PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", result.TxHash)
	assert.Equal(t, uint64(1_000_000), result.AmountAtomic)
}

func TestSweepAll(t *testing.T) {
	t.Parallel()

	a := NewAdapter(&fakeOpener{engine: &fakeEngine{}}, config.NullLogger())
	a.Bind(testRequest())

	results, err := a.SweepAll(context.Background(), validAddress(t))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "sweep1", results[0].TxHash)

	_, err = a.SweepAll(context.Background(), "bogus")
	require.ErrorIs(t, err, lanternerr.ErrInvalidAddress)
}

func TestTransactionHistorySorted(t *testing.T) {
	t.Parallel()

	base := time.Unix(1_700_000_000, 0)
	eng := &fakeEngine{txs: []Transaction{
		{TxHash: "old", Timestamp: base.Add(-time.Hour)},
		{TxHash: "unconfirmed"},
		{TxHash: "new", Timestamp: base},
		{TxHash: "block-time-only", BlockTimestamp: base.Add(-30 * time.Minute)},
	}}
	a := NewAdapter(&fakeOpener{engine: eng}, config.NullLogger())
	a.Bind(testRequest())

	txs, err := a.TransactionHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 4)

	var order []string
	for _, tx := range txs {
		order = append(order, tx.TxHash)
	}
	// Newest first; transactions with no timestamp at all sort last.
	assert.Equal(t, []string{"new", "block-time-only", "old", "unconfirmed"}, order)
}

func TestMapPriority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, mapPriority(PriorityLow))
	assert.Equal(t, 2, mapPriority(PriorityNormal))
	assert.Equal(t, 4, mapPriority(PriorityHigh))
	assert.Equal(t, 2, mapPriority(""))
}
