package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
	"lucky-draw-backend/internal/features/ledger/repository/memory"
)

var taipei = time.FixedZone("UTC+8", 8*60*60)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// flakyRepo wraps a working repository and fails selected operations.
type flakyRepo struct {
	repository.EntryRepository
	failInsert bool
	failRead   bool
	unsorted   bool
}

var errUnavailable = errors.New("store unavailable")

func (r *flakyRepo) Insert(ctx context.Context, e models.Entry) error {
	if r.failInsert {
		return errUnavailable
	}
	return r.EntryRepository.Insert(ctx, e)
}

func (r *flakyRepo) InsertDaily(ctx context.Context, e models.Entry, day string) error {
	if r.failInsert {
		return errUnavailable
	}
	return r.EntryRepository.InsertDaily(ctx, e, day)
}

func (r *flakyRepo) ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error) {
	if r.failRead {
		return nil, errUnavailable
	}
	entries, err := r.EntryRepository.ListRange(ctx, from, to, limit)
	if r.unsorted {
		slices.Reverse(entries)
	}
	return entries, err
}

func (r *flakyRepo) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	if r.failRead {
		return nil, errUnavailable
	}
	return r.EntryRepository.ListRecent(ctx, limit)
}

func newLedger(t *testing.T, clock Clock, opts ...func(*Options)) (LedgerService, *flakyRepo) {
	t.Helper()
	repo := &flakyRepo{EntryRepository: memory.NewMemoryRepository()}
	o := Options{Location: taipei, TodayLimit: 100, AllLimit: 100, Clock: clock, Tiers: []string{"T1", "T2", "T3"}}
	for _, fn := range opts {
		fn(&o)
	}
	return NewLedgerService(repo, o), repo
}

func collect(seq iter.Seq[models.Entry]) []models.Entry {
	var out []models.Entry
	for e := range seq {
		out = append(out, e)
	}
	return out
}

func input(handle string, payout int) models.EntryInput {
	return models.EntryInput{Handle: handle, Tier: "T1", Payout: payout}
}

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)

	entry, err := ledger.Append(context.Background(), models.EntryInput{
		Handle:     "  alice ",
		Tier:       "T3",
		ProofImage: "data:image/png;base64,AAAA",
		Payout:     1888,
	})
	require.NoError(t, err)

	id, err := uuid.Parse(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.True(t, entry.Timestamp.Equal(clock.Now()))
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
	assert.Equal(t, "alice", entry.Handle)
	assert.Equal(t, 1888, entry.Payout)
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	ledger, _ := newLedger(t, &fakeClock{now: time.Now()})

	_, err := ledger.Append(context.Background(), models.EntryInput{Handle: "a", Payout: 10})
	assert.ErrorIs(t, err, models.ErrInvalidEntry)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestAppendRejectsUnknownTier(t *testing.T) {
	ledger, _ := newLedger(t, &fakeClock{now: time.Now()})
	ctx := context.Background()

	_, err := ledger.Append(ctx, models.EntryInput{Handle: "alice", Tier: "T9", Payout: 58})
	assert.ErrorIs(t, err, models.ErrInvalidEntry)
	_, err = ledger.AppendDaily(ctx, models.EntryInput{Handle: "alice", Tier: "T9", Payout: 58})
	assert.ErrorIs(t, err, models.ErrInvalidEntry)
	assert.Empty(t, collect(ledger.ListAll(ctx, 10)))
}

func TestAppendDailyAllowsOnePerLocalDay(t *testing.T) {
	// days follow the ledger location, not UTC
	clock := &fakeClock{now: time.Date(2025, 3, 14, 0, 10, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	_, err := ledger.AppendDaily(ctx, input("alice", 58))
	require.NoError(t, err)

	clock.Set(time.Date(2025, 3, 14, 23, 30, 0, 0, taipei))
	_, err = ledger.AppendDaily(ctx, input(" alice ", 168))
	assert.ErrorIs(t, err, ErrDailyLimit)
	assert.NotErrorIs(t, err, ErrStorage)

	_, err = ledger.AppendDaily(ctx, input("bob", 58))
	require.NoError(t, err)

	clock.Set(time.Date(2025, 3, 15, 0, 5, 0, 0, taipei))
	_, err = ledger.AppendDaily(ctx, input("alice", 388))
	require.NoError(t, err)

	assert.Len(t, collect(ledger.ListAll(ctx, 10)), 3)
}

func TestAppendDailyStorageFailure(t *testing.T) {
	ledger, repo := newLedger(t, &fakeClock{now: time.Now()})
	repo.failInsert = true

	_, err := ledger.AppendDaily(context.Background(), input("alice", 58))
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestConcurrentAppendsAreDistinct(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 10, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)

	const m = 64
	var wg sync.WaitGroup
	errs := make(chan error, m)
	for i := 0; i < m; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.Append(context.Background(), input(fmt.Sprintf("user%d", i), 58))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	entries := collect(ledger.ListToday(context.Background()))
	require.Len(t, entries, m)

	ids := make(map[string]struct{}, m)
	stamps := make(map[int64]struct{}, m)
	for i, e := range entries {
		ids[e.ID] = struct{}{}
		stamps[e.Timestamp.UnixMicro()] = struct{}{}
		if i > 0 {
			assert.True(t, entries[i-1].Timestamp.After(e.Timestamp), "entries must be newest first")
		}
	}
	assert.Len(t, ids, m)
	assert.Len(t, stamps, m, "a stalled clock must still yield distinct timestamps")
}

func TestListTodayDropsEntriesAtMidnight(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 23, 59, 59, 0, taipei)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	_, err := ledger.Append(ctx, input("alice", 666))
	require.NoError(t, err)
	require.Len(t, collect(ledger.ListToday(ctx)), 1)

	clock.Set(time.Date(2025, 3, 15, 0, 0, 1, 0, taipei))
	assert.Empty(t, collect(ledger.ListToday(ctx)))
	assert.Len(t, collect(ledger.ListAll(ctx, 0)), 1, "the entry itself is still stored")
}

func TestListTodayUsesConfiguredLocation(t *testing.T) {
	// 2025-03-14 17:00 UTC is already 2025-03-15 01:00 in UTC+8.
	clock := &fakeClock{now: time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	_, err := ledger.Append(ctx, input("early", 58))
	require.NoError(t, err)

	clock.Set(time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC))
	assert.Empty(t, collect(ledger.ListToday(ctx)))
}

func TestAppendStorageFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, repo := newLedger(t, clock)
	ctx := context.Background()

	repo.failInsert = true
	entry, err := ledger.Append(ctx, input("alice", 388))
	require.Error(t, err)
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, errUnavailable)

	repo.failInsert = false
	assert.Empty(t, collect(ledger.ListToday(ctx)))
}

func TestReadFailureDegradesToEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger.InitWithWriter(&buf, "test", false)

	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, repo := newLedger(t, clock)
	ctx := context.Background()

	_, err := ledger.Append(ctx, input("alice", 58))
	require.NoError(t, err)

	repo.failRead = true
	assert.Empty(t, collect(ledger.ListToday(ctx)))
	assert.Empty(t, collect(ledger.ListAll(ctx, 10)))
	assert.Contains(t, buf.String(), "Ledger read failed")

	repo.failRead = false
	assert.Len(t, collect(ledger.ListToday(ctx)), 1)
}

func TestListTodaySortsRegardlessOfStoreOrder(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, repo := newLedger(t, clock)
	ctx := context.Background()
	repo.unsorted = true

	for i := 0; i < 5; i++ {
		clock.Set(clock.Now().Add(time.Minute))
		_, err := ledger.Append(ctx, input(fmt.Sprintf("u%d", i), 58))
		require.NoError(t, err)
	}

	entries := collect(ledger.ListToday(ctx))
	require.Len(t, entries, 5)
	assert.Equal(t, "u4", entries[0].Handle)
	assert.Equal(t, "u0", entries[4].Handle)
}

func TestListTodayIsLazyAndRestartable(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	seq := ledger.ListToday(ctx)
	assert.Empty(t, collect(seq))

	for i := 0; i < 3; i++ {
		_, err := ledger.Append(ctx, input(fmt.Sprintf("u%d", i), 58))
		require.NoError(t, err)
	}
	assert.Len(t, collect(seq), 3, "the same sequence re-reads the store")

	seen := 0
	for range seq {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestListTodayCap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock, func(o *Options) {
		o.TodayLimit = 2
		o.AllLimit = 3
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Append(ctx, input(fmt.Sprintf("u%d", i), 58))
		require.NoError(t, err)
	}

	assert.Len(t, collect(ledger.ListToday(ctx)), 2)
	assert.Len(t, collect(ledger.ListAll(ctx, 0)), 3)
	assert.Len(t, collect(ledger.ListAll(ctx, 50)), 3)
	assert.Len(t, collect(ledger.ListAll(ctx, 1)), 1)
}

func TestHasEntryToday(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	_, err := ledger.Append(ctx, input("alice", 58))
	require.NoError(t, err)

	ok, err := ledger.HasEntryToday(ctx, " alice")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Set(time.Date(2025, 3, 15, 0, 0, 0, 0, taipei))
	ok, err = ledger.HasEntryToday(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteClearPing(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, taipei)}
	ledger, _ := newLedger(t, clock)
	ctx := context.Background()

	first, err := ledger.Append(ctx, input("alice", 58))
	require.NoError(t, err)
	_, err = ledger.Append(ctx, input("bob", 168))
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, first.ID))
	assert.ErrorIs(t, ledger.Delete(ctx, first.ID), ErrNotFound)
	assert.Len(t, collect(ledger.ListToday(ctx)), 1)

	require.NoError(t, ledger.Clear(ctx))
	assert.Empty(t, collect(ledger.ListToday(ctx)))
	assert.NoError(t, ledger.Ping(ctx))
}

func TestMaskDelegatesToDisplayProjection(t *testing.T) {
	ledger, _ := newLedger(t, &fakeClock{now: time.Now()})
	got := ledger.Mask(models.Entry{ID: "1", Handle: "Alice", Tier: "T1", ProofImage: "secret", Payout: 0})

	assert.Equal(t, "A***", got.Handle)
	assert.Equal(t, models.NonCashPrizeText, got.PrizeText)
}

func TestStamperIsStrictlyIncreasing(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)}
	s := &stamper{clock: clock}

	a := s.next()
	b := s.next()
	clock.Set(clock.Now().Add(-time.Hour))
	c := s.next()

	assert.True(t, b.After(a))
	assert.True(t, c.After(b), "a clock stepping back must not reorder stamps")
	assert.Equal(t, time.Microsecond, c.Sub(b))
}
