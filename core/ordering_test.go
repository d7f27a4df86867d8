package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"missionreport/models"
)

type memOrderStore struct {
	mu     sync.Mutex
	blobs  map[int64]string
	writes int
	getErr error
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{blobs: map[int64]string{}}
}

func (s *memOrderStore) GetOrder(_ context.Context, parentID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.blobs[parentID], nil
}

func (s *memOrderStore) SetOrder(_ context.Context, parentID int64, blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[parentID] = blob
	s.writes++
	return nil
}

func entriesOf(ids ...int64) []OrderEntry {
	out := make([]OrderEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, OrderEntry{ID: id, Key: id})
	}
	return out
}

func TestDecodeOrder(t *testing.T) {
	ids, err := DecodeOrder("[3, 1,2]")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	ids, err = DecodeOrder("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, blob := range []string{"[1,", `{"a":1}`, `[1,"2"]`, "[1.5]", "7"} {
		_, err := DecodeOrder(blob)
		var fault *SerializationFault
		assert.True(t, errors.As(err, &fault), "blob %q", blob)
	}
}

func TestEncodeOrder(t *testing.T) {
	assert.Equal(t, "[]", EncodeOrder(nil))
	assert.Equal(t, "[4,2,9]", EncodeOrder([]int64{4, 2, 9}))
}

func TestReconcileSeedsFromKeys(t *testing.T) {
	store := newMemOrderStore()
	r := NewSortReconciler(store, "test_cases")

	order, dirty, err := r.Reconcile(context.Background(), 1, []OrderEntry{{ID: 5, Key: 2}, {ID: 7, Key: 1}})
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, []int64{7, 5}, order)
	assert.Equal(t, "[7,5]", store.blobs[1])
}

func TestReconcileAppendsMissing(t *testing.T) {
	store := newMemOrderStore()
	store.blobs[1] = "[3,1]"
	r := NewSortReconciler(store, "test_cases")

	order, dirty, err := r.Reconcile(context.Background(), 1, entriesOf(1, 2, 3))
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, []int64{3, 1, 2}, order)
}

func TestReconcileDropsStale(t *testing.T) {
	store := newMemOrderStore()
	store.blobs[1] = "[3,1,9]"
	r := NewSortReconciler(store, "test_cases")

	order, dirty, err := r.Reconcile(context.Background(), 1, entriesOf(1, 3))
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Equal(t, []int64{3, 1}, order)
	assert.Equal(t, "[3,1]", store.blobs[1])
}

func TestReconcileIsIdempotent(t *testing.T) {
	cases := []struct {
		name      string
		persisted string
		ids       []int64
	}{
		{"empty", "", []int64{4, 2, 8}},
		{"duplicates", "[2,2,4,2]", []int64{2, 4}},
		{"stale and missing", "[9,4,11]", []int64{2, 4, 6}},
		{"garbage", "not json", []int64{1, 2}},
		{"no children", "[1,2]", nil},
		{"clean", "[2,1]", []int64{1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemOrderStore()
			store.blobs[1] = tc.persisted
			r := NewSortReconciler(store, "test_cases")
			entries := entriesOf(tc.ids...)

			first, _, err := r.Reconcile(context.Background(), 1, entries)
			require.NoError(t, err)
			second, dirty, err := r.Reconcile(context.Background(), 1, entries)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.False(t, dirty)
			assert.ElementsMatch(t, tc.ids, second)
		})
	}
}

func TestReconcileCleanOrderIsNotWritten(t *testing.T) {
	store := newMemOrderStore()
	store.blobs[1] = "[2,1]"
	r := NewSortReconciler(store, "test_cases")

	order, dirty, err := r.Reconcile(context.Background(), 1, entriesOf(1, 2))
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, []int64{2, 1}, order)
	assert.Zero(t, store.writes)
}

func TestReconcileStoreError(t *testing.T) {
	store := newMemOrderStore()
	store.getErr = models.ErrNotFound
	r := NewSortReconciler(store, "test_cases")

	_, _, err := r.Reconcile(context.Background(), 1, entriesOf(1))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReconcileConcurrentCallsAgree(t *testing.T) {
	store := newMemOrderStore()
	store.blobs[1] = "[5,3]"
	r := NewSortReconciler(store, "test_cases")
	entries := entriesOf(1, 3, 5)

	var wg sync.WaitGroup
	results := make([][]int64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, _, err := r.Reconcile(context.Background(), 1, entries)
			assert.NoError(t, err)
			results[i] = order
		}(i)
	}
	wg.Wait()

	for _, order := range results {
		assert.Equal(t, []int64{5, 3, 1}, order)
	}
	assert.Equal(t, 1, store.writes)
}

func TestLockStripesAreBounded(t *testing.T) {
	for _, id := range []int64{0, 1, 63, 64, 1 << 40, -1} {
		stripe := lockStripe(id)
		assert.GreaterOrEqual(t, stripe, 0)
		assert.Less(t, stripe, lockStripes)
	}
	assert.Equal(t, lockStripe(5), lockStripe(5+lockStripes))

	store := newMemOrderStore()
	r := NewSortReconciler(store, "test_cases")
	for _, parent := range []int64{5, 5 + lockStripes} {
		order, _, err := r.Reconcile(context.Background(), parent, entriesOf(2, 1))
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, order)
	}
}

func TestApplyUserOrder(t *testing.T) {
	store := newMemOrderStore()
	store.blobs[1] = "[1,2,3,4]"
	r := NewSortReconciler(store, "supporting_data")

	order, err := r.ApplyUserOrder(context.Background(), 1, []int64{3, 99, 3, 1}, entriesOf(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2, 4, 5}, order)
	assert.Equal(t, "[3,1,2,4,5]", store.blobs[1])

	_, dirty, err := r.Reconcile(context.Background(), 1, entriesOf(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestArrange(t *testing.T) {
	tcs := []models.TestCase{
		{ID: 1, Include: true},
		{ID: 2, Include: false},
		{ID: 3, Include: true},
	}
	got := Arrange([]int64{3, 2, 1}, tcs, true)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)

	assert.Len(t, Arrange([]int64{3, 2, 1}, tcs, false), 3)
}
