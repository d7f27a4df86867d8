package core

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"missionreport/logger"
	"missionreport/metrics"
)

// OrderStore reads and writes the serialized order held on a parent record.
type OrderStore interface {
	GetOrder(ctx context.Context, parentID int64) (string, error)
	SetOrder(ctx context.Context, parentID int64, blob string) error
}

// Orderable is a child record that takes part in a user defined order.
type Orderable interface {
	OrderID() int64
	OrderKey() int64
	Reportable() bool
}

// OrderEntry is the part of a child record the reconciler looks at.
type OrderEntry struct {
	ID  int64
	Key int64
}

// Entries projects records onto their order entries, keeping record order.
func Entries[T Orderable](records []T) []OrderEntry {
	out := make([]OrderEntry, 0, len(records))
	for _, r := range records {
		out = append(out, OrderEntry{ID: r.OrderID(), Key: r.OrderKey()})
	}
	return out
}

// SerializationFault reports a stored order that is not a JSON list of integers.
type SerializationFault struct {
	Blob string
	Err  error
}

func (e *SerializationFault) Error() string {
	return fmt.Sprintf("unparseable order %q: %v", e.Blob, e.Err)
}

func (e *SerializationFault) Unwrap() error { return e.Err }

// DecodeOrder parses a stored order. An empty blob is an empty order.
func DecodeOrder(blob string) ([]int64, error) {
	if strings.TrimSpace(blob) == "" {
		return []int64{}, nil
	}
	if !gjson.Valid(blob) {
		return nil, &SerializationFault{Blob: blob, Err: fmt.Errorf("invalid JSON")}
	}
	parsed := gjson.Parse(blob)
	if !parsed.IsArray() {
		return nil, &SerializationFault{Blob: blob, Err: fmt.Errorf("not a list")}
	}
	ids := []int64{}
	var bad error
	parsed.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.Number {
			bad = fmt.Errorf("element %s is not a number", v.Raw)
			return false
		}
		id, err := strconv.ParseInt(v.Raw, 10, 64)
		if err != nil {
			bad = fmt.Errorf("element %s is not an integer", v.Raw)
			return false
		}
		ids = append(ids, id)
		return true
	})
	if bad != nil {
		return nil, &SerializationFault{Blob: blob, Err: bad}
	}
	return ids, nil
}

// EncodeOrder serializes ids as a JSON list.
func EncodeOrder(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// SortReconciler keeps a persisted child order consistent with the children that
// actually exist. Read-modify-write cycles on one parent are serialized inside the
// process; separate processes still race and the last write wins.
type SortReconciler struct {
	store OrderStore
	scope string
	locks [lockStripes]sync.Mutex
}

// lockStripes bounds the lock table. Parents sharing a stripe serialize with each
// other, which only costs throughput.
const lockStripes = 64

// NewSortReconciler returns a reconciler for one ordering scope, such as the test
// cases of a mission. scope labels log lines and metrics.
func NewSortReconciler(store OrderStore, scope string) *SortReconciler {
	return &SortReconciler{store: store, scope: scope}
}

func lockStripe(parentID int64) int {
	return int(uint64(parentID) % lockStripes)
}

func (s *SortReconciler) lock(parentID int64) func() {
	mu := &s.locks[lockStripe(parentID)]
	mu.Lock()
	return mu.Unlock
}

func (s *SortReconciler) load(ctx context.Context, parentID int64) ([]int64, error) {
	blob, err := s.store.GetOrder(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ids, err := DecodeOrder(blob)
	if err != nil {
		logger.Warn("%s order of %d treated as empty: %v", s.scope, parentID, err)
		return []int64{}, nil
	}
	return ids, nil
}

// Reconcile returns the repaired order of the children of parentID. Stale and
// duplicate ids are dropped, missing ids are appended in entry order, and a first
// run seeds the order from the entry keys. A repaired order is written back before
// returning; wasDirty reports whether that happened.
func (s *SortReconciler) Reconcile(ctx context.Context, parentID int64, entries []OrderEntry) ([]int64, bool, error) {
	unlock := s.lock(parentID)
	defer unlock()

	persisted, err := s.load(ctx, parentID)
	if err != nil {
		return nil, false, err
	}

	var order []int64
	dirty := false
	if len(entries) > 0 && len(persisted) == 0 {
		seeded := append([]OrderEntry(nil), entries...)
		sort.SliceStable(seeded, func(i, j int) bool { return seeded[i].Key < seeded[j].Key })
		order = appendMissing(nil, seeded, map[int64]bool{})
		dirty = true
	} else {
		current := make(map[int64]bool, len(entries))
		for _, e := range entries {
			current[e.ID] = true
		}
		seen := make(map[int64]bool, len(persisted))
		order = make([]int64, 0, len(entries))
		for _, id := range persisted {
			if !current[id] || seen[id] {
				dirty = true
				continue
			}
			seen[id] = true
			order = append(order, id)
		}
		kept := len(order)
		order = appendMissing(order, entries, seen)
		if len(order) > kept {
			dirty = true
		}
	}

	if dirty {
		if err := s.store.SetOrder(ctx, parentID, EncodeOrder(order)); err != nil {
			return nil, false, fmt.Errorf("writing repaired %s order of %d: %w", s.scope, parentID, err)
		}
		logger.Debug("Repaired %s order of %d: %v", s.scope, parentID, order)
		metrics.OrderRepaired(s.scope)
	}
	return order, dirty, nil
}

func appendMissing(order []int64, entries []OrderEntry, seen map[int64]bool) []int64 {
	if order == nil {
		order = make([]int64, 0, len(entries))
	}
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		order = append(order, e.ID)
	}
	return order
}

// ApplyUserOrder persists a user supplied order. Duplicates and ids that are not
// current children are dropped. Children the caller left out keep their previous
// relative position at the tail, followed by any child the stored order never held.
func (s *SortReconciler) ApplyUserOrder(ctx context.Context, parentID int64, newOrder []int64, entries []OrderEntry) ([]int64, error) {
	unlock := s.lock(parentID)
	defer unlock()

	persisted, err := s.load(ctx, parentID)
	if err != nil {
		return nil, err
	}
	current := make(map[int64]bool, len(entries))
	for _, e := range entries {
		current[e.ID] = true
	}

	seen := map[int64]bool{}
	order := make([]int64, 0, len(entries))
	for _, ids := range [][]int64{newOrder, persisted} {
		for _, id := range ids {
			if current[id] && !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}
	order = appendMissing(order, entries, seen)

	if err := s.store.SetOrder(ctx, parentID, EncodeOrder(order)); err != nil {
		return nil, fmt.Errorf("writing %s order of %d: %w", s.scope, parentID, err)
	}
	logger.Info("Saved %s order of %d: %v", s.scope, parentID, order)
	return order, nil
}

// Arrange returns records in order. With reportableOnly set, records that are
// excluded from the report are skipped; they stay in the persisted order.
func Arrange[T Orderable](order []int64, records []T, reportableOnly bool) []T {
	byID := make(map[int64]T, len(records))
	for _, r := range records {
		byID[r.OrderID()] = r
	}
	out := make([]T, 0, len(order))
	for _, id := range order {
		r, ok := byID[id]
		if !ok || (reportableOnly && !r.Reportable()) {
			continue
		}
		out = append(out, r)
	}
	return out
}
