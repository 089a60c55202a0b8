package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

// Snapshot captures per-book positions at a point in time.
type Snapshot struct {
	Timestamp int64           `json:"timestamp"`
	LastSeq   uint64          `json:"lastSeq"`
	Positions []PositionEntry `json:"positions"`
}

// PositionEntry is the quantity held by one book in one product.
type PositionEntry struct {
	ProductID string `json:"productId"`
	Book      string `json:"book"`
	Qty       int64  `json:"qty"`
}

type entryKey struct {
	productID string
	book      string
}

// Snapshot builds a snapshot from current positions.
func (s *PositionService) Snapshot() Snapshot {
	return s.SnapshotWithMeta(0)
}

// SnapshotWithMeta builds a snapshot tagged with the last processed record.
func (s *PositionService) SnapshotWithMeta(lastSeq uint64) Snapshot {
	entries := make([]PositionEntry, 0, s.store.Len())
	s.store.Range(func(productID string, pos schema.Position) bool {
		for book, qty := range pos.Books {
			entries = append(entries, PositionEntry{ProductID: productID, Book: book, Qty: qty})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].Book < entries[j].Book
	})
	return Snapshot{
		Timestamp: time.Now().UTC().UnixNano(),
		LastSeq:   lastSeq,
		Positions: entries,
	}
}

// ApplySnapshot replaces positions with a snapshot without notifying
// listeners and returns the restored positions ordered by product id. Every
// product must be known to reg.
func (s *PositionService) ApplySnapshot(snapshot Snapshot, reg *schema.Registry) ([]schema.Position, error) {
	restored := make(map[string]schema.Position)
	for _, entry := range snapshot.Positions {
		pos, ok := restored[entry.ProductID]
		if !ok {
			product, err := reg.GetData(entry.ProductID)
			if err != nil {
				return nil, fmt.Errorf("apply snapshot: %w", err)
			}
			pos = schema.NewPosition(product)
			restored[entry.ProductID] = pos
		}
		pos.Books[entry.Book] += entry.Qty
	}
	out := make([]schema.Position, 0, len(restored))
	for productID, pos := range restored {
		s.store.Put(productID, pos)
		out = append(out, pos.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Product.ProductID < out[j].Product.ProductID
	})
	return out, nil
}

// WriteSnapshot writes a snapshot to disk as JSON.
func WriteSnapshot(path string, snapshot Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %w", exception.ErrIOFailure, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", exception.ErrIOFailure, err)
	}
	return nil
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", exception.ErrIOFailure, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// CompareSnapshots checks if two snapshots hold the same positions.
func CompareSnapshots(expected, actual Snapshot) error {
	if len(expected.Positions) != len(actual.Positions) {
		return fmt.Errorf("snapshot length mismatch: expected=%d actual=%d", len(expected.Positions), len(actual.Positions))
	}
	want := make(map[entryKey]int64, len(expected.Positions))
	for _, entry := range expected.Positions {
		want[entryKey{entry.ProductID, entry.Book}] = entry.Qty
	}
	for _, entry := range actual.Positions {
		qty, ok := want[entryKey{entry.ProductID, entry.Book}]
		if !ok {
			return fmt.Errorf("snapshot missing position: product=%s book=%s", entry.ProductID, entry.Book)
		}
		if qty != entry.Qty {
			return fmt.Errorf("snapshot qty mismatch: product=%s book=%s expected=%d actual=%d", entry.ProductID, entry.Book, qty, entry.Qty)
		}
	}
	return nil
}
