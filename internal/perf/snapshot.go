package perf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

// Snapshot captures positions at a point in time.
type Snapshot struct {
	Timestamp  int64           `json:"timestamp"`
	LastTickTs int64           `json:"lastTickTs"`
	TxnCount   int             `json:"txnCount"`
	Positions  []PositionEntry `json:"positions"`
}

// PositionEntry is a single asset position entry.
type PositionEntry struct {
	Asset     model.AssetID   `json:"asset"`
	Amount    int64           `json:"amount"`
	CostBasis decimal.Decimal `json:"costBasis"`
}

// Snapshot builds a snapshot from current positions.
func (t *Tracker) Snapshot(lastTick time.Time) Snapshot {
	entries := make([]PositionEntry, 0, len(t.positions))
	for asset, pos := range t.positions {
		entries = append(entries, PositionEntry{
			Asset:     asset,
			Amount:    pos.Amount,
			CostBasis: pos.CostBasis,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Asset < entries[j].Asset
	})
	return Snapshot{
		Timestamp:  time.Now().UTC().UnixNano(),
		LastTickTs: lastTick.UTC().UnixNano(),
		TxnCount:   t.txnCount,
		Positions:  entries,
	}
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
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSnapshot loads a snapshot from disk.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
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
	expectedMap := make(map[model.AssetID]int64, len(expected.Positions))
	for _, entry := range expected.Positions {
		expectedMap[entry.Asset] = entry.Amount
	}
	for _, entry := range actual.Positions {
		want, ok := expectedMap[entry.Asset]
		if !ok {
			return fmt.Errorf("snapshot missing asset: %d", entry.Asset)
		}
		if want != entry.Amount {
			return fmt.Errorf("snapshot amount mismatch: asset=%d expected=%d actual=%d", entry.Asset, want, entry.Amount)
		}
	}
	return nil
}
