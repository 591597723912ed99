// Package bardata supplies historical price/volume bars to the
// simulation. A Source answers point lookups; a Snapshot is the per-tick
// view handed to the blotter.
package bardata

import (
	"sort"
	"time"

	"main/internal/model"
)

// Source provides, for an asset and an instant, the bar of the interval
// ending at that instant. The second return is false when the asset did
// not trade that tick; callers treat that as "no trade", not an error.
type Source interface {
	Bar(asset model.AssetID, dt time.Time) (model.Bar, bool)
}

// Snapshot is the set of bars available at one tick, in deterministic
// asset order.
type Snapshot struct {
	dt     time.Time
	bars   map[model.AssetID]model.Bar
	assets []model.AssetID
}

// NewSnapshot creates an empty snapshot for the tick.
func NewSnapshot(dt time.Time) *Snapshot {
	return &Snapshot{dt: dt, bars: make(map[model.AssetID]model.Bar)}
}

// Set records the bar for an asset.
func (s *Snapshot) Set(asset model.AssetID, bar model.Bar) {
	if _, ok := s.bars[asset]; !ok {
		s.assets = append(s.assets, asset)
	}
	s.bars[asset] = bar
}

// Bar returns the asset's bar, if it traded this tick.
func (s *Snapshot) Bar(asset model.AssetID) (model.Bar, bool) {
	bar, ok := s.bars[asset]
	return bar, ok
}

// Assets returns the assets present, ascending by id.
func (s *Snapshot) Assets() []model.AssetID {
	out := make([]model.AssetID, len(s.assets))
	copy(out, s.assets)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DT returns the snapshot's tick timestamp.
func (s *Snapshot) DT() time.Time {
	return s.dt
}

// SnapshotAt builds the per-tick snapshot from a source for the given
// assets. Assets with no data this tick are absent from the snapshot.
func SnapshotAt(src Source, dt time.Time, assets []model.AssetID) *Snapshot {
	snap := NewSnapshot(dt)
	for _, asset := range assets {
		if bar, ok := src.Bar(asset, dt); ok {
			snap.Set(asset, bar)
		}
	}
	return snap
}
