package bardata

import (
	"time"

	"main/internal/model"
)

// TableSource is an in-memory bar table keyed by asset and timestamp.
// It backs tests, synthetic runs, and loaded bar logs.
type TableSource struct {
	bars map[model.AssetID]map[int64]model.Bar
}

// NewTableSource creates an empty table.
func NewTableSource() *TableSource {
	return &TableSource{bars: make(map[model.AssetID]map[int64]model.Bar)}
}

// Set stores the bar for (asset, dt).
func (t *TableSource) Set(asset model.AssetID, dt time.Time, bar model.Bar) {
	series, ok := t.bars[asset]
	if !ok {
		series = make(map[int64]model.Bar)
		t.bars[asset] = series
	}
	series[dt.UTC().UnixNano()] = bar
}

// Bar returns the bar for (asset, dt), if present.
func (t *TableSource) Bar(asset model.AssetID, dt time.Time) (model.Bar, bool) {
	series, ok := t.bars[asset]
	if !ok {
		return model.Bar{}, false
	}
	bar, ok := series[dt.UTC().UnixNano()]
	return bar, ok
}

// Len returns the number of stored bars for an asset.
func (t *TableSource) Len(asset model.AssetID) int {
	return len(t.bars[asset])
}
