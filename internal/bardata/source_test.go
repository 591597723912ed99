package bardata

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/barstore"
	"main/internal/model"
)

func bar(price float64, volume int64) model.Bar {
	p := decimal.NewFromFloat(price)
	return model.Bar{Open: p, High: p, Low: p, Close: p, Volume: volume}
}

func TestTableSourceLookup(t *testing.T) {
	table := NewTableSource()
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	table.Set(1, dt, bar(10, 100))

	got, ok := table.Bar(1, dt)
	require.True(t, ok)
	assert.Equal(t, int64(100), got.Volume)

	_, ok = table.Bar(1, dt.Add(time.Minute))
	assert.False(t, ok)
	_, ok = table.Bar(2, dt)
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len(1))
}

func TestSnapshotAssetsSorted(t *testing.T) {
	snap := NewSnapshot(time.Now())
	snap.Set(3, bar(1, 1))
	snap.Set(1, bar(2, 2))
	snap.Set(2, bar(3, 3))
	snap.Set(1, bar(4, 4)) // overwrite, not duplicate

	assert.Equal(t, []model.AssetID{1, 2, 3}, snap.Assets())
	got, ok := snap.Bar(1)
	require.True(t, ok)
	assert.Equal(t, int64(4), got.Volume)
}

func TestSnapshotAtSkipsMissingAssets(t *testing.T) {
	table := NewTableSource()
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	table.Set(1, dt, bar(10, 100))

	snap := SnapshotAt(table, dt, []model.AssetID{1, 2})
	assert.Equal(t, []model.AssetID{1}, snap.Assets())
	assert.Equal(t, dt, snap.DT())
}

func TestLoadLogFillsTable(t *testing.T) {
	dir := t.TempDir()
	w, err := barstore.NewWriter(barstore.WriterConfig{Dir: dir})
	require.NoError(t, err)

	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	for i := int64(0); i < 10; i++ {
		header := barstore.RecordHeader{Asset: 1, TsNano: dt.Add(time.Duration(i) * time.Minute).UnixNano()}
		require.NoError(t, w.Append(header, bar(10, 100+i)))
	}
	require.NoError(t, w.Close())

	table, err := LoadLog(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, 10, table.Len(1))

	got, ok := table.Bar(1, dt.Add(3*time.Minute))
	require.True(t, ok)
	assert.Equal(t, int64(103), got.Volume)
}
