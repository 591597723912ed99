package mdg

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bardata"
	"main/internal/barstore"
)

func TestGeneratorValidation(t *testing.T) {
	_, err := NewGenerator(Config{})
	assert.ErrorIs(t, err, ErrInvalidVolume)

	gen, err := NewGenerator(Config{Volume: 100})
	require.NoError(t, err)
	bar := gen.Next()
	assert.True(t, bar.Close.Equal(decimal.NewFromFloat(10.1)))
	assert.Equal(t, int64(100), bar.Volume)
}

func TestGeneratorDrift(t *testing.T) {
	gen, err := NewGenerator(Config{
		BasePrice: decimal.NewFromInt(10),
		Drift:     decimal.NewFromFloat(0.5),
		Volume:    100,
	})
	require.NoError(t, err)

	assert.True(t, gen.Next().Close.Equal(decimal.NewFromInt(10)))
	assert.True(t, gen.Next().Close.Equal(decimal.NewFromFloat(10.5)))
	assert.True(t, gen.Next().Close.Equal(decimal.NewFromInt(11)))
}

func TestFillTable(t *testing.T) {
	gen, err := NewGenerator(Config{BasePrice: decimal.NewFromInt(10), Volume: 100})
	require.NoError(t, err)

	base := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}
	table := bardata.NewTableSource()
	gen.FillTable(table, 1, ticks)

	assert.Equal(t, 3, table.Len(1))
	bar, ok := table.Bar(1, ticks[1])
	require.True(t, ok)
	assert.Equal(t, int64(100), bar.Volume)
}

func TestWriteLogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := barstore.NewWriter(barstore.WriterConfig{Dir: dir})
	require.NoError(t, err)

	gen, err := NewGenerator(Config{BasePrice: decimal.NewFromInt(10), Volume: 100})
	require.NoError(t, err)

	base := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(time.Minute)}
	require.NoError(t, gen.WriteLog(w, 1, ticks))
	require.NoError(t, w.Close())

	table, err := bardata.LoadLog(context.Background(), dir, "")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len(1))
}
