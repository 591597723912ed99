package blotter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/asset"
	"main/internal/bardata"
	"main/internal/fill"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/risk"
)

const (
	assetAAPL model.AssetID = 1
	assetMSFT model.AssetID = 2
)

func newTestRegistry(t *testing.T) *asset.Registry {
	t.Helper()
	reg := asset.NewRegistry()
	require.NoError(t, reg.Add(asset.Asset{ID: assetAAPL, Symbol: "AAPL"}))
	require.NoError(t, reg.Add(asset.Asset{ID: assetMSFT, Symbol: "MSFT"}))
	return reg
}

func flatBar(price float64, volume int64) model.Bar {
	p := decimal.NewFromFloat(price)
	return model.Bar{Open: p, High: p, Low: p, Close: p, Volume: volume}
}

func snapshotWith(dt time.Time, assetID model.AssetID, bar model.Bar) *bardata.Snapshot {
	snap := bardata.NewSnapshot(dt)
	snap.Set(assetID, bar)
	return snap
}

func TestPartialFillsDrainQueueInOrder(t *testing.T) {
	b := New(newTestRegistry(t))
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	require.NoError(t, b.SetCurrentDT(dt))

	firstID, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)
	secondID, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)

	// 2.5% of a 100-share bar truncates to 2 shares per tick, consumed
	// by the oldest order first.
	var all []model.Transaction
	for i := 0; b.HasOpenOrders(assetAAPL) && i < 200; i++ {
		dt = dt.Add(time.Minute)
		require.NoError(t, b.SetCurrentDT(dt))
		txns, _ := b.GetTransactions(snapshotWith(dt, assetAAPL, flatBar(10, 100)))
		all = append(all, txns...)
	}

	require.Len(t, all, 100)
	var total int64
	for i, txn := range all {
		assert.Equal(t, int64(2), txn.Amount)
		total += txn.Amount
		if i < 50 {
			assert.Equal(t, firstID, txn.OrderID)
		} else {
			assert.Equal(t, secondID, txn.OrderID)
		}
	}
	assert.Equal(t, int64(200), total)

	first, ok := b.OrderByID(firstID)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusFilled, first.Status)
	second, ok := b.OrderByID(secondID)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusFilled, second.Status)
	assert.False(t, b.HasOpenOrders(assetAAPL))
}

func TestPartialFillsShortOrders(t *testing.T) {
	b := New(newTestRegistry(t))
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	require.NoError(t, b.SetCurrentDT(dt))

	_, err := b.Order(assetAAPL, -100, model.MarketOrder())
	require.NoError(t, err)

	var total int64
	count := 0
	for b.HasOpenOrders(assetAAPL) {
		dt = dt.Add(time.Minute)
		require.NoError(t, b.SetCurrentDT(dt))
		txns, _ := b.GetTransactions(snapshotWith(dt, assetAAPL, flatBar(10, 100)))
		for _, txn := range txns {
			assert.Equal(t, int64(-2), txn.Amount)
			total += txn.Amount
			count++
		}
	}
	assert.Equal(t, 50, count)
	assert.Equal(t, int64(-100), total)
}

func TestStarvedOrderStaysOpen(t *testing.T) {
	b := New(newTestRegistry(t))
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	require.NoError(t, b.SetCurrentDT(dt))

	_, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)
	secondID, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)

	txns, _ := b.GetTransactions(snapshotWith(dt, assetAAPL, flatBar(10, 100)))
	require.Len(t, txns, 1)

	second, ok := b.OrderByID(secondID)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusOpen, second.Status)
	assert.Zero(t, second.Filled)
}

func TestOrderValidation(t *testing.T) {
	b := New(newTestRegistry(t))

	_, err := b.Order(assetAAPL, 0, model.MarketOrder())
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = b.Order(99, 10, model.MarketOrder())
	assert.Error(t, err)
	assert.False(t, b.HasOpenOrders(99))
}

func TestClockRegressionRejected(t *testing.T) {
	b := New(newTestRegistry(t))
	dt := time.Date(2008, time.January, 7, 15, 0, 0, 0, time.UTC)
	require.NoError(t, b.SetCurrentDT(dt))
	require.NoError(t, b.SetCurrentDT(dt)) // same instant is allowed
	assert.Error(t, b.SetCurrentDT(dt.Add(-time.Minute)))
}

func TestCancelRemovesFromQueue(t *testing.T) {
	b := New(newTestRegistry(t))
	id, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)

	assert.True(t, b.Cancel(id))
	assert.False(t, b.Cancel(id))
	assert.False(t, b.HasOpenOrders(assetAAPL))

	order, ok := b.OrderByID(id)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusCancelled, order.Status)

	txns, _ := b.GetTransactions(snapshotWith(time.Now(), assetAAPL, flatBar(10, 1000000)))
	assert.Empty(t, txns)
}

func TestLimitOrderWaitsForCross(t *testing.T) {
	b := New(newTestRegistry(t))
	dt := time.Date(2008, time.January, 7, 14, 31, 0, 0, time.UTC)
	require.NoError(t, b.SetCurrentDT(dt))

	id, err := b.Order(assetAAPL, 10, model.LimitOrder(decimal.NewFromFloat(9.5)))
	require.NoError(t, err)

	txns, _ := b.GetTransactions(snapshotWith(dt, assetAAPL, flatBar(10, 10000)))
	assert.Empty(t, txns)

	txns, _ = b.GetTransactions(snapshotWith(dt, assetAAPL, flatBar(9.4, 10000)))
	require.Len(t, txns, 1)
	assert.Equal(t, id, txns[0].OrderID)
	assert.Equal(t, int64(10), txns[0].Amount)
}

func TestAssetsAbsentFromSnapshotUntouched(t *testing.T) {
	b := New(newTestRegistry(t))
	_, err := b.Order(assetMSFT, 10, model.MarketOrder())
	require.NoError(t, err)

	txns, _ := b.GetTransactions(snapshotWith(time.Now(), assetAAPL, flatBar(10, 10000)))
	assert.Empty(t, txns)
	assert.True(t, b.HasOpenOrders(assetMSFT))
}

func TestProcessSplitsRescalesOpenOrders(t *testing.T) {
	b := New(newTestRegistry(t))
	id, err := b.Order(assetAAPL, 100, model.LimitOrder(decimal.NewFromInt(10)))
	require.NoError(t, err)
	otherID, err := b.Order(assetMSFT, 100, model.LimitOrder(decimal.NewFromInt(10)))
	require.NoError(t, err)

	ratio := decimal.NewFromFloat(0.3333)
	require.NoError(t, b.ProcessSplits([]model.Split{{Asset: assetAAPL, Ratio: ratio}}))

	order, ok := b.OrderByID(id)
	require.True(t, ok)
	assert.Equal(t, int64(300), order.Amount)
	assert.True(t, order.Limit.Equal(decimal.NewFromFloat(3.33)), "limit: %s", order.Limit)

	other, ok := b.OrderByID(otherID)
	require.True(t, ok)
	assert.Equal(t, int64(100), other.Amount)
	assert.True(t, other.Limit.Equal(decimal.NewFromInt(10)))
}

func TestProcessSplitsValidation(t *testing.T) {
	b := New(newTestRegistry(t))
	assert.Error(t, b.ProcessSplits([]model.Split{{Asset: 99, Ratio: decimal.NewFromInt(2)}}))
	assert.Error(t, b.ProcessSplits([]model.Split{{Asset: assetAAPL, Ratio: decimal.Decimal{}}}))
	assert.NoError(t, b.ProcessSplits([]model.Split{{Asset: assetAAPL, Ratio: decimal.NewFromInt(2)}}))
}

func TestProcessSplitsRejectsBatchWhole(t *testing.T) {
	b := New(newTestRegistry(t))
	id, err := b.Order(assetAAPL, 100, model.LimitOrder(decimal.NewFromInt(10)))
	require.NoError(t, err)

	// A bad entry later in the batch must leave earlier entries
	// unapplied.
	half := decimal.NewFromFloat(0.5)
	assert.Error(t, b.ProcessSplits([]model.Split{
		{Asset: assetAAPL, Ratio: half},
		{Asset: 99, Ratio: half},
	}))
	assert.Error(t, b.ProcessSplits([]model.Split{
		{Asset: assetAAPL, Ratio: half},
		{Asset: assetMSFT, Ratio: decimal.Decimal{}},
	}))

	order, ok := b.OrderByID(id)
	require.True(t, ok)
	assert.Equal(t, int64(100), order.Amount)
	assert.True(t, order.Limit.Equal(decimal.NewFromInt(10)))
}

func TestCommissionChargedPerFill(t *testing.T) {
	b := New(newTestRegistry(t),
		WithCommission(fill.PerShare{Cost: decimal.NewFromFloat(0.03)}),
	)
	_, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)

	txns, fees := b.GetTransactions(snapshotWith(time.Now(), assetAAPL, flatBar(10, 100)))
	require.Len(t, txns, 1)
	require.Len(t, fees, 1)
	assert.True(t, fees[0].Cost.Equal(decimal.NewFromFloat(0.06)))
	assert.True(t, txns[0].Commission.Equal(decimal.NewFromFloat(0.06)))
}

func TestRiskCheckerBlocksPlacement(t *testing.T) {
	position := int64(0)
	b := New(newTestRegistry(t),
		WithRiskChecker(risk.NewChecker(risk.Config{MaxOrderQty: 50}), func(model.AssetID) int64 { return position }),
	)

	_, err := b.Order(assetAAPL, 100, model.MarketOrder())
	assert.Error(t, err)

	_, err = b.Order(assetAAPL, 50, model.MarketOrder())
	assert.NoError(t, err)
}

func TestFixedSlippageFillsInOneTick(t *testing.T) {
	b := New(newTestRegistry(t),
		WithPriceImpact(fill.NewFixedSlippage(decimal.Decimal{})),
	)
	id, err := b.Order(assetAAPL, 100, model.MarketOrder())
	require.NoError(t, err)

	txns, _ := b.GetTransactions(snapshotWith(time.Now(), assetAAPL, flatBar(10, 1)))
	require.Len(t, txns, 1)
	assert.Equal(t, int64(100), txns[0].Amount)

	order, ok := b.OrderByID(id)
	require.True(t, ok)
	assert.Equal(t, enum.OrderStatusFilled, order.Status)
	assert.False(t, b.HasOpenOrders(assetAAPL))
}
