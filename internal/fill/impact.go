// Package fill decides, per tick, how much of an order executes and at
// what price. Models are pluggable; the blotter owns one for the whole
// simulation.
package fill

import (
	"github.com/shopspring/decimal"

	"main/internal/model"
	"main/internal/model/enum"
)

// DefaultVolumeLimit is the fraction of a bar's volume usable to fill
// orders in that tick.
var DefaultVolumeLimit = decimal.NewFromFloat(0.025)

// Tick carries the per-tick, per-asset fill allowance shared by every
// order on the asset. The blotter allocates a fresh Tick per asset per
// bar; models that cap on volume consume it in queue order.
type Tick struct {
	budget      decimal.Decimal
	initialized bool
}

// NewTick allocates the shared allowance for one (asset, bar) pair.
func NewTick() *Tick {
	return &Tick{}
}

// PriceImpactModel returns the executable quantity and execution price of
// one order against one bar. A zero quantity means no fill this tick.
type PriceImpactModel interface {
	ProcessOrder(order *model.Order, bar model.Bar, tick *Tick) (int64, decimal.Decimal)
}

// VolumeShare caps the total quantity filled per tick at a fixed fraction
// of the bar's volume, shared across all open orders on the asset in
// placement order. Execution price is the bar close.
type VolumeShare struct {
	VolumeLimit decimal.Decimal
}

// NewVolumeShare creates the default volume-capped market impact model.
func NewVolumeShare(volumeLimit decimal.Decimal) *VolumeShare {
	if volumeLimit.Sign() <= 0 {
		volumeLimit = DefaultVolumeLimit
	}
	return &VolumeShare{VolumeLimit: volumeLimit}
}

func (m *VolumeShare) ProcessOrder(order *model.Order, bar model.Bar, tick *Tick) (int64, decimal.Decimal) {
	if !limitCrossed(order, bar) {
		return 0, decimal.Decimal{}
	}
	if !tick.initialized {
		tick.budget = m.VolumeLimit.Mul(decimal.NewFromInt(bar.Volume))
		tick.initialized = true
	}
	if tick.budget.Sign() <= 0 {
		return 0, decimal.Decimal{}
	}

	remaining := order.Remaining() * order.Direction()
	qty := decimal.Min(decimal.NewFromInt(remaining), tick.budget).IntPart()
	if qty <= 0 {
		return 0, decimal.Decimal{}
	}
	tick.budget = tick.budget.Sub(decimal.NewFromInt(qty))
	return qty * order.Direction(), bar.Close
}

// FixedSlippage fills the entire remaining order at once at the bar close
// offset by half the configured spread, ignoring the volume cap.
type FixedSlippage struct {
	Spread decimal.Decimal
}

// NewFixedSlippage creates a fixed-spread model. A zero spread executes
// at the bar close exactly.
func NewFixedSlippage(spread decimal.Decimal) *FixedSlippage {
	return &FixedSlippage{Spread: spread}
}

func (m *FixedSlippage) ProcessOrder(order *model.Order, bar model.Bar, _ *Tick) (int64, decimal.Decimal) {
	if !limitCrossed(order, bar) {
		return 0, decimal.Decimal{}
	}
	remaining := order.Remaining()
	if remaining == 0 {
		return 0, decimal.Decimal{}
	}
	half := m.Spread.Div(decimal.NewFromInt(2))
	price := bar.Close
	if order.Direction() > 0 {
		price = price.Add(half)
	} else {
		price = price.Sub(half)
	}
	return remaining, price
}

// limitCrossed reports whether the bar's traded range reaches the order's
// limit price. Market orders always cross.
func limitCrossed(order *model.Order, bar model.Bar) bool {
	if order.Kind != enum.OrderKindLimit {
		return true
	}
	if order.Direction() > 0 {
		return bar.Low.LessThanOrEqual(order.Limit)
	}
	return bar.High.GreaterThanOrEqual(order.Limit)
}
