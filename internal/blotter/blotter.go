// Package blotter owns open orders and converts bars into simulated
// fills. It is single-threaded by contract: one blotter per simulation,
// driven tick-by-tick by the caller.
package blotter

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/asset"
	"main/internal/bardata"
	"main/internal/fill"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/risk"
)

var (
	ErrZeroAmount      = errors.New("order amount must be non-zero")
	ErrClockRegression = errors.New("blotter clock moved backward")
	ErrInvalidRatio    = errors.New("split ratio must be positive")
)

// PositionFunc returns the current signed position for an asset. Used by
// the optional pre-trade risk checks.
type PositionFunc func(model.AssetID) int64

// Option configures a blotter at construction.
type Option func(*Blotter)

// WithPriceImpact selects the fill model.
func WithPriceImpact(m fill.PriceImpactModel) Option {
	return func(b *Blotter) { b.impact = m }
}

// WithCommission selects the commission model.
func WithCommission(m fill.CommissionModel) Option {
	return func(b *Blotter) { b.commission = m }
}

// WithRiskChecker enables pre-trade checks at placement.
func WithRiskChecker(c *risk.Checker, position PositionFunc) Option {
	return func(b *Blotter) {
		b.checker = c
		b.position = position
	}
}

// Blotter holds the order arena and the per-asset FIFO queues of open
// order ids. Orders stay in the arena after they close; only the queues
// forget them.
type Blotter struct {
	registry   *asset.Registry
	impact     fill.PriceImpactModel
	commission fill.CommissionModel
	checker    *risk.Checker
	position   PositionFunc

	orders    map[uuid.UUID]*model.Order
	open      map[model.AssetID][]uuid.UUID
	currentDT time.Time
}

// New creates a blotter over the given asset registry. The default fill
// model is volume-capped market impact with no commission.
func New(registry *asset.Registry, opts ...Option) *Blotter {
	b := &Blotter{
		registry:   registry,
		impact:     fill.NewVolumeShare(decimal.Decimal{}),
		commission: fill.NoCommission{},
		orders:     make(map[uuid.UUID]*model.Order),
		open:       make(map[model.AssetID][]uuid.UUID),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CurrentDT returns the simulation clock.
func (b *Blotter) CurrentDT() time.Time {
	return b.currentDT
}

// SetCurrentDT advances the simulation clock. Moving it backward is an
// ordering violation and fatal to the run.
func (b *Blotter) SetCurrentDT(dt time.Time) error {
	if !b.currentDT.IsZero() && dt.Before(b.currentDT) {
		return errors.Wrapf(ErrClockRegression, "current: %s, supplied: %s", b.currentDT, dt)
	}
	b.currentDT = dt
	return nil
}

// Order places a new order timestamped at the current clock and appends
// it to the asset's FIFO queue. Zero amounts and unknown assets are
// rejected with no side effect.
func (b *Blotter) Order(assetID model.AssetID, amount int64, style model.OrderStyle) (uuid.UUID, error) {
	if amount == 0 {
		return uuid.Nil, ErrZeroAmount
	}
	if _, err := b.registry.Resolve(assetID); err != nil {
		return uuid.Nil, err
	}
	if b.checker != nil {
		var pos int64
		if b.position != nil {
			pos = b.position(assetID)
		}
		if err := b.checker.Check(assetID, amount, pos); err != nil {
			return uuid.Nil, err
		}
	}

	o := &model.Order{
		ID:        uuid.New(),
		Asset:     assetID,
		Amount:    amount,
		Kind:      style.Kind,
		Limit:     style.Limit,
		Status:    enum.OrderStatusOpen,
		CreatedAt: b.currentDT,
	}
	b.orders[o.ID] = o
	b.open[assetID] = append(b.open[assetID], o.ID)
	return o.ID, nil
}

// GetTransactions matches every open order on the snapshot's assets, in
// placement order, against the tick's bars. Orders on assets absent from
// the snapshot are untouched. Fully filled orders leave their queue; an
// asset whose queue empties disappears from the open-order index.
func (b *Blotter) GetTransactions(snap *bardata.Snapshot) ([]model.Transaction, []model.Commission) {
	var txns []model.Transaction
	var fees []model.Commission
	for _, assetID := range snap.Assets() {
		queue, ok := b.open[assetID]
		if !ok {
			continue
		}
		bar, ok := snap.Bar(assetID)
		if !ok {
			continue
		}

		tick := fill.NewTick()
		remaining := make([]uuid.UUID, 0, len(queue))
		for _, id := range queue {
			order := b.orders[id]
			if order == nil || !order.IsOpen() {
				continue
			}
			qty, price := b.impact.ProcessOrder(order, bar, tick)
			if qty != 0 {
				txn := model.Transaction{
					ID:      uuid.New(),
					OrderID: id,
					Asset:   assetID,
					Amount:  qty,
					Price:   price,
					DT:      snap.DT(),
				}
				if cost := b.commission.Calculate(txn); cost.Sign() > 0 {
					txn.Commission = cost
					fees = append(fees, model.Commission{
						OrderID: id,
						Asset:   assetID,
						Cost:    cost,
						DT:      snap.DT(),
					})
				}
				order.Filled += qty
				if order.Remaining() == 0 {
					order.Status = enum.OrderStatusFilled
				} else {
					order.Status = enum.OrderStatusPartFilled
				}
				txns = append(txns, txn)
			}
			if order.IsOpen() {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			delete(b.open, assetID)
		} else {
			b.open[assetID] = remaining
		}
	}
	return txns, fees
}

// ProcessSplits rescales every open order on the named assets in place.
// Amounts scale by 1/ratio (truncated toward zero, filled fraction
// preserved); limit prices scale by ratio, rounded to the nearest cent.
// A named asset with no open orders is a no-op. A batch containing an
// unknown asset or non-positive ratio is rejected whole, applying
// nothing.
func (b *Blotter) ProcessSplits(splits []model.Split) error {
	// Validate the whole batch before touching any order, so a bad
	// entry leaves no partial side effect.
	for _, s := range splits {
		if _, err := b.registry.Resolve(s.Asset); err != nil {
			return err
		}
		if s.Ratio.Sign() <= 0 {
			return errors.Wrapf(ErrInvalidRatio, "asset: %d, ratio: %s", s.Asset, s.Ratio)
		}
	}
	for _, s := range splits {
		for _, id := range b.open[s.Asset] {
			o := b.orders[id]
			o.Amount = decimal.NewFromInt(o.Amount).Div(s.Ratio).IntPart()
			o.Filled = decimal.NewFromInt(o.Filled).Div(s.Ratio).IntPart()
			if o.Kind == enum.OrderKindLimit {
				o.Limit = o.Limit.Mul(s.Ratio).Round(2)
			}
		}
	}
	return nil
}

// Cancel removes an open order from its queue and marks it cancelled.
// It reports whether the order was open.
func (b *Blotter) Cancel(id uuid.UUID) bool {
	order, ok := b.orders[id]
	if !ok || !order.IsOpen() {
		return false
	}
	order.Status = enum.OrderStatusCancelled

	queue := b.open[order.Asset]
	for i, qid := range queue {
		if qid == id {
			queue = append(queue[:i], queue[i+1:]...)
			break
		}
	}
	if len(queue) == 0 {
		delete(b.open, order.Asset)
	} else {
		b.open[order.Asset] = queue
	}
	return true
}

// OrderByID returns the order record for an id. The record persists
// after the order closes.
func (b *Blotter) OrderByID(id uuid.UUID) (*model.Order, bool) {
	o, ok := b.orders[id]
	return o, ok
}

// OpenOrders returns the asset's open orders in placement order.
func (b *Blotter) OpenOrders(assetID model.AssetID) []*model.Order {
	queue, ok := b.open[assetID]
	if !ok {
		return nil
	}
	out := make([]*model.Order, 0, len(queue))
	for _, id := range queue {
		out = append(out, b.orders[id])
	}
	return out
}

// HasOpenOrders reports whether the asset is present in the open-order
// index. An asset with no open orders is absent, not empty.
func (b *Blotter) HasOpenOrders(assetID model.AssetID) bool {
	_, ok := b.open[assetID]
	return ok
}
