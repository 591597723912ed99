// Package perf aggregates emitted transactions into running positions.
package perf

import (
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

// Position is the running state for one asset. A net-zero position is
// removed from the tracker entirely.
type Position struct {
	Asset         model.AssetID
	Amount        int64
	CostBasis     decimal.Decimal
	LastSalePrice decimal.Decimal
	LastSaleDate  time.Time
}

// Tracker consumes transactions in emission order and maintains one
// position per asset.
type Tracker struct {
	positions   map[model.AssetID]*Position
	txnCount    int
	commissions decimal.Decimal
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{positions: make(map[model.AssetID]*Position)}
}

// ProcessTransaction folds one fill into the asset's position. When the
// position nets to zero the entry is deleted, so membership probes
// report absence rather than a zero-valued entry.
func (t *Tracker) ProcessTransaction(txn model.Transaction) {
	t.txnCount++
	t.commissions = t.commissions.Add(txn.Commission)

	pos, ok := t.positions[txn.Asset]
	if !ok {
		pos = &Position{Asset: txn.Asset}
		t.positions[txn.Asset] = pos
	}

	next := pos.Amount + txn.Amount
	switch {
	case next == 0:
		delete(t.positions, txn.Asset)
		return
	case pos.Amount == 0 || sameSign(pos.Amount, txn.Amount):
		// Increasing exposure: volume-weighted cost basis.
		total := pos.CostBasis.Mul(decimal.NewFromInt(pos.Amount)).
			Add(txn.Price.Mul(decimal.NewFromInt(txn.Amount)))
		pos.CostBasis = total.Div(decimal.NewFromInt(next))
	case !sameSign(next, pos.Amount):
		// Flipped through zero: the residual carries the fill price.
		pos.CostBasis = txn.Price
	}
	pos.Amount = next
	pos.LastSalePrice = txn.Price
	pos.LastSaleDate = txn.DT
}

// Position returns the running position for an asset.
func (t *Tracker) Position(asset model.AssetID) (Position, bool) {
	pos, ok := t.positions[asset]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// PositionAmount returns the signed position quantity, zero if absent.
func (t *Tracker) PositionAmount(asset model.AssetID) int64 {
	pos, ok := t.positions[asset]
	if !ok {
		return 0
	}
	return pos.Amount
}

// Count returns the number of assets with a non-zero position.
func (t *Tracker) Count() int {
	return len(t.positions)
}

// TransactionCount returns the number of fills processed.
func (t *Tracker) TransactionCount() int {
	return t.txnCount
}

// TotalCommissions returns the accumulated fees.
func (t *Tracker) TotalCommissions() decimal.Decimal {
	return t.commissions
}

func sameSign(a, b int64) bool {
	return (a > 0) == (b > 0)
}
