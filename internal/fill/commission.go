package fill

import (
	"github.com/shopspring/decimal"

	"main/internal/model"
)

// CommissionModel computes the fee charged for one transaction.
type CommissionModel interface {
	Calculate(txn model.Transaction) decimal.Decimal
}

// NoCommission charges nothing.
type NoCommission struct{}

func (NoCommission) Calculate(model.Transaction) decimal.Decimal {
	return decimal.Decimal{}
}

// PerShare charges a flat cost per executed share.
type PerShare struct {
	Cost decimal.Decimal
}

func (m PerShare) Calculate(txn model.Transaction) decimal.Decimal {
	qty := txn.Amount
	if qty < 0 {
		qty = -qty
	}
	return m.Cost.Mul(decimal.NewFromInt(qty))
}

// PerTrade charges a flat cost per transaction.
type PerTrade struct {
	Cost decimal.Decimal
}

func (m PerTrade) Calculate(model.Transaction) decimal.Decimal {
	return m.Cost
}
