package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// OrderStyle selects market or limit execution for a new order.
type OrderStyle struct {
	Kind  enum.OrderKind
	Limit decimal.Decimal
}

// MarketOrder executes at the prevailing bar price.
func MarketOrder() OrderStyle {
	return OrderStyle{Kind: enum.OrderKindMarket}
}

// LimitOrder executes only when the bar's traded range crosses the limit.
func LimitOrder(limit decimal.Decimal) OrderStyle {
	return OrderStyle{Kind: enum.OrderKindLimit, Limit: limit}
}

// Order is one user intent. Amount and Filled share a sign convention:
// positive buys, negative sells. |Filled| <= |Amount| at all times.
type Order struct {
	ID        uuid.UUID
	Asset     AssetID
	Amount    int64
	Filled    int64
	Kind      enum.OrderKind
	Limit     decimal.Decimal
	Status    enum.OrderStatus
	CreatedAt time.Time
}

// Direction returns +1 for buys and -1 for sells.
func (o *Order) Direction() int64 {
	if o.Amount < 0 {
		return -1
	}
	return 1
}

// Remaining returns the signed unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Amount - o.Filled
}

// IsOpen reports whether the order can still fill.
func (o *Order) IsOpen() bool {
	return !o.Status.IsTerminal()
}
