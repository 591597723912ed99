package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one immutable fill: a signed quantity of one order
// executed at one price and time.
type Transaction struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Asset      AssetID
	Amount     int64
	Price      decimal.Decimal
	DT         time.Time
	Commission decimal.Decimal
}

// Commission is the fee charged alongside one transaction.
type Commission struct {
	OrderID uuid.UUID
	Asset   AssetID
	Cost    decimal.Decimal
	DT      time.Time
}
