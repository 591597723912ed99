package model

import "github.com/shopspring/decimal"

// AssetID is the numeric identifier for a tradable asset.
type AssetID uint32

// Bar is the aggregate trading activity of one asset over the interval
// ending at the bar's timestamp.
type Bar struct {
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Split is one corporate-action event. Ratio is the post-event price
// multiplier: 0.3333 is roughly a 3-for-1 split.
type Split struct {
	Asset AssetID
	Ratio decimal.Decimal
}
