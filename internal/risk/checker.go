// Package risk applies optional pre-trade limits at order placement.
package risk

import (
	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrKillSwitch  = errors.New("risk kill switch engaged")
	ErrMaxOrderQty = errors.New("risk max order quantity exceeded")
	ErrMaxPosition = errors.New("risk max position exceeded")
)

// Config defines static placement limits. Zero values disable a check.
type Config struct {
	KillSwitch  bool  `json:"killSwitch"`
	MaxOrderQty int64 `json:"maxOrderQty"`
	MaxPosition int64 `json:"maxPosition"`
}

// Checker evaluates placement intents against static limits.
type Checker struct {
	cfg Config
}

// NewChecker creates a checker with static limits.
func NewChecker(cfg Config) *Checker {
	return &Checker{cfg: cfg}
}

// Check validates a signed order amount against the limits. position is
// the caller-supplied signed position on the asset; filled quantity
// only, open-order exposure is not counted.
func (c *Checker) Check(asset model.AssetID, amount, position int64) error {
	if c == nil {
		return nil
	}
	if c.cfg.KillSwitch {
		return ErrKillSwitch
	}
	qty := amount
	if qty < 0 {
		qty = -qty
	}
	if c.cfg.MaxOrderQty > 0 && qty > c.cfg.MaxOrderQty {
		return errors.Wrapf(ErrMaxOrderQty, "asset: %d, qty: %d", asset, qty)
	}
	if c.cfg.MaxPosition > 0 {
		next := position + amount
		if next < 0 {
			next = -next
		}
		if next > c.cfg.MaxPosition {
			return errors.Wrapf(ErrMaxPosition, "asset: %d, position: %d", asset, position+amount)
		}
	}
	return nil
}
