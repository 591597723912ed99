// Package ops loads the backtest configuration file and resolves it into
// ready-to-use components.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"main/internal/asset"
	"main/internal/calendar"
	"main/internal/fill"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/risk"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Assets     []AssetConfig    `json:"assets"`
	Calendar   calendar.Config  `json:"calendar"`
	Fill       FillConfig       `json:"fill"`
	Commission CommissionConfig `json:"commission"`
	Risk       risk.Config      `json:"risk"`
	Simulation SimulationConfig `json:"simulation"`
	Orders     []OrderConfig    `json:"orders"`
	Splits     []SplitConfig    `json:"splits"`
}

// AssetConfig describes one tradable asset entry.
type AssetConfig struct {
	ID       uint32 `json:"id"`
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// FillConfig selects the price impact model.
type FillConfig struct {
	Model       string `json:"model"`
	VolumeLimit string `json:"volumeLimit"`
	Spread      string `json:"spread"`
}

// CommissionConfig selects the commission model.
type CommissionConfig struct {
	Model string `json:"model"`
	Cost  string `json:"cost"`
}

// SimulationConfig describes the simulated period.
type SimulationConfig struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Frequency   string `json:"frequency"`
	CapitalBase string `json:"capitalBase"`
}

// OrderConfig describes one scheduled order.
type OrderConfig struct {
	DT     string `json:"dt"`
	Symbol string `json:"symbol"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
	Limit  string `json:"limit"`
}

// SplitConfig describes one scheduled corporate action.
type SplitConfig struct {
	DT     string `json:"dt"`
	Symbol string `json:"symbol"`
	Ratio  string `json:"ratio"`
}

// OrderSpec is one resolved scheduled order.
type OrderSpec struct {
	DT     time.Time
	Asset  model.AssetID
	Amount int64
	Style  model.OrderStyle
}

// SplitSpec is one resolved corporate action.
type SplitSpec struct {
	DT    time.Time
	Split model.Split
}

// SimulationSpec is the resolved simulated period.
type SimulationSpec struct {
	Start       time.Time
	End         time.Time
	Frequency   enum.DataFrequency
	CapitalBase decimal.Decimal
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Registry   *asset.Registry
	Calendar   calendar.Config
	Impact     fill.PriceImpactModel
	Commission fill.CommissionModel
	Risk       risk.Config
	Simulation SimulationSpec
	Orders     []OrderSpec
	Splits     []SplitSpec
}

// Load reads a JSON config file and resolves every section.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	registry, err := buildRegistry(cfg.Assets)
	if err != nil {
		return Loaded{}, err
	}
	impact, err := resolveImpact(cfg.Fill)
	if err != nil {
		return Loaded{}, err
	}
	commission, err := resolveCommission(cfg.Commission)
	if err != nil {
		return Loaded{}, err
	}
	simulation, err := resolveSimulation(cfg.Simulation)
	if err != nil {
		return Loaded{}, err
	}
	orders, err := resolveOrders(cfg.Orders, registry)
	if err != nil {
		return Loaded{}, err
	}
	splits, err := resolveSplits(cfg.Splits, registry)
	if err != nil {
		return Loaded{}, err
	}
	return Loaded{
		Registry:   registry,
		Calendar:   cfg.Calendar,
		Impact:     impact,
		Commission: commission,
		Risk:       cfg.Risk,
		Simulation: simulation,
		Orders:     orders,
		Splits:     splits,
	}, nil
}

func buildRegistry(assets []AssetConfig) (*asset.Registry, error) {
	if len(assets) == 0 {
		return nil, fmt.Errorf("config has no assets")
	}
	reg := asset.NewRegistry()
	for _, a := range assets {
		if err := reg.Add(asset.Asset{
			ID:       model.AssetID(a.ID),
			Symbol:   a.Symbol,
			Exchange: a.Exchange,
		}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func resolveImpact(cfg FillConfig) (fill.PriceImpactModel, error) {
	switch cfg.Model {
	case "", "volume_share":
		limit, err := parseDecimal(cfg.VolumeLimit, decimal.Decimal{})
		if err != nil {
			return nil, fmt.Errorf("invalid fill volumeLimit: %w", err)
		}
		return fill.NewVolumeShare(limit), nil
	case "fixed_slippage":
		spread, err := parseDecimal(cfg.Spread, decimal.Decimal{})
		if err != nil {
			return nil, fmt.Errorf("invalid fill spread: %w", err)
		}
		return fill.NewFixedSlippage(spread), nil
	default:
		return nil, fmt.Errorf("unknown fill model: %s", cfg.Model)
	}
}

func resolveCommission(cfg CommissionConfig) (fill.CommissionModel, error) {
	cost, err := parseDecimal(cfg.Cost, decimal.Decimal{})
	if err != nil {
		return nil, fmt.Errorf("invalid commission cost: %w", err)
	}
	switch cfg.Model {
	case "", "none":
		return fill.NoCommission{}, nil
	case "per_share":
		return fill.PerShare{Cost: cost}, nil
	case "per_trade":
		return fill.PerTrade{Cost: cost}, nil
	default:
		return nil, fmt.Errorf("unknown commission model: %s", cfg.Model)
	}
}

func resolveSimulation(cfg SimulationConfig) (SimulationSpec, error) {
	start, err := time.Parse("2006-01-02", cfg.Start)
	if err != nil {
		return SimulationSpec{}, fmt.Errorf("invalid simulation start: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.End)
	if err != nil {
		return SimulationSpec{}, fmt.Errorf("invalid simulation end: %w", err)
	}
	freq := enum.DataFrequencyMinute
	switch cfg.Frequency {
	case "", "minute":
	case "daily":
		freq = enum.DataFrequencyDaily
	default:
		return SimulationSpec{}, fmt.Errorf("unknown data frequency: %s", cfg.Frequency)
	}
	capitalBase, err := parseDecimal(cfg.CapitalBase, decimal.NewFromInt(100000))
	if err != nil {
		return SimulationSpec{}, fmt.Errorf("invalid capital base: %w", err)
	}
	return SimulationSpec{Start: start, End: end, Frequency: freq, CapitalBase: capitalBase}, nil
}

func resolveOrders(orders []OrderConfig, reg *asset.Registry) ([]OrderSpec, error) {
	specs := make([]OrderSpec, 0, len(orders))
	for _, o := range orders {
		dt, err := time.Parse(time.RFC3339, o.DT)
		if err != nil {
			return nil, fmt.Errorf("invalid order dt: %w", err)
		}
		id, ok := reg.IDBySymbol(o.Symbol)
		if !ok {
			return nil, fmt.Errorf("order symbol not found: %s", o.Symbol)
		}
		if o.Amount == 0 {
			return nil, fmt.Errorf("order amount must be non-zero: %s", o.Symbol)
		}
		style := model.MarketOrder()
		switch o.Kind {
		case "", "market":
		case "limit":
			limit, err := decimal.NewFromString(o.Limit)
			if err != nil {
				return nil, fmt.Errorf("invalid order limit: %w", err)
			}
			style = model.LimitOrder(limit)
		default:
			return nil, fmt.Errorf("unknown order kind: %s", o.Kind)
		}
		specs = append(specs, OrderSpec{DT: dt.UTC(), Asset: id, Amount: o.Amount, Style: style})
	}
	return specs, nil
}

func resolveSplits(splits []SplitConfig, reg *asset.Registry) ([]SplitSpec, error) {
	specs := make([]SplitSpec, 0, len(splits))
	for _, s := range splits {
		dt, err := time.Parse(time.RFC3339, s.DT)
		if err != nil {
			return nil, fmt.Errorf("invalid split dt: %w", err)
		}
		id, ok := reg.IDBySymbol(s.Symbol)
		if !ok {
			return nil, fmt.Errorf("split symbol not found: %s", s.Symbol)
		}
		ratio, err := decimal.NewFromString(s.Ratio)
		if err != nil {
			return nil, fmt.Errorf("invalid split ratio: %w", err)
		}
		specs = append(specs, SplitSpec{DT: dt.UTC(), Split: model.Split{Asset: id, Ratio: ratio}})
	}
	return specs, nil
}

func parseDecimal(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if raw == "" {
		return fallback, nil
	}
	return decimal.NewFromString(raw)
}
