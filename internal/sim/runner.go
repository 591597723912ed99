// Package sim drives a backtest tick-by-tick: it advances the blotter
// clock over the calendar, applies scheduled placements and corporate
// actions, and routes emitted fills to the tracker and sinks.
package sim

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/bardata"
	"main/internal/blotter"
	"main/internal/calendar"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/perf"
	"main/internal/sink"
)

// RunnerConfig wires one simulation run.
type RunnerConfig struct {
	Calendar   *calendar.Calendar
	Params     Params
	Blotter    *blotter.Blotter
	Source     bardata.Source
	Tracker    *perf.Tracker
	Sinks      []sink.Sink
	Assets     []model.AssetID
	Placements []Placement
	Splits     []SplitEvent
}

// Summary reports the outcome of a run.
type Summary struct {
	Ticks       int
	Orders      int
	TxnCount    int
	TotalVolume int64
	Commissions decimal.Decimal
	LastTick    time.Time
}

// Runner executes one simulation. Runs are single-threaded; one runner
// owns its blotter and tracker for the simulation's lifetime.
type Runner struct {
	cfg      RunnerConfig
	orderIDs []uuid.UUID
}

// NewRunner sorts the schedules and creates a runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Calendar == nil || cfg.Blotter == nil || cfg.Source == nil {
		return nil, errors.New("runner requires calendar, blotter and source")
	}
	if cfg.Tracker == nil {
		cfg.Tracker = perf.NewTracker()
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = assetUniverse(cfg.Placements)
	}
	sort.SliceStable(cfg.Placements, func(i, j int) bool {
		return cfg.Placements[i].DT.Before(cfg.Placements[j].DT)
	})
	sort.SliceStable(cfg.Splits, func(i, j int) bool {
		return cfg.Splits[i].DT.Before(cfg.Splits[j].DT)
	})
	return &Runner{cfg: cfg}, nil
}

// OrderIDs returns the ids of placed orders in placement order.
func (r *Runner) OrderIDs() []uuid.UUID {
	return r.orderIDs
}

// Run walks every tick of the period. A placement tick submits one
// order; every other tick asks the blotter for fills against the tick's
// bar snapshot. Clock regression or placement failure aborts the run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	nextPlacement := 0
	nextSplit := 0

	for _, day := range r.cfg.Params.TradingDays {
		ticks, err := r.sessionTicks(day)
		if err != nil {
			return summary, err
		}
		for _, tick := range ticks {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if err := r.cfg.Blotter.SetCurrentDT(tick); err != nil {
				return summary, errors.Wrap(err, "advance simulation clock")
			}
			summary.Ticks++
			summary.LastTick = tick

			for nextSplit < len(r.cfg.Splits) && !r.cfg.Splits[nextSplit].DT.After(tick) {
				if err := r.cfg.Blotter.ProcessSplits([]model.Split{r.cfg.Splits[nextSplit].Split}); err != nil {
					return summary, errors.Wrap(err, "process split")
				}
				nextSplit++
			}

			if nextPlacement < len(r.cfg.Placements) && !r.cfg.Placements[nextPlacement].DT.After(tick) {
				p := r.cfg.Placements[nextPlacement]
				nextPlacement++
				id, err := r.cfg.Blotter.Order(p.Asset, p.Amount, p.Style)
				if err != nil {
					return summary, errors.Wrapf(err, "place order: asset: %d, amount: %d", p.Asset, p.Amount)
				}
				r.orderIDs = append(r.orderIDs, id)
				summary.Orders++
				continue
			}

			snap := bardata.SnapshotAt(r.cfg.Source, tick, r.cfg.Assets)
			txns, fees := r.cfg.Blotter.GetTransactions(snap)
			for _, txn := range txns {
				r.cfg.Tracker.ProcessTransaction(txn)
				summary.TxnCount++
				summary.TotalVolume += txn.Amount
				for _, s := range r.cfg.Sinks {
					if err := s.Write(txn); err != nil {
						logs.Errorf("sink write failed, err: %+v", err)
					}
				}
			}
			for _, fee := range fees {
				summary.Commissions = summary.Commissions.Add(fee.Cost)
			}
		}
	}

	logs.Infof("simulation finished. ticks: %d, orders: %d, txns: %d, volume: %d",
		summary.Ticks, summary.Orders, summary.TxnCount, summary.TotalVolume)
	return summary, nil
}

// sessionTicks returns the tick sequence for one trading day: every
// session minute at minute frequency, the session date itself at daily
// frequency.
func (r *Runner) sessionTicks(day time.Time) ([]time.Time, error) {
	if r.cfg.Params.Frequency == enum.DataFrequencyDaily {
		return []time.Time{day}, nil
	}
	return r.cfg.Calendar.MarketMinutesForSession(day)
}

func assetUniverse(placements []Placement) []model.AssetID {
	seen := make(map[model.AssetID]struct{})
	var assets []model.AssetID
	for _, p := range placements {
		if _, ok := seen[p.Asset]; ok {
			continue
		}
		seen[p.Asset] = struct{}{}
		assets = append(assets, p.Asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i] < assets[j] })
	return assets
}
