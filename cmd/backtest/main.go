package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bardata"
	"main/internal/blotter"
	"main/internal/bus"
	"main/internal/calendar"
	"main/internal/mdg"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/ops"
	"main/internal/perf"
	"main/internal/risk"
	"main/internal/sim"
	"main/internal/sink"
	"main/pkg/conn"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	barDir := flag.String("bar-dir", "", "Bar log directory (optional)")
	barPrefix := flag.String("bar-prefix", "", "Bar log file prefix (default: bars)")
	synthetic := flag.Bool("synthetic", false, "Generate a synthetic bar series instead of reading a source")
	basePrice := flag.Float64("base-price", 10.1, "Synthetic base price")
	volume := flag.Int64("volume", 100, "Synthetic bar volume")
	snapshotPath := flag.String("snapshot-path", "", "Position snapshot output (optional)")
	pgDSN := flag.String("pg-dsn", "", "Postgres connection string (optional)")
	pgSink := flag.Bool("pg-sink", false, "Persist transactions to postgres")
	queueSize := flag.Int("queue-size", 1024, "Fill queue capacity for sink delivery")
	pyroscopeServer := flag.String("pyroscope-server", "", "Pyroscope server address (optional)")
	pyroscopeApp := flag.String("pyroscope-app", "backtest", "Pyroscope application name")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("missing config; use -config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-sys.Shutdown()
		cancel()
	}()

	if *pyroscopeServer != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: *pyroscopeApp,
			ServerAddress:   *pyroscopeServer,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	cal, err := calendar.New(loaded.Calendar)
	if err != nil {
		log.Fatalf("calendar init failed: %v", err)
	}
	params, err := sim.NewParams(cal, loaded.Simulation.Start, loaded.Simulation.End,
		loaded.Simulation.Frequency, loaded.Simulation.CapitalBase)
	if err != nil {
		log.Fatalf("simulation params failed: %v", err)
	}

	var client *conn.Client
	if *pgDSN != "" {
		client, err = conn.New(conn.Option{ConnString: *pgDSN})
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		defer func() {
			_ = client.Close()
		}()
	}

	source, err := buildSource(ctx, cal, params, loaded, client, *barDir, *barPrefix, *synthetic, *basePrice, *volume)
	if err != nil {
		log.Fatalf("bar source init failed: %v", err)
	}

	tracker := perf.NewTracker()
	b := blotter.New(loaded.Registry,
		blotter.WithPriceImpact(loaded.Impact),
		blotter.WithCommission(loaded.Commission),
		blotter.WithRiskChecker(risk.NewChecker(loaded.Risk), tracker.PositionAmount),
	)

	collector := sink.NewCollector()
	sinks := []sink.Sink{collector}
	var queue *bus.Queue
	if *pgSink {
		if client == nil {
			log.Fatalf("pg-sink requires -pg-dsn")
		}
		pg, err := sink.NewPG(client)
		if err != nil {
			log.Fatalf("postgres sink init failed: %v", err)
		}
		queue = bus.NewQueue(*queueSize)
		go queue.Run(ctx, func(txn model.Transaction) {
			if err := pg.Write(txn); err != nil {
				logs.Errorf("persist transaction failed, err: %+v", err)
			}
		})
		sinks = append(sinks, queueSink{queue})
	}

	runner, err := sim.NewRunner(sim.RunnerConfig{
		Calendar:   cal,
		Params:     params,
		Blotter:    b,
		Source:     source,
		Tracker:    tracker,
		Sinks:      sinks,
		Placements: placements(loaded.Orders),
		Splits:     splitEvents(loaded.Splits),
	})
	if err != nil {
		log.Fatalf("runner init failed: %v", err)
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	logs.Infof("period: %s ~ %s, days: %d, commissions: %s",
		params.FirstOpen.Format(time.RFC3339), params.LastClose.Format(time.RFC3339),
		params.DaysInPeriod(), summary.Commissions)
	if queue != nil {
		queue.Close()
		if drops := queue.Drops(); drops != 0 {
			logs.Errorf("fill queue dropped %d transactions", drops)
		}
	}

	if *snapshotPath != "" {
		snap := tracker.Snapshot(summary.LastTick)
		if err := perf.WriteSnapshot(*snapshotPath, snap); err != nil {
			log.Fatalf("snapshot write failed: %v", err)
		}
		logs.Infof("snapshot written to %s", *snapshotPath)
	}
}

// buildSource picks the bar source: synthetic generation, a bar log
// directory, or postgres.
func buildSource(ctx context.Context, cal *calendar.Calendar, params sim.Params, loaded ops.Loaded,
	client *conn.Client, barDir, barPrefix string, synthetic bool, basePrice float64, volume int64) (bardata.Source, error) {
	switch {
	case synthetic:
		return syntheticSource(cal, params, loaded, basePrice, volume)
	case barDir != "":
		return bardata.LoadLog(ctx, barDir, barPrefix)
	case client != nil:
		return bardata.LoadPG(client.DB(), assetIDs(loaded), params.FirstOpen, params.LastClose)
	default:
		return nil, errors.New("no bar source; use -synthetic, -bar-dir or -pg-dsn")
	}
}

func syntheticSource(cal *calendar.Calendar, params sim.Params, loaded ops.Loaded, basePrice float64, volume int64) (bardata.Source, error) {
	table := bardata.NewTableSource()
	for _, id := range assetIDs(loaded) {
		gen, err := mdg.NewGenerator(mdg.Config{
			BasePrice: decimal.NewFromFloat(basePrice),
			Volume:    volume,
		})
		if err != nil {
			return nil, err
		}
		for _, day := range params.TradingDays {
			ticks, err := sessionTicks(cal, params, day)
			if err != nil {
				return nil, err
			}
			gen.FillTable(table, id, ticks)
		}
	}
	return table, nil
}

func sessionTicks(cal *calendar.Calendar, params sim.Params, day time.Time) ([]time.Time, error) {
	if params.Frequency == enum.DataFrequencyDaily {
		return []time.Time{day}, nil
	}
	return cal.MarketMinutesForSession(day)
}

func assetIDs(loaded ops.Loaded) []model.AssetID {
	ids := make([]model.AssetID, 0, loaded.Registry.Count())
	for i := 0; i < loaded.Registry.Count(); i++ {
		if a, ok := loaded.Registry.At(i); ok {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func placements(orders []ops.OrderSpec) []sim.Placement {
	out := make([]sim.Placement, 0, len(orders))
	for _, o := range orders {
		out = append(out, sim.Placement{DT: o.DT, Asset: o.Asset, Amount: o.Amount, Style: o.Style})
	}
	return out
}

func splitEvents(splits []ops.SplitSpec) []sim.SplitEvent {
	out := make([]sim.SplitEvent, 0, len(splits))
	for _, s := range splits {
		out = append(out, sim.SplitEvent{DT: s.DT, Split: s.Split})
	}
	return out
}

// queueSink publishes fills onto the bus without blocking the tick loop.
type queueSink struct {
	queue *bus.Queue
}

func (s queueSink) Write(txn model.Transaction) error {
	return s.queue.TryPublish(txn)
}
