package main

import (
	"flag"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"

	"main/internal/barstore"
	"main/internal/calendar"
	"main/internal/mdg"
	"main/internal/model/enum"
	"main/internal/ops"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	outDir := flag.String("out-dir", "testdata/bars", "Bar log output directory")
	prefix := flag.String("prefix", "", "Bar log file prefix (default: bars)")
	start := flag.String("start", "", "First session date (YYYY-MM-DD, default: simulation start)")
	end := flag.String("end", "", "Last session date (YYYY-MM-DD, default: simulation end)")
	basePrice := flag.Float64("base-price", 10.1, "Base price")
	drift := flag.Float64("drift", 0, "Per-bar price drift")
	volume := flag.Int64("volume", 100, "Bar volume")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("missing config; use -config")
	}
	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	cal, err := calendar.New(loaded.Calendar)
	if err != nil {
		log.Fatalf("calendar init failed: %v", err)
	}
	first, last, err := resolvePeriod(loaded, *start, *end)
	if err != nil {
		log.Fatalf("invalid period: %v", err)
	}
	days := cal.TradingDaysBetween(first, last)
	if len(days) == 0 {
		log.Fatalf("period contains no trading days")
	}

	writer, err := barstore.NewWriter(barstore.WriterConfig{Dir: *outDir, FilePrefix: *prefix})
	if err != nil {
		log.Fatalf("bar log init failed: %v", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logs.Errorf("bar log close failed, err: %+v", err)
		}
	}()

	total := 0
	for i := 0; i < loaded.Registry.Count(); i++ {
		asset, ok := loaded.Registry.At(i)
		if !ok {
			continue
		}
		gen, err := mdg.NewGenerator(mdg.Config{
			BasePrice: decimal.NewFromFloat(*basePrice),
			Drift:     decimal.NewFromFloat(*drift),
			Volume:    *volume,
		})
		if err != nil {
			log.Fatalf("generator init failed: %v", err)
		}
		for _, day := range days {
			ticks, err := sessionTicks(cal, loaded.Simulation.Frequency, day)
			if err != nil {
				log.Fatalf("session minutes failed: %v", err)
			}
			if err := gen.WriteLog(writer, asset.ID, ticks); err != nil {
				log.Fatalf("bar write failed: %v", err)
			}
			total += len(ticks)
		}
	}
	logs.Infof("generated %d bars for %d assets over %d sessions into %s",
		total, loaded.Registry.Count(), len(days), *outDir)
}

func resolvePeriod(loaded ops.Loaded, start, end string) (time.Time, time.Time, error) {
	first := loaded.Simulation.Start
	last := loaded.Simulation.End
	if start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		first = parsed
	}
	if end != "" {
		parsed, err := time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		last = parsed
	}
	return first, last, nil
}

func sessionTicks(cal *calendar.Calendar, freq enum.DataFrequency, day time.Time) ([]time.Time, error) {
	if freq == enum.DataFrequencyDaily {
		return []time.Time{day}, nil
	}
	return cal.MarketMinutesForSession(day)
}
