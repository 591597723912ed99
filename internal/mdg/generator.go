// Package mdg generates deterministic synthetic bar series for fixtures
// and for seeding bar logs.
package mdg

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/bardata"
	"main/internal/barstore"
	"main/internal/model"
)

var ErrInvalidVolume = errors.New("bar volume must be positive")

// Config controls the generated series. A zero drift produces a flat
// price series.
type Config struct {
	BasePrice decimal.Decimal
	Drift     decimal.Decimal
	Volume    int64
}

// Generator creates the next bar in a deterministic sequence.
type Generator struct {
	cfg  Config
	step int64
}

// NewGenerator validates the config and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Volume <= 0 {
		return nil, ErrInvalidVolume
	}
	if cfg.BasePrice.Sign() <= 0 {
		cfg.BasePrice = decimal.NewFromFloat(10.1)
	}
	return &Generator{cfg: cfg}, nil
}

// Next returns the next bar in sequence.
func (g *Generator) Next() model.Bar {
	price := g.cfg.BasePrice.Add(g.cfg.Drift.Mul(decimal.NewFromInt(g.step)))
	g.step++
	return model.Bar{
		Open:   price,
		High:   price,
		Low:    price,
		Close:  price,
		Volume: g.cfg.Volume,
	}
}

// FillTable writes one generated bar per tick into a table source.
func (g *Generator) FillTable(table *bardata.TableSource, asset model.AssetID, ticks []time.Time) {
	for _, tick := range ticks {
		table.Set(asset, tick, g.Next())
	}
}

// WriteLog appends one generated bar per tick to a bar log.
func (g *Generator) WriteLog(writer *barstore.Writer, asset model.AssetID, ticks []time.Time) error {
	for _, tick := range ticks {
		header := barstore.RecordHeader{Asset: asset, TsNano: tick.UTC().UnixNano()}
		if err := writer.Append(header, g.Next()); err != nil {
			return errors.Wrap(err, "append generated bar")
		}
	}
	return nil
}
