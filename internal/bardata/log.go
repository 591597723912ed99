package bardata

import (
	"context"
	"time"

	"main/internal/barstore"
	"main/internal/model"
)

// LoadLog reads an entire bar log directory into a table source.
func LoadLog(ctx context.Context, dir, prefix string) (*TableSource, error) {
	playback, err := barstore.NewPlayback(barstore.PlaybackConfig{
		Dir:        dir,
		FilePrefix: prefix,
	})
	if err != nil {
		return nil, err
	}
	table := NewTableSource()
	err = playback.Run(ctx, func(header barstore.RecordHeader, bar model.Bar) error {
		table.Set(header.Asset, time.Unix(0, header.TsNano).UTC(), bar)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}
