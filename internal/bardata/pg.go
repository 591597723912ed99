package bardata

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"main/internal/model"
)

// BarRow is the postgres row layout for one bar.
type BarRow struct {
	ID      uint64          `gorm:"primaryKey"`
	AssetID uint32          `gorm:"uniqueIndex:idx_bars_asset_ts"`
	Ts      int64           `gorm:"uniqueIndex:idx_bars_asset_ts"`
	Open    decimal.Decimal `gorm:"type:numeric"`
	High    decimal.Decimal `gorm:"type:numeric"`
	Low     decimal.Decimal `gorm:"type:numeric"`
	Close   decimal.Decimal `gorm:"type:numeric"`
	Volume  int64
}

// TableName maps BarRow to the bars table.
func (BarRow) TableName() string { return "bars" }

// LoadPG reads the bar range for the given assets from postgres into a
// table source. Timestamps are stored as UTC nanoseconds.
func LoadPG(db *gorm.DB, assets []model.AssetID, start, end time.Time) (*TableSource, error) {
	ids := make([]uint32, len(assets))
	for i, a := range assets {
		ids[i] = uint32(a)
	}

	var rows []BarRow
	err := db.
		Where("asset_id IN ? AND ts >= ? AND ts <= ?", ids, start.UTC().UnixNano(), end.UTC().UnixNano()).
		Order("ts").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	table := NewTableSource()
	for _, row := range rows {
		table.Set(model.AssetID(row.AssetID), time.Unix(0, row.Ts).UTC(), model.Bar{
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	return table, nil
}
