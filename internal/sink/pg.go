package sink

import (
	"github.com/shopspring/decimal"

	"main/internal/model"
	"main/pkg/conn"
)

// TransactionRow is the postgres row layout for one fill.
type TransactionRow struct {
	ID         uint64          `gorm:"primaryKey"`
	TxnID      string          `gorm:"uniqueIndex;size:36"`
	OrderID    string          `gorm:"index;size:36"`
	AssetID    uint32          `gorm:"index"`
	Amount     int64
	Price      decimal.Decimal `gorm:"type:numeric"`
	Ts         int64           `gorm:"index"`
	Commission decimal.Decimal `gorm:"type:numeric"`
}

// TableName maps TransactionRow to the transactions table.
func (TransactionRow) TableName() string { return "transactions" }

// PG persists transactions to postgres.
type PG struct {
	client *conn.Client
}

// NewPG migrates the transactions table and returns the sink.
func NewPG(client *conn.Client) (*PG, error) {
	if err := client.Migrate(&TransactionRow{}); err != nil {
		return nil, err
	}
	return &PG{client: client}, nil
}

func (s *PG) Write(txn model.Transaction) error {
	row := TransactionRow{
		TxnID:      txn.ID.String(),
		OrderID:    txn.OrderID.String(),
		AssetID:    uint32(txn.Asset),
		Amount:     txn.Amount,
		Price:      txn.Price,
		Ts:         txn.DT.UTC().UnixNano(),
		Commission: txn.Commission,
	}
	return s.client.DB().Create(&row).Error
}
