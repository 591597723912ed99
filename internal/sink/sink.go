// Package sink delivers emitted transactions to downstream consumers.
package sink

import "main/internal/model"

// Sink consumes transactions in emission order.
type Sink interface {
	Write(txn model.Transaction) error
}

// Collector buffers transactions in memory; it backs tests and the run
// summary.
type Collector struct {
	txns []model.Transaction
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Write(txn model.Transaction) error {
	c.txns = append(c.txns, txn)
	return nil
}

// Transactions returns the collected fills in emission order.
func (c *Collector) Transactions() []model.Transaction {
	return c.txns
}

// TotalVolume returns the signed sum of collected fill quantities.
func (c *Collector) TotalVolume() int64 {
	var total int64
	for _, txn := range c.txns {
		total += txn.Amount
	}
	return total
}
