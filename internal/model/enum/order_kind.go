package enum

type OrderKind uint8

const (
	_order_kind_beg OrderKind = iota
	OrderKindMarket
	OrderKindLimit
	_order_kind_end
)

func (k OrderKind) IsAvailable() bool {
	return k > _order_kind_beg && k < _order_kind_end
}

func (k OrderKind) String() string {
	switch k {
	case OrderKindMarket:
		return "market"
	case OrderKindLimit:
		return "limit"
	default:
		return "unknown"
	}
}
