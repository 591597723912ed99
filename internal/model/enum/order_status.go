package enum

type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusOpen
	OrderStatusPartFilled
	OrderStatusFilled
	OrderStatusCancelled
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

// IsTerminal reports whether no further fills can happen.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusFilled || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "open"
	case OrderStatusPartFilled:
		return "part_filled"
	case OrderStatusFilled:
		return "filled"
	case OrderStatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
