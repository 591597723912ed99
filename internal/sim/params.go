package sim

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"

	"main/internal/calendar"
	"main/internal/model"
	"main/internal/model/enum"
)

var ErrEmptyPeriod = errors.New("simulation period contains no trading days")

// Params define one simulation run, resolved against the calendar.
type Params struct {
	Start       time.Time
	End         time.Time
	Frequency   enum.DataFrequency
	CapitalBase decimal.Decimal

	TradingDays []time.Time
	FirstOpen   time.Time
	LastClose   time.Time
}

// NewParams resolves the period boundaries against the calendar.
func NewParams(cal *calendar.Calendar, start, end time.Time, freq enum.DataFrequency, capitalBase decimal.Decimal) (Params, error) {
	if !freq.IsAvailable() {
		freq = enum.DataFrequencyMinute
	}
	days := cal.TradingDaysBetween(start, end)
	if len(days) == 0 {
		return Params{}, errors.Wrapf(ErrEmptyPeriod, "start: %s, end: %s", start, end)
	}
	firstOpen, err := cal.SessionOpen(days[0])
	if err != nil {
		return Params{}, err
	}
	lastClose, err := cal.SessionClose(days[len(days)-1])
	if err != nil {
		return Params{}, err
	}
	return Params{
		Start:       start,
		End:         end,
		Frequency:   freq,
		CapitalBase: capitalBase,
		TradingDays: days,
		FirstOpen:   firstOpen,
		LastClose:   lastClose,
	}, nil
}

// DaysInPeriod returns the number of trading days covered.
func (p Params) DaysInPeriod() int {
	return len(p.TradingDays)
}

// Placement is one scheduled order submission.
type Placement struct {
	DT     time.Time
	Asset  model.AssetID
	Amount int64
	Style  model.OrderStyle
}

// SplitEvent is one scheduled corporate action.
type SplitEvent struct {
	DT    time.Time
	Split model.Split
}

// SchedulePlacements spaces count placements from start at the given
// interval, rolling any instant that lands outside a session to the next
// session's open.
func SchedulePlacements(cal *calendar.Calendar, start time.Time, interval time.Duration, count int, build func(i int) (model.AssetID, int64, model.OrderStyle)) ([]Placement, error) {
	placements := make([]Placement, 0, count)
	dt := start
	for i := 0; i < count; i++ {
		normalized, err := normalize(cal, dt)
		if err != nil {
			return nil, err
		}
		dt = normalized
		asset, amount, style := build(i)
		placements = append(placements, Placement{DT: dt, Asset: asset, Amount: amount, Style: style})
		dt = dt.Add(interval)
	}
	return placements, nil
}

// normalize rolls an instant falling outside regular hours to the next
// session open.
func normalize(cal *calendar.Calendar, dt time.Time) (time.Time, error) {
	if cal.IsTradingDay(dt) {
		open, err := cal.SessionOpen(dt)
		if err != nil {
			return time.Time{}, err
		}
		close, err := cal.SessionClose(dt)
		if err != nil {
			return time.Time{}, err
		}
		if !dt.Before(open) && !dt.After(close) {
			return dt, nil
		}
		if dt.Before(open) {
			return open, nil
		}
	}
	next, err := cal.NextTradingDay(dt)
	if err != nil {
		return time.Time{}, err
	}
	return cal.SessionOpen(next)
}
