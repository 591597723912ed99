// Package calendar enumerates valid trading sessions and intraday minutes
// for the simulated exchange. All returned timestamps are UTC; session
// boundaries are defined by clock times in the exchange timezone.
package calendar

import (
	"sort"
	"time"

	"github.com/yanun0323/errors"
)

var (
	ErrInvalidConfig      = errors.New("calendar invalid config")
	ErrNotTradingDay      = errors.New("calendar date is not a trading day")
	ErrNotMarketMinute    = errors.New("calendar instant is not a market minute")
	ErrInvalidWindowCount = errors.New("calendar window count must be positive")
	ErrInvalidWindowStep  = errors.New("calendar window step must be +1 or -1")
	ErrExhausted          = errors.New("calendar window exceeds covered range")
)

// Calendar holds the precomputed trading-day sequence. It is immutable
// after construction; every query is a pure function of this state.
type Calendar struct {
	loc            *time.Location
	openHour       int
	openMinute     int
	closeHour      int
	closeMinute    int
	sessionMinutes int
	days           []time.Time
	index          map[int64]int
}

// New precomputes the trading-day sequence for the configured year range,
// excluding weekends and the US holiday set.
func New(cfg Config) (*Calendar, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "load calendar timezone")
	}
	extra, err := cfg.parseExtraHolidays()
	if err != nil {
		return nil, errors.Wrap(err, "parse extra holidays")
	}

	holidays := make(map[int64]struct{})
	for year := cfg.FirstYear; year <= cfg.LastYear; year++ {
		for _, h := range usHolidays(year) {
			holidays[h.Unix()] = struct{}{}
		}
	}
	for _, h := range extra {
		holidays[date(h.Year(), h.Month(), h.Day()).Unix()] = struct{}{}
	}

	cal := &Calendar{
		loc:            loc,
		openHour:       cfg.OpenHour,
		openMinute:     cfg.OpenMinute,
		closeHour:      cfg.CloseHour,
		closeMinute:    cfg.CloseMinute,
		sessionMinutes: (cfg.CloseHour*60 + cfg.CloseMinute) - (cfg.OpenHour*60 + cfg.OpenMinute) + 1,
		index:          make(map[int64]int),
	}

	first := date(cfg.FirstYear, time.January, 1)
	last := date(cfg.LastYear, time.December, 31)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := holidays[d.Unix()]; ok {
			continue
		}
		cal.index[d.Unix()] = len(cal.days)
		cal.days = append(cal.days, d)
	}
	return cal, nil
}

// SessionMinutes returns the fixed number of minutes per session.
func (c *Calendar) SessionMinutes() int {
	return c.sessionMinutes
}

// FirstTradingDay returns the earliest covered session date.
func (c *Calendar) FirstTradingDay() time.Time {
	return c.days[0]
}

// LastTradingDay returns the latest covered session date.
func (c *Calendar) LastTradingDay() time.Time {
	return c.days[len(c.days)-1]
}

// IsTradingDay reports whether the instant falls on a trading session date.
func (c *Calendar) IsTradingDay(t time.Time) bool {
	_, ok := c.sessionIndex(t)
	return ok
}

// TradingDaysBetween returns all trading days in [start, end], ascending.
func (c *Calendar) TradingDaysBetween(start, end time.Time) []time.Time {
	lo := sessionDate(start)
	hi := sessionDate(end)
	i := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(lo) })
	j := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(hi) })
	if i >= j {
		return nil
	}
	out := make([]time.Time, j-i)
	copy(out, c.days[i:j])
	return out
}

// NextTradingDay returns the first trading day strictly after t.
func (c *Calendar) NextTradingDay(t time.Time) (time.Time, error) {
	d := sessionDate(t)
	i := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(d) })
	if i >= len(c.days) {
		return time.Time{}, ErrExhausted
	}
	return c.days[i], nil
}

// SessionOpen returns the first market minute of the session on t's date.
func (c *Calendar) SessionOpen(t time.Time) (time.Time, error) {
	idx, ok := c.sessionIndex(t)
	if !ok {
		return time.Time{}, ErrNotTradingDay
	}
	return c.open(idx), nil
}

// SessionClose returns the last market minute of the session on t's date.
func (c *Calendar) SessionClose(t time.Time) (time.Time, error) {
	idx, ok := c.sessionIndex(t)
	if !ok {
		return time.Time{}, ErrNotTradingDay
	}
	return c.open(idx).Add(time.Duration(c.sessionMinutes-1) * time.Minute), nil
}

// MarketMinutesForSession returns every minute of the session on t's date,
// open through close inclusive, ascending.
func (c *Calendar) MarketMinutesForSession(t time.Time) ([]time.Time, error) {
	idx, ok := c.sessionIndex(t)
	if !ok {
		return nil, ErrNotTradingDay
	}
	open := c.open(idx)
	minutes := make([]time.Time, c.sessionMinutes)
	for i := range minutes {
		minutes[i] = open.Add(time.Duration(i) * time.Minute)
	}
	return minutes, nil
}

// MarketMinuteWindow walks count market minutes from start in the given
// direction, rolling across session boundaries and skipping non-trading
// days. The start instant is always the first element.
func (c *Calendar) MarketMinuteWindow(start time.Time, count, step int) ([]time.Time, error) {
	if count <= 0 {
		return nil, ErrInvalidWindowCount
	}
	if step != 1 && step != -1 {
		return nil, ErrInvalidWindowStep
	}
	idx, offset, err := c.locate(start)
	if err != nil {
		return nil, err
	}

	minutes := make([]time.Time, 0, count)
	for len(minutes) < count {
		minutes = append(minutes, c.open(idx).Add(time.Duration(offset)*time.Minute))
		offset += step
		if offset < 0 {
			idx--
			if idx < 0 {
				return nil, ErrExhausted
			}
			offset = c.sessionMinutes - 1
		} else if offset >= c.sessionMinutes {
			idx++
			if idx >= len(c.days) {
				return nil, ErrExhausted
			}
			offset = 0
		}
	}
	return minutes, nil
}

// open returns the session open of the i-th trading day in UTC.
func (c *Calendar) open(i int) time.Time {
	d := c.days[i]
	return time.Date(d.Year(), d.Month(), d.Day(), c.openHour, c.openMinute, 0, 0, c.loc).UTC()
}

// locate resolves an instant to (session index, minute offset). The
// instant must be an exact market minute.
func (c *Calendar) locate(t time.Time) (int, int, error) {
	idx, ok := c.sessionIndex(t)
	if !ok {
		return 0, 0, ErrNotMarketMinute
	}
	diff := t.Sub(c.open(idx))
	offset := int(diff / time.Minute)
	if diff != time.Duration(offset)*time.Minute || offset < 0 || offset >= c.sessionMinutes {
		return 0, 0, ErrNotMarketMinute
	}
	return idx, offset, nil
}

func (c *Calendar) sessionIndex(t time.Time) (int, bool) {
	idx, ok := c.index[sessionDate(t).Unix()]
	return idx, ok
}

// sessionDate truncates an instant to its UTC session date.
func sessionDate(t time.Time) time.Time {
	u := t.UTC()
	return date(u.Year(), u.Month(), u.Day())
}
