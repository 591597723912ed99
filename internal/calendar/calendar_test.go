package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalendar(t *testing.T) *Calendar {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FirstYear = 2007
	cfg.LastYear = 2009
	cal, err := New(cfg)
	require.NoError(t, err)
	return cal
}

func utc(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestSessionMinutes(t *testing.T) {
	cal := newTestCalendar(t)
	assert.Equal(t, 390, cal.SessionMinutes())
}

func TestHolidays2008(t *testing.T) {
	cal := newTestCalendar(t)

	holidays := []time.Time{
		utc(2008, time.January, 1, 0, 0),
		utc(2008, time.January, 21, 0, 0),
		utc(2008, time.February, 18, 0, 0),
		utc(2008, time.March, 21, 0, 0),
		utc(2008, time.May, 26, 0, 0),
		utc(2008, time.July, 4, 0, 0),
		utc(2008, time.September, 1, 0, 0),
		utc(2008, time.November, 27, 0, 0),
		utc(2008, time.December, 25, 0, 0),
	}
	for _, h := range holidays {
		assert.Falsef(t, cal.IsTradingDay(h), "%s should be a holiday", h)
	}

	weekdays := []time.Time{
		utc(2008, time.January, 2, 0, 0),
		utc(2008, time.March, 20, 0, 0),
		utc(2008, time.July, 3, 0, 0),
		utc(2008, time.November, 28, 0, 0),
		utc(2008, time.December, 24, 0, 0),
	}
	for _, d := range weekdays {
		assert.Truef(t, cal.IsTradingDay(d), "%s should be a trading day", d)
	}
}

func TestWeekendsClosed(t *testing.T) {
	cal := newTestCalendar(t)
	assert.False(t, cal.IsTradingDay(utc(2008, time.January, 5, 0, 0)))
	assert.False(t, cal.IsTradingDay(utc(2008, time.January, 6, 0, 0)))
}

func TestObservedHolidays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstYear = 2004
	cfg.LastYear = 2010
	cal, err := New(cfg)
	require.NoError(t, err)

	// July 4 2010 falls on Sunday, observed Monday.
	assert.False(t, cal.IsTradingDay(utc(2010, time.July, 5, 0, 0)))
	// December 25 2004 falls on Saturday, observed Friday.
	assert.False(t, cal.IsTradingDay(utc(2004, time.December, 24, 0, 0)))
}

func TestTradingDaysBetween(t *testing.T) {
	cal := newTestCalendar(t)
	days := cal.TradingDaysBetween(utc(2007, time.December, 31, 0, 0), utc(2008, time.January, 7, 0, 0))
	require.Len(t, days, 5)
	assert.Equal(t, utc(2007, time.December, 31, 0, 0), days[0])
	assert.Equal(t, utc(2008, time.January, 2, 0, 0), days[1])
	assert.Equal(t, utc(2008, time.January, 7, 0, 0), days[4])

	assert.Empty(t, cal.TradingDaysBetween(utc(2008, time.January, 5, 0, 0), utc(2008, time.January, 6, 0, 0)))
}

func TestNextTradingDaySkipsWeekend(t *testing.T) {
	cal := newTestCalendar(t)
	next, err := cal.NextTradingDay(utc(2008, time.January, 4, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 7, 0, 0), next)
}

func TestSessionBoundariesEastern(t *testing.T) {
	cal := newTestCalendar(t)

	open, err := cal.SessionOpen(utc(2008, time.January, 7, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 7, 14, 31), open)

	close, err := cal.SessionClose(utc(2008, time.January, 7, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 7, 21, 0), close)

	// Daylight saving shifts the UTC open by an hour in summer.
	open, err = cal.SessionOpen(utc(2008, time.July, 7, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.July, 7, 13, 31), open)

	_, err = cal.SessionOpen(utc(2008, time.January, 21, 0, 0))
	assert.ErrorIs(t, err, ErrNotTradingDay)
}

func TestMarketMinutesForSession(t *testing.T) {
	cal := newTestCalendar(t)
	minutes, err := cal.MarketMinutesForSession(utc(2008, time.January, 7, 0, 0))
	require.NoError(t, err)
	require.Len(t, minutes, 390)
	assert.Equal(t, utc(2008, time.January, 7, 14, 31), minutes[0])
	assert.Equal(t, utc(2008, time.January, 7, 21, 0), minutes[389])
}

func TestMarketMinuteWindowForward(t *testing.T) {
	cal := newTestCalendar(t)
	start := utc(2008, time.January, 7, 15, 1)
	minutes, err := cal.MarketMinuteWindow(start, 10, 1)
	require.NoError(t, err)
	require.Len(t, minutes, 10)
	assert.Equal(t, start, minutes[0])
	assert.Equal(t, utc(2008, time.January, 7, 15, 10), minutes[9])
}

func TestMarketMinuteWindowBackward(t *testing.T) {
	cal := newTestCalendar(t)
	start := utc(2008, time.January, 7, 15, 1)
	minutes, err := cal.MarketMinuteWindow(start, 10, -1)
	require.NoError(t, err)
	require.Len(t, minutes, 10)
	assert.Equal(t, start, minutes[0])
	assert.Equal(t, utc(2008, time.January, 7, 14, 52), minutes[9])
}

func TestMarketMinuteWindowRollsAcrossWeekend(t *testing.T) {
	cal := newTestCalendar(t)

	// Friday close to Monday open.
	minutes, err := cal.MarketMinuteWindow(utc(2008, time.January, 4, 21, 0), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 7, 14, 31), minutes[1])

	// Monday open back to Friday close.
	minutes, err = cal.MarketMinuteWindow(utc(2008, time.January, 7, 14, 31), 2, -1)
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 4, 21, 0), minutes[1])
}

func TestMarketMinuteWindowSkipsHoliday(t *testing.T) {
	cal := newTestCalendar(t)
	// Friday January 18 close; Monday January 21 is Martin Luther King day.
	minutes, err := cal.MarketMinuteWindow(utc(2008, time.January, 18, 21, 0), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, utc(2008, time.January, 22, 14, 31), minutes[1])
}

func TestMarketMinuteWindowSpansSessions(t *testing.T) {
	cal := newTestCalendar(t)
	start := utc(2008, time.January, 7, 15, 1)

	forward, err := cal.MarketMinuteWindow(start, 900, 1)
	require.NoError(t, err)
	require.Len(t, forward, 900)
	assert.Equal(t, utc(2008, time.January, 7, 21, 0), forward[359])
	assert.Equal(t, utc(2008, time.January, 8, 14, 31), forward[360])
	assert.Equal(t, utc(2008, time.January, 8, 21, 0), forward[749])
	assert.Equal(t, utc(2008, time.January, 9, 14, 31), forward[750])
	assert.Equal(t, utc(2008, time.January, 9, 17, 0), forward[899])

	backward, err := cal.MarketMinuteWindow(start, 801, -1)
	require.NoError(t, err)
	require.Len(t, backward, 801)
	assert.Equal(t, utc(2008, time.January, 7, 14, 31), backward[30])
	assert.Equal(t, utc(2008, time.January, 4, 21, 0), backward[31])
	assert.Equal(t, utc(2008, time.January, 4, 14, 31), backward[420])
	assert.Equal(t, utc(2008, time.January, 3, 21, 0), backward[421])
	assert.Equal(t, utc(2008, time.January, 3, 14, 41), backward[800])
}

func TestMarketMinuteWindowReversalSymmetry(t *testing.T) {
	cal := newTestCalendar(t)
	forward, err := cal.MarketMinuteWindow(utc(2008, time.January, 7, 20, 30), 100, 1)
	require.NoError(t, err)
	backward, err := cal.MarketMinuteWindow(forward[99], 100, -1)
	require.NoError(t, err)
	for i := range forward {
		assert.Equal(t, forward[i], backward[99-i])
	}
}

func TestMarketMinuteWindowRejectsBadArguments(t *testing.T) {
	cal := newTestCalendar(t)
	start := utc(2008, time.January, 7, 15, 1)

	_, err := cal.MarketMinuteWindow(start, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidWindowCount)

	_, err = cal.MarketMinuteWindow(start, 10, 2)
	assert.ErrorIs(t, err, ErrInvalidWindowStep)

	_, err = cal.MarketMinuteWindow(start.Add(30*time.Second), 10, 1)
	assert.ErrorIs(t, err, ErrNotMarketMinute)

	_, err = cal.MarketMinuteWindow(utc(2008, time.January, 5, 15, 1), 10, 1)
	assert.ErrorIs(t, err, ErrNotMarketMinute)

	_, err = cal.MarketMinuteWindow(utc(2008, time.January, 7, 14, 30), 10, 1)
	assert.ErrorIs(t, err, ErrNotMarketMinute)
}

func TestMarketMinuteWindowExhaustsRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstYear = 2008
	cfg.LastYear = 2008
	cal, err := New(cfg)
	require.NoError(t, err)

	open, err := cal.SessionOpen(cal.FirstTradingDay())
	require.NoError(t, err)
	_, err = cal.MarketMinuteWindow(open, 2, -1)
	assert.ErrorIs(t, err, ErrExhausted)

	close, err := cal.SessionClose(cal.LastTradingDay())
	require.NoError(t, err)
	_, err = cal.MarketMinuteWindow(close, 2, 1)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestExtraHolidays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstYear = 2008
	cfg.LastYear = 2008
	cfg.ExtraHolidays = []string{"2008-01-02"}
	cal, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, cal.IsTradingDay(utc(2008, time.January, 2, 0, 0)))
}

func TestInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstYear = 2010
	cfg.LastYear = 2008
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Timezone = "Not/AZone"
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.ExtraHolidays = []string{"bad-date"}
	_, err = New(cfg)
	assert.Error(t, err)
}
