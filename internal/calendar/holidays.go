package calendar

import "time"

// usHolidays returns the exchange holidays for one year: New Year's Day,
// MLK Day, Presidents' Day, Good Friday, Memorial Day, Independence Day,
// Labor Day, Thanksgiving and Christmas. Floating holidays are computed,
// not table-driven; fixed-date holidays shift to the nearest weekday
// (Saturday observed Friday, Sunday observed Monday).
func usHolidays(year int) []time.Time {
	gf := easter(year).AddDate(0, 0, -2)
	return []time.Time{
		observed(date(year, time.January, 1)),
		nthWeekday(year, time.January, time.Monday, 3),
		nthWeekday(year, time.February, time.Monday, 3),
		gf,
		lastWeekday(year, time.May, time.Monday),
		observed(date(year, time.July, 4)),
		nthWeekday(year, time.September, time.Monday, 1),
		nthWeekday(year, time.November, time.Thursday, 4),
		observed(date(year, time.December, 25)),
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

// nthWeekday returns the n-th given weekday of the month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := date(year, month, 1)
	delta := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, delta+(n-1)*7)
}

// lastWeekday returns the last given weekday of the month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := date(year, month+1, 1).AddDate(0, 0, -1)
	delta := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -delta)
}

// easter computes Gregorian Easter Sunday (Meeus/Jones/Butcher).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}
