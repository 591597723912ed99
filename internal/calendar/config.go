package calendar

import "time"

// Config is the static calendar dataset: covered year range, regular
// session clock times, exchange timezone, and any holiday overrides on
// top of the computed US set.
type Config struct {
	FirstYear     int      `json:"firstYear"`
	LastYear      int      `json:"lastYear"`
	OpenHour      int      `json:"openHour"`
	OpenMinute    int      `json:"openMinute"`
	CloseHour     int      `json:"closeHour"`
	CloseMinute   int      `json:"closeMinute"`
	Timezone      string   `json:"timezone"`
	ExtraHolidays []string `json:"extraHolidays"`
}

// DefaultConfig is the regular NYSE session: 09:31 through 16:00 Eastern,
// 390 minutes per session.
func DefaultConfig() Config {
	return Config{
		FirstYear:   2000,
		LastYear:    2035,
		OpenHour:    9,
		OpenMinute:  31,
		CloseHour:   16,
		CloseMinute: 0,
		Timezone:    "America/New_York",
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.FirstYear == 0 {
		c.FirstYear = def.FirstYear
	}
	if c.LastYear == 0 {
		c.LastYear = def.LastYear
	}
	if c.OpenHour == 0 && c.OpenMinute == 0 {
		c.OpenHour, c.OpenMinute = def.OpenHour, def.OpenMinute
	}
	if c.CloseHour == 0 && c.CloseMinute == 0 {
		c.CloseHour, c.CloseMinute = def.CloseHour, def.CloseMinute
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	return c
}

func (c Config) validate() error {
	if c.FirstYear > c.LastYear {
		return ErrInvalidConfig
	}
	open := c.OpenHour*60 + c.OpenMinute
	close := c.CloseHour*60 + c.CloseMinute
	if open >= close {
		return ErrInvalidConfig
	}
	return nil
}

func (c Config) parseExtraHolidays() ([]time.Time, error) {
	if len(c.ExtraHolidays) == 0 {
		return nil, nil
	}
	dates := make([]time.Time, 0, len(c.ExtraHolidays))
	for _, raw := range c.ExtraHolidays {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
