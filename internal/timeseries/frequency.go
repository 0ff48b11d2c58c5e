package timeseries

import (
	"sort"
	"time"
)

// Frequency is the observation cadence of a series, encoded with the
// offset aliases FRED uses for release schedules.
type Frequency string

const (
	Daily        Frequency = "D"
	Weekly       Frequency = "W"
	MonthStart   Frequency = "MS"
	QuarterStart Frequency = "QS"
	YearStart    Frequency = "YS"
	Unknown      Frequency = ""
)

// band is the day-gap range a frequency admits once release-calendar
// jitter (weekends, month lengths, leap years) is accounted for.
type band struct {
	freq     Frequency
	min, max int
}

var bands = []band{
	{Daily, 1, 1},
	{Weekly, 6, 8},
	{MonthStart, 28, 31},
	{QuarterStart, 89, 92},
	{YearStart, 365, 366},
}

// InferFrequency estimates the cadence of a date index. When every gap
// falls inside a single frequency's tolerance band that frequency is
// returned; otherwise the median gap decides. Fewer than two dates is
// Unknown.
func InferFrequency(dates []time.Time) Frequency {
	if len(dates) < 2 {
		return Unknown
	}

	gaps := make([]int, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		days := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if days <= 0 {
			continue
		}
		gaps = append(gaps, days)
	}
	if len(gaps) == 0 {
		return Unknown
	}

	for _, b := range bands {
		if allWithin(gaps, b.min, b.max) {
			return b.freq
		}
	}

	switch median := medianInt(gaps); {
	case median <= 1:
		return Daily
	case median <= 7:
		return Weekly
	case median <= 31:
		return MonthStart
	case median <= 92:
		return QuarterStart
	default:
		return YearStart
	}
}

func allWithin(gaps []int, min, max int) bool {
	for _, g := range gaps {
		if g < min || g > max {
			return false
		}
	}
	return true
}

func medianInt(vals []int) int {
	sorted := make([]int, len(vals))
	copy(sorted, vals)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// Next returns the date one period after t. Unknown advances one day.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case Weekly:
		return t.AddDate(0, 0, 7)
	case MonthStart:
		return t.AddDate(0, 1, 0)
	case QuarterStart:
		return t.AddDate(0, 3, 0)
	case YearStart:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// SeasonalPeriod returns the number of observations in one seasonal
// cycle, or 0 when the cadence has no sub-annual season to model.
func (f Frequency) SeasonalPeriod() int {
	switch f {
	case Daily:
		return 7
	case Weekly:
		return 52
	case MonthStart:
		return 12
	case QuarterStart:
		return 4
	default:
		return 0
	}
}

// ForecastDates generates steps future dates continuing from last at
// the given frequency.
func ForecastDates(last time.Time, f Frequency, steps int) []time.Time {
	dates := make([]time.Time, 0, steps)
	t := last
	for i := 0; i < steps; i++ {
		t = f.Next(t)
		dates = append(dates, t)
	}
	return dates
}
