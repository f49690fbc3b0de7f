package market

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/provider"
)

// Chart intervals, in Yahoo notation.
const (
	Interval15Minutes = "15m"
	IntervalDaily     = "1d"
	IntervalWeekly    = "1wk"
)

// DefaultPeriod is used when a caller supplies an unsupported period.
const DefaultPeriod = "1mo"

// Periods lists the accepted history periods.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "ytd", "1y", "5y", "max"}

// IntervalFor derives the sampling interval for a history period.
func IntervalFor(period string) string {
	switch period {
	case "1d", "5d":
		return Interval15Minutes
	case "1mo", "3mo", "6mo", "ytd", "1y":
		return IntervalDaily
	case "5y", "max":
		return IntervalWeekly
	default:
		return IntervalDaily
	}
}

// ValidPeriod reports whether period is one of Periods.
func ValidPeriod(period string) bool {
	for _, p := range Periods {
		if p == period {
			return true
		}
	}
	return false
}

// CoercePeriod returns period when valid and DefaultPeriod otherwise.
func CoercePeriod(period string) string {
	if ValidPeriod(period) {
		return period
	}
	return DefaultPeriod
}

func intraday(interval string) bool {
	return strings.HasSuffix(interval, "m") || strings.HasSuffix(interval, "h")
}

// HistoryPoint is one close in a chart series. Date is the calendar date in
// the exchange's timezone; Time is set only for intraday intervals, where
// several points share a Date.
type HistoryPoint struct {
	Date  string          `json:"Date"`
	Close decimal.Decimal `json:"Close"`
	Time  *time.Time      `json:"Time,omitempty"`
}

// MarshalJSON writes Close as a JSON number so chart clients can plot it directly.
func (p HistoryPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string      `json:"Date"`
		Close json.Number `json:"Close"`
		Time  *time.Time  `json:"Time,omitempty"`
	}{
		Date:  p.Date,
		Close: json.Number(p.Close.String()),
		Time:  p.Time,
	})
}

// History is a resolved price series.
type History struct {
	Ticker   string         `json:"ticker"`
	Period   string         `json:"period"`
	Interval string         `json:"interval"`
	Points   []HistoryPoint `json:"data"`
}

// pointsFromSeries converts provider bars to points sorted oldest first.
func pointsFromSeries(series provider.Series, interval string) []HistoryPoint {
	bars := make([]provider.Bar, len(series.Bars))
	copy(bars, series.Bars)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	withTime := intraday(interval)
	points := make([]HistoryPoint, 0, len(bars))
	for _, b := range bars {
		t := b.Time
		if series.Location != nil {
			t = t.In(series.Location)
		}
		p := HistoryPoint{Date: t.Format(time.DateOnly), Close: b.Close}
		if withTime {
			p.Time = &t
		}
		points = append(points, p)
	}
	return points
}
