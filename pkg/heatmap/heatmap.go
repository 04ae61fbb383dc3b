package heatmap

import (
	"time"

	"github.com/lumera-stats/lumerawatch/pkg/models"
	"github.com/lumera-stats/lumerawatch/pkg/utils"
)

const (
	// DateLayout is the day key format.
	DateLayout = "2006-01-02"
	// DefaultDays is the length of the calendar window.
	DefaultDays = 365
	// MaxLevel is the highest intensity level.
	MaxLevel = 5
)

// Cell is one calendar day.
type Cell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Summary aggregates an address's activity.
type Summary struct {
	TotalTransactions int     `json:"totalTransactions"`
	ActiveDays        int     `json:"activeDays"`
	AvgPerDay         float64 `json:"avgPerDay"`
	MostActiveDay     string  `json:"mostActiveDay,omitempty"`
	MostActiveCount   int     `json:"mostActiveCount"`
	MaxCount          int     `json:"maxCount"`
}

// Report is the heatmap of one address.
type Report struct {
	Address  string                         `json:"address"`
	Days     map[string]*models.DayActivity `json:"days"`
	Calendar [][]Cell                       `json:"calendar"`
	Summary  Summary                        `json:"summary"`
}

// DayKey returns the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// GroupByDay buckets transactions by UTC day. Transactions without a timestamp are skipped.
// The grouping is rebuilt from scratch on every call.
func GroupByDay(txs []models.TransactionDetail) map[string]*models.DayActivity {
	activity := make(map[string]*models.DayActivity)
	for _, tx := range txs {
		if tx.Timestamp.IsZero() {
			continue
		}
		key := DayKey(tx.Timestamp)
		day, ok := activity[key]
		if !ok {
			day = &models.DayActivity{Date: key, Transactions: []models.TransactionDetail{}}
			activity[key] = day
		}
		day.Count++
		day.Transactions = append(day.Transactions, tx)
	}
	return activity
}

// MaxCount returns the busiest day's count, at least 1.
func MaxCount(activity map[string]*models.DayActivity) int {
	peak := 1
	for _, day := range activity {
		if day.Count > peak {
			peak = day.Count
		}
	}
	return peak
}

// Intensity maps a day's count to a level from 0 (no activity) to MaxLevel, relative to peak.
func Intensity(count, peak int) int {
	if count <= 0 {
		return 0
	}
	ratio := 0.0
	if peak > 0 {
		ratio = float64(count) / float64(peak)
	}
	switch {
	case ratio <= 0.2:
		return 1
	case ratio <= 0.4:
		return 2
	case ratio <= 0.6:
		return 3
	case ratio <= 0.8:
		return 4
	default:
		return MaxLevel
	}
}

// Calendar lays out the days days ending at today (inclusive, oldest first) in weeks of seven.
// The last week may be shorter.
func Calendar(activity map[string]*models.DayActivity, today time.Time, days int) [][]Cell {
	if days <= 0 {
		return [][]Cell{}
	}
	peak := MaxCount(activity)
	today = today.UTC()

	weeks := make([][]Cell, 0, (days+6)/7)
	week := make([]Cell, 0, 7)
	for i := days - 1; i >= 0; i-- {
		key := today.AddDate(0, 0, -i).Format(DateLayout)
		count := 0
		if day, ok := activity[key]; ok {
			count = day.Count
		}
		week = append(week, Cell{Date: key, Count: count, Level: Intensity(count, peak)})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = make([]Cell, 0, 7)
		}
	}
	if len(week) > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// Summarize computes totals over txs and its day grouping. Ties for the most active day go to the
// earliest date.
func Summarize(txs []models.TransactionDetail, activity map[string]*models.DayActivity) Summary {
	s := Summary{
		TotalTransactions: len(txs),
		ActiveDays:        len(activity),
		MaxCount:          MaxCount(activity),
	}
	if s.ActiveDays > 0 {
		s.AvgPerDay = utils.Round(float64(s.TotalTransactions)/float64(s.ActiveDays), 2)
	}
	for key, day := range activity {
		if day.Count > s.MostActiveCount || (day.Count == s.MostActiveCount && key < s.MostActiveDay) {
			s.MostActiveDay = key
			s.MostActiveCount = day.Count
		}
	}
	return s
}

// Build groups, lays out and summarizes an address's transactions.
func Build(address string, txs []models.TransactionDetail, today time.Time) Report {
	activity := GroupByDay(txs)
	return Report{
		Address:  address,
		Days:     activity,
		Calendar: Calendar(activity, today, DefaultDays),
		Summary:  Summarize(txs, activity),
	}
}
