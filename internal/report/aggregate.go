// Package report buckets daily metrics into the time-series and grouped
// summaries the dashboard and exporters consume.
package report

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/brandpulse/sheetfeed/internal/models"
)

// AggregateWeekly buckets daily metrics by the Sunday on or before each
// record's date. Totals are summed first and the ratios derived once from
// the sums, so high-volume days weigh in correctly and zero-denominator
// days cannot skew a bucket.
func AggregateWeekly(daily []models.DailyMetric) []models.PeriodBucket {
	return aggregate(daily, func(t time.Time) time.Time {
		return t.AddDate(0, 0, -int(t.Weekday()))
	})
}

// AggregateMonthly buckets by the first of each record's calendar month.
func AggregateMonthly(daily []models.DailyMetric) []models.PeriodBucket {
	return aggregate(daily, func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	})
}

func aggregate(daily []models.DailyMetric, bucketStart func(time.Time) time.Time) []models.PeriodBucket {
	byStart := map[string]*models.PeriodBucket{}
	for _, d := range daily {
		t, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		start := bucketStart(t).Format("2006-01-02")
		b, ok := byStart[start]
		if !ok {
			b = &models.PeriodBucket{Start: start}
			byStart[start] = b
		}
		b.Spend += d.Spend
		b.Impressions += d.Impressions
		b.Clicks += d.Clicks
		b.Sales += d.Sales
	}

	out := make([]models.PeriodBucket, 0, len(byStart))
	for _, b := range byStart {
		b.CPI = round3(safeDiv(b.Spend, b.Impressions))
		b.CTR = round2(safeDiv(100*b.Clicks, b.Impressions))
		b.ROAS = round2(safeDiv(b.Sales, b.Spend))
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// GroupByPlatform sums metrics per platform tag with the same
// derive-from-totals pattern. Stateless and idempotent; group order is
// made deterministic by sorting on the display label.
func GroupByPlatform(daily []models.DailyMetric) []models.PlatformSummary {
	byPlatform := map[string]*models.PlatformSummary{}
	for _, d := range daily {
		label := capitalize(d.Platform)
		s, ok := byPlatform[label]
		if !ok {
			s = &models.PlatformSummary{Platform: label}
			byPlatform[label] = s
		}
		s.Spend += d.Spend
		s.Impressions += d.Impressions
		s.Clicks += d.Clicks
		s.Sales += d.Sales
	}

	out := make([]models.PlatformSummary, 0, len(byPlatform))
	for _, s := range byPlatform {
		s.CPI = round3(safeDiv(s.Spend, s.Impressions))
		s.CTR = round2(safeDiv(100*s.Clicks, s.Impressions))
		s.ROAS = round2(safeDiv(s.Sales, s.Spend))
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round3(f float64) float64 { return math.Round(f*1000) / 1000 }
