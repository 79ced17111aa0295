package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandpulse/sheetfeed/internal/models"
)

func dm(date string, spend, impr, clicks, sales float64) models.DailyMetric {
	return models.DailyMetric{Date: date, Platform: "swiggy", DataType: models.TabTypeAds, Spend: spend, Impressions: impr, Clicks: clicks, Sales: sales}
}

func TestWeeklyBucketsSundayAligned(t *testing.T) {
	// 2025-01-01 is a Wednesday; its week starts Sunday 2024-12-29
	buckets := AggregateWeekly([]models.DailyMetric{
		dm("2025-01-01", 10, 100, 5, 20),
		dm("2025-01-04", 10, 100, 5, 20), // Saturday, same week
		dm("2025-01-05", 10, 100, 5, 20), // Sunday, next week
	})
	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-12-29", buckets[0].Start)
	assert.Equal(t, "2025-01-05", buckets[1].Start)
	assert.Equal(t, 20.0, buckets[0].Spend)
	assert.Equal(t, 10.0, buckets[1].Spend)
}

func TestWeeklyConservation(t *testing.T) {
	daily := []models.DailyMetric{
		dm("2025-01-01", 10, 100, 5, 20),
		dm("2025-01-07", 7, 70, 3, 14),
		dm("2025-02-15", 3, 30, 1, 6),
		dm("2025-03-01", 1, 10, 1, 2),
	}
	buckets := AggregateWeekly(daily)

	var wantSpend, wantImpr, wantClicks, wantSales float64
	for _, d := range daily {
		wantSpend += d.Spend
		wantImpr += d.Impressions
		wantClicks += d.Clicks
		wantSales += d.Sales
	}
	var gotSpend, gotImpr, gotClicks, gotSales float64
	for _, b := range buckets {
		gotSpend += b.Spend
		gotImpr += b.Impressions
		gotClicks += b.Clicks
		gotSales += b.Sales
	}
	assert.Equal(t, wantSpend, gotSpend)
	assert.Equal(t, wantImpr, gotImpr)
	assert.Equal(t, wantClicks, gotClicks)
	assert.Equal(t, wantSales, gotSales)
}

func TestRatiosDerivedFromTotalsNotAveraged(t *testing.T) {
	// daily ROAS values are 0.5 and 2.0; the weekly ROAS must be
	// 150/150 = 1.0, not their 1.25 average
	buckets := AggregateWeekly([]models.DailyMetric{
		dm("2025-01-06", 100, 0, 0, 50),
		dm("2025-01-07", 50, 0, 0, 100),
	})
	require.Len(t, buckets, 1)
	assert.Equal(t, 1.0, buckets[0].ROAS)
}

func TestZeroDenominatorsGuarded(t *testing.T) {
	buckets := AggregateMonthly([]models.DailyMetric{dm("2025-05-10", 0, 0, 0, 25)})
	require.Len(t, buckets, 1)
	assert.Equal(t, 0.0, buckets[0].CPI)
	assert.Equal(t, 0.0, buckets[0].CTR)
	assert.Equal(t, 0.0, buckets[0].ROAS)
}

func TestMonthlyBuckets(t *testing.T) {
	buckets := AggregateMonthly([]models.DailyMetric{
		dm("2025-01-31", 10, 1000, 20, 5),
		dm("2025-01-01", 10, 1000, 20, 5),
		dm("2025-02-01", 5, 500, 10, 5),
	})
	require.Len(t, buckets, 2)
	assert.Equal(t, "2025-01-01", buckets[0].Start)
	assert.Equal(t, 20.0, buckets[0].Spend)
	assert.Equal(t, 2.0, buckets[0].CTR) // 100*40/2000
	assert.Equal(t, "2025-02-01", buckets[1].Start)
}

func TestBucketsSortedAscending(t *testing.T) {
	buckets := AggregateWeekly([]models.DailyMetric{
		dm("2025-03-01", 1, 0, 0, 0),
		dm("2025-01-01", 1, 0, 0, 0),
		dm("2025-02-01", 1, 0, 0, 0),
	})
	for i := 1; i < len(buckets); i++ {
		assert.Less(t, buckets[i-1].Start, buckets[i].Start)
	}
}

func TestUnparseableDatesSkipped(t *testing.T) {
	buckets := AggregateWeekly([]models.DailyMetric{
		dm("not-a-date", 100, 0, 0, 0),
		dm("2025-01-01", 1, 0, 0, 0),
	})
	require.Len(t, buckets, 1)
	assert.Equal(t, 1.0, buckets[0].Spend)
}

func TestGroupByPlatform(t *testing.T) {
	daily := []models.DailyMetric{
		{Date: "2025-01-01", Platform: "swiggy", Spend: 100, Impressions: 1000, Clicks: 10, Sales: 200},
		{Date: "2025-01-02", Platform: "swiggy", Spend: 100, Impressions: 1000, Clicks: 10, Sales: 200},
		{Date: "2025-01-01", Platform: "zepto", Spend: 50, Impressions: 100, Clicks: 5, Sales: 25},
	}
	groups := GroupByPlatform(daily)
	require.Len(t, groups, 2)

	assert.Equal(t, "Swiggy", groups[0].Platform)
	assert.Equal(t, 200.0, groups[0].Spend)
	assert.Equal(t, 2.0, groups[0].ROAS)
	assert.Equal(t, 1.0, groups[0].CTR) // 100*20/2000

	assert.Equal(t, "Zepto", groups[1].Platform)
	assert.Equal(t, 0.5, groups[1].ROAS)

	// idempotent: same input, same output
	assert.Equal(t, groups, GroupByPlatform(daily))
}

func TestPlatformLabelMultibyteCapitalization(t *testing.T) {
	groups := GroupByPlatform([]models.DailyMetric{
		{Date: "2025-01-01", Platform: "übermart", Spend: 1},
	})
	require.Len(t, groups, 1)
	assert.Equal(t, "Übermart", groups[0].Platform)
}

func TestNegativeRatiosRoundAwayFromZero(t *testing.T) {
	// callers may hand the aggregator unclamped inputs; a net-negative
	// spend still rounds its ratios correctly
	buckets := AggregateWeekly([]models.DailyMetric{
		dm("2025-01-06", -3, 0, 0, 1),
	})
	require.Len(t, buckets, 1)
	assert.Equal(t, -0.33, buckets[0].ROAS) // 1/-3, not truncated to -0.32
}
