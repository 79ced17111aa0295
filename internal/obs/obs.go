// Package obs exposes parse-quality and fetch counters so operators can
// watch how well extraction is holding up against the upstream's layout.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetfeed_rows_parsed_total",
		Help: "Data rows materialized from fetched tabs.",
	})
	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetfeed_rows_skipped_total",
		Help: "Records dropped as blank or below the retention rule.",
	})
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sheetfeed_fetch_failures_total",
		Help: "Document or tab fetches that failed and were soft-skipped.",
	})
	StrategyHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sheetfeed_discovery_strategy_hits_total",
		Help: "Which discovery strategy produced the tab list.",
	}, []string{"strategy"})
)
