package store

import (
	"sort"
	"sync"

	"github.com/brandpulse/sheetfeed/internal/models"
)

type dailyKey struct {
	Date     string
	Platform string
	DataType string
}

// MemoryStore accumulates canonical records into daily totals keyed by
// (date, platform, data type). Seen keys make re-ingesting the same
// export a no-op rather than a double count.
type MemoryStore struct {
	mu   sync.RWMutex
	agg  map[dailyKey]*models.DailyMetric
	seen map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		agg:  make(map[dailyKey]*models.DailyMetric),
		seen: make(map[string]struct{}),
	}
}

// MarkSeen records a natural key and reports whether it was new.
func (s *MemoryStore) MarkSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Upsert folds one canonical record into its daily total. Records without
// a normalized date cannot be bucketed and are ignored here.
func (s *MemoryStore) Upsert(rec models.AdsData, dataType string) {
	if rec.MetricsDate == "" {
		return
	}
	k := dailyKey{Date: rec.MetricsDate, Platform: rec.Platform, DataType: dataType}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.agg[k]
	if !ok {
		m = &models.DailyMetric{Date: k.Date, Platform: k.Platform, DataType: k.DataType}
		s.agg[k] = m
	}
	m.Spend += maxf(rec.TotalBudgetBurnt)
	m.Impressions += maxf(rec.Impressions)
	m.Clicks += maxf(rec.Clicks)
	m.Sales += maxf(rec.TotalGMV)
}

// Daily returns every daily total, ordered by date then platform then
// data type.
func (s *MemoryStore) Daily() []models.DailyMetric {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DailyMetric, 0, len(s.agg))
	for _, m := range s.agg {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].DataType < out[j].DataType
	})
	return out
}

func maxf(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
