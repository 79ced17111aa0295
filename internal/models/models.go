package models

// TabDescriptor is one discoverable sub-sheet of a published document.
// GID is the numeric-string token addressing the tab; it is unique within
// a discovery run. RowCount and Headers stay zero/empty until hydrated.
type TabDescriptor struct {
	Name     string   `json:"name"`
	GID      string   `json:"gid"`
	RowCount int      `json:"row_count"`
	Headers  []string `json:"headers"`
}

// SheetRow maps original column header text to either a coerced float64
// or the original string. Keys preserve source spelling and casing.
type SheetRow map[string]any

// AdsData is the canonical record shape all reporting consumes.
type AdsData struct {
	ID               string  `json:"id"`
	Platform         string  `json:"platform"`
	MetricsDate      string  `json:"metrics_date"`
	CampaignName     string  `json:"campaign_name"`
	TotalBudgetBurnt float64 `json:"total_budget_burnt"`
	Impressions      float64 `json:"impressions"`
	Clicks           float64 `json:"clicks"`
	TotalGMV         float64 `json:"total_gmv"`
	CTR              float64 `json:"ctr"`
	ROI              float64 `json:"roi"`

	// Extra holds platform-specific columns (location, brand, conversions,
	// units_sold, ...) that survived normalization but have no fixed field.
	Extra map[string]any `json:"extra,omitempty"`
}

// Tab categories, decided from header vocabulary.
const (
	TabTypeAds   = "ads"
	TabTypeSales = "sales"
)

// DailyMetric is one day of raw totals for a (date, platform, type) triple.
type DailyMetric struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Platform    string  `json:"platform"`
	DataType    string  `json:"data_type"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Sales       float64 `json:"sales"`
}

// PeriodBucket is a week or month of summed totals plus ratios derived
// from those totals, never averaged per row.
type PeriodBucket struct {
	Start       string  `json:"start"` // bucket start, YYYY-MM-DD
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Sales       float64 `json:"sales"`
	CPI         float64 `json:"cpi"`
	CTR         float64 `json:"ctr"`
	ROAS        float64 `json:"roas"`
}

type PlatformSummary struct {
	Platform    string  `json:"platform"`
	Spend       float64 `json:"spend"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Sales       float64 `json:"sales"`
	CPI         float64 `json:"cpi"`
	CTR         float64 `json:"ctr"`
	ROAS        float64 `json:"roas"`
}
