package sheets

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brandpulse/sheetfeed/internal/models"
)

// Canonical field keys. Anything a header resolves to that is not one of
// these lands in the record's Extra map.
const (
	keyDate        = "metrics_date"
	keyCampaign    = "campaign_name"
	keySpend       = "total_budget_burnt"
	keyImpressions = "impressions"
	keyClicks      = "clicks"
	keyGMV         = "total_gmv"
	keyCTR         = "ctr"
	keyROI         = "roi"
)

// columnMap resolves the header spellings seen across platform exports to
// canonical keys. Loaded once, read-only afterwards.
var columnMap = map[string]string{
	"date":         keyDate,
	"day":          keyDate,
	"month":        keyDate,
	"metrics_date": keyDate,
	"metrics date": keyDate,
	"report date":  keyDate,
	"date range":   keyDate,

	"campaign":      keyCampaign,
	"campaign name": keyCampaign,
	"campaign_name": keyCampaign,
	"ad name":       keyCampaign,
	"item":          keyCampaign,
	"item name":     keyCampaign,
	"product":       keyCampaign,
	"product name":  keyCampaign,
	"sku name":      keyCampaign,

	"spend":              keySpend,
	"spends":             keySpend,
	"total spend":        keySpend,
	"ad spend":           keySpend,
	"cost":               keySpend,
	"total cost":         keySpend,
	"amount spent":       keySpend,
	"budget burnt":       keySpend,
	"budget_burnt":       keySpend,
	"total_budget_burnt": keySpend,
	"total budget burnt": keySpend,
	"expense":            keySpend,

	"impressions":       keyImpressions,
	"impression":        keyImpressions,
	"total impressions": keyImpressions,
	"views":             keyImpressions,

	"clicks":       keyClicks,
	"click":        keyClicks,
	"link clicks":  keyClicks,
	"total clicks": keyClicks,

	"gmv":                     keyGMV,
	"total gmv":               keyGMV,
	"total_gmv":               keyGMV,
	"revenue":                 keyGMV,
	"gross revenue":           keyGMV,
	"sales":                   keyGMV,
	"total sales":             keyGMV,
	"gross merchandise value": keyGMV,

	"ctr":                keyCTR,
	"ctr%":               keyCTR,
	"ctr %":              keyCTR,
	"click through rate": keyCTR,
	"click-through rate": keyCTR,

	"roi":                keyROI,
	"roas":               keyROI,
	"return on spend":    keyROI,
	"return on ad spend": keyROI,

	"city":         "location",
	"location":     "location",
	"region":       "location",
	"brand":        "brand",
	"brand name":   "brand",
	"conversions":  "conversions",
	"orders":       "conversions",
	"total orders": "conversions",
	"units":        "units_sold",
	"units sold":   "units_sold",
	"quantity":     "units_sold",
	"qty":          "units_sold",
}

// BatchResult carries the records that survived normalization plus how
// many rows were dropped as noise, for parse-quality reporting.
type BatchResult struct {
	Records []models.AdsData
	Skipped int
}

// NormalizeRows maps parsed sheet rows onto canonical records for the
// given platform tag. Rows with no positive metric and no campaign label
// are dropped and counted in Skipped.
func NormalizeRows(rows []models.SheetRow, platform string) BatchResult {
	now := time.Now().UnixNano()
	var out BatchResult
	for i, row := range rows {
		rec, ok := normalizeRow(row, platform, i, now)
		if !ok {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func normalizeRow(row models.SheetRow, platform string, idx int, stamp int64) (models.AdsData, bool) {
	rec := models.AdsData{
		ID:       fmt.Sprintf("%s-%d-%d", platform, idx, stamp),
		Platform: platform,
	}

	// Sorted header order keeps synonym collisions deterministic: the
	// lexicographically last spelling wins.
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	for _, h := range headers {
		v := row[h]
		key, ok := columnMap[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			key = slug(h)
		}
		switch key {
		case keyDate:
			rec.MetricsDate = toString(v)
		case keyCampaign:
			rec.CampaignName = strings.TrimSpace(toString(v))
		case keySpend:
			rec.TotalBudgetBurnt = toFloat(v)
		case keyImpressions:
			rec.Impressions = toFloat(v)
		case keyClicks:
			rec.Clicks = toFloat(v)
		case keyGMV:
			rec.TotalGMV = toFloat(v)
		case keyCTR:
			rec.CTR = toFloat(v)
		case keyROI:
			rec.ROI = toFloat(v)
		default:
			if rec.Extra == nil {
				rec.Extra = map[string]any{}
			}
			rec.Extra[key] = v
		}
	}

	if rec.MetricsDate != "" {
		rec.MetricsDate = NormalizeDate(rec.MetricsDate)
	}

	if !hasSignal(rec) {
		return models.AdsData{}, false
	}
	return rec, true
}

// hasSignal is the retention rule: at least one positive metric or a
// non-empty campaign label, otherwise the row is noise.
func hasSignal(rec models.AdsData) bool {
	if rec.CampaignName != "" {
		return true
	}
	for _, f := range []float64{rec.TotalBudgetBurnt, rec.Impressions, rec.Clicks, rec.TotalGMV, rec.CTR, rec.ROI} {
		if f > 0 {
			return true
		}
	}
	return false
}

var monYYRe = regexp.MustCompile(`^([A-Za-z]{3})-(\d{2})$`)

var genericLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02-Jan-2006",
}

// NormalizeDate converts the date spellings seen in exports to
// YYYY-MM-DD. Unparseable input passes through unchanged; downstream
// treats such records as undated rather than failing the batch.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	// Mon-YY, e.g. "Nov-25" -> 2025-11-01. Two-digit years are always
	// read as 2000+YY here.
	if m := monYYRe.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("Jan", m[1]); err == nil {
			yy, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("%04d-%02d-01", 2000+yy, t.Month())
		}
	}

	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if out, ok := parseDelimitedDate(s); ok {
		return out
	}
	return s
}

// parseDelimitedDate handles slash- or dash-delimited triples. A 4-digit
// component is the year; with no 4-digit component the order is assumed
// day-month-year. That assumption is ambiguous for dates like 03/04/25
// and is kept as documented best-effort behavior.
func parseDelimitedDate(s string) (string, bool) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return "", false
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	var y, mo, d int
	switch {
	case len(parts[0]) == 4:
		y, mo, d = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4:
		d, mo, y = nums[0], nums[1], nums[2]
	default:
		d, mo, y = nums[0], nums[1], nums[2]
		y += 2000
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}

// toFloat coerces a sheet value to a number. Already-numeric values pass
// through untouched, so re-normalizing canonical data is a no-op.
func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		if f, ok := coerceNumeric(strings.TrimSpace(x)); ok {
			return f
		}
	}
	return 0
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}

var slugRe = regexp.MustCompile(`\s+`)

func slug(h string) string {
	return slugRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}
