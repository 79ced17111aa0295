package sheets

import (
	"strings"

	"github.com/brandpulse/sheetfeed/internal/models"
)

// Vocabulary votes for classifying a tab from its headers. Substring
// match, case-insensitive.
var (
	adsIndicators   = []string{"impression", "click", "ctr", "roi", "roas", "budget", "spend", "cpc", "cpm"}
	salesIndicators = []string{"order", "sku", "quantity", "qty", "units"}
)

// ClassifyTabType decides whether a tab holds ads metrics or sales/order
// data by counting indicator hits across its headers. Ties go to ads.
func ClassifyTabType(headers []string) string {
	ads, sales := 0, 0
	for _, h := range headers {
		lh := strings.ToLower(h)
		for _, ind := range adsIndicators {
			if strings.Contains(lh, ind) {
				ads++
			}
		}
		for _, ind := range salesIndicators {
			if strings.Contains(lh, ind) {
				sales++
			}
		}
	}
	if sales > ads {
		return models.TabTypeSales
	}
	return models.TabTypeAds
}
