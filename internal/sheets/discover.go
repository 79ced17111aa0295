package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/brandpulse/sheetfeed/internal/models"
	"github.com/brandpulse/sheetfeed/internal/obs"
)

// Discoverer finds the tabs of a published document. The upstream's public
// HTML surface is undocumented and varies by how the document was
// published, so discovery is an ordered chain of heuristics: the first
// strategy that yields at least one tab wins and the rest are skipped.
type Discoverer struct {
	f           Fetcher
	log         *slog.Logger
	probeMaxGID int
}

func NewDiscoverer(f Fetcher, log *slog.Logger, probeMaxGID int) *Discoverer {
	return &Discoverer{f: f, log: log, probeMaxGID: probeMaxGID}
}

// A strategy pattern-matches one representation of the document. All
// strategies share the (text) -> tabs signature so the chain stays open
// for extension.
type strategy struct {
	name    string
	view    ListingView
	extract func(text string) []models.TabDescriptor
}

var strategies = []strategy{
	{"embedded-script", ViewPublished, extractEmbeddedScript},
	{"tab-buttons", ViewPublished, extractTabButtons},
	{"htmlview-anchors", ViewHTML, extractAnchorListing},
	{"generic-gids", ViewHTML, extractGenericGIDs},
	{"legacy-feed", ViewFeed, extractLegacyFeed},
}

var (
	// {"name":"Budget","gid":"123"} or {gid: 123, name: "Budget"} inside
	// the pubhtml bootstrap script.
	embeddedNameGidRe = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"[^{}]*?"gid"\s*:\s*"?(\d+)"?`)
	embeddedGidNameRe = regexp.MustCompile(`"gid"\s*:\s*"?(\d+)"?[^{}]*?"name"\s*:\s*"([^"]+)"`)

	// <li id="sheet-button-123" ...><a ...>Budget</a>
	tabButtonRe = regexp.MustCompile(`(?s)id="sheet-button-(\d+)"[^>]*>.*?<a[^>]*>([^<]+)</a>`)

	// <a href="...gid=123...">Budget</a>
	anchorGidRe = regexp.MustCompile(`<a[^>]+href="[^"]*[?&#;]gid=(\d+)[^"]*"[^>]*>([^<]+)</a>`)

	genericGidRe = regexp.MustCompile(`gid=(\d+)`)

	// legacy worksheets feed, JSON alt: entry title then its gid link.
	feedEntryRe = regexp.MustCompile(`(?s)"title"\s*:\s*\{[^{}]*?"\$t"\s*:\s*"([^"]+)"[^{}]*\}.*?gid=(\d+)`)
)

// Discover returns the deduplicated tab list for a document. It never
// fails: after the strategy chain it probes a fixed gid range, and after
// that it synthesizes a descriptor for the document's default view.
func (d *Discoverer) Discover(ctx context.Context, docID string) []models.TabDescriptor {
	texts := map[ListingView]string{}
	fetched := map[ListingView]bool{}

	for _, s := range strategies {
		if !fetched[s.view] {
			fetched[s.view] = true
			text, err := d.f.FetchTabListing(ctx, docID, s.view)
			if err != nil {
				obs.FetchFailures.Inc()
				d.log.Debug("listing fetch failed", slog.String("doc", docID), slog.Int("view", int(s.view)), slog.String("err", err.Error()))
				continue
			}
			texts[s.view] = text
		}
		text := texts[s.view]
		if text == "" {
			continue
		}
		tabs := dedupByGID(s.extract(text))
		if len(tabs) > 0 {
			obs.StrategyHits.WithLabelValues(s.name).Inc()
			d.log.Info("tabs discovered", slog.String("doc", docID), slog.String("strategy", s.name), slog.Int("count", len(tabs)))
			d.hydrate(ctx, docID, tabs)
			return tabs
		}
	}

	if tabs := d.probeGIDs(ctx, docID); len(tabs) > 0 {
		obs.StrategyHits.WithLabelValues("gid-probe").Inc()
		return tabs
	}

	obs.StrategyHits.WithLabelValues("default").Inc()
	tabs := []models.TabDescriptor{{Name: "Sheet1", GID: "0"}}
	d.hydrate(ctx, docID, tabs)
	return tabs
}

// probeGIDs tries a small fixed range of candidate gids, keeping any that
// return at least one parsed row. Last resort before the default view.
func (d *Discoverer) probeGIDs(ctx context.Context, docID string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for gid := 0; gid <= d.probeMaxGID; gid++ {
		text, err := d.f.FetchTabData(ctx, docID, "", strconv.Itoa(gid))
		if err != nil {
			obs.FetchFailures.Inc()
			continue
		}
		parsed := Parse(text)
		if len(parsed.Rows) == 0 {
			continue
		}
		tabs = append(tabs, models.TabDescriptor{
			Name:     fmt.Sprintf("Sheet %d", len(tabs)+1),
			GID:      strconv.Itoa(gid),
			RowCount: len(parsed.Rows),
			Headers:  parsed.Headers,
		})
	}
	return tabs
}

// hydrate fills row count and headers for descriptors missing them, one
// sequential fetch per tab to stay under the upstream's scraping radar.
// A failed fetch leaves the descriptor with zero rows rather than
// dropping it.
func (d *Discoverer) hydrate(ctx context.Context, docID string, tabs []models.TabDescriptor) {
	for i := range tabs {
		if tabs[i].RowCount > 0 || len(tabs[i].Headers) > 0 {
			continue
		}
		text, err := d.f.FetchTabData(ctx, docID, tabs[i].Name, tabs[i].GID)
		if err != nil {
			obs.FetchFailures.Inc()
			d.log.Debug("hydration fetch failed", slog.String("doc", docID), slog.String("gid", tabs[i].GID), slog.String("err", err.Error()))
			continue
		}
		parsed := Parse(text)
		tabs[i].RowCount = len(parsed.Rows)
		tabs[i].Headers = parsed.Headers
	}
}

// dedupByGID keeps the first descriptor seen for each gid; a later match
// with the same gid never renames an earlier one.
func dedupByGID(tabs []models.TabDescriptor) []models.TabDescriptor {
	seen := map[string]struct{}{}
	out := tabs[:0:0]
	for _, t := range tabs {
		if _, ok := seen[t.GID]; ok {
			continue
		}
		seen[t.GID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func extractEmbeddedScript(text string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for _, m := range embeddedNameGidRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: m[1], GID: m[2]})
	}
	for _, m := range embeddedGidNameRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: m[2], GID: m[1]})
	}
	return tabs
}

func extractTabButtons(text string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for _, m := range tabButtonRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: m[2], GID: m[1]})
	}
	return tabs
}

func extractAnchorListing(text string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for _, m := range anchorGidRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: m[2], GID: m[1]})
	}
	return tabs
}

// extractGenericGIDs is the bluntest HTML heuristic: any gid token in the
// page, names synthesized by position.
func extractGenericGIDs(text string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for i, m := range genericGidRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: fmt.Sprintf("Sheet %d", i+1), GID: m[1]})
	}
	return tabs
}

func extractLegacyFeed(text string) []models.TabDescriptor {
	var tabs []models.TabDescriptor
	for _, m := range feedEntryRe.FindAllStringSubmatch(text, -1) {
		tabs = append(tabs, models.TabDescriptor{Name: m[1], GID: m[2]})
	}
	return tabs
}
