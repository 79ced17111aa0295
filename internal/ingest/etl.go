package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/brandpulse/sheetfeed/internal/models"
	"github.com/brandpulse/sheetfeed/internal/obs"
	"github.com/brandpulse/sheetfeed/internal/sheets"
	"github.com/brandpulse/sheetfeed/internal/store"
)

// Pipeline drives one document end to end: validate the source reference,
// discover tabs, fetch and parse each tab, normalize, and fold records
// into the store. Everything below validation degrades softly.
type Pipeline struct {
	f   sheets.Fetcher
	d   *sheets.Discoverer
	st  *store.MemoryStore
	log *slog.Logger
}

func NewPipeline(f sheets.Fetcher, d *sheets.Discoverer, st *store.MemoryStore, log *slog.Logger) *Pipeline {
	return &Pipeline{f: f, d: d, st: st, log: log}
}

// SourceResult is the explicit success-or-reason value returned by source
// validation; it is the only failure surface in the pipeline.
type SourceResult struct {
	OK     bool                   `json:"ok"`
	Reason string                 `json:"reason,omitempty"`
	DocID  string                 `json:"doc_id,omitempty"`
	Tabs   []models.TabDescriptor `json:"tabs,omitempty"`
}

type Summary struct {
	DocID    string `json:"doc_id"`
	Platform string `json:"platform"`
	Tabs     int    `json:"tabs"`
	Rows     int    `json:"rows"`
	Records  int    `json:"records"`
	Skipped  int    `json:"skipped"`
}

var docIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/spreadsheets/d/e/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`^([a-zA-Z0-9_-]{12,})$`),
}

// ExtractDocID pulls a document identifier from a share URL, a published
// URL, or a bare ID.
func ExtractDocID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	for _, re := range docIDPatterns {
		if m := re.FindStringSubmatch(ref); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ValidateAndDiscover checks the source reference and returns the
// discovered tabs. An unextractable reference or an empty discovery is
// reported as a reason, never an error.
func (p *Pipeline) ValidateAndDiscover(ctx context.Context, ref string) SourceResult {
	docID, ok := ExtractDocID(ref)
	if !ok {
		return SourceResult{Reason: fmt.Sprintf("could not extract a document id from %q; expected a share URL or a bare id", ref)}
	}
	tabs := p.d.Discover(ctx, docID)
	if len(tabs) == 0 {
		return SourceResult{Reason: fmt.Sprintf("no tabs found in document %s", docID)}
	}
	return SourceResult{OK: true, DocID: docID, Tabs: tabs}
}

// Ingest runs the full pipeline for one document under the given platform
// tag. The only returned error is a failed source validation; fetch and
// parse trouble inside the run shows up as lower counts, not failures.
func (p *Pipeline) Ingest(ctx context.Context, ref, platform string) (Summary, error) {
	src := p.ValidateAndDiscover(ctx, ref)
	if !src.OK {
		return Summary{}, errors.New(src.Reason)
	}
	platform = strings.ToLower(strings.TrimSpace(platform))

	sum := Summary{DocID: src.DocID, Platform: platform, Tabs: len(src.Tabs)}
	for _, tab := range src.Tabs {
		text, err := p.f.FetchTabData(ctx, src.DocID, tab.Name, tab.GID)
		if err != nil {
			obs.FetchFailures.Inc()
			p.log.Debug("tab fetch failed", slog.String("doc", src.DocID), slog.String("gid", tab.GID), slog.String("err", err.Error()))
			continue
		}
		parsed := sheets.Parse(text)
		obs.RowsParsed.Add(float64(len(parsed.Rows)))
		obs.RowsSkipped.Add(float64(parsed.Skipped))
		sum.Rows += len(parsed.Rows)

		dataType := sheets.ClassifyTabType(parsed.Headers)
		batch := sheets.NormalizeRows(parsed.Rows, platform)
		obs.RowsSkipped.Add(float64(batch.Skipped))
		sum.Skipped += parsed.Skipped + batch.Skipped

		for i, rec := range batch.Records {
			key := fmt.Sprintf("%s|%s|%s|%d|%s|%s", src.DocID, platform, tab.GID, i, rec.MetricsDate, rec.CampaignName)
			if !p.st.MarkSeen(key) {
				continue
			}
			p.st.Upsert(rec, dataType)
			sum.Records++
		}
	}

	p.log.Info("ingest complete",
		slog.String("doc", sum.DocID),
		slog.String("platform", sum.Platform),
		slog.Int("tabs", sum.Tabs),
		slog.Int("rows", sum.Rows),
		slog.Int("records", sum.Records),
		slog.Int("skipped", sum.Skipped))
	return sum, nil
}
