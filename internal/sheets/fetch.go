package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ListingView selects which public surface of a document a listing fetch
// hits. The upstream serves several, none documented, all versioned at
// Google's whim.
type ListingView int

const (
	ViewPublished ListingView = iota // /pubhtml, carries the embedded-script tab listing
	ViewHTML                         // /htmlview
	ViewFeed                         // legacy worksheets feed, JSON alt
)

// Fetcher is the external document-fetcher collaborator. Implementations
// return the raw text of a document view or a tab's exported CSV, or an
// error the caller treats as a soft skip.
type Fetcher interface {
	FetchTabListing(ctx context.Context, docID string, view ListingView) (string, error)
	FetchTabData(ctx context.Context, docID, tabName, gid string) (string, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// httpFetcher builds published-document URLs against a configurable base
// host so tests can stand in a local fake.
type httpFetcher struct {
	c    HTTPClient
	base string
}

func NewHTTPFetcher(c HTTPClient, baseURL string) Fetcher {
	return &httpFetcher{c: c, base: baseURL}
}

func (f *httpFetcher) FetchTabListing(ctx context.Context, docID string, view ListingView) (string, error) {
	var u string
	switch view {
	case ViewPublished:
		u = fmt.Sprintf("%s/spreadsheets/d/e/%s/pubhtml", f.base, url.PathEscape(docID))
	case ViewHTML:
		u = fmt.Sprintf("%s/spreadsheets/d/%s/htmlview", f.base, url.PathEscape(docID))
	case ViewFeed:
		u = fmt.Sprintf("%s/feeds/worksheets/%s/public/basic?alt=json", f.base, url.PathEscape(docID))
	default:
		return "", fmt.Errorf("unknown listing view %d", view)
	}
	return f.getText(ctx, u)
}

func (f *httpFetcher) FetchTabData(ctx context.Context, docID, tabName, gid string) (string, error) {
	q := url.Values{"output": {"csv"}}
	if gid != "" {
		q.Set("gid", gid)
	} else if tabName != "" {
		q.Set("sheet", tabName)
	}
	u := fmt.Sprintf("%s/spreadsheets/d/e/%s/pub?%s", f.base, url.PathEscape(docID), q.Encode())
	return f.getText(ctx, u)
}

func (f *httpFetcher) getText(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("empty payload from %s", u)
	}
	return string(b), nil
}
