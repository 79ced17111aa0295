package sheets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	listings     map[ListingView]string
	listingCalls []ListingView
	data         map[string]string // gid -> csv text
	dataCalls    []string
}

func (f *fakeFetcher) FetchTabListing(_ context.Context, _ string, view ListingView) (string, error) {
	f.listingCalls = append(f.listingCalls, view)
	text, ok := f.listings[view]
	if !ok {
		return "", errors.New("listing unavailable")
	}
	return text, nil
}

func (f *fakeFetcher) FetchTabData(_ context.Context, _ string, _, gid string) (string, error) {
	f.dataCalls = append(f.dataCalls, gid)
	text, ok := f.data[gid]
	if !ok {
		return "", errors.New("no such tab")
	}
	return text, nil
}

func testDiscoverer(f Fetcher) *Discoverer {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDiscoverer(f, log, 5)
}

const sampleCSV = "Date,Spend,Impressions\n2025-01-01,100,1000\n"

func TestDiscoverEmbeddedScriptWinsAndShortCircuits(t *testing.T) {
	f := &fakeFetcher{
		listings: map[ListingView]string{
			ViewPublished: `<script>var items = [{"name":"Budget","gid":"0"},{"name":"Sales","gid":"123"}];</script>`,
			ViewHTML:      `<a href="?gid=999">Should Never Be Reached</a>`,
		},
		data: map[string]string{"0": sampleCSV, "123": sampleCSV},
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 2)
	assert.Equal(t, "Budget", tabs[0].Name)
	assert.Equal(t, "0", tabs[0].GID)
	assert.Equal(t, "Sales", tabs[1].Name)
	assert.Equal(t, "123", tabs[1].GID)

	// the chain stopped at the first productive strategy
	assert.NotContains(t, f.listingCalls, ViewHTML)
	assert.NotContains(t, f.listingCalls, ViewFeed)
}

func TestDiscoverDedupKeepsFirstName(t *testing.T) {
	f := &fakeFetcher{
		listings: map[ListingView]string{
			ViewPublished: `[{"name":"First","gid":"7"},{"name":"Second","gid":"7"},{"name":"Other","gid":"8"}]`,
		},
		data: map[string]string{"7": sampleCSV, "8": sampleCSV},
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 2)
	assert.Equal(t, "First", tabs[0].Name)
	assert.Equal(t, "7", tabs[0].GID)
	gids := map[string]bool{}
	for _, tab := range tabs {
		assert.False(t, gids[tab.GID], "duplicate gid %s", tab.GID)
		gids[tab.GID] = true
	}
}

func TestDiscoverTabButtonFallback(t *testing.T) {
	f := &fakeFetcher{
		listings: map[ListingView]string{
			ViewPublished: `<ul><li id="sheet-button-42" class="tab"><a href="#">Ads Data</a></li></ul>`,
		},
		data: map[string]string{"42": sampleCSV},
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 1)
	assert.Equal(t, "Ads Data", tabs[0].Name)
	assert.Equal(t, "42", tabs[0].GID)
}

func TestDiscoverAnchorAndFeedFallbacks(t *testing.T) {
	f := &fakeFetcher{
		listings: map[ListingView]string{
			ViewPublished: `<html>nothing useful here</html>`,
			ViewHTML:      `<a class="tab" href="/view?gid=3#x">Monthly</a>`,
		},
		data: map[string]string{"3": sampleCSV},
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")
	require.Len(t, tabs, 1)
	assert.Equal(t, "Monthly", tabs[0].Name)
	assert.Equal(t, "3", tabs[0].GID)

	feed := &fakeFetcher{
		listings: map[ListingView]string{
			ViewFeed: `{"feed":{"entry":[{"title":{"type":"text","$t":"Legacy Tab"},"link":[{"href":"https://example.com/x?gid=11"}]}]}}`,
		},
		data: map[string]string{"11": sampleCSV},
	}
	tabs = testDiscoverer(feed).Discover(context.Background(), "doc1")
	require.Len(t, tabs, 1)
	assert.Equal(t, "Legacy Tab", tabs[0].Name)
	assert.Equal(t, "11", tabs[0].GID)
}

func TestDiscoverProbeFallback(t *testing.T) {
	f := &fakeFetcher{
		data: map[string]string{"0": sampleCSV, "3": sampleCSV},
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 2)
	assert.Equal(t, "Sheet 1", tabs[0].Name)
	assert.Equal(t, "0", tabs[0].GID)
	assert.Equal(t, "Sheet 2", tabs[1].Name)
	assert.Equal(t, "3", tabs[1].GID)
	assert.Equal(t, 1, tabs[0].RowCount)
}

func TestDiscoverDefaultDescriptor(t *testing.T) {
	f := &fakeFetcher{} // every fetch fails
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 1)
	assert.Equal(t, "Sheet1", tabs[0].Name)
	assert.Equal(t, "0", tabs[0].GID)
	assert.Equal(t, 0, tabs[0].RowCount)
	assert.Empty(t, tabs[0].Headers)
}

func TestDiscoverHydration(t *testing.T) {
	f := &fakeFetcher{
		listings: map[ListingView]string{
			ViewPublished: `[{"name":"Good","gid":"1"},{"name":"Broken","gid":"2"}]`,
		},
		data: map[string]string{"1": sampleCSV}, // gid 2 fails to hydrate
	}
	tabs := testDiscoverer(f).Discover(context.Background(), "doc1")

	require.Len(t, tabs, 2)
	assert.Equal(t, 1, tabs[0].RowCount)
	assert.Equal(t, []string{"Date", "Spend", "Impressions"}, tabs[0].Headers)

	// hydration failure keeps the descriptor instead of dropping it
	assert.Equal(t, "Broken", tabs[1].Name)
	assert.Equal(t, 0, tabs[1].RowCount)
	assert.Empty(t, tabs[1].Headers)
}
