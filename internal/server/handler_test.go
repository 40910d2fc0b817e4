package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arcanalabs/significator/internal/catalog"
	"github.com/arcanalabs/significator/internal/index"
	"github.com/arcanalabs/significator/pkg/config"
)

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		DefaultLimit:    10,
		MaxResults:      50,
		FuzzyThreshold:  2,
		ExpandSynonyms:  true,
		UsePhonetic:     true,
		BoostExactMatch: 2.0,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *catalog.Catalog) {
	t.Helper()
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	handle := index.NewHandle(index.Build(cat))
	loader := func(ctx context.Context) (*catalog.Catalog, error) {
		return catalog.LoadEmbedded()
	}
	h := New(handle, cat, loader, nil, nil, nil, testSearchConfig())
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, cat
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/search?q=the+empress", http.StatusOK, &body)
	if body.Returned == 0 || len(body.Results) == 0 {
		t.Fatalf("search returned nothing: %+v", body)
	}
	if body.Results[0].CardID != "major-03" {
		t.Errorf("top result = %s, want major-03", body.Results[0].CardID)
	}
	if body.Blocked {
		t.Error("plain query flagged as blocked")
	}
}

func TestSearchMissingQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	getJSON(t, srv.URL+"/api/v1/search", http.StatusBadRequest, nil)
}

func TestSearchBlockedQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/search?q=%3Cscript%3Ealert(1)%3C/script%3E", http.StatusOK, &body)
	if !body.Blocked {
		t.Fatal("hostile query not flagged as blocked")
	}
	if len(body.Results) != 0 {
		t.Errorf("blocked query returned %d results", len(body.Results))
	}
}

func TestSearchLimitOverride(t *testing.T) {
	srv, _ := newTestServer(t)
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/search?q=wands&limit=2", http.StatusOK, &body)
	if body.Returned != 2 {
		t.Errorf("limit=2 returned %d results", body.Returned)
	}
	getJSON(t, srv.URL+"/api/v1/search?q=wands&limit=0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/v1/search?q=wands&limit=abc", http.StatusBadRequest, nil)
}

func TestSearchSuitFilterParam(t *testing.T) {
	srv, _ := newTestServer(t)
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/search?q=fire&suit=wands", http.StatusOK, &body)
	for _, r := range body.Results {
		if r.Card.Suit != catalog.SuitWands {
			t.Errorf("suit filter leaked %s (%s)", r.CardID, r.Card.Suit)
		}
	}
}

func TestQuickSearchEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/quick-search?q=moon", http.StatusOK, &body)
	if body.Returned == 0 {
		t.Fatal("quick search returned nothing")
	}
	if body.Returned > 5 {
		t.Errorf("quick search returned %d results, default limit is 5", body.Returned)
	}
}

func TestSearchUnbuiltIndex(t *testing.T) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	h := New(index.NewHandle(nil), cat, nil, nil, nil, nil, testSearchConfig())
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()
	getJSON(t, srv.URL+"/api/v1/search?q=sun", http.StatusServiceUnavailable, nil)
}

func TestCardsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	var all []catalog.Card
	getJSON(t, srv.URL+"/api/v1/cards", http.StatusOK, &all)
	if len(all) != 78 {
		t.Errorf("cards listing returned %d cards, want 78", len(all))
	}

	var byName []catalog.Card
	getJSON(t, srv.URL+"/api/v1/cards?name=the+fool", http.StatusOK, &byName)
	if len(byName) != 1 || byName[0].ID != "major-00" {
		t.Errorf("name lookup = %+v, want major-00", byName)
	}
	getJSON(t, srv.URL+"/api/v1/cards?name=no+such+card", http.StatusNotFound, nil)

	var bySuit []catalog.Card
	getJSON(t, srv.URL+"/api/v1/cards?suit=cups", http.StatusOK, &bySuit)
	if len(bySuit) != 14 {
		t.Errorf("suit lookup returned %d cards, want 14", len(bySuit))
	}

	getJSON(t, srv.URL+"/api/v1/cards?number=abc", http.StatusBadRequest, nil)
}

func TestCardByIDEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	var card catalog.Card
	getJSON(t, srv.URL+"/api/v1/cards/major-17", http.StatusOK, &card)
	if card.Name != "The Star" {
		t.Errorf("major-17 = %q, want The Star", card.Name)
	}
	getJSON(t, srv.URL+"/api/v1/cards/major-99", http.StatusNotFound, nil)
}

func TestRebuildEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/api/v1/index/rebuild", "application/json", nil)
	if err != nil {
		t.Fatalf("POST rebuild: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rebuild status = %d", resp.StatusCode)
	}
	var body RebuildResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding rebuild response: %v", err)
	}
	if body.Cards != 78 || body.Terms == 0 || body.Status != "rebuilt" {
		t.Errorf("rebuild response = %+v", body)
	}
}

func TestRebuildLoaderFailure(t *testing.T) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	loader := func(ctx context.Context) (*catalog.Catalog, error) {
		return nil, errors.New("source down")
	}
	h := New(index.NewHandle(index.Build(cat)), cat, loader, nil, nil, nil, testSearchConfig())
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/index/rebuild", "application/json", nil)
	if err != nil {
		t.Fatalf("POST rebuild: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("rebuild with failing loader status = %d, want 500", resp.StatusCode)
	}
	// Search still serves from the old index.
	var body SearchResponse
	getJSON(t, srv.URL+"/api/v1/search?q=sun", http.StatusOK, &body)
	if body.Returned == 0 {
		t.Error("search broken after failed rebuild")
	}
}

func TestRebuildNotConfigured(t *testing.T) {
	cat, err := catalog.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	h := New(index.NewHandle(index.Build(cat)), cat, nil, nil, nil, nil, testSearchConfig())
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/api/v1/index/rebuild", "application/json", nil)
	if err != nil {
		t.Fatalf("POST rebuild: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("rebuild without loader status = %d, want 503", resp.StatusCode)
	}
}

func TestCacheStatsDisabled(t *testing.T) {
	srv, _ := newTestServer(t)
	var body map[string]string
	getJSON(t, srv.URL+"/api/v1/cache/stats", http.StatusOK, &body)
	if body["status"] != "disabled" {
		t.Errorf("cache stats without cache = %v", body)
	}
}
