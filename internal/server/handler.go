// Package server exposes the card search engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/arcanalabs/significator/internal/analytics"
	"github.com/arcanalabs/significator/internal/catalog"
	"github.com/arcanalabs/significator/internal/index"
	"github.com/arcanalabs/significator/internal/query"
	"github.com/arcanalabs/significator/internal/search"
	"github.com/arcanalabs/significator/internal/searcher/cache"
	"github.com/arcanalabs/significator/pkg/config"
	apperrors "github.com/arcanalabs/significator/pkg/errors"
	"github.com/arcanalabs/significator/pkg/logger"
	"github.com/arcanalabs/significator/pkg/metrics"
)

// CatalogLoader re-reads the deck from its configured source for index
// rebuilds.
type CatalogLoader func(ctx context.Context) (*catalog.Catalog, error)

// SearchResponse is the wire shape of a search call. Blocked queries
// still answer 200 with empty results; the block reason goes to logs
// and metrics, not to the caller.
type SearchResponse struct {
	Query    string          `json:"query"`
	Results  []search.Result `json:"results"`
	Returned int             `json:"returned"`
	Blocked  bool            `json:"blocked,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
}

// RebuildResponse reports the outcome of an index rebuild.
type RebuildResponse struct {
	Cards      int    `json:"cards"`
	Terms      int    `json:"terms"`
	DurationMs int64  `json:"duration_ms"`
	Status     string `json:"status"`
}

// Handler serves the search and catalog API. The catalog pointer is
// atomic because a rebuild replaces it while readers serve requests.
type Handler struct {
	handle      *index.Handle
	cat         atomic.Pointer[catalog.Catalog]
	loadCatalog CatalogLoader
	cache       *cache.QueryCache
	collector   *analytics.Collector
	metrics     *metrics.Metrics
	cfg         config.SearchConfig
	logger      *slog.Logger
}

// New creates a Handler. cache, collector, and m may be nil; loadCatalog
// may be nil to disable rebuilds.
func New(
	handle *index.Handle,
	cat *catalog.Catalog,
	loadCatalog CatalogLoader,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
	cfg config.SearchConfig,
) *Handler {
	h := &Handler{
		handle:      handle,
		loadCatalog: loadCatalog,
		cache:       queryCache,
		collector:   collector,
		metrics:     m,
		cfg:         cfg,
		logger:      slog.Default().With("component", "search-handler"),
	}
	h.cat.Store(cat)
	return h
}

// Register installs all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/quick-search", h.QuickSearch)
	mux.HandleFunc("GET /api/v1/cards", h.Cards)
	mux.HandleFunc("GET /api/v1/cards/{id}", h.CardByID)
	mux.HandleFunc("POST /api/v1/index/rebuild", h.Rebuild)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	h.serveSearch(w, r, false)
}

func (h *Handler) QuickSearch(w http.ResponseWriter, r *http.Request) {
	h.serveSearch(w, r, true)
}

func (h *Handler) serveSearch(w http.ResponseWriter, r *http.Request, quick bool) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	rawQuery := r.URL.Query().Get("q")
	if rawQuery == "" {
		h.writeAppError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}

	// Validate up front so blocked input can be counted and logged; the
	// engine re-validates internally and the result is identical.
	vr := query.Validate(rawQuery)
	if vr.Blocked {
		log.Warn("query blocked", "reason", vr.BlockReason)
		if h.metrics != nil {
			h.metrics.QueriesBlockedTotal.Inc()
			h.metrics.SearchQueriesTotal.WithLabelValues("blocked").Inc()
		}
		h.trackSearch(ctx, rawQuery, nil, quick, true, false, start)
		h.writeJSON(w, http.StatusOK, SearchResponse{
			Query:   rawQuery,
			Results: []search.Result{},
			Blocked: true,
		})
		return
	}

	opts, err := h.parseOptions(r, quick)
	if err != nil {
		h.writeAppError(w, err)
		return
	}

	ix := h.handle.Load()
	if ix == nil {
		h.writeAppError(w, apperrors.ErrIndexNotBuilt)
		return
	}

	var results []search.Result
	cacheHit := false
	if h.cache != nil {
		results, cacheHit = h.cache.GetOrCompute(ctx, vr.Sanitized, opts, func() []search.Result {
			return search.Search(ix, rawQuery, opts)
		})
	} else {
		results = search.Search(ix, rawQuery, opts)
	}

	if h.metrics != nil {
		outcome := "hit"
		if len(results) == 0 {
			outcome = "zero_result"
		}
		if !vr.IsValid {
			outcome = "invalid"
		}
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
		cacheStatus := "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
		if h.cache == nil {
			cacheStatus = "disabled"
		} else if cacheHit {
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
		h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(results)))
	}

	log.Info("search completed",
		"query", rawQuery,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.trackSearch(ctx, rawQuery, results, quick, false, cacheHit, start)

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:    rawQuery,
		Results:  results,
		Returned: len(results),
		Warnings: vr.Warnings,
	})
}

// parseOptions builds engine options from the config defaults and any
// per-request overrides in the query string.
func (h *Handler) parseOptions(r *http.Request, quick bool) (search.Options, error) {
	var opts search.Options
	if quick {
		opts = search.QuickOptions(0)
	} else {
		opts = search.Options{
			Limit:           h.cfg.DefaultLimit,
			FuzzyThreshold:  h.cfg.FuzzyThreshold,
			ExpandSynonyms:  h.cfg.ExpandSynonyms,
			UsePhonetic:     h.cfg.UsePhonetic,
			BoostExactMatch: h.cfg.BoostExactMatch,
		}
	}

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return opts, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer")
		}
		if limit > h.cfg.MaxResults {
			limit = h.cfg.MaxResults
		}
		opts.Limit = limit
	}
	if !quick {
		if v := q.Get("fuzzy"); v != "" {
			fuzzy, err := strconv.Atoi(v)
			if err != nil || fuzzy < 0 {
				return opts, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "fuzzy must be a non-negative integer")
			}
			opts.FuzzyThreshold = fuzzy
		}
		if v := q.Get("synonyms"); v != "" {
			opts.ExpandSynonyms = v == "true" || v == "1"
		}
		if v := q.Get("phonetic"); v != "" {
			opts.UsePhonetic = v == "true" || v == "1"
		}
		opts.FilterBySuit = q.Get("suit")
		opts.FilterByType = q.Get("type")
	}
	return opts, nil
}

func (h *Handler) Cards(w http.ResponseWriter, r *http.Request) {
	cat := h.cat.Load()
	q := r.URL.Query()
	if name := q.Get("name"); name != "" {
		card, ok := cat.ByExactName(name)
		if !ok {
			h.writeAppError(w, apperrors.Newf(apperrors.ErrCardNotFound, http.StatusNotFound, "no card named %s", name))
			return
		}
		h.writeJSON(w, http.StatusOK, []catalog.Card{card})
		return
	}
	if v := q.Get("number"); v != "" {
		number, err := strconv.Atoi(v)
		if err != nil {
			h.writeAppError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "number must be an integer"))
			return
		}
		h.writeJSON(w, http.StatusOK, cat.ByNumber(number))
		return
	}
	if suit := q.Get("suit"); suit != "" {
		h.writeJSON(w, http.StatusOK, cat.BySuit(suit))
		return
	}
	h.writeJSON(w, http.StatusOK, cat.All())
}

func (h *Handler) CardByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	card, ok := h.cat.Load().ByID(id)
	if !ok {
		h.writeAppError(w, apperrors.Newf(apperrors.ErrCardNotFound, http.StatusNotFound, "no card with id %s", id))
		return
	}
	h.writeJSON(w, http.StatusOK, card)
}

func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.loadCatalog == nil {
		h.writeAppError(w, apperrors.New(apperrors.ErrCatalogSource, http.StatusServiceUnavailable, "rebuild is not configured"))
		return
	}
	start := time.Now()
	cat, err := h.loadCatalog(r.Context())
	if err != nil {
		h.logger.Error("catalog reload failed", "error", err)
		if h.metrics != nil {
			h.metrics.IndexBuildsTotal.WithLabelValues("error").Inc()
		}
		h.writeAppError(w, err)
		return
	}
	ix := index.Build(cat)
	h.handle.Swap(ix)
	h.cat.Store(cat)
	elapsed := time.Since(start)

	if h.cache != nil {
		if err := h.cache.Invalidate(r.Context()); err != nil {
			h.logger.Error("cache invalidation after rebuild failed", "error", err)
		}
	}
	if h.metrics != nil {
		h.metrics.IndexBuildsTotal.WithLabelValues("ok").Inc()
		h.metrics.IndexBuildDuration.Observe(elapsed.Seconds())
		h.metrics.IndexTermCount.Set(float64(ix.TermCount()))
		h.metrics.IndexCardCount.Set(float64(ix.TotalCards()))
	}
	if h.collector != nil {
		h.collector.Track(analytics.IndexBuildEvent{
			Type:      analytics.EventIndexBuild,
			Cards:     ix.TotalCards(),
			Terms:     ix.TermCount(),
			LatencyMs: elapsed.Milliseconds(),
			Timestamp: time.Now().UTC(),
		})
	}
	h.logger.Info("index rebuilt", "cards", ix.TotalCards(), "terms", ix.TermCount(), "duration", elapsed)
	h.writeJSON(w, http.StatusOK, RebuildResponse{
		Cards:      ix.TotalCards(),
		Terms:      ix.TermCount(),
		DurationMs: elapsed.Milliseconds(),
		Status:     "rebuilt",
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeAppError(w, apperrors.ErrCacheDisabled)
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeAppError(w, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) trackSearch(ctx context.Context, rawQuery string, results []search.Result, quick, blocked, cacheHit bool, start time.Time) {
	if h.collector == nil {
		return
	}
	eventType := analytics.EventSearch
	if quick {
		eventType = analytics.EventQuickSearch
	}
	event := analytics.SearchEvent{
		Type:      eventType,
		Query:     rawQuery,
		Blocked:   blocked,
		Returned:  len(results),
		LatencyMs: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	}
	switch {
	case blocked:
		event.Type = analytics.EventBlocked
	case len(results) == 0:
		event.Type = analytics.EventZeroResult
	default:
		event.TopCardID = results[0].CardID
	}
	h.writeEventTerms(&event, results)
	h.collector.Track(event)
}

func (h *Handler) writeEventTerms(event *analytics.SearchEvent, results []search.Result) {
	if len(results) == 0 {
		return
	}
	event.Terms = results[0].MatchedTerms
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}
