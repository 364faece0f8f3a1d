package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"char-appraiser/internal/config"
	"char-appraiser/internal/db"
	"char-appraiser/internal/engine"
)

// Server is the HTTP API server that connects the appraisal engine and the
// sold-listing corpus database.
type Server struct {
	mu     sync.RWMutex
	cfg    *config.Config
	db     *db.DB
	corpus *db.CorpusCache
}

// NewServer creates a Server with the given config and database.
func NewServer(cfg *config.Config, database *db.DB) *Server {
	ttl := time.Duration(cfg.CorpusCacheTTLSeconds) * time.Second
	return &Server{
		cfg:    cfg,
		db:     database,
		corpus: db.NewCorpusCache(database, ttl),
	}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("POST /api/appraise", s.handleAppraise)
	mux.HandleFunc("POST /api/listings/sold", s.handleRecordSale)
	mux.HandleFunc("GET /api/listings/sold/recent", s.handleRecentSales)
	mux.HandleFunc("GET /api/appraise/history", s.handleAppraisalHistory)
	mux.HandleFunc("GET /api/appraise/history/{id}", s.handleAppraisalHistoryByID)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.corpus.Snapshot()
	if err != nil {
		writeError(w, 503, fmt.Sprintf("corpus unavailable: %v", err))
		return
	}
	writeJSON(w, map[string]interface{}{
		"ready":       true,
		"corpus_size": len(snapshot),
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if cfg.MinComparables < 1 || cfg.MaxComparables < cfg.MinComparables {
		writeError(w, 400, "comparable bounds out of range")
		return
	}
	if cfg.MinSimilarity < 0 || cfg.MinSimilarity >= 1 {
		writeError(w, 400, "min_similarity must be in [0, 1)")
		return
	}

	s.mu.Lock()
	*s.cfg = cfg
	s.mu.Unlock()

	if err := s.db.SaveConfig(&cfg); err != nil {
		writeError(w, 500, fmt.Sprintf("save config: %v", err))
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, s.cfg)
}

// engineParams converts the current config into appraiser parameters.
func (s *Server) engineParams() engine.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return engine.Params{
		LevelWindow:              s.cfg.LevelWindow,
		MinSimilarity:            s.cfg.MinSimilarity,
		MaxComparables:           s.cfg.MaxComparables,
		MinComparables:           s.cfg.MinComparables,
		ItemBonusCapFraction:     s.cfg.ItemBonusCapFraction,
		HighConfidenceSamples:    s.cfg.HighConfidenceSamples,
		HighConfidenceSimilarity: s.cfg.HighConfidenceSimilarity,
		MedConfidenceSamples:     s.cfg.MedConfidenceSamples,
		MedConfidenceSimilarity:  s.cfg.MedConfidenceSimilarity,
	}
}

type appraiseRequest struct {
	Listings []engine.ActiveListing `json:"listings"`
}

type appraiseResponse struct {
	Results    map[int64]*engine.ValuationResult `json:"results"`
	Requested  int                               `json:"requested"`
	Valued     int                               `json:"valued"`
	CorpusSize int                               `json:"corpus_size"`
}

// handleAppraise values a batch of active listings against one corpus
// snapshot. Listings absent from the results could not be appraised
// (unknown vocation/level or too little comparable sale history); that is
// an expected outcome, not an error. A corpus read failure fails the
// whole batch.
func (s *Server) handleAppraise(w http.ResponseWriter, r *http.Request) {
	var req appraiseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if len(req.Listings) == 0 {
		writeError(w, 400, "no listings to appraise")
		return
	}

	snapshot, err := s.corpus.Snapshot()
	if err != nil {
		log.Printf("[API] Appraise: corpus fetch failed: %v", err)
		writeError(w, 503, fmt.Sprintf("corpus unavailable: %v", err))
		return
	}

	startTime := time.Now()
	appraiser := engine.NewAppraiser(snapshot, s.engineParams())
	results := appraiser.AppraiseBatch(req.Listings)
	durationMs := time.Since(startTime).Milliseconds()

	log.Printf("[API] Appraise complete: %d/%d valued against %d sales in %dms",
		len(results), len(req.Listings), appraiser.CorpusSize(), durationMs)
	s.db.InsertAppraisalRun(len(req.Listings), appraiser.CorpusSize(), durationMs, results)

	writeJSON(w, appraiseResponse{
		Results:    results,
		Requested:  len(req.Listings),
		Valued:     len(results),
		CorpusSize: appraiser.CorpusSize(),
	})
}

func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var listing engine.SoldListing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if listing.Name == "" || listing.Vocation == "" || listing.Level <= 0 || listing.SoldPrice <= 0 {
		writeError(w, 400, "sold listing needs name, vocation, level and a positive price")
		return
	}
	if listing.SoldAt == "" {
		listing.SoldAt = time.Now().UTC().Format("2006-01-02")
	}

	id, err := s.db.InsertSoldListing(listing)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("record sale: %v", err))
		return
	}
	s.corpus.Invalidate()
	listing.ID = id
	writeJSON(w, listing)
}

func (s *Server) handleRecentSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	listings, err := s.db.RecentSoldListings(limit)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("recent sales: %v", err))
		return
	}
	if listings == nil {
		listings = []engine.SoldListing{}
	}
	writeJSON(w, listings)
}

func (s *Server) handleAppraisalHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs := s.db.GetAppraisalRuns(limit)
	if runs == nil {
		runs = []db.AppraisalRun{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleAppraisalHistoryByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, 400, "invalid run id")
		return
	}
	rows, err := s.db.GetAppraisalResults(id)
	if err != nil {
		writeError(w, 500, fmt.Sprintf("appraisal results: %v", err))
		return
	}
	if rows == nil {
		rows = []db.AppraisalRow{}
	}
	writeJSON(w, rows)
}
