package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"char-appraiser/internal/config"
	"char-appraiser/internal/db"
	"char-appraiser/internal/engine"
)

func newTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()
	database, err := db.OpenAt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewServer(config.Default(), database), database
}

func iptr(v int) *int { return &v }

func seedKnights(t *testing.T, database *db.DB, n int, baseLevel int, price int64) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := database.InsertSoldListing(engine.SoldListing{
			Name:      fmt.Sprintf("Knight %d", i),
			World:     "Antica",
			SoldPrice: price,
			SoldAt:    "2026-08-01",
			Attributes: engine.Attributes{
				Vocation:    "Knight",
				Level:       baseLevel + i,
				MagicLevel:  iptr(9),
				Sword:       iptr(110),
				CharmPoints: iptr(2000),
			},
		})
		if err != nil {
			t.Fatalf("seed sold listing: %v", err)
		}
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetConfig_ReturnsConfig(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/config status = %d, want 200", rec.Code)
	}
	var out config.Config
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if out.LevelWindow != 200 || out.MaxComparables != 30 {
		t.Errorf("config = %+v", out)
	}
}

func TestHandleSetConfig_PersistsAndValidates(t *testing.T) {
	srv, database := newTestServer(t)

	cfg := config.Default()
	cfg.LevelWindow = 150
	rec := postJSON(t, srv.Handler(), "/api/config", cfg)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/config status = %d, want 200 (%s)", rec.Code, rec.Body)
	}
	if got := database.LoadConfig(); got.LevelWindow != 150 {
		t.Errorf("persisted LevelWindow = %d, want 150", got.LevelWindow)
	}

	bad := config.Default()
	bad.MinSimilarity = 1.5
	if rec := postJSON(t, srv.Handler(), "/api/config", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid min_similarity status = %d, want 400", rec.Code)
	}
	bad = config.Default()
	bad.MaxComparables = 1
	if rec := postJSON(t, srv.Handler(), "/api/config", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("inverted comparable bounds status = %d, want 400", rec.Code)
	}
}

func TestHandleAppraise_BatchWithMixedOutcomes(t *testing.T) {
	srv, database := newTestServer(t)
	seedKnights(t, database, 10, 300, 500)

	knight := engine.ActiveListing{
		ID:   1,
		Name: "Hopeful Knight",
		Attributes: engine.Attributes{
			Vocation:    "Knight",
			Level:       305,
			MagicLevel:  iptr(9),
			Sword:       iptr(110),
			CharmPoints: iptr(2000),
		},
	}
	exotic := engine.ActiveListing{
		ID:         2,
		Name:       "Exotic",
		Attributes: engine.Attributes{Vocation: "Dragon Tamer", Level: 305},
	}

	rec := postJSON(t, srv.Handler(), "/api/appraise",
		appraiseRequest{Listings: []engine.ActiveListing{knight, exotic}})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/appraise status = %d (%s)", rec.Code, rec.Body)
	}

	var out appraiseResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Requested != 2 || out.Valued != 1 || out.CorpusSize != 10 {
		t.Errorf("requested/valued/corpus = %d/%d/%d, want 2/1/10",
			out.Requested, out.Valued, out.CorpusSize)
	}
	result, ok := out.Results[1]
	if !ok || result == nil {
		t.Fatal("expected a valuation for the knight")
	}
	if result.EstimatedValue != 500 || result.SampleSize != 10 {
		t.Errorf("valuation = %+v", result)
	}
	if _, ok := out.Results[2]; ok {
		t.Error("exotic vocation should be absent from results")
	}

	// The run is persisted as history.
	runs := database.GetAppraisalRuns(5)
	if len(runs) != 1 || runs[0].Requested != 2 || runs[0].Valued != 1 {
		t.Errorf("appraisal history = %+v", runs)
	}
}

func TestHandleAppraise_EmptyBatchRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := postJSON(t, srv.Handler(), "/api/appraise", appraiseRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch status = %d, want 400", rec.Code)
	}
}

func TestHandleRecordSale_InsertsAndInvalidatesCorpus(t *testing.T) {
	srv, _ := newTestServer(t)

	sale := engine.SoldListing{
		Name:      "Fresh Sale",
		World:     "Antica",
		SoldPrice: 777,
		Attributes: engine.Attributes{
			Vocation: "Druid",
			Level:    150,
		},
	}
	rec := postJSON(t, srv.Handler(), "/api/listings/sold", sale)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/listings/sold status = %d (%s)", rec.Code, rec.Body)
	}
	var stored engine.SoldListing
	if err := json.NewDecoder(rec.Body).Decode(&stored); err != nil {
		t.Fatal(err)
	}
	if stored.ID <= 0 {
		t.Error("stored listing should carry its new id")
	}
	if stored.SoldAt == "" {
		t.Error("SoldAt should default to today")
	}

	// The new sale is visible to the very next status call (cache invalidated).
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	statusRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(statusRec, req)
	var status struct {
		CorpusSize int `json:"corpus_size"`
	}
	if err := json.NewDecoder(statusRec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.CorpusSize != 1 {
		t.Errorf("corpus_size = %d, want 1", status.CorpusSize)
	}

	// Incomplete sales are rejected.
	bad := engine.SoldListing{Name: "No Price", Attributes: engine.Attributes{Vocation: "Druid", Level: 10}}
	if rec := postJSON(t, srv.Handler(), "/api/listings/sold", bad); rec.Code != http.StatusBadRequest {
		t.Errorf("incomplete sale status = %d, want 400", rec.Code)
	}
}

func TestHandleRecentSales(t *testing.T) {
	srv, database := newTestServer(t)
	seedKnights(t, database, 5, 300, 500)

	req := httptest.NewRequest(http.MethodGet, "/api/listings/sold/recent?limit=3", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out []engine.SoldListing
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Errorf("len = %d, want 3", len(out))
	}
}

func TestHandleAppraisalHistoryByID(t *testing.T) {
	srv, database := newTestServer(t)
	seedKnights(t, database, 10, 300, 500)

	knight := engine.ActiveListing{
		ID: 5,
		Attributes: engine.Attributes{
			Vocation:    "Knight",
			Level:       305,
			MagicLevel:  iptr(9),
			Sword:       iptr(110),
			CharmPoints: iptr(2000),
		},
	}
	if rec := postJSON(t, srv.Handler(), "/api/appraise",
		appraiseRequest{Listings: []engine.ActiveListing{knight}}); rec.Code != http.StatusOK {
		t.Fatalf("appraise status = %d", rec.Code)
	}

	runs := database.GetAppraisalRuns(1)
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/appraise/history/%d", runs[0].ID), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("history by id status = %d", rec.Code)
	}
	var rows []db.AppraisalRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].ListingID != 5 {
		t.Errorf("rows = %+v", rows)
	}

	badReq := httptest.NewRequest(http.MethodGet, "/api/appraise/history/abc", nil)
	badRec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(badRec, badReq)
	if badRec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id status = %d, want 400", badRec.Code)
	}
}
