package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"crypto-analytics/internal/domain"
	"crypto-analytics/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("handler-test")

type stubSource struct {
	assets []domain.Asset
	points map[int][]domain.PricePoint
	err    error

	mu        sync.Mutex
	requested []int
}

func (s *stubSource) FetchMarkets(ctx context.Context, q domain.MarketQuery) ([]domain.Asset, error) {
	return s.assets, s.err
}

func (s *stubSource) FetchHistory(ctx context.Context, assetID string, days int) ([]domain.PricePoint, error) {
	s.mu.Lock()
	s.requested = append(s.requested, days)
	s.mu.Unlock()
	return s.points[days], s.err
}

func (s *stubSource) historyRequests() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.requested...)
}

func (s *stubSource) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	return map[string]float64{"USD": 1, "BRL": 5}, nil
}

func newTestSession(t *testing.T, src *stubSource, load bool) *service.Dashboard {
	t.Helper()
	d := service.NewSession(testTracer, service.Sources{Markets: src, History: src, Rates: src}, service.SessionConfig{
		TrackedAssetID: "bitcoin",
		Query:          domain.DefaultMarketQuery(10),
		FetchTimeout:   time.Second,
		Language:       domain.LanguageEnglish,
		Currency:       domain.CurrencyUSD,
		DefaultDays:    7,
		Location:       time.UTC,
	})
	if load {
		if err := d.Retry(context.Background(), 7); err != nil {
			t.Fatalf("load session: %v", err)
		}
	}
	return d
}

func loadedSource() *stubSource {
	return &stubSource{
		assets: []domain.Asset{
			{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", CurrentPrice: 60000, MarketCap: 1000, PriceChangePercentage24h: 2, TotalVolume: 40},
			{ID: "ethereum", Name: "Ethereum", Symbol: "eth", CurrentPrice: 3000, MarketCap: 400, PriceChangePercentage24h: -1, TotalVolume: 20},
		},
		points: map[int][]domain.PricePoint{
			7: {{Time: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), Price: 58000}},
		},
	}
}

func newTestRouter(d Dashboard, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(testTracer, d, apiKey).RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetSummary(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "")

	w := do(r, http.MethodGet, "/api/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Cards []struct {
			Title string `json:"title"`
			Value string `json:"value"`
		} `json:"cards"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Cards) != 4 || body.Cards[0].Value != "Bitcoin" || body.Cards[3].Value != "$60.00" {
		t.Fatalf("unexpected cards: %+v", body.Cards)
	}
}

func TestGetSummaryUnavailableAfterFailure(t *testing.T) {
	src := &stubSource{err: errors.New("upstream down")}
	d := newTestSession(t, src, false)
	_ = d.Retry(context.Background(), 7)
	r := newTestRouter(d, "")

	w := do(r, http.MethodGet, "/api/summary", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "upstream down") {
		t.Fatalf("expected error in body, got %s", w.Body.String())
	}
}

func TestGetCoinsSorting(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "")

	w := do(r, http.MethodGet, "/api/coins?sort=name&order=desc", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Rows []struct {
			ID string `json:"id"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(body.Rows) != 2 || body.Rows[0].ID != "ethereum" {
		t.Fatalf("expected ethereum first by name desc, got %+v", body.Rows)
	}

	if w := do(r, http.MethodGet, "/api/coins?sort=rank", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad sort key, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/coins?order=up", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad order, got %d", w.Code)
	}
}

func TestExportCoins(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "")

	w := do(r, http.MethodGet, "/api/coins/export.csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "crypto_data.csv") {
		t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
	}
	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 || records[1][0] != "bitcoin" || records[1][4] != "60000" {
		t.Fatalf("unexpected records %v", records)
	}
}

func TestExportCoinsEmpty(t *testing.T) {
	src := &stubSource{err: errors.New("upstream down")}
	d := newTestSession(t, src, false)
	_ = d.Retry(context.Background(), 7)
	r := newTestRouter(d, "")

	if w := do(r, http.MethodGet, "/api/coins/export.csv", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "")

	w := do(r, http.MethodGet, "/api/history/7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Title  string `json:"title"`
		Points []struct {
			Label string  `json:"label"`
			Value float64 `json:"value"`
		} `json:"points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Title != "Bitcoin Price (Last 7 days)" || len(body.Points) != 1 || body.Points[0].Label != "5/1" {
		t.Fatalf("unexpected history body %+v", body)
	}

	if w := do(r, http.MethodGet, "/api/history/zero", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/history/-3", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative window, got %d", w.Code)
	}
	// An uncached window starts loading instead of failing.
	w = do(r, http.MethodGet, "/api/history/30", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while window loads, got %d", w.Code)
	}
}

func TestGetBreakdownAndOverview(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "")

	w := do(r, http.MethodGet, "/api/breakdown", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "#f7931a") {
		t.Fatalf("unexpected breakdown %d: %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/overview", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Bitcoin Overview") {
		t.Fatalf("unexpected overview %d: %s", w.Code, w.Body.String())
	}
}

func TestTogglePreferences(t *testing.T) {
	d := newTestSession(t, loadedSource(), true)
	r := newTestRouter(d, "")

	w := do(r, http.MethodPost, "/api/preferences/toggle?target=language", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var pref domain.Preference
	if err := json.Unmarshal(w.Body.Bytes(), &pref); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if pref.Language != domain.LanguagePortuguese || pref.Currency != domain.CurrencyUSD {
		t.Fatalf("unexpected preference %+v", pref)
	}

	w = do(r, http.MethodGet, "/api/preferences", nil)
	if !strings.Contains(w.Body.String(), `"language":"pt"`) {
		t.Fatalf("unexpected preferences body %s", w.Body.String())
	}

	if w := do(r, http.MethodPost, "/api/preferences/toggle?target=theme", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTogglePreferencesRequiresAPIKey(t *testing.T) {
	r := newTestRouter(newTestSession(t, loadedSource(), true), "secret")

	if w := do(r, http.MethodPost, "/api/preferences/toggle", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/preferences/toggle", map[string]string{"X-API-Key": "nope"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	w := do(r, http.MethodPost, "/api/preferences/toggle", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	// Reads stay open.
	if w := do(r, http.MethodGet, "/api/preferences", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetHistoryRejectsUnofferedWindow(t *testing.T) {
	src := loadedSource()
	r := newTestRouter(newTestSession(t, src, true), "")

	for _, path := range []string{"/api/history/45", "/api/history/1", "/api/history/100000"} {
		w := do(r, http.MethodGet, path, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"supported_windows":[7,30,60,90]`) {
			t.Fatalf("%s: expected supported windows in body, got %s", path, w.Body.String())
		}
	}

	got := src.historyRequests()
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected only the initial 7 day fetch, got %v", got)
	}
}

func TestRetryReloadsAfterFailure(t *testing.T) {
	src := loadedSource()
	src.err = errors.New("upstream down")
	d := newTestSession(t, src, false)
	if err := d.Retry(context.Background(), 7); err == nil {
		t.Fatal("expected initial load to fail")
	}
	r := newTestRouter(d, "")

	w := do(r, http.MethodPost, "/api/retry", nil)
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "upstream down") {
		t.Fatalf("expected 503 while upstream is down, got %d: %s", w.Code, w.Body.String())
	}

	src.err = nil
	w = do(r, http.MethodPost, "/api/retry", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Days    int `json:"days"`
		Markets int `json:"markets"`
		Points  int `json:"points"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Days != 7 || body.Markets != 2 || body.Points != 1 {
		t.Fatalf("unexpected retry body %+v", body)
	}

	if w := do(r, http.MethodGet, "/api/summary", nil); w.Code != http.StatusOK {
		t.Fatalf("expected summary after retry, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRetryValidatesWindowAndAPIKey(t *testing.T) {
	src := loadedSource()
	r := newTestRouter(newTestSession(t, src, true), "secret")
	key := map[string]string{"X-API-Key": "secret"}

	if w := do(r, http.MethodPost, "/api/retry", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/retry", map[string]string{"X-API-Key": "nope"}); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/retry?days=45", key); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/retry?days=7", key); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := src.historyRequests(); len(got) != 1 {
		t.Fatalf("expected cached window to be reused, got fetches %v", got)
	}
}
