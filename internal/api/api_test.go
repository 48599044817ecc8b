package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/checksum"
	"github.com/starford/adrkit/internal/record"
	"github.com/starford/adrkit/internal/storage"
	"github.com/starford/adrkit/internal/testutil"
)

type env struct {
	router http.Handler
	store  storage.Provider
	db     *catalog.DB
}

// testEnv sets up a temp repository, catalog, services and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string, files map[string]string) env {
	t.Helper()
	return testEnvWithSSE(t, authToken, files, nil)
}

func testEnvWithSSE(t *testing.T, authToken string, files map[string]string, sseHandler http.Handler) env {
	t.Helper()
	_, store := testutil.TestRepo(t, files)
	db := testutil.TestCatalog(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := catalog.Sync(db, store, "adr", logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	records := record.NewService(store,
		record.WithLogger(logger),
		record.WithClock(func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }),
		record.WithHook(catalog.Refresher(db, store, logger)),
	)
	svc := NewService(records, db, record.Defaults{Dir: "adr", Template: "simple"})
	router := NewRouter(svc, authToken != "", authToken, sseHandler)
	return env{router: router, store: store, db: db}
}

func do(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetRecord(t *testing.T) {
	e := testEnv(t, "", nil)

	w := do(t, e.router, http.MethodPost, "/records", map[string]any{"title": "Use SQLite", "updateIndex": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created record.CreateResult
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.RelPath != "adr/0001-use-sqlite.md" || !created.IndexChanged {
		t.Errorf("created = %+v", created)
	}

	w = do(t, e.router, http.MethodGet, "/records/adr/0001-use-sqlite.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var rec RecordDetail
	_ = json.Unmarshal(w.Body.Bytes(), &rec)
	if rec.Title != "Use SQLite" || rec.Status != "proposed" {
		t.Errorf("record = %+v", rec.Record)
	}
	if etag := w.Header().Get("ETag"); etag != `"`+rec.Checksum+`"` {
		t.Errorf("ETag = %q", etag)
	}
}

func TestGetRecord_EncodedSlash(t *testing.T) {
	e := testEnv(t, "", map[string]string{"adr/0001-a.md": "# A\n"})
	w := do(t, e.router, http.MethodGet, "/records/adr%2F0001-a.md", nil)
	if w.Code != http.StatusOK {
		t.Errorf("get encoded = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCreateRecord_Errors(t *testing.T) {
	e := testEnv(t, "", nil)
	cases := []struct {
		name string
		body any
		want int
	}{
		{"missing title", map[string]any{"status": "accepted"}, http.StatusBadRequest},
		{"bad template", map[string]any{"title": "x", "template": "nygard"}, http.StatusUnprocessableEntity},
		{"bad date", map[string]any{"title": "x", "date": "yesterday"}, http.StatusBadRequest},
		{"escaping dir", map[string]any{"title": "x", "dir": "../outside"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, e.router, http.MethodPost, "/records", tc.body); w.Code != tc.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tc.want, w.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader("{"))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}
}

func TestSetStatus(t *testing.T) {
	content := "# A\n\n* Status: proposed\n"
	e := testEnv(t, "", map[string]string{
		"adr/0001-a.md": content,
		"adr/README.md": "# ADR Log\n\n- [A](0001-a.md) (proposed, 2024-01-01)\n",
	})

	w := do(t, e.router, http.MethodPut, "/records/adr/0001-a.md/status",
		map[string]any{"status": "accepted", "updateIndex": true},
		"If-Match", `"`+checksum.Sum([]byte(content))+`"`)
	if w.Code != http.StatusOK {
		t.Fatalf("set status = %d, body = %s", w.Code, w.Body.String())
	}
	var res record.StatusResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Previous != "proposed" || res.Status != "accepted" || !res.IndexChanged {
		t.Errorf("result = %+v", res)
	}

	got, err := e.db.Get("adr/0001-a.md")
	if err != nil {
		t.Fatalf("catalog Get: %v", err)
	}
	if got.Status != "accepted" {
		t.Errorf("catalog status = %q, want accepted", got.Status)
	}
}

func TestSetStatus_Errors(t *testing.T) {
	e := testEnv(t, "", map[string]string{
		"adr/0001-a.md": "# A\n\n* Status: proposed\n",
		"adr/0002-b.md": "# B\n\nno status\n",
	})
	cases := []struct {
		name    string
		target  string
		body    any
		headers []string
		want    int
	}{
		{"missing file", "/records/adr/0009-x.md/status", map[string]any{"status": "accepted"}, nil, http.StatusNotFound},
		{"no suffix", "/records/adr/0001-a.md", map[string]any{"status": "accepted"}, nil, http.StatusNotFound},
		{"empty status", "/records/adr/0001-a.md/status", map[string]any{"status": ""}, nil, http.StatusBadRequest},
		{"no status field", "/records/adr/0002-b.md/status", map[string]any{"status": "accepted"}, nil, http.StatusUnprocessableEntity},
		{"stale checksum", "/records/adr/0001-a.md/status", map[string]any{"status": "accepted"}, []string{"If-Match", `"stale"`}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, e.router, http.MethodPut, tc.target, tc.body, tc.headers...); w.Code != tc.want {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestListRecords(t *testing.T) {
	e := testEnv(t, "", map[string]string{
		"adr/README.md": "# ADR Log\n",
		"adr/0001-a.md": "# A\n\n* Status: accepted\n",
		"adr/0002-b.md": "# B\n\n* Status: proposed\n",
	})

	w := do(t, e.router, http.MethodGet, "/records", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp RecordListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Records) != 2 {
		t.Errorf("list = %+v", resp)
	}

	w = do(t, e.router, http.MethodGet, "/records?status=Accepted", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Records[0].Path != "adr/0001-a.md" {
		t.Errorf("filtered list = %+v", resp)
	}
}

func TestBootstrapEndpoint(t *testing.T) {
	e := testEnv(t, "", nil)
	w := do(t, e.router, http.MethodPost, "/bootstrap", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bootstrap = %d, body = %s", w.Code, w.Body.String())
	}
	var res record.BootstrapResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !res.IndexWritten || res.FirstADR.RelPath != "adr/0001-adopt-architecture-decision-records.md" {
		t.Errorf("bootstrap = %+v", res)
	}
	if _, err := e.db.Get(res.FirstADR.RelPath); err != nil {
		t.Errorf("first record not catalogued: %v", err)
	}

	w = do(t, e.router, http.MethodPost, "/bootstrap", map[string]any{"strategy": "date"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad strategy = %d, want 422", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	e := testEnv(t, "", map[string]string{"adr/0001-q.md": "# Queue\n\n* Status: accepted\n\nWe pick uniqueword.\n"})
	w := do(t, e.router, http.MethodGet, "/search?q=uniqueword", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Path != "adr/0001-q.md" {
		t.Errorf("results = %+v", resp.Results)
	}

	if w := do(t, e.router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	e := testEnv(t, "secret123", nil)
	cases := []struct {
		name    string
		headers []string
		want    int
	}{
		{"valid token", []string{"Authorization", "Bearer secret123"}, http.StatusOK},
		{"missing token", nil, http.StatusUnauthorized},
		{"wrong token", []string{"Authorization", "Bearer wrong"}, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(t, e.router, http.MethodGet, "/records", nil, tc.headers...); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	e := testEnv(t, "", nil)
	if w := do(t, e.router, http.MethodGet, "/records", nil); w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

func TestSSEEvents_AuthProtected(t *testing.T) {
	sseHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		<-r.Context().Done()
	})
	e := testEnvWithSSE(t, "tok", nil, sseHandler)

	if w := do(t, e.router, http.MethodGet, "/events", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE without token = %d, want 401", w.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
