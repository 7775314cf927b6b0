package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/drawstore"
	"github.com/dgnsrekt/tv_drawings/internal/events"
	"github.com/dgnsrekt/tv_drawings/internal/session"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	broker := events.NewBroker()
	cache := drawstore.NewMemoryStore()
	reg := session.NewRegistry(session.Config{
		Viewport: surface.Viewport{
			From: 1_700_000_000, To: 1_700_006_000, Interval: 60,
			MinPrice: 0, MaxPrice: 200, Width: 1000, Height: 400,
		},
		Theme:    surface.DarkTheme,
		Cache:    cache,
		Debounce: time.Hour,
		Broker:   broker,
	})
	t.Cleanup(func() {
		reg.CloseAll()
		broker.CloseAll()
	})
	snaps, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("snapshot.NewStore() error = %v", err)
	}
	return NewServer(controller.NewService(reg, cache, snaps), Options{Broker: broker, RequestTimeout: 5 * time.Second})
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" {
		t.Fatalf("status field = %q, want ok", out.Status)
	}
}

func TestOpenSession(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions/btcusd", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
	var out struct {
		Symbol  string `json:"symbol"`
		Created bool   `json:"created"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Symbol != "BTCUSD" || !out.Created {
		t.Fatalf("open = %+v, want BTCUSD created", out)
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD", "")
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Created {
		t.Fatalf("second open reported created")
	}
}

func TestUnknownSessionNotFound(t *testing.T) {
	h := newTestServer(t)
	w := doJSON(t, h, http.MethodGet, "/api/v1/sessions/NOPE/studies", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestSetToolRejectsUnknownTool(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD", "")
	w := doJSON(t, h, http.MethodPut, "/api/v1/sessions/BTCUSD/tool", `{"tool":"banana"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPointerPlacesAndDeletesStudy(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD", "")

	if w := doJSON(t, h, http.MethodPut, "/api/v1/sessions/BTCUSD/tool", `{"tool":"horizontal_line"}`); w.Code != http.StatusOK {
		t.Fatalf("set tool status = %d: %s", w.Code, w.Body.String())
	}
	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD/pointer", `{"action":"click","x":50,"y":200}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pointer status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/BTCUSD/studies", "")
	var list struct {
		Studies []struct {
			ID    string  `json:"id"`
			Type  string  `json:"type"`
			Price float64 `json:"price"`
		} `json:"studies"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Studies) != 1 || list.Studies[0].Type != "horizontal_line" || list.Studies[0].Price != 100 {
		t.Fatalf("studies = %+v, want one horizontal_line at 100", list.Studies)
	}
	id := list.Studies[0].ID

	w = doJSON(t, h, http.MethodPatch, "/api/v1/sessions/BTCUSD/studies/"+id, `{"color":"not-a-color"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("patch status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/sessions/BTCUSD/studies/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/BTCUSD/studies/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestRenderPNG(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD", "")
	w := doJSON(t, h, http.MethodGet, "/api/v1/sessions/BTCUSD/render.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type = %q, want image/png", ct)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/sessions/NOPE/render.png", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown render status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestEventStreamRouteRegistered(t *testing.T) {
	h := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type = %q, want text/event-stream", ct)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{controller.CodeValidation, http.StatusBadRequest},
		{controller.CodeSessionNotFound, http.StatusNotFound},
		{controller.CodeStudyNotFound, http.StatusNotFound},
		{controller.CodeInteractionLocked, http.StatusConflict},
		{controller.CodeTimeout, http.StatusGatewayTimeout},
		{controller.CodeRenderFailure, http.StatusInternalServerError},
		{controller.CodeSnapshotNotFound, http.StatusNotFound},
		{controller.CodeSnapshotsDisabled, http.StatusNotImplemented},
		{controller.CodeCacheNotFound, http.StatusNotFound},
		{controller.CodeSessionOpen, http.StatusConflict},
	}
	for _, tc := range tests {
		got, _ := statusFor(&controller.CodedError{Code: tc.code, Message: "x"})
		if got != tc.want {
			t.Fatalf("statusFor(%s) = %d; want %d", tc.code, got, tc.want)
		}
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD", "")

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions/BTCUSD/snapshots", `{"notes":"open"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("take status = %d: %s", w.Code, w.Body.String())
	}
	var taken struct {
		Snapshot struct {
			ID string `json:"id"`
		} `json:"snapshot"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &taken); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if taken.URL != "/api/v1/snapshots/"+taken.Snapshot.ID+"/image" {
		t.Fatalf("url = %q; want image url for %s", taken.URL, taken.Snapshot.ID)
	}

	w = doJSON(t, h, http.MethodGet, taken.URL, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("image status = %d, content-type = %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/snapshots/"+taken.Snapshot.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/snapshots/"+taken.Snapshot.ID+"/metadata", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("metadata after delete status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCacheEndpoints(t *testing.T) {
	h := newTestServer(t)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/ETHUSD", "")
	doJSON(t, h, http.MethodPut, "/api/v1/sessions/ETHUSD/tool", `{"tool":"horizontal_line"}`)
	doJSON(t, h, http.MethodPost, "/api/v1/sessions/ETHUSD/pointer", `{"action":"click","x":50,"y":200}`)

	w := doJSON(t, h, http.MethodGet, "/api/v1/cache", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", w.Code, w.Body.String())
	}
	var list struct {
		Charts []controller.CachedChart `json:"charts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Charts) != 1 || list.Charts[0].Symbol != "ETHUSD" || list.Charts[0].Studies != 1 || !list.Charts[0].Open {
		t.Fatalf("charts = %+v; want open ETHUSD with 1 study", list.Charts)
	}

	if w := doJSON(t, h, http.MethodDelete, "/api/v1/cache/ETHUSD", ""); w.Code != http.StatusConflict {
		t.Fatalf("purge open status = %d, want %d", w.Code, http.StatusConflict)
	}
	doJSON(t, h, http.MethodDelete, "/api/v1/sessions/ETHUSD", "")
	if w := doJSON(t, h, http.MethodDelete, "/api/v1/cache/ETHUSD", ""); w.Code != http.StatusNoContent {
		t.Fatalf("purge status = %d, want %d: %s", w.Code, http.StatusNoContent, w.Body.String())
	}
	if w := doJSON(t, h, http.MethodDelete, "/api/v1/cache/ETHUSD", ""); w.Code != http.StatusNotFound {
		t.Fatalf("purge again status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
