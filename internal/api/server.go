package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/events"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

type Service interface {
	OpenSession(ctx context.Context, symbol string, vp *surface.Viewport) (controller.SessionInfo, bool, error)
	ListSessions(ctx context.Context) ([]controller.SessionInfo, error)
	GetSession(ctx context.Context, symbol string) (controller.SessionInfo, error)
	CloseSession(ctx context.Context, symbol string) error
	SetViewport(ctx context.Context, symbol string, vp surface.Viewport) (surface.Viewport, error)
	Pan(ctx context.Context, symbol string, dx, zoom float64) (surface.Viewport, error)
	SetTool(ctx context.Context, symbol, tool string) (drawing.State, error)
	Pointer(ctx context.Context, symbol, action string, x, y float64, button int) (controller.PointerResult, error)
	Key(ctx context.Context, symbol, key string) (bool, drawing.State, error)
	ListStudies(ctx context.Context, symbol string) ([]drawing.Study, error)
	GetStudy(ctx context.Context, symbol, id string) (drawing.Study, error)
	UpdateStudy(ctx context.Context, symbol, id string, patch controller.StudyPatch) (drawing.Study, error)
	SelectStudy(ctx context.Context, symbol, id string) (drawing.State, error)
	DeleteStudy(ctx context.Context, symbol, id string) error
	ClearStudies(ctx context.Context, symbol string) (int, error)
	State(ctx context.Context, symbol string) (controller.StateView, error)
	Render(ctx context.Context, symbol string) ([]byte, error)
	TakeSnapshot(ctx context.Context, symbol, notes string) (snapshot.Meta, error)
	ListSnapshots(ctx context.Context, symbol string) ([]snapshot.Meta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.Meta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, id string) error
	ListCached(ctx context.Context) ([]controller.CachedChart, error)
	PurgeCached(ctx context.Context, symbol string) error
}

// Options configures the HTTP surface.
type Options struct {
	// Broker feeds the SSE and WebSocket event streams. Nil disables them.
	Broker *events.Broker
	// RequestTimeout bounds every non-streaming request.
	RequestTimeout time.Duration
}

type symbolInput struct {
	Symbol string `path:"symbol" doc:"Chart symbol, e.g. BINANCE:BTCUSDT"`
}

type studyIDInput struct {
	Symbol string `path:"symbol" doc:"Chart symbol"`
	ID     string `path:"id" doc:"Study id"`
}

type stateOutput struct {
	Body drawing.State
}

func NewServer(svc Service, opts Options) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(requestTimeout(opts.RequestTimeout))

	cfg := huma.DefaultConfig("Chart Drawing API", "1.0.0")
	cfg.DocsPath = ""
	cfg.Info.Description = apiDescription
	cfg.Tags = apiTags
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	router.Get("/api/v1/sessions/{symbol}/render.png", renderHandler(svc))
	router.Get("/api/v1/snapshots/{snapshotId}/image", snapshotImageHandler(svc))

	if opts.Broker != nil {
		router.Get(eventsPath, events.SSEHandler(opts.Broker))
		router.Get(eventsPath+"/ws", events.WSHandler(opts.Broker))
	}

	registerHealthHandler(api, opts.Broker)
	registerSessionHandlers(api, svc)
	registerInteractionHandlers(api, svc)
	registerStudyHandlers(api, svc)
	registerSnapshotHandlers(api, svc)
	registerCacheHandlers(api, svc)

	return router
}

func registerHealthHandler(api huma.API, broker *events.Broker) {
	type healthOutput struct {
		Body struct {
			Status        string `json:"status"`
			StreamClients int    `json:"streamClients"`
			Dropped       int64  `json:"droppedEvents"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/api/v1/health", Summary: "Server health", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			if broker != nil {
				out.Body.StreamClients = broker.ClientCount()
				out.Body.Dropped = broker.Dropped()
			}
			return out, nil
		})
}

func renderHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		png, err := svc.Render(r.Context(), chi.URLParam(r, "symbol"))
		if err != nil {
			status, msg := statusFor(err)
			http.Error(w, msg, status)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(png); err != nil {
			slog.Debug("render response write failed", "error", err)
		}
	}
}

func snapshotImageHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := svc.ReadSnapshotImage(r.Context(), chi.URLParam(r, "snapshotId"))
		if err != nil {
			status, msg := statusFor(err)
			http.Error(w, msg, status)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		if _, err := w.Write(data); err != nil {
			slog.Debug("snapshot image write failed", "error", err)
		}
	}
}

// statusFor maps a service error to an HTTP status and message.
func statusFor(err error) (int, string) {
	var coded *controller.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case controller.CodeValidation:
			return http.StatusBadRequest, coded.Message
		case controller.CodeSessionNotFound, controller.CodeStudyNotFound, controller.CodeSnapshotNotFound, controller.CodeCacheNotFound:
			return http.StatusNotFound, coded.Message
		case controller.CodeSnapshotsDisabled:
			return http.StatusNotImplemented, coded.Message
		case controller.CodeInteractionLocked, controller.CodeSessionOpen:
			return http.StatusConflict, coded.Message
		case controller.CodeTimeout:
			return http.StatusGatewayTimeout, coded.Message
		default:
			return http.StatusInternalServerError, fmt.Sprintf("%s: %s", coded.Code, coded.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "request timed out"
	}
	return http.StatusInternalServerError, err.Error()
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	status, msg := statusFor(err)
	switch status {
	case http.StatusBadRequest:
		return huma.Error400BadRequest(msg)
	case http.StatusNotFound:
		return huma.Error404NotFound(msg)
	case http.StatusConflict:
		return huma.Error409Conflict(msg)
	case http.StatusNotImplemented:
		return huma.Error501NotImplemented(msg)
	case http.StatusGatewayTimeout:
		return huma.Error504GatewayTimeout(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}
