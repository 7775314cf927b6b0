package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

func registerSessionHandlers(api huma.API, svc Service) {
	// --- Session endpoints ---

	type sessionListOutput struct {
		Body struct {
			Sessions []controller.SessionInfo `json:"sessions"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-sessions", Method: http.MethodGet, Path: "/api/v1/sessions", Summary: "List open chart sessions", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *struct{}) (*sessionListOutput, error) {
			sessions, err := svc.ListSessions(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionListOutput{}
			out.Body.Sessions = sessions
			return out, nil
		})

	type openSessionInput struct {
		Symbol string            `path:"symbol" doc:"Chart symbol, e.g. BINANCE:BTCUSDT"`
		Body   *surface.Viewport `required:"false" doc:"Initial viewport. Omit to use the server default."`
	}
	type sessionOutput struct {
		Body struct {
			controller.SessionInfo
			Created bool `json:"created"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "open-session", Method: http.MethodPost, Path: "/api/v1/sessions/{symbol}", Summary: "Open a chart session, loading cached studies", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *openSessionInput) (*sessionOutput, error) {
			info, created, err := svc.OpenSession(ctx, input.Symbol, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body.SessionInfo = info
			out.Body.Created = created
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "get-session", Method: http.MethodGet, Path: "/api/v1/sessions/{symbol}", Summary: "Get a chart session", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *symbolInput) (*sessionOutput, error) {
			info, err := svc.GetSession(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &sessionOutput{}
			out.Body.SessionInfo = info
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "close-session", Method: http.MethodDelete, Path: "/api/v1/sessions/{symbol}", Summary: "Close a chart session, flushing pending sync", Tags: []string{"Sessions"}},
		func(ctx context.Context, input *symbolInput) (*struct{}, error) {
			if err := svc.CloseSession(ctx, input.Symbol); err != nil {
				return nil, mapErr(err)
			}
			return nil, nil
		})

	// --- Viewport endpoints ---

	type viewportInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   surface.Viewport
	}
	type viewportOutput struct {
		Body surface.Viewport
	}
	huma.Register(api, huma.Operation{OperationID: "set-viewport", Method: http.MethodPut, Path: "/api/v1/sessions/{symbol}/viewport", Summary: "Replace the visible time and price window", Tags: []string{"Viewport"}},
		func(ctx context.Context, input *viewportInput) (*viewportOutput, error) {
			vp, err := svc.SetViewport(ctx, input.Symbol, input.Body)
			if err != nil {
				return nil, mapErr(err)
			}
			return &viewportOutput{Body: vp}, nil
		})

	type panInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   struct {
			DX   float64 `json:"dx,omitempty" doc:"Horizontal scroll in pixels; positive moves back in time"`
			Zoom float64 `json:"zoom,omitempty" minimum:"0" doc:"Zoom factor; >1 zooms in around the center"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "pan-viewport", Method: http.MethodPost, Path: "/api/v1/sessions/{symbol}/viewport/pan", Summary: "Pan and zoom the time axis (refused while dragging)", Tags: []string{"Viewport"}},
		func(ctx context.Context, input *panInput) (*viewportOutput, error) {
			vp, err := svc.Pan(ctx, input.Symbol, input.Body.DX, input.Body.Zoom)
			if err != nil {
				return nil, mapErr(err)
			}
			return &viewportOutput{Body: vp}, nil
		})
}
