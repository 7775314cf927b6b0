package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

func registerInteractionHandlers(api huma.API, svc Service) {
	// --- Tool, pointer and keyboard endpoints ---

	type toolInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   struct {
			Tool string `json:"tool" doc:"pointer, horizontal_line, trendline, ray or parallel_channel"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "set-tool", Method: http.MethodPut, Path: "/api/v1/sessions/{symbol}/tool", Summary: "Activate a drawing tool", Tags: []string{"Interaction"}},
		func(ctx context.Context, input *toolInput) (*stateOutput, error) {
			st, err := svc.SetTool(ctx, input.Symbol, input.Body.Tool)
			if err != nil {
				return nil, mapErr(err)
			}
			return &stateOutput{Body: st}, nil
		})

	type pointerInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   struct {
			Action string  `json:"action" enum:"move,click,down,up,context" doc:"Pointer event kind"`
			X      float64 `json:"x" doc:"Pixel x within the chart"`
			Y      float64 `json:"y" doc:"Pixel y within the chart"`
			Button int     `json:"button,omitempty" doc:"0 primary, 2 secondary"`
		}
	}
	type pointerOutput struct {
		Body controller.PointerResult
	}
	huma.Register(api, huma.Operation{OperationID: "pointer-event", Method: http.MethodPost, Path: "/api/v1/sessions/{symbol}/pointer", Summary: "Deliver a pointer event", Tags: []string{"Interaction"}},
		func(ctx context.Context, input *pointerInput) (*pointerOutput, error) {
			res, err := svc.Pointer(ctx, input.Symbol, input.Body.Action, input.Body.X, input.Body.Y, input.Body.Button)
			if err != nil {
				return nil, mapErr(err)
			}
			return &pointerOutput{Body: res}, nil
		})

	type keyInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   struct {
			Key string `json:"key" doc:"Key name: Delete, Backspace or Escape"`
		}
	}
	type keyOutput struct {
		Body struct {
			Handled bool          `json:"handled"`
			State   drawing.State `json:"state"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "key-event", Method: http.MethodPost, Path: "/api/v1/sessions/{symbol}/keys", Summary: "Deliver a key press", Tags: []string{"Interaction"}},
		func(ctx context.Context, input *keyInput) (*keyOutput, error) {
			handled, st, err := svc.Key(ctx, input.Symbol, input.Body.Key)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &keyOutput{}
			out.Body.Handled = handled
			out.Body.State = st
			return out, nil
		})

	type stateViewOutput struct {
		Body controller.StateView
	}
	huma.Register(api, huma.Operation{OperationID: "get-state", Method: http.MethodGet, Path: "/api/v1/sessions/{symbol}/state", Summary: "Get tool, placement, selection and drag state", Tags: []string{"Interaction"}},
		func(ctx context.Context, input *symbolInput) (*stateViewOutput, error) {
			st, err := svc.State(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			return &stateViewOutput{Body: st}, nil
		})
}
