package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

func registerStudyHandlers(api huma.API, svc Service) {
	// --- Study endpoints ---

	type studyListOutput struct {
		Body struct {
			Symbol  string          `json:"symbol"`
			Studies []drawing.Study `json:"studies"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-studies", Method: http.MethodGet, Path: "/api/v1/sessions/{symbol}/studies", Summary: "List studies in creation order", Tags: []string{"Studies"}},
		func(ctx context.Context, input *symbolInput) (*studyListOutput, error) {
			studies, err := svc.ListStudies(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &studyListOutput{}
			out.Body.Symbol = input.Symbol
			out.Body.Studies = studies
			if out.Body.Studies == nil {
				out.Body.Studies = []drawing.Study{}
			}
			return out, nil
		})

	type studyOutput struct {
		Body drawing.Study
	}
	huma.Register(api, huma.Operation{OperationID: "get-study", Method: http.MethodGet, Path: "/api/v1/sessions/{symbol}/studies/{id}", Summary: "Get a study by id", Tags: []string{"Studies"}},
		func(ctx context.Context, input *studyIDInput) (*studyOutput, error) {
			st, err := svc.GetStudy(ctx, input.Symbol, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &studyOutput{Body: st}, nil
		})

	type updateStudyInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		ID     string `path:"id" doc:"Study id"`
		Body   struct {
			Color     *string  `json:"color,omitempty" doc:"Hex color, #rgb or #rrggbb"`
			LineWidth *float64 `json:"lineWidth,omitempty" doc:"Stroke width in pixels"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "update-study", Method: http.MethodPatch, Path: "/api/v1/sessions/{symbol}/studies/{id}", Summary: "Recolor or restroke a study", Tags: []string{"Studies"}},
		func(ctx context.Context, input *updateStudyInput) (*studyOutput, error) {
			st, err := svc.UpdateStudy(ctx, input.Symbol, input.ID, controller.StudyPatch{
				Color:     input.Body.Color,
				LineWidth: input.Body.LineWidth,
			})
			if err != nil {
				return nil, mapErr(err)
			}
			return &studyOutput{Body: st}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-study", Method: http.MethodDelete, Path: "/api/v1/sessions/{symbol}/studies/{id}", Summary: "Delete a study", Tags: []string{"Studies"}},
		func(ctx context.Context, input *studyIDInput) (*struct{}, error) {
			if err := svc.DeleteStudy(ctx, input.Symbol, input.ID); err != nil {
				return nil, mapErr(err)
			}
			return nil, nil
		})

	type clearOutput struct {
		Body struct {
			Removed int `json:"removed"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "clear-studies", Method: http.MethodDelete, Path: "/api/v1/sessions/{symbol}/studies", Summary: "Delete every study of a session", Tags: []string{"Studies"}},
		func(ctx context.Context, input *symbolInput) (*clearOutput, error) {
			n, err := svc.ClearStudies(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &clearOutput{}
			out.Body.Removed = n
			return out, nil
		})

	type selectInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   struct {
			ID string `json:"id,omitempty" doc:"Study id; empty clears the selection"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "select-study", Method: http.MethodPut, Path: "/api/v1/sessions/{symbol}/selection", Summary: "Select a study or clear the selection", Tags: []string{"Studies"}},
		func(ctx context.Context, input *selectInput) (*stateOutput, error) {
			st, err := svc.SelectStudy(ctx, input.Symbol, input.Body.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &stateOutput{Body: st}, nil
		})
}
