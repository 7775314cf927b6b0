package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tv_drawings/internal/controller"
)

func registerCacheHandlers(api huma.API, svc Service) {
	// --- Local cache endpoints ---

	type listCachedOutput struct {
		Body struct {
			Charts []controller.CachedChart `json:"charts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-cached-charts", Method: http.MethodGet, Path: "/api/v1/cache", Summary: "List symbols with locally cached drawings", Tags: []string{"Cache"}},
		func(ctx context.Context, _ *struct{}) (*listCachedOutput, error) {
			charts, err := svc.ListCached(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listCachedOutput{}
			out.Body.Charts = charts
			if out.Body.Charts == nil {
				out.Body.Charts = []controller.CachedChart{}
			}
			return out, nil
		})

	type purgeCachedInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
	}
	huma.Register(api, huma.Operation{OperationID: "purge-cached-chart", Method: http.MethodDelete, Path: "/api/v1/cache/{symbol}", Summary: "Drop the cached drawings of a closed chart", Tags: []string{"Cache"}},
		func(ctx context.Context, input *purgeCachedInput) (*struct{}, error) {
			if err := svc.PurgeCached(ctx, input.Symbol); err != nil {
				return nil, mapErr(err)
			}
			return nil, nil
		})
}
