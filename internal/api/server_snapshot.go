package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
)

func registerSnapshotHandlers(api huma.API, svc Service) {
	// --- Snapshot endpoints ---

	type takeSnapshotInput struct {
		Symbol string `path:"symbol" doc:"Chart symbol"`
		Body   *struct {
			Notes string `json:"notes,omitempty" doc:"Free-form annotation for the snapshot"`
		} `required:"false"`
	}
	type takeSnapshotOutput struct {
		Body struct {
			Snapshot snapshot.Meta `json:"snapshot"`
			URL      string        `json:"url"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "take-snapshot", Method: http.MethodPost, Path: "/api/v1/sessions/{symbol}/snapshots", Summary: "Render the chart and archive it with its studies", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *takeSnapshotInput) (*takeSnapshotOutput, error) {
			notes := ""
			if input.Body != nil {
				notes = input.Body.Notes
			}
			meta, err := svc.TakeSnapshot(ctx, input.Symbol, notes)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &takeSnapshotOutput{}
			out.Body.Snapshot = meta
			out.Body.URL = "/api/v1/snapshots/" + meta.ID + "/image"
			return out, nil
		})

	type listSnapshotsInput struct {
		Symbol string `query:"symbol" doc:"Only snapshots of this chart symbol"`
	}
	type listSnapshotsOutput struct {
		Body struct {
			Snapshots []snapshot.Meta `json:"snapshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-snapshots", Method: http.MethodGet, Path: "/api/v1/snapshots", Summary: "List snapshots, newest first", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *listSnapshotsInput) (*listSnapshotsOutput, error) {
			metas, err := svc.ListSnapshots(ctx, input.Symbol)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSnapshotsOutput{}
			out.Body.Snapshots = metas
			if out.Body.Snapshots == nil {
				out.Body.Snapshots = []snapshot.Meta{}
			}
			return out, nil
		})

	type snapshotIDInput struct {
		SnapshotID string `path:"snapshotId"`
	}
	type getSnapshotOutput struct {
		Body snapshot.Meta
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot-metadata", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshotId}/metadata", Summary: "Get snapshot metadata and studies", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*getSnapshotOutput, error) {
			meta, err := svc.GetSnapshot(ctx, input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &getSnapshotOutput{Body: meta}, nil
		})

	type deleteSnapshotOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-snapshot", Method: http.MethodDelete, Path: "/api/v1/snapshots/{snapshotId}", Summary: "Delete snapshot", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*deleteSnapshotOutput, error) {
			if err := svc.DeleteSnapshot(ctx, input.SnapshotID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteSnapshotOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}
