package controller

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

func (s *Service) requireSnapshots() error {
	if s.snaps == nil {
		return newError(CodeSnapshotsDisabled, "snapshot storage is not configured", nil)
	}
	return nil
}

func snapshotErr(err error) error {
	if errors.Is(err, snapshot.ErrNotFound) {
		return newError(CodeSnapshotNotFound, err.Error(), nil)
	}
	return err
}

// TakeSnapshot renders the session and archives the image with the current
// study set.
func (s *Service) TakeSnapshot(ctx context.Context, symbol, notes string) (snapshot.Meta, error) {
	if err := s.requireSnapshots(); err != nil {
		return snapshot.Meta{}, err
	}
	var (
		buf  bytes.Buffer
		meta snapshot.Meta
	)
	err := s.do(ctx, symbol, func(m *drawing.Manager, surf *surface.Surface) error {
		if err := surf.RenderPNG(&buf); err != nil {
			return newError(CodeRenderFailure, "render failed", err)
		}
		vp := surf.Viewport()
		meta = snapshot.Meta{
			ID:        uuid.New().String(),
			Symbol:    m.Subject(),
			Width:     vp.Width,
			Height:    vp.Height,
			CreatedAt: time.Now().UTC(),
			Studies:   m.Studies(),
			Notes:     strings.TrimSpace(notes),
		}
		return nil
	})
	if err != nil {
		return snapshot.Meta{}, err
	}
	if err := s.snaps.Save(meta, buf.Bytes()); err != nil {
		return snapshot.Meta{}, err
	}
	meta.SizeBytes = buf.Len()
	meta.StudyCount = len(meta.Studies)
	return meta, nil
}

func (s *Service) ListSnapshots(ctx context.Context, symbol string) ([]snapshot.Meta, error) {
	if err := s.requireSnapshots(); err != nil {
		return nil, err
	}
	return s.snaps.List(strings.ToUpper(strings.TrimSpace(symbol)))
}

func (s *Service) GetSnapshot(ctx context.Context, id string) (snapshot.Meta, error) {
	if err := s.requireSnapshots(); err != nil {
		return snapshot.Meta{}, err
	}
	if err := s.requireNonEmpty(id, "snapshotId"); err != nil {
		return snapshot.Meta{}, err
	}
	meta, err := s.snaps.Get(strings.TrimSpace(id))
	return meta, snapshotErr(err)
}

func (s *Service) ReadSnapshotImage(ctx context.Context, id string) ([]byte, error) {
	if err := s.requireSnapshots(); err != nil {
		return nil, err
	}
	if err := s.requireNonEmpty(id, "snapshotId"); err != nil {
		return nil, err
	}
	data, err := s.snaps.ReadImage(strings.TrimSpace(id))
	return data, snapshotErr(err)
}

func (s *Service) DeleteSnapshot(ctx context.Context, id string) error {
	if err := s.requireSnapshots(); err != nil {
		return err
	}
	if err := s.requireNonEmpty(id, "snapshotId"); err != nil {
		return err
	}
	return snapshotErr(s.snaps.Delete(strings.TrimSpace(id)))
}
