package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
	"github.com/dgnsrekt/tv_drawings/internal/drawstore"
	"github.com/dgnsrekt/tv_drawings/internal/session"
	"github.com/dgnsrekt/tv_drawings/internal/snapshot"
	"github.com/dgnsrekt/tv_drawings/internal/surface"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cache := drawstore.NewMemoryStore()
	reg := session.NewRegistry(session.Config{
		Viewport: surface.Viewport{
			From: 1_700_000_000, To: 1_700_006_000, Interval: 60,
			MinPrice: 0, MaxPrice: 200, Width: 1000, Height: 400,
		},
		Theme:    surface.DarkTheme,
		Cache:    cache,
		Debounce: time.Hour,
	})
	t.Cleanup(reg.CloseAll)
	snaps, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("snapshot.NewStore() error = %v", err)
	}
	return NewService(reg, cache, snaps)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var got *CodedError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v (%T); want *CodedError", err, err)
	}
	if got.Code != code {
		t.Fatalf("error code = %q; want %q", got.Code, code)
	}
}

// placeHLine draws a horizontal line at pixel row y and returns its id.
func placeHLine(t *testing.T, s *Service, symbol string, y float64) string {
	t.Helper()
	ctx := context.Background()
	if _, err := s.SetTool(ctx, symbol, "hline"); err != nil {
		t.Fatalf("SetTool() error = %v", err)
	}
	if _, err := s.Pointer(ctx, symbol, ActionClick, 50, y, drawing.ButtonPrimary); err != nil {
		t.Fatalf("Pointer(click) error = %v", err)
	}
	studies, err := s.ListStudies(ctx, symbol)
	if err != nil || len(studies) == 0 {
		t.Fatalf("ListStudies() = %v, %v; want at least one study", studies, err)
	}
	return studies[len(studies)-1].ID
}

func TestRequireNonEmpty(t *testing.T) {
	s := &Service{}
	if err := s.requireNonEmpty("AAPL", "symbol"); err != nil {
		t.Fatalf("requireNonEmpty() = %v; want nil", err)
	}

	if err := s.requireNonEmpty("   ", "symbol"); err == nil {
		t.Fatalf("requireNonEmpty() = nil; want validation error")
	} else if got, ok := err.(*CodedError); !ok {
		t.Fatalf("requireNonEmpty() = %T; want *CodedError", err)
	} else if got.Code != CodeValidation {
		t.Fatalf("requireNonEmpty() code = %q; want %q", got.Code, CodeValidation)
	} else if got.Message != "symbol is required" {
		t.Fatalf("requireNonEmpty() message = %q; want %q", got.Message, "symbol is required")
	}
}

func TestSetTool_RequiresKnownTool(t *testing.T) {
	s := newTestService(t)
	if _, _, err := s.OpenSession(context.Background(), "aapl", nil); err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	_, err := s.SetTool(context.Background(), "AAPL", "fibonacci")
	requireCode(t, err, CodeValidation)
}

func TestUnknownSessionIsNotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.State(context.Background(), "MSFT")
	requireCode(t, err, CodeSessionNotFound)
	requireCode(t, s.CloseSession(context.Background(), "MSFT"), CodeSessionNotFound)
}

func TestOpenSessionReportsCreation(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	info, created, err := s.OpenSession(ctx, "btcusd", nil)
	if err != nil || !created {
		t.Fatalf("OpenSession() = %v, %v; want created", created, err)
	}
	if info.Symbol != "BTCUSD" || info.Viewport.Width != 1000 {
		t.Fatalf("OpenSession() info = %+v; want BTCUSD with default viewport", info)
	}
	if _, created, _ := s.OpenSession(ctx, "BTCUSD", nil); created {
		t.Fatal("second OpenSession() created = true; want false")
	}
	list, err := s.ListSessions(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSessions() = %v, %v; want 1 session", list, err)
	}
	_, _, err = s.OpenSession(ctx, "bad symbol", nil)
	requireCode(t, err, CodeValidation)
}

func TestPointerPlacesAndSelects(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "SPY", nil)
	id := placeHLine(t, s, "SPY", 200)

	st, err := s.GetStudy(ctx, "SPY", id)
	if err != nil || st.Type != drawing.TypeHorizontalLine || st.Price != 100 {
		t.Fatalf("GetStudy() = %+v, %v; want hline at 100", st, err)
	}

	res, err := s.Pointer(ctx, "SPY", ActionMove, 500, 203, 0)
	if err != nil || res.Hit == nil || res.Hit.StudyID != id {
		t.Fatalf("Pointer(move) = %+v, %v; want hit on %s", res, err, id)
	}
	res, err = s.Pointer(ctx, "SPY", ActionClick, 500, 203, 0)
	if err != nil || res.State.Selected != id {
		t.Fatalf("Pointer(click) selected = %q, %v; want %q", res.State.Selected, err, id)
	}
	if res.Cursor != drawing.CursorMove {
		t.Fatalf("cursor = %q; want %q", res.Cursor, drawing.CursorMove)
	}

	_, err = s.Pointer(ctx, "SPY", "hover", 0, 0, 0)
	requireCode(t, err, CodeValidation)
}

func TestDragLocksPanAndMovesPrice(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "ETH", nil)
	id := placeHLine(t, s, "ETH", 200)
	_, _ = s.Pointer(ctx, "ETH", ActionMove, 500, 200, 0)
	_, _ = s.Pointer(ctx, "ETH", ActionClick, 500, 200, 0)

	res, err := s.Pointer(ctx, "ETH", ActionDown, 500, 200, drawing.ButtonPrimary)
	if err != nil || !res.DragStarted {
		t.Fatalf("Pointer(down) = %+v, %v; want drag started", res, err)
	}
	_, err = s.Pan(ctx, "ETH", 10, 0)
	requireCode(t, err, CodeInteractionLocked)

	if _, err := s.Pointer(ctx, "ETH", ActionUp, 500, 180, drawing.ButtonPrimary); err != nil {
		t.Fatalf("Pointer(up) error = %v", err)
	}
	st, _ := s.GetStudy(ctx, "ETH", id)
	if st.Price != 110 {
		t.Fatalf("price after drag = %v; want 110", st.Price)
	}
	if _, err := s.Pan(ctx, "ETH", 10, 0); err != nil {
		t.Fatalf("Pan() after drag error = %v", err)
	}
}

func TestUpdateStudyValidatesStyle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "QQQ", nil)
	id := placeHLine(t, s, "QQQ", 100)

	color := "#00ff00"
	width := 3.0
	st, err := s.UpdateStudy(ctx, "QQQ", id, StudyPatch{Color: &color, LineWidth: &width})
	if err != nil || st.Color != color || st.LineWidth != width {
		t.Fatalf("UpdateStudy() = %+v, %v; want recolored and widened", st, err)
	}

	bad := "green"
	_, err = s.UpdateStudy(ctx, "QQQ", id, StudyPatch{Color: &bad})
	requireCode(t, err, CodeValidation)
	_, err = s.UpdateStudy(ctx, "QQQ", id, StudyPatch{})
	requireCode(t, err, CodeValidation)
	_, err = s.UpdateStudy(ctx, "QQQ", "missing", StudyPatch{Color: &color})
	requireCode(t, err, CodeStudyNotFound)
}

func TestDeleteAndClearStudies(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "IWM", nil)
	id := placeHLine(t, s, "IWM", 100)
	placeHLine(t, s, "IWM", 300)

	if err := s.DeleteStudy(ctx, "IWM", id); err != nil {
		t.Fatalf("DeleteStudy() error = %v", err)
	}
	requireCode(t, s.DeleteStudy(ctx, "IWM", id), CodeStudyNotFound)

	n, err := s.ClearStudies(ctx, "IWM")
	if err != nil || n != 1 {
		t.Fatalf("ClearStudies() = %d, %v; want 1", n, err)
	}
}

func TestKeyEscapeCancelsPlacement(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "DIA", nil)
	if _, err := s.SetTool(ctx, "DIA", "trendline"); err != nil {
		t.Fatalf("SetTool() error = %v", err)
	}
	_, _ = s.Pointer(ctx, "DIA", ActionClick, 100, 100, 0)

	handled, st, err := s.Key(ctx, "DIA", "Escape")
	if err != nil || !handled || st.Tool != drawing.ToolPointer || st.Pending != 0 {
		t.Fatalf("Key(Escape) = %v, %+v, %v; want placement cancelled", handled, st, err)
	}
	_, _, err = s.Key(ctx, "DIA", " ")
	requireCode(t, err, CodeValidation)
}

func TestRenderReturnsPNG(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "GLD", nil)
	placeHLine(t, s, "GLD", 200)

	png, err := s.Render(ctx, "GLD")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Fatalf("Render() returned %d bytes without PNG signature", len(png))
	}
}

func TestSetViewportRejectsEmptyRange(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	_, _, _ = s.OpenSession(ctx, "TLT", nil)
	_, err := s.SetViewport(ctx, "TLT", surface.Viewport{From: 10, To: 10, MinPrice: 0, MaxPrice: 1, Width: 10, Height: 10})
	requireCode(t, err, CodeValidation)
}

func TestSnapshotLifecycle(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, _, err := s.OpenSession(ctx, "SPY", nil); err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	placeHLine(t, s, "SPY", 200)

	meta, err := s.TakeSnapshot(ctx, "SPY", "  breakout  ")
	if err != nil {
		t.Fatalf("TakeSnapshot() error = %v", err)
	}
	if meta.Symbol != "SPY" || meta.StudyCount != 1 || meta.Notes != "breakout" || meta.SizeBytes == 0 {
		t.Fatalf("TakeSnapshot() = %+v; want SPY, 1 study, trimmed notes, non-empty image", meta)
	}

	list, err := s.ListSnapshots(ctx, "spy")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListSnapshots() = %d, %v; want 1", len(list), err)
	}
	img, err := s.ReadSnapshotImage(ctx, meta.ID)
	if err != nil || len(img) != meta.SizeBytes {
		t.Fatalf("ReadSnapshotImage() = %d bytes, %v; want %d", len(img), err, meta.SizeBytes)
	}
	if err := s.DeleteSnapshot(ctx, meta.ID); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}
	_, err = s.GetSnapshot(ctx, meta.ID)
	requireCode(t, err, CodeSnapshotNotFound)
}

func TestSnapshotsDisabled(t *testing.T) {
	s := NewService(session.NewRegistry(session.Config{}), drawstore.NewMemoryStore(), nil)
	_, err := s.ListSnapshots(context.Background(), "")
	requireCode(t, err, CodeSnapshotsDisabled)
}

func TestCachedChartsListAndPurge(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	if _, _, err := s.OpenSession(ctx, "eth", nil); err != nil {
		t.Fatalf("OpenSession() error = %v", err)
	}
	placeHLine(t, s, "ETH", 200)
	placeHLine(t, s, "ETH", 100)
	if err := s.cache.Save("unrelated", []byte("x")); err != nil {
		t.Fatalf("cache.Save() error = %v", err)
	}

	list, err := s.ListCached(ctx)
	if err != nil {
		t.Fatalf("ListCached() error = %v", err)
	}
	want := CachedChart{Symbol: "ETH", Studies: 2, Valid: true, Open: true}
	if len(list) != 1 || list[0] != want {
		t.Fatalf("ListCached() = %+v; want [%+v]", list, want)
	}

	requireCode(t, s.PurgeCached(ctx, "eth"), CodeSessionOpen)

	if err := s.CloseSession(ctx, "ETH"); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	if err := s.PurgeCached(ctx, "eth"); err != nil {
		t.Fatalf("PurgeCached() error = %v", err)
	}
	requireCode(t, s.PurgeCached(ctx, "eth"), CodeCacheNotFound)
	requireCode(t, s.PurgeCached(ctx, "bad symbol"), CodeValidation)

	info, _, err := s.OpenSession(ctx, "ETH", nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if info.State.StudyCount != 0 {
		t.Fatalf("studies after purge = %d; want 0", info.State.StudyCount)
	}
}
