package drawing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Phase is the step within a multi-click placement.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhasePlacingP1      Phase = "placing_p1"
	PhasePlacingP2      Phase = "placing_p2"
	PhasePlacingChannel Phase = "placing_channel"
)

var (
	// ErrStudyNotFound is returned for operations on an unknown id.
	ErrStudyNotFound = errors.New("study not found")
	// ErrInvalidStyle is returned for a rejected color or line width.
	ErrInvalidStyle = errors.New("invalid study style")
	// ErrClosed is returned once the manager has been torn down.
	ErrClosed = errors.New("drawing manager closed")
)

// Options configures a Manager. Zero values pick defaults.
type Options struct {
	// Subject identifies the chart, usually the instrument symbol.
	Subject   string
	Cache     Cache
	Callbacks Callbacks
	// OnSave enables remote sync. Nil keeps persistence local only.
	OnSave      SaveFunc
	Debounce    time.Duration
	SyncTimeout time.Duration
	Styles      map[StudyType]Style
	NewID       func() string
	AfterFunc   AfterFunc
}

// State is a read-only view of the interaction state.
type State struct {
	Subject     string    `json:"subject"`
	Tool        StudyType `json:"tool"`
	Phase       Phase     `json:"phase"`
	Pending     int       `json:"pending"`
	Selected    string    `json:"selected"`
	Hovered     string    `json:"hovered"`
	Dragging    bool      `json:"dragging"`
	StudyCount  int       `json:"studyCount"`
	SyncPending bool      `json:"syncPending"`
}

type dragState struct {
	id     string
	startY float64
	origin Study
}

// Manager owns every study of one chart. All methods must be called from a
// single goroutine; only the debounced remote sync runs elsewhere, on a
// snapshot of the study set.
type Manager struct {
	host        Host
	subject     string
	key         string
	cache       Cache
	cb          Callbacks
	onSave      SaveFunc
	saver       *debouncer
	syncTimeout time.Duration
	styles      map[StudyType]Style
	newID       func() string

	studies map[string]studyPrimitive
	order   []string

	tool    StudyType
	phase   Phase
	pending []Anchor

	selected string
	hovered  string
	drag     *dragState

	unsubscribe []func()
	closed      bool
}

// NewManager loads the cached study set for opts.Subject, attaches it to host
// and subscribes to host pointer events.
func NewManager(host Host, opts Options) *Manager {
	m := &Manager{
		host:        host,
		subject:     opts.Subject,
		key:         CacheKey(opts.Subject),
		cache:       opts.Cache,
		cb:          opts.Callbacks,
		onSave:      opts.OnSave,
		syncTimeout: opts.SyncTimeout,
		styles:      DefaultStyles(),
		newID:       opts.NewID,
		studies:     make(map[string]studyPrimitive),
		phase:       PhaseIdle,
	}
	for t, st := range opts.Styles {
		if ValidColor(st.Color) && ValidLineWidth(st.LineWidth) {
			m.styles[t] = st
		}
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if m.syncTimeout <= 0 {
		m.syncTimeout = 10 * time.Second
	}
	if m.onSave != nil {
		delay := opts.Debounce
		if delay <= 0 {
			delay = DefaultSaveDebounce
		}
		m.saver = newDebouncer(delay, opts.AfterFunc, m.sync)
	}

	m.load()
	m.unsubscribe = append(m.unsubscribe,
		host.SubscribeClick(m.handleClick),
		host.SubscribeCrosshairMove(m.handleCrosshairMove),
	)
	return m
}

func (m *Manager) load() {
	if m.cache == nil {
		return
	}
	data, err := m.cache.Load(m.key)
	if err != nil {
		slog.Warn("drawing cache read failed", "subject", m.subject, "error", err)
		return
	}
	studies, ok := DecodeRecord(data)
	if !ok {
		return
	}
	for _, s := range studies {
		p, err := newStudyPrimitive(s)
		if err != nil {
			slog.Warn("drawing cache entry skipped", "subject", m.subject, "id", s.ID, "error", err)
			continue
		}
		m.add(p)
	}
	slog.Debug("drawings loaded", "subject", m.subject, "count", len(m.order))
}

// SetCallbacks replaces the callback holder. Live subscriptions see the new
// callbacks on their next event.
func (m *Manager) SetCallbacks(cb Callbacks) {
	m.cb = cb
}

// Subject returns the chart subject this manager persists under.
func (m *Manager) Subject() string { return m.subject }

// SetTool activates a placement tool, or pointer mode for ToolPointer. Any
// half-placed study is discarded.
func (m *Manager) SetTool(tool StudyType) error {
	if m.closed {
		return ErrClosed
	}
	if tool != ToolPointer && tool.clicks() == 0 {
		return fmt.Errorf("unknown study type %q", tool)
	}
	m.setTool(tool)
	return nil
}

func (m *Manager) setTool(tool StudyType) {
	m.pending = nil
	m.phase = PhaseIdle
	if tool != ToolPointer {
		m.phase = PhasePlacingP1
	}
	changed := m.tool != tool
	m.tool = tool
	if tool == ToolPointer {
		m.setSelected("")
	}
	if changed && m.cb.OnToolChange != nil {
		m.cb.OnToolChange(tool)
	}
}

func (m *Manager) handleCrosshairMove(ev PointerEvent) {
	if m.closed {
		return
	}
	if _, ok := m.studies[ev.HoveredID]; ok {
		m.hovered = ev.HoveredID
		return
	}
	m.hovered = ""
}

func (m *Manager) handleClick(ev PointerEvent) {
	if m.closed {
		return
	}
	if m.tool == ToolPointer {
		m.setSelected(m.hovered)
		return
	}
	m.place(ev)
}

func (m *Manager) place(ev PointerEvent) {
	price, ok := m.host.YToPrice(ev.Y)
	if !ok {
		slog.Debug("placement click outside price scale", "subject", m.subject, "y", ev.Y)
		return
	}

	if m.phase == PhasePlacingChannel {
		p1, p2 := m.pending[0], m.pending[1]
		m.commit(Study{Type: TypeParallelChannel, P1: &p1, P2: &p2, ChannelOffset: price - p1.Price})
		return
	}
	if m.tool == TypeHorizontalLine {
		m.commit(Study{Type: TypeHorizontalLine, Price: price})
		return
	}

	t, ok := m.host.XToTime(ev.X)
	if !ok {
		slog.Debug("placement click outside time scale", "subject", m.subject, "x", ev.X)
		return
	}
	m.pending = append(m.pending, Anchor{Time: t, Price: price})
	if len(m.pending) == m.tool.clicks() {
		p1, p2 := m.pending[0], m.pending[1]
		m.commit(Study{Type: m.tool, P1: &p1, P2: &p2})
		return
	}
	switch len(m.pending) {
	case 1:
		m.phase = PhasePlacingP2
	case 2:
		m.phase = PhasePlacingChannel
	}
}

func (m *Manager) commit(s Study) {
	tool := m.tool
	style := m.styles[s.Type]
	s.ID = m.newID()
	s.Color = style.Color
	s.LineWidth = style.LineWidth
	p, err := newStudyPrimitive(s)
	if err != nil {
		slog.Warn("drawing study rejected", "subject", m.subject, "type", tool, "error", err)
		m.setTool(ToolPointer)
		return
	}
	m.add(p)
	slog.Info("drawing study created", "subject", m.subject, "id", s.ID, "type", s.Type)
	m.persist()
	m.setTool(ToolPointer)
}

func (m *Manager) add(p studyPrimitive) {
	id := p.data().ID
	m.studies[id] = p
	m.order = append(m.order, id)
	m.host.AttachPrimitive(p)
}

func (m *Manager) setSelected(id string) {
	if _, ok := m.studies[id]; !ok {
		id = ""
	}
	if id == m.selected {
		return
	}
	if p, ok := m.studies[m.selected]; ok {
		p.setSelected(false)
	}
	m.selected = id
	if p, ok := m.studies[id]; ok {
		p.setSelected(true)
	}
	m.host.RequestRedraw()
	if m.cb.OnSelectionChange != nil {
		m.cb.OnSelectionChange(id)
	}
}

// Select selects id directly, or clears the selection for "".
func (m *Manager) Select(id string) error {
	if m.closed {
		return ErrClosed
	}
	if id != "" {
		if _, ok := m.studies[id]; !ok {
			return fmt.Errorf("%w: %s", ErrStudyNotFound, id)
		}
	}
	m.setSelected(id)
	return nil
}

// PointerDown starts a drag when no tool is active and the press lands on the
// selected study. It reports whether a drag started.
func (m *Manager) PointerDown(x, y float64, button int) bool {
	if m.closed || m.drag != nil || button != ButtonPrimary {
		return false
	}
	if m.tool != ToolPointer || m.selected == "" || m.hovered != m.selected {
		return false
	}
	p := m.studies[m.selected]
	m.drag = &dragState{id: m.selected, startY: y, origin: p.data().Clone()}
	m.host.SetInteractionEnabled(false)
	slog.Debug("drawing drag started", "subject", m.subject, "id", m.selected)
	return true
}

// PointerMove applies the price delta between the drag start and y to every
// anchor of the dragged study. Anchor times stay fixed.
func (m *Manager) PointerMove(_, y float64) {
	if m.drag == nil {
		return
	}
	p, ok := m.studies[m.drag.id]
	if !ok {
		return
	}
	from, ok := m.host.YToPrice(m.drag.startY)
	if !ok {
		return
	}
	to, ok := m.host.YToPrice(y)
	if !ok {
		return
	}
	p.data().withPriceShift(m.drag.origin, to-from)
	p.RequestUpdate()
}

// PointerUp ends an active drag, restores pan/zoom and persists.
func (m *Manager) PointerUp(x, y float64) {
	if m.drag == nil {
		return
	}
	m.PointerMove(x, y)
	m.endDrag()
	m.persist()
}

func (m *Manager) endDrag() {
	if m.drag == nil {
		return
	}
	m.drag = nil
	m.host.SetInteractionEnabled(true)
}

// ContextMenu reports a secondary click. The callback fires only when a study
// is hovered; the hovered id is returned.
func (m *Manager) ContextMenu(x, y float64) string {
	if m.closed || m.hovered == "" {
		return ""
	}
	if m.cb.OnContextMenu != nil {
		m.cb.OnContextMenu(x, y, m.hovered)
	}
	return m.hovered
}

// KeyDown handles Delete/Backspace (delete selection) and Escape (cancel
// placement, then clear selection). It reports whether the key was used.
func (m *Manager) KeyDown(key string) bool {
	if m.closed {
		return false
	}
	switch key {
	case "Delete", "Backspace":
		if m.selected == "" {
			return false
		}
		return m.Delete(m.selected) == nil
	case "Escape":
		if m.tool != ToolPointer {
			m.setTool(ToolPointer)
			return true
		}
		if m.selected != "" {
			m.setSelected("")
			return true
		}
	}
	return false
}

// Delete removes a study and detaches it from the host.
func (m *Manager) Delete(id string) error {
	if m.closed {
		return ErrClosed
	}
	if _, ok := m.studies[id]; !ok {
		return fmt.Errorf("%w: %s", ErrStudyNotFound, id)
	}
	m.remove(id)
	slog.Info("drawing study deleted", "subject", m.subject, "id", id)
	m.host.RequestRedraw()
	m.persist()
	return nil
}

// Clear removes every study with a single persistence write.
func (m *Manager) Clear() int {
	if m.closed {
		return 0
	}
	n := len(m.order)
	for _, id := range append([]string(nil), m.order...) {
		m.remove(id)
	}
	if n > 0 {
		m.host.RequestRedraw()
		m.persist()
	}
	return n
}

func (m *Manager) remove(id string) {
	p := m.studies[id]
	if m.drag != nil && m.drag.id == id {
		m.endDrag()
	}
	if m.selected == id {
		m.setSelected("")
	}
	if m.hovered == id {
		m.hovered = ""
	}
	m.detach(p)
	delete(m.studies, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Manager) detach(p studyPrimitive) {
	if err := m.host.DetachPrimitive(p); err != nil {
		slog.Debug("drawing detach ignored", "subject", m.subject, "id", p.data().ID, "error", err)
	}
}

// SetColor recolors a study.
func (m *Manager) SetColor(id, color string) error {
	if !ValidColor(color) {
		return fmt.Errorf("%w: color %q", ErrInvalidStyle, color)
	}
	return m.mutate(id, func(s *Study) { s.Color = color })
}

// SetLineWidth changes a study's stroke width.
func (m *Manager) SetLineWidth(id string, width float64) error {
	if !ValidLineWidth(width) {
		return fmt.Errorf("%w: line width %v", ErrInvalidStyle, width)
	}
	return m.mutate(id, func(s *Study) { s.LineWidth = width })
}

func (m *Manager) mutate(id string, fn func(*Study)) error {
	if m.closed {
		return ErrClosed
	}
	p, ok := m.studies[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStudyNotFound, id)
	}
	fn(p.data())
	if m.drag != nil && m.drag.id == id {
		fn(&m.drag.origin)
	}
	p.RequestUpdate()
	m.persist()
	return nil
}

// Studies returns copies of every study in creation order.
func (m *Manager) Studies() []Study {
	out := make([]Study, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.studies[id].data().Clone())
	}
	return out
}

// Study returns a copy of one study.
func (m *Manager) Study(id string) (Study, bool) {
	p, ok := m.studies[id]
	if !ok {
		return Study{}, false
	}
	return p.data().Clone(), true
}

// State returns the current interaction state.
func (m *Manager) State() State {
	st := State{
		Subject:    m.subject,
		Tool:       m.tool,
		Phase:      m.phase,
		Pending:    len(m.pending),
		Selected:   m.selected,
		Hovered:    m.hovered,
		Dragging:   m.drag != nil,
		StudyCount: len(m.order),
	}
	if m.saver != nil {
		st.SyncPending = m.saver.Pending()
	}
	return st
}

// persist writes the local cache synchronously and schedules the remote sync.
func (m *Manager) persist() {
	studies := m.Studies()
	if m.cache != nil {
		data, err := EncodeRecord(studies)
		if err == nil {
			err = m.cache.Save(m.key, data)
		}
		if err != nil {
			slog.Warn("drawing cache write failed", "subject", m.subject, "error", err)
		}
	}
	if m.saver != nil {
		m.saver.Schedule(Record{Version: RecordVersion, Drawings: studies})
	}
}

func (m *Manager) sync(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), m.syncTimeout)
	defer cancel()
	if err := m.onSave(ctx, m.subject, rec); err != nil {
		slog.Debug("remote drawing sync failed", "subject", m.subject, "error", err)
		return
	}
	slog.Debug("remote drawing sync done", "subject", m.subject, "count", len(rec.Drawings))
}

// Close unsubscribes from the host, detaches every study and flushes any
// pending remote sync. It is safe to call more than once.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	for _, unsub := range m.unsubscribe {
		if unsub != nil {
			unsub()
		}
	}
	m.unsubscribe = nil
	m.endDrag()
	for _, id := range m.order {
		m.detach(m.studies[id])
	}
	m.closed = true
	if m.saver != nil {
		m.saver.Flush()
	}
}
