package drawing

// PointerEvent is a pointer position delivered by the host, with the id of
// the topmost study under it ("" when none).
type PointerEvent struct {
	X         float64
	Y         float64
	HoveredID string
}

// Host is the chart surface a Manager draws on.
type Host interface {
	TimeScale
	PriceScale

	// SubscribeClick registers fn for primary clicks. The returned func
	// removes the subscription.
	SubscribeClick(fn func(PointerEvent)) (unsubscribe func())
	// SubscribeCrosshairMove registers fn for pointer movement.
	SubscribeCrosshairMove(fn func(PointerEvent)) (unsubscribe func())

	AttachPrimitive(p Primitive)
	DetachPrimitive(p Primitive) error

	// SetInteractionEnabled toggles native pan and zoom.
	SetInteractionEnabled(enabled bool)
	RequestRedraw()
}

// Mouse buttons understood by Manager.PointerDown.
const (
	ButtonPrimary   = 0
	ButtonSecondary = 2
)

// Callbacks are read at call time, so replacing them affects live
// subscriptions immediately.
type Callbacks struct {
	// OnSelectionChange receives the selected id, or "" when cleared.
	OnSelectionChange func(id string)
	// OnContextMenu fires on a secondary click over a hovered study.
	OnContextMenu func(x, y float64, id string)
	// OnToolChange fires whenever the active tool changes.
	OnToolChange func(tool StudyType)
}
