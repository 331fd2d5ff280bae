package editing

import "time"

// Behavior holds the platform-dependent switches of the engine.
type Behavior struct {
	// NonDirectionalSelectionIsDirectional makes every selection behave as
	// directional, so shift-click and extension always keep the base.
	NonDirectionalSelectionIsDirectional bool
	// ExtendByBoundaryGrows computes boundary and vertical movement from the
	// selection start or end, depending on direction, instead of from the
	// extent.
	ExtendByBoundaryGrows bool
	// SelectTrailingWhitespace includes the whitespace after a word on
	// double-click.
	SelectTrailingWhitespace bool
	// SnapExtendToAtomicRegions moves an extending endpoint over a whole
	// user-select:all region. Moving the caret always skips such regions.
	SnapExtendToAtomicRegions bool
	// FrameFullSelection asks a FrameHost to select the frame element in
	// the parent when select-all covers the whole document.
	FrameFullSelection bool
	// CaretBlinkInterval is the caret blink half-period; zero disables
	// blinking.
	CaretBlinkInterval time.Duration
	// MultiClickInterval is the longest gap between presses counted as one
	// multi-click.
	MultiClickInterval time.Duration
	// MultiClickSlop is how far, in layout units, presses of one
	// multi-click may drift.
	MultiClickSlop int
}

// DefaultBehavior returns the behavior used when no configuration is given.
func DefaultBehavior() Behavior {
	return Behavior{
		SnapExtendToAtomicRegions: true,
		CaretBlinkInterval:        500 * time.Millisecond,
		MultiClickInterval:        500 * time.Millisecond,
		MultiClickSlop:            4,
	}
}
