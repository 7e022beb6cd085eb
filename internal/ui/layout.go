package ui

import "time"

// Chrome rows around the page viewport: header, status line, command bar.
const chromeRows = 3

// Field widths for laid out form controls.
const (
	// MinFieldWidth is the narrowest text input drawn.
	MinFieldWidth = 8
	// MaxFieldWidth caps text inputs so they fit beside their label.
	MaxFieldWidth = 32
)

// Log display limits.
const (
	// LogTailLines is how many lines the log overlay reads from the end of
	// the log file.
	LogTailLines = 500
)

// Timing constants.
const (
	// ToastTick is how often the status line is redrawn so expired toasts
	// disappear.
	ToastTick = 250 * time.Millisecond

	// maxSettlePasses bounds the layout and visibility rounds run after one
	// input. A visible scroll trigger starts a load that re-renders the grid,
	// which moves the trigger.
	maxSettlePasses = 4
)
