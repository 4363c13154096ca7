package windowing

import "errors"

// Window tree errors.
var (
	// ErrRootExists indicates OpenRoot was called with a live root.
	ErrRootExists = errors.New("root window already exists")

	// ErrWindowNotFound indicates the window id is not in the arena.
	ErrWindowNotFound = errors.New("window not found")

	// ErrNotPair indicates an arrangement operation on a non-pair window.
	ErrNotPair = errors.New("window is not a pair")

	// ErrNotGrid indicates a grid operation on a non-grid window.
	ErrNotGrid = errors.New("window is not a text grid")

	// ErrGridTooLarge indicates a grid allocation beyond the size caps.
	ErrGridTooLarge = errors.New("grid dimensions exceed maximum")

	// ErrNoMetrics indicates an operation that needs display metrics
	// before any were provided.
	ErrNoMetrics = errors.New("display metrics not set")
)
