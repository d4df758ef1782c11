package env

import "errors"

var (
	// ErrInvalidAction signals an action code outside 0..4 for some agent.
	// The step is rejected before any agent moves.
	ErrInvalidAction = errors.New("invalid action code")

	// ErrActionCountMismatch signals an action list whose length does not
	// equal the agent count. Surfaced before any mutation.
	ErrActionCountMismatch = errors.New("action count does not match agent count")

	// ErrNotRunning signals Step on an environment that has not been Reset
	// (or has been Closed).
	ErrNotRunning = errors.New("environment is not running, call Reset first")

	// ErrNoRenderer signals Render on an environment constructed without a
	// rendering collaborator.
	ErrNoRenderer = errors.New("no renderer configured")
)
