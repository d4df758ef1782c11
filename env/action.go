package env

import "fmt"

// Action is one of the five discrete moves. The integer codes are part of
// the wire contract with callers and must not be reordered.
type Action int

const (
	Down Action = iota
	Left
	Up
	Right
	Noop
)

// offsets maps each movement action to its (row, col) delta. Noop has no
// entry: it is not a zero-offset move, it skips resolution entirely.
var offsets = map[Action]Pos{
	Down:  {Row: 1, Col: 0},
	Left:  {Row: 0, Col: -1},
	Up:    {Row: -1, Col: 0},
	Right: {Row: 0, Col: 1},
}

func (a Action) valid() bool {
	return a >= Down && a <= Noop
}

func (a Action) String() string {
	switch a {
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Noop:
		return "NOOP"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}
