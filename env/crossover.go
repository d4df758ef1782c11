// Package env implements the corridor-crossing world: four agents parked
// in the border columns of the two outer rows must swap sides through the
// single shared road row without ever occupying the same cell.
package env

import (
	"fmt"
	"image"

	"crossover/meta"
	"crossover/utils"
)

// RenderMode selects the render output.
type RenderMode string

const (
	ModeHuman    RenderMode = "human"
	ModeRGBArray RenderMode = "rgb_array"
)

// Renderer draws world snapshots. Rendering is a collaborator of the
// simulation, not part of it; the core never depends on how frames are
// produced.
type Renderer interface {
	Render(mode RenderMode, v View) (image.Image, error)
	Close() error
}

// Environment is the reset/step/render/close contract a training loop
// consumes. CrossOver implements it locally and client.RemoteEnv over HTTP.
type Environment interface {
	AgentCount() int
	Reset() ([][]float64, error)
	Step(actions []Action) (obs [][]float64, rewards []float64, dones []bool, info map[string]any, err error)
	Render(mode RenderMode) (image.Image, error)
	Close() error
}

// View is an immutable snapshot of the world handed to renderers and
// transports.
type View struct {
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Walls  [][]bool `json:"walls"`
	Agents []Pos    `json:"agents"`
	Goals  []Pos    `json:"goals"`
	Step   int      `json:"step"`
	Dones  []bool   `json:"dones"`
}

// CrossOver owns all mutable simulation state for one instance. Instances
// are independent; none of the state is shared or global. A single caller
// drives an instance at a time, there is no internal synchronization.
type CrossOver struct {
	rows     int
	cols     int
	nAgents  int
	maxSteps int

	stepCost       float64
	fullObservable bool
	renderer       Renderer

	baseGrid [][]Cell // immutable wall layout
	grid     [][]Cell // live occupancy, rebuilt on Reset
	initPos  []Pos
	goalPos  []Pos
	agentPos []Pos

	stepCount int
	dones     []bool
	running   bool
}

type Option func(*CrossOver)

// WithFullObservable makes every agent observe the concatenation of all
// agents' observation vectors instead of only its own.
func WithFullObservable() Option {
	return func(e *CrossOver) {
		e.fullObservable = true
	}
}

// WithStepCost sets the per-step reward for agents that do not reach
// their goal that step. Defaults to 0.
func WithStepCost(cost float64) Option {
	return func(e *CrossOver) {
		e.stepCost = cost
	}
}

// WithRenderer installs the drawing collaborator used by Render.
func WithRenderer(r Renderer) Option {
	return func(e *CrossOver) {
		e.renderer = r
	}
}

// New builds a corridor world with the fixed crossover layout: agents 0
// and 1 start in the left border columns, agents 2 and 3 in the right
// ones, and every goal sits in the opposite border column of the same row.
func New(options ...Option) *CrossOver {
	e := &CrossOver{
		rows:     meta.GRID_ROWS,
		cols:     meta.GRID_COLS,
		nAgents:  meta.NUM_AGENTS,
		maxSteps: meta.MAX_STEPS,
	}
	for _, option := range options {
		option(e)
	}
	e.baseGrid = createBaseGrid(e.rows, e.cols)
	e.initPos = []Pos{
		{Row: 0, Col: 1},
		{Row: e.rows - 1, Col: 1},
		{Row: 0, Col: e.cols - 2},
		{Row: e.rows - 1, Col: e.cols - 2},
	}
	e.goalPos = []Pos{
		{Row: 0, Col: e.cols - 1},
		{Row: e.rows - 1, Col: e.cols - 1},
		{Row: 0, Col: 0},
		{Row: e.rows - 1, Col: 0},
	}
	return e
}

// Reset restores the initial configuration and returns the first
// observation batch of the new episode.
func (e *CrossOver) Reset() ([][]float64, error) {
	e.grid = utils.Clone2D(e.baseGrid)
	e.agentPos = make([]Pos, e.nAgents)
	copy(e.agentPos, e.initPos)
	for i, p := range e.agentPos {
		e.setCell(p, agentCell(i))
	}
	e.stepCount = 0
	e.dones = make([]bool, e.nAgents)
	e.running = true
	return e.observations(), nil
}

// Step resolves one joint action. Agents are resolved strictly in
// ascending id order against the live grid, so an earlier agent vacating
// or occupying a cell changes what a later agent may do within the same
// step. Done agents are skipped entirely and keep their cell.
func (e *CrossOver) Step(actions []Action) ([][]float64, []float64, []bool, map[string]any, error) {
	if !e.running {
		return nil, nil, nil, nil, ErrNotRunning
	}
	if len(actions) != e.nAgents {
		return nil, nil, nil, nil, fmt.Errorf("%w: got %d actions for %d agents",
			ErrActionCountMismatch, len(actions), e.nAgents)
	}
	for i, a := range actions {
		if !a.valid() {
			return nil, nil, nil, nil, fmt.Errorf("%w: agent %d sent %d", ErrInvalidAction, i, int(a))
		}
	}

	e.stepCount++
	rewards := make([]float64, e.nAgents)
	for i := range rewards {
		rewards[i] = e.stepCost
	}

	for i, action := range actions {
		if e.dones[i] {
			continue
		}
		e.tryMove(i, action)
		if e.agentPos[i] == e.goalPos[i] {
			e.dones[i] = true
			rewards[i] = meta.GOAL_REWARD
		}
	}

	if e.stepCount >= e.maxSteps {
		for i := range e.dones {
			e.dones[i] = true
		}
	}

	dones := make([]bool, e.nAgents)
	copy(dones, e.dones)
	return e.observations(), rewards, dones, map[string]any{}, nil
}

// tryMove applies one agent's action to the grid. A blocked move (wall,
// out of bounds, or occupied target) leaves the agent in place; that is
// the collision rule, not an error. Noop skips resolution entirely.
func (e *CrossOver) tryMove(agent int, action Action) {
	if action == Noop {
		return
	}
	offset := offsets[action]
	curr := e.agentPos[agent]
	next := Pos{Row: curr.Row + offset.Row, Col: curr.Col + offset.Col}
	if !e.isCellVacant(next) {
		return
	}
	e.clearCell(curr)
	e.agentPos[agent] = next
	e.setCell(next, agentCell(agent))
}

// Render delegates to the configured rendering collaborator.
func (e *CrossOver) Render(mode RenderMode) (image.Image, error) {
	if e.renderer == nil {
		return nil, ErrNoRenderer
	}
	return e.renderer.Render(mode, e.View())
}

// Close stops the episode and releases the rendering resource, if any.
func (e *CrossOver) Close() error {
	e.running = false
	if e.renderer == nil {
		return nil
	}
	return e.renderer.Close()
}

// View snapshots the world for renderers and transports. Before the first
// Reset it shows the initial configuration.
func (e *CrossOver) View() View {
	walls := make([][]bool, e.rows)
	for r := range walls {
		walls[r] = make([]bool, e.cols)
		for c := range walls[r] {
			walls[r][c] = e.wallExists(Pos{Row: r, Col: c})
		}
	}
	agents := e.agentPos
	if agents == nil {
		agents = e.initPos
	}
	v := View{
		Rows:   e.rows,
		Cols:   e.cols,
		Walls:  walls,
		Agents: make([]Pos, e.nAgents),
		Goals:  make([]Pos, e.nAgents),
		Step:   e.stepCount,
		Dones:  make([]bool, e.nAgents),
	}
	copy(v.Agents, agents)
	copy(v.Goals, e.goalPos)
	copy(v.Dones, e.dones)
	return v
}

// AgentCount returns the number of agents in the world.
func (e *CrossOver) AgentCount() int {
	return e.nAgents
}

// ActionSpace returns the per-agent discrete action-space sizes, one entry
// per agent in id order.
func (e *CrossOver) ActionSpace() []int {
	space := make([]int, e.nAgents)
	for i := range space {
		space[i] = meta.NUM_ACTIONS
	}
	return space
}

// Position returns the agent's current cell. Before the first Reset it
// reports the initial configuration, like View.
func (e *CrossOver) Position(agent int) Pos {
	if e.agentPos == nil {
		return e.initPos[agent]
	}
	return e.agentPos[agent]
}

// Goal returns the agent's fixed goal cell.
func (e *CrossOver) Goal(agent int) Pos {
	return e.goalPos[agent]
}

// StepCount returns the number of steps taken this episode.
func (e *CrossOver) StepCount() int {
	return e.stepCount
}

// Done reports whether the agent has finished (goal or truncation). Before
// the first Reset no agent is done.
func (e *CrossOver) Done(agent int) bool {
	if e.dones == nil {
		return false
	}
	return e.dones[agent]
}
