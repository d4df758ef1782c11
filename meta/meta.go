// meta/meta.go
package meta

// GRID_ROWS defines the number of grid rows: two parking rows around the
// single road row.
const GRID_ROWS = 3

// GRID_COLS defines the corridor width.
const GRID_COLS = 8

// NUM_AGENTS defines how many agents cross the corridor.
const NUM_AGENTS = 4

// NUM_ACTIONS defines the size of each agent's discrete action space.
const NUM_ACTIONS = 5

// MAX_STEPS defines the step budget before an episode is truncated.
const MAX_STEPS = 100

// GOAL_REWARD is paid once, on the step an agent first reaches its goal.
const GOAL_REWARD = 5.0
