package env

// Cell is a single grid cell code. Wall and Free are fixed; an occupied
// cell holds the occupying agent's code (agent id + 1), so a cell never
// identifies more than one agent.
type Cell int

const (
	Wall Cell = -1
	Free Cell = 0
)

func agentCell(agent int) Cell {
	return Cell(agent + 1)
}

// Pos is a (row, col) grid coordinate.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// createBaseGrid builds the static wall layout: everything is wall except
// the single road row in the middle and the two border-most columns on
// each side. Pure function of the grid dimensions.
func createBaseGrid(rows, cols int) [][]Cell {
	grid := make([][]Cell, rows)
	for r := range grid {
		grid[r] = make([]Cell, cols)
		for c := range grid[r] {
			grid[r][c] = Wall
		}
	}
	for c := 0; c < cols; c++ {
		grid[rows/2][c] = Free
	}
	for r := 0; r < rows; r++ {
		grid[r][0] = Free
		grid[r][1] = Free
		grid[r][cols-2] = Free
		grid[r][cols-1] = Free
	}
	return grid
}

// wallExists reports whether the base grid marks p as wall. It ignores
// live agent occupancy.
func (e *CrossOver) wallExists(p Pos) bool {
	return e.baseGrid[p.Row][p.Col] == Wall
}

func (e *CrossOver) inBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < e.rows && p.Col >= 0 && p.Col < e.cols
}

// isCellVacant reports whether p is in bounds and Free on the live grid.
// Walls, occupied cells and out-of-bounds positions are never vacant.
func (e *CrossOver) isCellVacant(p Pos) bool {
	return e.inBounds(p) && e.grid[p.Row][p.Col] == Free
}

// setCell and clearCell mutate the live grid directly. Callers must have
// validated the move already.
func (e *CrossOver) setCell(p Pos, v Cell) {
	e.grid[p.Row][p.Col] = v
}

func (e *CrossOver) clearCell(p Pos) {
	e.grid[p.Row][p.Col] = Free
}
