package env

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func allNoop() []Action {
	return []Action{Noop, Noop, Noop, Noop}
}

func soloAction(agent int, a Action) []Action {
	actions := allNoop()
	actions[agent] = a
	return actions
}

func TestResetInitialConfiguration(t *testing.T) {
	e := New()
	obs, err := e.Reset()
	require.NoError(t, err)

	require.Equal(t, []Pos{{0, 1}, {2, 1}, {0, 6}, {2, 6}},
		[]Pos{e.Position(0), e.Position(1), e.Position(2), e.Position(3)})
	require.Equal(t, []Pos{{0, 7}, {2, 7}, {0, 0}, {2, 0}},
		[]Pos{e.Goal(0), e.Goal(1), e.Goal(2), e.Goal(3)})
	require.Equal(t, 0, e.StepCount())
	for i := 0; i < e.AgentCount(); i++ {
		require.False(t, e.Done(i))
	}

	require.Equal(t, [][]float64{
		{1.0 / 3.0, 2.0 / 8.0, 0},
		{3.0 / 3.0, 2.0 / 8.0, 0},
		{1.0 / 3.0, 7.0 / 8.0, 0},
		{3.0 / 3.0, 7.0 / 8.0, 0},
	}, obs)
}

func TestResetAfterEpisodeRestoresState(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)
	_, _, _, _, err = e.Step(soloAction(0, Down))
	require.NoError(t, err)
	require.Equal(t, Pos{1, 1}, e.Position(0))

	_, err = e.Reset()
	require.NoError(t, err)
	require.Equal(t, Pos{0, 1}, e.Position(0))
	require.Equal(t, 0, e.StepCount())
	// the vacated start cell is occupied again, the road cell freed
	require.False(t, e.isCellVacant(Pos{0, 1}))
	require.True(t, e.isCellVacant(Pos{1, 1}))
}

func TestStepBeforeReset(t *testing.T) {
	e := New()
	_, _, _, _, err := e.Step(allNoop())
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestStepActionCountMismatch(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)

	_, _, _, _, err = e.Step([]Action{Noop, Noop, Noop})
	require.ErrorIs(t, err, ErrActionCountMismatch)
	// rejected before any mutation
	require.Equal(t, 0, e.StepCount())
	require.Equal(t, Pos{0, 1}, e.Position(0))
}

func TestStepInvalidAction(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)

	for _, bad := range []Action{-1, 5, 42} {
		_, _, _, _, err = e.Step([]Action{Down, bad, Noop, Noop})
		require.ErrorIs(t, err, ErrInvalidAction)
	}
	// no partial step applied
	require.Equal(t, 0, e.StepCount())
	require.Equal(t, Pos{0, 1}, e.Position(0))
}

func TestBlockedMovesAreSilent(t *testing.T) {
	e := New(WithStepCost(-0.1))
	_, err := e.Reset()
	require.NoError(t, err)

	t.Run("wall", func(t *testing.T) {
		// (0,2) is wall
		_, rewards, _, _, err := e.Step(soloAction(0, Right))
		require.NoError(t, err)
		require.Equal(t, Pos{0, 1}, e.Position(0))
		require.Equal(t, -0.1, rewards[0])
	})

	t.Run("off grid", func(t *testing.T) {
		_, rewards, _, _, err := e.Step(soloAction(0, Up))
		require.NoError(t, err)
		require.Equal(t, Pos{0, 1}, e.Position(0))
		require.Equal(t, -0.1, rewards[0])
	})

	t.Run("occupied cell", func(t *testing.T) {
		// park agent 1 on the road below agent 0
		_, _, _, _, err := e.Step(soloAction(1, Up))
		require.NoError(t, err)
		require.Equal(t, Pos{1, 1}, e.Position(1))

		_, rewards, _, _, err := e.Step(soloAction(0, Down))
		require.NoError(t, err)
		require.Equal(t, Pos{0, 1}, e.Position(0))
		require.Equal(t, -0.1, rewards[0])
	})
}

func TestSameStepContentionLowerIdWins(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)

	// both want (1,1); agent 0 resolves first
	actions := allNoop()
	actions[0] = Down
	actions[1] = Up
	_, _, _, _, err = e.Step(actions)
	require.NoError(t, err)
	require.Equal(t, Pos{1, 1}, e.Position(0))
	require.Equal(t, Pos{2, 1}, e.Position(1))
}

func TestLiveGridResolutionOrder(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)
	_, _, _, _, err = e.Step(soloAction(0, Down))
	require.NoError(t, err)

	// agent 0 vacates (1,1) earlier in the same step, so agent 1 may enter
	actions := allNoop()
	actions[0] = Right
	actions[1] = Up
	_, _, _, _, err = e.Step(actions)
	require.NoError(t, err)
	require.Equal(t, Pos{1, 2}, e.Position(0))
	require.Equal(t, Pos{1, 1}, e.Position(1))
}

func TestAgentZeroCrossesToGoal(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)

	route := []Action{Down, Right, Right, Right, Right, Right, Right, Up}
	for i, a := range route[:len(route)-1] {
		_, rewards, dones, _, err := e.Step(soloAction(0, a))
		require.NoError(t, err)
		require.Equal(t, 0.0, rewards[0], "step %d", i+1)
		require.False(t, dones[0], "step %d", i+1)
	}

	_, rewards, dones, info, err := e.Step(soloAction(0, route[len(route)-1]))
	require.NoError(t, err)
	require.Equal(t, Pos{0, 7}, e.Position(0))
	require.Equal(t, 5.0, rewards[0])
	require.True(t, dones[0])
	require.Empty(t, info)

	// done agents are skipped: no more movement, no second bonus
	_, rewards, dones, _, err = e.Step(soloAction(0, Left))
	require.NoError(t, err)
	require.Equal(t, Pos{0, 7}, e.Position(0))
	require.Equal(t, 0.0, rewards[0])
	require.True(t, dones[0])
}

func TestTruncationAtMaxSteps(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)

	var dones []bool
	for i := 0; i < 99; i++ {
		_, _, dones, _, err = e.Step(allNoop())
		require.NoError(t, err)
	}
	for i := range dones {
		require.False(t, dones[i])
	}

	_, _, dones, _, err = e.Step(allNoop())
	require.NoError(t, err)
	for i := range dones {
		require.True(t, dones[i], "agent %d after step 100", i)
	}

	// forced dones persist on later calls
	var rewards []float64
	_, rewards, dones, _, err = e.Step(allNoop())
	require.NoError(t, err)
	for i := range dones {
		require.True(t, dones[i])
		require.Equal(t, 0.0, rewards[i])
	}

	// and reset clears them again
	_, err = e.Reset()
	require.NoError(t, err)
	for i := 0; i < e.AgentCount(); i++ {
		require.False(t, e.Done(i))
	}
}

func TestOccupancyUniquenessUnderRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := New()

	for episode := 0; episode < 3; episode++ {
		_, err := e.Reset()
		require.NoError(t, err)

		for step := 0; step < 120; step++ {
			actions := make([]Action, e.AgentCount())
			for i := range actions {
				actions[i] = Action(rng.Intn(5))
			}
			_, _, _, _, err := e.Step(actions)
			require.NoError(t, err)

			seen := map[Pos]int{}
			for i := 0; i < e.AgentCount(); i++ {
				p := e.Position(i)
				require.True(t, e.inBounds(p))
				require.False(t, e.wallExists(p))
				if prev, ok := seen[p]; ok {
					t.Fatalf("agents %d and %d share cell %v at step %d", prev, i, p, step)
				}
				seen[p] = i
			}
		}
	}
}

func TestFullObservable(t *testing.T) {
	e := New(WithFullObservable())
	obs, err := e.Reset()
	require.NoError(t, err)

	require.Len(t, obs, 4)
	joint := obs[0]
	require.Len(t, joint, 12)
	for i := 1; i < 4; i++ {
		require.Equal(t, joint, obs[i])
	}
	// leading elements are agent 0's own normalized position
	require.Equal(t, 1.0/3.0, joint[0])
	require.Equal(t, 2.0/8.0, joint[1])
}

func TestRenderWithoutRenderer(t *testing.T) {
	e := New()
	_, err := e.Render(ModeRGBArray)
	require.ErrorIs(t, err, ErrNoRenderer)
	require.NoError(t, e.Close())
}

func TestCloseStopsEpisode(t *testing.T) {
	e := New()
	_, err := e.Reset()
	require.NoError(t, err)
	require.NoError(t, e.Close())

	_, _, _, _, err = e.Step(allNoop())
	require.ErrorIs(t, err, ErrNotRunning)
}

func TestAccessors(t *testing.T) {
	e := New()
	require.Equal(t, 4, e.AgentCount())
	require.Equal(t, []int{5, 5, 5, 5}, e.ActionSpace())

	v := e.View()
	require.Equal(t, 3, v.Rows)
	require.Equal(t, 8, v.Cols)
	// before Reset the view shows the initial configuration
	require.Equal(t, Pos{0, 1}, v.Agents[0])
	require.True(t, v.Walls[0][3])
	require.False(t, v.Walls[1][3])

	// the per-agent accessors handle the pre-Reset case the same way
	for i := 0; i < e.AgentCount(); i++ {
		require.Equal(t, v.Agents[i], e.Position(i))
		require.False(t, e.Done(i))
	}
	require.Equal(t, 0, e.StepCount())
}

func TestActionStrings(t *testing.T) {
	require.Equal(t, "DOWN", Down.String())
	require.Equal(t, "LEFT", Left.String())
	require.Equal(t, "UP", Up.String())
	require.Equal(t, "RIGHT", Right.String())
	require.Equal(t, "NOOP", Noop.String())
	require.Equal(t, "Action(9)", Action(9).String())
}

func TestErrorsAreDistinct(t *testing.T) {
	require.False(t, errors.Is(ErrInvalidAction, ErrActionCountMismatch))
	require.False(t, errors.Is(ErrNotRunning, ErrInvalidAction))
}
