// Package policy contains the action-selection side of the simulator:
// the Policy interface the engine drives, plus the random and scripted
// policies used for experiments and tests.
package policy

import (
	"golang.org/x/exp/rand"

	"crossover/env"
	"crossover/meta"
)

// Policy picks one agent's next action from its latest observation.
type Policy interface {
	SelectAction(agent int, obs []float64) env.Action
}

// Random samples uniformly over the five actions.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) SelectAction(agent int, obs []float64) env.Action {
	return env.Action(p.rng.Intn(meta.NUM_ACTIONS))
}

// Scripted replays a fixed action sequence, holding Noop once the script
// is exhausted.
type Scripted struct {
	actions []env.Action
	next    int
}

func NewScripted(actions []env.Action) *Scripted {
	return &Scripted{actions: actions}
}

func (p *Scripted) SelectAction(agent int, obs []float64) env.Action {
	if p.next >= len(p.actions) {
		return env.Noop
	}
	a := p.actions[p.next]
	p.next++
	return a
}
