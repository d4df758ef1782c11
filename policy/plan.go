package policy

import "crossover/env"

// CrossingPlan returns a joint plan that solves the default layout in 18
// steps. Agents 0 and 1 take the road first, 1 trailing one cell behind 0
// so it can slot into the cell 0 just vacated; once they are parked,
// agents 2 and 3 cross the other way with the same stagger. Feed each
// sequence to a Scripted policy, one per agent id.
func CrossingPlan() [][]env.Action {
	return [][]env.Action{
		seq(steps(env.Down), repeat(env.Right, 6), steps(env.Up)),
		seq(noops(1), steps(env.Up), repeat(env.Right, 6), steps(env.Down)),
		seq(noops(9), steps(env.Down), repeat(env.Left, 6), steps(env.Up)),
		seq(noops(10), steps(env.Up), repeat(env.Left, 6), steps(env.Down)),
	}
}

func steps(actions ...env.Action) []env.Action {
	return actions
}

func noops(n int) []env.Action {
	return repeat(env.Noop, n)
}

func repeat(a env.Action, n int) []env.Action {
	s := make([]env.Action, n)
	for i := range s {
		s[i] = a
	}
	return s
}

func seq(parts ...[]env.Action) []env.Action {
	var s []env.Action
	for _, part := range parts {
		s = append(s, part...)
	}
	return s
}
