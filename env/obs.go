package env

// obsSize is the length of one agent's private observation vector:
// normalized row, normalized col, normalized time-in-episode.
const obsSize = 3

// observations projects internal state into the per-agent observation
// batch. Positions are 1-indexed before normalization so wall-adjacent
// cells never map to exactly 0. No agent identity, goal, or other-agent
// position is embedded unless fullObservable is set.
func (e *CrossOver) observations() [][]float64 {
	obs := make([][]float64, e.nAgents)
	for i := 0; i < e.nAgents; i++ {
		p := e.agentPos[i]
		obs[i] = []float64{
			float64(p.Row+1) / float64(e.rows),
			float64(p.Col+1) / float64(e.cols),
			float64(e.stepCount) / float64(e.maxSteps),
		}
	}
	if !e.fullObservable {
		return obs
	}

	joint := make([]float64, 0, e.nAgents*obsSize)
	for _, o := range obs {
		joint = append(joint, o...)
	}
	shared := make([][]float64, e.nAgents)
	for i := range shared {
		shared[i] = make([]float64, len(joint))
		copy(shared[i], joint)
	}
	return shared
}
