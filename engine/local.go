// Package engine runs episodes: it wires one policy per agent to an
// environment and plays until every agent is done.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"crossover/env"
	"crossover/meta"
	"crossover/policy"
	"crossover/utils"
)

// Update records one resolved step for episode traces.
type Update struct {
	Step    int
	Actions []env.Action
	Rewards []float64
	Dones   []bool
}

// EpisodeResult summarizes a finished episode. Returns are cumulative per
// agent; Solved is false when the episode only ended through truncation.
type EpisodeResult struct {
	Steps   int
	Returns []float64
	Solved  bool
	Start   time.Time
	End     time.Time
	Trace   []Update
}

// Engine drives one environment with one policy per agent.
type Engine struct {
	Env      env.Environment
	Policies []policy.Policy
}

func LocalEngine(environment env.Environment, policies []policy.Policy) *Engine {
	if len(policies) != environment.AgentCount() {
		panic("number of policies does not match number of agents")
	}
	return &Engine{
		Env:      environment,
		Policies: policies,
	}
}

// Run resets the environment and plays one episode to completion.
func (e *Engine) Run() (EpisodeResult, error) {
	result := EpisodeResult{
		Start:   time.Now(),
		Returns: make([]float64, len(e.Policies)),
	}

	obs, err := e.Env.Reset()
	if err != nil {
		return result, err
	}
	log.Info().Int("agents", len(e.Policies)).Msg("episode started")

	dones := make([]bool, len(e.Policies))
	for !utils.All(dones) {
		actions := make([]env.Action, len(e.Policies))
		for i, p := range e.Policies {
			actions[i] = p.SelectAction(i, obs[i])
		}

		var rewards []float64
		obs, rewards, dones, _, err = e.Env.Step(actions)
		if err != nil {
			return result, err
		}

		result.Steps++
		for i, r := range rewards {
			result.Returns[i] += r
		}
		result.Trace = append(result.Trace, Update{
			Step:    result.Steps,
			Actions: actions,
			Rewards: rewards,
			Dones:   append([]bool(nil), dones...),
		})
		log.Debug().
			Int("step", result.Steps).
			Stringers("actions", stringers(actions)).
			Floats64("rewards", rewards).
			Msg("step resolved")
	}

	result.End = time.Now()
	result.Solved = result.Steps < meta.MAX_STEPS
	log.Info().
		Int("steps", result.Steps).
		Bool("solved", result.Solved).
		Floats64("returns", result.Returns).
		Msg("episode over")
	return result, nil
}

func stringers(actions []env.Action) []fmt.Stringer {
	s := make([]fmt.Stringer, len(actions))
	for i, a := range actions {
		s[i] = a
	}
	return s
}
