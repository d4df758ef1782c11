// Command crossover runs the corridor-crossing simulator.
//
// Modes:
//   - play: one episode with the reference crossing plan, ASCII-rendered
//   - experiment: a batch of episodes recorded to CSV
//   - serve: the HTTP environment service
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"crossover/config"
	"crossover/engine"
	"crossover/env"
	"crossover/experiments/metrics"
	"crossover/meta"
	"crossover/policy"
	"crossover/render"
	"crossover/server"
	"crossover/utils"
)

var (
	mode       = flag.String("mode", "play", "run mode: play, experiment, serve")
	episodes   = flag.Int("episodes", 10, "number of episodes in experiment mode")
	seed       = flag.Uint64("seed", 1, "base seed for random policies in experiment mode")
	policyName = flag.String("policy", "random", "experiment policy: random or plan")
	fullObs    = flag.Bool("full-observable", false, "give every agent the joint observation")
	stepCost   = flag.Float64("step-cost", 0, "per-step reward for agents not reaching goal")
)

func main() {
	flag.Parse()
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	switch *mode {
	case "play":
		runPlay()
	case "experiment":
		runExperiment(cfg)
	case "serve":
		runServe(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		flag.Usage()
		os.Exit(2)
	}
}

// runPlay steps the reference crossing plan to completion, drawing the
// board after every step.
func runPlay() {
	e := env.New(envOptions(env.WithRenderer(render.New()))...)
	policies := planPolicies()

	obs, err := e.Reset()
	if err != nil {
		log.Fatal().Err(err).Msg("reset failed")
	}
	if err := renderHuman(e); err != nil {
		log.Fatal().Err(err).Msg("render failed")
	}

	dones := make([]bool, e.AgentCount())
	returns := make([]float64, e.AgentCount())
	steps := 0
	for !utils.All(dones) {
		actions := make([]env.Action, len(policies))
		for i, p := range policies {
			actions[i] = p.SelectAction(i, obs[i])
		}

		var rewards []float64
		obs, rewards, dones, _, err = e.Step(actions)
		if err != nil {
			log.Fatal().Err(err).Msg("step failed")
		}
		steps++
		for i, r := range rewards {
			returns[i] += r
		}
		if err := renderHuman(e); err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
	}

	log.Info().Int("steps", steps).Floats64("returns", returns).Msg("crossing finished")
}

func runExperiment(cfg config.Config) {
	writer, err := metrics.NewWriter(cfg.MetricsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create metrics writer")
	}
	run := uuid.New()
	log.Info().Str("run", run.String()).Str("dir", writer.Dir()).
		Int("episodes", *episodes).Str("policy", *policyName).Msg("experiment started")

	var episodeRecords []metrics.EpisodeRecord
	var stepRecords []metrics.StepRecord
	for ep := 0; ep < *episodes; ep++ {
		e := env.New(envOptions()...)
		policies, err := experimentPolicies(ep)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid experiment setup")
		}

		result, err := engine.LocalEngine(e, policies).Run()
		if err != nil {
			log.Fatal().Err(err).Int("episode", ep).Msg("episode failed")
		}

		episodeRecords = append(episodeRecords, metrics.EpisodeRecord{
			Run:       run,
			Episode:   ep,
			Steps:     result.Steps,
			Returns:   result.Returns,
			Solved:    result.Solved,
			StartTime: result.Start,
			EndTime:   result.End,
			Duration:  result.End.Sub(result.Start),
		})
		for _, u := range result.Trace {
			actions := make([]int, len(u.Actions))
			for i, a := range u.Actions {
				actions[i] = int(a)
			}
			stepRecords = append(stepRecords, metrics.StepRecord{
				Episode: ep,
				Step:    u.Step,
				Actions: actions,
				Rewards: u.Rewards,
				Dones:   u.Dones,
			})
		}
	}

	if err := writer.WriteEpisodeRecords(episodeRecords); err != nil {
		log.Fatal().Err(err).Msg("failed to write episode records")
	}
	if err := writer.WriteStepRecords(stepRecords); err != nil {
		log.Fatal().Err(err).Msg("failed to write step records")
	}
	log.Info().Str("dir", writer.Dir()).Msg("experiment finished")
}

func runServe(cfg config.Config) {
	gin.SetMode(cfg.GinMode)
	router := server.New().Router()
	log.Info().Str("addr", cfg.Addr).Msg("serving environments")
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func envOptions(extra ...env.Option) []env.Option {
	options := []env.Option{env.WithStepCost(*stepCost)}
	if *fullObs {
		options = append(options, env.WithFullObservable())
	}
	return append(options, extra...)
}

func planPolicies() []policy.Policy {
	plan := policy.CrossingPlan()
	policies := make([]policy.Policy, len(plan))
	for i, actions := range plan {
		policies[i] = policy.NewScripted(actions)
	}
	return policies
}

func experimentPolicies(episode int) ([]policy.Policy, error) {
	switch *policyName {
	case "plan":
		return planPolicies(), nil
	case "random":
		policies := make([]policy.Policy, meta.NUM_AGENTS)
		for i := range policies {
			policies[i] = policy.NewRandom(*seed + uint64(episode)*uint64(len(policies)) + uint64(i))
		}
		return policies, nil
	}
	return nil, fmt.Errorf("unknown policy %q", *policyName)
}

func renderHuman(e *env.CrossOver) error {
	_, err := e.Render(env.ModeHuman)
	return err
}
