// Package server exposes crossover environments over HTTP so policies in
// other processes can drive them. Each instance is identified by a uuid;
// the server is the single owner of every instance and serializes access
// through a per-instance mutex. A websocket endpoint streams world
// snapshots to watchers after every reset and step.
package server

import (
	"errors"
	"image/png"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"crossover/env"
	"crossover/render"
)

type CreateRequest struct {
	FullObservable bool    `json:"full_observable"`
	StepCost       float64 `json:"step_cost"`
}

type CreateResponse struct {
	ID          string `json:"id"`
	Agents      int    `json:"agents"`
	ActionSpace []int  `json:"action_space"`
}

type ResetResponse struct {
	Obs [][]float64 `json:"obs"`
}

type StepRequest struct {
	Actions []int `json:"actions"`
}

type StepResponse struct {
	Obs     [][]float64    `json:"obs"`
	Rewards []float64      `json:"rewards"`
	Dones   []bool         `json:"dones"`
	Info    map[string]any `json:"info"`
}

// instance is one served environment plus its watch connections.
type instance struct {
	mu       sync.Mutex
	env      *env.CrossOver
	watchers map[*websocket.Conn]bool
}

type Server struct {
	mu        sync.RWMutex
	instances map[uuid.UUID]*instance
}

func New() *Server {
	return &Server{
		instances: make(map[uuid.UUID]*instance),
	}
}

// Router mounts all environment routes on a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api/envs")
	api.POST("", s.handleCreate)
	api.POST("/:id/reset", s.handleReset)
	api.POST("/:id/step", s.handleStep)
	api.GET("/:id/render", s.handleRender)
	api.GET("/:id/watch", s.handleWatch)
	api.DELETE("/:id", s.handleClose)
	return r
}

func (s *Server) handleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	options := []env.Option{env.WithStepCost(req.StepCost), env.WithRenderer(render.New())}
	if req.FullObservable {
		options = append(options, env.WithFullObservable())
	}
	e := env.New(options...)

	id := uuid.New()
	s.mu.Lock()
	s.instances[id] = &instance{
		env:      e,
		watchers: make(map[*websocket.Conn]bool),
	}
	s.mu.Unlock()

	log.Info().Str("id", id.String()).Bool("full_observable", req.FullObservable).
		Float64("step_cost", req.StepCost).Msg("environment created")
	c.JSON(http.StatusCreated, CreateResponse{
		ID:          id.String(),
		Agents:      e.AgentCount(),
		ActionSpace: e.ActionSpace(),
	})
}

func (s *Server) handleReset(c *gin.Context) {
	inst, ok := s.get(c)
	if !ok {
		return
	}

	inst.mu.Lock()
	obs, err := inst.env.Reset()
	view := inst.env.View()
	inst.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	inst.broadcast(view)
	c.JSON(http.StatusOK, ResetResponse{Obs: obs})
}

func (s *Server) handleStep(c *gin.Context) {
	inst, ok := s.get(c)
	if !ok {
		return
	}

	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actions := make([]env.Action, len(req.Actions))
	for i, a := range req.Actions {
		actions[i] = env.Action(a)
	}

	inst.mu.Lock()
	obs, rewards, dones, info, err := inst.env.Step(actions)
	view := inst.env.View()
	inst.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inst.broadcast(view)
	c.JSON(http.StatusOK, StepResponse{
		Obs:     obs,
		Rewards: rewards,
		Dones:   dones,
		Info:    info,
	})
}

func (s *Server) handleRender(c *gin.Context) {
	inst, ok := s.get(c)
	if !ok {
		return
	}

	inst.mu.Lock()
	img, err := inst.env.Render(env.ModeRGBArray)
	inst.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := png.Encode(c.Writer, img); err != nil {
		log.Error().Err(err).Msg("failed to encode render frame")
	}
}

func (s *Server) handleClose(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown environment"})
		return
	}

	s.mu.Lock()
	inst, ok := s.instances[id]
	delete(s.instances, id)
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown environment"})
		return
	}

	inst.mu.Lock()
	for conn := range inst.watchers {
		conn.Close()
	}
	inst.watchers = make(map[*websocket.Conn]bool)
	err = inst.env.Close()
	inst.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Str("id", id.String()).Msg("environment closed")
	c.Status(http.StatusNoContent)
}

func (s *Server) get(c *gin.Context) (*instance, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown environment"})
		return nil, false
	}

	s.mu.RLock()
	inst, ok := s.instances[id]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown environment"})
		return nil, false
	}
	return inst, true
}

// broadcast pushes a snapshot to every watcher, dropping connections that
// fail to receive it.
func (i *instance) broadcast(v env.View) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for conn := range i.watchers {
		if err := conn.WriteJSON(v); err != nil {
			delete(i.watchers, conn)
			conn.Close()
		}
	}
}
