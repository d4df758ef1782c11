// Package client drives a crossover instance served by the HTTP API.
// RemoteEnv implements env.Environment, so training loops and the engine
// work against local and remote worlds interchangeably.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"

	"crossover/env"
)

type RemoteEnv struct {
	serverURL string
	id        string
	agents    int
	client    *http.Client
}

var _ env.Environment = (*RemoteEnv)(nil)

type createRequest struct {
	FullObservable bool    `json:"full_observable"`
	StepCost       float64 `json:"step_cost"`
}

type createResponse struct {
	ID     string `json:"id"`
	Agents int    `json:"agents"`
}

type resetResponse struct {
	Obs [][]float64 `json:"obs"`
}

type stepRequest struct {
	Actions []int `json:"actions"`
}

type stepResponse struct {
	Obs     [][]float64    `json:"obs"`
	Rewards []float64      `json:"rewards"`
	Dones   []bool         `json:"dones"`
	Info    map[string]any `json:"info"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New creates a fresh environment instance on the server and returns its
// remote handle.
func New(serverURL string, fullObservable bool, stepCost float64) (*RemoteEnv, error) {
	r := &RemoteEnv{
		serverURL: serverURL,
		client:    http.DefaultClient,
	}

	var resp createResponse
	err := r.post("", createRequest{FullObservable: fullObservable, StepCost: stepCost}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}
	r.id = resp.ID
	r.agents = resp.Agents
	return r, nil
}

// ID returns the server-side instance id.
func (r *RemoteEnv) ID() string {
	return r.id
}

func (r *RemoteEnv) AgentCount() int {
	return r.agents
}

func (r *RemoteEnv) Reset() ([][]float64, error) {
	var resp resetResponse
	err := r.post(r.id+"/reset", struct{}{}, &resp)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.Obs, nil
}

func (r *RemoteEnv) Step(actions []env.Action) ([][]float64, []float64, []bool, map[string]any, error) {
	req := stepRequest{Actions: make([]int, len(actions))}
	for i, a := range actions {
		req.Actions[i] = int(a)
	}

	var resp stepResponse
	err := r.post(r.id+"/step", req, &resp)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("step: %w", err)
	}
	return resp.Obs, resp.Rewards, resp.Dones, resp.Info, nil
}

// Render fetches the current frame as PNG. Only rgb_array mode is
// supported remotely.
func (r *RemoteEnv) Render(mode env.RenderMode) (image.Image, error) {
	if mode != env.ModeRGBArray {
		return nil, fmt.Errorf("remote render supports %q only, got %q", env.ModeRGBArray, mode)
	}

	resp, err := r.client.Get(r.url(r.id + "/render"))
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render: %s", readError(resp.Body))
	}
	return png.Decode(resp.Body)
}

// Close deletes the instance on the server.
func (r *RemoteEnv) Close() error {
	req, err := http.NewRequest(http.MethodDelete, r.url(r.id), nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("close: %s", readError(resp.Body))
	}
	return nil
}

func (r *RemoteEnv) post(path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := r.client.Post(r.url(path), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server rejected request: %s", readError(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (r *RemoteEnv) url(path string) string {
	if path == "" {
		return r.serverURL + "/api/envs"
	}
	return r.serverURL + "/api/envs/" + path
}

func readError(body io.Reader) string {
	var e errorResponse
	if err := json.NewDecoder(body).Decode(&e); err != nil || e.Error == "" {
		return "unknown error"
	}
	return e.Error
}
