// Package http exposes the compiler and simulator as a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/spool"
	"github.com/aretw0/spool/pkg/machine"
	"github.com/aretw0/spool/pkg/observability"
	"github.com/aretw0/spool/pkg/ports"
	"github.com/aretw0/spool/pkg/sim"
	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server carries the handler dependencies.
type Server struct {
	store   ports.MachineStore
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	nextID   int
}

type session struct {
	mu  sync.Mutex
	sim *sim.Simulator
}

// NewHandler builds the chi router: compile, run, the machine store,
// step-wise sessions and the metrics endpoint.
func NewHandler(store ports.MachineStore, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	s := &Server{
		store:    store,
		metrics:  observability.NewMetrics(reg),
		logger:   logger,
		sessions: make(map[string]*session),
	}

	r := chi.NewRouter()
	r.Post("/compile", s.handleCompile)
	r.Post("/run", s.handleRun)
	r.Route("/machines", func(r chi.Router) {
		r.Get("/", s.handleListMachines)
		r.Put("/{name}", s.handleSaveMachine)
		r.Get("/{name}", s.handleGetMachine)
		r.Delete("/{name}", s.handleDeleteMachine)
	})
	r.Post("/sessions", s.handleCreateSession)
	r.Post("/sessions/{id}/step", s.handleStepSession)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// runOptions are decoded from the loose "options" object with
// mapstructure, which tolerates JSON's float64 numbers.
type runOptions struct {
	Limit    int   `mapstructure:"limit"`
	Optimize *bool `mapstructure:"optimize"`
}

func decodeOptions(raw map[string]any) (runOptions, error) {
	opts := runOptions{Limit: sim.DefaultStepLimit}
	if raw == nil {
		return opts, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return opts, err
	}
	if err := dec.Decode(raw); err != nil {
		return opts, fmt.Errorf("bad options: %w", err)
	}
	if opts.Limit <= 0 {
		opts.Limit = sim.DefaultStepLimit
	}
	return opts, nil
}

func (s *Server) compileOpts(opts runOptions) []spool.Option {
	compiled := []spool.Option{spool.WithLogger(s.logger)}
	if opts.Optimize != nil {
		compiled = append(compiled, spool.WithOptimize(*opts.Optimize))
	}
	return compiled
}

type compileRequest struct {
	Source  string         `json:"source"`
	Options map[string]any `json:"options,omitempty"`
}

type compileResponse struct {
	YAML        string `json:"yaml"`
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	opts, err := decodeOptions(req.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := spool.Compile(req.Source, s.compileOpts(opts)...)
	s.metrics.ObserveCompile(err, stateCount(m))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, s.logger, compileResponse{
		YAML:        machine.ToYAML(m),
		States:      len(m.States),
		Transitions: m.TransitionCount(),
	})
}

type runRequest struct {
	Source  string         `json:"source,omitempty"`
	Machine string         `json:"machine,omitempty"`
	Input   string         `json:"input"`
	Options map[string]any `json:"options,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	opts, err := decodeOptions(req.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, status, err := s.resolveMachine(r, req.Source, req.Machine, opts)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	res := sim.New(m, sim.WithStepLimit(opts.Limit)).Run(req.Input)
	s.metrics.ObserveRun(res.Accepted, res.HitLimit, res.Steps)
	writeJSON(w, s.logger, res)
}

// resolveMachine loads a stored machine or compiles inline source;
// exactly one of the two must be given.
func (s *Server) resolveMachine(r *http.Request, source, name string, opts runOptions) (*machine.Machine, int, error) {
	switch {
	case source != "" && name != "":
		return nil, http.StatusBadRequest, errors.New("give either source or machine, not both")
	case name != "":
		m, err := s.store.Load(r.Context(), name)
		if errors.Is(err, ports.ErrMachineNotFound) {
			return nil, http.StatusNotFound, err
		}
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return m, http.StatusOK, nil
	case source != "":
		m, err := spool.Compile(source, s.compileOpts(opts)...)
		s.metrics.ObserveCompile(err, stateCount(m))
		if err != nil {
			return nil, http.StatusUnprocessableEntity, err
		}
		return m, http.StatusOK, nil
	}
	return nil, http.StatusBadRequest, errors.New("source or machine required")
}

func (s *Server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.logger, map[string][]string{"machines": names})
}

func (s *Server) handleSaveMachine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	opts, err := decodeOptions(req.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := spool.Compile(req.Source, s.compileOpts(opts)...)
	s.metrics.ObserveCompile(err, stateCount(m))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := s.store.Save(r.Context(), name, m); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("machine saved", "name", name, "states", len(m.States))
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	m, err := s.store.Load(r.Context(), name)
	if errors.Is(err, ports.ErrMachineNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write([]byte(machine.ToYAML(m)))
}

func (s *Server) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionRequest struct {
	Source  string         `json:"source,omitempty"`
	Machine string         `json:"machine,omitempty"`
	Input   string         `json:"input"`
	Options map[string]any `json:"options,omitempty"`
}

type sessionState struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Head     int    `json:"head"`
	Tape     string `json:"tape"`
	Steps    int    `json:"steps"`
	Halted   bool   `json:"halted"`
	Accepted bool   `json:"accepted"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	opts, err := decodeOptions(req.Options)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, status, err := s.resolveMachine(r, req.Source, req.Machine, opts)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	simulator := sim.New(m, sim.WithStepLimit(opts.Limit))
	simulator.Reset(req.Input)

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("sess-%d", s.nextID)
	sess := &session{sim: simulator}
	s.sessions[id] = sess
	s.mu.Unlock()

	writeJSON(w, s.logger, snapshot(id, sess))
}

type stepRequest struct {
	Steps int `json:"steps,omitempty"`
}

func (s *Server) handleStepSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var req stepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	steps := req.Steps
	if steps <= 0 {
		steps = 1
	}

	sess.mu.Lock()
	for i := 0; i < steps; i++ {
		if !sess.sim.Step() {
			break
		}
	}
	sess.mu.Unlock()

	writeJSON(w, s.logger, snapshot(id, sess))
}

func snapshot(id string, sess *session) sessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	cfg := sess.sim.Config()
	tape := make([]byte, len(cfg.Tape))
	for i, c := range cfg.Tape {
		tape[i] = byte(c)
	}
	return sessionState{
		ID:       id,
		State:    cfg.State,
		Head:     cfg.Head,
		Tape:     trimTrailingBlanks(string(tape)),
		Steps:    sess.sim.Steps(),
		Halted:   sess.sim.Halted(),
		Accepted: sess.sim.Accepted(),
	}
}

func stateCount(m *machine.Machine) int {
	if m == nil {
		return 0
	}
	return len(m.States)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "error", err)
	}
}

// trimTrailingBlanks keeps session snapshots compact for long runs.
func trimTrailingBlanks(tape string) string {
	return strings.TrimRight(tape, "_")
}
