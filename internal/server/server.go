// Package server exposes stored matches and live simulation runs over a
// JSON HTTP API with a websocket event stream per run.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Garsondee/Match-Sim/internal/game"
	"github.com/Garsondee/Match-Sim/internal/store"
)

// DefaultTick is the run step interval: one simulated tick per 100ms.
const DefaultTick = 100 * time.Millisecond

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTick sets how often runs step.
func WithTick(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithRunRetention sets how long an ended run stays in memory before
// lookups fall back to the store.
func WithRunRetention(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.retain = d
		}
	}
}

// WithConfig sets the tuning every run uses.
func WithConfig(cfg game.Config) Option {
	return func(s *Server) { s.cfg = cfg }
}

// Server is the HTTP front end.
type Server struct {
	store   *store.Store
	runs    *Runner
	log     *slog.Logger
	tick    time.Duration
	retain  time.Duration
	cfg     game.Config
	started time.Time
	handler http.Handler
}

// New builds a server backed by st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:   st,
		log:     slog.New(slog.DiscardHandler),
		tick:    DefaultTick,
		retain:  DefaultRunRetention,
		cfg:     game.DefaultConfig(),
		started: time.Now(),
	}
	for _, o := range opts {
		o(s)
	}
	s.runs = NewRunner(st, s.cfg, s.tick, s.retain, s.log)
	s.handler = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Runs exposes the run manager.
func (s *Server) Runs() *Runner { return s.runs }

// Shutdown stops all runs.
func (s *Server) Shutdown(ctx context.Context) error { return s.runs.Shutdown(ctx) }

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.health).Methods("GET")

	api.HandleFunc("/matches", s.listMatches).Methods("GET")
	api.HandleFunc("/matches", s.createMatch).Methods("POST")
	api.HandleFunc("/matches/{id:[0-9]+}", s.getMatch).Methods("GET")
	api.HandleFunc("/matches/{id:[0-9]+}", s.updateMatch).Methods("PUT")
	api.HandleFunc("/matches/{id:[0-9]+}", s.deleteMatch).Methods("DELETE")
	api.HandleFunc("/matches/{id:[0-9]+}/results", s.matchResults).Methods("GET")
	api.HandleFunc("/matches/{id:[0-9]+}/simulate", s.simulate).Methods("POST")

	api.HandleFunc("/runs/{run_id}", s.getRun).Methods("GET")
	api.HandleFunc("/runs/{run_id}", s.stopRun).Methods("DELETE")
	api.HandleFunc("/runs/{run_id}/stream", s.streamRun).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"started":     humanize.Time(s.started),
		"active_runs": s.runs.Active(),
	})
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.store.ListMatches(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var m store.Match
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if m.Status == "" {
		m.Status = store.StatusScheduled
	}
	m, err := s.store.CreateMatch(r.Context(), m)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMatch(r.Context(), matchID(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) updateMatch(w http.ResponseWriter, r *http.Request) {
	var m store.Match
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	m.ID = matchID(r)
	if err := s.store.UpdateMatch(r.Context(), m); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) deleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMatch(r.Context(), matchID(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) matchResults(w http.ResponseWriter, r *http.Request) {
	id := matchID(r)
	if _, err := s.store.GetMatch(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	results, err := s.store.ResultsForMatch(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results, "count": len(results)})
}

type simulateRequest struct {
	ScoreA int    `json:"score_a"`
	ScoreB int    `json:"score_b"`
	Seed   *int64 `json:"seed,omitempty"`
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	id := matchID(r)
	if _, err := s.store.GetMatch(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}
	run, err := s.runs.Start(id, game.Score{A: req.ScoreA, B: req.ScoreB}, seed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"run_id": run.ID, "seed": seed})
}

// getRun reports a live run, or falls back to the stored result of a run
// from an earlier server process.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["run_id"]
	if run, ok := s.runs.Get(id); ok {
		writeJSON(w, http.StatusOK, run.Status())
		return
	}
	res, err := s.store.ResultByRun(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	score := game.Score{A: res.ScoreA, B: res.ScoreB}
	writeJSON(w, http.StatusOK, RunStatus{
		RunID:   res.RunID,
		MatchID: res.MatchID,
		Seed:    res.Seed,
		Targets: score,
		State:   RunFinished,
		Score:   score,
		Stats:   res.Stats,
		Outcome: game.DetermineMatchOutcome(score, true, res.Stats),
	})
}

func (s *Server) stopRun(w http.ResponseWriter, r *http.Request) {
	if err := s.runs.Stop(mux.Vars(r)["run_id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) streamRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.runs.Get(mux.Vars(r)["run_id"])
	if !ok {
		s.writeError(w, ErrRunNotFound)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "run", run.ID, "err", err)
		return
	}
	sub := newSubscriber(conn)
	go sub.writer()
	if run.hub.add(sub) {
		go sub.reader(run.hub)
	}
	s.log.Debug("stream subscribed", "run", run.ID, "subscribers", run.hub.count())
}

func matchID(r *http.Request) int64 {
	// The route pattern guarantees digits; overflow parses to 0, which no row has.
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, ErrRunNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidMatch), errors.Is(err, game.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
