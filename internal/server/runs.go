package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Garsondee/Match-Sim/internal/game"
	"github.com/Garsondee/Match-Sim/internal/store"
)

// DefaultRunRetention is how long an ended run stays in memory.
const DefaultRunRetention = 10 * time.Minute

// ErrRunNotFound is returned for unknown run ids.
var ErrRunNotFound = errors.New("run not found")

// RunState is the lifecycle of a server-side run.
type RunState string

const (
	RunRunning  RunState = "running"
	RunFinished RunState = "finished"
	RunStopped  RunState = "stopped"
	RunFailed   RunState = "failed"
)

// RunStatus is the JSON view of a run.
type RunStatus struct {
	RunID    string                  `json:"run_id"`
	MatchID  int64                   `json:"match_id"`
	Seed     int64                   `json:"seed"`
	Targets  game.Score              `json:"targets"`
	State    RunState                `json:"state"`
	Score    game.Score              `json:"score"`
	Stats    game.Stats              `json:"stats"`
	Outcome  game.MatchOutcomeReason `json:"outcome"`
	Snapshot *game.Snapshot          `json:"snapshot,omitempty"`
	Report   string                  `json:"report,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Run is one match being simulated by its own goroutine. Only that
// goroutine touches the underlying game.Match; everything else reads the
// copies published under mu.
type Run struct {
	ID      string
	MatchID int64
	Seed    int64
	Targets game.Score

	cancel context.CancelFunc
	done   chan struct{}
	hub    *hub

	mu     sync.Mutex
	state  RunState
	snap   *game.Snapshot
	stats  game.Stats
	report string
	err    string
}

// Status copies the run's current state.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := RunStatus{
		RunID:   r.ID,
		MatchID: r.MatchID,
		Seed:    r.Seed,
		Targets: r.Targets,
		State:   r.state,
		Stats:   r.stats,
		Report:  r.report,
		Error:   r.err,
	}
	if r.snap != nil {
		snap := *r.snap
		st.Snapshot = &snap
		st.Score = game.Score{A: snap.ScoreA, B: snap.ScoreB}
	}
	st.Outcome = game.DetermineMatchOutcome(st.Score, r.state == RunFinished, r.stats)
	return st
}

// Done is closed once the run's goroutine has exited.
func (r *Run) Done() <-chan struct{} { return r.done }

func (r *Run) publish(snap game.Snapshot, stats game.Stats) {
	r.mu.Lock()
	r.snap = &snap
	r.stats = stats
	r.mu.Unlock()
}

func (r *Run) finish(state RunState, report, errMsg string) {
	r.mu.Lock()
	r.state = state
	r.report = report
	r.err = errMsg
	r.mu.Unlock()
}

// Runner owns every live run. Ended runs are dropped retain after their
// goroutine exits; finished results remain in the store.
type Runner struct {
	store  *store.Store
	cfg    game.Config
	tick   time.Duration
	retain time.Duration
	log    *slog.Logger

	mu   sync.Mutex
	runs map[string]*Run
	wg   sync.WaitGroup
}

// NewRunner builds a runner stepping matches every tick and saving results
// to st. st may be nil, in which case results are kept in memory only.
// A retain of 0 keeps ended runs for the life of the runner.
func NewRunner(st *store.Store, cfg game.Config, tick, retain time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		store:  st,
		cfg:    cfg,
		tick:   tick,
		retain: retain,
		log:    log,
		runs:   make(map[string]*Run),
	}
}

// Start launches a run of matchID heading for targets.
func (rn *Runner) Start(matchID int64, targets game.Score, seed int64) (*Run, error) {
	id := uuid.NewString()
	logger := rn.log.With("run", id, "match", matchID)
	m, err := game.New(targets.A, targets.B,
		game.WithSeed(seed),
		game.WithConfig(rn.cfg),
		game.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Run{
		ID:      id,
		MatchID: matchID,
		Seed:    seed,
		Targets: targets,
		cancel:  cancel,
		done:    make(chan struct{}),
		hub:     newHub(),
		state:   RunRunning,
	}
	rn.mu.Lock()
	rn.runs[id] = r
	rn.mu.Unlock()

	rn.wg.Add(1)
	go rn.loop(ctx, r, m, logger)
	logger.Info("run started", "targets", fmt.Sprintf("%d-%d", targets.A, targets.B), "seed", seed)
	return r, nil
}

// loop is the only caller of m.Step.
func (rn *Runner) loop(ctx context.Context, r *Run, m *game.Match, logger *slog.Logger) {
	defer rn.wg.Done()
	defer rn.evictLater(r.ID)
	defer close(r.done)

	rb := game.NewReportBuilder(m)
	ticker := time.NewTicker(rn.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Stop()
			r.finish(RunStopped, rb.Format(m.Stats()), "")
			r.hub.close(nil)
			logger.Info("run stopped", "tick", m.Tick())
			return
		case <-ticker.C:
		}

		events := m.Step()
		rb.Observe(events)
		r.publish(m.Snapshot(), m.Stats())

		var final []byte
		for _, ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error("encode event", "kind", ev.Kind, "err", err)
				continue
			}
			r.hub.broadcast(data)
			if ev.Kind == game.EventFullTime {
				final = data
			}
		}
		if !m.Done() {
			continue
		}

		report := rb.Format(m.Stats())
		if err := rn.persist(r, m); err != nil {
			logger.Error("save result", "err", err)
			r.finish(RunFailed, report, err.Error())
		} else {
			r.finish(RunFinished, report, "")
		}
		r.hub.close(final)
		logger.Info("run finished", "score", m.Score())
		return
	}
}

// evictLater forgets run id once the retention period has passed.
func (rn *Runner) evictLater(id string) {
	if rn.retain <= 0 {
		return
	}
	time.AfterFunc(rn.retain, func() {
		rn.mu.Lock()
		delete(rn.runs, id)
		rn.mu.Unlock()
		rn.log.Debug("run evicted", "run", id)
	})
}

func (rn *Runner) persist(r *Run, m *game.Match) error {
	if rn.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	score := m.Score()
	_, err := rn.store.SaveResult(ctx, store.Result{
		MatchID: r.MatchID,
		RunID:   r.ID,
		Seed:    r.Seed,
		ScoreA:  score.A,
		ScoreB:  score.B,
		Stats:   m.Stats(),
	})
	return err
}

// Get returns a run by id.
func (rn *Runner) Get(id string) (*Run, bool) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	r, ok := rn.runs[id]
	return r, ok
}

// Stop cancels a run and waits for its goroutine to exit. Stopping a run
// that has already ended is a no-op.
func (rn *Runner) Stop(id string) error {
	r, ok := rn.Get(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	r.cancel()
	<-r.done
	return nil
}

// Active counts runs that are still stepping.
func (rn *Runner) Active() int {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	n := 0
	for _, r := range rn.runs {
		select {
		case <-r.done:
		default:
			n++
		}
	}
	return n
}

// Shutdown stops every run and waits for them, or for ctx.
func (rn *Runner) Shutdown(ctx context.Context) error {
	rn.mu.Lock()
	for _, r := range rn.runs {
		r.cancel()
	}
	rn.mu.Unlock()

	done := make(chan struct{})
	go func() {
		rn.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
