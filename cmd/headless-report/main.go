package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"github.com/Garsondee/Match-Sim/internal/game"
)

type runStats struct {
	runIndex int
	seed     int64
	targets  game.Score
	final    game.Score
	ticks    int

	halfTime      game.Score
	firstGoalTick int
	goalsA        []int
	goalsB        []int

	passes        int
	completed     int
	interceptions int
	lineCrossings int
	possessionA   float64
	looseTicks    int

	outcome game.MatchOutcomeReason
}

func (rs runStats) mismatch() bool { return rs.final != rs.targets }

func main() {
	var runs int
	var targetA, targetB int
	var seedBase int64
	var seedStep int64
	var configPath string
	var verbose bool

	flag.IntVar(&runs, "runs", 5, "number of headless match runs")
	flag.IntVar(&targetA, "a", 2, "target goals for team A")
	flag.IntVar(&targetB, "b", 1, "target goals for team B")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "optional YAML tuning overlay")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	logger := newLogger(verbose)

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		os.Exit(2)
	}
	cfg := game.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(configPath); err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(2)
		}
	}

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("target=%d-%d formation=%s runs=%d seed_base=%d seed_step=%d\n\n",
		targetA, targetB, cfg.Formation, runs, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs, err := runMatch(i+1, seed, targetA, targetB, cfg, logger)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(2)
		}
		all = append(all, rs)
		printRun(rs)
	}

	if failed := printAggregate(all); failed > 0 {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "headless-report",
	}))
}

// maxTicks bounds a run well past the full-time whistle.
const maxTicks = 2000

func runMatch(runIndex int, seed int64, targetA, targetB int, cfg game.Config, logger *slog.Logger) (runStats, error) {
	tm, err := game.NewTestMatch(targetA, targetB, game.WithMatchOptions(
		game.WithSeed(seed),
		game.WithConfig(cfg),
		game.WithLogger(logger.With("run", runIndex)),
	))
	if err != nil {
		return runStats{}, err
	}
	final := tm.RunToFullTime(maxTicks)

	entries := tm.SimLog.Entries()
	st := tm.Match.Stats()
	rs := runStats{
		runIndex:      runIndex,
		seed:          seed,
		targets:       tm.Match.Targets(),
		final:         final,
		ticks:         tm.CurrentTick(),
		firstGoalTick: firstTick(entries, "goal", "scored", ""),
		goalsA:        st.Teams[game.TeamA].GoalMinutes,
		goalsB:        st.Teams[game.TeamB].GoalMinutes,
		interceptions: tm.SimLog.CountCategory("ball", "interception"),
		lineCrossings: tm.SimLog.CountCategory("goal", "line_crossed"),
		possessionA:   st.Possession(game.TeamA),
		looseTicks:    st.LooseTicks,
		outcome:       game.DetermineMatchOutcome(final, tm.Match.Done(), st),
	}
	for _, t := range []game.Team{game.TeamA, game.TeamB} {
		rs.passes += st.Teams[t].PassesAttempted
		rs.completed += st.Teams[t].PassesCompleted
	}
	for _, ev := range tm.Events {
		if ev.Kind == game.EventHalfTime {
			rs.halfTime = game.Score{A: ev.ScoreA, B: ev.ScoreB}
		}
	}
	return rs, nil
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats) {
	status := "ok"
	if rs.mismatch() {
		status = "MISMATCH"
	}
	fmt.Printf("--- %s run (seed=%d) ---\n", humanize.Ordinal(rs.runIndex), rs.seed)
	fmt.Printf("final=%d-%d target=%d-%d half_time=%d-%d ticks=%d [%s]\n",
		rs.final.A, rs.final.B, rs.targets.A, rs.targets.B, rs.halfTime.A, rs.halfTime.B, rs.ticks, status)
	fmt.Printf("goal_minutes: A=%s B=%s first_goal_tick=%d\n",
		minutesString(rs.goalsA), minutesString(rs.goalsB), rs.firstGoalTick)
	fmt.Printf("ball_events: passes=%d completed=%d interceptions=%d line_crossings=%d loose_ticks=%d\n",
		rs.passes, rs.completed, rs.interceptions, rs.lineCrossings, rs.looseTicks)
	fmt.Printf("possession: A=%.0f%% B=%.0f%%\n", rs.possessionA*100, (1-rs.possessionA)*100)
	fmt.Printf("outcome: %s (%s)\n\n", rs.outcome.Outcome, rs.outcome.Description)
}

// printAggregate prints totals across runs and returns how many runs missed
// their target score.
func printAggregate(all []runStats) int {
	totalTicks := 0
	totalPasses := 0
	totalCompleted := 0
	totalInterceptions := 0
	totalCrossings := 0
	possession := 0.0
	firstHalf := 0
	secondHalf := 0
	failed := 0
	var failedSeeds []string
	minuteHist := map[int]int{}
	outcomes := map[string]int{}

	for _, rs := range all {
		totalTicks += rs.ticks
		totalPasses += rs.passes
		totalCompleted += rs.completed
		totalInterceptions += rs.interceptions
		totalCrossings += rs.lineCrossings
		possession += rs.possessionA
		outcomes[rs.outcome.Description]++
		for _, m := range append(append([]int(nil), rs.goalsA...), rs.goalsB...) {
			if m <= game.HalfTimeMinute {
				firstHalf++
			} else {
				secondHalf++
			}
			minuteHist[(m-1)/15]++
		}
		if rs.mismatch() {
			failed++
			failedSeeds = append(failedSeeds, fmt.Sprint(rs.seed))
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d ticks=%s\n", len(all), humanize.Comma(int64(totalTicks)))
	fmt.Printf("avg_per_run: passes=%.1f completed=%.1f interceptions=%.1f line_crossings=%.1f\n",
		avg(totalPasses, len(all)), avg(totalCompleted, len(all)), avg(totalInterceptions, len(all)), avg(totalCrossings, len(all)))
	fmt.Printf("pass_accuracy=%s possession_A_avg=%.0f%%\n",
		percentString(totalCompleted, totalPasses), avgFloat(possession, len(all))*100)
	fmt.Printf("goals: first_half=%d second_half=%d\n", firstHalf, secondHalf)
	fmt.Printf("goals_by_quarter_hour: %s\n", histString(minuteHist))
	fmt.Printf("outcomes: %s\n", countsString(outcomes))
	if failed == 0 {
		fmt.Printf("target_check: all %d runs matched\n", len(all))
	} else {
		sort.Strings(failedSeeds)
		fmt.Printf("target_check: %d of %d runs MISMATCHED (seeds %s)\n", failed, len(all), strings.Join(failedSeeds, ","))
	}
	return failed
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgFloat(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

func percentString(num, den int) string {
	if den == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.0f%%", float64(num)/float64(den)*100)
}

func minutesString(mins []int) string {
	if len(mins) == 0 {
		return "none"
	}
	parts := make([]string, len(mins))
	for i, m := range mins {
		parts[i] = fmt.Sprintf("%d'", m)
	}
	return strings.Join(parts, ",")
}

// histString renders goal counts per 15-minute bucket, 1-15 through 76-90.
func histString(h map[int]int) string {
	parts := make([]string, 0, 6)
	for b := 0; b < 6; b++ {
		parts = append(parts, fmt.Sprintf("%d-%d:%d", b*15+1, b*15+15, h[b]))
	}
	return strings.Join(parts, " ")
}

func countsString(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}
