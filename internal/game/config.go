package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// RoleValues holds one tunable per tactical role.
type RoleValues struct {
	Goalkeeper float64 `yaml:"goalkeeper"`
	Defender   float64 `yaml:"defender"`
	Midfielder float64 `yaml:"midfielder"`
	Forward    float64 `yaml:"forward"`
}

// For returns the value for role r.
func (rv RoleValues) For(r Role) float64 {
	switch r {
	case RoleGoalkeeper:
		return rv.Goalkeeper
	case RoleDefender:
		return rv.Defender
	case RoleMidfielder:
		return rv.Midfielder
	default:
		return rv.Forward
	}
}

// Config holds every tunable of the simulation. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	Formation FormationType `yaml:"formation"`

	// Clock.
	TicksPerMinute   int `yaml:"ticks_per_minute"`
	HalfTimeTicks    int `yaml:"half_time_ticks"`
	GoalRestartTicks int `yaml:"goal_restart_ticks"` // dead-ball interval after a goal
	BannerTicks      int `yaml:"banner_ticks"`       // goal text lifetime

	// Steering.
	AttackShift        RoleValues `yaml:"attack_shift"`
	DefendShift        RoleValues `yaml:"defend_shift"`
	ChaseChance        RoleValues `yaml:"chase_chance"`
	MaxSpeed           RoleValues `yaml:"max_speed"`
	LateralFactor      float64    `yaml:"lateral_factor"`
	ChaseRadius        float64    `yaml:"chase_radius"`
	ChaseJitter        float64    `yaml:"chase_jitter"`
	SeparationRadius   float64    `yaml:"separation_radius"`
	SeparationStrength float64    `yaml:"separation_strength"`
	ArriveRadius       float64    `yaml:"arrive_radius"`
	MaxMove            float64    `yaml:"max_move"`

	// Ball.
	HolderRadius    float64 `yaml:"holder_radius"`
	PassChance      float64 `yaml:"pass_chance"`
	PassMinDist     float64 `yaml:"pass_min_dist"`
	PassMaxDist     float64 `yaml:"pass_max_dist"`
	LateralPenalty  float64 `yaml:"lateral_penalty"`
	PassStep        float64 `yaml:"pass_step"`
	PassFlightTicks int     `yaml:"pass_flight_ticks"`
	InterceptRadius float64 `yaml:"intercept_radius"`
	DribbleStep     float64 `yaml:"dribble_step"`
	DriftStep       float64 `yaml:"drift_step"`

	// PassFlight carries a pass over several ticks toward its receiver
	// instead of a single PassStep kick. Off by default.
	PassFlight bool `yaml:"pass_flight"`

	// LineGoalsScore lets a ball crossing a goal line add to the score on
	// top of the schedule. Off by default so final scores match targets.
	LineGoalsScore bool `yaml:"line_goals_score"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Formation: Formation442,

		TicksPerMinute:   10,
		HalfTimeTicks:    30,
		GoalRestartTicks: 10,
		BannerTicks:      10,

		AttackShift:        RoleValues{Goalkeeper: 10, Defender: 30, Midfielder: 50, Forward: 70},
		DefendShift:        RoleValues{Goalkeeper: 5, Defender: 20, Midfielder: 35, Forward: 45},
		ChaseChance:        RoleValues{Goalkeeper: 0, Defender: 0.3, Midfielder: 0.6, Forward: 0.8},
		MaxSpeed:           RoleValues{Goalkeeper: 2, Defender: 3, Midfielder: 4, Forward: 5},
		LateralFactor:      0.2,
		ChaseRadius:        100,
		ChaseJitter:        20,
		SeparationRadius:   30,
		SeparationStrength: 2,
		ArriveRadius:       1,
		MaxMove:            8,

		HolderRadius:    30,
		PassChance:      0.15,
		PassMinDist:     30,
		PassMaxDist:     200,
		LateralPenalty:  0.5,
		PassStep:        12,
		PassFlightTicks: 20,
		InterceptRadius: 25,
		DribbleStep:     5,
		DriftStep:       4,
	}
}

// LoadConfig reads a YAML overlay from path on top of DefaultConfig.
// Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.TicksPerMinute <= 0:
		return fmt.Errorf("%w: ticks_per_minute must be > 0", ErrInvalidConfig)
	case c.HalfTimeTicks < 0, c.GoalRestartTicks < 0, c.BannerTicks < 0:
		return fmt.Errorf("%w: tick delays must be >= 0", ErrInvalidConfig)
	case c.PassChance < 0 || c.PassChance > 1:
		return fmt.Errorf("%w: pass_chance must be in [0,1]", ErrInvalidConfig)
	case c.PassMinDist >= c.PassMaxDist:
		return fmt.Errorf("%w: pass_min_dist must be below pass_max_dist", ErrInvalidConfig)
	case c.MaxMove <= 0:
		return fmt.Errorf("%w: max_move must be > 0", ErrInvalidConfig)
	case c.PassFlight && c.PassFlightTicks <= 0:
		return fmt.Errorf("%w: pass_flight_ticks must be > 0", ErrInvalidConfig)
	}
	for _, p := range []float64{c.ChaseChance.Goalkeeper, c.ChaseChance.Defender, c.ChaseChance.Midfielder, c.ChaseChance.Forward} {
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: chase_chance values must be in [0,1]", ErrInvalidConfig)
		}
	}
	if _, ok := formationLines[c.Formation]; !ok {
		return fmt.Errorf("%w: unknown formation %q", ErrInvalidConfig, c.Formation)
	}
	return nil
}
