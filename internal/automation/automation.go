// Package automation replays rating scripts against a headless session, so a
// breeding run can be repeated from a YAML file without a terminal.
package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/logging"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/session"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted evolution run
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Seed overrides the configured seed when non-zero.
	Seed  int64  `yaml:"seed"`
	Steps []Step `yaml:"steps"`
}

// Step rates one generation. Ratings are matched to members by position and
// Export lists member indices to export before advancing.
type Step struct {
	Ratings []string `yaml:"ratings"`
	Export  []int    `yaml:"export"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if _, err := scenario.Actions(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Actions flattens the scenario into the action stream a user would produce.
func (sc *Scenario) Actions() ([]session.Action, error) {
	var out []session.Action
	for i, step := range sc.Steps {
		for j, s := range step.Ratings {
			r, err := evolve.ParseRating(s)
			if err != nil {
				return nil, fmt.Errorf("step %d rating %d: %w", i+1, j, err)
			}
			if r != evolve.Unrated {
				out = append(out, session.Rate(j, r))
			}
		}
		for _, idx := range step.Export {
			if idx < 0 {
				return nil, fmt.Errorf("step %d: negative export index %d", i+1, idx)
			}
			out = append(out, session.Export(idx))
		}
		out = append(out, session.Advance())
	}
	return out, nil
}

// Script is a session.Input that replays a fixed list of actions and then
// reports io.EOF.
type Script struct {
	actions []session.Action
	next    int
}

func NewScript(actions []session.Action) *Script {
	return &Script{actions: actions}
}

func (s *Script) Next(ctx context.Context) (session.Action, error) {
	if err := ctx.Err(); err != nil {
		return session.Action{}, err
	}
	if s.next >= len(s.actions) {
		return session.Action{}, io.EOF
	}
	a := s.actions[s.next]
	s.next++
	return a, nil
}

// Remaining reports how many actions have not been consumed.
func (s *Script) Remaining() int { return len(s.actions) - s.next }

// LogDisplay is a session.Display that only logs what would be shown.
type LogDisplay struct {
	Log   *zap.Logger
	Shown int
}

func (d *LogDisplay) Show(_ context.Context, gen session.Generation) error {
	d.Shown++
	logging.OrNop(d.Log).Info("generation",
		zap.Int("generation", gen.Number),
		zap.Int("size", len(gen.Genomes)),
		zap.Int("replaced", gen.Replaced),
	)
	return nil
}

// Runner holds what a headless session needs besides its script.
type Runner struct {
	Config   session.Config
	Engine   *evolve.Engine
	Renderer *render.Renderer
	Exporter session.Exporter
	Options  []session.Option
	Log      *zap.Logger
}

// RunScenario plays sc to completion. The session ends when the script runs
// out of actions or when an export ends it.
func (r *Runner) RunScenario(ctx context.Context, sc *Scenario) (*session.Result, error) {
	actions, err := sc.Actions()
	if err != nil {
		return nil, err
	}
	cfg := r.Config
	if sc.Seed != 0 {
		cfg.Seed = sc.Seed
	}

	log := logging.OrNop(r.Log).With(zap.String("scenario", sc.Name))
	opts := append([]session.Option{session.WithLogger(log)}, r.Options...)
	sess, err := session.New(cfg, r.Engine, r.Renderer, &LogDisplay{Log: log}, NewScript(actions), r.Exporter, opts...)
	if err != nil {
		return nil, err
	}
	log.Info("running scenario", zap.Int("steps", len(sc.Steps)), zap.Int("actions", len(actions)))
	return sess.Run(ctx)
}
