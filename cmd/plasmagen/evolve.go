package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/plasmagen/internal/automation"
	"github.com/san-kum/plasmagen/internal/config"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/export"
	"github.com/san-kum/plasmagen/internal/logging"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/session"
	"github.com/san-kum/plasmagen/internal/storage"
	"github.com/san-kum/plasmagen/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sessionDeps is everything a session needs apart from its display and input.
type sessionDeps struct {
	cfg      *config.Config
	log      *zap.Logger
	engine   *evolve.Engine
	renderer *render.Renderer
	exporter *export.Exporter
	opts     []session.Option
	closers  []func()
}

func (d *sessionDeps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// newSessionDeps builds the shared session collaborators. logToFile sends logs
// to the configured file instead of stderr.
func newSessionDeps(cmd *cobra.Command, logToFile bool) (*sessionDeps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()

	sink := logging.WithWriter(os.Stderr)
	if logToFile {
		sink = logging.WithFile(cfg.Log.File)
	}
	log, flush, err := logging.New(
		logging.WithLevel(cfg.Log.Level),
		logging.WithDevelopment(cfg.Log.Development),
		sink,
	)
	if err != nil {
		return nil, err
	}
	d := &sessionDeps{cfg: cfg, log: log, closers: []func(){flush}}

	d.engine, err = evolve.New(cfg.EvolveParams())
	if err != nil {
		d.Close()
		return nil, err
	}
	d.renderer = render.New(cfg.RenderOptions())

	dest := exportTo
	if dest == "" {
		dest = filepath.Join(filepath.Dir(cfg.Store.Path), "exports")
	}
	out, err := export.OpenSink(ctx, dest, region)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.exporter = export.New(out)

	d.opts = []session.Option{session.WithLogger(log)}
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Warn("store unavailable, history will not be saved", zap.Error(err))
	} else {
		d.closers = append(d.closers, func() { storage.CloseIfSupported(st) })
		d.opts = append(d.opts, session.WithStore(st))
	}
	return d, nil
}

func runEvolve(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so logs go to a file.
	d, err := newSessionDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := cmd.Context()

	bridge := tui.New(d.cfg.Render.FPS, tea.WithAltScreen(), tea.WithContext(ctx))
	sess, err := session.New(sessionConfig(d.cfg), d.engine, d.renderer, bridge, bridge, d.exporter, d.opts...)
	if err != nil {
		return err
	}

	type outcome struct {
		res *session.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := sess.Run(ctx)
		if err != nil {
			d.log.Error("session failed", zap.Error(err))
		}
		bridge.Finish(summary(res, err))
		done <- outcome{res, err}
	}()

	uiErr := bridge.Run()
	out := <-done
	if uiErr != nil && !errors.Is(uiErr, tea.ErrProgramKilled) {
		return uiErr
	}

	fmt.Println(summary(out.res, out.err))
	if out.err != nil && !errors.Is(out.err, ctx.Err()) {
		return out.err
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	d, err := newSessionDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	runner := &automation.Runner{
		Config:   sessionConfig(d.cfg),
		Engine:   d.engine,
		Renderer: d.renderer,
		Exporter: d.exporter,
		Options:  d.opts,
		Log:      d.log,
	}
	start := time.Now()
	res, err := runner.RunScenario(cmd.Context(), sc)
	if res != nil {
		fmt.Println(summary(res, nil))
	}
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Size:                cfg.Population.Size,
		Terms:               cfg.TermRange(),
		PreviewWidth:        cfg.Render.PreviewWidth,
		PreviewHeight:       cfg.Render.PreviewHeight,
		ExportWidth:         cfg.Render.Width,
		ExportHeight:        cfg.Render.Height,
		Seed:                cfg.Seed,
		ContinueAfterExport: keepOpen,
	}
}

func summary(res *session.Result, err error) string {
	var b strings.Builder
	if res != nil {
		fmt.Fprintf(&b, "session %s: %d generations", short(res.Session), res.Generations)
		if res.Aborted {
			b.WriteString(" (aborted)")
		}
		for _, e := range res.Exported {
			fmt.Fprintf(&b, "\nexported generation %d #%d -> %s", e.Generation, e.Index+1, e.Location)
		}
	}
	if err != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "error: %v", err)
	}
	return b.String()
}
