package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/plasmagen/internal/analysis"
	"github.com/san-kum/plasmagen/internal/config"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/export"
	"github.com/san-kum/plasmagen/internal/plasma"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/storage"
	"github.com/san-kum/plasmagen/internal/viewer"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	dataDir    string
	seed       int64
	logLevel   string

	outPath  string
	exportTo string
	region   string
	count    int
	size     int
	scale    int
	keepOpen bool
	sampleX  float64
	sampleY  float64
)

// main registers the plasmagen commands. With no subcommand it starts an
// interactive evolution session.
func main() {
	rootCmd := &cobra.Command{
		Use:           "plasmagen",
		Short:         "breed looping plasma animations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEvolve,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")

	evolveCmd := &cobra.Command{
		Use:   "evolve",
		Short: "rate generations in the terminal and export favourites",
		Args:  cobra.NoArgs,
		RunE:  runEvolve,
	}
	evolveCmd.Flags().StringVarP(&exportTo, "out", "o", "", "export directory or s3://bucket/prefix (default <data>/exports)")
	evolveCmd.Flags().StringVar(&region, "region", "", "AWS region for s3 exports")
	evolveCmd.Flags().BoolVar(&keepOpen, "continue", false, "keep evolving after an export")

	renderCmd := &cobra.Command{
		Use:   "render [code]",
		Short: "render a genome code to a looping GIF",
		Args:  cobra.ExactArgs(1),
		RunE:  renderGenome,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "plasma.gif", "output file or s3://bucket/key")
	renderCmd.Flags().StringVar(&region, "region", "", "AWS region for s3 output")
	renderCmd.Flags().IntVar(&size, "size", 0, "square output size (default from config)")

	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "print random genome codes",
		Args:  cobra.NoArgs,
		RunE:  randomGenomes,
	}
	randomCmd.Flags().IntVarP(&count, "count", "n", 1, "number of genomes")

	playCmd := &cobra.Command{
		Use:   "play [code]",
		Short: "play a genome's loop in a window",
		Args:  cobra.ExactArgs(1),
		RunE:  playGenome,
	}
	playCmd.Flags().IntVar(&size, "size", 0, "square render size (default from config)")
	playCmd.Flags().IntVar(&scale, "scale", 2, "window scale")

	inspectCmd := &cobra.Command{
		Use:   "inspect [code]",
		Short: "show loop length, terms and the temporal spectrum of a genome",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectGenome,
	}
	inspectCmd.Flags().Float64Var(&sampleX, "x", 0.25, "sample x in [0,1)")
	inspectCmd.Flags().Float64Var(&sampleY, "y", 0.25, "sample y in [0,1)")

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "replay a YAML rating script without a terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	scriptCmd.Flags().StringVarP(&exportTo, "out", "o", "", "export directory or s3://bucket/prefix (default <data>/exports)")
	scriptCmd.Flags().StringVar(&region, "region", "", "AWS region for s3 exports")
	scriptCmd.Flags().BoolVar(&keepOpen, "continue", false, "keep evolving after an export")

	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "list exported genomes",
		Args:  cobra.NoArgs,
		RunE:  listLibrary,
	}

	historyCmd := &cobra.Command{
		Use:   "history [session]",
		Short: "plot ratings and diversity per generation (default: latest session)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotHistory,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(evolveCmd, renderCmd, randomCmd, playCmd, inspectCmd, scriptCmd, libraryCmd, historyCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig layers defaults, preset, config file and explicitly set flags, in
// that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" && !config.ApplyPreset(cfg, preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if preset != "" {
			config.ApplyPreset(cfg, preset)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("data") {
		cfg.Store.Path = filepath.Join(dataDir, filepath.Base(cfg.Store.Path))
		cfg.Log.File = filepath.Join(dataDir, filepath.Base(cfg.Log.File))
	}
	if flags.Changed("size") {
		cfg.Render.Width, cfg.Render.Height = size, size
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.Store.Kind == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
			return nil, err
		}
	}
	st, err := storage.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func decodeGenome(code string, r *render.Renderer) (plasma.Genome, error) {
	g, err := plasma.Decode(code)
	if err != nil {
		return plasma.Genome{}, err
	}
	if err := r.Validate(g); err != nil {
		return plasma.Genome{}, err
	}
	return g, nil
}

func renderGenome(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := render.New(cfg.RenderOptions())
	g, err := decodeGenome(args[0], r)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	fmt.Printf("rendering %d frames at %dx%d...\n", r.LoopFrames(g), cfg.Render.Width, cfg.Render.Height)
	start := time.Now()
	a, err := r.Animate(ctx, g, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return err
	}
	loc, n, err := export.Save(ctx, outPath, region, a)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("wrote %s (%s)\n", loc, humanize.Bytes(uint64(n)))
	return nil
}

func randomGenomes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", count)
	}
	engine, err := evolve.New(cfg.EvolveParams())
	if err != nil {
		return err
	}
	pop, err := engine.Seed(count, cfg.TermRange(), rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return err
	}
	for _, g := range pop.Genomes {
		code, err := plasma.Encode(g)
		if err != nil {
			return err
		}
		fmt.Println(code)
	}
	return nil
}

func playGenome(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := render.New(cfg.RenderOptions())
	g, err := decodeGenome(args[0], r)
	if err != nil {
		return err
	}
	a, err := r.Animate(cmd.Context(), g, cfg.Render.Width, cfg.Render.Height)
	if err != nil {
		return err
	}
	title := "plasmagen " + plasma.Fingerprint(g).String()[:8]
	return viewer.Play(a, title, scale)
}

func inspectGenome(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r := render.New(cfg.RenderOptions())
	g, err := plasma.Decode(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("id: %s\n", plasma.Fingerprint(g))
	fmt.Printf("loop length: %d steps\n", g.LoopLength())
	fmt.Printf("frames: %d (%d per step)\n", r.LoopFrames(g), cfg.Render.FramesPerStep)
	fmt.Printf("duration: %v\n", time.Duration(r.LoopFrames(g)*r.Delay())*10*time.Millisecond)
	if err := r.Validate(g); err != nil {
		fmt.Printf("renderable: no (%v)\n", err)
	} else {
		fmt.Println("renderable: yes")
	}

	fmt.Println("\nterms:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tAMP\tKX\tKY\tPHASE\tTEMPORAL")
	for i, t := range g.Terms {
		fmt.Fprintf(w, "%d\t%.3f\t%d\t%d\t%.3f\t%d\n", i, t.Amplitude, t.KX, t.KY, t.Phase, t.Temporal)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncolours: %d stops, %d cycles\n", len(g.Colors.Stops), g.Colors.Cycles)

	if g.LoopLength() > cfg.Render.FrameCap {
		return nil
	}
	field := plasma.NewField(g, cfg.Render.FramesPerStep)
	fmt.Printf("seam delta: %.3g\n\n", analysis.SeamDelta(field, 64, 64))

	bins := analysis.Spectrum(field, sampleX, sampleY)
	fmt.Println(asciigraph.Plot(bins,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("temporal spectrum at (%.2f, %.2f), dominant bin %d", sampleX, sampleY, analysis.DominantFrequency(bins))),
	))
	return nil
}

func listLibrary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	entries, err := st.Library(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("library is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSESSION\tGEN\tRATING\tSAVED\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			short(e.ID),
			short(e.Session),
			e.Generation,
			e.Rating,
			humanize.Time(e.SavedAt),
			e.Path,
		)
	}
	return w.Flush()
}

func plotHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("no sessions found")
			return nil
		}
		id = sessions[len(sessions)-1].ID
	}

	gens, err := st.Generations(ctx, id)
	if err != nil {
		return err
	}
	if len(gens) == 0 {
		return fmt.Errorf("no generations recorded for session %s", id)
	}

	fmt.Printf("session: %s\n", id)
	fmt.Printf("generations: %d\n\n", len(gens))

	series := []struct {
		key     string
		caption string
	}{
		{"favorites", "favorites per generation"},
		{"keeps", "keeps per generation"},
		{"diversity", "population diversity"},
		{"mean_loop", "mean loop length"},
	}
	for _, s := range series {
		data := make([]float64, len(gens))
		for i, g := range gens {
			data[i] = g.Stats[s.key]
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption(s.caption),
		))
		fmt.Println()
	}
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
