package session_test

import (
	"context"
	"errors"
	"io"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/plasmagen/internal/config"
	"github.com/san-kum/plasmagen/internal/evolve"
	"github.com/san-kum/plasmagen/internal/render"
	"github.com/san-kum/plasmagen/internal/session"
	"github.com/san-kum/plasmagen/internal/storage"
)

type scriptedInput struct {
	actions []session.Action
	pos     int
}

func (in *scriptedInput) Next(ctx context.Context) (session.Action, error) {
	if err := ctx.Err(); err != nil {
		return session.Action{}, err
	}
	if in.pos >= len(in.actions) {
		return session.Action{}, io.EOF
	}
	a := in.actions[in.pos]
	in.pos++
	return a, nil
}

type recordingDisplay struct {
	shown []session.Generation
	// err is returned once okShows generations have been shown.
	err     error
	okShows int
}

func (d *recordingDisplay) Show(_ context.Context, gen session.Generation) error {
	if d.err != nil && len(d.shown) >= d.okShows {
		return d.err
	}
	d.shown = append(d.shown, gen)
	return nil
}

type recordingExporter struct {
	anims []*render.Animation
	names []string
	err   error
}

func (e *recordingExporter) Export(_ context.Context, a *render.Animation, name string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	e.anims = append(e.anims, a)
	e.names = append(e.names, name)
	return "mem://" + name, nil
}

var _ = Describe("Session", func() {
	var (
		ctx      context.Context
		params   evolve.Params
		opts     render.Options
		cfg      session.Config
		display  *recordingDisplay
		exporter *recordingExporter
		store    *storage.MemoryStore
	)

	newSession := func(actions ...session.Action) *session.Session {
		engine, err := evolve.New(params)
		Expect(err).NotTo(HaveOccurred())
		s, err := session.New(cfg, engine, render.New(opts), display, &scriptedInput{actions: actions}, exporter,
			session.WithStore(store), session.WithID("test-session"))
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeEach(func() {
		ctx = context.Background()
		params = evolve.DefaultParams()
		params.MinTerms, params.MaxTerms = 2, 3
		params.TemporalMax = 3
		params.FrameCap = 12
		opts = render.Options{FrameCap: 12, FramesPerStep: 1, PaletteSize: 16, Workers: 2}
		cfg = session.Config{
			Size:          4,
			Terms:         evolve.TermRange{Min: 2, Max: 3},
			PreviewWidth:  6,
			PreviewHeight: 6,
			ExportWidth:   10,
			ExportHeight:  8,
			Seed:          42,
		}
		display = &recordingDisplay{}
		exporter = &recordingExporter{}
		store = storage.NewMemoryStore()
		Expect(store.Init(ctx)).To(Succeed())
	})

	It("keeps the favorite and exports it at full resolution", func() {
		s := newSession(
			session.Rate(0, evolve.Favorite),
			session.Advance(),
			session.Export(0),
		)
		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aborted).To(BeFalse())
		Expect(res.Generations).To(Equal(2))
		Expect(display.shown).To(HaveLen(2))

		favorite := display.shown[0].Genomes[0]
		Expect(display.shown[1].Genomes[0].Equal(favorite)).To(BeTrue())
		Expect(display.shown[1].Number).To(Equal(1))

		Expect(res.Exported).To(HaveLen(1))
		Expect(res.Exported[0].Genome.Equal(favorite)).To(BeTrue())
		Expect(res.Exported[0].Location).To(HavePrefix("mem://plasma-g001-"))

		Expect(exporter.anims).To(HaveLen(1))
		anim := exporter.anims[0]
		Expect(anim.Width).To(Equal(10))
		Expect(anim.Height).To(Equal(8))
		Expect(anim.Frames).To(HaveLen(favorite.LoopLength()))

		lib, err := store.Library(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(lib).To(HaveLen(1))
		Expect(lib[0].Code).To(Equal(res.Exported[0].Code))
		Expect(lib[0].Rating).To(Equal("unrated"))
	})

	It("renders every preview before showing a generation", func() {
		s := newSession(session.Abort())
		_, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		gen := display.shown[0]
		Expect(gen.Previews).To(HaveLen(4))
		Expect(gen.IDs).To(HaveLen(4))
		for i, p := range gen.Previews {
			Expect(p).NotTo(BeNil())
			Expect(p.Frames).To(HaveLen(gen.Genomes[i].LoopLength()))
			Expect(p.Width).To(Equal(6))
		}
	})

	It("treats unrated members as discarded", func() {
		s := newSession(
			session.Rate(1, evolve.Keep),
			session.Advance(),
			session.Abort(),
		)
		_, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		recs, err := store.Generations(ctx, "test-session")
		Expect(err).NotTo(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].Ratings).To(Equal([]string{"discard", "keep", "discard", "discard"}))
		Expect(recs[0].Stats["keeps"]).To(Equal(1.0))
		Expect(recs[0].Stats["discards"]).To(Equal(3.0))
		Expect(recs[1].Ratings).To(HaveEach("discard"))
		Expect(recs[1].Codes).To(HaveLen(4))
	})

	It("silently replaces genomes the renderer rejects", func() {
		params.MinTerms, params.MaxTerms = 2, 2
		params.TemporalMax = 2
		cfg.Terms = evolve.TermRange{Min: 2, Max: 2}
		cfg.Size = 8
		opts.FrameCap = 1

		s := newSession(session.Abort())
		_, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		gen := display.shown[0]
		Expect(gen.Replaced).To(BeNumerically(">", 0))
		for _, g := range gen.Genomes {
			Expect(g.LoopLength()).To(Equal(1))
		}
	})

	It("ends when the input is exhausted", func() {
		res, err := newSession().Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aborted).To(BeTrue())
		Expect(res.Generations).To(Equal(1))
	})

	It("ignores actions for genomes that do not exist", func() {
		s := newSession(
			session.Rate(9, evolve.Favorite),
			session.Export(-1),
			session.Abort(),
		)
		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Exported).To(BeEmpty())
		Expect(res.Aborted).To(BeTrue())
	})

	It("continues after an export when configured", func() {
		cfg.ContinueAfterExport = true
		s := newSession(
			session.Export(1),
			session.Export(2),
			session.Abort(),
		)
		res, err := s.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Exported).To(HaveLen(2))
		Expect(res.Aborted).To(BeTrue())

		lib, err := store.Library(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(lib).To(HaveLen(2))
	})

	It("is reproducible for a fixed seed", func() {
		actions := []session.Action{
			session.Rate(0, evolve.Favorite),
			session.Rate(2, evolve.Keep),
			session.Advance(),
			session.Abort(),
		}
		_, err := newSession(actions...).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		first := display.shown

		display = &recordingDisplay{}
		_, err = newSession(actions...).Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(display.shown).To(HaveLen(len(first)))
		for i := range first {
			for j := range first[i].Genomes {
				Expect(display.shown[i].Genomes[j].Equal(first[i].Genomes[j])).To(BeTrue())
			}
		}
	})

	It("ends as aborted when the display closes mid-session", func() {
		display.err, display.okShows = io.EOF, 1
		res, err := newSession(
			session.Rate(0, evolve.Favorite),
			session.Advance(),
		).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aborted).To(BeTrue())
		Expect(res.Generations).To(Equal(2))
		Expect(display.shown).To(HaveLen(1))
		Expect(exporter.anims).To(BeEmpty())
	})

	It("ends as aborted when the display is closed before the first generation", func() {
		display.err = io.EOF
		res, err := newSession(session.Advance()).Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Aborted).To(BeTrue())
		Expect(display.shown).To(BeEmpty())
	})

	It("surfaces other display failures", func() {
		display.err = errors.New("terminal gone")
		_, err := newSession().Run(ctx)
		Expect(err).To(MatchError(ContainSubstring("terminal gone")))
	})

	It("surfaces exporter failures", func() {
		exporter.err = errors.New("disk full")
		_, err := newSession(session.Export(0)).Run(ctx)
		Expect(err).To(MatchError(ContainSubstring("disk full")))
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newSession(session.Abort()).Run(cctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(display.shown).To(BeEmpty())
	})

	It("rejects an empty population before rendering anything", func() {
		cfg.Size = 0
		engine, err := evolve.New(params)
		Expect(err).NotTo(HaveOccurred())
		_, err = session.New(cfg, engine, render.New(opts), display, &scriptedInput{}, exporter)

		var ce *config.ConfigError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Field).To(Equal("population.size"))
		Expect(errors.Is(err, config.ErrInvalidConfig)).To(BeTrue())
		Expect(display.shown).To(BeEmpty())
	})
})
