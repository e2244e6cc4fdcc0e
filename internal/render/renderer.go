// Package render turns plasma genomes into looping frame sequences.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"iter"
	"math"
	"runtime"
	"time"

	"github.com/san-kum/plasmagen/internal/colormap"
	"github.com/san-kum/plasmagen/internal/plasma"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFrameCap      = 60
	DefaultFramesPerStep = 8
	DefaultFPS           = 16.0
)

// Options configures a Renderer. Zero values take the defaults above.
type Options struct {
	FrameCap      int
	FramesPerStep int
	PaletteSize   int
	Dither        bool
	FPS           float64
	Workers       int
}

// Renderer is safe for concurrent use.
type Renderer struct {
	opts Options
	rows *RowPool
}

// Animation is one complete loop of a genome at a fixed resolution.
type Animation struct {
	Genome  plasma.Genome
	Width   int
	Height  int
	Frames  []*image.Paletted
	Palette color.Palette
	// Delay is the per-frame delay in hundredths of a second.
	Delay int
}

func New(opts Options) *Renderer {
	if opts.FrameCap <= 0 {
		opts.FrameCap = DefaultFrameCap
	}
	if opts.FramesPerStep <= 0 {
		opts.FramesPerStep = DefaultFramesPerStep
	}
	if opts.PaletteSize <= 0 {
		opts.PaletteSize = colormap.DefaultPaletteSize
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Renderer{opts: opts, rows: NewRowPool()}
}

func (r *Renderer) Options() Options { return r.opts }

// Validate reports ErrInvalidGenome for genomes this renderer refuses to loop, most
// notably those whose loop length exceeds the frame cap.
func (r *Renderer) Validate(g plasma.Genome) error {
	return g.Validate(plasma.Limits{FrameCap: r.opts.FrameCap})
}

// LoopFrames is the number of frames one loop of g takes.
func (r *Renderer) LoopFrames(g plasma.Genome) int {
	return g.LoopLength() * r.opts.FramesPerStep
}

// Delay is the GIF frame delay in hundredths of a second.
func (r *Renderer) Delay() int {
	return max(2, int(math.Round(100/r.opts.FPS)))
}

func checkSize(w, h int) error {
	if w < 1 || h < 1 || w > MaxDimension || h > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	return nil
}

type frameJob struct {
	grid   *plasma.Grid
	mapper *colormap.Mapper
}

func (r *Renderer) prepare(g plasma.Genome, w, h int) (*frameJob, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}
	if err := r.Validate(g); err != nil {
		return nil, err
	}
	field := plasma.NewField(g, r.opts.FramesPerStep)
	return &frameJob{
		grid:   field.Grid(w, h),
		mapper: colormap.NewMapper(g.Colors, r.opts.PaletteSize, r.opts.Dither),
	}, nil
}

func (r *Renderer) draw(job *frameJob, frame int) *image.Paletted {
	w, h := job.grid.Width(), job.grid.Height()
	img := image.NewPaletted(image.Rect(0, 0, w, h), job.mapper.Palette())

	row := r.rows.Get(w)
	defer r.rows.Put(row)

	for y := 0; y < h; y++ {
		job.grid.Row(frame, y, *row)
		pix := img.Pix[y*img.Stride : y*img.Stride+w]
		for x, v := range *row {
			pix[x] = job.mapper.Index(v, x, y)
		}
	}
	return img
}

// Frames returns a lazy sequence of every frame in g's loop. Ranging over it again
// restarts from frame 0, and each yielded frame belongs to the caller.
func (r *Renderer) Frames(g plasma.Genome, w, h int) (iter.Seq2[int, *image.Paletted], error) {
	job, err := r.prepare(g, w, h)
	if err != nil {
		return nil, err
	}
	n := job.grid.Field().Frames()
	return func(yield func(int, *image.Paletted) bool) {
		for i := 0; i < n; i++ {
			if !yield(i, r.draw(job, i)) {
				return
			}
		}
	}, nil
}

// Animate renders every frame of g, spreading frames over the configured workers.
func (r *Renderer) Animate(ctx context.Context, g plasma.Genome, w, h int) (*Animation, error) {
	job, err := r.prepare(g, w, h)
	if err != nil {
		return nil, err
	}

	n := job.grid.Field().Frames()
	frames := make([]*image.Paletted, n)
	ParallelFor(n, r.opts.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return
			}
			frames[i] = r.draw(job, i)
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Animation{
		Genome:  g,
		Width:   w,
		Height:  h,
		Frames:  frames,
		Palette: job.mapper.Palette(),
		Delay:   r.Delay(),
	}, nil
}

// RenderPopulation renders each genome concurrently. Results are index-aligned with
// genomes; the first error cancels the remaining renders.
func (r *Renderer) RenderPopulation(ctx context.Context, genomes []plasma.Genome, w, h int) ([]*Animation, error) {
	out := make([]*Animation, len(genomes))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for i, g := range genomes {
		eg.Go(func() error {
			a, err := r.Animate(ctx, g, w, h)
			if err != nil {
				return fmt.Errorf("genome %d: %w", i, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FrameAt returns the index of the frame showing after elapsed playback time,
// wrapping around the loop.
func (a *Animation) FrameAt(elapsed time.Duration) int {
	if len(a.Frames) == 0 {
		return 0
	}
	step := time.Duration(max(a.Delay, 1)) * 10 * time.Millisecond
	i := int((elapsed / step) % time.Duration(len(a.Frames)))
	if i < 0 {
		i += len(a.Frames)
	}
	return i
}
