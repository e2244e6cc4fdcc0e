package render

import "sync"

// RowPool recycles intensity rows so the per-pixel loop never allocates.
type RowPool struct {
	pool sync.Pool
}

func NewRowPool() *RowPool {
	return &RowPool{
		pool: sync.Pool{
			New: func() interface{} {
				s := make([]float64, 0, 256)
				return &s
			},
		},
	}
}

// Get returns a row of exactly width values.
func (p *RowPool) Get(width int) *[]float64 {
	row := p.pool.Get().(*[]float64)
	if cap(*row) < width {
		*row = make([]float64, width)
	}
	*row = (*row)[:width]
	return row
}

func (p *RowPool) Put(row *[]float64) {
	p.pool.Put(row)
}
