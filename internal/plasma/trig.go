package plasma

import (
	"math"
	"sync"
)

// cycleTable holds sin/cos sampled at n equally spaced points of one turn.
// Lookups use integer indices only, so a given (frequency, frame) pair always maps
// to the same stored value.
type cycleTable struct {
	sin []float64
	cos []float64
	n   int
}

var cycleTables sync.Map // int -> *cycleTable

func newCycleTable(n int) *cycleTable {
	t := &cycleTable{
		sin: make([]float64, n),
		cos: make([]float64, n),
		n:   n,
	}
	for i := 0; i < n; i++ {
		t.sin[i], t.cos[i] = math.Sincos(2 * math.Pi * float64(i) / float64(n))
	}
	return t
}

// cycleTableFor returns a shared table for n points.
func cycleTableFor(n int) *cycleTable {
	if v, ok := cycleTables.Load(n); ok {
		return v.(*cycleTable)
	}
	v, _ := cycleTables.LoadOrStore(n, newCycleTable(n))
	return v.(*cycleTable)
}

// at returns sin and cos of 2π·k·frame/n.
func (t *cycleTable) at(k, frame int) (float64, float64) {
	i := (mod(k, t.n) * mod(frame, t.n)) % t.n
	return t.sin[i], t.cos[i]
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
