package evolve

import "github.com/san-kum/plasmagen/internal/plasma"

// Population is one generation of genomes. Advance never mutates its input;
// it returns a new Population.
type Population struct {
	Generation int
	Genomes    []plasma.Genome
}

func (p Population) Len() int { return len(p.Genomes) }

func (p Population) Clone() Population {
	out := Population{Generation: p.Generation, Genomes: make([]plasma.Genome, len(p.Genomes))}
	for i, g := range p.Genomes {
		out.Genomes[i] = g.Clone()
	}
	return out
}

func (p Population) Equal(o Population) bool {
	if p.Generation != o.Generation || len(p.Genomes) != len(o.Genomes) {
		return false
	}
	for i := range p.Genomes {
		if !p.Genomes[i].Equal(o.Genomes[i]) {
			return false
		}
	}
	return true
}

// Unrated returns a ratings slice sized for p with every member Unrated.
func (p Population) Unrated() []Rating {
	return make([]Rating, len(p.Genomes))
}
