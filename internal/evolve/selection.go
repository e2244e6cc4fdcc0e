package evolve

import "math/rand"

type parent struct {
	index  int
	weight float64
}

// selection partitions a rated population into survivors and parent pools.
type selection struct {
	favorites []int
	keeps     []int
	unrated   []int
	parents   []parent
}

func newSelection(ratings []Rating, p Params) *selection {
	s := &selection{}
	for i, r := range ratings {
		switch r {
		case Favorite:
			s.favorites = append(s.favorites, i)
			s.parents = append(s.parents, parent{i, p.FavoriteWeight})
		case Keep:
			s.keeps = append(s.keeps, i)
			s.parents = append(s.parents, parent{i, p.KeepWeight})
		case Unrated:
			s.unrated = append(s.unrated, i)
		}
	}
	if len(s.parents) == 0 {
		// Nobody rated favourably: every genome is a pseudo-parent so the
		// search never stalls.
		for i := range ratings {
			s.parents = append(s.parents, parent{i, 1})
		}
	}
	return s
}

// survivors lists the indices copied into the next generation. At least one
// slot is left for offspring when size > 1.
func (s *selection) survivors(size, elitism int) []int {
	limit := size
	if size > 1 {
		limit = size - 1
	}
	out := make([]int, 0, limit)
	for _, i := range s.favorites {
		if len(out) == limit {
			return out
		}
		out = append(out, i)
	}
	for _, i := range s.keeps {
		if len(out) >= min(elitism, limit) {
			break
		}
		out = append(out, i)
	}
	return out
}

// pick draws a parent index by weight, never returning exclude.
func (s *selection) pick(rng *rand.Rand, exclude int) int {
	var total float64
	for _, p := range s.parents {
		if p.index != exclude {
			total += p.weight
		}
	}
	r := rng.Float64() * total
	last := -1
	for _, p := range s.parents {
		if p.index == exclude {
			continue
		}
		last = p.index
		if r < p.weight {
			return p.index
		}
		r -= p.weight
	}
	return last
}
