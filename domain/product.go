package domain

import "iter"

// Product returns the Cartesian product of the interior values of ds.
// Tuples are yielded in lexicographic order with the last Domain varying
// fastest. With no Domains, a single empty tuple is yielded. Each range
// over the returned sequence restarts the enumeration.
//
// The yielded tuple is freshly allocated on every iteration and may be
// retained by the caller.
func Product(ds ...*Domain) iter.Seq[[]Value] {
	return func(yield func([]Value) bool) {
		for _, d := range ds {
			if d.Len() == 0 {
				return
			}
		}

		idx := make([]int, len(ds))
		for {
			tuple := make([]Value, len(ds))
			for i, d := range ds {
				tuple[i] = d.vals[idx[i]].Clone()
			}
			if !yield(tuple) {
				return
			}

			// Odometer increment, last position fastest
			i := len(ds) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < ds[i].Len() {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// Count returns the number of tuples Product(ds...) yields
func Count(ds ...*Domain) int {
	n := 1
	for _, d := range ds {
		n *= d.Len()
	}
	return n
}
