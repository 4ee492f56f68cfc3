// Package seqset tracks a set of request sequence numbers.
package seqset

type Set map[uint64]struct{}

func (s Set) Add(seq uint64) {
	s[seq] = struct{}{}
}

func (s Set) Has(seq uint64) bool {
	_, ok := s[seq]
	return ok
}

// Take reports whether seq is in the set, removing it if so.
func (s Set) Take(seq uint64) bool {
	_, ok := s[seq]
	delete(s, seq)
	return ok
}
