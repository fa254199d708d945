package testutil

import "sync"

// FixedSource replays scripted random values.
//
// Each method cycles through its own list, wrapping at the end. An empty
// list yields zero values. Intn reduces the scripted value modulo n.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedSource struct {
	mu sync.Mutex

	Floats  []float64
	Ints    []int
	Uint32s []uint32

	fi, ii, ui int
}

// Float64 returns the next scripted float.
func (s *FixedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[s.fi%len(s.Floats)]
	s.fi++
	return v
}

// Intn returns the next scripted int modulo n.
func (s *FixedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[s.ii%len(s.Ints)]
	s.ii++
	if v < 0 {
		v = -v
	}
	return v % n
}

// Uint32 returns the next scripted uint32.
func (s *FixedSource) Uint32() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Uint32s) == 0 {
		return 0
	}
	v := s.Uint32s[s.ui%len(s.Uint32s)]
	s.ui++
	return v
}

// Reset rewinds every list to its start.
func (s *FixedSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fi, s.ii, s.ui = 0, 0, 0
}
