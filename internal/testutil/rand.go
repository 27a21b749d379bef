package testutil

import "sync"

// ScriptedRand is a thread-safe randomness source that replays a fixed
// sequence of draws, then wraps around.
//
// Unlike rand.StdSource, ScriptedRand can be reset for test reuse.
// This lets the same selection scenario run multiple times with
// identical picks.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ScriptedRand struct {
	mu    sync.Mutex
	draws []uint64
	next  int
}

// NewScriptedRand creates a source replaying the given draws.
// Each value is reduced modulo the bound at draw time, so scripts can
// be written as plain indices.
func NewScriptedRand(draws ...uint64) *ScriptedRand {
	if len(draws) == 0 {
		draws = []uint64{0}
	}
	return &ScriptedRand{draws: draws}
}

// Below returns the next scripted value reduced into [0, n).
func (s *ScriptedRand) Below(n uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.draws[s.next%len(s.draws)]
	s.next++
	return v % n
}

// Reset rewinds the script to the beginning.
func (s *ScriptedRand) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
}

// Drawn returns how many draws have been taken since the last Reset.
func (s *ScriptedRand) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
