// Package handoff carries one fresh prediction result from the
// questionnaire to the results view.
package handoff

import (
	"sync"

	"github.com/abhisek/hemoscan/internal/api"
)

// Result is a fresh prediction together with the request that produced
// it, so the results view can build a report with patient details.
type Result struct {
	Prediction api.PredictionResult
	Request    api.PredictionRequest
}

// Slot holds at most one pending Result. The zero value is empty and
// ready to use.
type Slot struct {
	mu  sync.Mutex
	res *Result
	gen uint64 // bumped by Clear
}

// Put replaces the slot's value. The last write wins.
func (s *Slot) Put(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = &r
}

// Generation identifies the slot's current lifetime. It changes every
// time the slot is cleared.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// PutIf stores r only if the slot has not been cleared since gen was
// read. It reports whether r was stored.
func (s *Slot) PutIf(gen uint64, r Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.res = &r
	return true
}

// Take returns the pending result without consuming it. ok is false when
// nothing has been put since the process started or the slot was cleared.
func (s *Slot) Take() (r Result, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.res == nil {
		return Result{}, false
	}
	return *s.res, true
}

// Clear empties the slot and starts a new generation, so results from
// work begun before the clear are refused by PutIf.
func (s *Slot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = nil
	s.gen++
}
