package handoff

import (
	"testing"

	"github.com/abhisek/hemoscan/internal/api"
)

func result(level api.RiskLevel) Result {
	return Result{Prediction: api.PredictionResult{RiskLevel: level}}
}

func TestTake_Empty(t *testing.T) {
	var s Slot
	if _, ok := s.Take(); ok {
		t.Fatal("empty slot reported a value")
	}
}

func TestTake_NotConsuming(t *testing.T) {
	var s Slot
	s.Put(result(api.RiskHigh))

	for i := range 2 {
		r, ok := s.Take()
		if !ok {
			t.Fatalf("take %d: no value", i)
		}
		if r.Prediction.RiskLevel != api.RiskHigh {
			t.Errorf("take %d: risk level = %s", i, r.Prediction.RiskLevel)
		}
	}
}

func TestPut_LastWriteWins(t *testing.T) {
	var s Slot
	s.Put(result(api.RiskLow))
	s.Put(result(api.RiskModerate))

	r, _ := s.Take()
	if r.Prediction.RiskLevel != api.RiskModerate {
		t.Errorf("risk level = %s, want Moderate", r.Prediction.RiskLevel)
	}
}

func TestClear(t *testing.T) {
	var s Slot
	s.Put(result(api.RiskLow))
	s.Clear()
	if _, ok := s.Take(); ok {
		t.Fatal("cleared slot reported a value")
	}
}

func TestPutIf_RefusedAfterClear(t *testing.T) {
	var s Slot
	gen := s.Generation()

	s.Clear()
	if s.PutIf(gen, result(api.RiskHigh)) {
		t.Fatal("PutIf stored a result from before Clear")
	}
	if _, ok := s.Take(); ok {
		t.Error("slot holds a value after a refused PutIf")
	}

	if !s.PutIf(s.Generation(), result(api.RiskLow)) {
		t.Fatal("PutIf with the current generation was refused")
	}
	if r, _ := s.Take(); r.Prediction.RiskLevel != api.RiskLow {
		t.Errorf("risk level = %s, want Low", r.Prediction.RiskLevel)
	}
}
