package services

import "testing"

func TestComputeBreachPenalty(t *testing.T) {
	// 10000 monthly, 0.5% rate, severity 3, 10% cap:
	// calculated 150, cap 1000, final 150.
	b := ComputeBreachPenalty(10000, 0.5, 3, 10)
	if b.Calculated != 150 {
		t.Errorf("calculated = %v, want 150", b.Calculated)
	}
	if b.CapAmount != 1000 {
		t.Errorf("cap = %v, want 1000", b.CapAmount)
	}
	if b.Final != 150 {
		t.Errorf("final = %v, want 150", b.Final)
	}
}

func TestComputeBreachPenaltyCapApplies(t *testing.T) {
	// Severity high enough to blow past the cap.
	b := ComputeBreachPenalty(10000, 0.5, 50, 10)
	if b.Calculated != 2500 {
		t.Errorf("calculated = %v, want 2500", b.Calculated)
	}
	if b.Final != 1000 {
		t.Errorf("final = %v, want cap 1000", b.Final)
	}
}

func TestComputeBreachPenaltyNegativeInputs(t *testing.T) {
	b := ComputeBreachPenalty(-500, 0.5, -3, 10)
	if b.Calculated != 0 || b.Final != 0 {
		t.Errorf("negative inputs should zero out: %+v", b)
	}
}
