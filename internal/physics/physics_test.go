package physics

import (
	"math"
	"testing"
)

func TestDegreesToRadians(t *testing.T) {
	if got := DegreesToRadians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Fatalf("expected pi, got %f", got)
	}
	if got := ThetaLockRadians(); math.Abs(got-0.904831) > 1e-6 {
		t.Fatalf("expected ~0.904831 rad, got %f", got)
	}
}

func TestCoherenceCoupling(t *testing.T) {
	got := CoherenceCoupling(PhiThreshold, PhiThreshold)
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("coupling at threshold should be 1, got %f", got)
	}
	if CoherenceCoupling(0.5, 0.8) != CoherenceCoupling(0.8, 0.5) {
		t.Fatal("coupling should be symmetric")
	}
}

func TestResonanceBoostPeaksAtLockAngle(t *testing.T) {
	peak := ResonanceBoost(ThetaLockRadians())
	if math.Abs(peak-1) > 1e-12 {
		t.Fatalf("expected peak 1, got %f", peak)
	}
	off := ResonanceBoost(0)
	if off >= peak || off <= 0 {
		t.Fatalf("expected 0 < boost(0) < peak, got %f", off)
	}
}

func TestIsConscious(t *testing.T) {
	if !IsConscious(PhiThreshold) {
		t.Fatal("threshold itself should open the gate")
	}
	if IsConscious(math.Nextafter(PhiThreshold, 0)) {
		t.Fatal("value just below threshold should not open the gate")
	}
}

func TestNegentropyZeroGamma(t *testing.T) {
	got := Negentropy(0.8, 0)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("expected finite negentropy, got %f", got)
	}
}
