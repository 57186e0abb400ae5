package oddsmath

import (
	"math"
	"testing"
)

func TestAmericanToProb(t *testing.T) {
	tests := []struct {
		name    string
		price   int
		want    float64
		wantErr bool
	}{
		{name: "favorite", price: -150, want: 150.0 / 250.0},
		{name: "underdog", price: 130, want: 100.0 / 230.0},
		{name: "zero is invalid", price: 0, wantErr: true},
		{name: "below threshold is invalid", price: 50, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToProb(tt.price)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AmericanToProb(%d) error = %v, wantErr %v", tt.price, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AmericanToProb(%d) = %f, want %f", tt.price, got, tt.want)
			}
		})
	}
}

func TestProbToAmerican_InvalidInput(t *testing.T) {
	for _, p := range []float64{0, -0.1, 1, 1.5} {
		if _, err := ProbToAmerican(p); err == nil {
			t.Errorf("ProbToAmerican(%f) expected error", p)
		}
	}
}

func TestRoundTrip_AmericanToProbToAmerican(t *testing.T) {
	for p := 100; p <= 10000; p += 17 {
		for _, sign := range []int{1, -1} {
			price := sign * p
			// +100 and -100 both imply probability 0.5, which converts
			// back to -100; the positive form cannot round-trip.
			if price == 100 {
				continue
			}
			prob, err := AmericanToProb(price)
			if err != nil {
				t.Fatalf("AmericanToProb(%d): %v", price, err)
			}
			back, err := ProbToAmerican(prob)
			if err != nil {
				t.Fatalf("ProbToAmerican(%f): %v", prob, err)
			}
			if back != price {
				t.Errorf("round trip broke: price=%d prob=%f back=%d", price, prob, back)
			}
		}
	}
}

func TestRoundTrip_ProbToAmericanToProb(t *testing.T) {
	// American prices are integers, so the round trip quantizes: a half-unit
	// price rounding moves the probability by at most 0.5 * 100/(price+100)^2,
	// which peaks at 0.00125 as |price| approaches 100.
	const maxDrift = 0.00125 + 1e-9
	for p := 0.01; p < 1.0; p += 0.01 {
		price, err := ProbToAmerican(p)
		if err != nil {
			t.Fatalf("ProbToAmerican(%f): %v", p, err)
		}
		back, err := AmericanToProb(price)
		if err != nil {
			t.Fatalf("AmericanToProb(%d): %v", price, err)
		}
		if math.Abs(back-p) > maxDrift {
			t.Errorf("round trip drift too large: p=%f price=%d back=%f", p, price, back)
		}
	}
}

func TestTwoLegArbStakes_EqualPayout(t *testing.T) {
	// Basic h2h arb seed scenario: Cowboys +130 (FanDuel) vs Eagles -120 (DraftKings).
	// The unclamped split of 100 is ~44.35/55.65, so the Eagles leg exceeds
	// MaxSingleLeg and both legs scale down until it equals 50.
	pA, _ := AmericanToProb(130)
	pB, _ := AmericanToProb(-120)

	stakeA, stakeB, err := TwoLegArbStakes(100.0, pA, pB)
	if err != nil {
		t.Fatalf("TwoLegArbStakes: %v", err)
	}

	decA, _ := AmericanToDecimal(130)
	decB, _ := AmericanToDecimal(-120)

	payoutA := stakeA * decA
	payoutB := stakeB * decB
	if math.Abs(payoutA-payoutB) > 0.01 {
		t.Errorf("payouts differ: A=%f B=%f", payoutA, payoutB)
	}
	if math.Abs(math.Max(stakeA, stakeB)-MaxSingleLeg) > 0.01 {
		t.Errorf("expected the larger leg clamped to %f, got A=%f B=%f", MaxSingleLeg, stakeA, stakeB)
	}
}

func TestTwoLegArbStakes_ClampsToMaxSingleLeg(t *testing.T) {
	// Lopsided probabilities push one leg above MaxSingleLeg before scaling.
	stakeA, stakeB, err := TwoLegArbStakes(MaxArbTotal, 0.9, 0.05)
	if err != nil {
		t.Fatalf("TwoLegArbStakes: %v", err)
	}

	largest := stakeA
	if stakeB > largest {
		largest = stakeB
	}
	if math.Abs(largest-MaxSingleLeg) > 0.01 {
		t.Errorf("expected larger leg clamped to %f, got %f", MaxSingleLeg, largest)
	}
}

func TestTwoLegArbStakes_InvalidInput(t *testing.T) {
	if _, _, err := TwoLegArbStakes(100.0, 0, 0); err == nil {
		t.Error("expected InvalidInput when pA+pB <= 0")
	}
}
