package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_DefaultValues(t *testing.T) {
	strategy := NewExponentialBackoff(50)

	if strategy.InitialDelay() != 2*time.Second {
		t.Errorf("Expected InitialDelay=2s, got %v", strategy.InitialDelay())
	}
	if strategy.MaxDelay() != 10*time.Minute {
		t.Errorf("Expected MaxDelay=10m, got %v", strategy.MaxDelay())
	}
	if strategy.Multiplier() != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %v", strategy.Multiplier())
	}
	if strategy.Jitter() != 0.0 {
		t.Errorf("Expected Jitter=0, got %v", strategy.Jitter())
	}
	if strategy.MaxAttempts() != 50 {
		t.Errorf("Expected MaxAttempts=50, got %v", strategy.MaxAttempts())
	}
}

// The documented schedule: the wait before retry round n (n >= 2) is
// min(2^(n-1), 600) seconds, and NextDelay is indexed with n-2.
func TestExponentialBackoff_RoundSchedule(t *testing.T) {
	strategy := NewExponentialBackoff(50)

	tests := []struct {
		round         int
		expectedDelay time.Duration
	}{
		{round: 2, expectedDelay: 2 * time.Second},    // 2^1
		{round: 3, expectedDelay: 4 * time.Second},    // 2^2
		{round: 4, expectedDelay: 8 * time.Second},    // 2^3
		{round: 10, expectedDelay: 512 * time.Second}, // 2^9
		{round: 11, expectedDelay: 600 * time.Second}, // 2^10 capped at 10m
		{round: 12, expectedDelay: 600 * time.Second}, // stays capped
	}

	for _, tt := range tests {
		delay := strategy.NextDelay(tt.round - 2)
		if delay != tt.expectedDelay {
			t.Errorf("NextDelay for round %d = %v, want %v", tt.round, delay, tt.expectedDelay)
		}
	}
}

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	strategy := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
	)

	tests := []struct {
		attempt       int
		expectedDelay time.Duration
	}{
		{attempt: 0, expectedDelay: 100 * time.Millisecond},  // 100 * 2^0
		{attempt: 1, expectedDelay: 200 * time.Millisecond},  // 100 * 2^1
		{attempt: 2, expectedDelay: 400 * time.Millisecond},  // 100 * 2^2
		{attempt: 3, expectedDelay: 800 * time.Millisecond},  // 100 * 2^3
		{attempt: 4, expectedDelay: 1600 * time.Millisecond}, // 100 * 2^4
	}

	for _, tt := range tests {
		delay := strategy.NextDelay(tt.attempt)
		if delay != tt.expectedDelay {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, delay, tt.expectedDelay)
		}
	}
}

func TestExponentialBackoff_NextDelay_MaxDelayCap(t *testing.T) {
	strategy := NewExponentialBackoff(20,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithMaxDelay(1*time.Second),
	)

	// Attempt 10: 100ms * 2^10 = 102,400ms; capped at 1s.
	delay := strategy.NextDelay(10)
	if delay != 1*time.Second {
		t.Errorf("NextDelay(10) = %v, want %v (should be capped at MaxDelay)", delay, 1*time.Second)
	}
}

func TestExponentialBackoff_NextDelay_WithJitter(t *testing.T) {
	tests := []struct {
		name          string
		jitterValue   float64
		expectedDelay time.Duration
	}{
		// delay * (1 + 0.1 * (v - 0.5) * 2)
		{name: "low", jitterValue: 0.0, expectedDelay: 90 * time.Millisecond},
		{name: "mid", jitterValue: 0.5, expectedDelay: 100 * time.Millisecond},
		{name: "high", jitterValue: 1.0, expectedDelay: 110 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewExponentialBackoff(3,
				WithInitialDelay(100*time.Millisecond),
				WithMultiplier(2.0),
				WithJitter(0.1),
				WithJitterFunc(func() float64 { return tt.jitterValue }),
			)

			delay := strategy.NextDelay(0)
			if delay != tt.expectedDelay {
				t.Errorf("NextDelay(0) with jitter %v = %v, want %v", tt.jitterValue, delay, tt.expectedDelay)
			}
		})
	}
}

func TestExponentialBackoff_MaxAttemptsPassthrough(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 50} {
		strategy := NewExponentialBackoff(n)
		if strategy.MaxAttempts() != n {
			t.Errorf("MaxAttempts() = %d, want %d", strategy.MaxAttempts(), n)
		}
	}
}
