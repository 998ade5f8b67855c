package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "Zero multiplier",
			multiplier: 0,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Negative multiplier",
			multiplier: -1,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)

			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want between %d and %d",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // -1 means fall back to the calculation
	}{
		{"Valid override", "8", 0, 8},
		{"Override with limit", "20", 10, 10},
		{"Override below limit", "5", 10, 5},
		{"Invalid override (non-numeric)", "invalid", 0, -1},
		{"Invalid override (zero)", "0", 0, -1},
		{"Invalid override (negative)", "-5", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			got := Count(1.0, tt.limit)

			if tt.expected == -1 {
				if got < 1 {
					t.Errorf("Count with invalid override should return at least 1, got %d", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("Count(1.0, %d) with %s=%s = %d, want %d", tt.limit, EnvOverride, tt.envValue, got, tt.expected)
			}
		})
	}
}

func TestForIO(t *testing.T) {
	t.Setenv(EnvOverride, "")

	for _, limit := range []int{0, 1, 8} {
		got := ForIO(limit)
		if got < 1 {
			t.Errorf("ForIO(%d) = %d, want >= 1", limit, got)
		}
		if limit > 0 && got > limit {
			t.Errorf("ForIO(%d) = %d, should not exceed limit", limit, got)
		}
	}
}

func TestForScan(t *testing.T) {
	t.Setenv(EnvOverride, "")

	if got := ForScan(3); got != 3 {
		t.Errorf("ForScan(3) = %d, want 3", got)
	}
	if got := ForScan(64); got != 64 {
		t.Errorf("ForScan(64) = %d, explicit configuration should not be capped", got)
	}

	got := ForScan(0)
	want := runtime.GOMAXPROCS(0) * 2
	if want > DefaultScanWorkers {
		want = DefaultScanWorkers
	}
	if got != want {
		t.Errorf("ForScan(0) = %d, want %d", got, want)
	}
}

func TestForScanEnvOverride(t *testing.T) {
	t.Setenv(EnvOverride, "2")

	if got := ForScan(0); got != 2 {
		t.Errorf("ForScan(0) with override = %d, want 2", got)
	}
}

func BenchmarkCount(b *testing.B) {
	b.Setenv(EnvOverride, "")

	for i := 0; i < b.N; i++ {
		_ = Count(2.0, 10)
	}
}
