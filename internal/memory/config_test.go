package memory

import (
	"math"
	"runtime/debug"
	"testing"
)

// restoreMemoryLimit puts back the process-wide limit after a test changes it.
func restoreMemoryLimit(t *testing.T) {
	t.Helper()
	old := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(old) })
}

func TestConfigureFromEnv_NoEnvironmentVariables(t *testing.T) {
	restoreMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "")
	t.Setenv("MEMORY_LIMIT", "")
	t.Setenv("MEMORY_RATIO", "")

	result := ConfigureFromEnv()

	if result.Configured {
		t.Error("Expected Configured to be false when no env vars set")
	}
	if result.Source != sourceNone {
		t.Errorf("Expected Source to be %q, got %q", sourceNone, result.Source)
	}
	if result.ContainerLimit != 0 || result.GoMemLimit != 0 || result.Ratio != 0 {
		t.Errorf("Expected zero limits, got %+v", result)
	}
}

func TestConfigureFromEnv_GOMEMLIMITTakesPrecedence(t *testing.T) {
	restoreMemoryLimit(t)
	t.Setenv("GOMEMLIMIT", "500MiB")
	t.Setenv("MEMORY_LIMIT", "1073741824")

	// GOMEMLIMIT is only read at process start, so simulate its effect
	debug.SetMemoryLimit(500 * 1024 * 1024)

	result := ConfigureFromEnv()

	if !result.Configured {
		t.Fatal("Expected Configured to be true")
	}
	if result.Source != sourceGOMEMLIMIT {
		t.Errorf("Expected Source %q, got %q", sourceGOMEMLIMIT, result.Source)
	}
	if result.GoMemLimit != 500*1024*1024 {
		t.Errorf("Expected GoMemLimit 500MiB, got %d", result.GoMemLimit)
	}
	if result.ContainerLimit != 0 {
		t.Errorf("MEMORY_LIMIT should be ignored, got ContainerLimit %d", result.ContainerLimit)
	}
}

func TestConfigureFromEnv_MemoryLimit(t *testing.T) {
	tests := []struct {
		name          string
		limit         string
		ratio         string
		wantContainer int64
		wantRatio     float64
	}{
		{"plain bytes default ratio", "1073741824", "", 1 << 30, DefaultMemoryRatio},
		{"humanized limit", "2GiB", "", 2 << 30, DefaultMemoryRatio},
		{"custom ratio", "1073741824", "0.5", 1 << 30, 0.5},
		{"ratio of one", "1073741824", "1", 1 << 30, 1.0},
		{"ratio out of range", "1073741824", "1.5", 1 << 30, DefaultMemoryRatio},
		{"zero ratio", "1073741824", "0", 1 << 30, DefaultMemoryRatio},
		{"unparseable ratio", "1073741824", "half", 1 << 30, DefaultMemoryRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			result := ConfigureFromEnv()

			if !result.Configured || result.Source != sourceMemoryLimit {
				t.Fatalf("Expected MEMORY_LIMIT configuration, got %+v", result)
			}
			if result.ContainerLimit != tt.wantContainer {
				t.Errorf("ContainerLimit = %d, want %d", result.ContainerLimit, tt.wantContainer)
			}
			if result.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", result.Ratio, tt.wantRatio)
			}
			want := int64(float64(tt.wantContainer) * tt.wantRatio)
			if result.GoMemLimit != want {
				t.Errorf("GoMemLimit = %d, want %d", result.GoMemLimit, want)
			}
			if got := debug.SetMemoryLimit(-1); got != want {
				t.Errorf("runtime memory limit = %d, want %d", got, want)
			}
		})
	}
}

func TestConfigureFromEnv_InvalidMemoryLimit(t *testing.T) {
	for _, limit := range []string{"lots", "0", "-5"} {
		t.Run(limit, func(t *testing.T) {
			restoreMemoryLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", limit)

			before := debug.SetMemoryLimit(-1)
			result := ConfigureFromEnv()

			if result.Configured || result.Source != sourceNone {
				t.Errorf("Expected no configuration for %q, got %+v", limit, result)
			}
			if got := debug.SetMemoryLimit(-1); got != before {
				t.Errorf("runtime memory limit changed to %d", got)
			}
		})
	}
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"512MiB", 512 << 20, false},
		{"1 GB", 1_000_000_000, false},
		{"0", 0, true},
		{"", 0, true},
		{"many", 0, true},
	}

	for _, tt := range tests {
		got, err := parseLimit(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseLimit(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
		}
	}

	if _, err := parseLimit("20EiB"); err == nil {
		t.Errorf("parseLimit(20EiB) expected overflow error, max is %d", int64(math.MaxInt64))
	}
}
