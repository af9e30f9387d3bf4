package stage

import "testing"

func TestStage_Number(t *testing.T) {
	tests := []struct {
		s    Stage
		want int
	}{
		{Instant, 1},
		{Enhanced, 2},
		{Intelligent, 3},
		{Stage("other"), 0},
	}
	for _, tc := range tests {
		if got := tc.s.Number(); got != tc.want {
			t.Errorf("%q.Number() = %d, want %d", tc.s, got, tc.want)
		}
	}
}

func TestDegraded_Any(t *testing.T) {
	if (Degraded{}).Any() {
		t.Error("zero value must not be degraded")
	}
	if !(Degraded{Partial: true}).Any() {
		t.Error("partial must count as degraded")
	}
}
