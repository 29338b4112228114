package risk_test

import (
	"testing"

	"github.com/opsgate/opsgate/internal/risk"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		score int
		want  risk.Tier
	}{
		{0, risk.TierLow},
		{39, risk.TierLow},
		{40, risk.TierMedium},
		{69, risk.TierMedium},
		{70, risk.TierHigh},
		{89, risk.TierHigh},
		{90, risk.TierCritical},
		{100, risk.TierCritical},
	}

	for _, tt := range tests {
		if got := risk.TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
