package validate

import (
	"testing"

	"github.com/ovachev/planproof/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestCalibrate(t *testing.T) {
	base := model.Claim{Origin: model.OriginInferred, Confidence: 0.6}
	explicit := model.Claim{Origin: model.OriginExplicit, Confidence: 0.6}

	tests := []struct {
		name               string
		claim              model.Claim
		coverage           float64
		highContradictions int
		provenance         float64
		want               float64
	}{
		{"no adjustments", base, 0.7, 0, 0.8, 0.6},
		{"high coverage bonus", base, 0.9, 0, 0.8, 0.7},
		{"low coverage penalty", base, 0.4, 0, 0.8, 0.45},
		{"one high contradiction", base, 0.7, 1, 0.8, 0.4},
		{"two high contradictions", base, 0.7, 2, 0.8, 0.2},
		{"low provenance penalty", base, 0.7, 0, 0.6, 0.5},
		{"explicit origin bonus", explicit, 0.7, 0, 0.8, 0.65},
		{"clamped at zero", base, 0.4, 3, 0.5, 0.0},
		{"clamped at one", model.Claim{Origin: model.OriginExplicit, Confidence: 0.95}, 0.95, 0, 0.9, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calibrate(tt.claim, tt.coverage, tt.highContradictions, tt.provenance)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.5))
	assert.Equal(t, 1.0, clamp01(1.5))
	assert.Equal(t, 0.42, clamp01(0.42))
}
