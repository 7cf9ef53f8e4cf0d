package validate

import "github.com/ovachev/planproof/internal/model"

// Bounded calibration adjustments applied on top of a claim's raw
// confidence. The result is always clamped into [0, 1].
const (
	bonusHighCoverage    = 0.10 // Task citation coverage >= 0.9
	penaltyLowCoverage   = 0.15 // Task citation coverage < 0.5
	penaltyHighConflict  = 0.20 // Per unresolved high-severity contradiction
	penaltyLowProvenance = 0.10 // Provenance score < 0.7
	bonusExplicit        = 0.05 // Explicit-origin claim

	highCoverageFloor   = 0.9
	lowCoverageCeiling  = 0.5
	provenanceThreshold = 0.7
)

// calibrate computes the calibrated confidence for one claim given its
// task's aggregate citation coverage, the number of unresolved
// high-severity contradictions the claim is party to, and its own
// provenance score.
func calibrate(claim model.Claim, coverage float64, highContradictions int, provenance float64) float64 {
	confidence := claim.Confidence

	if coverage >= highCoverageFloor {
		confidence += bonusHighCoverage
	} else if coverage < lowCoverageCeiling {
		confidence -= penaltyLowCoverage
	}

	confidence -= penaltyHighConflict * float64(highContradictions)

	if provenance < provenanceThreshold {
		confidence -= penaltyLowProvenance
	}

	if claim.Origin == model.OriginExplicit {
		confidence += bonusExplicit
	}

	return clamp01(confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
