package engine

// Params are the tunable constants of the engine. The defaults reproduce the
// hand-tuned values the detectors and the scorer were calibrated with; the
// blend and threshold values are deliberately configuration, not law.
type Params struct {
	// OverrideAlgoWeight and OverrideManualWeight blend the computed overall
	// score with a manual 1-10 rating (rescaled x10). They should sum to 1.
	OverrideAlgoWeight   float64
	OverrideManualWeight float64

	// FraudThresholdTop5 applies to ranks 1-5, FraudThreshold to ranks 6-12.
	// Top seeds get stricter scrutiny.
	FraudThresholdTop5 int
	FraudThreshold     int

	SleeperThreshold int
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		OverrideAlgoWeight:   0.4,
		OverrideManualWeight: 0.6,
		FraudThresholdTop5:   30,
		FraudThreshold:       35,
		SleeperThreshold:     40,
	}
}
