package traverse

// Config bounds a traversal.
type Config struct {
	// MaxDepth stops a branch once its depth exceeds this value. It applies
	// even when DetectCycles is off.
	MaxDepth int `json:"max_depth" yaml:"max_depth" validate:"gte=1"`
	// MaxVisits caps the total number of visit calls in one traversal.
	// Zero disables the cap.
	MaxVisits int `json:"max_visits" yaml:"max_visits" validate:"gte=0"`
	// DetectCycles tracks the active path and stops a branch that re-enters it.
	DetectCycles bool `json:"detect_cycles" yaml:"detect_cycles"`
	// RaiseOnCycle turns a detected cycle into a *CycleError that ends the traversal.
	RaiseOnCycle bool `json:"raise_on_cycle" yaml:"raise_on_cycle"`
	// LogWarnings emits a warning whenever a branch is truncated.
	LogWarnings bool `json:"log_warnings" yaml:"log_warnings"`
}

// DefaultConfig returns the configuration used when none is provided.
func DefaultConfig() Config {
	return Config{
		MaxDepth:     50,
		MaxVisits:    100_000,
		DetectCycles: true,
		RaiseOnCycle: false,
		LogWarnings:  true,
	}
}
