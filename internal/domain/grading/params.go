package grading

// Params defines all configurable parameters for the answer heuristic.
type Params struct {
	// Tier boundaries on the concept match ratio. A ratio strictly above
	// CorrectThreshold is Correct; strictly above PartialThreshold is Partial.
	CorrectThreshold float64
	PartialThreshold float64

	// Concept extraction
	MaxConcepts      int
	MinConceptLength int

	// FuzzyThreshold is the Jaro-Winkler similarity at which two concepts are
	// considered the same word. Zero disables fuzzy matching.
	FuzzyThreshold float64

	// MinFragmentConcepts is how many content words an utterance contained in
	// the expected answer must carry to count as an exact match.
	MinFragmentConcepts int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	CorrectThreshold float64
	PartialThreshold float64
	MaxConcepts      int
	MinConceptLength int

	// FuzzyThreshold < 0 disables fuzzy matching; 0 keeps the default.
	FuzzyThreshold float64

	MinFragmentConcepts int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		CorrectThreshold: 0.6,
		PartialThreshold: 0.3,
		MaxConcepts:      5,
		MinConceptLength: 4,
		FuzzyThreshold:   0.92,

		MinFragmentConcepts: 1,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.CorrectThreshold > 0 {
		params.CorrectThreshold = config.CorrectThreshold
	}
	if config.PartialThreshold > 0 {
		params.PartialThreshold = config.PartialThreshold
	}
	if config.MaxConcepts > 0 {
		params.MaxConcepts = config.MaxConcepts
	}
	if config.MinConceptLength > 0 {
		params.MinConceptLength = config.MinConceptLength
	}
	if config.MinFragmentConcepts > 0 {
		params.MinFragmentConcepts = config.MinFragmentConcepts
	}

	switch {
	case config.FuzzyThreshold < 0:
		params.FuzzyThreshold = 0
	case config.FuzzyThreshold > 0:
		params.FuzzyThreshold = config.FuzzyThreshold
	}

	return params
}
