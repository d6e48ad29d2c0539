package ngram

// CharsPerWord is the fixed word length used to derive WPM from
// per-character times. Five is the typing-trainer convention
const CharsPerWord = 5

// DefaultDecayAlpha is the default weight of a new sample in the
// decaying average; smaller values give more historical inertia
const DefaultDecayAlpha = 0.2

// DecayAverage folds one new per-character sample into the long-lived
// decaying average: new = old*(1-alpha) + sample*alpha.
// This recurrence is the only way an aggregate value may change
func DecayAverage(old, sample, alpha float64) float64 {
	return old*(1-alpha) + sample*alpha
}

// WPMFromMsPerChar derives words-per-minute from a per-character time.
// Always derived, never stored, so the two representations cannot drift
func WPMFromMsPerChar(ms float64) float64 {
	if ms <= 0 {
		return 0
	}
	return 60000.0 / (ms * CharsPerWord)
}
