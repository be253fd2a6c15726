package hpolog

// StateSource supplies the search state summarized by Printer.SetState.
type StateSource interface {
	// LabeledConfigs returns the configurations with observed outcomes.
	LabeledConfigs() []Configuration
	// PendingConfigs returns the configurations still being evaluated.
	PendingConfigs() []Configuration
}

// CandidateEvaluation is an evaluated configuration and its metric values.
type CandidateEvaluation struct {
	Candidate Configuration
	Metrics   map[string]float64
}

// JobState is a snapshot of a tuning job: evaluated and pending candidates.
// Candidates may be extended configurations.
type JobState struct {
	Evaluations []CandidateEvaluation
	Pending     []Configuration
}

// LabeledConfigs returns the evaluated candidates in order.
func (s JobState) LabeledConfigs() []Configuration {
	out := make([]Configuration, len(s.Evaluations))
	for i, e := range s.Evaluations {
		out[i] = e.Candidate
	}
	return out
}

// PendingConfigs returns the pending candidates in order.
func (s JobState) PendingConfigs() []Configuration {
	return s.Pending
}

var _ StateSource = JobState{}
