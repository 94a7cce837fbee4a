package spaced_repetition

import "github.com/example/vocabtrainer/pkg/models"

// Phase describes where a record is in its learning cycle
type Phase int

const (
	PhaseNew Phase = iota
	PhaseLearning
	PhaseReview
	PhaseRelearning
)

var phaseNames = [...]string{
	PhaseNew:        "new",
	PhaseLearning:   "learning",
	PhaseReview:     "review",
	PhaseRelearning: "relearning",
}

func (p Phase) String() string {
	if p < PhaseNew || p > PhaseRelearning {
		return "unknown"
	}
	return phaseNames[p]
}

// PhaseOf classifies a record. A nil record is a word that was never reviewed.
func PhaseOf(record *models.MemoryRecord) Phase {
	switch {
	case record == nil || record.LastReviewedAt == nil:
		return PhaseNew
	case record.Repetitions == 0:
		// Reviewed before, last answer was a failure
		return PhaseRelearning
	case record.Repetitions < 2:
		return PhaseLearning
	default:
		return PhaseReview
	}
}
