package spaced_repetition

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
)

// ErrInvalidQuality is returned for quality ratings outside 0..5
var ErrInvalidQuality = errors.New("spaced_repetition: quality out of range")

// Default SM-2 constants
const (
	DefaultEaseFactor  = 2.5
	MinEaseFactor      = 1.3
	DefaultMaxInterval = 36500
)

// SM2 implements the SuperMemo-2 algorithm for spaced repetition
type SM2 struct {
	// Answers rated at or above this are successful recalls
	PassThreshold QualityResponse
	InitialEase   float64
	MinEase       float64
	// Upper bound for the interval in days, 0 means unbounded
	MaxInterval int
}

// NewSM2 creates a new SM2 instance with default settings
func NewSM2() *SM2 {
	return &SM2{
		PassThreshold: QualityCorrectDifficult,
		InitialEase:   DefaultEaseFactor,
		MinEase:       MinEaseFactor,
		MaxInterval:   DefaultMaxInterval,
	}
}

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// IsValid reports whether q lies on the 0..5 scale
func (q QualityResponse) IsValid() bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// NewRecord returns the state a record starts from before its first review
func (sm *SM2) NewRecord(userID, vocabID int64, now time.Time) *models.MemoryRecord {
	return &models.MemoryRecord{
		UserID:      userID,
		VocabID:     vocabID,
		EaseFactor:  sm.InitialEase,
		Interval:    0,
		Repetitions: 0,
		NextRepeat:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Process applies one review to the record. The record is left untouched on error.
func (sm *SM2) Process(record *models.MemoryRecord, quality QualityResponse, now time.Time) error {
	if !quality.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}

	interval, ease, repetitions := sm.ComputeNextInterval(quality, record.Repetitions, record.EaseFactor, record.Interval)

	record.Interval = interval
	record.EaseFactor = ease
	record.Repetitions = repetitions

	reviewed := now
	record.LastReviewedAt = &reviewed
	record.NextRepeat = now.AddDate(0, 0, interval)
	record.UpdatedAt = now
	return nil
}

// ComputeNextInterval returns the interval, ease factor and repetition count that follow
// a review of the given quality. The interval is derived from the ease factor as it was
// before this review.
func (sm *SM2) ComputeNextInterval(quality QualityResponse, repetitions int, currentEF float64, currentInterval int) (int, float64, int) {
	var newInterval, newRepetitions int

	if quality >= sm.PassThreshold {
		switch repetitions {
		case 0:
			newInterval = 1
		case 1:
			newInterval = 6
		default:
			newInterval = int(math.Round(float64(currentInterval) * currentEF))
		}
		if sm.MaxInterval > 0 && newInterval > sm.MaxInterval {
			newInterval = sm.MaxInterval
		}
		newRepetitions = repetitions + 1
	} else {
		// Relearn from tomorrow
		newInterval = 1
		newRepetitions = 0
	}

	q := float64(5 - quality)
	newEF := currentEF + (0.1 - q*(0.08+q*0.02))
	if newEF < sm.MinEase {
		newEF = sm.MinEase
	}

	return newInterval, newEF, newRepetitions
}

// SelectNext picks the record to review next: the most overdue one, ties broken by the
// lowest vocabulary id. Records that are not yet due are never returned.
func SelectNext(records []models.MemoryRecord, now time.Time) *models.MemoryRecord {
	due := make([]models.MemoryRecord, 0, len(records))
	for _, r := range records {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return nil
	}

	sort.SliceStable(due, func(i, j int) bool {
		if !due[i].NextRepeat.Equal(due[j].NextRepeat) {
			return due[i].NextRepeat.Before(due[j].NextRepeat)
		}
		return due[i].VocabID < due[j].VocabID
	})

	next := due[0]
	return &next
}
