package models

// VocabularyItem is a catalog entry the learner can be quizzed on
type VocabularyItem struct {
	ID          int64   `json:"id" db:"id"`
	Vocab       string  `json:"vocab" db:"vocab"`
	Article     *string `json:"article,omitempty" db:"article"`
	WordType    *string `json:"word_type,omitempty" db:"word_type"`
	Translation string  `json:"translation" db:"translation"`
	Context     *string `json:"context,omitempty" db:"context"` // Optional example sentence
}
