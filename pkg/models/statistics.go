package models

// Statistics summarises a user's progress through the catalog
type Statistics struct {
	TotalWords int `json:"total_words"`
	Unseen     int `json:"unseen"`
	Due        int `json:"due"`
	Learning   int `json:"learning"`
	Review     int `json:"review"`
	Relearning int `json:"relearning"`
}
