package models

// AudioStats counts audio references per column
type AudioStats struct {
	Questions int `json:"questions"`
	Feedbacks int `json:"feedbacks"`
	Answers   int `json:"answers"`
}

// Total returns the number of references across all columns
func (s AudioStats) Total() int {
	return s.Questions + s.Feedbacks + s.Answers
}

// ClearAudioResult summarizes a clear/audio run
type ClearAudioResult struct {
	Cancelled     bool
	Initial       AudioStats
	Remaining     AudioStats
	DeletedFiles  int
	ReferencedURL int
}

// ClearQuizQuestionsResult summarizes a clear/quizzes/questions run
type ClearQuizQuestionsResult struct {
	Cancelled    bool
	ClearedCount int64
}
