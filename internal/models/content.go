package models

import "strings"

// Language is the subject title used to pick a narration voice
type Language string

const (
	LanguageEnglish Language = "ENGLISH"
	LanguageArabic  Language = "ARABE"
	LanguageFrench  Language = "FRENSH"
	LanguageMath    Language = "MATH"
)

// QuizType discriminates flashcard decks from graded quizzes
type QuizType string

const (
	QuizTypeFlashcard QuizType = "FLASHCARD"
	QuizTypeQuiz      QuizType = "QUIZ"
)

// AudioProcessingSentinel marks a record whose audio is being generated.
// It is only ever written inside an open transaction.
const AudioProcessingSentinel = "PROCESSING"

// AudioState is the lifecycle of an audio reference column
type AudioState int

const (
	// AudioStateIdle means no audio has been generated yet
	AudioStateIdle AudioState = iota
	// AudioStatePending means the processing sentinel is present
	AudioStatePending
	// AudioStateReady means the column holds a storage key
	AudioStateReady
)

func (s AudioState) String() string {
	switch s {
	case AudioStateIdle:
		return "idle"
	case AudioStatePending:
		return "pending"
	case AudioStateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ContentRecord is one narratable text field: a flashcard question, a flashcard
// answer, a quiz question or a quiz feedback message.
type ContentRecord struct {
	ID       string      `json:"id" db:"id"`
	Kind     ContentKind `json:"kind"`
	Language Language    `json:"language" db:"language"`
	Text     string      `json:"text"`
	// AudioRef is nil when the column is NULL
	AudioRef *string `json:"audioRef,omitempty"`
}

// AudioState reports the state of the record's audio reference
func (r ContentRecord) AudioState() AudioState {
	if r.AudioRef == nil || strings.TrimSpace(*r.AudioRef) == "" {
		return AudioStateIdle
	}
	if *r.AudioRef == AudioProcessingSentinel {
		return AudioStatePending
	}
	return AudioStateReady
}

// Eligible reports whether the record still needs narration.
// The processing sentinel does not make a record eligible.
func (r ContentRecord) Eligible() bool {
	return r.AudioState() == AudioStateIdle
}

// WithAudioRef returns a copy of the record pointing at the given storage key
func (r ContentRecord) WithAudioRef(key string) ContentRecord {
	r.AudioRef = &key
	return r
}
