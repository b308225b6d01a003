package models

// Script is a CLI entry point
type Script string

const (
	ScriptFlashcardQuestions Script = "flashcards/questions"
	ScriptFlashcardResponses Script = "flashcards/responses"
	ScriptQuizFeedbacks      Script = "quizzes/feedbacks"
	ScriptQuizQuestions      Script = "quizzes/questions"
	ScriptAll                Script = "all"
	ScriptUpdateStories      Script = "update/stories"
	ScriptClearAudio         Script = "clear/audio"
	ScriptClearQuizQuestions Script = "clear/quizzes/questions"
)

// Scripts lists every known script in help order
func Scripts() []Script {
	return []Script{
		ScriptFlashcardQuestions,
		ScriptFlashcardResponses,
		ScriptQuizFeedbacks,
		ScriptQuizQuestions,
		ScriptAll,
		ScriptUpdateStories,
		ScriptClearAudio,
		ScriptClearQuizQuestions,
	}
}

// Valid reports whether the script is known
func (s Script) Valid() bool {
	for _, known := range Scripts() {
		if s == known {
			return true
		}
	}
	return false
}

// RequiresLevel reports whether --level must be given
func (s Script) RequiresLevel() bool {
	return s != ScriptUpdateStories && s != ScriptClearAudio
}

// ContentKind returns the kind narrated by a single-domain script
func (s Script) ContentKind() (ContentKind, bool) {
	kind := ContentKind(s)
	return kind, kind.Valid()
}

// ScriptArgs are the parsed command line arguments
type ScriptArgs struct {
	Script  Script
	Level   string
	Subject string
}
