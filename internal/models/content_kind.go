package models

import "fmt"

// ContentKind identifies which text column a pipeline run narrates
type ContentKind string

const (
	ContentKindFlashcardQuestion ContentKind = "flashcards/questions"
	ContentKindFlashcardAnswer   ContentKind = "flashcards/responses"
	ContentKindQuizFeedback      ContentKind = "quizzes/feedbacks"
	ContentKindQuizQuestion      ContentKind = "quizzes/questions"
)

// AudioKeyRoot is the storage prefix shared by every generated narration
const AudioKeyRoot = "audios-bewize"

// ContentSource describes where a kind of content lives in the database
// and in object storage.
type ContentSource struct {
	Table       string
	TextColumn  string
	AudioColumn string
	QuizType    QuizType
	// KeyPrefix is the storage prefix, without trailing slash
	KeyPrefix string
}

var contentSources = map[ContentKind]ContentSource{
	ContentKindFlashcardQuestion: {
		Table:       "question",
		TextColumn:  "question",
		AudioColumn: "question_audio",
		QuizType:    QuizTypeFlashcard,
		KeyPrefix:   AudioKeyRoot + "/flashcards/questions",
	},
	ContentKindFlashcardAnswer: {
		Table:       "answer",
		TextColumn:  "answer",
		AudioColumn: "answer_audio",
		QuizType:    QuizTypeFlashcard,
		KeyPrefix:   AudioKeyRoot + "/flashcards/answers",
	},
	ContentKindQuizFeedback: {
		Table:       "question",
		TextColumn:  "feedback",
		AudioColumn: "feedback_audio",
		QuizType:    QuizTypeQuiz,
		KeyPrefix:   AudioKeyRoot + "/quizzes/feedbacks",
	},
	ContentKindQuizQuestion: {
		Table:       "question",
		TextColumn:  "question",
		AudioColumn: "question_audio",
		QuizType:    QuizTypeQuiz,
		KeyPrefix:   AudioKeyRoot + "/quizzes/questions",
	},
}

// ContentKinds lists every narratable kind in processing order
func ContentKinds() []ContentKind {
	return []ContentKind{
		ContentKindFlashcardQuestion,
		ContentKindFlashcardAnswer,
		ContentKindQuizFeedback,
		ContentKindQuizQuestion,
	}
}

// Source returns the table/column mapping of the kind
func (k ContentKind) Source() (ContentSource, error) {
	src, ok := contentSources[k]
	if !ok {
		return ContentSource{}, fmt.Errorf("invalid content kind: %s", k)
	}
	return src, nil
}

// Valid reports whether the kind is known
func (k ContentKind) Valid() bool {
	_, ok := contentSources[k]
	return ok
}
