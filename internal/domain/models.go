package domain

// Kind is the question format category. It governs both the answer UI and the
// grading rule applied on submission.
type Kind string

const (
	KindMultipleChoice Kind = "mcq"
	KindFillInBlank    Kind = "fill_in_the_blank"
	KindTrueFalse      Kind = "true_false"
	KindShortAnswer    Kind = "short_answer"
)

// Valid reports whether k is one of the known question kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMultipleChoice, KindFillInBlank, KindTrueFalse, KindShortAnswer:
		return true
	}
	return false
}

// HasOptions reports whether questions of this kind carry an options list.
func (k Kind) HasOptions() bool {
	return k == KindMultipleChoice || k == KindFillInBlank
}

// Difficulty is the question difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is one quiz item as produced by the generation service.
// For choice kinds (mcq, fill-in-the-blank) CorrectAnswer is one of Options;
// the generator client validates that shape at the boundary.
type Question struct {
	Text          string     `json:"question"`
	Kind          Kind       `json:"type"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
	Options       []string   `json:"options"`
	CorrectAnswer string     `json:"answer"`
	Explanation   string     `json:"explanation"`
}

// GeneratedQuiz is the validated payload returned by the generation service.
// GenerationTime is in milliseconds.
type GeneratedQuiz struct {
	Questions      []Question `json:"questions"`
	GenerationTime float64    `json:"generationTime"`
}

// AnswerRecord is one graded answer.
type AnswerRecord struct {
	QuestionText  string     `json:"question"`
	UserAnswer    string     `json:"userAnswer"`
	CorrectAnswer string     `json:"correctAnswer"`
	IsCorrect     bool       `json:"isCorrect"`
	Kind          Kind       `json:"type"`
	Difficulty    Difficulty `json:"difficulty"`
	Topic         string     `json:"topic"`
	Explanation   string     `json:"explanation"`
}

// QuizResult summarizes one graded quiz session. Answers preserves the
// original question order.
type QuizResult struct {
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	Percentage       float64        `json:"percentage"`
	TimeSpentSeconds int            `json:"timeSpent"`
	Answers          []AnswerRecord `json:"answers"`
}

// Tally is a correct/total pair used for group accuracy computation.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns the correct/total ratio, or 0 for an empty tally.
func (t Tally) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}
