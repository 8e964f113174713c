package app

import (
	"fmt"
	"strings"

	"quizwise-service/internal/domain"
)

// GroupTally is a named tally within a breakdown. Groups appear in the order
// their key first occurs in the answer list, not sorted.
type GroupTally struct {
	Key string `json:"key"`
	domain.Tally
}

// Breakdown holds per-topic, per-difficulty, and per-kind accuracy tallies
// for one graded quiz.
type Breakdown struct {
	Topics       []GroupTally `json:"topics"`
	Difficulties []GroupTally `json:"difficulties"`
	Kinds        []GroupTally `json:"kinds"`
}

// Summarize folds the answer records into topic/difficulty/kind tallies.
func Summarize(result domain.QuizResult) Breakdown {
	return Breakdown{
		Topics:       foldTallies(result.Answers, func(a domain.AnswerRecord) string { return a.Topic }),
		Difficulties: foldTallies(result.Answers, func(a domain.AnswerRecord) string { return string(a.Difficulty) }),
		Kinds:        foldTallies(result.Answers, func(a domain.AnswerRecord) string { return string(a.Kind) }),
	}
}

func foldTallies(answers []domain.AnswerRecord, key func(domain.AnswerRecord) string) []GroupTally {
	index := make(map[string]int, len(answers))
	groups := make([]GroupTally, 0, len(answers))
	for _, answer := range answers {
		k := key(answer)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, GroupTally{Key: k})
		}
		groups[i].Total++
		if answer.IsCorrect {
			groups[i].Correct++
		}
	}
	return groups
}

const (
	weakTopicThreshold      = 0.70
	weakDifficultyThreshold = 0.60
	weakKindThreshold       = 0.70
)

var difficultySuggestions = []struct {
	difficulty domain.Difficulty
	message    string
}{
	{domain.DifficultyEasy, "Review fundamental concepts - focus on mastering basic principles first."},
	{domain.DifficultyMedium, "Practice more intermediate-level problems to build confidence."},
	{domain.DifficultyHard, "Challenge yourself with advanced practice questions and detailed explanations."},
}

var kindSuggestions = []struct {
	kind    domain.Kind
	message string
}{
	{domain.KindMultipleChoice, "Work on elimination strategies for multiple choice questions."},
	{domain.KindFillInBlank, "Focus on vocabulary and key terms comprehension."},
	{domain.KindTrueFalse, "Pay attention to absolute statements and exceptions in true/false questions."},
	{domain.KindShortAnswer, "Practice expressing ideas clearly and concisely in your own words."},
}

// Suggestions derives the ordered study-recommendation list from the overall
// percentage and the group tallies. Rules fire in a fixed order: overall tier,
// weak topics (one combined line), weak difficulties, weak kinds.
func Suggestions(result domain.QuizResult, breakdown Breakdown) []string {
	suggestions := make([]string, 0, 4)

	switch {
	case result.Percentage < 60:
		suggestions = append(suggestions, "Focus on fundamental concepts - consider reviewing basic materials before taking advanced quizzes.")
	case result.Percentage < 80:
		suggestions = append(suggestions, "Good foundation! Work on challenging questions to reach the next level.")
	default:
		suggestions = append(suggestions, "Excellent performance! Challenge yourself with advanced topics and timed practice.")
	}

	weakTopics := make([]string, 0, len(breakdown.Topics))
	for _, group := range breakdown.Topics {
		if group.Accuracy() < weakTopicThreshold {
			weakTopics = append(weakTopics, group.Key)
		}
	}
	if len(weakTopics) > 0 {
		suggestions = append(suggestions, fmt.Sprintf("Strengthen these areas: %s", strings.Join(weakTopics, ", ")))
	}

	difficulties := talliesByKey(breakdown.Difficulties)
	for _, rule := range difficultySuggestions {
		if tally, ok := difficulties[string(rule.difficulty)]; ok && tally.Accuracy() < weakDifficultyThreshold {
			suggestions = append(suggestions, rule.message)
		}
	}

	kinds := talliesByKey(breakdown.Kinds)
	for _, rule := range kindSuggestions {
		if tally, ok := kinds[string(rule.kind)]; ok && tally.Accuracy() < weakKindThreshold {
			suggestions = append(suggestions, rule.message)
		}
	}

	return suggestions
}

func talliesByKey(groups []GroupTally) map[string]domain.Tally {
	byKey := make(map[string]domain.Tally, len(groups))
	for _, group := range groups {
		byKey[group.Key] = group.Tally
	}
	return byKey
}

// PerformanceTier maps the overall percentage to its display bracket.
// Bounds are inclusive-lower, first match wins.
func PerformanceTier(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 80:
		return "Very Good"
	case percentage >= 70:
		return "Good"
	case percentage >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}
