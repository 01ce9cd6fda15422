package models

import "fmt"

// QuestionType identifies the format of a single exam item.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionSubjective     QuestionType = "subjective"
)

// Option represents one answer choice of a multiple-choice or true/false item.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ExamItem represents a single exam question.
//
// Shape depends on Type: multiple_choice carries exactly four options and
// CorrectAnswer names one of their labels; true_false carries the fixed
// two-option pair; subjective carries no options and CorrectAnswer is the
// expected free-text answer.
type ExamItem struct {
	ID            int          `json:"id"`
	Question      string       `json:"question"`
	Type          QuestionType `json:"type"`
	Options       []Option     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
	ImagePrompt   string       `json:"image_prompt,omitempty"`
}

// Worksheet is the aggregate exam: metadata plus ordered items.
type Worksheet struct {
	Title       string     `json:"title"`
	Subject     string     `json:"subject"`
	TargetLevel string     `json:"target_level"`
	Items       []ExamItem `json:"items"`
}

// Validate checks the per-type shape invariants. Items coming back from the
// model are validated with this immediately after decoding, before any core
// logic touches them.
func (it ExamItem) Validate() error {
	if it.Question == "" {
		return fmt.Errorf("question text is empty")
	}
	if it.CorrectAnswer == "" {
		return fmt.Errorf("correct answer is empty")
	}

	switch it.Type {
	case QuestionMultipleChoice:
		if len(it.Options) != 4 {
			return fmt.Errorf("multiple_choice item has %d options, want 4", len(it.Options))
		}
		if !answerMatchesOption(it.CorrectAnswer, it.Options) {
			return fmt.Errorf("correct answer %q does not match any option label", it.CorrectAnswer)
		}
	case QuestionTrueFalse:
		if len(it.Options) != 2 {
			return fmt.Errorf("true_false item has %d options, want 2", len(it.Options))
		}
		if !answerMatchesOption(it.CorrectAnswer, it.Options) {
			return fmt.Errorf("correct answer %q does not match any option label", it.CorrectAnswer)
		}
	case QuestionSubjective:
		if len(it.Options) != 0 {
			return fmt.Errorf("subjective item carries %d options, want none", len(it.Options))
		}
	default:
		return fmt.Errorf("unknown question type %q", it.Type)
	}
	return nil
}

func answerMatchesOption(answer string, options []Option) bool {
	for _, opt := range options {
		if opt.Label == answer {
			return true
		}
	}
	return false
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
