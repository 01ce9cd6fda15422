// Package prompts holds the instruction text sent to the generation model.
// Keeping prompt construction here decouples it from the orchestration
// logic, so wording can change without touching the pipeline.
package prompts

import (
	"fmt"
	"strings"

	"examgen/internal/exam"
)

// NoAvoidTopics is the sentinel placed in the architect prompt when no
// topics have been generated yet.
const NoAvoidTopics = "none"

const analystTemplate = `You are an instructional designer. Read the attached document and analyze its
content to prepare for exam creation.

Requirements: %d questions, language: %s.
User instruction: %s

Summarize for the exam author:
1. Key topics of the material
2. Appropriate difficulty level
3. Question strategies aligned with Bloom's taxonomy
4. Focus points that must be covered

Answer concisely in %s.`

const architectTemplate = `You are a professional exam architect.

Requirements: %d questions, language: %s.
User instruction: "%s"

Task context: %s
Topics to avoid: %s

Design brief from the curriculum analyst:
%s

Create the exam following the strict JSON schema, honoring the user
instruction (especially question count and style).

Rules:
1. Produce exactly %d questions.
2. When a question would benefit from an illustration, put an English image
   description in image_prompt (e.g. "Diagram of..."); otherwise leave it null.
3. Content must be faithful to the attached document.
4. All question text must be written in %s only.
5. Every question carries a type field: multiple_choice | true_false | subjective.
6. Per-type rules:
   - multiple_choice: exactly 4 options and correct_answer is one of their labels.
   - true_false: exactly 2 options and correct_answer is one of their labels.
   - subjective: options must be null and correct_answer is the expected short answer.
7. %s
8. The JSON must be strict and complete per the schema.

Output JSON matching the schema only.`

// Analyst builds the content-analysis prompt for the first stage.
func Analyst(req exam.GenerationRequest) string {
	return fmt.Sprintf(analystTemplate,
		req.QuestionCount, req.Language, req.Instruction, req.Language)
}

// Architect builds the question-generation prompt for one batch.
func Architect(batch exam.BatchRequest) string {
	return fmt.Sprintf(architectTemplate,
		batch.Size, batch.Request.Language, batch.Request.Instruction,
		batch.Position, AvoidList(batch.AvoidTopics), batch.Brief,
		batch.Size, batch.Request.Language,
		ExamTypeInstruction(batch.Request.ExamType))
}

// AvoidList renders the avoid-set for the prompt: comma-joined, or the
// sentinel when nothing has been generated yet. Topics are expected to be
// sorted already.
func AvoidList(topics []string) string {
	if len(topics) == 0 {
		return NoAvoidTopics
	}
	return strings.Join(topics, ", ")
}

// ExamTypeInstruction renders the type constraint line. Auto imposes no
// restriction; the other types constrain every question in the batch.
func ExamTypeInstruction(t exam.ExamType) string {
	switch t {
	case exam.ExamTypeMultipleChoice:
		return "Every question must be multiple_choice."
	case exam.ExamTypeTrueFalse:
		return "Every question must be true_false."
	case exam.ExamTypeSubjective:
		return "Every question must be subjective."
	default:
		return "Choose the question formats best suited to the content (mixing is allowed)."
	}
}
