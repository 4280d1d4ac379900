package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/mock-interview/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeFitPrompt asks for a 0-100 fit score of a resume against a role.
func (pb *PromptBuilder) BuildResumeFitPrompt(resumeText, role, experience string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter screening a resume for a %s position.

CANDIDATE EXPERIENCE LEVEL:
%s

RESUME:
%s

Assess how well the resume fits the role and the stated experience level. Consider relevant skills,
depth of hands-on work, and evidence of impact.

Return your response in the following JSON format:
{
  "score": <integer 0-100>,
  "feedback": "<3-5 sentences on strengths and gaps for this role>"
}

Only output the JSON.`, role, experience, resumeText)
}

// BuildAnswerScoringPrompt asks for a 0-5 score of one interview answer.
func (pb *PromptBuilder) BuildAnswerScoringPrompt(question, answer string) string {
	return fmt.Sprintf(`You're a mock interview evaluator.

Evaluate the following answer:
Question: %s
Answer: %s

Respond with a JSON object having:
- score: (integer 0-5)
- feedback: (short, constructive, and what could be done better)

Example:
{"score": 4, "feedback": "Good explanation but could go deeper on the technical trade-offs."}

Only output the JSON.`, question, answer)
}

// BuildDomainPrompt asks for the closed-set domain of a role.
func (pb *PromptBuilder) BuildDomainPrompt(role string) string {
	return fmt.Sprintf(`Classify the following role into one of these domains: %s.

Role: %s

Respond with only the domain (e.g., 'devops').`, strings.Join(models.Domains, ", "), role)
}

// BuildIntentPrompt asks which assistant a chat message is meant for.
func (pb *PromptBuilder) BuildIntentPrompt(message string) string {
	return fmt.Sprintf(`Classify the user's intent based on their message.

User message: %q

Choose one of these categories:
- "interview": user wants to start or continue a mock interview
- "reflect": user wants to analyze past performance, understand weaknesses, get improvement tips or review their progress
- "admin": user wants to see the leaderboard, stats or other administrative information

Respond with just the category name.`, message)
}
