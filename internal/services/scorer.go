package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
)

var ErrMalformedScore = errors.New("scorer returned malformed output")

// AnswerScorer grades a single answer on a 0-5 scale. Implementations are
// untrusted: callers must be ready for errors and ErrMalformedScore.
type AnswerScorer interface {
	Score(ctx context.Context, question, answer string) (models.AnswerFeedback, error)
}

type answerScorer struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewAnswerScorer(gemini GeminiService, log *zap.Logger) AnswerScorer {
	return &answerScorer{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		log:           log.Named("answer_scorer"),
	}
}

// Score makes a single attempt; there is no retry for a malformed reply.
func (s *answerScorer) Score(ctx context.Context, question, answer string) (models.AnswerFeedback, error) {
	raw, err := s.gemini.GenerateText(ctx, s.promptBuilder.BuildAnswerScoringPrompt(question, answer), 0)
	if err != nil {
		return models.AnswerFeedback{}, fmt.Errorf("failed to score answer: %w", err)
	}

	fb, ok := ParseAnswerFeedback(raw)
	if !ok {
		s.log.Warn("unparseable scorer reply", zap.String("reply", logger.Truncate(raw, 200)))
		return models.AnswerFeedback{}, ErrMalformedScore
	}

	return fb, nil
}
