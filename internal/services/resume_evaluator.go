package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ResumeEvaluator returns the raw fit assessment for a resume. The reply may
// be JSON or free text; ParseResumeScore turns it into a number.
type ResumeEvaluator interface {
	Evaluate(ctx context.Context, resumePath, role, experience string) (string, error)
}

type resumeEvaluator struct {
	pdfParser     PDFParserService
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

func NewResumeEvaluator(pdfParser PDFParserService, gemini GeminiService, maxRetries int, log *zap.Logger) ResumeEvaluator {
	return &resumeEvaluator{
		pdfParser:     pdfParser,
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log.Named("resume_evaluator"),
	}
}

func (e *resumeEvaluator) Evaluate(ctx context.Context, resumePath, role, experience string) (string, error) {
	text, err := e.pdfParser.ExtractText(resumePath)
	if err != nil {
		return "", fmt.Errorf("failed to read resume: %w", err)
	}

	e.log.Debug("resume extracted", zap.String("path", resumePath), zap.Int("chars", len(text)))

	prompt := e.promptBuilder.BuildResumeFitPrompt(text, role, experience)
	reply, err := e.gemini.GenerateTextWithRetry(ctx, prompt, 0.3, e.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate resume: %w", err)
	}

	return reply, nil
}
