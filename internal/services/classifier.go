package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/models"
)

// DomainClassifier maps a free-text role to one of models.Domains. A tag
// outside that set is returned as-is and simply matches no questions.
type DomainClassifier interface {
	Classify(ctx context.Context, role string) (string, error)
}

type domainClassifier struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// NewDomainClassifier classifies with a zero-temperature prompt and caches
// the answer per role so a role keeps its domain for the process lifetime.
func NewDomainClassifier(gemini GeminiService, maxRetries int, log *zap.Logger) DomainClassifier {
	return &domainClassifier{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log.Named("domain_classifier"),
		cache:         make(map[string]string),
	}
}

func (c *domainClassifier) Classify(ctx context.Context, role string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(role))

	c.mu.RLock()
	tag, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return tag, nil
	}

	raw, err := c.gemini.GenerateTextWithRetry(ctx, c.promptBuilder.BuildDomainPrompt(role), 0, c.maxRetries)
	if err != nil {
		return "", fmt.Errorf("failed to classify role: %w", err)
	}

	tag = models.NormalizeTag(raw)
	if !models.IsKnownDomain(tag) {
		c.log.Warn("role classified outside known domains", zap.String("role", role), zap.String("tag", tag))
	}

	c.mu.Lock()
	c.cache[key] = tag
	c.mu.Unlock()

	return tag, nil
}
