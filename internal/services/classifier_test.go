package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDomainClassifier_NormalizesAndCaches(t *testing.T) {
	gemini := &stubGemini{replies: []string{" 'DevOps'\n", "frontend"}}
	c := NewDomainClassifier(gemini, 1, zap.NewNop())

	tag, err := c.Classify(context.Background(), "Site Reliability Engineer")
	require.NoError(t, err)
	assert.Equal(t, "devops", tag)

	tag, err = c.Classify(context.Background(), "  site reliability engineer ")
	require.NoError(t, err)
	assert.Equal(t, "devops", tag)
	assert.Len(t, gemini.prompts, 1)
	assert.Contains(t, gemini.prompts[0], "devops, frontend, backend, data, cloud, security")

	tag, err = c.Classify(context.Background(), "React Developer")
	require.NoError(t, err)
	assert.Equal(t, "frontend", tag)
	assert.Len(t, gemini.prompts, 2)
}

func TestDomainClassifier_UnknownTagPassesThrough(t *testing.T) {
	c := NewDomainClassifier(&stubGemini{replies: []string{"Marketing"}}, 1, zap.NewNop())

	tag, err := c.Classify(context.Background(), "Growth Lead")
	require.NoError(t, err)
	assert.Equal(t, "marketing", tag)
}

func TestDomainClassifier_ErrorIsNotCached(t *testing.T) {
	gemini := &stubGemini{err: errors.New("quota exceeded")}
	c := NewDomainClassifier(gemini, 1, zap.NewNop())

	_, err := c.Classify(context.Background(), "Data Engineer")
	assert.ErrorContains(t, err, "failed to classify role")

	gemini.mu.Lock()
	gemini.err = nil
	gemini.replies = []string{"data"}
	gemini.mu.Unlock()

	tag, err := c.Classify(context.Background(), "Data Engineer")
	require.NoError(t, err)
	assert.Equal(t, "data", tag)
}
