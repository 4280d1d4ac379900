package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

type stubResumeEvaluator struct {
	reply string
	err   error
	calls int
}

func (s *stubResumeEvaluator) Evaluate(_ context.Context, _, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

// stubClassifier maps roles from a table. With failAfter set, every call
// beyond the first failAfter returns err.
type stubClassifier struct {
	domains   map[string]string
	err       error
	failAfter int

	mu    sync.Mutex
	calls int
}

func (s *stubClassifier) Classify(_ context.Context, role string) (string, error) {
	s.mu.Lock()
	s.calls++
	calls := s.calls
	s.mu.Unlock()

	if s.err != nil && (s.failAfter == 0 || calls > s.failAfter) {
		return "", s.err
	}
	if d, ok := s.domains[role]; ok {
		return d, nil
	}
	return "unknown", nil
}

// stubSource serves a fixed ranked list and honours exclude like the real
// index does.
type stubSource struct {
	candidates    []models.QuestionCandidate
	err           error
	ignoreExclude bool

	mu       sync.Mutex
	lastK    int
	searches int
}

func (s *stubSource) Search(_ context.Context, domain string, exclude []string, k int) ([]models.QuestionCandidate, error) {
	s.mu.Lock()
	s.lastK = k
	s.searches++
	s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	skip := make(map[string]bool, len(exclude))
	for _, q := range exclude {
		skip[q] = !s.ignoreExclude
	}

	var out []models.QuestionCandidate
	for _, c := range s.candidates {
		if (c.Domain != domain && !s.ignoreExclude) || skip[c.Text] {
			continue
		}
		out = append(out, c)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

type scoreFunc func(question, answer string) (models.AnswerFeedback, error)

type stubScorer struct {
	fn scoreFunc

	mu    sync.Mutex
	calls int
}

func (s *stubScorer) Score(_ context.Context, question, answer string) (models.AnswerFeedback, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(question, answer)
}

func constantScorer(score int) *stubScorer {
	return &stubScorer{fn: func(q, a string) (models.AnswerFeedback, error) {
		return models.AnswerFeedback{Score: score, Feedback: "ok"}, nil
	}}
}

type recordingWorker struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (w *recordingWorker) Start(context.Context) {}

func (w *recordingWorker) Stop() {}

func (w *recordingWorker) EnqueueJob(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids = append(w.ids, id)
}

// stubGemini returns canned replies in order, repeating the last one.
type stubGemini struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (g *stubGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func (g *stubGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", errors.New("no reply configured")
	}
	reply := g.replies[0]
	if len(g.replies) > 1 {
		g.replies = g.replies[1:]
	}
	return reply, nil
}

func (g *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return g.GenerateText(ctx, prompt, temperature)
}

func testInterviewConfig() config.InterviewConfig {
	return config.InterviewConfig{
		MaxQuestions:       3,
		GateThreshold:      70,
		CandidatePool:      5,
		ScoringConcurrency: 3,
	}
}

func devopsQuestions() []models.QuestionCandidate {
	return []models.QuestionCandidate{
		{Text: "Explain CI/CD pipeline and its stages.", Domain: "devops", Distance: 0.10},
		{Text: "What is infrastructure as code?", Domain: "devops", Distance: 0.20},
		{Text: "What is a Dockerfile and how do you use it?", Domain: "devops", Distance: 0.30},
		{Text: "Explain how Kubernetes handles rolling updates.", Domain: "devops", Distance: 0.40},
		{Text: "Explain virtual DOM in React.", Domain: "frontend", Distance: 0.05},
	}
}

func newTestController(source QuestionSource, scorer AnswerScorer, resumes ResumeEvaluator) SessionController {
	classifier := &stubClassifier{domains: map[string]string{
		"DevOps Engineer":    "devops",
		"Frontend Developer": "frontend",
	}}
	return NewSessionController(resumes, classifier, source, scorer, testInterviewConfig(), zap.NewNop())
}

func eligibleSession(id, role string) *models.InterviewSession {
	s := models.NewInterviewSession(id)
	s.Role = role
	score := 85
	s.ResumeScore = &score
	return s
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.InterviewRecord{}))

	return db
}

func newTestRepo(t *testing.T) repositories.InterviewRepository {
	return repositories.NewInterviewRepository(setupTestDB(t))
}
