package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/metrics"
	"alfredoptarigan/mock-interview/internal/models"
)

var (
	ErrNoPendingQuestion    = errors.New("no question is pending an answer")
	ErrQuestionLimitReached = errors.New("interview question limit reached")
	ErrInterviewNotEligible = errors.New("resume score is below the interview gate")
	ErrResumeNotSubmitted   = errors.New("resume has not been evaluated yet")
)

// SessionController drives a single InterviewSession through its lifecycle.
// It keeps no per-candidate state; callers load the session, call in, and
// save it back while holding whatever lock serializes that candidate.
type SessionController interface {
	SubmitResume(ctx context.Context, s *models.InterviewSession, resumePath, role, experience string) (ResumeScore, error)
	IsInterviewEligible(s *models.InterviewSession) bool
	NextQuestion(ctx context.Context, s *models.InterviewSession) (string, bool, error)
	SubmitAnswer(s *models.InterviewSession, answer string) error
	EvaluateAll(ctx context.Context, s *models.InterviewSession) (int, []models.AnswerFeedback)
	SelectQuestion(ctx context.Context, role string, exclude []string) (string, string, bool)
}

type sessionController struct {
	resumes    ResumeEvaluator
	classifier DomainClassifier
	questions  QuestionSource
	scorer     AnswerScorer
	cfg        config.InterviewConfig
	log        *zap.Logger
}

func NewSessionController(
	resumes ResumeEvaluator,
	classifier DomainClassifier,
	questions QuestionSource,
	scorer AnswerScorer,
	cfg config.InterviewConfig,
	log *zap.Logger,
) SessionController {
	return &sessionController{
		resumes:    resumes,
		classifier: classifier,
		questions:  questions,
		scorer:     scorer,
		cfg:        cfg,
		log:        log.Named("controller"),
	}
}

func (c *sessionController) SubmitResume(ctx context.Context, s *models.InterviewSession, resumePath, role, experience string) (ResumeScore, error) {
	s.Role = role
	s.Experience = experience

	raw, err := c.resumes.Evaluate(ctx, resumePath, role, experience)
	if err != nil {
		return ResumeScore{}, err
	}

	result := ParseResumeScore(raw)
	metrics.ResumeScoreParses.WithLabelValues(string(result.Stage)).Inc()
	if result.Stage == StageDefault {
		c.log.Warn("resume score not found in evaluator reply, defaulting to 0", zap.String("candidate_id", s.CandidateID))
	}

	score := result.Score
	s.ResumeScore = &score
	s.ResumeFeedback = result.Feedback

	decision := "fail"
	if c.IsInterviewEligible(s) {
		decision = "pass"
	}
	metrics.ResumeGateDecisions.WithLabelValues(decision).Inc()

	c.log.Info("resume evaluated",
		zap.String("candidate_id", s.CandidateID),
		zap.Int("score", score),
		zap.String("decision", decision),
	)

	return result, nil
}

func (c *sessionController) IsInterviewEligible(s *models.InterviewSession) bool {
	return s.IsInterviewEligible(c.cfg.GateThreshold)
}

// NextQuestion issues the best unseen question for the session's role. A
// question already pending is returned again. ok is false, with a nil error,
// when the source has nothing left to offer.
func (c *sessionController) NextQuestion(ctx context.Context, s *models.InterviewSession) (string, bool, error) {
	if s.ResumeScore == nil {
		return "", false, ErrResumeNotSubmitted
	}
	if !c.IsInterviewEligible(s) {
		return "", false, ErrInterviewNotEligible
	}
	if s.HasPendingQuestion() {
		return s.PendingQuestion, true, nil
	}
	if len(s.AskedQuestions) >= c.cfg.MaxQuestions {
		return "", false, ErrQuestionLimitReached
	}

	question, domain, ok := c.SelectQuestion(ctx, s.Role, s.AskedQuestions)
	if domain != "" {
		s.Domain = domain
	}
	if !ok {
		metrics.QuestionsExhausted.Inc()
		return "", false, nil
	}

	s.AskedQuestions = append(s.AskedQuestions, question)
	s.PendingQuestion = question
	metrics.QuestionsIssued.Inc()

	return question, true, nil
}

// SelectQuestion classifies role and picks the lowest-distance candidate in
// that domain not present in exclude. Ties keep source order. Collaborator
// failures are logged and reported as ok=false.
func (c *sessionController) SelectQuestion(ctx context.Context, role string, exclude []string) (string, string, bool) {
	domain, err := c.classifier.Classify(ctx, role)
	if err != nil {
		c.log.Warn("domain classification failed", zap.String("role", role), zap.Error(err))
		return "", "", false
	}

	candidates, err := c.questions.Search(ctx, domain, exclude, c.cfg.CandidatePool)
	if err != nil {
		c.log.Warn("question search failed", zap.String("domain", domain), zap.Error(err))
		return "", domain, false
	}

	seen := make(map[string]struct{}, len(exclude))
	for _, q := range exclude {
		seen[q] = struct{}{}
	}

	var best *models.QuestionCandidate
	for i := range candidates {
		cand := &candidates[i]
		if cand.Domain != domain {
			continue
		}
		if _, dup := seen[cand.Text]; dup {
			continue
		}
		if best == nil || cand.Distance < best.Distance {
			best = cand
		}
	}

	if best == nil {
		c.log.Info("no unseen question left", zap.String("domain", domain), zap.Int("excluded", len(exclude)))
		return "", domain, false
	}

	return best.Text, domain, true
}

func (c *sessionController) SubmitAnswer(s *models.InterviewSession, answer string) error {
	if !s.HasPendingQuestion() {
		return ErrNoPendingQuestion
	}

	s.Answers = append(s.Answers, models.QA{Question: s.PendingQuestion, Answer: answer})
	s.PendingQuestion = ""

	return nil
}

// EvaluateAll scores every answer, at most cfg.ScoringConcurrency at a
// time, and overwrites s.Feedback in question order. Scorer failures become
// FallbackFeedback and never abort the batch.
func (c *sessionController) EvaluateAll(ctx context.Context, s *models.InterviewSession) (int, []models.AnswerFeedback) {
	feedback := make([]models.AnswerFeedback, len(s.Answers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, c.cfg.ScoringConcurrency))

	for i, qa := range s.Answers {
		g.Go(func() error {
			fb, err := c.scorer.Score(gctx, qa.Question, qa.Answer)
			if err != nil {
				c.log.Warn("answer scoring fell back",
					zap.String("candidate_id", s.CandidateID),
					zap.Int("index", i),
					zap.Error(err),
				)
				metrics.AnswersScored.WithLabelValues("fallback").Inc()
				feedback[i] = FallbackFeedback()
				return nil
			}
			metrics.AnswersScored.WithLabelValues("ok").Inc()
			feedback[i] = fb
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, fb := range feedback {
		total += fb.Score
	}

	s.Feedback = feedback
	return total, feedback
}

// MaxScore is the best possible total for an interview of n questions.
func MaxScore(n int) int {
	return n * maxPerQuestion
}

func describeScore(total, n int) string {
	return fmt.Sprintf("%d/%d", total, MaxScore(n))
}
