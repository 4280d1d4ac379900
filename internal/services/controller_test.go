package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

func TestSubmitResume_ParsesStructuredReply(t *testing.T) {
	resumes := &stubResumeEvaluator{reply: "```json\n{\"score\": 88, \"feedback\": \"Strong Kubernetes background.\"}\n```"}
	c := newTestController(&stubSource{}, constantScorer(5), resumes)
	s := models.NewInterviewSession("alice")

	result, err := c.SubmitResume(context.Background(), s, "/tmp/cv.pdf", "DevOps Engineer", "3 years")
	require.NoError(t, err)

	assert.Equal(t, 88, result.Score)
	assert.Equal(t, StageStructured, result.Stage)
	assert.Equal(t, "Strong Kubernetes background.", s.ResumeFeedback)
	assert.Equal(t, "DevOps Engineer", s.Role)
	assert.Equal(t, "3 years", s.Experience)
	require.NotNil(t, s.ResumeScore)
	assert.Equal(t, 88, *s.ResumeScore)
	assert.True(t, c.IsInterviewEligible(s))
}

func TestSubmitResume_TextFallback(t *testing.T) {
	resumes := &stubResumeEvaluator{reply: "Score: 82, good alignment"}
	c := newTestController(&stubSource{}, constantScorer(5), resumes)
	s := models.NewInterviewSession("bob")

	result, err := c.SubmitResume(context.Background(), s, "/tmp/cv.pdf", "DevOps Engineer", "junior")
	require.NoError(t, err)

	assert.Equal(t, 82, result.Score)
	assert.Equal(t, StageText, result.Stage)
	assert.Equal(t, "Score: 82, good alignment", s.ResumeFeedback)
}

func TestSubmitResume_DefaultsToZero(t *testing.T) {
	resumes := &stubResumeEvaluator{reply: "The candidate looks promising."}
	c := newTestController(&stubSource{}, constantScorer(5), resumes)
	s := models.NewInterviewSession("carol")

	result, err := c.SubmitResume(context.Background(), s, "/tmp/cv.pdf", "DevOps Engineer", "senior")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.False(t, c.IsInterviewEligible(s))

	_, _, err = c.NextQuestion(context.Background(), s)
	assert.ErrorIs(t, err, ErrInterviewNotEligible)
}

func TestSubmitResume_EvaluatorError(t *testing.T) {
	resumes := &stubResumeEvaluator{err: errors.New("pdf unreadable")}
	c := newTestController(&stubSource{}, constantScorer(5), resumes)
	s := models.NewInterviewSession("dan")

	_, err := c.SubmitResume(context.Background(), s, "/tmp/cv.pdf", "DevOps Engineer", "senior")
	require.Error(t, err)
	assert.Nil(t, s.ResumeScore)
}

func TestNextQuestion_RequiresResume(t *testing.T) {
	c := newTestController(&stubSource{candidates: devopsQuestions()}, constantScorer(5), &stubResumeEvaluator{})
	s := models.NewInterviewSession("erin")
	s.Role = "DevOps Engineer"

	_, _, err := c.NextQuestion(context.Background(), s)
	assert.ErrorIs(t, err, ErrResumeNotSubmitted)
	assert.Empty(t, s.AskedQuestions)
}

func TestNextQuestion_GateBoundary(t *testing.T) {
	for _, score := range []int{0, 69} {
		c := newTestController(&stubSource{candidates: devopsQuestions()}, constantScorer(5), &stubResumeEvaluator{})
		s := models.NewInterviewSession("frank")
		s.Role = "DevOps Engineer"
		s.ResumeScore = &score

		_, _, err := c.NextQuestion(context.Background(), s)
		assert.ErrorIs(t, err, ErrInterviewNotEligible, "score %d", score)
		assert.Empty(t, s.AskedQuestions)
	}

	for _, score := range []int{70, 100} {
		c := newTestController(&stubSource{candidates: devopsQuestions()}, constantScorer(5), &stubResumeEvaluator{})
		s := models.NewInterviewSession("frank")
		s.Role = "DevOps Engineer"
		s.ResumeScore = &score

		_, ok, err := c.NextQuestion(context.Background(), s)
		require.NoError(t, err, "score %d", score)
		assert.True(t, ok)
	}
}

func TestNextQuestion_NoveltyAndBound(t *testing.T) {
	source := &stubSource{candidates: devopsQuestions(), ignoreExclude: true}
	c := newTestController(source, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("gina", "DevOps Engineer")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		q, ok, err := c.NextQuestion(ctx, s)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, c.SubmitAnswer(s, fmt.Sprintf("answer %d", i)))
		assert.Equal(t, q, s.Answers[i].Question)
	}

	assert.Equal(t, []string{
		"Explain CI/CD pipeline and its stages.",
		"What is infrastructure as code?",
		"What is a Dockerfile and how do you use it?",
	}, s.AskedQuestions)
	assert.Len(t, s.Answers, len(s.AskedQuestions))

	seen := map[string]bool{}
	for _, q := range s.AskedQuestions {
		assert.False(t, seen[q], "duplicate question %q", q)
		seen[q] = true
	}

	_, _, err := c.NextQuestion(ctx, s)
	assert.ErrorIs(t, err, ErrQuestionLimitReached)
	assert.Len(t, s.AskedQuestions, 3)
	assert.True(t, s.IsComplete(3))
}

func TestNextQuestion_PendingReturnedAgain(t *testing.T) {
	source := &stubSource{candidates: devopsQuestions()}
	c := newTestController(source, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("hank", "DevOps Engineer")

	first, ok, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)

	again, ok, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, first, again)
	assert.Len(t, s.AskedQuestions, 1)
	assert.Equal(t, 1, source.searches)
}

func TestNextQuestion_FiltersOtherDomains(t *testing.T) {
	source := &stubSource{candidates: devopsQuestions(), ignoreExclude: true}
	c := newTestController(source, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("ivy", "DevOps Engineer")

	q, ok, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Explain CI/CD pipeline and its stages.", q)
	assert.Equal(t, 5, source.lastK)
	assert.Equal(t, "devops", s.Domain)
}

func TestNextQuestion_LowestDistanceWinsAndTiesKeepOrder(t *testing.T) {
	source := &stubSource{candidates: []models.QuestionCandidate{
		{Text: "B", Domain: "devops", Distance: 0.5},
		{Text: "A", Domain: "devops", Distance: 0.2},
		{Text: "C", Domain: "devops", Distance: 0.2},
	}}
	c := newTestController(source, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("jack", "DevOps Engineer")

	q, _, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "A", q)
}

func TestNextQuestion_Exhaustion(t *testing.T) {
	source := &stubSource{candidates: devopsQuestions()}
	c := newTestController(source, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("kim", "Frontend Developer")
	ctx := context.Background()

	q, ok, err := c.NextQuestion(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Explain virtual DOM in React.", q)
	require.NoError(t, c.SubmitAnswer(s, "diffing"))

	q, ok, err = c.NextQuestion(ctx, s)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, q)
	assert.Len(t, s.AskedQuestions, 1)
	assert.False(t, s.HasPendingQuestion())
}

func TestNextQuestion_UnclassifiableRoleExhausts(t *testing.T) {
	c := newTestController(&stubSource{candidates: devopsQuestions()}, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("lee", "Chef")

	_, ok, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextQuestion_SourceFailureExhausts(t *testing.T) {
	c := newTestController(&stubSource{err: errors.New("index down")}, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("max", "DevOps Engineer")

	_, ok, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, s.AskedQuestions)
}

func TestSubmitAnswer_WithoutPendingQuestion(t *testing.T) {
	c := newTestController(&stubSource{}, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("nina", "DevOps Engineer")

	err := c.SubmitAnswer(s, "an answer nobody asked for")
	assert.ErrorIs(t, err, ErrNoPendingQuestion)
	assert.Empty(t, s.Answers)
}

func TestSubmitAnswer_TwiceForOneQuestion(t *testing.T) {
	c := newTestController(&stubSource{candidates: devopsQuestions()}, constantScorer(5), &stubResumeEvaluator{})
	s := eligibleSession("oscar", "DevOps Engineer")

	_, _, err := c.NextQuestion(context.Background(), s)
	require.NoError(t, err)
	require.NoError(t, c.SubmitAnswer(s, "first"))
	assert.ErrorIs(t, c.SubmitAnswer(s, "second"), ErrNoPendingQuestion)
	assert.Len(t, s.Answers, 1)
}

func TestEvaluateAll_DegradesOnMalformedScore(t *testing.T) {
	scorer := &stubScorer{fn: func(q, a string) (models.AnswerFeedback, error) {
		if q == "q2" {
			return models.AnswerFeedback{}, ErrMalformedScore
		}
		return models.AnswerFeedback{Score: 4, Feedback: "good on " + q}, nil
	}}
	c := newTestController(&stubSource{}, scorer, &stubResumeEvaluator{})
	s := eligibleSession("pat", "DevOps Engineer")
	s.AskedQuestions = []string{"q1", "q2", "q3"}
	s.Answers = []models.QA{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}, {Question: "q3", Answer: "a3"}}

	total, feedback := c.EvaluateAll(context.Background(), s)

	require.Len(t, feedback, 3)
	assert.Equal(t, models.AnswerFeedback{Score: 4, Feedback: "good on q1"}, feedback[0])
	assert.Equal(t, models.AnswerFeedback{Score: 0, Feedback: "unable to evaluate reliably"}, feedback[1])
	assert.Equal(t, models.AnswerFeedback{Score: 4, Feedback: "good on q3"}, feedback[2])
	assert.Equal(t, 8, total)
	assert.Equal(t, feedback, s.Feedback)
}

func TestEvaluateAll_KeepsOrderUnderConcurrency(t *testing.T) {
	var inFlight, peak int32
	scorer := &stubScorer{fn: func(q, a string) (models.AnswerFeedback, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// later questions finish first
		time.Sleep(time.Duration(10-len(q)) * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return models.AnswerFeedback{Score: len(q) % 6, Feedback: q}, nil
	}}

	cfg := testInterviewConfig()
	cfg.ScoringConcurrency = 2
	c := NewSessionController(&stubResumeEvaluator{}, &stubClassifier{}, &stubSource{}, scorer, cfg, zap.NewNop())

	s := models.NewInterviewSession("quinn")
	for _, q := range []string{"a", "bb", "ccc", "dddd"} {
		s.AskedQuestions = append(s.AskedQuestions, q)
		s.Answers = append(s.Answers, models.QA{Question: q, Answer: "x"})
	}

	total, feedback := c.EvaluateAll(context.Background(), s)

	require.Len(t, feedback, 4)
	for i, q := range []string{"a", "bb", "ccc", "dddd"} {
		assert.Equal(t, q, feedback[i].Feedback)
	}
	assert.Equal(t, 1+2+3+4, total)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestEvaluateAll_RescoresEveryCall(t *testing.T) {
	scorer := constantScorer(3)
	c := newTestController(&stubSource{}, scorer, &stubResumeEvaluator{})
	s := models.NewInterviewSession("rae")
	s.AskedQuestions = []string{"q1"}
	s.Answers = []models.QA{{Question: "q1", Answer: "a"}}

	t1, _ := c.EvaluateAll(context.Background(), s)
	t2, _ := c.EvaluateAll(context.Background(), s)

	assert.Equal(t, t1, t2)
	assert.Equal(t, 2, scorer.calls)
}

func TestEvaluateAll_Empty(t *testing.T) {
	c := NewSessionController(&stubResumeEvaluator{}, &stubClassifier{}, &stubSource{}, constantScorer(5), config.InterviewConfig{MaxQuestions: 3}, zap.NewNop())
	s := models.NewInterviewSession("sam")

	total, feedback := c.EvaluateAll(context.Background(), s)
	assert.Zero(t, total)
	assert.Empty(t, feedback)
}
