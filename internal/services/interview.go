package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/metrics"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

const (
	ExhaustedMessage = "No more questions available for your role."
	CompletedMessage = "Interview completed. Session saved."

	StatusPass       = "pass"
	StatusFail       = "fail"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	NextStepInterview = "interview"
	NextStepRetry     = "retry"
)

// InterviewService is what the transport talks to. It loads a session,
// runs the controller under a per-candidate lock and saves the result.
type InterviewService interface {
	StartWithResume(ctx context.Context, candidateID, resumePath, role, experience string) (*models.ResumeResponse, error)
	Answer(ctx context.Context, candidateID, answer string) (*models.AnswerResponse, error)
	History(ctx context.Context, candidateID string) (*models.HistoryResponse, error)
	Session(ctx context.Context, candidateID string) (*models.InterviewSession, error)
	SampleQuestion(ctx context.Context, role string) (string, bool)
	Result(ctx context.Context, recordID uuid.UUID) (*models.ResultResponse, error)
}

type interviewService struct {
	store      repositories.SessionStore
	repo       repositories.InterviewRepository
	controller SessionController
	classifier DomainClassifier
	worker     Worker
	cfg        config.InterviewConfig
	locks      *keyedMutex
	log        *zap.Logger
}

func NewInterviewService(
	store repositories.SessionStore,
	repo repositories.InterviewRepository,
	controller SessionController,
	classifier DomainClassifier,
	worker Worker,
	cfg config.InterviewConfig,
	log *zap.Logger,
) InterviewService {
	return &interviewService{
		store:      store,
		repo:       repo,
		controller: controller,
		classifier: classifier,
		worker:     worker,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		log:        log.Named("interview"),
	}
}

// StartWithResume screens a resume and, when it clears the gate, issues the
// first question. A candidate with a previous attempt starts over.
func (s *interviewService) StartWithResume(ctx context.Context, candidateID, resumePath, role, experience string) (*models.ResumeResponse, error) {
	unlock := s.locks.Lock(candidateID)
	defer unlock()

	session, err := s.store.GetOrCreate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if session.HasHistory() || session.IsPersisted {
		s.log.Info("starting a fresh attempt", zap.String("candidate_id", candidateID))
		session.ResetAttempt()
	}

	result, err := s.controller.SubmitResume(ctx, session, resumePath, role, experience)
	if err != nil {
		return nil, err
	}

	resp := &models.ResumeResponse{
		CandidateID: candidateID,
		Status:      StatusFail,
		Score:       result.Score,
		Feedback:    result.Feedback,
		NextStep:    NextStepRetry,
	}

	if s.controller.IsInterviewEligible(session) {
		resp.Status = StatusPass
		resp.NextStep = NextStepInterview

		question, ok, err := s.controller.NextQuestion(ctx, session)
		if err != nil {
			return nil, err
		}
		if ok {
			resp.Question = question
		} else {
			resp.Message = ExhaustedMessage
		}
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	return resp, nil
}

// Answer records the answer to the pending question, then either issues the
// next one or closes the interview and queues it for scoring.
func (s *interviewService) Answer(ctx context.Context, candidateID, answer string) (*models.AnswerResponse, error) {
	unlock := s.locks.Lock(candidateID)
	defer unlock()

	session, err := s.store.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	if err := s.controller.SubmitAnswer(session, answer); err != nil {
		return nil, err
	}

	resp := &models.AnswerResponse{Status: StatusInProgress}

	if len(session.AskedQuestions) >= s.cfg.MaxQuestions {
		resp.Status = StatusCompleted
		resp.Message = CompletedMessage
	} else {
		question, ok, err := s.controller.NextQuestion(ctx, session)
		if err != nil {
			return nil, err
		}
		if ok {
			resp.NextQuestion = question
		} else {
			resp.Status = StatusCompleted
			resp.Message = ExhaustedMessage + " " + CompletedMessage
		}
	}

	if resp.Status == StatusCompleted {
		recordID, err := s.persist(ctx, session)
		if err != nil {
			return nil, err
		}
		resp.EvaluationID = recordID
	}

	resp.QuestionCount = len(session.AskedQuestions)

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}

	return resp, nil
}

// persist writes the finished attempt once and hands it to the worker.
func (s *interviewService) persist(ctx context.Context, session *models.InterviewSession) (string, error) {
	if session.IsPersisted {
		return session.RecordID, nil
	}

	if session.Domain == "" {
		domain, err := s.classifier.Classify(ctx, session.Role)
		if err != nil {
			s.log.Warn("persisting interview without a domain",
				zap.String("candidate_id", session.CandidateID),
				zap.Error(err),
			)
		}
		session.Domain = domain
	}

	record, err := recordFromSession(session)
	if err != nil {
		return "", err
	}

	if err := s.repo.Create(record); err != nil {
		return "", err
	}

	session.IsPersisted = true
	session.RecordID = record.ID.String()
	metrics.InterviewsPersisted.Inc()

	s.log.Info("interview persisted",
		zap.String("candidate_id", session.CandidateID),
		zap.Stringer("record_id", record.ID),
		zap.String("domain", session.Domain),
		zap.Int("answers", len(session.Answers)),
	)

	if s.worker != nil {
		s.worker.EnqueueJob(record.ID)
	}

	return session.RecordID, nil
}

func (s *interviewService) History(ctx context.Context, candidateID string) (*models.HistoryResponse, error) {
	session, err := s.store.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	return &models.HistoryResponse{
		CandidateID: candidateID,
		Questions:   session.AskedQuestions,
		Answers:     session.Answers,
	}, nil
}

func (s *interviewService) Session(ctx context.Context, candidateID string) (*models.InterviewSession, error) {
	return s.store.Get(ctx, candidateID)
}

// SampleQuestion picks the top question for a role without touching any
// session.
func (s *interviewService) SampleQuestion(ctx context.Context, role string) (string, bool) {
	question, _, ok := s.controller.SelectQuestion(ctx, role, nil)
	return question, ok
}

func (s *interviewService) Result(_ context.Context, recordID uuid.UUID) (*models.ResultResponse, error) {
	record, err := s.repo.FindByID(recordID)
	if err != nil {
		return nil, err
	}

	var answers []models.QA
	if err := json.Unmarshal(record.Answers, &answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	resp := &models.ResultResponse{
		ID:           record.ID.String(),
		Status:       string(record.EvaluationStatus),
		CandidateID:  record.CandidateID,
		MaxScore:     MaxScore(len(answers)),
		ErrorMessage: record.ErrorMessage,
	}

	if record.EvaluationStatus == models.EvaluationCompleted {
		resp.TotalScore = record.TotalScore
		if err := json.Unmarshal(record.Feedback, &resp.Feedback); err != nil {
			return nil, fmt.Errorf("failed to decode feedback: %w", err)
		}
	}

	return resp, nil
}

// keyedMutex hands out one mutex per key and forgets it once no caller
// holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
