package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"alfredoptarigan/mock-interview/internal/metrics"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

// EvaluatorService scores a persisted interview and writes the result back.
type EvaluatorService interface {
	EvaluateInterview(ctx context.Context, recordID uuid.UUID) error
}

type evaluatorService struct {
	repo       repositories.InterviewRepository
	controller SessionController
	log        *zap.Logger
}

func NewEvaluatorService(repo repositories.InterviewRepository, controller SessionController, log *zap.Logger) EvaluatorService {
	return &evaluatorService{
		repo:       repo,
		controller: controller,
		log:        log.Named("evaluator"),
	}
}

func (e *evaluatorService) EvaluateInterview(ctx context.Context, recordID uuid.UUID) error {
	claimed, err := e.repo.ClaimPending(recordID)
	if err != nil {
		return err
	}
	if !claimed {
		e.log.Debug("job already claimed", zap.Stringer("record_id", recordID))
		return nil
	}

	record, err := e.repo.FindByID(recordID)
	if err != nil {
		e.fail(recordID, err)
		return fmt.Errorf("failed to get interview record: %w", err)
	}

	session, err := sessionFromRecord(record)
	if err != nil {
		e.fail(recordID, err)
		return err
	}

	total, feedback := e.controller.EvaluateAll(ctx, session)

	encoded, err := json.Marshal(feedback)
	if err != nil {
		e.fail(recordID, err)
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	if err := e.repo.UpdateResult(recordID, total, datatypes.JSON(encoded)); err != nil {
		metrics.EvaluationJobs.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to save results: %w", err)
	}

	metrics.EvaluationJobs.WithLabelValues("completed").Inc()
	e.log.Info("interview evaluated",
		zap.Stringer("record_id", recordID),
		zap.String("candidate_id", record.CandidateID),
		zap.String("score", describeScore(total, len(feedback))),
	)

	return nil
}

func (e *evaluatorService) fail(recordID uuid.UUID, cause error) {
	metrics.EvaluationJobs.WithLabelValues("failed").Inc()
	if err := e.repo.UpdateError(recordID, cause.Error()); err != nil {
		e.log.Error("failed to record evaluation error", zap.Stringer("record_id", recordID), zap.Error(err))
	}
}

func sessionFromRecord(record *models.InterviewRecord) (*models.InterviewSession, error) {
	session := models.NewInterviewSession(record.CandidateID)
	session.Role = record.Role
	session.Experience = record.Experience
	session.Domain = record.Domain

	if len(record.AskedQuestions) > 0 {
		if err := json.Unmarshal(record.AskedQuestions, &session.AskedQuestions); err != nil {
			return nil, fmt.Errorf("failed to decode asked questions: %w", err)
		}
	}
	if len(record.Answers) > 0 {
		if err := json.Unmarshal(record.Answers, &session.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}

	return session, nil
}

func recordFromSession(s *models.InterviewSession) (*models.InterviewRecord, error) {
	asked, err := json.Marshal(s.AskedQuestions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode asked questions: %w", err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	resumeScore := 0
	if s.ResumeScore != nil {
		resumeScore = *s.ResumeScore
	}

	return &models.InterviewRecord{
		ID:               uuid.New(),
		CandidateID:      s.CandidateID,
		Role:             s.Role,
		Experience:       s.Experience,
		Domain:           s.Domain,
		ResumeScore:      resumeScore,
		AskedQuestions:   datatypes.JSON(asked),
		Answers:          datatypes.JSON(answers),
		Feedback:         datatypes.JSON("[]"),
		EvaluationStatus: models.EvaluationQueued,
	}, nil
}
