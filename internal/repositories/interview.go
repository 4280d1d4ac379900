package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/mock-interview/internal/models"
)

var ErrRecordNotFound = errors.New("interview record not found")

type InterviewRepository interface {
	Create(record *models.InterviewRecord) error
	FindByID(id uuid.UUID) (*models.InterviewRecord, error)
	ClaimPending(id uuid.UUID) (bool, error)
	ReclaimStale(olderThan time.Duration) (int64, error)
	UpdateResult(id uuid.UUID, totalScore int, feedback datatypes.JSON) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.InterviewRecord, error)
	FindCompletedByDomain(domain string) ([]models.InterviewRecord, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(record *models.InterviewRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.EvaluationStatus == "" {
		record.EvaluationStatus = models.EvaluationQueued
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create interview record: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindByID(id uuid.UUID) (*models.InterviewRecord, error) {
	var record models.InterviewRecord
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find interview record: %w", err)
	}
	return &record, nil
}

// ClaimPending moves a queued record to processing. It reports false when
// another worker got there first or the record is not queued.
func (r *interviewRepository) ClaimPending(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.InterviewRecord{}).
		Where("id = ? AND evaluation_status = ?", id, models.EvaluationQueued).
		Updates(map[string]interface{}{
			"evaluation_status": models.EvaluationProcessing,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim job: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// ReclaimStale puts processing records untouched for olderThan back in the
// queue. A worker that died mid-evaluation leaves its claim behind.
func (r *interviewRepository) ReclaimStale(olderThan time.Duration) (int64, error) {
	now := time.Now()
	result := r.db.Model(&models.InterviewRecord{}).
		Where("evaluation_status = ? AND updated_at < ?", models.EvaluationProcessing, now.Add(-olderThan)).
		Updates(map[string]interface{}{
			"evaluation_status": models.EvaluationQueued,
			"updated_at":        now,
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to reclaim stale jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *interviewRepository) UpdateResult(id uuid.UUID, totalScore int, feedback datatypes.JSON) error {
	return r.update(id, map[string]interface{}{
		"evaluation_status": models.EvaluationCompleted,
		"total_score":       totalScore,
		"feedback":          feedback,
		"error_message":     nil,
	}, "result")
}

func (r *interviewRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"evaluation_status": models.EvaluationFailed,
		"error_message":     errorMsg,
	}, "error")
}

func (r *interviewRepository) update(id uuid.UUID, updates map[string]interface{}, what string) error {
	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.InterviewRecord{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update %s: %w", what, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (r *interviewRepository) FindPendingJobs(limit int) ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord
	err := r.db.
		Where("evaluation_status = ?", models.EvaluationQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return records, nil
}

// FindCompletedByDomain returns every evaluated interview in domain, oldest
// first, so callers can pick a candidate's latest attempt by walking forward.
func (r *interviewRepository) FindCompletedByDomain(domain string) ([]models.InterviewRecord, error) {
	var records []models.InterviewRecord
	err := r.db.
		Where("domain = ? AND evaluation_status = ?", domain, models.EvaluationCompleted).
		Order("created_at ASC").
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find completed interviews: %w", err)
	}

	return records, nil
}
