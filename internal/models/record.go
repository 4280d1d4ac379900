package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EvaluationStatus string

const (
	EvaluationQueued     EvaluationStatus = "queued"
	EvaluationProcessing EvaluationStatus = "processing"
	EvaluationCompleted  EvaluationStatus = "completed"
	EvaluationFailed     EvaluationStatus = "failed"
)

// InterviewRecord is a completed interview written to durable storage. The
// JSON columns keep the same shape as the live session fields.
type InterviewRecord struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID      string           `gorm:"type:text;not null;index" json:"candidate_id"`
	Role             string           `gorm:"type:text" json:"role"`
	Experience       string           `gorm:"type:text" json:"experience"`
	Domain           string           `gorm:"type:text;index" json:"domain"`
	ResumeScore      int              `json:"resume_score"`
	AskedQuestions   datatypes.JSON   `json:"asked_questions"`
	Answers          datatypes.JSON   `json:"answers"`
	Feedback         datatypes.JSON   `json:"feedback"`
	TotalScore       *int             `json:"total_score,omitempty"`
	EvaluationStatus EvaluationStatus `gorm:"type:text;not null;default:'queued';index" json:"evaluation_status"`
	ErrorMessage     *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt        time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (InterviewRecord) TableName() string {
	return "interview_sessions"
}
