package models

import "time"

// QA pairs an issued question with the candidate's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AnswerFeedback is the scorer's verdict for one answer. Score is within 0-5.
type AnswerFeedback struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// InterviewSession is the live state of one candidate attempt. It is owned by
// whoever fetched it from the session store and holds no locks of its own.
type InterviewSession struct {
	CandidateID     string           `json:"candidate_id"`
	Role            string           `json:"role"`
	Experience      string           `json:"experience"`
	Domain          string           `json:"domain,omitempty"`
	ResumeScore     *int             `json:"resume_score,omitempty"`
	ResumeFeedback  string           `json:"resume_feedback,omitempty"`
	AskedQuestions  []string         `json:"asked_questions"`
	Answers         []QA             `json:"answers"`
	PendingQuestion string           `json:"pending_question,omitempty"`
	Feedback        []AnswerFeedback `json:"feedback"`
	IsPersisted     bool             `json:"is_persisted"`
	RecordID        string           `json:"record_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func NewInterviewSession(candidateID string) *InterviewSession {
	now := time.Now()
	return &InterviewSession{
		CandidateID:    candidateID,
		AskedQuestions: []string{},
		Answers:        []QA{},
		Feedback:       []AnswerFeedback{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsInterviewEligible reports whether the resume score clears the gate.
func (s *InterviewSession) IsInterviewEligible(threshold int) bool {
	return s.ResumeScore != nil && *s.ResumeScore >= threshold
}

// HasPendingQuestion is true between an issued question and its answer.
func (s *InterviewSession) HasPendingQuestion() bool {
	return s.PendingQuestion != ""
}

// IsComplete reports whether all maxQuestions have been asked and answered.
func (s *InterviewSession) IsComplete(maxQuestions int) bool {
	return len(s.AskedQuestions) >= maxQuestions && !s.HasPendingQuestion()
}

// HasHistory is true once any question has been issued in this attempt.
func (s *InterviewSession) HasHistory() bool {
	return len(s.AskedQuestions) > 0 || len(s.Answers) > 0
}

// ResetAttempt clears everything produced by a previous attempt while keeping
// the candidate identity.
func (s *InterviewSession) ResetAttempt() {
	s.Role = ""
	s.Experience = ""
	s.Domain = ""
	s.ResumeScore = nil
	s.ResumeFeedback = ""
	s.AskedQuestions = []string{}
	s.Answers = []QA{}
	s.PendingQuestion = ""
	s.Feedback = []AnswerFeedback{}
	s.IsPersisted = false
	s.RecordID = ""
	s.UpdatedAt = time.Now()
}

// Status names the state machine position of the session.
func (s *InterviewSession) Status(threshold, maxQuestions int) SessionStatus {
	switch {
	case s.IsPersisted:
		return StatusPersisted
	case s.ResumeScore == nil:
		return StatusCreated
	case !s.IsInterviewEligible(threshold):
		return StatusRejected
	case s.IsComplete(maxQuestions):
		return StatusInterviewComplete
	case len(s.AskedQuestions) == 0:
		return StatusResumeEvaluated
	default:
		return StatusInterviewInProgress
	}
}

type SessionStatus string

const (
	StatusCreated             SessionStatus = "created"
	StatusResumeEvaluated     SessionStatus = "resume_evaluated"
	StatusRejected            SessionStatus = "rejected"
	StatusInterviewInProgress SessionStatus = "interview_in_progress"
	StatusInterviewComplete   SessionStatus = "interview_complete"
	StatusPersisted           SessionStatus = "persisted"
)
