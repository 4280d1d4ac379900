package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

const (
	IntentInterview = "interview"
	IntentReflect   = "reflect"
	IntentAdmin     = "admin"

	leaderboardSize = 10
)

var ErrRoleRequired = errors.New("role is required")

type IntentClassifier interface {
	Classify(ctx context.Context, message string) (string, error)
}

type intentClassifier struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewIntentClassifier(gemini GeminiService, log *zap.Logger) IntentClassifier {
	return &intentClassifier{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		log:           log.Named("intent"),
	}
}

// Classify falls back to IntentInterview for any reply outside the three
// known intents.
func (c *intentClassifier) Classify(ctx context.Context, message string) (string, error) {
	raw, err := c.gemini.GenerateText(ctx, c.promptBuilder.BuildIntentPrompt(message), 0)
	if err != nil {
		return "", fmt.Errorf("failed to classify intent: %w", err)
	}

	switch intent := models.NormalizeTag(raw); intent {
	case IntentInterview, IntentReflect, IntentAdmin:
		return intent, nil
	default:
		c.log.Debug("unknown intent, defaulting to interview", zap.String("reply", raw))
		return IntentInterview, nil
	}
}

// AgentService answers free-form chat by routing it to the interview,
// progress or leaderboard views.
type AgentService interface {
	Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error)
}

type agentService struct {
	intents    IntentClassifier
	interviews InterviewService
	progress   ProgressService
	cfg        config.InterviewConfig
}

func NewAgentService(intents IntentClassifier, interviews InterviewService, progress ProgressService, cfg config.InterviewConfig) AgentService {
	return &agentService{
		intents:    intents,
		interviews: interviews,
		progress:   progress,
		cfg:        cfg,
	}
}

func (a *agentService) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	intent, err := a.intents.Classify(ctx, req.Message)
	if err != nil {
		return nil, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" && req.CandidateID != "" {
		if session, err := a.interviews.Session(ctx, req.CandidateID); err == nil {
			role = session.Role
		}
	}

	switch intent {
	case IntentReflect:
		if role == "" {
			return nil, ErrRoleRequired
		}
		report, err := a.progress.Progress(ctx, req.CandidateID, role)
		if err != nil {
			return nil, err
		}
		return &models.AskResponse{Intent: intent, Reply: report.Report, Data: report}, nil

	case IntentAdmin:
		if role == "" {
			return nil, ErrRoleRequired
		}
		board, err := a.progress.Leaderboard(ctx, role, leaderboardSize)
		if err != nil {
			return nil, err
		}
		reply := fmt.Sprintf("%d candidates ranked in %s.", len(board.Entries), board.Domain)
		return &models.AskResponse{Intent: intent, Reply: reply, Data: board}, nil

	default:
		return a.interviewStatus(ctx, req.CandidateID)
	}
}

func (a *agentService) interviewStatus(ctx context.Context, candidateID string) (*models.AskResponse, error) {
	resp := &models.AskResponse{Intent: IntentInterview}

	session, err := a.interviews.Session(ctx, candidateID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		resp.Reply = "Upload your resume to start a mock interview."
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	status := session.Status(a.cfg.GateThreshold, a.cfg.MaxQuestions)
	resp.Data = map[string]any{"status": status, "question_count": len(session.AskedQuestions)}

	switch status {
	case models.StatusInterviewInProgress:
		if session.HasPendingQuestion() {
			resp.Reply = "Your current question: " + session.PendingQuestion
		} else {
			resp.Reply = "Submit your answer to continue."
		}
	case models.StatusRejected:
		resp.Reply = "Your resume did not clear the screening. Improve it and upload again."
	case models.StatusPersisted, models.StatusInterviewComplete:
		resp.Reply = "Your interview is complete. Ask about your progress to see how you did."
	case models.StatusResumeEvaluated:
		resp.Reply = ExhaustedMessage
	default:
		resp.Reply = "Upload your resume to start a mock interview."
	}

	return resp, nil
}
