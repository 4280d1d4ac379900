package models

type ResumeResponse struct {
	CandidateID string `json:"candidate_id"`
	Status      string `json:"status"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	NextStep    string `json:"next_step"`
	Question    string `json:"question,omitempty"`
	Message     string `json:"message,omitempty"`
}

type AnswerRequest struct {
	CandidateID string `json:"candidate_id" form:"candidate_id"`
	Answer      string `json:"answer" form:"answer"`
}

type AnswerResponse struct {
	Status        string `json:"status"`
	NextQuestion  string `json:"next_question,omitempty"`
	QuestionCount int    `json:"question_count"`
	Message       string `json:"message,omitempty"`
	EvaluationID  string `json:"evaluation_id,omitempty"`
}

type HistoryResponse struct {
	CandidateID string   `json:"candidate_id"`
	Questions   []string `json:"questions"`
	Answers     []QA     `json:"answers"`
}

type ResultResponse struct {
	ID           string           `json:"id"`
	Status       string           `json:"status"`
	CandidateID  string           `json:"candidate_id"`
	TotalScore   *int             `json:"total_score,omitempty"`
	MaxScore     int              `json:"max_score"`
	Feedback     []AnswerFeedback `json:"feedback,omitempty"`
	ErrorMessage *string          `json:"error_message,omitempty"`
}

type ProgressResponse struct {
	CandidateID string  `json:"candidate_id"`
	Domain      string  `json:"domain"`
	Report      string  `json:"report"`
	Percentage  float64 `json:"percentage"`
	Percentile  *int    `json:"percentile,omitempty"`
	Trend       string  `json:"trend,omitempty"`
}

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	CandidateID string  `json:"candidate_id"`
	Percentage  float64 `json:"percentage"`
	Percentile  int     `json:"percentile"`
}

type LeaderboardResponse struct {
	Domain  string             `json:"domain"`
	Entries []LeaderboardEntry `json:"entries"`
}

type AskRequest struct {
	CandidateID string `json:"candidate_id"`
	Role        string `json:"role"`
	Message     string `json:"message"`
}

type AskResponse struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
	Data   any    `json:"data,omitempty"`
}
