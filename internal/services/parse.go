package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"alfredoptarigan/mock-interview/internal/models"
)

const UnreliableFeedback = "unable to evaluate reliably"

// ParseStage names which step of ParseResumeScore produced the score.
type ParseStage string

const (
	StageStructured ParseStage = "structured"
	StageText       ParseStage = "text"
	StageDefault    ParseStage = "default"
)

var scorePattern = regexp.MustCompile(`(?i)score\s*[:\-]?\s*(\d+)`)

type scorePayload struct {
	Score    *json.Number `json:"score"`
	Feedback string       `json:"feedback"`
}

// ResumeScore is a resume evaluation reduced to a gateable number plus the
// narrative to show the candidate.
type ResumeScore struct {
	Score    int
	Feedback string
	Stage    ParseStage
}

// ParseResumeScore reads a resume evaluator reply. It tries a JSON object
// first, then the first integer after the word "score", and settles on 0.
// The score is clamped to 0-100.
func ParseResumeScore(raw string) ResumeScore {
	if p, ok := decodeScorePayload(raw); ok {
		if n, ok := payloadInt(p); ok {
			feedback := strings.TrimSpace(p.Feedback)
			if feedback == "" {
				feedback = strings.TrimSpace(raw)
			}
			return ResumeScore{Score: clamp(n, 0, 100), Feedback: feedback, Stage: StageStructured}
		}
	}

	if m := scorePattern.FindStringSubmatch(raw); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return ResumeScore{Score: clamp(n, 0, 100), Feedback: strings.TrimSpace(raw), Stage: StageText}
		}
	}

	return ResumeScore{Score: 0, Feedback: strings.TrimSpace(raw), Stage: StageDefault}
}

// ParseAnswerFeedback reads an answer scorer reply. Anything that is not a
// JSON object with an integer score in 0-5 yields ok=false.
func ParseAnswerFeedback(raw string) (models.AnswerFeedback, bool) {
	p, ok := decodeScorePayload(raw)
	if !ok {
		return models.AnswerFeedback{}, false
	}

	n, ok := payloadInt(p)
	if !ok || n < 0 || n > 5 {
		return models.AnswerFeedback{}, false
	}

	return models.AnswerFeedback{Score: n, Feedback: strings.TrimSpace(p.Feedback)}, true
}

// FallbackFeedback is recorded for an answer the scorer could not grade.
func FallbackFeedback() models.AnswerFeedback {
	return models.AnswerFeedback{Score: 0, Feedback: UnreliableFeedback}
}

func decodeScorePayload(raw string) (scorePayload, bool) {
	var p scorePayload

	dec := json.NewDecoder(strings.NewReader(extractJSON(raw)))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return p, false
	}
	return p, p.Score != nil
}

func payloadInt(p scorePayload) (int, bool) {
	if p.Score == nil {
		return 0, false
	}
	if n, err := p.Score.Int64(); err == nil {
		return int(n), true
	}
	f, err := p.Score.Float64()
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
