package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

const maxPerQuestion = 5

const (
	TrendImproved = "improved"
	TrendDeclined = "declined"

	NoHistoryMessage = "No prior interview sessions found."
)

// PeerRecord is one stored interview as seen by the progress engine. Records
// are expected oldest first and already restricted to a single domain.
type PeerRecord struct {
	CandidateID string
	Feedback    []byte
}

// ProgressReport is the structured form of a progress summary. Text holds
// the human readable rendering.
type ProgressReport struct {
	HasHistory         bool
	Total              float64
	MaxTotal           int
	Percentage         float64
	PreviousPercentage *float64
	Delta              float64
	Trend              string
	Peers              int
	Rank               int
	Percentile         *int
	Text               string
}

// averageScore decodes a feedback list and averages its scores. Anything
// undecodable averages to 0.
func averageScore(raw []byte) float64 {
	var items []struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return 0
	}

	var sum float64
	for _, it := range items {
		sum += it.Score
	}
	return sum / float64(len(items))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func percentageOf(avg float64, numQuestions int) float64 {
	total := round2(avg * float64(numQuestions))
	return round2(total / float64(maxPerQuestion*numQuestions) * 100)
}

// latestPerCandidate keeps each candidate's most recent positive average,
// in first-seen order.
func latestPerCandidate(population []PeerRecord) ([]string, map[string]float64) {
	var order []string
	latest := make(map[string]float64)

	for _, rec := range population {
		avg := averageScore(rec.Feedback)
		if avg <= 0 {
			continue
		}
		if _, ok := latest[rec.CandidateID]; !ok {
			order = append(order, rec.CandidateID)
		}
		latest[rec.CandidateID] = avg
	}

	return order, latest
}

// rankOf uses competition ranking: one plus the number of strictly better
// percentages, so equal percentages share the best rank.
func rankOf(pct float64, all []float64) int {
	rank := 1
	for _, p := range all {
		if p > pct {
			rank++
		}
	}
	return rank
}

func percentileOf(rank, peers int) int {
	return int(math.Round((1 - float64(rank-1)/float64(peers)) * 100))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ComputeProgress reports candidateID's latest score, the change since the
// previous attempt, and a percentile against every other candidate's latest
// attempt in the population. It never fails; malformed records are skipped.
func ComputeProgress(candidateID string, population []PeerRecord, numQuestions int) ProgressReport {
	var own []float64
	for _, rec := range population {
		if rec.CandidateID != candidateID {
			continue
		}
		if avg := averageScore(rec.Feedback); avg > 0 {
			own = append(own, avg)
		}
	}

	if len(own) == 0 {
		return ProgressReport{Text: NoHistoryMessage}
	}

	maxTotal := maxPerQuestion * numQuestions
	current := own[len(own)-1]

	r := ProgressReport{
		HasHistory: true,
		Total:      round2(current * float64(numQuestions)),
		MaxTotal:   maxTotal,
		Percentage: percentageOf(current, numQuestions),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your current score is %s/%d (%s%%).", formatNumber(r.Total), maxTotal, formatNumber(r.Percentage))

	if len(own) > 1 {
		prev := round2(own[len(own)-2]*float64(numQuestions)) / float64(maxTotal) * 100
		r.PreviousPercentage = &prev
		r.Delta = round2(r.Percentage - prev)
		r.Trend = TrendDeclined
		if r.Delta > 0 {
			r.Trend = TrendImproved
		}
		fmt.Fprintf(&b, "\n\nYou have %s by %s%% since your last interview.", r.Trend, formatNumber(math.Abs(r.Delta)))
	}

	order, latest := latestPerCandidate(population)
	all := make([]float64, 0, len(order))
	for _, id := range order {
		all = append(all, percentageOf(latest[id], numQuestions))
	}

	r.Peers = len(all)
	r.Rank = rankOf(r.Percentage, all)

	if r.Peers > 1 {
		p := percentileOf(r.Rank, r.Peers)
		r.Percentile = &p
		fmt.Fprintf(&b, "\n\nYou're in the top %d%% of candidates in the same domain.", p)
	} else {
		b.WriteString("\n\nYou are the first candidate in this domain, no peer comparison yet.")
	}

	r.Text = b.String()
	return r
}

// RankPopulation orders every candidate by their latest positive attempt,
// best first. Ties share a rank and are listed by candidate id.
func RankPopulation(population []PeerRecord, numQuestions int) []models.LeaderboardEntry {
	order, latest := latestPerCandidate(population)

	all := make([]float64, 0, len(order))
	entries := make([]models.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		pct := percentageOf(latest[id], numQuestions)
		all = append(all, pct)
		entries = append(entries, models.LeaderboardEntry{CandidateID: id, Percentage: pct})
	}

	for i := range entries {
		entries[i].Rank = rankOf(entries[i].Percentage, all)
		entries[i].Percentile = percentileOf(entries[i].Rank, len(all))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].CandidateID < entries[j].CandidateID
	})

	return entries
}

// ProgressService gathers the domain population from durable storage and
// feeds it to the progress engine.
type ProgressService interface {
	Progress(ctx context.Context, candidateID, role string) (*models.ProgressResponse, error)
	Leaderboard(ctx context.Context, role string, limit int) (*models.LeaderboardResponse, error)
}

type progressService struct {
	classifier   DomainClassifier
	repo         repositories.InterviewRepository
	numQuestions int
	log          *zap.Logger
}

func NewProgressService(classifier DomainClassifier, repo repositories.InterviewRepository, numQuestions int, log *zap.Logger) ProgressService {
	return &progressService{
		classifier:   classifier,
		repo:         repo,
		numQuestions: numQuestions,
		log:          log.Named("progress"),
	}
}

func (p *progressService) population(ctx context.Context, role string) (string, []PeerRecord, error) {
	domain, err := p.classifier.Classify(ctx, role)
	if err != nil {
		return "", nil, err
	}

	records, err := p.repo.FindCompletedByDomain(domain)
	if err != nil {
		return "", nil, err
	}

	population := make([]PeerRecord, 0, len(records))
	for _, rec := range records {
		population = append(population, PeerRecord{CandidateID: rec.CandidateID, Feedback: rec.Feedback})
	}

	return domain, population, nil
}

func (p *progressService) Progress(ctx context.Context, candidateID, role string) (*models.ProgressResponse, error) {
	domain, population, err := p.population(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load peer population: %w", err)
	}

	report := ComputeProgress(candidateID, population, p.numQuestions)
	p.log.Debug("progress computed",
		zap.String("candidate_id", candidateID),
		zap.String("domain", domain),
		zap.Int("peers", report.Peers),
	)

	return &models.ProgressResponse{
		CandidateID: candidateID,
		Domain:      domain,
		Report:      report.Text,
		Percentage:  report.Percentage,
		Percentile:  report.Percentile,
		Trend:       report.Trend,
	}, nil
}

func (p *progressService) Leaderboard(ctx context.Context, role string, limit int) (*models.LeaderboardResponse, error) {
	domain, population, err := p.population(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to load peer population: %w", err)
	}

	entries := RankPopulation(population, p.numQuestions)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return &models.LeaderboardResponse{Domain: domain, Entries: entries}, nil
}
