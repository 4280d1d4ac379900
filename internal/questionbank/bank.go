// Package questionbank holds the seed interview questions shipped with the
// service. The same bank feeds the ingest command and the offline question
// source.
package questionbank

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/mock-interview/internal/models"
)

//go:embed questions.yaml
var defaultBank []byte

type Question struct {
	Text   string
	Domain string
}

type Bank struct {
	byDomain map[string][]string
}

// Load parses a domain -> questions YAML document. Unknown domains, blank
// questions and duplicate texts are rejected.
func Load(data []byte) (*Bank, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	b := &Bank{byDomain: make(map[string][]string, len(raw))}
	seen := make(map[string]string)

	for domain, questions := range raw {
		tag := models.NormalizeTag(domain)
		if !models.IsKnownDomain(tag) {
			return nil, fmt.Errorf("unknown domain %q in question bank", domain)
		}

		for _, q := range questions {
			q = strings.TrimSpace(q)
			if q == "" {
				return nil, fmt.Errorf("empty question in domain %q", tag)
			}
			if prev, dup := seen[q]; dup {
				return nil, fmt.Errorf("duplicate question %q in %s and %s", q, prev, tag)
			}
			seen[q] = tag
			b.byDomain[tag] = append(b.byDomain[tag], q)
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	return b, nil
}

// Default returns the embedded bank.
func Default() (*Bank, error) {
	return Load(defaultBank)
}

// Questions lists every question, grouped by domain in alphabetical order
// and in file order within a domain.
func (b *Bank) Questions() []Question {
	domains := make([]string, 0, len(b.byDomain))
	for d := range b.byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var out []Question
	for _, d := range domains {
		for _, q := range b.byDomain[d] {
			out = append(out, Question{Text: q, Domain: d})
		}
	}
	return out
}

func (b *Bank) Domain(domain string) []string {
	return b.byDomain[domain]
}

// StaticSource serves questions straight from a Bank. Distance follows file
// order so the first listed question ranks best.
type StaticSource struct {
	bank *Bank
}

func NewStaticSource(bank *Bank) *StaticSource {
	return &StaticSource{bank: bank}
}

func (s *StaticSource) Search(_ context.Context, domain string, exclude []string, k int) ([]models.QuestionCandidate, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, q := range exclude {
		skip[q] = struct{}{}
	}

	questions := s.bank.Domain(domain)
	out := make([]models.QuestionCandidate, 0, min(k, len(questions)))

	for i, q := range questions {
		if len(out) == k {
			break
		}
		if _, ok := skip[q]; ok {
			continue
		}
		out = append(out, models.QuestionCandidate{
			Text:     q,
			Domain:   domain,
			Distance: float64(i) / float64(len(questions)),
		})
	}

	return out, nil
}
