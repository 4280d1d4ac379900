package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

// QuestionSource returns ranked interview questions for a domain, best match
// first, skipping any text in exclude.
type QuestionSource interface {
	Search(ctx context.Context, domain string, exclude []string, k int) ([]models.QuestionCandidate, error)
}

// QdrantQuestionSource is the vector-index backed QuestionSource. It also owns
// the collection lifecycle used by the ingest command.
type QdrantQuestionSource interface {
	QuestionSource
	InitCollection(ctx context.Context, recreate bool) error
	UpsertQuestion(ctx context.Context, text, domain string, embedding []float32) error
	Close() error
}

const (
	payloadQuestion = "question"
	payloadDomain   = "domain"
)

// questionNamespace seeds deterministic point ids so re-ingesting the same
// question overwrites its point.
var questionNamespace = uuid.MustParse("6f1c1d4e-8a52-4a8e-9a51-2b0f3f7d6c11")

func QuestionPointID(text string) string {
	return uuid.NewSHA1(questionNamespace, []byte(text)).String()
}

type qdrantQuestionSource struct {
	client         *qdrant.Client
	gemini         GeminiService
	collectionName string
	vectorSize     uint64
	log            *zap.Logger

	mu          sync.RWMutex
	domainQuery map[string][]float32
}

func NewQdrantQuestionSource(cfg config.QdrantConfig, gemini GeminiService, log *zap.Logger) (QdrantQuestionSource, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantQuestionSource{
		client:         client,
		gemini:         gemini,
		collectionName: cfg.Collection,
		vectorSize:     cfg.VectorSize,
		log:            log.Named("qdrant"),
		domainQuery:    make(map[string][]float32),
	}, nil
}

func (q *qdrantQuestionSource) Close() error {
	return q.client.Close()
}

func (q *qdrantQuestionSource) InitCollection(ctx context.Context, recreate bool) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists && recreate {
		if err := q.client.DeleteCollection(ctx, q.collectionName); err != nil {
			return fmt.Errorf("failed to drop collection: %w", err)
		}
		q.log.Info("collection dropped", zap.String("collection", q.collectionName))
		exists = false
	}

	if exists {
		q.log.Debug("collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	_, err = q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collectionName,
		FieldName:      payloadDomain,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("failed to index domain field: %w", err)
	}

	q.log.Info("collection created", zap.String("collection", q.collectionName))
	return nil
}

func (q *qdrantQuestionSource) UpsertQuestion(ctx context.Context, text, domain string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(QuestionPointID(text)),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadQuestion: text,
			payloadDomain:   domain,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert question: %w", err)
	}

	return nil
}

// Search embeds the domain tag as the query, filters on the domain payload
// and excludes already asked texts server side. Distance is 1 - cosine score.
func (q *qdrantQuestionSource) Search(ctx context.Context, domain string, exclude []string, k int) ([]models.QuestionCandidate, error) {
	embedding, err := q.queryVector(ctx, domain)
	if err != nil {
		return nil, err
	}

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch(payloadDomain, domain),
		},
	}
	if len(exclude) > 0 {
		filter.MustNot = []*qdrant.Condition{
			qdrant.NewMatchKeywords(payloadQuestion, exclude...),
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search questions: %w", err)
	}

	candidates := make([]models.QuestionCandidate, 0, len(points))
	for _, point := range points {
		c := models.QuestionCandidate{Distance: 1 - float64(point.Score)}

		if v, ok := point.Payload[payloadQuestion]; ok {
			c.Text = v.GetStringValue()
		}
		if v, ok := point.Payload[payloadDomain]; ok {
			c.Domain = models.NormalizeTag(v.GetStringValue())
		}
		if c.Text == "" {
			continue
		}

		candidates = append(candidates, c)
	}

	return candidates, nil
}

func (q *qdrantQuestionSource) queryVector(ctx context.Context, domain string) ([]float32, error) {
	q.mu.RLock()
	v, ok := q.domainQuery[domain]
	q.mu.RUnlock()
	if ok {
		return v, nil
	}

	v, err := q.gemini.GenerateEmbedding(ctx, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to embed domain query: %w", err)
	}

	q.mu.Lock()
	q.domainQuery[domain] = v
	q.mu.Unlock()

	return v, nil
}
