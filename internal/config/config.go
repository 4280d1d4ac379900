package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	QuestionSourceQdrant = "qdrant"
	QuestionSourceStatic = "static"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Qdrant         QdrantConfig
	Gemini         GeminiConfig
	Storage        StorageConfig
	Worker         WorkerConfig
	Interview      InterviewConfig
	SessionStore   string
	QuestionSource string
}

type ServerConfig struct {
	Port     string
	Env      string
	LogJSON  bool
	LogDebug bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
	MaxRetries int
	Timeout    time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
	StaleAfter   time.Duration
}

// InterviewConfig holds the knobs of the interview flow itself.
type InterviewConfig struct {
	MaxQuestions       int
	GateThreshold      int
	CandidatePool      int
	ScoringConcurrency int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogJSON:  getEnvAsBool("LOG_JSON", false),
			LogDebug: getEnvAsBool("LOG_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mock_interview"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			SessionTTL: getEnvAsDuration("SESSION_TTL", "24h"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "interview_questions"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", "30s"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./data/resumes"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
			StaleAfter:   getEnvAsDuration("WORKER_STALE_AFTER", "15m"),
		},
		Interview: InterviewConfig{
			MaxQuestions:       getEnvAsInt("INTERVIEW_MAX_QUESTIONS", 3),
			GateThreshold:      getEnvAsInt("INTERVIEW_GATE_THRESHOLD", 70),
			CandidatePool:      getEnvAsInt("INTERVIEW_CANDIDATE_POOL", 5),
			ScoringConcurrency: getEnvAsInt("INTERVIEW_SCORING_CONCURRENCY", 3),
		},
		SessionStore:   strings.ToLower(getEnv("SESSION_STORE", SessionStoreRedis)),
		QuestionSource: strings.ToLower(getEnv("QUESTION_SOURCE", QuestionSourceQdrant)),
	}
}

// Validate reports the first setting that would break the interview flow.
func (c *Config) Validate() error {
	if c.Interview.MaxQuestions <= 0 {
		return fmt.Errorf("INTERVIEW_MAX_QUESTIONS must be positive, got %d", c.Interview.MaxQuestions)
	}
	if c.Interview.GateThreshold < 0 || c.Interview.GateThreshold > 100 {
		return fmt.Errorf("INTERVIEW_GATE_THRESHOLD must be within 0-100, got %d", c.Interview.GateThreshold)
	}
	if c.Interview.CandidatePool < 1 {
		return fmt.Errorf("INTERVIEW_CANDIDATE_POOL must be at least 1, got %d", c.Interview.CandidatePool)
	}
	if c.Interview.ScoringConcurrency < 1 {
		return fmt.Errorf("INTERVIEW_SCORING_CONCURRENCY must be at least 1, got %d", c.Interview.ScoringConcurrency)
	}
	switch c.SessionStore {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %s", c.SessionStore)
	}
	switch c.QuestionSource {
	case QuestionSourceQdrant, QuestionSourceStatic:
	default:
		return fmt.Errorf("unsupported QUESTION_SOURCE: %s", c.QuestionSource)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
