package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/questionbank"
	"alfredoptarigan/mock-interview/internal/services"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		bankFile string
		recreate bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed the interview question bank into Qdrant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bank, err := loadBank(bankFile)
			if err != nil {
				return err
			}

			return run(ctx, config.Load(), bank, recreate)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&bankFile, "file", "", "question bank YAML (defaults to the embedded bank)")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop and recreate the collection before ingesting")

	return cmd
}

func loadBank(path string) (*questionbank.Bank, error) {
	if path == "" {
		return questionbank.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	return questionbank.Load(data)
}

func run(ctx context.Context, cfg *config.Config, bank *questionbank.Bank, recreate bool) error {
	log, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini: %w", err)
	}

	source, err := services.NewQdrantQuestionSource(cfg.Qdrant, gemini, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Qdrant: %w", err)
	}
	defer source.Close()

	if err := source.InitCollection(ctx, recreate); err != nil {
		return err
	}

	questions := bank.Questions()
	var ingested, failed int

	for _, q := range questions {
		if err := ctx.Err(); err != nil {
			return err
		}

		embedding, err := gemini.GenerateEmbedding(ctx, q.Text)
		if err != nil {
			log.Error("failed to embed question", zap.String("domain", q.Domain), zap.String("question", logger.Truncate(q.Text, 60)), zap.Error(err))
			failed++
			continue
		}

		if err := source.UpsertQuestion(ctx, q.Text, q.Domain, embedding); err != nil {
			log.Error("failed to upsert question", zap.String("domain", q.Domain), zap.String("question", logger.Truncate(q.Text, 60)), zap.Error(err))
			failed++
			continue
		}

		ingested++
		log.Debug("question ingested", zap.String("domain", q.Domain), zap.String("id", services.QuestionPointID(q.Text)))
	}

	log.Info("ingestion complete",
		zap.String("collection", cfg.Qdrant.Collection),
		zap.Int("ingested", ingested),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return fmt.Errorf("%d of %d questions failed to ingest", failed, len(questions))
	}
	return nil
}
