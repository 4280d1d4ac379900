package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(recordID uuid.UUID)
}

type worker struct {
	repo         repositories.InterviewRepository
	evaluator    EvaluatorService
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	staleAfter   time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	log          *zap.Logger
}

func NewWorker(
	repo repositories.InterviewRepository,
	evaluator EvaluatorService,
	concurrency int,
	pollInterval time.Duration,
	staleAfter time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}

	return &worker{
		repo:         repo,
		evaluator:    evaluator,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		staleAfter:   staleAfter,
		stopChan:     make(chan struct{}),
		log:          log.Named("worker"),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("worker started", zap.Int("concurrency", w.concurrency), zap.Duration("poll_interval", w.pollInterval))
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
	w.wg.Wait()
	w.log.Info("worker stopped")
}

// EnqueueJob implements Worker. A full queue drops the id; the poller picks
// the record up later since it stays queued in the database.
func (w *worker) EnqueueJob(recordID uuid.UUID) {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue job", zap.Stringer("record_id", recordID))
	case w.jobQueue <- recordID:
		w.log.Debug("job enqueued", zap.Stringer("record_id", recordID))
	default:
		w.log.Warn("job queue full, leaving job to poller", zap.Stringer("record_id", recordID))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case recordID := <-w.jobQueue:
			if err := w.evaluator.EvaluateInterview(ctx, recordID); err != nil {
				w.log.Error("job failed", zap.Int("worker", workerID), zap.Stringer("record_id", recordID), zap.Error(err))
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			reclaimed, err := w.repo.ReclaimStale(w.staleAfter)
			if err != nil {
				w.log.Warn("failed to reclaim stale jobs", zap.Error(err))
			} else if reclaimed > 0 {
				w.log.Warn("reclaimed stale jobs", zap.Int64("count", reclaimed))
			}

			pendingJobs, err := w.repo.FindPendingJobs(10)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
