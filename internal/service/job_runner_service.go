package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/engine"
	"github.com/ashgrove/schedcore/internal/models"
	"github.com/ashgrove/schedcore/pkg/jobs"
)

// jobStatusRepository persists the durable job record; the service's Redis
// cache mirrors current status so a status lookup never has to wait on
// the database while a job is running.
type jobStatusRepository interface {
	Create(ctx context.Context, job models.JobRow) error
	UpdateStatus(ctx context.Context, jobID string, status models.JobStatus, solveStatus string, objective *float64, jobErr *string) error
	Get(ctx context.Context, jobID string) (models.JobRow, error)
}

const jobCacheTTL = 24 * time.Hour

// JobRunnerConfig governs the worker pool backing asynchronous solves.
type JobRunnerConfig struct {
	jobs.QueueConfig
}

// JobRunnerService adapts the goroutine worker-pool queue into the
// DRAFT → GENERATING → (GENERATED | DRAFT) job status machine around calls
// to the scheduling service.
type JobRunnerService struct {
	queue      *jobs.Queue
	repo       jobStatusRepository
	cache      *redis.Client
	scheduling *SchedulingService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewJobRunnerService wires a JobRunnerService. A nil logger defaults to
// zap.NewNop(); a nil metrics collector is a documented no-op.
func NewJobRunnerService(
	repo jobStatusRepository,
	cache *redis.Client,
	scheduling *SchedulingService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg JobRunnerConfig,
) *JobRunnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &JobRunnerService{repo: repo, cache: cache, scheduling: scheduling, metrics: metrics, logger: logger}
	queueCfg := cfg.QueueConfig
	queueCfg.Logger = logger
	svc.queue = jobs.NewQueue("optimise", svc.handle, queueCfg)
	return svc
}

// Start begins worker consumption.
func (s *JobRunnerService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop cancels workers and waits for them to exit.
func (s *JobRunnerService) Stop() { s.queue.Stop() }

// jobPayload is the serialised argument carried on the queue.
type jobPayload struct {
	Request dto.OptimiseRequest `json:"request"`
	Options engine.Options      `json:"options"`
}

// Submit enqueues an asynchronous solve and returns its job id immediately
// with status DRAFT.
func (s *JobRunnerService) Submit(ctx context.Context, req dto.OptimiseRequest, opts engine.Options) (string, error) {
	jobID := uuid.NewString()
	if err := s.repo.Create(ctx, models.JobRow{ID: jobID, Status: models.JobDraft}); err != nil {
		return "", fmt.Errorf("create job record: %w", err)
	}
	s.setCachedStatus(ctx, jobID, models.JobDraft)

	if err := s.queue.Enqueue(jobs.Job{ID: jobID, Type: "optimise", Payload: jobPayload{Request: req, Options: opts}}); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

// Status reports a job's current status, preferring the Redis cache and
// falling back to the durable repository.
func (s *JobRunnerService) Status(ctx context.Context, jobID string) (models.JobRow, error) {
	if s.cache != nil {
		if cached, ok := s.cachedStatus(ctx, jobID); ok {
			return cached, nil
		}
	}
	return s.repo.Get(ctx, jobID)
}

func (s *JobRunnerService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(jobPayload)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload type %T", job.ID, job.Payload)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, models.JobGenerating, "", nil, nil); err != nil {
		s.logger.Warn("failed to mark job generating", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.setCachedStatus(ctx, job.ID, models.JobGenerating)
	if s.metrics != nil {
		s.metrics.JobStarted()
		defer s.metrics.JobFinished()
	}

	start := time.Now()
	_, result, err := s.scheduling.Optimise(ctx, payload.Request, payload.Options)
	if err != nil {
		errMsg := err.Error()
		if uerr := s.repo.UpdateStatus(ctx, job.ID, models.JobDraft, "", nil, &errMsg); uerr != nil {
			s.logger.Warn("failed to record job failure", zap.String("job_id", job.ID), zap.Error(uerr))
		}
		s.setCachedStatus(ctx, job.ID, models.JobDraft)
		return err
	}

	if s.metrics != nil {
		s.metrics.ObserveSolve(result.EngineUsed, string(result.Status), time.Since(start), result.Statistics.Variables)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, models.JobGenerated, string(result.Status), result.Objective, nil); err != nil {
		s.logger.Warn("failed to record job completion", zap.String("job_id", job.ID), zap.Error(err))
	}
	s.setCachedStatus(ctx, job.ID, models.JobGenerated)
	return nil
}

func (s *JobRunnerService) setCachedStatus(ctx context.Context, jobID string, status models.JobStatus) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(jobID), payload, jobCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache job status", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *JobRunnerService) cachedStatus(ctx context.Context, jobID string) (models.JobRow, bool) {
	raw, err := s.cache.Get(ctx, cacheKey(jobID)).Result()
	if err != nil {
		return models.JobRow{}, false
	}
	var status models.JobStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return models.JobRow{}, false
	}
	return models.JobRow{ID: jobID, Status: status}, true
}

func cacheKey(jobID string) string {
	return "job:status:" + jobID
}
