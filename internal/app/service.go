// Package service wires the pipeline stages into sessions, exports and
// parallel batches.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/edgeskate/internal/adapters/loader"
	eventqueue "github.com/okian/edgeskate/internal/adapters/mq/queue"
	workerpool "github.com/okian/edgeskate/internal/adapters/mq/worker"
	"github.com/okian/edgeskate/internal/adapters/render"
	"github.com/okian/edgeskate/internal/adapters/repository"
	"github.com/okian/edgeskate/internal/config"
	"github.com/okian/edgeskate/internal/domain/course"
	"github.com/okian/edgeskate/internal/domain/edges"
	"github.com/okian/edgeskate/internal/domain/model"
	"github.com/okian/edgeskate/internal/domain/physics"
	"github.com/okian/edgeskate/internal/domain/preprocess"
	"github.com/okian/edgeskate/pkg/logger"
	"github.com/okian/edgeskate/pkg/metrics"
)

// enqueueRetryDelay is how long BatchRun waits before retrying a full queue.
const enqueueRetryDelay = 5 * time.Millisecond

// Failure reasons recorded in metrics.
const (
	reasonLoad   = "load"
	reasonExport = "export"
)

// ErrNotRun marks batch jobs that never reached a worker.
var ErrNotRun = errors.New("job not run")

// FrameLoader reads a frame from a source path.
type FrameLoader interface {
	Load(ctx context.Context, path string) (model.Frame, error)
}

// BatchResult is the outcome of one batch source.
type BatchResult struct {
	Index  int
	Source string
	JobID  uuid.UUID
	Dir    string
	Err    error
}

// Service runs the pipeline.
type Service struct {
	cfg    config.Config
	loader FrameLoader
	store  repository.Store
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets pipeline parameters, worker count, queue size and output dir.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = *cfg
		}
	}
}

// WithLoader replaces the frame loader.
func WithLoader(l FrameLoader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithStore replaces the artifact store. By default sessions are written
// below the configured output directory.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Options are applied in order, so WithConfig
// should precede options that depend on it.
func New(opts ...Option) *Service {
	s := &Service{cfg: *config.New()}
	for _, opt := range opts {
		opt(s)
	}
	if s.loader == nil {
		s.loader = loader.New()
	}
	if s.store == nil {
		s.store = repository.NewDirectoryStore(s.cfg.OutputDir)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	return s
}

// Config returns the configuration the service runs with.
func (s *Service) Config() config.Config { return s.cfg }

// CreateSession loads source and runs every stage in memory, without exporting.
func (s *Service) CreateSession(ctx context.Context, source string) (*model.Session, error) {
	session := &model.Session{ID: uuid.New(), Source: source}
	fields := []logger.Field{logger.String("session_id", session.ID.String()), logger.String("source", source)}

	var raw model.Frame
	var err error
	timed(metrics.StageLoad, func() {
		raw, err = s.loader.Load(ctx, source)
	})
	if err != nil {
		metrics.RecordSessionFailure(reasonLoad)
		metrics.RecordErrorByComponent("loader", "load_error")
		s.logger.Error(ctx, "load frame failed", append(fields, logger.Error(err))...)
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	timed(metrics.StagePreprocess, func() {
		session.Frame = preprocess.Frame(raw, s.cfg.TargetResolution, s.cfg.DenoiseStrength)
	})
	timed(metrics.StageEdges, func() {
		session.Edges = edges.Detect(session.Frame, s.cfg.EdgeThreshold)
	})
	timed(metrics.StageCourse, func() {
		session.Course = course.Generate(session.Edges, s.cfg.SmoothingFactor)
	})
	timed(metrics.StageSimulate, func() {
		session.Simulation = physics.Simulate(session.Course, s.cfg.BaseSpeed, s.cfg.TrickInterval)
	})
	timed(metrics.StageRender, func() {
		session.Overlay = render.Overlay(session.Frame, session.Simulation.Path)
	})

	metrics.RecordCoursePoints(len(session.Course.Points))
	metrics.RecordPathPoints(len(session.Simulation.Path))
	for _, ev := range session.Simulation.TrickEvents {
		metrics.RecordTrickEvent(ev.Name)
	}

	s.logger.Debug(ctx, "session created", append(fields,
		logger.Int("course_points", len(session.Course.Points)),
		logger.Int("path_points", len(session.Simulation.Path)),
		logger.Int("tricks", len(session.Simulation.TrickEvents)),
	)...)
	return session, nil
}

// Run creates a session for source and exports it under name.
func (s *Service) Run(ctx context.Context, source, name string) (repository.Artifacts, error) {
	session, err := s.CreateSession(ctx, source)
	if err != nil {
		return repository.Artifacts{}, err
	}

	arts, err := s.store.Save(ctx, name, session)
	if err != nil {
		metrics.RecordSessionFailure(reasonExport)
		s.logger.Error(ctx, "export session failed",
			logger.String("session_id", session.ID.String()),
			logger.String("name", name),
			logger.Error(err),
		)
		return arts, fmt.Errorf("export %s: %w", name, err)
	}

	metrics.RecordSessionProcessed()
	s.logger.Info(ctx, "session exported",
		logger.String("session_id", session.ID.String()),
		logger.String("source", source),
		logger.String("dir", arts.Dir),
	)
	return arts, nil
}

// BatchRun runs every source on the worker pool, exporting source i as
// session_ii. Results are returned in source order. Per-source failures
// are reported in BatchResult.Err and do not affect other sources; the
// returned error is set only when a job could not be submitted or ctx
// ended before every source ran. Output directories are left to the store.
func (s *Service) BatchRun(ctx context.Context, sources []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(sources))
	jobs := make([]eventqueue.Job, len(sources))
	for i, src := range sources {
		jobs[i] = eventqueue.NewJob(i, src)
		results[i] = BatchResult{Index: i, Source: src, JobID: jobs[i].ID, Err: ErrNotRun}
	}
	if len(sources) == 0 {
		return results, nil
	}

	capacity := s.cfg.QueueSize
	if capacity <= 0 {
		capacity = len(sources)
	}
	q := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(capacity))

	// Each job owns results[job.Index], so workers never share an element.
	proc := workerpool.ProcessorFunc(func(ctx context.Context, job eventqueue.Job) error {
		arts, err := s.Run(ctx, job.Source, job.Name)
		results[job.Index].Dir = arts.Dir
		results[job.Index].Err = err
		return err
	})

	workers := min(max(s.cfg.WorkerCount, 1), len(sources))
	pool := workerpool.NewPool(workers, q, proc)
	pool.Start(ctx)

	s.logger.Info(ctx, "batch started",
		logger.Int("sources", len(sources)),
		logger.Int("workers", workers),
		logger.Int("queue_capacity", capacity),
	)

	var submitErr error
	for _, job := range jobs {
		if submitErr = s.submit(ctx, q, job); submitErr != nil {
			break
		}
	}
	_ = q.Close()
	pool.Wait()

	failed := 0
	for i := range results {
		if errors.Is(results[i].Err, ErrNotRun) && ctx.Err() != nil {
			results[i].Err = fmt.Errorf("%w: %v", ErrNotRun, ctx.Err())
		}
		if results[i].Err != nil {
			failed++
		}
	}
	s.logger.Info(ctx, "batch finished",
		logger.Int("sources", len(sources)),
		logger.Int("failed", failed),
	)

	if submitErr != nil {
		return results, fmt.Errorf("submit batch: %w", submitErr)
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// submit enqueues job, waiting for room while the queue is full.
func (s *Service) submit(ctx context.Context, q eventqueue.Queue, job eventqueue.Job) error {
	for {
		err := q.Enqueue(ctx, job)
		if !errors.Is(err, eventqueue.ErrQueueFull) {
			return err
		}
		timer := time.NewTimer(enqueueRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// timed runs fn and records its latency under stage.
func timed(stage string, fn func()) {
	start := time.Now()
	fn()
	metrics.RecordStageLatency(stage, float64(time.Since(start).Microseconds())/1000)
}
