package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotInitialized = errors.New("scheduler not initialized")
	ErrEmptyJobName   = errors.New("job name is required")
	ErrEmptyCronExpr  = errors.New("cron expression is required")
	ErrDuplicateJob   = errors.New("job already registered")
)

var (
	service     *Service
	serviceOnce sync.Once
	serviceErr  error
)

// Task is the body of a scheduled job. ctx is cancelled when the scheduler
// stops, so long runs end with the process.
type Task func(ctx context.Context) error

// Service owns the process-wide cron scheduler and the names of the jobs
// registered on it.
type Service struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc

	mu   sync.Mutex
	jobs map[string]gocron.Job

	stopOnce sync.Once
	stopErr  error
}

func newService(sched gocron.Scheduler) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		scheduler: sched,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]gocron.Job),
	}
}

// Init creates the process-wide scheduler. Later calls return the first result.
func Init() error {
	serviceOnce.Do(func() {
		sched, err := gocron.NewScheduler(
			gocron.WithGlobalJobOptions(
				gocron.WithEventListeners(
					gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
						log.Error().
							Err(err).
							Str("job_id", jobID.String()).
							Str("job_name", jobName).
							Msg("Scheduled job failed")
					}),
					gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
						log.Error().
							Str("job_id", jobID.String()).
							Str("job_name", jobName).
							Interface("panic", recoverData).
							Msg("Scheduled job panicked")
					}),
				),
			),
		)
		if err != nil {
			serviceErr = fmt.Errorf("create scheduler: %w", err)
			return
		}
		service = newService(sched)
		log.Info().Msg("Scheduler initialized")
	})
	return serviceErr
}

func instance() (*Service, error) {
	if serviceErr != nil {
		return nil, serviceErr
	}
	if service == nil {
		return nil, ErrNotInitialized
	}
	return service, nil
}

func Start() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	svc.Start()
	return nil
}

func Stop() error {
	svc, err := instance()
	if err != nil {
		return err
	}
	return svc.Stop()
}

// AddJob registers task on the process-wide scheduler.
func AddJob(name, cronExpr string, task Task, opts ...gocron.JobOption) (gocron.Job, error) {
	svc, err := instance()
	if err != nil {
		return nil, err
	}
	return svc.AddJob(name, cronExpr, task, opts...)
}

func (s *Service) Start() {
	if s == nil {
		log.Error().Msg("Scheduler start requested before initialization")
		return
	}
	s.mu.Lock()
	count := len(s.jobs)
	s.mu.Unlock()
	log.Info().Int("jobs", count).Msg("Scheduler starting")
	s.scheduler.Start()
}

// Stop cancels running tasks and waits for the scheduler to shut down.
func (s *Service) Stop() error {
	if s == nil {
		return ErrNotInitialized
	}
	s.stopOnce.Do(func() {
		log.Info().Msg("Scheduler stopping")
		s.cancel()
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob registers a cron job. Names are unique per scheduler; opts apply
// after the name option.
func (s *Service) AddJob(name, cronExpr string, task Task, opts ...gocron.JobOption) (gocron.Job, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	jobLogger := log.With().Str("job_name", name).Str("cron", cronExpr).Logger()
	run := func() error {
		ctx := jobLogger.WithContext(s.ctx)
		jobLogger.Debug().Msg("Scheduled job started")
		if err := task(ctx); err != nil {
			return err
		}
		jobLogger.Debug().Msg("Scheduled job finished")
		return nil
	}

	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run),
		append([]gocron.JobOption{gocron.WithName(name)}, opts...)...,
	)
	if err != nil {
		jobLogger.Error().Err(err).Msg("Failed to register scheduled job")
		return nil, fmt.Errorf("register job %s: %w", name, err)
	}
	s.jobs[name] = job
	jobLogger.Info().Msg("Scheduled job registered")
	return job, nil
}

// Jobs returns the names of the registered jobs.
func (s *Service) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}
