package incentive

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SimulationJob is one employee's evaluation unit for a batch run. The
// expression rides on the job so concurrent batches never interfere.
type SimulationJob struct {
	Index    int
	Expr     string
	Row      SalesRow
	Bindings map[string]float64
	Results  chan<- indexedResult
}

type indexedResult struct {
	Index  int
	Result BatchRowResult
}

type Worker struct {
	ID         int
	WorkerPool chan chan SimulationJob
	JobChannel chan SimulationJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan SimulationJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan SimulationJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(SimulationJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker evaluating row", "worker_id", w.ID, "employee_id", job.Row.EmployeeID)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

// Simulator fans batch evaluations out over a fixed worker pool. One
// simulator is started with the server and shared by all batch requests.
type Simulator struct {
	engine      *Engine
	evalTimeout time.Duration
	logger      *slog.Logger

	jobQueue   chan SimulationJob
	workerPool chan chan SimulationJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

type SimulatorConfig struct {
	MaxWorkers   int
	JobQueueSize int
	EvalTimeout  time.Duration
}

func NewSimulator(engine *Engine, config SimulatorConfig, logger *slog.Logger) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 256
	}
	evalTimeout := config.EvalTimeout
	if evalTimeout <= 0 {
		evalTimeout = 5 * time.Second
	}

	s := &Simulator{
		engine:      engine,
		evalTimeout: evalTimeout,
		logger:      logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan SimulationJob, jobQueueSize),
		workerPool: make(chan chan SimulationJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.startWorkerPool()
	return s
}

func (s *Simulator) startWorkerPool() {
	s.once.Do(func() {

		for i := 0; i < s.maxWorkers; i++ {
			worker := NewWorker(i, s.workerPool, s.logger)
			worker.Start(s.ctx, &s.wg, s.processJob)
		}

		go s.dispatch()

		s.logger.Info("incentive simulation worker pool started",
			"max_workers", s.maxWorkers,
			"queue_size", cap(s.jobQueue))
	})
}

func (s *Simulator) dispatch() {
	s.wg.Add(1)
	defer s.wg.Done()

	for {
		select {
		case job := <-s.jobQueue:

			select {
			case jobChannel := <-s.workerPool:

				select {
				case jobChannel <- job:

				case <-s.ctx.Done():
					s.logger.Info("dispatcher shutting down")
					return
				}
			case <-s.ctx.Done():
				s.logger.Info("dispatcher shutting down")
				return
			}
		case <-s.ctx.Done():
			s.logger.Info("dispatcher shutting down")
			return
		}
	}
}

func (s *Simulator) Shutdown() {
	s.logger.Info("shutting down incentive simulator")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("incentive simulator shutdown complete")
}

// Run evaluates one expression over every row on the pool and returns the
// results in input order. Row failures are captured on the row, never
// returned as an error.
func (s *Simulator) Run(ctx context.Context, expr string, rows []SalesRow, bind func(SalesRow) map[string]float64) ([]BatchRowResult, error) {
	if len(rows) == 0 {
		return []BatchRowResult{}, nil
	}

	results := make(chan indexedResult, len(rows))
	deadline := time.After(s.evalTimeout)

	for i, row := range rows {
		job := SimulationJob{
			Index:    i,
			Expr:     expr,
			Row:      row,
			Bindings: bind(row),
			Results:  results,
		}
		select {
		case s.jobQueue <- job:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, context.DeadlineExceeded
		}
	}

	ordered := make([]BatchRowResult, len(rows))
	for range rows {
		select {
		case res := <-results:
			ordered[res.Index] = res.Result
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, context.DeadlineExceeded
		}
	}
	return ordered, nil
}

func (s *Simulator) processJob(job SimulationJob) {
	result := BatchRowResult{
		EmployeeID:   job.Row.EmployeeID,
		EmployeeName: job.Row.EmployeeName,
		SalesAmount:  job.Row.SalesAmount,
		TargetAmount: job.Row.TargetAmount,
	}

	amount, err := s.engine.Evaluate(job.Expr, job.Bindings)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Amount = amount
	}

	job.Results <- indexedResult{Index: job.Index, Result: result}
}
