package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Task is a unit of detached work. The context is cancelled when the pool
// is stopped before the task completes.
type Task func(ctx context.Context) error

type job struct {
	name string
	run  Task
	done func(error)
}

// Pool runs best-effort background tasks on a fixed set of goroutines.
// Submit never blocks the caller: when the queue is full the task is dropped.
type Pool struct {
	logger  *zerolog.Logger
	workers int
	queue   chan job

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewPool creates a pool with the given number of workers and queue capacity.
func NewPool(logger *zerolog.Logger, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		logger:  logger,
		workers: workers,
		queue:   make(chan job, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.loop()
	}
}

// Submit enqueues a task. done, if not nil, receives the task's result and
// is the only place that result is observed. It returns false when the task
// was dropped because the queue is full or the pool is stopped.
func (p *Pool) Submit(name string, task Task, done func(error)) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}

	select {
	case p.queue <- job{name: name, run: task, done: done}:
		return true
	default:
		p.logger.Debug().Str("task", name).Msg("worker queue full, task dropped")
		return false
	}
}

// Stop refuses new tasks and waits for queued ones to finish. If ctx expires
// first, running tasks are cancelled and ctx's error is returned.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-finished
		return ctx.Err()
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()

	for j := range p.queue {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("task panicked")
				p.logger.Error().Str("task", j.name).Interface("panic", r).Msg("background task panicked")
			}
		}()
		return j.run(p.ctx)
	}()

	if j.done != nil {
		j.done(err)
	}
}
