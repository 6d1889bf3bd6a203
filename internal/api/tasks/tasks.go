package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Task = func()

// BackgroundTasks is a fixed pool of workers consuming a bounded queue.
type BackgroundTasks struct {
	log        *slog.Logger
	tasks      chan Task
	maxWorkers int
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	stop       chan struct{}
	schedulers sync.WaitGroup
}

func New(log *slog.Logger, maxWorkers int, maxTasksQueueSize int) *BackgroundTasks {
	return &BackgroundTasks{
		log:        log,
		maxWorkers: maxWorkers,
		tasks:      make(chan Task, maxTasksQueueSize),
		stop:       make(chan struct{}),
	}
}

func (t *BackgroundTasks) Run() {
	t.wg.Add(t.maxWorkers)
	for i := 0; i < t.maxWorkers; i++ {
		i := i
		go func() {
			defer t.wg.Done()
			log := t.log.With("worker", i)
			for task := range t.tasks {
				t.runTask(log, task)
			}
		}()
	}
}

func (t *BackgroundTasks) runTask(log *slog.Logger, task Task) {
	defer func() {
		if err := recover(); err != nil {
			log.Error("panic in background task", "err", err)
		}
	}()
	task()
}

// Add queues a task, blocking while the queue is full. Tasks added after
// Shutdown are dropped.
func (t *BackgroundTasks) Add(task Task) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.log.Warn("task dropped, pool is shut down")
		return
	}
	t.tasks <- task
}

// Schedule queues task every interval until Shutdown is called.
func (t *BackgroundTasks) Schedule(interval time.Duration, task Task) {
	t.schedulers.Add(1)
	go func() {
		defer t.schedulers.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.Add(task)
			}
		}
	}()
}

func (t *BackgroundTasks) Shutdown(ctx context.Context) error {
	const op = "tasks.BackgroundTasks.Shutdown"
	log := t.log.With("op", op)
	log.Info("shutting down background tasks")
	close(t.stop)
	t.schedulers.Wait()

	t.mu.Lock()
	t.closed = true
	close(t.tasks)
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		log.Warn("graceful shutdown timed out.. forcing exit", "timeout", ctx.Err())
		return ctx.Err()
	case <-done:
		log.Info("Background tasks succesfully stopped")
		return nil
	}
}

func (t *BackgroundTasks) IsEmpty() bool {
	return len(t.tasks) == 0
}
