package jobqueue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ignition/internal/metrics"
)

// Config tunes the worker pool and backoff behavior.
type Config struct {
	WorkerCount    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JobTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.WorkerCount == 0 {
		c.WorkerCount = 2
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 5 * time.Minute
	}
	if c.JobTimeout == 0 {
		c.JobTimeout = 30 * time.Second
	}
}

// Queue is the in-memory Service implementation: a deduplicating work
// queue fed by a fixed worker pool. A job whose handler returns false is
// requeued with exponential backoff keyed on how many times it has been
// reprocessed; handlers never see the attempt count directly, since the
// Python original's job contract has no notion of a maximum retry count
// for monitoring jobs.
type Queue struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	attempts map[string]int

	config Config
	queue  *pollQueue

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
}

// New constructs a Queue. Call Start to begin processing.
func New(config Config) *Queue {
	config.applyDefaults()
	return &Queue{
		handlers: make(map[string]Handler),
		attempts: make(map[string]int),
		config:   config,
		queue:    newPollQueue(),
	}
}

// RegisterJobHandler registers the handler invoked for jobs whose
// "job_type" field matches jobType. Registering the same type twice
// replaces the previous handler.
func (q *Queue) RegisterJobHandler(jobType string, handler Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// QueueJob enqueues a job for processing by its registered handler.
func (q *Queue) QueueJob(job Job) {
	q.queue.Add(job)
	metrics.JobQueueDepth.Set(float64(q.queue.Len()))
}

// Start launches the worker pool. It returns immediately; workers run
// until ctx is cancelled or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.running = true
	workerCount := q.config.WorkerCount
	q.mu.Unlock()

	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop shuts down the worker pool and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	q.queue.Shutdown()
	q.wg.Wait()
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		job, ok := q.queue.Get(q.ctx)
		if !ok {
			return
		}

		q.process(job)
		q.queue.Done(job)
		metrics.JobQueueDepth.Set(float64(q.queue.Len()))
	}
}

func (q *Queue) process(job Job) {
	q.mu.RLock()
	handler, ok := q.handlers[job.Type()]
	timeout := q.config.JobTimeout
	q.mu.RUnlock()

	if !ok {
		slog.Warn("no handler registered for job type", "type", job.Type())
		return
	}

	ctx, cancel := context.WithTimeout(q.ctx, timeout)
	defer cancel()

	finished := handler(ctx, job)
	key := jobKey(job)

	if finished {
		q.mu.Lock()
		delete(q.attempts, key)
		q.mu.Unlock()
		return
	}

	q.mu.Lock()
	q.attempts[key]++
	attempt := q.attempts[key]
	q.mu.Unlock()

	backoff := q.calculateBackoff(attempt)
	q.queue.AddAfter(job, backoff)
}

func (q *Queue) calculateBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := q.config.InitialBackoff * time.Duration(uint(1)<<uint(attempt-1))
	if backoff > q.config.MaxBackoff || backoff <= 0 {
		backoff = q.config.MaxBackoff
	}
	return backoff
}
