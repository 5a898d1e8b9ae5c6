package jobqueue

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"
)

// jobKey generates a dedup key for a job from its type plus whatever
// identifying fields it carries. Jobs that carry neither an
// infrastructure_id nor a request_id are never deduplicated against one
// another.
func jobKey(job Job) string {
	infraID, _ := job["infrastructure_id"].(string)
	requestID, _ := job["request_id"].(string)
	if infraID == "" && requestID == "" {
		return fmt.Sprintf("%s/%p", job.Type(), &job)
	}
	return fmt.Sprintf("%s/%s/%s", job.Type(), infraID, requestID)
}

// scheduledJob is one entry on the poll queue's heap: a job that only
// becomes eligible for a worker to pick up once readyAt has passed. A
// freshly queued job has a zero readyAt (eligible immediately); a job
// requeued after an unfinished poll carries the time its backoff
// expires.
type scheduledJob struct {
	job     Job
	key     string
	readyAt time.Time
	index   int
}

// jobHeap orders scheduledJob entries by readyAt, earliest first, so
// the queue's worker always wakes for the next thing actually due
// rather than polling on a fixed interval.
type jobHeap []*scheduledJob

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].readyAt.Before(h[j].readyAt) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *jobHeap) Push(x interface{}) {
	entry := x.(*scheduledJob)
	entry.index = len(*h)
	*h = append(*h, entry)
}
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}

// pollQueue is a time-ordered, deduplicating queue of infrastructure
// monitoring jobs. A job already being processed that is re-added (for
// instance because the same infrastructure_id was queued for
// monitoring twice) is marked dirty instead of running two pollers
// against it concurrently; it is rescheduled for immediate processing
// once the in-flight run calls Done.
type pollQueue struct {
	mu sync.Mutex

	heap  jobHeap
	index map[string]*scheduledJob

	processing map[string]bool
	dirty      map[string]Job

	wake         chan struct{}
	shuttingDown bool
}

func newPollQueue() *pollQueue {
	return &pollQueue{
		index:      make(map[string]*scheduledJob),
		processing: make(map[string]bool),
		dirty:      make(map[string]Job),
		wake:       make(chan struct{}, 1),
	}
}

func (q *pollQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Add schedules job for immediate processing.
func (q *pollQueue) Add(job Job) {
	q.schedule(job, time.Time{})
}

// AddAfter schedules job to become eligible once delay has elapsed.
func (q *pollQueue) AddAfter(job Job, delay time.Duration) {
	if delay <= 0 {
		q.schedule(job, time.Time{})
		return
	}
	q.schedule(job, time.Now().Add(delay))
}

func (q *pollQueue) schedule(job Job, readyAt time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuttingDown {
		return
	}

	key := jobKey(job)

	if q.processing[key] {
		q.dirty[key] = job
		return
	}

	if entry, ok := q.index[key]; ok {
		entry.job = job
		entry.readyAt = readyAt
		heap.Fix(&q.heap, entry.index)
		q.signal()
		return
	}

	entry := &scheduledJob{job: job, key: key, readyAt: readyAt}
	heap.Push(&q.heap, entry)
	q.index[key] = entry
	q.signal()
}

// Get returns the next job whose readyAt has passed, blocking until one
// is due or ctx is cancelled.
func (q *pollQueue) Get(ctx context.Context) (Job, bool) {
	for {
		q.mu.Lock()

		if q.shuttingDown && q.heap.Len() == 0 {
			q.mu.Unlock()
			return nil, false
		}

		if q.heap.Len() > 0 {
			wait := time.Until(q.heap[0].readyAt)
			if wait <= 0 {
				entry := heap.Pop(&q.heap).(*scheduledJob)
				delete(q.index, entry.key)
				q.processing[entry.key] = true
				q.mu.Unlock()
				return entry.job, true
			}
			q.mu.Unlock()

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, false
			case <-q.wake:
				timer.Stop()
			case <-timer.C:
			}
			continue
		}

		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-q.wake:
		}
	}
}

// Done marks a job's in-flight run as finished. A job marked dirty
// while it was processing is rescheduled for immediate reprocessing.
func (q *pollQueue) Done(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := jobKey(job)
	delete(q.processing, key)

	dirtyJob, ok := q.dirty[key]
	if !ok {
		return
	}
	delete(q.dirty, key)

	entry := &scheduledJob{job: dirtyJob, key: key}
	heap.Push(&q.heap, entry)
	q.index[key] = entry
	q.signal()
}

// Len reports how many jobs are waiting on the heap, regardless of
// whether they are already eligible.
func (q *pollQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

// Shutdown stops the queue from accepting new jobs. Get keeps handing
// out jobs already on the heap, waiting for delayed ones to come due,
// and returns false once the heap is empty.
func (q *pollQueue) Shutdown() {
	q.mu.Lock()
	q.shuttingDown = true
	q.mu.Unlock()
	q.signal()
}
