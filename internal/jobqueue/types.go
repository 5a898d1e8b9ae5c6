// Package jobqueue implements the in-memory, deduplicating work queue
// that backs the task monitoring service's polling loop. Handlers are
// registered per job type and report whether a job is finished; an
// unfinished job is requeued after a backoff delay.
package jobqueue

import "context"

// Job is a generic unit of work. The "job_type" key selects which
// registered handler processes it; all other keys are handler-specific
// payload, forwarded verbatim.
type Job map[string]interface{}

// Type returns the job's dispatch type, or "" if unset.
func (j Job) Type() string {
	t, _ := j["job_type"].(string)
	return t
}

// Handler processes one job and reports whether it is finished. A
// handler returning false is requeued with backoff; true removes the
// job from the queue permanently, whether it succeeded or reached a
// terminal failure.
type Handler func(ctx context.Context, job Job) bool

// Service is the job queue contract depended on by other services.
// Both the in-memory Queue and any test doubles satisfy it.
type Service interface {
	RegisterJobHandler(jobType string, handler Handler)
	QueueJob(job Job)
}
