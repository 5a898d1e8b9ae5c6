// Package monitor implements the task monitoring service: it schedules
// a polling job per infrastructure task and classifies each poll's
// outcome into "keep polling" or "finished", publishing a task event to
// the messaging service whenever a task reaches a terminal state.
package monitor

import (
	"context"
	"errors"

	"ignition/internal/driver"
	"ignition/internal/infra"
	"ignition/internal/jobqueue"
	"ignition/internal/metrics"
)

// JobType is the job queue dispatch type registered by the monitoring
// service.
const JobType = "InfrastructureTaskMonitoring"

// MessagingService is the subset of the messaging service the monitor
// depends on, declared locally to avoid an import cycle.
type MessagingService interface {
	SendInfrastructureTask(task *infra.Task) error
}

// Driver is declared locally so this package does not need to import
// internal/driver for its Driver interface (it still uses
// internal/driver's sentinel error types for classification).
type Driver interface {
	GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (infra.Task, error)
}

// Service is the task monitoring service.
type Service struct {
	jobQueue   jobqueue.Service
	messaging  MessagingService
	driver     Driver
}

// NewService constructs a Service and registers its job handler on the
// supplied job queue.
func NewService(jobQueue jobqueue.Service, messaging MessagingService, drv Driver) (*Service, error) {
	if jobQueue == nil {
		return nil, errors.New("job_queue_service argument not provided")
	}
	if messaging == nil {
		return nil, errors.New("inf_messaging_service argument not provided")
	}
	if drv == nil {
		return nil, errors.New("driver argument not provided")
	}

	s := &Service{jobQueue: jobQueue, messaging: messaging, driver: drv}
	jobQueue.RegisterJobHandler(JobType, s.handleJob)
	return s, nil
}

// MonitorTask schedules polling of a task. It is called by the
// infrastructure service after a successful synchronous driver call
// when async messaging is enabled, and may also be called directly by
// anything that wants to attach monitoring to an externally-created
// task.
func (s *Service) MonitorTask(infrastructureID, requestID string, deploymentLocation map[string]interface{}) error {
	if infrastructureID == "" {
		return errors.New("Cannot monitor task when infrastructure_id is not given")
	}
	if requestID == "" {
		return errors.New("Cannot monitor task when request_id is not given")
	}
	if deploymentLocation == nil {
		return errors.New("Cannot monitor task when deployment_location is not given")
	}

	s.jobQueue.QueueJob(jobqueue.Job{
		"job_type":            JobType,
		"infrastructure_id":   infrastructureID,
		"request_id":          requestID,
		"deployment_location": deploymentLocation,
	})
	return nil
}

// handleJob polls the driver once and classifies the outcome.
//
// IN_PROGRESS keeps the job on the queue (returns false, no side
// effect). COMPLETE and FAILED finish the job and publish a task event.
// InfrastructureNotFoundError and InfrastructureRequestNotFoundError
// finish the job silently: the task is gone, there is nothing to
// report. TemporaryInfrastructureError and
// UnreachableDeploymentLocationError are transient: the job stays on
// the queue. Any other error is counted as "unclassified_error" and the
// job is kept (returns false), so the job queue's own retry/backoff
// handling decides when it is polled again; the error value itself is
// not returned or logged, since the handler reports only a bool.
func (s *Service) handleJob(ctx context.Context, job jobqueue.Job) bool {
	infrastructureID, _ := job["infrastructure_id"].(string)
	requestID, _ := job["request_id"].(string)
	deploymentLocation, _ := job["deployment_location"].(map[string]interface{})

	if infrastructureID == "" || requestID == "" || deploymentLocation == nil {
		metrics.JobHandlerOutcomesTotal.WithLabelValues("missing_fields").Inc()
		return true
	}

	task, err := s.driver.GetInfrastructureTask(ctx, infrastructureID, requestID, deploymentLocation)
	if err != nil {
		var notFound *driver.InfrastructureNotFoundError
		var requestNotFound *driver.InfrastructureRequestNotFoundError
		if errors.As(err, &notFound) || errors.As(err, &requestNotFound) {
			metrics.JobHandlerOutcomesTotal.WithLabelValues("not_found").Inc()
			return true
		}

		var temporary *driver.TemporaryInfrastructureError
		var unreachable *driver.UnreachableDeploymentLocationError
		if errors.As(err, &temporary) || errors.As(err, &unreachable) {
			metrics.JobHandlerOutcomesTotal.WithLabelValues("temporary_error").Inc()
			return false
		}

		metrics.JobHandlerOutcomesTotal.WithLabelValues("unclassified_error").Inc()
		return false
	}

	switch task.Status {
	case infra.StatusInProgress:
		metrics.JobHandlerOutcomesTotal.WithLabelValues("in_progress").Inc()
		return false
	case infra.StatusComplete, infra.StatusFailed:
		if err := s.messaging.SendInfrastructureTask(&task); err != nil {
			metrics.JobHandlerOutcomesTotal.WithLabelValues("publish_failed").Inc()
			return false
		}
		metrics.JobHandlerOutcomesTotal.WithLabelValues("finished").Inc()
		return true
	default:
		metrics.JobHandlerOutcomesTotal.WithLabelValues("unknown_status").Inc()
		return false
	}
}
