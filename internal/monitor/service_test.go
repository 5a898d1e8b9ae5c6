package monitor

import (
	"context"
	"testing"

	"ignition/internal/driver"
	"ignition/internal/infra"
	"ignition/internal/jobqueue"
)

type fakeJobQueue struct {
	handlers map[string]jobqueue.Handler
	queued   []jobqueue.Job
}

func newFakeJobQueue() *fakeJobQueue {
	return &fakeJobQueue{handlers: make(map[string]jobqueue.Handler)}
}

func (f *fakeJobQueue) RegisterJobHandler(jobType string, handler jobqueue.Handler) {
	f.handlers[jobType] = handler
}

func (f *fakeJobQueue) QueueJob(job jobqueue.Job) {
	f.queued = append(f.queued, job)
}

type fakeMessaging struct {
	sent []infra.Task
	err  error
}

func (m *fakeMessaging) SendInfrastructureTask(task *infra.Task) error {
	m.sent = append(m.sent, *task)
	return m.err
}

type fakeDriver struct {
	task infra.Task
	err  error
}

func (d *fakeDriver) GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (infra.Task, error) {
	return d.task, d.err
}

func TestNewServiceRequiresJobQueue(t *testing.T) {
	_, err := NewService(nil, &fakeMessaging{}, &fakeDriver{})
	if err == nil || err.Error() != "job_queue_service argument not provided" {
		t.Fatalf("expected job queue not provided error, got %v", err)
	}
}

func TestNewServiceRequiresMessaging(t *testing.T) {
	_, err := NewService(newFakeJobQueue(), nil, &fakeDriver{})
	if err == nil || err.Error() != "inf_messaging_service argument not provided" {
		t.Fatalf("expected messaging not provided error, got %v", err)
	}
}

func TestNewServiceRequiresDriver(t *testing.T) {
	_, err := NewService(newFakeJobQueue(), &fakeMessaging{}, nil)
	if err == nil || err.Error() != "driver argument not provided" {
		t.Fatalf("expected driver not provided error, got %v", err)
	}
}

func TestMonitorTaskValidatesArguments(t *testing.T) {
	svc, err := NewService(newFakeJobQueue(), &fakeMessaging{}, &fakeDriver{})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	cases := []struct {
		infrastructureID, requestID string
		deploymentLocation          map[string]interface{}
		wantErr                     string
	}{
		{"", "req1", map[string]interface{}{"a": "b"}, "Cannot monitor task when infrastructure_id is not given"},
		{"inf1", "", map[string]interface{}{"a": "b"}, "Cannot monitor task when request_id is not given"},
		{"inf1", "req1", nil, "Cannot monitor task when deployment_location is not given"},
	}
	for _, c := range cases {
		err := svc.MonitorTask(c.infrastructureID, c.requestID, c.deploymentLocation)
		if err == nil || err.Error() != c.wantErr {
			t.Fatalf("expected %q, got %v", c.wantErr, err)
		}
	}
}

func TestMonitorTaskQueuesJob(t *testing.T) {
	jq := newFakeJobQueue()
	svc, err := NewService(jq, &fakeMessaging{}, &fakeDriver{})
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if err := svc.MonitorTask("inf1", "req1", map[string]interface{}{"loc": "dl"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jq.queued) != 1 {
		t.Fatalf("expected one queued job, got %d", len(jq.queued))
	}
	if jq.queued[0].Type() != JobType {
		t.Fatalf("unexpected job type: %v", jq.queued[0].Type())
	}
}

func TestHandleJobInProgressKeepsPolling(t *testing.T) {
	jq := newFakeJobQueue()
	drv := &fakeDriver{task: infra.Task{Status: infra.StatusInProgress}}
	svc, err := NewService(jq, &fakeMessaging{}, drv)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	handler := jq.handlers[JobType]
	finished := handler(context.Background(), jobqueue.Job{
		"infrastructure_id": "inf1", "request_id": "req1", "deployment_location": map[string]interface{}{},
	})
	if finished {
		t.Fatal("expected IN_PROGRESS to keep polling")
	}
	_ = svc
}

func TestHandleJobCompletePublishesAndFinishes(t *testing.T) {
	jq := newFakeJobQueue()
	msg := &fakeMessaging{}
	drv := &fakeDriver{task: infra.Task{InfrastructureID: "inf1", RequestID: "req1", Status: infra.StatusComplete}}
	if _, err := NewService(jq, msg, drv); err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	handler := jq.handlers[JobType]
	finished := handler(context.Background(), jobqueue.Job{
		"infrastructure_id": "inf1", "request_id": "req1", "deployment_location": map[string]interface{}{},
	})
	if !finished {
		t.Fatal("expected COMPLETE to finish")
	}
	if len(msg.sent) != 1 || msg.sent[0].Status != infra.StatusComplete {
		t.Fatalf("expected task event published, got %+v", msg.sent)
	}
}

func TestHandleJobNotFoundFinishesSilently(t *testing.T) {
	jq := newFakeJobQueue()
	msg := &fakeMessaging{}
	drv := &fakeDriver{err: driver.NewInfrastructureNotFoundError("gone")}
	if _, err := NewService(jq, msg, drv); err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	handler := jq.handlers[JobType]
	finished := handler(context.Background(), jobqueue.Job{
		"infrastructure_id": "inf1", "request_id": "req1", "deployment_location": map[string]interface{}{},
	})
	if !finished {
		t.Fatal("expected not-found to finish the job")
	}
	if len(msg.sent) != 0 {
		t.Fatalf("expected no event published on not-found, got %+v", msg.sent)
	}
}

func TestHandleJobTemporaryErrorKeepsPolling(t *testing.T) {
	jq := newFakeJobQueue()
	drv := &fakeDriver{err: driver.NewTemporaryInfrastructureError("try again")}
	if _, err := NewService(jq, &fakeMessaging{}, drv); err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	handler := jq.handlers[JobType]
	finished := handler(context.Background(), jobqueue.Job{
		"infrastructure_id": "inf1", "request_id": "req1", "deployment_location": map[string]interface{}{},
	})
	if finished {
		t.Fatal("expected temporary error to keep polling")
	}
}

func TestHandleJobMissingFieldsFinishesImmediately(t *testing.T) {
	jq := newFakeJobQueue()
	if _, err := NewService(jq, &fakeMessaging{}, &fakeDriver{}); err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	handler := jq.handlers[JobType]
	finished := handler(context.Background(), jobqueue.Job{"infrastructure_id": "inf1"})
	if !finished {
		t.Fatal("expected missing fields to finish the job immediately")
	}
}
