package infra

import (
	"context"
	"errors"
	"testing"
)

type fakeDriver struct {
	createResp CreateResponse
	createErr  error
	deleteResp DeleteResponse
	deleteErr  error
	task       Task
	taskErr    error
	findResp   FindResponse
	findErr    error

	createCalls int
	deleteCalls int
}

func (f *fakeDriver) CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties, deploymentLocation map[string]interface{}) (CreateResponse, error) {
	f.createCalls++
	return f.createResp, f.createErr
}

func (f *fakeDriver) DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (DeleteResponse, error) {
	f.deleteCalls++
	return f.deleteResp, f.deleteErr
}

func (f *fakeDriver) GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (Task, error) {
	return f.task, f.taskErr
}

func (f *fakeDriver) FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (FindResponse, error) {
	return f.findResp, f.findErr
}

type fakeMonitor struct {
	calls []string
	err   error
}

func (m *fakeMonitor) MonitorTask(infrastructureID, requestID string, deploymentLocation map[string]interface{}) error {
	m.calls = append(m.calls, infrastructureID+"/"+requestID)
	return m.err
}

type fakeRequestQueue struct {
	queued []Request
	err    error
}

func (q *fakeRequestQueue) QueueInfrastructureRequest(req Request) error {
	q.queued = append(q.queued, req)
	return q.err
}

func TestNewServiceRequiresDriver(t *testing.T) {
	_, err := NewService(nil, Config{}, false, nil, false, nil)
	if err == nil || err.Error() != "driver argument not provided" {
		t.Fatalf("expected driver not provided error, got %v", err)
	}
}

func TestNewServiceRequiresConfig(t *testing.T) {
	_, err := NewService(&fakeDriver{}, nil, false, nil, false, nil)
	if err == nil || err.Error() != "infrastructure_config argument not provided" {
		t.Fatalf("expected config not provided error, got %v", err)
	}
}

func TestNewServiceRequiresMonitorWhenAsyncMessagingEnabled(t *testing.T) {
	_, err := NewService(&fakeDriver{}, Config{}, true, nil, false, nil)
	if err == nil || err.Error() != "inf_monitor_service argument not provided (required when async_messaging_enabled is True)" {
		t.Fatalf("expected monitor service not provided error, got %v", err)
	}
}

func TestNewServiceRequiresRequestQueueWhenAsyncRequestsEnabled(t *testing.T) {
	_, err := NewService(&fakeDriver{}, Config{}, false, nil, true, nil)
	if err == nil || err.Error() != "request_queue argument not provided (required when async_requests_enabled is True)" {
		t.Fatalf("expected request queue not provided error, got %v", err)
	}
}

func TestCreateInfrastructureSynchronous(t *testing.T) {
	drv := &fakeDriver{createResp: CreateResponse{InfrastructureID: "inf1", RequestID: "req1"}}
	svc, err := NewService(drv, Config{}, false, nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	resp, err := svc.CreateInfrastructure(context.Background(), "tmpl", "tosca", nil, nil, map[string]interface{}{"loc": "dl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.InfrastructureID != "inf1" || resp.RequestID != "req1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if drv.createCalls != 1 {
		t.Fatalf("expected driver to be called once, got %d", drv.createCalls)
	}
}

func TestCreateInfrastructureAsyncMessagingMonitorsAfterDriverCall(t *testing.T) {
	drv := &fakeDriver{createResp: CreateResponse{InfrastructureID: "inf1", RequestID: "req1"}}
	mon := &fakeMonitor{}
	svc, err := NewService(drv, Config{}, true, mon, false, nil)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if _, err := svc.CreateInfrastructure(context.Background(), "tmpl", "tosca", nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mon.calls) != 1 || mon.calls[0] != "inf1/req1" {
		t.Fatalf("expected monitor to be called with inf1/req1, got %v", mon.calls)
	}
}

func TestCreateInfrastructureRequestQueueWinsOverAsyncMessaging(t *testing.T) {
	drv := &fakeDriver{}
	mon := &fakeMonitor{}
	rq := &fakeRequestQueue{}
	svc, err := NewService(drv, Config{}, true, mon, true, rq)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	resp, err := svc.CreateInfrastructure(context.Background(), "tmpl", "tosca", nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.InfrastructureID == "" || resp.RequestID == "" {
		t.Fatalf("expected generated ids, got %+v", resp)
	}
	if drv.createCalls != 0 {
		t.Fatalf("expected driver not to be called when request queue enabled, got %d calls", drv.createCalls)
	}
	if len(mon.calls) != 0 {
		t.Fatalf("expected monitor not to be called when request queue enabled, got %v", mon.calls)
	}
	if len(rq.queued) != 1 {
		t.Fatalf("expected one queued request, got %d", len(rq.queued))
	}
	if rq.queued[0].Template != "tmpl" {
		t.Fatalf("unexpected queued request: %+v", rq.queued[0])
	}
}

func TestCreateInfrastructurePropagatesDriverError(t *testing.T) {
	drv := &fakeDriver{createErr: errors.New("boom")}
	svc, err := NewService(drv, Config{}, false, nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	_, err = svc.CreateInfrastructure(context.Background(), "tmpl", "tosca", nil, nil, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected driver error to propagate, got %v", err)
	}
}

func TestDeleteInfrastructureRequestQueueWins(t *testing.T) {
	drv := &fakeDriver{}
	rq := &fakeRequestQueue{}
	svc, err := NewService(drv, Config{}, false, nil, true, rq)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	resp, err := svc.DeleteInfrastructure(context.Background(), "inf1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.InfrastructureID != "inf1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if drv.deleteCalls != 0 {
		t.Fatalf("expected driver not to be called, got %d calls", drv.deleteCalls)
	}
	if len(rq.queued) != 1 || rq.queued[0].InfrastructureID != "inf1" {
		t.Fatalf("unexpected queued requests: %+v", rq.queued)
	}
}

func TestGetInfrastructureTaskAlwaysSynchronous(t *testing.T) {
	drv := &fakeDriver{task: Task{InfrastructureID: "inf1", Status: StatusComplete}}
	rq := &fakeRequestQueue{}
	svc, err := NewService(drv, Config{}, false, nil, true, rq)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	task, err := svc.GetInfrastructureTask(context.Background(), "inf1", "req1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != StatusComplete {
		t.Fatalf("unexpected task: %+v", task)
	}
	if len(rq.queued) != 0 {
		t.Fatalf("query must never enqueue, got %+v", rq.queued)
	}
}

func TestFindInfrastructureAlwaysSynchronous(t *testing.T) {
	drv := &fakeDriver{findResp: FindResponse{Result: &FindResult{InfrastructureID: "inf1"}}}
	svc, err := NewService(drv, Config{}, false, nil, false, nil)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	resp, err := svc.FindInfrastructure(context.Background(), "tmpl", "tosca", "name1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Result == nil || resp.Result.InfrastructureID != "inf1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
