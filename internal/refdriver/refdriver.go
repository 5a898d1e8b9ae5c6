// Package refdriver implements an in-memory reference Driver. It is the
// driver the daemon wires in (internal/server), so the full
// infrastructure/monitor/messaging stack can run locally without a real
// provisioning backend.
//
// A template is a YAML or JSON document with a top-level "outputs" map
// of output name to a {{ variable }} expression, resolved against the
// request's properties, system properties, and deployment location.
// Templates may also set "failOutputs: true" to make the instance
// resolve to a FAILED task instead of COMPLETE, for exercising failure
// handling paths.
package refdriver

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"ignition/internal/driver"
	"ignition/internal/infra"
	"ignition/internal/template"
)

type instance struct {
	requestID   string
	status      infra.TaskStatus
	outputs     map[string]interface{}
	failure     *infra.FailureDetails
	pollsBefore int
	pollsSoFar  int
}

// Driver is the in-memory reference implementation of infra.Driver.
type Driver struct {
	mu        sync.Mutex
	instances map[string]*instance

	// PollsBeforeComplete controls how many GetInfrastructureTask calls
	// return IN_PROGRESS before the task settles to COMPLETE or FAILED.
	// Zero means the task completes immediately on first poll.
	PollsBeforeComplete int
}

// New constructs a reference Driver.
func New() *Driver {
	return &Driver{
		instances: make(map[string]*instance),
	}
}

type parsedTemplate struct {
	Outputs      map[string]interface{} `json:"outputs"`
	FailOutputs  bool                   `json:"failOutputs"`
	FailureCode  string                 `json:"failureCode"`
	FailureDesc  string                 `json:"failureDescription"`
}

func (d *Driver) parseTemplate(body string) (parsedTemplate, error) {
	var parsed parsedTemplate
	if body == "" {
		return parsed, nil
	}
	if err := yaml.Unmarshal([]byte(body), &parsed); err != nil {
		return parsedTemplate{}, fmt.Errorf("invalid template: %w", err)
	}
	return parsed, nil
}

// CreateInfrastructure records a new instance and resolves its outputs
// against the supplied properties immediately; polling still reports
// IN_PROGRESS until PollsBeforeComplete polls have elapsed, to give
// callers something realistic to monitor.
func (d *Driver) CreateInfrastructure(ctx context.Context, tmpl, templateType string, systemProperties, properties, deploymentLocation map[string]interface{}) (infra.CreateResponse, error) {
	parsed, err := d.parseTemplate(tmpl)
	if err != nil {
		return infra.CreateResponse{}, err
	}

	mergedCtx := template.MergeContexts(properties, systemProperties, deploymentLocation)
	outputs, err := template.ResolveOutputs(parsed.Outputs, mergedCtx)
	if err != nil {
		return infra.CreateResponse{}, fmt.Errorf("resolve outputs: %w", err)
	}

	infrastructureID := newID()
	requestID := newID()

	inst := &instance{
		requestID:   requestID,
		outputs:     outputs,
		pollsBefore: d.PollsBeforeComplete,
	}
	if parsed.FailOutputs {
		inst.status = infra.StatusFailed
		inst.failure = &infra.FailureDetails{
			FailureCode: firstNonEmpty(parsed.FailureCode, infra.FailureCodeInfrastructureError),
			Description: firstNonEmpty(parsed.FailureDesc, "reference driver template requested failure"),
		}
	} else {
		inst.status = infra.StatusComplete
	}

	d.mu.Lock()
	d.instances[infrastructureID] = inst
	d.mu.Unlock()

	return infra.CreateResponse{InfrastructureID: infrastructureID, RequestID: requestID}, nil
}

// DeleteInfrastructure removes a tracked instance. Deleting an unknown
// infrastructure_id is reported as an InfrastructureNotFoundError.
func (d *Driver) DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (infra.DeleteResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.instances[infrastructureID]; !ok {
		return infra.DeleteResponse{}, newInfrastructureNotFoundError(infrastructureID)
	}

	requestID := newID()
	delete(d.instances, infrastructureID)
	return infra.DeleteResponse{InfrastructureID: infrastructureID, RequestID: requestID}, nil
}

// GetInfrastructureTask reports IN_PROGRESS for PollsBeforeComplete
// calls, then settles to the instance's terminal status.
func (d *Driver) GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (infra.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	inst, ok := d.instances[infrastructureID]
	if !ok {
		return infra.Task{}, newInfrastructureNotFoundError(infrastructureID)
	}
	if inst.requestID != requestID {
		return infra.Task{}, newInfrastructureRequestNotFoundError(requestID)
	}

	if inst.pollsSoFar < inst.pollsBefore {
		inst.pollsSoFar++
		return infra.Task{
			InfrastructureID: infrastructureID,
			RequestID:        requestID,
			Status:           infra.StatusInProgress,
		}, nil
	}

	return infra.Task{
		InfrastructureID: infrastructureID,
		RequestID:        requestID,
		Status:           inst.status,
		FailureDetails:   inst.failure,
		Outputs:          inst.outputs,
	}, nil
}

// FindInfrastructure has no durable index of template/instance name in
// this reference implementation, so it always reports no match.
func (d *Driver) FindInfrastructure(ctx context.Context, tmpl, templateType, instanceName string, deploymentLocation map[string]interface{}) (infra.FindResponse, error) {
	return infra.FindResponse{}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func newID() string {
	return uuid.NewString()
}

func newInfrastructureNotFoundError(infrastructureID string) error {
	return driver.NewInfrastructureNotFoundError(fmt.Sprintf("no infrastructure found with id %q", infrastructureID))
}

func newInfrastructureRequestNotFoundError(requestID string) error {
	return driver.NewInfrastructureRequestNotFoundError(fmt.Sprintf("no request found with id %q", requestID))
}
