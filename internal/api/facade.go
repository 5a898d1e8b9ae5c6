package api

import (
	"context"
	"errors"

	"ignition/internal/infra"
	"ignition/internal/metrics"
	"ignition/internal/propvalue"
)

// Service is the subset of infra.Service the façade depends on,
// declared locally so this package does not need to import
// internal/infra's concrete type.
type Service interface {
	CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties, deploymentLocation map[string]interface{}) (infra.CreateResponse, error)
	DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (infra.DeleteResponse, error)
	GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (infra.Task, error)
	FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (infra.FindResponse, error)
}

// Facade implements the HTTP-agnostic API surface: validate the
// request body, call the service, and shape the response the way
// clients expect it.
type Facade struct {
	service Service
}

// NewFacade constructs a Facade. A nil service is refused at
// construction, matching the original controller's "No service
// instance provided" guard.
func NewFacade(service Service) (*Facade, error) {
	if service == nil {
		return nil, errors.New("No service instance provided")
	}
	return &Facade{service: service}, nil
}

func requireString(body map[string]interface{}, field string) (string, error) {
	v, ok := body[field]
	if !ok {
		return "", newBadRequestError(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", newBadRequestError(field)
	}
	return s, nil
}

func requireMap(body map[string]interface{}, field string) (map[string]interface{}, error) {
	v, ok := body[field]
	if !ok {
		return nil, newBadRequestError(field)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, newBadRequestError(field)
	}
	return m, nil
}

func recordOutcome(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// optionalMap reads a property value map that is allowed to be absent.
// Whatever shape the caller sent, typed or raw, is forwarded to the
// service untouched: the façade never coerces property value types.
func optionalMap(body map[string]interface{}, field string) map[string]interface{} {
	v, ok := body[field]
	if !ok {
		return propvalue.NormalizeRaw(nil)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return propvalue.NormalizeRaw(nil)
	}
	return propvalue.NormalizeRaw(m)
}

// Create validates and dispatches a create_infrastructure request. It
// returns the response body, the HTTP status code to send (202 on
// success), and an error that is either a *BadRequestError (client's
// fault) or whatever the service returned.
func (f *Facade) Create(ctx context.Context, body map[string]interface{}) (map[string]interface{}, int, error) {
	template, err := requireString(body, "template")
	if err != nil {
		return nil, 0, err
	}
	templateType, err := requireString(body, "templateType")
	if err != nil {
		return nil, 0, err
	}
	systemProperties, err := requireMap(body, "systemProperties")
	if err != nil {
		return nil, 0, err
	}
	deploymentLocation, err := requireMap(body, "deploymentLocation")
	if err != nil {
		return nil, 0, err
	}
	properties := optionalMap(body, "properties")

	resp, err := f.service.CreateInfrastructure(ctx, template, templateType, systemProperties, properties, deploymentLocation)
	recordOutcome("create", err)
	if err != nil {
		return nil, 0, err
	}

	return map[string]interface{}{
		"infrastructureId": resp.InfrastructureID,
		"requestId":        resp.RequestID,
	}, 202, nil
}

// Delete validates and dispatches a delete_infrastructure request.
func (f *Facade) Delete(ctx context.Context, body map[string]interface{}) (map[string]interface{}, int, error) {
	infrastructureID, err := requireString(body, "infrastructureId")
	if err != nil {
		return nil, 0, err
	}
	deploymentLocation, err := requireMap(body, "deploymentLocation")
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.service.DeleteInfrastructure(ctx, infrastructureID, deploymentLocation)
	recordOutcome("delete", err)
	if err != nil {
		return nil, 0, err
	}

	return map[string]interface{}{
		"infrastructureId": resp.InfrastructureID,
		"requestId":        resp.RequestID,
	}, 202, nil
}

// Query validates and dispatches a get_infrastructure_task request.
func (f *Facade) Query(ctx context.Context, body map[string]interface{}) (map[string]interface{}, int, error) {
	infrastructureID, err := requireString(body, "infrastructureId")
	if err != nil {
		return nil, 0, err
	}
	requestID, err := requireString(body, "requestId")
	if err != nil {
		return nil, 0, err
	}
	deploymentLocation, err := requireMap(body, "deploymentLocation")
	if err != nil {
		return nil, 0, err
	}

	task, err := f.service.GetInfrastructureTask(ctx, infrastructureID, requestID, deploymentLocation)
	recordOutcome("query", err)
	if err != nil {
		return nil, 0, err
	}

	response := map[string]interface{}{
		"infrastructureId": task.InfrastructureID,
		"requestId":        task.RequestID,
		"status":           string(task.Status),
	}
	if task.Outputs != nil {
		response["outputs"] = task.Outputs
	}
	if task.Status == infra.StatusFailed && task.FailureDetails != nil {
		response["failureDetails"] = map[string]interface{}{
			"failureCode": task.FailureDetails.FailureCode,
			"description": task.FailureDetails.Description,
		}
	}

	return response, 200, nil
}

// Find validates and dispatches a find_infrastructure request.
func (f *Facade) Find(ctx context.Context, body map[string]interface{}) (map[string]interface{}, int, error) {
	template, err := requireString(body, "template")
	if err != nil {
		return nil, 0, err
	}
	templateType, err := requireString(body, "templateType")
	if err != nil {
		return nil, 0, err
	}
	instanceName, err := requireString(body, "instanceName")
	if err != nil {
		return nil, 0, err
	}
	deploymentLocation, err := requireMap(body, "deploymentLocation")
	if err != nil {
		return nil, 0, err
	}

	resp, err := f.service.FindInfrastructure(ctx, template, templateType, instanceName, deploymentLocation)
	recordOutcome("find", err)
	if err != nil {
		return nil, 0, err
	}

	if resp.Result == nil {
		return map[string]interface{}{"result": nil}, 200, nil
	}

	return map[string]interface{}{
		"result": map[string]interface{}{
			"infrastructureId": resp.Result.InfrastructureID,
			"outputs":          resp.Result.Outputs,
		},
	}, 200, nil
}
