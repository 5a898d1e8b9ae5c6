// Package driver defines the contract a provisioning backend must
// implement to be plugged into the infrastructure service, and the
// sentinel error types the task monitoring service classifies polling
// outcomes against.
package driver

import (
	"context"

	"ignition/internal/infra"
)

// Driver translates generic infrastructure requests into backend-specific
// provisioning calls. Implementations own all network I/O and may block;
// the core never retries on their behalf except through the monitoring
// job handler's classification of the errors below.
type Driver interface {
	CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties map[string]interface{}, deploymentLocation map[string]interface{}) (infra.CreateResponse, error)
	DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (infra.DeleteResponse, error)
	GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (infra.Task, error)
	FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (infra.FindResponse, error)
}

// TemporaryInfrastructureError indicates a transient failure talking to
// the provisioning backend. The monitoring job handler retries silently.
type TemporaryInfrastructureError struct {
	Message string
}

func (e *TemporaryInfrastructureError) Error() string { return e.Message }

// NewTemporaryInfrastructureError constructs a TemporaryInfrastructureError.
func NewTemporaryInfrastructureError(message string) error {
	return &TemporaryInfrastructureError{Message: message}
}

// UnreachableDeploymentLocationError indicates the deployment location's
// backend could not be reached. Also transient; the monitoring job
// handler retries silently.
type UnreachableDeploymentLocationError struct {
	Message string
}

func (e *UnreachableDeploymentLocationError) Error() string { return e.Message }

// NewUnreachableDeploymentLocationError constructs an
// UnreachableDeploymentLocationError.
func NewUnreachableDeploymentLocationError(message string) error {
	return &UnreachableDeploymentLocationError{Message: message}
}

// InfrastructureNotFoundError indicates the infrastructure_id is unknown
// to the driver. Terminal: the monitoring job handler finishes the job
// with no event; the orchestrator learns of absence through query.
type InfrastructureNotFoundError struct {
	Message string
}

func (e *InfrastructureNotFoundError) Error() string { return e.Message }

// NewInfrastructureNotFoundError constructs an InfrastructureNotFoundError.
func NewInfrastructureNotFoundError(message string) error {
	return &InfrastructureNotFoundError{Message: message}
}

// InfrastructureRequestNotFoundError indicates the request_id is unknown
// to the driver for an otherwise known infrastructure_id. Terminal, same
// handling as InfrastructureNotFoundError.
type InfrastructureRequestNotFoundError struct {
	Message string
}

func (e *InfrastructureRequestNotFoundError) Error() string { return e.Message }

// NewInfrastructureRequestNotFoundError constructs an
// InfrastructureRequestNotFoundError.
func NewInfrastructureRequestNotFoundError(message string) error {
	return &InfrastructureRequestNotFoundError{Message: message}
}
