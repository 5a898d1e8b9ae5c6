// Package infra implements the infrastructure request/lifecycle core:
// the typed request/task model and the InfrastructureService that
// dispatches create/delete/query/find across the sync, queued, and
// async-monitored execution modes.
package infra

// TaskStatus is the lifecycle state of a polled infrastructure task.
type TaskStatus string

const (
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusComplete   TaskStatus = "COMPLETE"
	StatusFailed     TaskStatus = "FAILED"
)

// Failure codes used by drivers to classify a FAILED task. This is not a
// closed enum: drivers may report backend-specific codes, but
// INFRASTRUCTURE_ERROR specifically denotes a provisioning-level failure
// as opposed to a transport/framework failure.
const (
	FailureCodeInfrastructureError = "INFRASTRUCTURE_ERROR"
	FailureCodeInternalError       = "INTERNAL_ERROR"
	FailureCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
)

// FailureDetails describes why a task failed.
type FailureDetails struct {
	FailureCode string `json:"failureCode"`
	Description string `json:"description"`
}

// Operation identifies which driver call a queued Request resolves to.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
)

// Request is the internal representation of a create/delete request, as
// carried on the request queue.
type Request struct {
	Operation          Operation              `json:"operation"`
	InfrastructureID   string                 `json:"infrastructure_id"`
	RequestID          string                 `json:"request_id"`
	Template           string                 `json:"template"`
	TemplateType       string                 `json:"template_type"`
	Properties         map[string]interface{} `json:"properties"`
	SystemProperties   map[string]interface{} `json:"system_properties"`
	DeploymentLocation map[string]interface{} `json:"deployment_location"`
}

// Task is the state of one provisioning request as observed by polling
// the driver.
type Task struct {
	InfrastructureID string
	RequestID        string
	Status           TaskStatus
	FailureDetails   *FailureDetails
	Outputs          map[string]interface{}
}

// CreateResponse is returned by a create_infrastructure call.
type CreateResponse struct {
	InfrastructureID string
	RequestID        string
}

// DeleteResponse is returned by a delete_infrastructure call.
type DeleteResponse struct {
	InfrastructureID string
	RequestID        string
}

// FindResult is the matched instance, when find_infrastructure locates one.
type FindResult struct {
	InfrastructureID string
	Outputs          map[string]interface{}
}

// FindResponse wraps an optional FindResult; Result is nil when nothing
// matched the template/instance name in the given deployment location.
type FindResponse struct {
	Result *FindResult
}
