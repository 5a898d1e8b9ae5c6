package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MonitorService is the subset of the task monitoring service the
// infrastructure service depends on. Defined locally to avoid an import
// cycle: internal/monitor depends on internal/infra for the driver
// contract types, not the other way round.
type MonitorService interface {
	MonitorTask(infrastructureID, requestID string, deploymentLocation map[string]interface{}) error
}

// RequestQueueService is the subset of the request queue the
// infrastructure service depends on.
type RequestQueueService interface {
	QueueInfrastructureRequest(req Request) error
}

// Driver is declared locally, matching internal/driver.Driver, so that
// this package does not need to import internal/driver (which in turn
// would create a cycle once internal/driver starts depending on
// internal/infra's types by value, as it already does). Any type
// satisfying internal/driver.Driver satisfies this interface too.
type Driver interface {
	CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties map[string]interface{}, deploymentLocation map[string]interface{}) (CreateResponse, error)
	DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (DeleteResponse, error)
	GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (Task, error)
	FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (FindResponse, error)
}

// Config holds the deployment-wide infrastructure configuration passed
// through to drivers verbatim (credentials, endpoints, defaults). The
// service only requires that it be non-nil; it never inspects its
// contents.
type Config map[string]interface{}

// Service dispatches create/delete/query/find infrastructure operations
// across three execution modes: synchronous driver call, request-queue
// enqueue, and async-messaging-monitored. Which mode applies is decided
// per Service instance, not per request.
type Service struct {
	driver               Driver
	config               Config
	asyncMessagingEnabled bool
	monitorService       MonitorService
	asyncRequestsEnabled bool
	requestQueue         RequestQueueService

	newID func() string
}

// NewService constructs a Service. It mirrors the original service's
// constructor validation: every required dependency is checked at
// construction time rather than surfacing as a nil-pointer panic on
// first use.
func NewService(drv Driver, config Config, asyncMessagingEnabled bool, monitorService MonitorService, asyncRequestsEnabled bool, requestQueue RequestQueueService) (*Service, error) {
	if drv == nil {
		return nil, errors.New("driver argument not provided")
	}
	if config == nil {
		return nil, errors.New("infrastructure_config argument not provided")
	}
	if asyncMessagingEnabled && monitorService == nil {
		return nil, errors.New("inf_monitor_service argument not provided (required when async_messaging_enabled is True)")
	}
	if asyncRequestsEnabled && requestQueue == nil {
		return nil, errors.New("request_queue argument not provided (required when async_requests_enabled is True)")
	}
	return &Service{
		driver:                drv,
		config:                config,
		asyncMessagingEnabled: asyncMessagingEnabled,
		monitorService:        monitorService,
		asyncRequestsEnabled:  asyncRequestsEnabled,
		requestQueue:          requestQueue,
		newID:                 func() string { return uuid.NewString() },
	}, nil
}

// CreateInfrastructure dispatches a create request. When the request
// queue is enabled it always wins: the request is enqueued and the
// driver is never called synchronously, regardless of whether async
// messaging is also enabled. Otherwise the driver is called directly,
// and if async messaging is enabled the resulting task is handed to the
// monitoring service for polling.
func (s *Service) CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties, deploymentLocation map[string]interface{}) (CreateResponse, error) {
	if properties == nil {
		properties = map[string]interface{}{}
	}

	if s.asyncRequestsEnabled {
		infrastructureID := s.newID()
		requestID := s.newID()
		req := Request{
			Operation:          OperationCreate,
			InfrastructureID:   infrastructureID,
			RequestID:          requestID,
			Template:           template,
			TemplateType:       templateType,
			Properties:         properties,
			SystemProperties:   systemProperties,
			DeploymentLocation: deploymentLocation,
		}
		if err := s.requestQueue.QueueInfrastructureRequest(req); err != nil {
			return CreateResponse{}, fmt.Errorf("queue infrastructure request: %w", err)
		}
		return CreateResponse{InfrastructureID: infrastructureID, RequestID: requestID}, nil
	}

	resp, err := s.driver.CreateInfrastructure(ctx, template, templateType, systemProperties, properties, deploymentLocation)
	if err != nil {
		return CreateResponse{}, err
	}

	if s.asyncMessagingEnabled {
		if err := s.monitorService.MonitorTask(resp.InfrastructureID, resp.RequestID, deploymentLocation); err != nil {
			return CreateResponse{}, fmt.Errorf("monitor task: %w", err)
		}
	}

	return resp, nil
}

// DeleteInfrastructure dispatches a delete request, following the same
// request-queue-wins-over-async-messaging precedence as
// CreateInfrastructure.
func (s *Service) DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (DeleteResponse, error) {
	if s.asyncRequestsEnabled {
		requestID := s.newID()
		req := Request{
			Operation:          OperationDelete,
			InfrastructureID:   infrastructureID,
			RequestID:          requestID,
			DeploymentLocation: deploymentLocation,
		}
		if err := s.requestQueue.QueueInfrastructureRequest(req); err != nil {
			return DeleteResponse{}, fmt.Errorf("queue infrastructure request: %w", err)
		}
		return DeleteResponse{InfrastructureID: infrastructureID, RequestID: requestID}, nil
	}

	resp, err := s.driver.DeleteInfrastructure(ctx, infrastructureID, deploymentLocation)
	if err != nil {
		return DeleteResponse{}, err
	}

	if s.asyncMessagingEnabled {
		if err := s.monitorService.MonitorTask(resp.InfrastructureID, resp.RequestID, deploymentLocation); err != nil {
			return DeleteResponse{}, fmt.Errorf("monitor task: %w", err)
		}
	}

	return resp, nil
}

// GetInfrastructureTask is a query operation: it always calls the driver
// synchronously, irrespective of the service's execution mode.
func (s *Service) GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (Task, error) {
	return s.driver.GetInfrastructureTask(ctx, infrastructureID, requestID, deploymentLocation)
}

// FindInfrastructure is a query operation: it always calls the driver
// synchronously, irrespective of the service's execution mode.
func (s *Service) FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (FindResponse, error) {
	return s.driver.FindInfrastructure(ctx, template, templateType, instanceName, deploymentLocation)
}
