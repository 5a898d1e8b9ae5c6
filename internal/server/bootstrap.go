// Package server bootstraps the infrastructure-driver daemon: it wires
// the reference driver, job queue, request queue, monitoring service,
// messaging service, and API façade into a running HTTP server, and
// handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coreos/go-systemd/v22/activation"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ignition/internal/api"
	"ignition/internal/config"
	"ignition/internal/httpserver"
	"ignition/internal/infra"
	"ignition/internal/jobqueue"
	"ignition/internal/logging"
	"ignition/internal/messaging"
	"ignition/internal/metrics"
	"ignition/internal/monitor"
	"ignition/internal/postal"
	"ignition/internal/refdriver"
	"ignition/internal/requestqueue"
)

// Application owns every long-running component of the daemon and
// coordinates their startup and shutdown.
type Application struct {
	cfg config.Config

	jobQueue         *jobqueue.Queue
	requestQueue     *requestqueue.Queue
	messagingService *messaging.Service
	httpServer       *http.Server
	registry         *prometheus.Registry
}

// New bootstraps every component named by cfg but does not start
// background processing; call Run to begin serving.
func New(cfg config.Config) (*Application, error) {
	registry := prometheus.NewRegistry()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	drv := refdriver.New()

	postalService := postal.New()

	topics := &messaging.TopicsConfiguration{
		InfrastructureTaskEvents: &messaging.TopicConfig{Name: cfg.Messaging.InfrastructureTaskEventsTopic},
	}
	messagingService, err := messaging.NewService(postalService, topics)
	if err != nil {
		return nil, fmt.Errorf("construct messaging service: %w", err)
	}

	jobQueue := jobqueue.New(jobqueue.Config{
		WorkerCount:    cfg.Infrastructure.JobWorkerCount,
		InitialBackoff: cfg.Infrastructure.JobInitialBackoff,
		MaxBackoff:     cfg.Infrastructure.JobMaxBackoff,
	})

	var monitorService *monitor.Service
	if cfg.Infrastructure.AsyncMessagingEnabled {
		monitorService, err = monitor.NewService(jobQueue, messagingService, drv)
		if err != nil {
			return nil, fmt.Errorf("construct monitoring service: %w", err)
		}
	}

	var requestQueue *requestqueue.Queue
	if cfg.Infrastructure.AsyncRequestsEnabled {
		requestQueue = requestqueue.New(requestProcessor(drv, monitorService, cfg.Infrastructure.AsyncMessagingEnabled))
	}

	var monitorForService infra.MonitorService
	if monitorService != nil {
		monitorForService = monitorService
	}
	var requestQueueForService infra.RequestQueueService
	if requestQueue != nil {
		requestQueueForService = requestQueue
	}

	infraService, err := infra.NewService(
		drv,
		infra.Config(cfg.Infrastructure.DriverConfig),
		cfg.Infrastructure.AsyncMessagingEnabled,
		monitorForService,
		cfg.Infrastructure.AsyncRequestsEnabled,
		requestQueueForService,
	)
	if err != nil {
		return nil, fmt.Errorf("construct infrastructure service: %w", err)
	}

	facade, err := api.NewFacade(infraService)
	if err != nil {
		return nil, fmt.Errorf("construct API façade: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", httpserver.New(facade))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Application{
		cfg:              cfg,
		jobQueue:         jobQueue,
		requestQueue:     requestQueue,
		messagingService: messagingService,
		httpServer:       &http.Server{Addr: cfg.Server.Address, Handler: mux},
		registry:         registry,
	}, nil
}

// ApplyConfig applies the subset of a reloaded configuration that can
// take effect without restarting the daemon: today, just the
// infrastructure_task_events topic name. Worker counts, driver
// configuration, and whether async modes are enabled at all still
// require a restart, since they change which goroutines and services
// exist rather than a value those goroutines read.
func (a *Application) ApplyConfig(cfg config.Config) error {
	topics := &messaging.TopicsConfiguration{
		InfrastructureTaskEvents: &messaging.TopicConfig{Name: cfg.Messaging.InfrastructureTaskEventsTopic},
	}
	if err := a.messagingService.UpdateTopics(topics); err != nil {
		return fmt.Errorf("apply infrastructure_task_events topic: %w", err)
	}
	a.cfg.Messaging = cfg.Messaging
	return nil
}

// requestProcessor adapts the driver and, when configured, the
// monitoring service into a requestqueue.Processor.
func requestProcessor(drv *refdriver.Driver, monitorService *monitor.Service, asyncMessagingEnabled bool) requestqueue.Processor {
	return func(ctx context.Context, req infra.Request) error {
		switch req.Operation {
		case infra.OperationCreate:
			resp, err := drv.CreateInfrastructure(ctx, req.Template, req.TemplateType, req.SystemProperties, req.Properties, req.DeploymentLocation)
			if err != nil {
				return err
			}
			if asyncMessagingEnabled && monitorService != nil {
				return monitorService.MonitorTask(resp.InfrastructureID, resp.RequestID, req.DeploymentLocation)
			}
			return nil
		case infra.OperationDelete:
			resp, err := drv.DeleteInfrastructure(ctx, req.InfrastructureID, req.DeploymentLocation)
			if err != nil {
				return err
			}
			if asyncMessagingEnabled && monitorService != nil {
				return monitorService.MonitorTask(resp.InfrastructureID, resp.RequestID, req.DeploymentLocation)
			}
			return nil
		default:
			return fmt.Errorf("queued infrastructure request carries unknown operation %q", req.Operation)
		}
	}
}

// Run starts every background component and serves HTTP until ctx is
// cancelled, then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.jobQueue.Start(ctx)
	if a.requestQueue != nil {
		a.requestQueue.Start(ctx, a.cfg.Infrastructure.RequestWorkerCount)
	}

	listener, err := a.listener()
	if err != nil {
		return fmt.Errorf("acquire listener: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info(ctx, "server", "listening on %s", listener.Addr())
		if err := a.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn(ctx, "server", "failed to notify systemd of readiness: %v", err)
	} else if ok {
		logging.Info(ctx, "server", "notified systemd readiness")
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	return a.shutdown()
}

func (a *Application) listener() (net.Listener, error) {
	listeners, err := activation.Listeners()
	if err != nil {
		return nil, err
	}
	if len(listeners) > 0 {
		logging.Info(context.Background(), "server", "using systemd socket activation listener")
		return listeners[0], nil
	}
	return net.Listen("tcp", a.cfg.Server.Address)
}

func (a *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		logging.Error(ctx, "server", err, "http server shutdown did not complete cleanly")
	}
	if a.requestQueue != nil {
		a.requestQueue.Stop()
	}
	a.jobQueue.Stop()
	return nil
}
