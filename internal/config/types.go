// Package config implements the service's YAML configuration: file
// loading with sensible defaults, validation, and optional hot-reload
// via fsnotify.
package config

import "time"

// Config is the top-level configuration document.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Messaging     MessagingConfig     `yaml:"messaging"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// InfrastructureConfig configures the infrastructure service's
// execution mode and worker pool sizing.
type InfrastructureConfig struct {
	AsyncMessagingEnabled bool                   `yaml:"asyncMessagingEnabled"`
	AsyncRequestsEnabled  bool                   `yaml:"asyncRequestsEnabled"`
	RequestWorkerCount    int                    `yaml:"requestWorkerCount"`
	JobWorkerCount        int                    `yaml:"jobWorkerCount"`
	JobInitialBackoff     time.Duration          `yaml:"jobInitialBackoff"`
	JobMaxBackoff         time.Duration          `yaml:"jobMaxBackoff"`
	DriverConfig          map[string]interface{} `yaml:"driverConfig"`
}

// MessagingConfig configures the topics the messaging service publishes
// task events to.
type MessagingConfig struct {
	InfrastructureTaskEventsTopic string `yaml:"infrastructureTaskEventsTopic"`
}

// LoggingConfig holds the logging section of the config file. These
// values are parsed and defaulted but not applied: logging.Init takes
// its level and format only from the LOG_LEVEL and LOG_TYPE
// environment variables.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

// Default returns the configuration used when no config file is found.
func Default() Config {
	return Config{
		Server: ServerConfig{Address: ":8080"},
		Infrastructure: InfrastructureConfig{
			AsyncMessagingEnabled: false,
			AsyncRequestsEnabled:  false,
			RequestWorkerCount:    2,
			JobWorkerCount:        2,
			JobInitialBackoff:     time.Second,
			JobMaxBackoff:         5 * time.Minute,
			DriverConfig:          map[string]interface{}{},
		},
		Messaging: MessagingConfig{
			InfrastructureTaskEventsTopic: "infrastructure_task_events",
		},
		Logging: LoggingConfig{Level: "INFO", Type: "flat"},
	}
}
