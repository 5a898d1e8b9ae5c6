// Package messaging implements the infrastructure messaging service: it
// turns a completed or failed infrastructure task into a JSON event and
// publishes it to the postal service's infrastructure_task_events topic.
package messaging

// TopicConfig names the postal topic an event category is published to.
type TopicConfig struct {
	Name string
}

// TopicsConfiguration groups the topics the messaging service publishes
// to. Only InfrastructureTaskEvents is used today; it is kept as its own
// struct rather than a bare string so future event categories have
// somewhere to live without another constructor argument.
type TopicsConfiguration struct {
	InfrastructureTaskEvents *TopicConfig
}
