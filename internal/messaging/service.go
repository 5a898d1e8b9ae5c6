package messaging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ignition/internal/infra"
	"ignition/internal/postal"
)

// PostalService is the subset of the postal service the messaging
// service depends on.
type PostalService interface {
	Post(env postal.Envelope) error
}

// Service is the infrastructure messaging service. Topic configuration
// is guarded by mu rather than fixed at construction, so a
// configuration reload can retarget which topic task events publish to
// without tearing down and reconstructing the service.
type Service struct {
	postal PostalService

	mu     sync.RWMutex
	topics TopicsConfiguration
}

// NewService constructs a Service, validating the postal service and
// topic configuration are usable.
func NewService(postalService PostalService, topics *TopicsConfiguration) (*Service, error) {
	if postalService == nil {
		return nil, errors.New("postal_service argument not provided")
	}
	if err := validateTopics(topics); err != nil {
		return nil, err
	}

	return &Service{postal: postalService, topics: *topics}, nil
}

func validateTopics(topics *TopicsConfiguration) error {
	if topics == nil {
		return errors.New("topics_configuration argument not provided")
	}
	if topics.InfrastructureTaskEvents == nil {
		return errors.New("infrastructure_task_events topic must be set")
	}
	if topics.InfrastructureTaskEvents.Name == "" {
		return errors.New("infrastructure_task_events topic name must be set")
	}
	return nil
}

// UpdateTopics atomically swaps in a new topic configuration. It is the
// hook a configuration hot-reload calls so that the
// infrastructure_task_events topic name can change without restarting
// the daemon.
func (s *Service) UpdateTopics(topics *TopicsConfiguration) error {
	if err := validateTopics(topics); err != nil {
		return err
	}
	s.mu.Lock()
	s.topics = *topics
	s.mu.Unlock()
	return nil
}

// SendInfrastructureTask publishes a task event. The JSON content is
// built field-by-field rather than through encoding/json, since the
// wire format's field order (requestId, infrastructureId, status,
// outputs, failureDetails) is part of the contract downstream consumers
// match against.
func (s *Service) SendInfrastructureTask(task *infra.Task) error {
	if task == nil {
		return errors.New("infrastructure_task must be set to send an infrastructure task event")
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	fmt.Fprintf(&buf, "\"requestId\": %s, ", jsonString(task.RequestID))
	fmt.Fprintf(&buf, "\"infrastructureId\": %s, ", jsonString(task.InfrastructureID))
	fmt.Fprintf(&buf, "\"status\": %s", jsonString(string(task.Status)))

	if task.Outputs != nil {
		buf.WriteString(", \"outputs\": ")
		writeJSONObject(&buf, task.Outputs)
	}

	if task.Status == infra.StatusFailed && task.FailureDetails != nil {
		buf.WriteString(", \"failureDetails\": {")
		fmt.Fprintf(&buf, "\"failureCode\": %s, ", jsonString(task.FailureDetails.FailureCode))
		fmt.Fprintf(&buf, "\"description\": %s", jsonString(task.FailureDetails.Description))
		buf.WriteString("}")
	}

	buf.WriteString("}")

	s.mu.RLock()
	topic := s.topics.InfrastructureTaskEvents.Name
	s.mu.RUnlock()

	return s.postal.Post(postal.Envelope{
		Topic:   topic,
		Key:     task.InfrastructureID,
		Payload: buf.Bytes(),
	})
}

func jsonString(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

func writeJSONObject(buf *bytes.Buffer, obj map[string]interface{}) {
	buf.WriteString("{")
	first := true
	for k, v := range obj {
		if !first {
			buf.WriteString(", ")
		}
		first = false
		fmt.Fprintf(buf, "%s: ", jsonString(k))
		switch val := v.(type) {
		case string:
			buf.WriteString(jsonString(val))
		default:
			encoded, err := json.Marshal(val)
			if err != nil {
				buf.WriteString("null")
			} else {
				buf.Write(encoded)
			}
		}
	}
	buf.WriteString("}")
}
