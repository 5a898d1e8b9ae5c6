// Package ctlclient implements the HTTP client ignitionctl uses to talk
// to a running ignitiond, plus the table formatting its commands share.
package ctlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin wrapper around net/http for the infrastructure API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a Client targeting baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned when the server responds with a non-2xx status.
// Message carries the response body's "error" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body map[string]interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		message := ""
		if msg, ok := decoded["error"].(string); ok {
			message = msg
		}
		return nil, &APIError{Status: resp.StatusCode, Message: message}
	}

	return decoded, nil
}

// CreateInfrastructure issues a create_infrastructure request.
func (c *Client) CreateInfrastructure(ctx context.Context, template, templateType string, systemProperties, properties, deploymentLocation map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPost, "/infrastructure", map[string]interface{}{
		"template":           template,
		"templateType":       templateType,
		"systemProperties":   systemProperties,
		"properties":         properties,
		"deploymentLocation": deploymentLocation,
	})
}

// DeleteInfrastructure issues a delete_infrastructure request.
func (c *Client) DeleteInfrastructure(ctx context.Context, infrastructureID string, deploymentLocation map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodDelete, "/infrastructure", map[string]interface{}{
		"infrastructureId":   infrastructureID,
		"deploymentLocation": deploymentLocation,
	})
}

// GetInfrastructureTask issues a get_infrastructure_task query.
func (c *Client) GetInfrastructureTask(ctx context.Context, infrastructureID, requestID string, deploymentLocation map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPost, "/infrastructure/query", map[string]interface{}{
		"infrastructureId":   infrastructureID,
		"requestId":          requestID,
		"deploymentLocation": deploymentLocation,
	})
}

// FindInfrastructure issues a find_infrastructure query.
func (c *Client) FindInfrastructure(ctx context.Context, template, templateType, instanceName string, deploymentLocation map[string]interface{}) (map[string]interface{}, error) {
	return c.do(ctx, http.MethodPost, "/infrastructure/find", map[string]interface{}{
		"template":           template,
		"templateType":       templateType,
		"instanceName":       instanceName,
		"deploymentLocation": deploymentLocation,
	})
}
