package pitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"studioboard/internal/repository"
	"studioboard/internal/service/access"
	"studioboard/pkg/circuitbreaker"
	"studioboard/pkg/metrics"
)

// Client calls the external agent service to draft a pitch blurb for a
// project. The agent is an opaque HTTP endpoint; all calls go through a
// circuit breaker so a flapping agent does not tie up API workers.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	projects *repository.ProjectRepository
	access   *access.Checker
	logger   *zap.Logger
}

func NewClient(
	baseURL string,
	projects *repository.ProjectRepository,
	checker *access.Checker,
	logger *zap.Logger,
) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 5 * time.Second},
		breaker:  circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		projects: projects,
		access:   checker,
		logger:   logger,
	}
}

// AgentError reports a non-OK response from the agent service. Handlers map
// it to 502 so callers can tell an upstream failure from our own.
type AgentError struct {
	StatusCode int
}

func (e *AgentError) Error() string {
	if e.StatusCode >= 500 {
		return fmt.Sprintf("agent service 5xx: %d", e.StatusCode)
	}
	return fmt.Sprintf("agent service error: %d", e.StatusCode)
}

type generateRequest struct {
	Name        string `json:"name"`
	Genre       string `json:"genre"`
	Platform    string `json:"platform"`
	Description string `json:"description"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate drafts a pitch for the project. Any roster member may ask.
func (c *Client) Generate(ctx context.Context, userID, projectID int) (string, error) {
	if err := c.access.RequireMember(ctx, projectID, userID); err != nil {
		return "", err
	}

	p, err := c.projects.GetByID(ctx, projectID)
	if err != nil {
		return "", err
	}

	req := generateRequest{
		Name:        p.Name,
		Genre:       p.Genre,
		Platform:    p.Platform,
		Description: p.Description,
	}

	var text string
	err = c.breaker.Execute(func() error {
		result, callErr := c.call(ctx, req)
		if callErr != nil {
			return callErr
		}
		text = result
		return nil
	})
	if err != nil {
		c.logger.Warn("Pitch generation failed",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return "", err
	}

	return text, nil
}

func (c *Client) call(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.RecordAgentCallLatency("/generate", "error", time.Since(start))
		return "", err
	}
	defer resp.Body.Close()

	metrics.RecordAgentCallLatency("/generate", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return "", &AgentError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode agent response: %w", err)
	}
	return out.Text, nil
}

// BreakerState exposes the breaker state for the readiness probe.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}
