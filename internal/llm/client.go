package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// CompletionRequest holds the parameters for one text-completion call.
// Zero-valued decoding fields fall back to the package defaults.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	Stop        []string
}

// CompletionResponse holds the first candidate of a completion call.
type CompletionResponse struct {
	Text         string
	Model        string
	FinishReason string
	LatencyMs    int64
}

// CompletionClient sends prompts to an external text-completion service.
type CompletionClient interface {
	// Complete sends a prompt and returns the trimmed text of candidate 0.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Available checks whether the service is reachable.
	Available(ctx context.Context) bool
}

// openAIClient implements CompletionClient against an OpenAI-compatible
// /v1/completions endpoint.
type openAIClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewOpenAIClient creates a CompletionClient for the configured endpoint.
func NewOpenAIClient(cfg Config, observer Observer) CompletionClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &openAIClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

// completionRequest is the JSON body sent to POST /v1/completions.
type completionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Stop        []string `json:"stop"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	N           int      `json:"n"`
}

type completionChoice struct {
	Text         string `json:"text"`
	Index        int    `json:"index"`
	FinishReason string `json:"finish_reason"`
}

// completionResponse is the JSON body returned by POST /v1/completions.
type completionResponse struct {
	ID      string             `json:"id"`
	Model   string             `json:"model"`
	Choices []completionChoice `json:"choices"`
}

func (c *openAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if !c.cfg.HasCredential() {
		return nil, ErrMissingCredential
	}
	start := time.Now()

	body := c.buildBody(req)
	if c.cfg.LogPrompts {
		c.observer.OnRequest(RequestEvent{Model: c.cfg.Model, Prompt: body.Prompt})
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		resp, err := c.doRequest(ctx, body)
		if err == nil {
			err = validateChoices(resp)
		}
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(CallEvent{
				Model:     c.cfg.Model,
				LatencyMs: latency,
				Success:   true,
				Attempts:  i + 1,
			})
			choice := resp.Choices[0]
			return &CompletionResponse{
				Text:         strings.TrimSpace(choice.Text),
				Model:        resp.Model,
				FinishReason: choice.FinishReason,
				LatencyMs:    latency,
			}, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			lastErr = ErrTimeout
		} else {
			lastErr = err
		}
	} else if isConnectionError(lastErr) {
		lastErr = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	} else if c.cfg.MaxRetries > 0 {
		lastErr = fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}

	c.observer.OnCallComplete(CallEvent{
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(lastErr),
		Attempts:  attempts,
	})
	return nil, lastErr
}

func (c *openAIClient) buildBody(req CompletionRequest) completionRequest {
	body := completionRequest{
		Model:       c.cfg.Model,
		Prompt:      req.Prompt,
		MaxTokens:   DefaultMaxTokens,
		Stop:        StopSequences,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		N:           DefaultCandidates,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		body.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		body.TopP = *req.TopP
	}
	if len(req.Stop) > 0 {
		body.Stop = req.Stop
	}
	return body
}

func (c *openAIClient) doRequest(ctx context.Context, body completionRequest) (*completionResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, httpResp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var resp completionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidOutput, err)
	}

	return &resp, nil
}

func (c *openAIClient) Available(ctx context.Context) bool {
	if !c.cfg.HasCredential() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func validateChoices(resp *completionResponse) error {
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: response has no choices", ErrInvalidOutput)
	}
	return nil
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRequestFailed):
		return "REQUEST_FAILED"
	default:
		return "UNKNOWN"
	}
}
