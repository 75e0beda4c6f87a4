package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/resilience"
)

const (
	defaultBaseURL = "http://192.168.1.119:1234"
	defaultRetries = 3
	defaultTimeout = 200 * time.Second

	chatCompletionsPath = "/v1/chat/completions"
	modelsPath          = "/v1/models"

	probeTimeout = 5 * time.Second

	// Timeout-class failures get a longer timeout on the next attempt
	// after a short fixed delay. Transport-class failures keep the
	// timeout and back off exponentially instead.
	timeoutIncrement  = 30 * time.Second
	timeoutRetryDelay = 2 * time.Second
)

// Client talks to an OpenAI-compatible chat-completion server.
type Client interface {
	// CheckServer reports whether the server answers its models listing
	// within a small time budget. It is a liveness hint only; a call
	// issued right after a passing check can still fail.
	CheckServer(ctx context.Context) bool

	// Complete issues one completion call with bounded retries and
	// returns the raw reply text.
	Complete(ctx context.Context, spec RequestSpec, opts ...CallOption) (string, error)
}

// Message represents a single message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body for POST /v1/chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

// ChatCompletionResponse is the response from POST /v1/chat/completions.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is a single completion choice.
type Choice struct {
	Index   int     `json:"index"`
	Message Message `json:"message"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// FailureReason tags the terminal outcome of an exhausted call.
type FailureReason string

const (
	// ReasonTimeout: the remote never answered within the escalating
	// timeout budget across all attempts.
	ReasonTimeout FailureReason = "timeout"
	// ReasonTransport: a connection-level failure persisted across all
	// attempts.
	ReasonTransport FailureReason = "transport"
	// ReasonUnexpectedShape: HTTP success but the reply body carried no
	// choices, exhausted across attempts.
	ReasonUnexpectedShape FailureReason = "unexpected_shape"
	// ReasonMaxRetries: generic exhaustion via non-2xx statuses.
	ReasonMaxRetries FailureReason = "max_retries_exceeded"
)

// CompletionError is the only error shape Complete surfaces after the
// retry budget is spent. Raw transport errors never escape it.
type CompletionError struct {
	Reason   FailureReason
	Detail   string
	Attempts int
}

func (e *CompletionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("llm: %s after %d attempts", e.Reason, e.Attempts)
	}
	return fmt.Sprintf("llm: %s after %d attempts: %s", e.Reason, e.Attempts, e.Detail)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default server base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) { c.baseURL = url }
}

// WithModel sets a model name to send with each request. Local servers
// generally ignore it.
func WithModel(model string) Option {
	return func(c *httpClient) { c.model = model }
}

// WithHTTPClient overrides the default http.Client. The client must not
// carry its own Timeout; per-attempt timeouts are applied via context.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithSleeper overrides the inter-attempt delay implementation.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *httpClient) { c.sleeper = s }
}

// WithDefaultTimeout sets the starting per-attempt timeout used when a
// call does not override it.
func WithDefaultTimeout(d time.Duration) Option {
	return func(c *httpClient) { c.defaultTimeout = d }
}

// CallOption adjusts the retry policy of a single call.
type CallOption func(*callPolicy)

type callPolicy struct {
	maxRetries int
	timeout    time.Duration
}

// WithMaxRetries bounds the attempt count for this call.
func WithMaxRetries(n int) CallOption {
	return func(p *callPolicy) {
		if n > 0 {
			p.maxRetries = n
		}
	}
}

// WithTimeout sets the initial per-attempt timeout for this call. The
// timeout only grows from here, and only after timeout-class failures.
func WithTimeout(d time.Duration) CallOption {
	return func(p *callPolicy) {
		if d > 0 {
			p.timeout = d
		}
	}
}

type httpClient struct {
	baseURL        string
	model          string
	maxRetries     int
	defaultTimeout time.Duration
	sleeper        resilience.Sleeper
	http           *http.Client
}

// NewClient creates a completion client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL:        defaultBaseURL,
		maxRetries:     defaultRetries,
		defaultTimeout: defaultTimeout,
		sleeper:        resilience.NewSleeper(),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CheckServer(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// attemptState is threaded through the retry loop of one call.
type attemptState struct {
	attempt int
	timeout time.Duration
	elapsed time.Duration
}

type failureClass int

const (
	classTimeout failureClass = iota
	classTransport
	classBadStatus
	classNoChoices
)

type attemptFailure struct {
	class  failureClass
	detail string
}

func (c *httpClient) Complete(ctx context.Context, spec RequestSpec, opts ...CallOption) (string, error) {
	policy := callPolicy{maxRetries: c.maxRetries, timeout: c.defaultTimeout}
	for _, o := range opts {
		o(&policy)
	}

	body, err := json.Marshal(ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: spec.SystemPrompt},
			{Role: "user", Content: spec.UserText},
		},
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxTokens,
		Stream:      spec.Stream,
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: marshal request")
	}

	state := attemptState{timeout: policy.timeout}
	start := time.Now()

	// Tracks the last soft failure (bad status or missing choices) so
	// exhaustion can be attributed to it.
	var lastSoft *attemptFailure

	for ; state.attempt < policy.maxRetries; state.attempt++ {
		text, failure := c.attempt(ctx, body, state.timeout)
		state.elapsed = time.Since(start)

		if failure == nil {
			zap.L().Debug("completion succeeded",
				zap.String("purpose", string(spec.Purpose)),
				zap.Int("attempt", state.attempt+1),
				zap.Duration("elapsed", state.elapsed),
			)
			return text, nil
		}

		last := state.attempt == policy.maxRetries-1

		switch failure.class {
		case classTimeout:
			if last {
				return "", &CompletionError{
					Reason:   ReasonTimeout,
					Detail:   fmt.Sprintf("request timed out after %d attempts", policy.maxRetries),
					Attempts: policy.maxRetries,
				}
			}
			next := state.timeout + timeoutIncrement
			zap.L().Warn("completion timed out, relaxing timeout",
				zap.String("purpose", string(spec.Purpose)),
				zap.Int("attempt", state.attempt+1),
				zap.Duration("timeout", state.timeout),
				zap.Duration("next_timeout", next),
			)
			state.timeout = next
			if err := c.sleeper.Sleep(ctx, timeoutRetryDelay); err != nil {
				return "", eris.Wrap(err, "llm: canceled while waiting to retry")
			}

		case classTransport:
			if last {
				return "", &CompletionError{
					Reason:   ReasonTransport,
					Detail:   failure.detail,
					Attempts: policy.maxRetries,
				}
			}
			if err := c.backoff(ctx, spec.Purpose, state.attempt, failure.detail); err != nil {
				return "", err
			}

		case classBadStatus, classNoChoices:
			lastSoft = failure
			if last {
				break
			}
			if err := c.backoff(ctx, spec.Purpose, state.attempt, failure.detail); err != nil {
				return "", err
			}
		}
	}

	reason := ReasonMaxRetries
	detail := "maximum retry attempts reached"
	if lastSoft != nil {
		if lastSoft.class == classNoChoices {
			reason = ReasonUnexpectedShape
		}
		detail = lastSoft.detail
	}
	return "", &CompletionError{Reason: reason, Detail: detail, Attempts: policy.maxRetries}
}

func (c *httpClient) backoff(ctx context.Context, purpose Purpose, attempt int, detail string) error {
	wait := resilience.ExponentialBackoff(attempt)
	zap.L().Warn("completion attempt failed, backing off",
		zap.String("purpose", string(purpose)),
		zap.Int("attempt", attempt+1),
		zap.Duration("wait", wait),
		zap.String("detail", detail),
	)
	if err := c.sleeper.Sleep(ctx, wait); err != nil {
		return eris.Wrap(err, "llm: canceled while waiting to retry")
	}
	return nil
}

// attempt issues one request with the given timeout and classifies any
// failure. A nil attemptFailure means success, with the reply text in
// the first return.
func (c *httpClient) attempt(ctx context.Context, body []byte, timeout time.Duration) (string, *attemptFailure) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(actx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return "", &attemptFailure{class: classTransport, detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The parent context expiring is caller cancellation, not a
		// remote timeout; treat it as transport so it is not retried
		// with a bigger budget.
		if resilience.IsTimeout(err) && ctx.Err() == nil {
			return "", &attemptFailure{class: classTimeout, detail: err.Error()}
		}
		return "", &attemptFailure{class: classTransport, detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if resilience.IsTimeout(err) && ctx.Err() == nil {
			return "", &attemptFailure{class: classTimeout, detail: err.Error()}
		}
		return "", &attemptFailure{class: classTransport, detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &attemptFailure{
			class:  classBadStatus,
			detail: fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, snippet(respBody, 200)),
		}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &attemptFailure{
			class:  classNoChoices,
			detail: fmt.Sprintf("unparsable response body: %s", snippet(respBody, 200)),
		}
	}
	if len(result.Choices) == 0 {
		return "", &attemptFailure{
			class:  classNoChoices,
			detail: fmt.Sprintf("unexpected response structure: %s", snippet(respBody, 200)),
		}
	}

	return result.Choices[0].Message.Content, nil
}

func snippet(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
