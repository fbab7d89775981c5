// Package textgen calls an external text-generation endpoint with a bounded
// timeout and caches answers per prompt.
package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
)

var (
	ErrDisabled      = errors.New("text generation is not configured")
	ErrEmptyResponse = errors.New("text generation returned no text")
)

const (
	defaultTimeout   = 10 * time.Second
	defaultMaxTokens = 500
)

type Options struct {
	URL       string
	Token     string
	Timeout   time.Duration
	MaxTokens int
}

type generateRequest struct {
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type generateResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type Client struct {
	url       string
	token     string
	timeout   time.Duration
	maxTokens int
	cache     Cache
	logger    *log.Logger
}

func NewClient(options Options, cache Cache, logger *log.Logger) *Client {
	if cache == nil {
		cache = NoopCache{}
	}
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := options.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &Client{
		url:       strings.TrimSpace(options.URL),
		token:     strings.TrimSpace(options.Token),
		timeout:   timeout,
		maxTokens: maxTokens,
		cache:     cache,
		logger:    logging.OrDiscard(logger),
	}
}

func (client *Client) Enabled() bool {
	return client.url != ""
}

// Generate returns the text for prompt, serving repeats from the cache. The
// call is bounded by the client timeout and by the context deadline,
// whichever comes first.
func (client *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !client.Enabled() {
		return "", ErrDisabled
	}
	key := PromptKey(prompt)
	if cached, ok := client.cache.Get(key); ok {
		metrics.TextGenRequests.WithLabelValues("hit").Inc()
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	timeout := client.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return "", context.DeadlineExceeded
	}

	agent := fiber.Post(client.url).
		JSON(generateRequest{Prompt: prompt, MaxTokens: client.maxTokens}).
		Timeout(timeout)
	if client.token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+client.token)
	}

	started := time.Now()
	status, body, errs := agent.Bytes()
	metrics.TextGenLatency.Observe(time.Since(started).Seconds())
	if len(errs) > 0 {
		metrics.TextGenRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("text generation request: %w", errors.Join(errs...))
	}
	if status != fiber.StatusOK {
		metrics.TextGenRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("text generation status %d", status)
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		metrics.TextGenRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("decode text generation response: %w", err)
	}
	text := strings.TrimSpace(response.Text)
	if text == "" {
		metrics.TextGenRequests.WithLabelValues("error").Inc()
		return "", ErrEmptyResponse
	}

	metrics.TextGenRequests.WithLabelValues("ok").Inc()
	client.cache.Set(key, text)
	client.logger.Debug("text generated", "prompt_bytes", len(prompt), "text_bytes", len(text))
	return text, nil
}
