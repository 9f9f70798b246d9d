package captioner

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout    = 300 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	defaultRetryBaseDelay = 2 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to the captioning API.
type Config struct {
	BaseURL        string
	Model          string
	SourceLanguage string
	TargetLanguage string
	TimeoutSeconds int
	MaxRetries     int
}

// DefaultHTTPTimeout returns the default timeout used for captioning requests.
func DefaultHTTPTimeout() time.Duration {
	return defaultHTTPTimeout
}

// Client wraps the Gemini generateContent API for audio transcription and
// subtitle formatting.
type Client struct {
	cfg        Config
	pool       *KeyPool
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a captioning client using the supplied configuration
// and key pool.
func NewClient(cfg Config, pool *KeyPool, opts ...Option) (*Client, error) {
	if pool == nil {
		return nil, errors.New("captioner: key pool required")
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := defaultRetryAttempts
	if cfg.MaxRetries > 0 {
		attempts = cfg.MaxRetries
	}
	client := &Client{
		cfg: Config{
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			SourceLanguage: strings.TrimSpace(cfg.SourceLanguage),
			TargetLanguage: strings.TrimSpace(cfg.TargetLanguage),
			TimeoutSeconds: cfg.TimeoutSeconds,
			MaxRetries:     cfg.MaxRetries,
		},
		pool:             pool,
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: attempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if client.cfg.Model == "" {
		return nil, errors.New("captioner: model required")
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client, nil
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("captioner request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type emptyContentError struct {
	Op           string
	FinishReason string
	BlockReason  string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf(
		"%s: empty content (finish_reason=%q, block_reason=%q, response_snippet=%s)",
		e.Op,
		e.FinishReason,
		e.BlockReason,
		e.Snippet,
	)
}

// GenerateSubtitles uploads the audio file and asks the model for translated
// SRT subtitles, then runs a second formatting pass over the returned text.
// The result is raw model output; callers should run it through subtitle
// normalization before use.
func (c *Client) GenerateSubtitles(ctx context.Context, audioPath string) (string, error) {
	audioPath = strings.TrimSpace(audioPath)
	if audioPath == "" {
		return "", errors.New("captioner generate: audio path required")
	}
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("captioner generate: read audio: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("captioner generate: audio file %s is empty", audioPath)
	}

	payload := generateContentRequest{
		Contents: []generateContent{
			{
				Parts: []contentPart{
					{InlineData: &inlineData{
						MimeType: mimeTypeForAudio(audioPath),
						Data:     base64.StdEncoding.EncodeToString(data),
					}},
					{Text: c.generationPrompt()},
				},
			},
		},
		GenerationConfig: &generationConfig{Temperature: 0.2},
	}
	raw, err := c.generateWithRetry(ctx, payload, "captioner generate")
	if err != nil {
		return "", err
	}

	corrected, err := c.CorrectFormat(ctx, raw)
	if err != nil {
		return "", err
	}
	return corrected, nil
}

// CorrectFormat asks the model to repair structural SRT problems in the
// supplied text without changing the translation.
func (c *Client) CorrectFormat(ctx context.Context, srtText string) (string, error) {
	srtText = strings.TrimSpace(srtText)
	if srtText == "" {
		return "", errors.New("captioner correct: srt text required")
	}
	payload := generateContentRequest{
		Contents: []generateContent{
			{
				Parts: []contentPart{
					{Text: formatCorrectionPrompt(srtText)},
				},
			},
		},
		GenerationConfig: &generationConfig{Temperature: 0},
	}
	return c.generateWithRetry(ctx, payload, "captioner correct")
}

// HealthCheck issues a small text-only request to verify the key and model
// are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	payload := generateContentRequest{
		Contents: []generateContent{
			{Parts: []contentPart{{Text: "Respond with the single word OK."}}},
		},
		GenerationConfig: &generationConfig{Temperature: 0},
	}
	content, err := c.generateWithRetry(ctx, payload, "captioner health")
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToUpper(content), "OK") {
		return fmt.Errorf("captioner health: unexpected response: %s", summarizePayloadSnippet(content))
	}
	return nil
}

type generateContentRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateContent struct {
	Parts []contentPart `json:"parts"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) generateWithRetry(ctx context.Context, payload generateContentRequest, op string) (string, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		response, body, err := c.sendGenerateRequestOnce(ctx, payload)
		if err == nil {
			content, finishReason := extractResponseText(response)
			if content == "" {
				err = &emptyContentError{
					Op:           op,
					FinishReason: finishReason,
					BlockReason:  extractBlockReason(response),
					Snippet:      summarizePayloadSnippet(string(body)),
				}
			} else {
				return content, nil
			}
		}

		if shouldRotateKey(err) {
			if _, ok := c.pool.Rotate(); !ok && isAuthError(err) {
				return "", fmt.Errorf("%s: %w: %w", op, ErrKeysExhausted, err)
			}
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return "", err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func extractResponseText(response generateContentResponse) (string, string) {
	var finishReason string
	for _, candidate := range response.Candidates {
		if finishReason == "" {
			finishReason = strings.TrimSpace(candidate.FinishReason)
		}
		var builder strings.Builder
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
		if text := strings.TrimSpace(builder.String()); text != "" {
			return text, finishReason
		}
	}
	return "", finishReason
}

func extractBlockReason(response generateContentResponse) string {
	if response.PromptFeedback == nil {
		return ""
	}
	return strings.TrimSpace(response.PromptFeedback.BlockReason)
}

func (c *Client) sendGenerateRequestOnce(ctx context.Context, payload generateContentRequest) (generateContentResponse, []byte, error) {
	var response generateContentResponse
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
	if err != nil {
		return response, nil, fmt.Errorf("captioner request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return response, nil, fmt.Errorf("captioner request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return response, nil, fmt.Errorf("captioner request: new request: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.pool.Current())
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response, nil, fmt.Errorf("captioner request: http error (timeout=%s): %w", c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return response, nil, fmt.Errorf("captioner request: read body (timeout=%s): %w", c.timeoutDuration(), err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return response, body, &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return response, body, fmt.Errorf("captioner request: decode response: %w", err)
	}
	if response.Error != nil {
		return response, body, fmt.Errorf("captioner request: api error %d %s: %s",
			response.Error.Code, response.Error.Status, strings.TrimSpace(response.Error.Message))
	}
	return response, body, nil
}

func mimeTypeForAudio(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".aac", ".m4a":
		return "audio/aac"
	case ".ogg", ".opus":
		return "audio/ogg"
	default:
		return "audio/mp3"
	}
}

func shouldRotateKey(err error) bool {
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return true
	default:
		return false
	}
}

func isAuthError(err error) bool {
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil {
		return defaultHTTPTimeout
	}
	if c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c == nil {
		return 1
	}
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts {
		return 0, false
	}
	if err == nil {
		return 0, false
	}
	if ctx == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	if _, ok := err.(*emptyContentError); ok {
		return c.backoffDelay(attempt), true
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized,
			statusErr.StatusCode == http.StatusForbidden:
			// A fresh key from the pool may succeed where the current one was
			// rejected; retry immediately unless the pool is exhausted.
			return c.backoffDelay(attempt), true
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return c.backoffDelay(attempt), true
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return c.backoffDelay(attempt), true
		}
	}

	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := defaultRetryBaseDelay
	maxDelay := defaultRetryMaxDelay
	if c != nil {
		if c.retryBaseDelay >= 0 {
			base = c.retryBaseDelay
		}
		if c.retryMaxDelay > 0 {
			maxDelay = c.retryMaxDelay
		}
	}
	if base <= 0 {
		return 0
	}

	retryCount := attempt
	if retryCount <= 0 {
		retryCount = 1
	}

	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < retryCount; i++ {
		if delay > maxDelay/2 {
			delay = maxDelay
			break
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	maxDelay := defaultRetryMaxDelay
	if c != nil && c.retryMaxDelay > 0 {
		maxDelay = c.retryMaxDelay
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("captioner retry: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c != nil && c.sleeper != nil {
		c.sleeper(delay)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
