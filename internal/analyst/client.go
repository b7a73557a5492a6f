package analyst

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the bot budget for the current minute is
// spent. Callers answer locally instead of waiting.
var ErrRateLimited = errors.New("analyst bot rate limit exceeded")

// ErrEmptyAnswer is returned when the bot replies without an answer field.
var ErrEmptyAnswer = errors.New("no response from analyst bot")

// AskRequest is the body of POST /api/ask_bot.
type AskRequest struct {
	Query     string `json:"query"`
	PersonaID string `json:"persona_id,omitempty"`
}

// AskResponse accepts either field name used by bot deployments.
type AskResponse struct {
	Response string `json:"response"`
	Answer   string `json:"answer"`
}

// Client calls the remote analyst bot.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient allows requestsPerMinute calls per minute, bursting to the same
// number. Zero or negative disables throttling.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Ask sends one query. It is attempted once.
func (c *Client) Ask(ctx context.Context, query, personaID string) (string, error) {
	if !c.limiter.Allow() {
		return "", ErrRateLimited
	}

	jsonData, err := json.Marshal(AskRequest{Query: query, PersonaID: personaID})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ask_bot", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("analyst bot returned status %d: %s", resp.StatusCode, string(body))
	}

	var result AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	switch {
	case result.Response != "":
		return result.Response, nil
	case result.Answer != "":
		return result.Answer, nil
	default:
		return "", ErrEmptyAnswer
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
