package reel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"reelchef/internal/apperr"
	"reelchef/internal/recipe"
)

// envelope is the wire format returned by the reel backend.
type envelope struct {
	Success bool                 `json:"success"`
	Data    *recipe.ReelMetadata `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
}

// breakerFailures is the number of consecutive transport failures that opens
// the breaker.
const breakerFailures = 5

// Client fetches reel metadata from the scraping backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	breaker    *gobreaker.CircuitBreaker
}

type rawResponse struct {
	status int
	body   []byte
}

// NewClient creates a new reel metadata client. An empty baseURL is accepted;
// Fetch then fails with a configuration error.
func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "reel-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", zap.String("name", name),
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	return c
}

// Fetch asks the backend for the metadata of the post at reelURL.
func (c *Client) Fetch(ctx context.Context, reelURL string) (*recipe.ReelMetadata, error) {
	if c.baseURL == "" {
		return nil, apperr.Configuration("Backend API URL is not configured. Set backend_api_url in config.json or the BACKEND_API_URL environment variable.")
	}
	if strings.TrimSpace(reelURL) == "" {
		return nil, apperr.EmptyInput("Reel URL cannot be empty.")
	}

	endpoint := c.baseURL + "/api/extract-reel-data?url=" + url.QueryEscape(strings.TrimSpace(reelURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperr.Configuration("Backend API URL %q is invalid: %v", c.baseURL, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("reel backend call rejected by circuit breaker", zap.String("backend", c.baseURL))
		return nil, apperr.Network(err, "The backend server at %s is temporarily unavailable after repeated connection failures. Original error: %v", c.baseURL, err)
	}
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		c.logger.Info("reel fetch cancelled by caller", zap.String("backend", c.baseURL))
		return nil, fmt.Errorf("reel fetch cancelled: %w", ctx.Err())
	}
	if err != nil {
		c.logger.Error("network error fetching reel data", zap.String("backend", c.baseURL), zap.Error(err))
		return nil, apperr.Network(err, "Failed to connect to the backend server at %s. Please ensure the backend server is running and accessible. Original error: %v", c.baseURL, err)
	}
	resp := res.(*rawResponse)
	body := resp.body

	if resp.status < 200 || resp.status > 299 {
		rerr := remoteError(resp.status, body)
		c.logger.Error("reel backend returned an error", zap.Int("status", resp.status), zap.String("message", rerr.Message))
		return nil, rerr
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("failed to parse reel backend response", zap.Error(err))
		return nil, apperr.MalformedResponse(err, "Failed to parse response from the backend. The response might not be valid JSON.")
	}

	if !env.Success || env.Data == nil {
		msg := env.Message
		if msg == "" {
			msg = "Backend reported an unspecified error or did not return the expected data."
		}
		c.logger.Error("reel backend reported failure", zap.Bool("success", env.Success), zap.String("message", env.Message))
		return nil, apperr.IncompleteResponse("%s", msg)
	}

	return env.Data, nil
}

// roundTrip performs the request and reads the whole body. Only transport
// failures count against the breaker; cancellation by the caller does not.
func (c *Client) roundTrip(req *http.Request) (*rawResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, callerCancelled(req, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, callerCancelled(req, fmt.Errorf("failed to read response body: %w", err))
	}
	return &rawResponse{status: resp.StatusCode, body: body}, nil
}

// callerCancelled reports context.Canceled when the request's own context
// was cancelled, whatever error the transport surfaced for it.
func callerCancelled(req *http.Request, err error) error {
	if errors.Is(req.Context().Err(), context.Canceled) {
		return context.Canceled
	}
	return err
}

func remoteError(status int, body []byte) *apperr.Error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apperr.Remote("Backend server responded with %d, but the error details could not be parsed. Check backend logs.", status)
	}
	if env.Message != "" {
		return apperr.Remote("Backend error: %s", env.Message)
	}
	return apperr.Remote("Backend server responded with an error. Status: %d", status)
}
