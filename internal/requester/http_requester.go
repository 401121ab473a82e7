package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/vigilmap/vigil/internal/config"
	"github.com/vigilmap/vigil/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester handles both request building and execution
type HTTPRequester struct {
	client  *http.Client
	baseURL string
}

type HTTPRequesterParams struct {
	fx.In

	Config *config.Config
}

// NewHTTPRequester creates a new HTTPRequester with default configuration
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	return &HTTPRequester{
		client: &http.Client{
			Timeout: params.Config.API.Timeout,
		},
		baseURL: params.Config.API.BaseURL,
	}
}

// SetHTTPClient swaps the underlying HTTP client, primarily for tests.
func (r *HTTPRequester) SetHTTPClient(client *http.Client) {
	r.client = client
}

// Do builds and executes a single request under the given identity. The
// body, when non-nil, is JSON-encoded. The full response body is read and
// returned; non-2xx statuses are not turned into errors here, the router
// and the typed services decide what a status means.
func (r *HTTPRequester) Do(ctx context.Context, method, path string, query url.Values, body any, id Identity) (*Response, error) {
	req, err := r.buildRequest(ctx, method, path, query, body, id)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	logger.Debug("request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", req.URL.String()),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Error("request failed", zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	logger.Debug("response",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}

func (r *HTTPRequester) buildRequest(ctx context.Context, method, path string, query url.Values, body any, id Identity) (*http.Request, error) {
	fullURL := r.baseURL + path
	if len(query) > 0 {
		u, err := url.Parse(fullURL)
		if err != nil {
			return nil, fmt.Errorf("invalid request url: %w", err)
		}
		q := u.Query()
		for key, values := range query {
			for _, value := range values {
				q.Set(key, value)
			}
		}
		u.RawQuery = q.Encode()
		fullURL = u.String()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := id.ApplyAuth(req); err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}

	return req, nil
}
