// UMChat - embeddable skill chat core
// License: MIT

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"umchat/pkg/logger"
)

// Result is the only thing a call produces. Failures are carried in Err,
// never raised past this boundary.
type Result[T any] struct {
	Status bool
	Data   *T
	Err    string
}

func failure[T any](err string) Result[T] {
	return Result[T]{Status: false, Data: nil, Err: err}
}

type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

const defaultTimeout = 30 * time.Second

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// Request describes a single attempt. Method is derived: POST when a
// body is present, GET otherwise, unless overridden.
type Request struct {
	URL     string
	Method  string
	Body    interface{}
	Headers map[string]string
	Timeout time.Duration
	// RawText skips JSON decoding of the response body.
	RawText bool
}

func (r Request) method() string {
	if r.Method != "" {
		return r.Method
	}
	if r.Body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

// Send performs exactly one attempt. Retries are the caller's concern.
func Send[T any](ctx context.Context, c *Client, req Request) Result[T] {
	if req.URL == "" {
		return failure[T]("no url configured")
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return failure[T](fmt.Sprintf("failed to marshal request: %v", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method(), req.URL, bodyReader)
	if err != nil {
		return failure[T](fmt.Sprintf("failed to create request: %v", err))
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.DebugCF("transport", "Request failed", map[string]interface{}{
			logger.FieldEndpoint: req.URL,
			logger.FieldError:    err.Error(),
		})
		return failure[T](fmt.Sprintf("failed to reach %s: %v", req.URL, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure[T](fmt.Sprintf("failed to read response: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure[T](fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, req.URL))
	}

	var data T
	if req.RawText {
		s, ok := interface{}(&data).(*string)
		if !ok {
			return failure[T]("raw text mode requires a string result")
		}
		*s = string(body)
	} else if err := json.Unmarshal(body, &data); err != nil {
		return failure[T](fmt.Sprintf("failed to decode response: %v", err))
	}

	logger.DebugCF("transport", "Request completed", map[string]interface{}{
		logger.FieldEndpoint:       req.URL,
		logger.FieldResponseLength: len(body),
	})
	return Result[T]{Status: true, Data: &data}
}
