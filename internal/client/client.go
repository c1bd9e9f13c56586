// Package client talks to the chat relay over HTTP.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"chatbot-backend/internal/models"
)

var (
	// ErrStreamFailed is returned when the relay sends an error event.
	ErrStreamFailed = errors.New("stream failed")
	// ErrStreamIncomplete is returned when the body ends before a done or error event.
	ErrStreamIncomplete = errors.New("stream ended without a terminal event")
)

const maxEventBytes = 1 << 20

// Client is a chat relay API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the relay at baseURL. A nil httpClient gets a
// client without a timeout so streams are bounded by ctx alone.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

// Chat sends one request and returns the full reply.
func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (string, error) {
	resp, err := c.post(ctx, "/chat", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out models.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return out.Response, nil
}

// Stream posts to /chat/stream and calls onChunk for every text fragment
// in order. It returns nil once the relay reports completion.
func (c *Client) Stream(ctx context.Context, req models.ChatRequest, onChunk func(string)) error {
	resp, err := c.post(ctx, "/chat/stream", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), maxEventBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		var event models.StreamChunk
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}

		switch {
		case event.Error != "":
			return fmt.Errorf("%w: %s", ErrStreamFailed, event.Error)
		case event.Done:
			return nil
		case event.Chunk != "":
			onChunk(event.Chunk)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return ErrStreamIncomplete
}

// post sends body as JSON and turns non-200 replies into errors carrying
// the relay's error text.
func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxEventBytes))
		var errResp models.ErrorResponse
		json.Unmarshal(respBody, &errResp)
		if errResp.Error == "" {
			errResp.Error = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("relay error %d: %s", resp.StatusCode, errResp.Error)
	}

	return resp, nil
}
