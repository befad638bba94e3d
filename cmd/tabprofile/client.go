package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/tabprofile/internal/coordinator"
)

// client sends commands to a running `tabprofile serve`.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient(addr string) *client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &client{
		baseURL: base,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Do posts cmd and decodes the Response. Command failures come back as a
// Response with Success false; the error covers transport failures only.
func (c *client) Do(ctx context.Context, cmd coordinator.Command) (coordinator.Response, error) {
	var resp coordinator.Response

	body, err := json.Marshal(cmd)
	if err != nil {
		return resp, fmt.Errorf("encode command: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/command", bytes.NewReader(body))
	if err != nil {
		return resp, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()

	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, fmt.Errorf("decode response (HTTP %d): %w", httpResp.StatusCode, err)
	}
	return resp, nil
}
