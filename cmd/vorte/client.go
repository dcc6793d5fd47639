// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// defaultHTTPClient is the package-level HTTP client used by status and
// doctor. Overridden in tests.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// botClient provides HTTP access to a running bot.
type botClient struct {
	baseURL string
	http    *http.Client
}

// newBotClient creates a client targeting the given host:port address.
func newBotClient(addr string) *botClient {
	return &botClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
// A refused connection yields CodeCLIGatewayNotRunning.
func (c *botClient) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return vorteerr.Errorf(vorteerr.CodeCLIRequestFailure, "building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return vorteerr.Wrap(err, vorteerr.CodeCLIGatewayNotRunning, "bot is not running (connection refused)")
		}
		return vorteerr.Errorf(vorteerr.CodeCLIRequestFailure, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return vorteerr.Errorf(vorteerr.CodeCLIResponseInvalid, "bot returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return vorteerr.Errorf(vorteerr.CodeCLIResponseInvalid, "invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
