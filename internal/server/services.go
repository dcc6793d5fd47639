// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package server

import (
	"context"
	"net/http"
	"time"

	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// Status is the bot's runtime state as reported by /api/v1/status.
type Status struct {
	BotName         string
	Uptime          time.Duration
	ActiveSessions  int
	Conversations   int
	Messages        int64
	BridgeConnected bool
}

// StatusSource reports the bot's runtime state.
type StatusSource interface {
	Status(ctx context.Context) (Status, error)
}

// Services holds dependencies injected into route handlers.
type Services struct {
	status  StatusSource
	metrics http.Handler // optional; nil = /metrics not mounted
	bridge  http.Handler // optional; nil = /ws answers 503
}

// NewServices creates a Services instance. status is required.
func NewServices(status StatusSource, metrics, bridge http.Handler) (*Services, error) {
	if status == nil {
		return nil, vorteerr.New(vorteerr.CodeServerConfigInvalid, "status source is required")
	}
	return &Services{
		status:  status,
		metrics: metrics,
		bridge:  bridge,
	}, nil
}
