// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// RegisterServices sets the service dependencies and registers routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "bot-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Bot status",
		Tags:        []string{"system"},
	}, s.handleStatus)

	if s.services.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.services.metrics)
	}
	s.router.Get("/ws", s.handleBridge)
}

// StatusBody is the JSON body of the status endpoint response.
type StatusBody struct {
	Status          string `json:"status" example:"ok" doc:"Gateway status"`
	Version         string `json:"version" doc:"Build version"`
	BotName         string `json:"bot_name" example:"VORTE PRO" doc:"Display name of the bot"`
	UptimeSeconds   int64  `json:"uptime_seconds" doc:"Seconds since the bot started"`
	ActiveSessions  int    `json:"active_sessions" doc:"Games currently running"`
	Conversations   int    `json:"conversations" doc:"Conversations that have sent a message"`
	Messages        int64  `json:"messages" doc:"Messages seen across all conversations"`
	BridgeConnected bool   `json:"bridge_connected" doc:"Whether a messaging bridge is attached"`
}

type statusOutput struct {
	Body StatusBody
}

func (s *Server) handleStatus(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	st, err := s.services.status.Status(ctx)
	if err != nil {
		return nil, huma.NewError(vorteerr.HTTPStatus(err), "reading status", err)
	}
	return &statusOutput{Body: StatusBody{
		Status:          "ok",
		Version:         s.cfg.Version,
		BotName:         st.BotName,
		UptimeSeconds:   int64(st.Uptime.Seconds()),
		ActiveSessions:  st.ActiveSessions,
		Conversations:   st.Conversations,
		Messages:        st.Messages,
		BridgeConnected: st.BridgeConnected,
	}}, nil
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	if s.services.bridge == nil {
		http.Error(w, "bridge not configured", http.StatusServiceUnavailable)
		return
	}
	s.services.bridge.ServeHTTP(w, r)
}
