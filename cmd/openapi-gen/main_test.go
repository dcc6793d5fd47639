// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestGenerateSpec(t *testing.T) {
	spec, err := generateSpec()
	require.NoError(t, err)

	require.True(t, gjson.ValidBytes(spec))
	assert.True(t, strings.HasPrefix(gjson.GetBytes(spec, "openapi").String(), "3.1"))
	assert.True(t, gjson.GetBytes(spec, `paths./health.get`).Exists())
	assert.True(t, gjson.GetBytes(spec, `paths./api/v1/status.get`).Exists())
	assert.Equal(t, "bot-status", gjson.GetBytes(spec, `paths./api/v1/status.get.operationId`).String())
}

func TestGenerateSpec_StatusSchema(t *testing.T) {
	spec, err := generateSpec()
	require.NoError(t, err)

	props := gjson.GetBytes(spec, "components.schemas.StatusBody.properties")
	require.True(t, props.Exists(), "StatusBody schema missing")
	for _, field := range []string{"bot_name", "uptime_seconds", "active_sessions", "messages", "bridge_connected"} {
		assert.True(t, props.Get(field).Exists(), "missing %s", field)
	}
}
