package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/payops/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSystemRequest(t *testing.T, handle gin.HandlerFunc, path string) map[string]interface{} {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)

	handle(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	return data
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("staging")
	require.False(t, h.startTime.IsZero())

	data := serveSystemRequest(t, h.GetSystemInfo, "/system/info")

	assert.Equal(t, "PayOps Backend API", data["name"])
	assert.Equal(t, Version, data["version"])
	assert.Equal(t, "staging", data["environment"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])

	startedAt, err := time.Parse(time.RFC3339, data["started_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), startedAt, time.Minute)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("test")

	data := serveSystemRequest(t, h.Ping, "/system/ping")

	assert.Equal(t, "pong", data["message"])

	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
}
