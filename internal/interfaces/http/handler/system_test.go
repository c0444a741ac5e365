package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"runtime/debug"
	"testing"
	"time"

	"github.com/finbook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("finbook-backend", "test")

	assert.Equal(t, "finbook-backend", h.appName)
	assert.Equal(t, "test", h.environment)
	assert.False(t, h.startedAt.IsZero())
	assert.NotEmpty(t, h.build.version)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("finbook-backend", "staging")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "finbook-backend", data["name"])
	assert.Equal(t, "staging", data["environment"])
	assert.NotEmpty(t, data["version"])
	assert.Equal(t, runtime.Version(), data["go_version"])
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, data["platform"])
	assert.NotEmpty(t, data["uptime"])

	startedAt, err := time.Parse(time.RFC3339, data["started_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), startedAt, time.Minute)
}

func TestSystemHandler_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("finbook-backend", "test")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])

	_, err = time.Parse(time.RFC3339, data["time"].(string))
	assert.NoError(t, err)
}

func TestParseBuildDetails(t *testing.T) {
	tests := []struct {
		name         string
		info         *debug.BuildInfo
		wantVersion  string
		wantRevision string
	}{
		{
			name:        "no vcs metadata",
			info:        &debug.BuildInfo{},
			wantVersion: "dev",
		},
		{
			name: "devel version is ignored",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
			},
			wantVersion: "dev",
		},
		{
			name: "tagged release",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.4.0"},
			},
			wantVersion: "v1.4.0",
		},
		{
			name: "long revision is truncated",
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "4f2a9c1d08be77aa51c3fd9e2b640a1c9d51e0f2"},
				},
			},
			wantVersion:  "dev",
			wantRevision: "4f2a9c1d08be",
		},
		{
			name: "dirty worktree is marked",
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "4f2a9c1d08be77aa51c3fd9e2b640a1c9d51e0f2"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion:  "dev",
			wantRevision: "4f2a9c1d08be-dirty",
		},
		{
			name: "modified without revision stays empty",
			info: &debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantVersion: "dev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := parseBuildDetails(tt.info)
			assert.Equal(t, tt.wantVersion, build.version)
			assert.Equal(t, tt.wantRevision, build.revision)
		})
	}
}
