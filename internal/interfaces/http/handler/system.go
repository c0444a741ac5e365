package handler

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves operational metadata about the running process
type SystemHandler struct {
	BaseHandler
	appName     string
	environment string
	build       buildDetails
	startedAt   time.Time
}

// buildDetails identifies the binary serving requests
type buildDetails struct {
	version  string
	revision string
}

// NewSystemHandler creates a SystemHandler describing the given deployment
func NewSystemHandler(appName, environment string) *SystemHandler {
	return &SystemHandler{
		appName:     appName,
		environment: environment,
		build:       readBuildDetails(),
		startedAt:   time.Now(),
	}
}

// readBuildDetails extracts version control metadata embedded by the Go
// toolchain. Binaries built outside a repository report version "dev" and
// no revision.
func readBuildDetails() buildDetails {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildDetails{version: "dev"}
	}
	return parseBuildDetails(info)
}

func parseBuildDetails(info *debug.BuildInfo) buildDetails {
	build := buildDetails{version: "dev"}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		build.version = info.Main.Version
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified && revision != "" {
		revision += "-dirty"
	}
	build.revision = revision

	return build
}

// SystemInfoResponse describes the running instance
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name        string `json:"name" example:"finbook-backend"`
	Environment string `json:"environment" example:"production"`
	Version     string `json:"version" example:"v1.4.0"`
	Revision    string `json:"revision,omitempty" example:"4f2a9c1d08be"`
	GoVersion   string `json:"go_version" example:"go1.25.5"`
	Platform    string `json:"platform" example:"linux/amd64"`
	StartedAt   string `json:"started_at" example:"2026-08-20T03:00:00Z"`
	Uptime      string `json:"uptime" example:"1h30m45s"`
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns deployment identity, build details and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:        h.appName,
		Environment: h.environment,
		Version:     h.build.version,
		Revision:    h.build.revision,
		GoVersion:   runtime.Version(),
		Platform:    fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		StartedAt:   h.startedAt.UTC().Format(time.RFC3339),
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// PingResponse acknowledges a liveness probe
// @name HandlerPingResponse
type PingResponse struct {
	Message string `json:"message" example:"pong"`
	Time    string `json:"time" example:"2026-08-25T12:00:00Z"`
}

// Ping godoc
// @ID           pingSystem
// @Summary      Ping the API
// @Description  Responds immediately so callers can confirm the API is reachable
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[PingResponse]
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message: "pong",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
