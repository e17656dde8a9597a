package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/erp/cashbook/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger checks a backing store
type Pinger interface {
	Ping() error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	db        Pinger
	version   string
	startTime time.Time
}

// NewSystemHandler creates a SystemHandler. db may be nil, in which case the
// database is reported as unchecked.
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the payload of GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports liveness and database reachability. An unreachable
// database answers 503 with the same payload.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "unchecked",
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			_ = c.Error(err)
			resp.Status = "degraded"
			resp.Database = "down"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp, Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeUnavailable,
				Message:   "Database is unreachable",
				RequestID: getRequestID(c),
			}})
			return
		}
		resp.Database = "up"
	}

	h.Success(c, resp)
}
