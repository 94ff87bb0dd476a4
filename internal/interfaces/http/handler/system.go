package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/estudio/backend/internal/infrastructure/scheduler"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	db        *gorm.DB
	scheduler *scheduler.AutoCloseScheduler
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. The scheduler is
// optional; when nil the scheduler endpoints report it as disabled.
func NewSystemHandler(db *gorm.DB, sched *scheduler.AutoCloseScheduler, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		scheduler: sched,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	GoVersion string `json:"go_version"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
}

// Health reports service and database health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		GoVersion: runtime.Version(),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}

// SchedulerStatus reports the auto-close scheduler state
func (h *SystemHandler) SchedulerStatus(c *gin.Context) {
	if h.scheduler == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}
	h.Success(c, h.scheduler.GetStatus())
}

// TriggerAutoClose runs the auto-close sweep outside its schedule
func (h *SystemHandler) TriggerAutoClose(c *gin.Context) {
	if h.scheduler == nil {
		h.Error(c, http.StatusConflict, dto.ErrCodeInvalidState, "Scheduler is not enabled")
		return
	}
	if err := h.scheduler.TriggerManualRun(c.Request.Context()); err != nil {
		h.Error(c, http.StatusConflict, dto.ErrCodeInvalidState, err.Error())
		return
	}
	h.Success(c, gin.H{"triggered": true})
}

// RegisterRoutes registers all system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)

	sched := rg.Group("/scheduler")
	{
		sched.GET("/status", h.SchedulerStatus)
		sched.POST("/trigger", h.TriggerAutoClose)
	}
}
