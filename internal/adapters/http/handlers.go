package http

import (
	"net/http"
	"time"

	"github.com/dkeye/callsignal/internal/app/orch"
	"github.com/dkeye/callsignal/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

type handlers struct {
	cfg        *config.Config
	orch       *orch.Orchestrator
	iceServers []webrtc.ICEServer
}

type HealthResponse struct {
	OK          bool   `json:"ok"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
}

type RTCConfigResponse struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		OK:          true,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Environment: h.cfg.Environment,
	})
}

// rtcConfig hands out STUN/TURN servers; media never passes through this service.
func (h *handlers) rtcConfig(c *gin.Context) {
	c.JSON(http.StatusOK, RTCConfigResponse{ICEServers: h.iceServers})
}

func (h *handlers) connectedUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Stats())
}
