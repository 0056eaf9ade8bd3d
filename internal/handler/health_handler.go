package handler

import (
	"net/http"
	"time"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store     ledger.Store
	driver    string
	startedAt time.Time
}

func NewHealthHandler(store ledger.Store, driver string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		driver:    driver,
		startedAt: time.Now(),
	}
}

// Health 存活检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "credvault-campaign-service",
	})
}

// HealthDetailed 诊断信息
func (h *HealthHandler) HealthDetailed(c *gin.Context) {
	storageStatus := "ok"
	if err := h.store.Ping(c.Request.Context()); err != nil {
		storageStatus = "unavailable"
	}

	campaigns, _ := h.store.ListCampaigns(c.Request.Context())
	creators, _ := h.store.ListCreators(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "credvault-campaign-service",
		"uptime":  time.Since(h.startedAt).String(),
		"storage": gin.H{
			"driver": h.driver,
			"status": storageStatus,
		},
		"campaigns": len(campaigns),
		"creators":  len(creators),
	})
}
