package handler

import (
	"net/http"
	"strconv"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	ledger *ledger.Ledger
}

func NewCampaignHandler(l *ledger.Ledger) *CampaignHandler {
	return &CampaignHandler{ledger: l}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.ledger.CreateCampaign(c.Request.Context(), ledger.CreateCampaignInput{
		Title:          req.Title,
		Description:    req.Description,
		GoalAmount:     req.GoalAmount,
		Duration:       req.Duration,
		CreatorAddress: req.CreatorAddress,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, campaign)
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	campaigns, err := h.ledger.ListCampaigns(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessListResponse(c, campaigns, int64(len(campaigns)))
}

// GetCampaign 获取单个活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	campaign, err := h.ledger.GetCampaign(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, campaign)
}

// SupportCampaign 支持活动并铸造凭证
func (h *CampaignHandler) SupportCampaign(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	var req SupportCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	receipt, err := h.ledger.Support(c.Request.Context(), ledger.SupportInput{
		CampaignId: id,
		Supporter:  req.SupporterAddress,
		Amount:     req.Amount,
		TokenURI:   req.TokenURI,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, receipt)
}

// CancelCampaign 取消活动
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	if err := h.ledger.CancelCampaign(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, gin.H{"id": id, "status": "cancelled"})
}

// GetCampaignReceipts 获取活动的支持凭证列表
func (h *CampaignHandler) GetCampaignReceipts(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	receipts, err := h.ledger.ListReceipts(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessListResponse(c, receipts, int64(len(receipts)))
}

// HasReceipt 查询地址是否持有活动凭证
func (h *CampaignHandler) HasReceipt(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	// 先确认活动存在
	if _, err := h.ledger.GetCampaign(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	has, err := h.ledger.HasReceipt(c.Request.Context(), c.Param("address"), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, HasReceiptResponse{HasReceipt: has})
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, ok := h.campaignId(c)
	if !ok {
		return
	}

	stats, err := h.ledger.GetCampaignStats(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, stats)
}

// campaignId 解析路径中的活动ID，非法ID按不存在处理
func (h *CampaignHandler) campaignId(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, "Campaign not found")
		return 0, false
	}
	return id, true
}
