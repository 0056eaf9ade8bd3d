package handler

import (
	"net/http"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/gin-gonic/gin"
)

type CreatorHandler struct {
	ledger *ledger.Ledger
}

func NewCreatorHandler(l *ledger.Ledger) *CreatorHandler {
	return &CreatorHandler{ledger: l}
}

// GetCreators 获取创作者列表
func (h *CreatorHandler) GetCreators(c *gin.Context) {
	creators, err := h.ledger.ListProfiles(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessListResponse(c, creators, int64(len(creators)))
}

// GetCreator 根据地址获取创作者档案，大小写不敏感
func (h *CreatorHandler) GetCreator(c *gin.Context) {
	creator, err := h.ledger.GetProfile(c.Request.Context(), c.Param("address"))
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, creator)
}

// UpsertCreator 创建或更新创作者档案
//
// 新建返回 201，更新已有档案返回 200。
func (h *CreatorHandler) UpsertCreator(c *gin.Context) {
	var req UpsertCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// POST /api/creators 要求携带 name
	if req.Name == nil {
		empty := ""
		req.Name = &empty
	}

	creator, created, err := h.ledger.UpsertProfile(c.Request.Context(), req.Address, ledger.ProfileUpdate{
		Name:        req.Name,
		Bio:         req.Bio,
		Avatar:      req.Avatar,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	SuccessResponse(c, status, creator)
}
