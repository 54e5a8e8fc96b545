package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/internal/api/middleware"
	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/service"
)

type QuotaHandler struct {
	userService *service.UserService
}

func NewQuotaHandler(userService *service.UserService) *QuotaHandler {
	return &QuotaHandler{
		userService: userService,
	}
}

// GetQuota 获取当前用户配额信息
// GET /api/v1/quota
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	info, err := h.userService.GetQuota(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, info)
}
