package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/internal/api/middleware"
	"github.com/qs3c/bio_go_server/internal/model/dto"
	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/service"
)

type GenerateHandler struct {
	generationService *service.GenerationService
}

func NewGenerateHandler(generationService *service.GenerationService) *GenerateHandler {
	return &GenerateHandler{
		generationService: generationService,
	}
}

// Generate 生成 bio
// POST /api/v1/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "name and niche are required")
		return
	}

	resp, err := h.generationService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, resp)
}
