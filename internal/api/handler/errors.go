package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/service"
)

// respondError 按错误类别输出响应，内部错误不暴露细节
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.DuplicateError(c, err.Error())
	case errors.Is(err, service.ErrAuth):
		response.AuthError(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.NotFoundError(c, err.Error())
	case errors.Is(err, service.ErrQuotaExceeded):
		response.QuotaError(c, service.UpgradeMessage)
	case errors.Is(err, service.ErrSignature):
		response.SignatureError(c, "")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		response.ServerError(c, "")
	}
}
