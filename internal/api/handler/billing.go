package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/bio_go_server/internal/api/middleware"
	"github.com/qs3c/bio_go_server/internal/model/dto"
	"github.com/qs3c/bio_go_server/internal/pkg/response"
	"github.com/qs3c/bio_go_server/internal/service"
)

const maxWebhookBodyBytes = int64(65536)

type BillingHandler struct {
	billingService *service.BillingService
}

func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// Checkout 创建订阅支付会话
// POST /api/v1/billing/checkout
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.BillingSessionResponse{URL: url})
}

// Portal 创建客户管理页面
// POST /api/v1/billing/portal
func (h *BillingHandler) Portal(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.BillingSessionResponse{URL: url})
}

// Webhook Stripe 回调，验签使用原始请求体
// POST /api/v1/billing/webhook
func (h *BillingHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		response.ParamError(c, "invalid payload")
		return
	}

	if err := h.billingService.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, dto.WebhookResponse{Received: true})
}
