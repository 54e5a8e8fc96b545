package dto

// BillingSessionResponse Stripe 跳转地址
type BillingSessionResponse struct {
	URL string `json:"url"`
}

// WebhookResponse webhook 确认
type WebhookResponse struct {
	Received bool `json:"received"`
}
