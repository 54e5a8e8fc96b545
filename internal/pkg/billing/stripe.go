package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/qs3c/bio_go_server/config"
)

// MetadataUserID 会话、订阅和客户上记录本地用户 ID 的元数据键
const MetadataUserID = "userId"

var ErrNotConfigured = errors.New("billing: stripe is not configured")

// Client Stripe 适配器
type Client struct {
	api *client.API
	cfg config.StripeConfig
}

func NewClient(cfg *config.StripeConfig) *Client {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{
		api: api,
		cfg: *cfg,
	}
}

// CreateCustomer 创建 Stripe 客户，同一用户重复调用由幂等键去重
func (c *Client) CreateCustomer(ctx context.Context, userID int64, email string) (string, error) {
	if c.cfg.SecretKey == "" {
		return "", ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, strconv.FormatInt(userID, 10))
	params.SetIdempotencyKey(fmt.Sprintf("customer-%d", userID))

	cust, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create customer: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession 创建订阅支付会话，返回跳转地址
func (c *Client) CreateCheckoutSession(ctx context.Context, userID int64, customerID string) (string, error) {
	if c.cfg.SecretKey == "" {
		return "", ErrNotConfigured
	}

	params := c.checkoutParams(userID, customerID)
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (c *Client) checkoutParams(userID int64, customerID string) *stripe.CheckoutSessionParams {
	ref := strconv.FormatInt(userID, 10)
	frontendURL := strings.TrimRight(c.cfg.FrontendURL, "/")

	lineItem := &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
	}
	if c.cfg.PriceID != "" {
		lineItem.Price = stripe.String(c.cfg.PriceID)
	} else {
		lineItem.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency: stripe.String(c.cfg.Currency),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(c.cfg.ProductName),
			},
			UnitAmount: stripe.Int64(c.cfg.UnitAmount),
			Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
				Interval: stripe.String(string(stripe.PriceRecurringIntervalMonth)),
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(customerID),
		ClientReferenceID: stripe.String(ref),
		LineItems:         []*stripe.CheckoutSessionLineItemParams{lineItem},
		SuccessURL:        stripe.String(frontendURL + "?success=true"),
		CancelURL:         stripe.String(frontendURL + "?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataUserID: ref},
		},
	}
	params.AddMetadata(MetadataUserID, ref)
	return params
}

// CreatePortalSession 创建客户自助管理页面
func (c *Client) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	if c.cfg.SecretKey == "" {
		return "", ErrNotConfigured
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(strings.TrimRight(c.cfg.FrontendURL, "/")),
	}
	params.Context = ctx

	sess, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("billing: create portal session: %w", err)
	}
	return sess.URL, nil
}
