package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/pkg/billing"
	"github.com/qs3c/bio_go_server/internal/repository"
)

// BillingProvider 支付平台适配器
type BillingProvider interface {
	CreateCustomer(ctx context.Context, userID int64, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, userID int64, customerID string) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
	ParseWebhook(payload []byte, signature string) (*billing.Event, error)
}

type BillingService struct {
	provider  BillingProvider
	userRepo  *repository.UserRepository
	subRepo   *repository.SubscriptionRepository
	eventRepo *repository.BillingEventRepository
}

func NewBillingService(
	provider BillingProvider,
	userRepo *repository.UserRepository,
	subRepo *repository.SubscriptionRepository,
	eventRepo *repository.BillingEventRepository,
) *BillingService {
	return &BillingService{
		provider:  provider,
		userRepo:  userRepo,
		subRepo:   subRepo,
		eventRepo: eventRepo,
	}
}

// HandleWebhook 验签后把订阅状态同步到本地会员标记
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			slog.WarnContext(ctx, "webhook signature rejected", "error", err)
			return ErrSignature
		}
		return validationError("malformed webhook event")
	}

	logger := slog.With("event_id", event.ID, "event_type", event.Type, "kind", event.Kind.String())

	if event.ID != "" {
		processed, err := s.eventRepo.IsProcessed(ctx, event.ID)
		if err != nil {
			return err
		}
		if processed {
			logger.InfoContext(ctx, "webhook event already processed")
			return nil
		}
	}

	switch event.Kind {
	case billing.EventActivated:
		err = s.activate(ctx, logger, event)
	case billing.EventCancelled:
		err = s.deactivate(ctx, logger, event, model.SubscriptionStatusCanceled)
	case billing.EventSuspended:
		err = s.deactivate(ctx, logger, event, model.SubscriptionStatusInactive)
	default:
		logger.DebugContext(ctx, "webhook event ignored")
	}
	if err != nil {
		logger.ErrorContext(ctx, "webhook processing failed", "error", err)
		return err
	}

	if event.ID != "" {
		if err := s.eventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
			return err
		}
	}
	return nil
}

func (s *BillingService) activate(ctx context.Context, logger *slog.Logger, event *billing.Event) error {
	user, err := s.resolveActivationUser(ctx, event)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WarnContext(ctx, "activation for unknown account", "user_ref", event.UserRef, "customer_id", event.CustomerID)
			return nil
		}
		return err
	}

	if event.SubscriptionID != "" {
		existing, err := s.subRepo.GetBySubscriptionID(ctx, event.SubscriptionID)
		switch {
		case err == nil && existing.Status == model.SubscriptionStatusCanceled:
			// 乱序到达：订阅已取消，不再开通
			logger.InfoContext(ctx, "activation for canceled subscription ignored", "subscription_id", event.SubscriptionID)
			return nil
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}

	customerID := event.CustomerID
	if user.HasBillingCustomer() && *user.StripeCustomerID == customerID {
		customerID = ""
	}
	err = s.userRepo.ActivatePremium(ctx, user.ID, customerID)
	if errors.Is(err, repository.ErrDuplicate) {
		// 客户引用已属于其他账户，保留原引用只开通会员
		logger.WarnContext(ctx, "customer reference held by another account", "user_id", user.ID, "customer_id", customerID)
		err = s.userRepo.ActivatePremium(ctx, user.ID, "")
	}
	if err != nil {
		return err
	}

	if event.SubscriptionID != "" {
		sub := &model.Subscription{
			UserID:               user.ID,
			StripeCustomerID:     event.CustomerID,
			StripeSubscriptionID: event.SubscriptionID,
			Status:               model.SubscriptionStatusActive,
		}
		if err := s.subRepo.Upsert(ctx, sub); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "premium activated", "user_id", user.ID)
	return nil
}

// resolveActivationUser 依次按 userId 元数据、客户引用查找账户
func (s *BillingService) resolveActivationUser(ctx context.Context, event *billing.Event) (*model.User, error) {
	if event.UserRef != "" {
		if id, err := strconv.ParseInt(event.UserRef, 10, 64); err == nil {
			user, err := s.userRepo.GetByID(ctx, id)
			if err == nil || !errors.Is(err, repository.ErrNotFound) {
				return user, err
			}
		}
	}
	if event.CustomerID != "" {
		return s.userRepo.GetByStripeCustomerID(ctx, event.CustomerID)
	}
	return nil, repository.ErrNotFound
}

// deactivate 取消（canceled，终态）或欠费停用（inactive，可再次开通）
func (s *BillingService) deactivate(ctx context.Context, logger *slog.Logger, event *billing.Event, status string) error {
	if event.CustomerID == "" {
		logger.WarnContext(ctx, "deactivation without customer reference")
		return nil
	}

	user, err := s.userRepo.GetByStripeCustomerID(ctx, event.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.InfoContext(ctx, "deactivation for unknown customer", "customer_id", event.CustomerID)
			return nil
		}
		return err
	}

	if event.SubscriptionID != "" {
		if err := s.recordDeactivation(ctx, user.ID, event, status); err != nil {
			return err
		}
	}

	active, err := s.subRepo.CountActiveByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		logger.InfoContext(ctx, "premium kept, other subscription active", "user_id", user.ID)
		return nil
	}

	if err := s.userRepo.SetPremium(ctx, user.ID, false); err != nil {
		return err
	}

	logger.InfoContext(ctx, "premium revoked", "user_id", user.ID, "status", status)
	return nil
}

// recordDeactivation 更新订阅镜像，已取消的订阅不会被改回停用
func (s *BillingService) recordDeactivation(ctx context.Context, userID int64, event *billing.Event, status string) error {
	if status != model.SubscriptionStatusCanceled {
		existing, err := s.subRepo.GetBySubscriptionID(ctx, event.SubscriptionID)
		switch {
		case err == nil && existing.Status == model.SubscriptionStatusCanceled:
			return nil
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return err
		}
	}

	return s.subRepo.Upsert(ctx, &model.Subscription{
		UserID:               userID,
		StripeCustomerID:     event.CustomerID,
		StripeSubscriptionID: event.SubscriptionID,
		Status:               status,
	})
}

// CreateCheckoutSession 按需创建 Stripe 客户，先落库再发起支付会话
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	var customerID string
	if user.HasBillingCustomer() {
		customerID = *user.StripeCustomerID
	} else {
		customerID, err = s.provider.CreateCustomer(ctx, user.ID, user.Email)
		if err != nil {
			return "", upstreamError("create customer", err)
		}
		if err := s.userRepo.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			return "", err
		}
	}

	url, err := s.provider.CreateCheckoutSession(ctx, user.ID, customerID)
	if err != nil {
		return "", upstreamError("create checkout session", err)
	}
	return url, nil
}

// CreatePortalSession 没有客户引用时返回 ErrNoBillingCustomer
func (s *BillingService) CreatePortalSession(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	if !user.HasBillingCustomer() {
		return "", ErrNoBillingCustomer
	}

	url, err := s.provider.CreatePortalSession(ctx, *user.StripeCustomerID)
	if err != nil {
		return "", upstreamError("create portal session", err)
	}
	return url, nil
}
