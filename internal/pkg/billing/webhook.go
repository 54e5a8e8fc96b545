package billing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

var (
	ErrInvalidSignature = errors.New("billing: invalid webhook signature")
	ErrMalformedEvent   = errors.New("billing: malformed webhook event")
)

// EventKind 对本地会员状态的影响
type EventKind int

const (
	EventIgnored EventKind = iota
	EventActivated
	EventCancelled
	// 欠费等可恢复的停用，付款后订阅会回到 active
	EventSuspended
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventCancelled:
		return "cancelled"
	case EventSuspended:
		return "suspended"
	default:
		return "ignored"
	}
}

// Event 已验签并归类的 webhook 事件
type Event struct {
	ID             string
	Type           string
	Kind           EventKind
	UserRef        string
	CustomerID     string
	SubscriptionID string
}

// ParseWebhook 校验签名并归类事件，签名密钥为空时一律失败
func (c *Client) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if c.cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	return classify(event)
}

func classify(event stripe.Event) (*Event, error) {
	out := &Event{
		ID:   event.ID,
		Type: string(event.Type),
		Kind: EventIgnored,
	}
	if event.Data == nil {
		return out, nil
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		out.Kind = EventActivated
		out.UserRef = sess.Metadata[MetadataUserID]
		if out.UserRef == "" {
			out.UserRef = sess.ClientReferenceID
		}
		if sess.Customer != nil {
			out.CustomerID = sess.Customer.ID
		}
		if sess.Subscription != nil {
			out.SubscriptionID = sess.Subscription.ID
		}

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		out.UserRef = sub.Metadata[MetadataUserID]
		out.SubscriptionID = sub.ID
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
		if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
			out.Kind = EventCancelled
		} else {
			out.Kind = subscriptionKind(sub.Status)
		}
	}

	return out, nil
}

func subscriptionKind(status stripe.SubscriptionStatus) EventKind {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return EventActivated
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return EventCancelled
	case stripe.SubscriptionStatusUnpaid:
		return EventSuspended
	default:
		return EventIgnored
	}
}
