package service

import (
	"errors"
	"fmt"
)

// 错误类别，handler 通过 errors.Is 映射到响应码
var (
	ErrValidation    = errors.New("invalid request")
	ErrConflict      = errors.New("conflict")
	ErrAuth          = errors.New("authentication failed")
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("daily limit reached")
	ErrSignature     = errors.New("signature verification failed")
	ErrUpstream      = errors.New("upstream service failed")
)

var (
	ErrEmailExists        = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuth)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", ErrAuth)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrNoBillingCustomer  = fmt.Errorf("%w: no billing account for user", ErrNotFound)
)

// UpgradeMessage 免费额度用完时的提示
const UpgradeMessage = "Upgrade to Premium for unlimited generations!"

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func upstreamError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
}
