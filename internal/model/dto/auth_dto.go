package dto

// RegisterRequest 注册请求，长度规则由服务层按配置校验
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	Token   string       `json:"token"`
	Account *AccountInfo `json:"account"`
}

// AccountInfo 账户信息（返回给前端）
type AccountInfo struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	IsPremium bool   `json:"isPremium"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ProfileResponse 当前用户概况
type ProfileResponse struct {
	Account          *AccountInfo `json:"account"`
	TotalGenerations int64        `json:"totalGenerations"`
	DailyUsage       int          `json:"dailyUsage"`
	Quota            *QuotaInfo   `json:"quota,omitempty"`
}

// QuotaInfo 配额信息，DailyLimit 为 -1 表示不限
type QuotaInfo struct {
	IsPremium   bool   `json:"isPremium"`
	DailyLimit  int    `json:"dailyLimit"`
	DailyUsed   int    `json:"dailyUsed"`
	DailyRemain int    `json:"dailyRemain"`
	Date        string `json:"date"`
	ResetAt     string `json:"resetAt"`
}
