package dto

// GenerateRequest 生成 bio 请求
type GenerateRequest struct {
	Name     string `json:"name" binding:"required"`
	Niche    string `json:"niche" binding:"required"`
	Style    string `json:"style"`
	Platform string `json:"platform"`
}

// GenerateResponse 生成结果
type GenerateResponse struct {
	Bio       string `json:"bio"`
	IsPremium bool   `json:"isPremium"`
}

// GenerationItem 历史记录条目
type GenerationItem struct {
	ID        string `json:"id"`
	Bio       string `json:"bio"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"createdAt"`
}

// ListGenerationsRequest 历史记录分页参数
type ListGenerationsRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
