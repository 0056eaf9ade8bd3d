package handler

// 请求模型

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	GoalAmount     float64 `json:"goalAmount"`
	Duration       int64   `json:"duration"`
	CreatorAddress string  `json:"creatorAddress"`
}

// SupportCampaignRequest 支持活动请求
type SupportCampaignRequest struct {
	SupporterAddress string  `json:"supporterAddress"`
	Amount           float64 `json:"amount"`
	TokenURI         string  `json:"tokenUri"`
}

// UpsertCreatorRequest 创建/更新创作者档案请求
type UpsertCreatorRequest struct {
	Address     string            `json:"address"`
	Name        *string           `json:"name"`
	Bio         *string           `json:"bio"`
	Avatar      *string           `json:"avatar"`
	SocialLinks map[string]string `json:"socialLinks"`
}

// HasReceiptResponse 凭证持有查询响应
type HasReceiptResponse struct {
	HasReceipt bool `json:"hasReceipt"`
}
